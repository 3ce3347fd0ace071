package usecases

import (
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/lavabot/internal/modules/music_player/domain"
)

const DefaultPageSize = 10

// QueueListInput contains the input for the QueueList use case.
type QueueListInput struct {
	GuildID  snowflake.ID
	Page     int // 1-indexed page number
	PageSize int // Items per page (optional, defaults to the service page size)
}

// QueueListOutput contains the result of the QueueList use case.
type QueueListOutput struct {
	Current     *domain.QueueEntry
	Entries     []domain.QueueEntry
	Offset      int // Number of pending entries before this page
	TotalTracks int // Pending entries, excluding the current one
	CurrentPage int
	TotalPages  int
}

// QueueClearInput contains the input for the QueueClear use case.
type QueueClearInput struct {
	GuildID snowflake.ID
	UserID  snowflake.ID
}

// QueueClearOutput contains the result of the QueueClear use case.
type QueueClearOutput struct {
	ClearedCount int // 0 if the queue was already empty
}

// QueueService handles queue operations.
type QueueService struct {
	registry *SessionRegistry
	gate     *CommandGate
	pageSize int
}

// NewQueueService creates a new QueueService.
func NewQueueService(registry *SessionRegistry, gate *CommandGate, pageSize int) *QueueService {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &QueueService{
		registry: registry,
		gate:     gate,
		pageSize: pageSize,
	}
}

// List returns the current track and a page of pending entries.
func (q *QueueService) List(input QueueListInput) (*QueueListOutput, error) {
	var output *QueueListOutput

	err := q.registry.WithGuild(input.GuildID, func(g *Guild) error {
		session := g.Session()
		if session == nil {
			return ErrNotConnected
		}

		pageSize := input.PageSize
		if pageSize <= 0 {
			pageSize = q.pageSize
		}

		page := input.Page
		if page <= 0 {
			page = 1
		}

		pending := session.Queue.List()

		totalTracks := len(pending)
		totalPages := (totalTracks + pageSize - 1) / pageSize
		if totalPages == 0 {
			totalPages = 1
		}

		// Clamp page to valid range
		if page > totalPages {
			page = totalPages
		}

		start := (page - 1) * pageSize
		end := min(start+pageSize, totalTracks)

		var entries []domain.QueueEntry
		if start < totalTracks {
			entries = pending[start:end]
		}

		output = &QueueListOutput{
			Current:     session.Current(),
			Entries:     entries,
			Offset:      start,
			TotalTracks: totalTracks,
			CurrentPage: page,
			TotalPages:  totalPages,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

// Clear removes all pending entries, leaving the current track playing.
func (q *QueueService) Clear(input QueueClearInput) (*QueueClearOutput, error) {
	var output *QueueClearOutput

	err := q.registry.WithGuild(input.GuildID, func(g *Guild) error {
		session := g.Session()
		if err := q.gate.Authorize(input.GuildID, input.UserID, session); err != nil {
			return err
		}

		output = &QueueClearOutput{ClearedCount: session.Queue.Clear()}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}
