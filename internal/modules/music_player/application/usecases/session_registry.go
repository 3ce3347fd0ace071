package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/lavabot/internal/modules/music_player/domain"
)

// guildSlot serializes everything that touches one guild's session.
// Slots are never removed, so every caller for a guild contends on the same mutex.
type guildSlot struct {
	mu      sync.Mutex
	session *domain.Session
}

// SessionRegistry maps guilds to their playback sessions.
// The registry lock only guards slot lookup; session state is guarded per guild,
// so operations on different guilds never wait on each other.
type SessionRegistry struct {
	mu            sync.Mutex
	slots         map[snowflake.ID]*guildSlot
	queueCapacity int
	sessions      atomic.Int64
}

// NewSessionRegistry creates a registry whose sessions queue at most queueCapacity tracks.
func NewSessionRegistry(queueCapacity int) *SessionRegistry {
	return &SessionRegistry{
		slots:         make(map[snowflake.ID]*guildSlot),
		queueCapacity: queueCapacity,
	}
}

func (r *SessionRegistry) slot(guildID snowflake.ID) *guildSlot {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.slots[guildID]
	if !ok {
		s = &guildSlot{}
		r.slots[guildID] = s
	}
	return s
}

// Guild is exclusive access to one guild's session for the duration of a WithGuild call.
// It must not be retained after the callback returns.
type Guild struct {
	registry *SessionRegistry
	guildID  snowflake.ID
	slot     *guildSlot
}

// ID returns the guild ID.
func (g *Guild) ID() snowflake.ID {
	return g.guildID
}

// Session returns the guild's session, or nil if the bot is not connected.
func (g *Guild) Session() *domain.Session {
	return g.slot.session
}

// GetOrCreate returns the session bound to channelID, connecting first if none exists.
// The session is registered only after connect succeeds. A session bound to a
// different channel is never moved; ErrChannelMismatch is returned instead.
func (g *Guild) GetOrCreate(
	ctx context.Context,
	channelID snowflake.ID,
	connect func(ctx context.Context) error,
) (session *domain.Session, created bool, err error) {
	if channelID == 0 {
		return nil, false, ErrUserNotInVoice
	}

	if existing := g.slot.session; existing != nil {
		if existing.VoiceChannelID() != channelID {
			return nil, false, ErrChannelMismatch
		}
		return existing, false, nil
	}

	if err := connect(ctx); err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrVoiceConnectFailure, err)
	}

	session = domain.NewSession(g.guildID, channelID, g.registry.queueCapacity)
	g.slot.session = session
	g.registry.sessions.Add(1)

	slog.Info("created session",
		"guild", g.guildID,
		"channel", channelID,
		"session", session.ID(),
	)

	return session, true, nil
}

// Remove deletes the guild's session. Removing a missing session is a no-op.
// Returns the removed session, or nil.
func (g *Guild) Remove() *domain.Session {
	session := g.slot.session
	if session == nil {
		return nil
	}

	g.slot.session = nil
	g.registry.sessions.Add(-1)

	slog.Info("removed session", "guild", g.guildID, "session", session.ID())

	return session
}

// WithGuild runs fn with exclusive access to the guild's session.
// Calls for the same guild are serialized in lock acquisition order.
func (r *SessionRegistry) WithGuild(guildID snowflake.ID, fn func(g *Guild) error) error {
	s := r.slot(guildID)

	s.mu.Lock()
	defer s.mu.Unlock()

	return fn(&Guild{registry: r, guildID: guildID, slot: s})
}

// GetOrCreate is WithGuild + Guild.GetOrCreate.
func (r *SessionRegistry) GetOrCreate(
	ctx context.Context,
	guildID, channelID snowflake.ID,
	connect func(ctx context.Context) error,
) (*domain.Session, error) {
	var session *domain.Session
	err := r.WithGuild(guildID, func(g *Guild) error {
		var err error
		session, _, err = g.GetOrCreate(ctx, channelID, connect)
		return err
	})
	return session, err
}

// Remove is WithGuild + Guild.Remove. It is idempotent.
func (r *SessionRegistry) Remove(guildID snowflake.ID) bool {
	var removed bool
	_ = r.WithGuild(guildID, func(g *Guild) error {
		removed = g.Remove() != nil
		return nil
	})
	return removed
}

// Count returns the number of live sessions. Reported on shutdown.
func (r *SessionRegistry) Count() int {
	return int(r.sessions.Load())
}
