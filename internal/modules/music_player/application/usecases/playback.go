package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/lavabot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/lavabot/internal/modules/music_player/domain"
)

// maxStartAttempts is how many queue heads are tried when advancing before giving up.
const maxStartAttempts = 2

// trackStartTimeout bounds each attempt to start a track while the guild lock is held.
const trackStartTimeout = 10 * time.Second

// EnqueueInput contains the input for the EnqueueOrPlay use case.
type EnqueueInput struct {
	GuildID     snowflake.ID
	RequesterID snowflake.ID
	Track       *domain.Track
}

// EnqueueOutput contains the result of the EnqueueOrPlay use case.
type EnqueueOutput struct {
	Started  bool // The track started playing immediately
	Position int  // 1-indexed position in the pending queue if not started
}

// EnqueuePlaylistInput contains the input for the EnqueuePlaylist use case.
type EnqueuePlaylistInput struct {
	GuildID     snowflake.ID
	RequesterID snowflake.ID
	List        *domain.TrackList
}

// EnqueuePlaylistOutput contains the result of the EnqueuePlaylist use case.
type EnqueuePlaylistOutput struct {
	NowPlaying *domain.Track // Track that started because of this call, if any
	Added      int           // Playlist tracks started or queued
	Dropped    int           // Playlist tracks that did not fit in the queue
}

// StopInput contains the input for the Stop use case.
type StopInput struct {
	GuildID snowflake.ID
	UserID  snowflake.ID
}

// StopOutput contains the result of the Stop use case.
type StopOutput struct {
	Stopped      bool // false if there was nothing to stop
	ClearedCount int
}

// SkipInput contains the input for the Skip use case.
type SkipInput struct {
	GuildID snowflake.ID
	UserID  snowflake.ID
}

// SkipOutput contains the result of the Skip use case.
type SkipOutput struct {
	SkippedTrack *domain.Track
	NextTrack    *domain.Track // nil if queue is empty
}

// PlaybackService drives the per-guild playback state machine.
// Every operation runs under the guild lock of the SessionRegistry.
type PlaybackService struct {
	registry    *SessionRegistry
	audioPlayer ports.AudioPlayer
	gate        *CommandGate
}

// NewPlaybackService creates a new PlaybackService.
func NewPlaybackService(
	registry *SessionRegistry,
	audioPlayer ports.AudioPlayer,
	gate *CommandGate,
) *PlaybackService {
	return &PlaybackService{
		registry:    registry,
		audioPlayer: audioPlayer,
		gate:        gate,
	}
}

// EnqueueOrPlay starts the track if the session is idle, otherwise appends it to the queue.
func (p *PlaybackService) EnqueueOrPlay(
	ctx context.Context,
	input EnqueueInput,
) (*EnqueueOutput, error) {
	var output *EnqueueOutput

	err := p.registry.WithGuild(input.GuildID, func(g *Guild) error {
		session := g.Session()
		if session == nil {
			return ErrNotConnected
		}

		entry := domain.NewQueueEntry(input.Track, input.RequesterID)

		if !session.IsPlaying() && session.Queue.IsEmpty() {
			if err := p.audioPlayer.Play(ctx, input.GuildID, entry.Track); err != nil {
				slog.Warn("failed to start track",
					"guild", input.GuildID,
					"session", session.ID(),
					"track", entry.Track.Title,
					"error", err,
				)
				return fmt.Errorf("%w: %w", ErrPlaybackFailed, err)
			}
			session.SetCurrent(entry)
			output = &EnqueueOutput{Started: true}
			return nil
		}

		if err := session.Queue.Push(entry); err != nil {
			return err
		}

		// Idle with a leftover queue: the new entry waits behind the older ones.
		if !session.IsPlaying() {
			p.advance(ctx, session)
			if current := session.Current(); current != nil && current.Track == entry.Track {
				output = &EnqueueOutput{Started: true}
				return nil
			}
		}

		output = &EnqueueOutput{Position: session.Queue.Len()}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

// EnqueuePlaylist starts the first track if idle and queues the rest in order.
// Tracks that do not fit in the queue are dropped and counted.
func (p *PlaybackService) EnqueuePlaylist(
	ctx context.Context,
	input EnqueuePlaylistInput,
) (*EnqueuePlaylistOutput, error) {
	if input.List == nil || input.List.IsEmpty() {
		return nil, ErrEmptyPlaylist
	}

	entries := make([]domain.QueueEntry, len(input.List.Tracks))
	for i, track := range input.List.Tracks {
		entries[i] = domain.NewQueueEntry(track, input.RequesterID)
	}

	var output *EnqueuePlaylistOutput

	err := p.registry.WithGuild(input.GuildID, func(g *Guild) error {
		session := g.Session()
		if session == nil {
			return ErrNotConnected
		}

		out := &EnqueuePlaylistOutput{}
		rest := entries

		if !session.IsPlaying() && session.Queue.IsEmpty() {
			first := entries[0]
			if err := p.audioPlayer.Play(ctx, input.GuildID, first.Track); err != nil {
				slog.Warn("failed to start track",
					"guild", input.GuildID,
					"session", session.ID(),
					"track", first.Track.Title,
					"error", err,
				)
				return fmt.Errorf("%w: %w", ErrPlaybackFailed, err)
			}
			session.SetCurrent(first)
			out.NowPlaying = first.Track
			out.Added = 1
			rest = entries[1:]
		}

		queued := session.Queue.PushMany(rest...)
		out.Added += queued
		out.Dropped = len(rest) - queued

		if out.Added == 0 {
			return ErrQueueFull
		}

		if !session.IsPlaying() {
			out.NowPlaying = p.advance(ctx, session)
		}

		if out.Dropped > 0 {
			slog.Info("truncated playlist to fit queue",
				"guild", input.GuildID,
				"session", session.ID(),
				"playlist", input.List.Name,
				"dropped", out.Dropped,
			)
		}

		output = out
		return nil
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

// OnTrackEnd advances the queue after the audio backend reports the end of a track.
// Failures are logged and never returned; the session settles to idle if nothing starts.
func (p *PlaybackService) OnTrackEnd(ctx context.Context, event domain.TrackEndedEvent) {
	_ = p.registry.WithGuild(event.GuildID, func(g *Guild) error {
		session := g.Session()
		if session == nil {
			slog.Debug("ignoring track end without session", "guild", event.GuildID)
			return nil
		}

		if !event.Reason.ShouldAdvanceQueue() {
			slog.Debug("ignoring track end",
				"guild", event.GuildID,
				"session", session.ID(),
				"reason", event.Reason,
			)
			return nil
		}

		if !session.IsPlaying() {
			slog.Debug("ignoring track end",
				"guild", event.GuildID,
				"session", session.ID(),
				"state", session.State(),
			)
			return nil
		}

		if event.TrackEncoded != "" && !session.IsCurrentTrack(event.TrackEncoded) {
			slog.Debug("ignoring stale track end",
				"guild", event.GuildID,
				"session", session.ID(),
				"state", session.State(),
				"reason", event.Reason,
			)
			return nil
		}

		next := p.advance(ctx, session)
		if next == nil {
			slog.Info("playback finished",
				"guild", event.GuildID,
				"session", session.ID(),
				"pending", session.Queue.Len(),
			)
			return nil
		}

		slog.Info("started next track",
			"guild", event.GuildID,
			"session", session.ID(),
			"track", next.Title,
		)
		return nil
	})
}

// advance pops the queue head and starts it, trying the following head once if
// the first fails to start. Returns the started track, or nil if the session is
// left idle. Entries that were not tried stay queued.
func (p *PlaybackService) advance(ctx context.Context, session *domain.Session) *domain.Track {
	session.ClearCurrent()

	for attempt := 1; attempt <= maxStartAttempts; attempt++ {
		entry, ok := session.Queue.Pop()
		if !ok {
			return nil
		}

		startCtx, cancel := context.WithTimeout(ctx, trackStartTimeout)
		err := p.audioPlayer.Play(startCtx, session.GuildID(), entry.Track)
		cancel()
		if err != nil {
			slog.Warn("failed to start track",
				"guild", session.GuildID(),
				"session", session.ID(),
				"track", entry.Track.Title,
				"attempt", attempt,
				"error", err,
			)
			continue
		}

		session.SetCurrent(entry)
		return entry.Track
	}

	return nil
}

// Stop clears the queue and stops the current track.
func (p *PlaybackService) Stop(ctx context.Context, input StopInput) (*StopOutput, error) {
	var output *StopOutput

	err := p.registry.WithGuild(input.GuildID, func(g *Guild) error {
		session := g.Session()
		if err := p.gate.Authorize(input.GuildID, input.UserID, session); err != nil {
			return err
		}

		if !session.IsPlaying() && session.Queue.IsEmpty() {
			output = &StopOutput{Stopped: false}
			return nil
		}

		// Session state is left untouched if the backend keeps playing.
		if session.IsPlaying() {
			if err := p.audioPlayer.Stop(ctx, input.GuildID); err != nil {
				return fmt.Errorf("failed to stop playback: %w", err)
			}
		}

		cleared := session.Queue.Clear()
		session.ClearCurrent()

		output = &StopOutput{Stopped: true, ClearedCount: cleared}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

// Skip stops the current track. The queue advances when the audio backend
// reports the track as stopped.
func (p *PlaybackService) Skip(ctx context.Context, input SkipInput) (*SkipOutput, error) {
	var output *SkipOutput

	err := p.registry.WithGuild(input.GuildID, func(g *Guild) error {
		session := g.Session()
		if err := p.gate.Authorize(input.GuildID, input.UserID, session); err != nil {
			return err
		}

		current := session.Current()
		if current == nil {
			return ErrNotPlaying
		}

		if err := p.audioPlayer.Stop(ctx, input.GuildID); err != nil {
			return fmt.Errorf("failed to skip track: %w", err)
		}

		output = &SkipOutput{SkippedTrack: current.Track}
		if next := session.Queue.Peek(); next != nil {
			output.NextTrack = next.Track
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}
