package infrastructure

import (
	"context"
	"log/slog"
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/lavabot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/lavabot/internal/modules/music_player/domain"
)

// DefaultEventBufferSize is the default buffer size for event channels.
const DefaultEventBufferSize = 100

// Compile-time checks that ChannelEventBus implements ports interfaces.
var (
	_ ports.EventPublisher  = (*ChannelEventBus)(nil)
	_ ports.EventSubscriber = (*ChannelEventBus)(nil)
)

// ChannelEventBus delivers events from the audio backend to application handlers.
// Each guild has its own dispatcher goroutine: events for one guild are handled
// in publish order, and a slow handler in one guild does not delay the others.
type ChannelEventBus struct {
	bufferSize         int
	guilds             map[snowflake.ID]chan domain.TrackEndedEvent
	trackEndedHandlers []func(context.Context, domain.TrackEndedEvent)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool
	mu     sync.RWMutex
}

// NewChannelEventBus creates a new ChannelEventBus with the given per-guild buffer size.
func NewChannelEventBus(bufferSize int) *ChannelEventBus {
	if bufferSize <= 0 {
		bufferSize = DefaultEventBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &ChannelEventBus{
		bufferSize: bufferSize,
		guilds:     make(map[snowflake.ID]chan domain.TrackEndedEvent),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// guildQueueLocked returns the guild's event channel, starting its dispatcher on first use.
// b.mu must be held for writing.
func (b *ChannelEventBus) guildQueueLocked(guildID snowflake.ID) chan domain.TrackEndedEvent {
	events, ok := b.guilds[guildID]
	if !ok {
		events = make(chan domain.TrackEndedEvent, b.bufferSize)
		b.guilds[guildID] = events

		b.wg.Add(1)
		go b.dispatchTrackEnded(events)
	}
	return events
}

func (b *ChannelEventBus) dispatchTrackEnded(events <-chan domain.TrackEndedEvent) {
	defer b.wg.Done()
	for {
		select {
		case <-b.ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			b.mu.RLock()
			handlers := b.trackEndedHandlers
			b.mu.RUnlock()
			for _, handler := range handlers {
				handler(b.ctx, event)
			}
		}
	}
}

// PublishTrackEnded publishes a TrackEndedEvent.
// Non-blocking: if the guild's buffer is full, the event is dropped with a warning.
func (b *ChannelEventBus) PublishTrackEnded(event domain.TrackEndedEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		slog.Warn("attempted to publish to closed event bus", "type", "TrackEnded")
		return
	}

	select {
	case b.guildQueueLocked(event.GuildID) <- event:
		slog.Debug("published event",
			"type", "TrackEnded",
			"guild", event.GuildID,
			"reason", event.Reason,
		)
	default:
		slog.Warn("event buffer full, dropping event", "type", "TrackEnded", "guild", event.GuildID)
	}
}

// OnTrackEnded registers a handler for TrackEndedEvent.
func (b *ChannelEventBus) OnTrackEnded(handler func(context.Context, domain.TrackEndedEvent)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.trackEndedHandlers = append(b.trackEndedHandlers, handler)
}

// Close stops all dispatchers and cancels the context passed to running handlers.
// After calling Close, published events are discarded.
func (b *ChannelEventBus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	for _, events := range b.guilds {
		close(events)
	}
	b.mu.Unlock()

	b.cancel()
	b.wg.Wait()

	slog.Debug("channel event bus closed")
}
