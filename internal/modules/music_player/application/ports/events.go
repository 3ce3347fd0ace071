package ports

import (
	"context"

	"github.com/sglre6355/lavabot/internal/modules/music_player/domain"
)

// EventPublisher defines the interface for publishing events asynchronously.
type EventPublisher interface {
	PublishTrackEnded(event domain.TrackEndedEvent)
}

// EventSubscriber defines the interface for subscribing to events.
// Handlers are registered with the subscriber and invoked when events occur.
type EventSubscriber interface {
	OnTrackEnded(handler func(context.Context, domain.TrackEndedEvent))
}
