package application

import (
	"context"
	"log/slog"

	"github.com/sglre6355/lavabot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/lavabot/internal/modules/music_player/domain"
)

// TrackEndHandler is the part of the playback service that reacts to track ends.
type TrackEndHandler interface {
	OnTrackEnd(ctx context.Context, event domain.TrackEndedEvent)
}

// PlaybackEventHandler feeds track-end events from the audio backend into the playback state machine.
type PlaybackEventHandler struct {
	playback   TrackEndHandler
	subscriber ports.EventSubscriber
}

// NewPlaybackEventHandler creates a new PlaybackEventHandler.
func NewPlaybackEventHandler(
	playback TrackEndHandler,
	subscriber ports.EventSubscriber,
) *PlaybackEventHandler {
	return &PlaybackEventHandler{
		playback:   playback,
		subscriber: subscriber,
	}
}

// Start registers event handlers with the subscriber.
func (h *PlaybackEventHandler) Start() {
	h.subscriber.OnTrackEnded(h.handleTrackEnded)

	slog.Debug("playback event handlers properly registered")
}

func (h *PlaybackEventHandler) handleTrackEnded(ctx context.Context, event domain.TrackEndedEvent) {
	slog.Debug(
		"track ended",
		"guild", event.GuildID,
		"reason", event.Reason,
	)

	h.playback.OnTrackEnd(ctx, event)
}
