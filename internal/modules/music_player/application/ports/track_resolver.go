package ports

import (
	"context"

	"github.com/sglre6355/lavabot/internal/modules/music_player/domain"
)

// TrackResolver defines the interface for loading/searching tracks.
type TrackResolver interface {
	// LoadTracks resolves a Lavalink identifier (URL or prefixed search) to tracks.
	// A lookup that matches nothing returns an empty list, not an error.
	LoadTracks(ctx context.Context, query string) (*domain.TrackList, error)
}
