package ports

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/lavabot/internal/modules/music_player/domain"
)

// AudioPlayer defines the interface for audio playback operations.
// Implementations report the end of each started track asynchronously
// through an EventPublisher.
type AudioPlayer interface {
	// Play starts playback of the given track, replacing anything playing.
	Play(ctx context.Context, guildID snowflake.ID, track *domain.Track) error

	// Stop stops the current playback.
	Stop(ctx context.Context, guildID snowflake.ID) error
}
