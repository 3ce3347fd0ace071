package usecases

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/lavabot/internal/modules/music_player/domain"
	"golang.org/x/sync/errgroup"
)

// PlayInput contains the input for the Play use case.
type PlayInput struct {
	GuildID snowflake.ID
	UserID  snowflake.ID
	Query   string // Raw user input
}

// PlayOutput contains the result of the Play use case.
type PlayOutput struct {
	Track        *domain.Track // Requested track, or the playlist track now playing
	PlaylistName string        // Set if the query resolved to a playlist
	Started      bool          // Playback started because of this request
	Position     int           // 1-indexed queue position of a queued single track
	Added        int           // Playlist tracks started or queued
	Dropped      int           // Playlist tracks that did not fit in the queue
}

// PlayService handles the play command: join, search and enqueue.
type PlayService struct {
	voice    *VoiceChannelService
	cache    *SearchCache
	playback *PlaybackService
}

// NewPlayService creates a new PlayService.
func NewPlayService(
	voice *VoiceChannelService,
	cache *SearchCache,
	playback *PlaybackService,
) *PlayService {
	return &PlayService{
		voice:    voice,
		cache:    cache,
		playback: playback,
	}
}

// Play connects to the user's voice channel and searches for the query concurrently,
// then plays or queues the result. A failed connect discards the search result.
func (s *PlayService) Play(ctx context.Context, input PlayInput) (*PlayOutput, error) {
	query, err := domain.ValidateQuery(input.Query)
	if err != nil {
		return nil, err
	}

	var (
		g         errgroup.Group
		result    *domain.TrackList
		searchErr error
	)

	// The search keeps running if the connect fails so its result can still be cached.
	g.Go(func() error {
		_, err := s.voice.Join(ctx, JoinInput{GuildID: input.GuildID, UserID: input.UserID})
		return err
	})
	g.Go(func() error {
		result, searchErr = s.cache.Resolve(ctx, query)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if searchErr != nil {
		return nil, searchErr
	}
	if result.IsEmpty() {
		return nil, ErrNoResults
	}

	if result.IsPlaylist() {
		out, err := s.playback.EnqueuePlaylist(ctx, EnqueuePlaylistInput{
			GuildID:     input.GuildID,
			RequesterID: input.UserID,
			List:        result,
		})
		if err != nil {
			return nil, err
		}
		return &PlayOutput{
			Track:        out.NowPlaying,
			PlaylistName: result.Name,
			Started:      out.NowPlaying != nil,
			Added:        out.Added,
			Dropped:      out.Dropped,
		}, nil
	}

	track := result.First()
	out, err := s.playback.EnqueueOrPlay(ctx, EnqueueInput{
		GuildID:     input.GuildID,
		RequesterID: input.UserID,
		Track:       track,
	})
	if err != nil {
		return nil, err
	}

	return &PlayOutput{
		Track:    track,
		Started:  out.Started,
		Position: out.Position,
	}, nil
}
