package infrastructure

import (
	"context"
	"fmt"

	"github.com/sglre6355/lavabot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/lavabot/internal/modules/music_player/domain"
	"golang.org/x/time/rate"
)

// ThrottledResolver limits the rate of upstream track lookups.
// Callers wait for a token rather than failing.
type ThrottledResolver struct {
	next    ports.TrackResolver
	limiter *rate.Limiter
}

// NewThrottledResolver wraps next with a limit of perSecond lookups and the given burst.
// A non-positive perSecond disables throttling.
func NewThrottledResolver(next ports.TrackResolver, perSecond float64, burst int) *ThrottledResolver {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}

	return &ThrottledResolver{
		next:    next,
		limiter: rate.NewLimiter(limit, burst),
	}
}

// LoadTracks waits for the limiter and then delegates to the wrapped resolver.
func (r *ThrottledResolver) LoadTracks(ctx context.Context, query string) (*domain.TrackList, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("search rate limit: %w", err)
	}
	return r.next.LoadTracks(ctx, query)
}

var _ ports.TrackResolver = (*ThrottledResolver)(nil)
