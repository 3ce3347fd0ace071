package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sglre6355/lavabot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/lavabot/internal/modules/music_player/domain"
	"golang.org/x/sync/singleflight"
)

// DefaultSearchCacheSize is the default number of cached search results.
const DefaultSearchCacheSize = 100

// searchTimeout bounds a shared upstream search independently of any one caller.
const searchTimeout = 15 * time.Second

// SearchCache is a bounded LRU of search results keyed by validated query.
// Concurrent misses for the same query share a single upstream call.
// Errors are never cached.
type SearchCache struct {
	resolver ports.TrackResolver
	entries  *lru.Cache[string, *domain.TrackList]
	flight   singleflight.Group
}

// NewSearchCache creates a SearchCache holding at most size results.
// A non-positive size falls back to DefaultSearchCacheSize.
func NewSearchCache(resolver ports.TrackResolver, size int) (*SearchCache, error) {
	if size <= 0 {
		size = DefaultSearchCacheSize
	}

	entries, err := lru.New[string, *domain.TrackList](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create search cache: %w", err)
	}

	return &SearchCache{
		resolver: resolver,
		entries:  entries,
	}, nil
}

// Resolve returns the tracks for a query that has already passed domain.ValidateQuery.
func (c *SearchCache) Resolve(ctx context.Context, query string) (*domain.TrackList, error) {
	if result, ok := c.entries.Get(query); ok {
		slog.Debug("search cache hit", "query", query)
		return result, nil
	}

	// The flight outlives a caller that gives up, so it runs on its own deadline.
	flightCtx := context.WithoutCancel(ctx)
	results := c.flight.DoChan(query, func() (any, error) {
		// A flight that finished between our miss and joining this one has already stored it.
		if result, ok := c.entries.Get(query); ok {
			return result, nil
		}

		loadCtx, cancel := context.WithTimeout(flightCtx, searchTimeout)
		defer cancel()

		result, err := c.resolver.LoadTracks(loadCtx, domain.NewSearchQuery(query).LavalinkQuery())
		if err != nil {
			return nil, err
		}
		if result == nil {
			result = domain.NewEmptyTrackList()
		}

		c.entries.Add(query, result)
		return result, nil
	})

	var res singleflight.Result
	select {
	case res = <-results:
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrSearchFailure, ctx.Err())
	}
	if res.Err != nil {
		slog.Warn("failed to resolve query", "query", query, "error", res.Err)
		return nil, fmt.Errorf("%w: %w", ErrSearchFailure, res.Err)
	}

	slog.Debug("search cache miss", "query", query, "shared", res.Shared)

	return res.Val.(*domain.TrackList), nil
}

// Len returns the number of cached results. Reported on shutdown.
func (c *SearchCache) Len() int {
	return c.entries.Len()
}
