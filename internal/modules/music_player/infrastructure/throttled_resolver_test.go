package infrastructure

import (
	"context"
	"testing"
	"time"

	"github.com/sglre6355/lavabot/internal/modules/music_player/domain"
)

type countingResolver struct {
	calls int
}

func (r *countingResolver) LoadTracks(context.Context, string) (*domain.TrackList, error) {
	r.calls++
	return domain.NewEmptyTrackList(), nil
}

func TestThrottledResolver_AllowsBurst(t *testing.T) {
	next := &countingResolver{}
	resolver := NewThrottledResolver(next, 1, 3)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	for range 3 {
		if _, err := resolver.LoadTracks(ctx, "ytsearch:a"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if next.calls != 3 {
		t.Errorf("expected 3 calls, got %d", next.calls)
	}
}

func TestThrottledResolver_WaitRespectsContext(t *testing.T) {
	next := &countingResolver{}
	resolver := NewThrottledResolver(next, 0.01, 1)

	if _, err := resolver.LoadTracks(context.Background(), "ytsearch:a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := resolver.LoadTracks(ctx, "ytsearch:b")
	if err == nil {
		t.Fatal("expected the second lookup to be throttled")
	}
	if next.calls != 1 {
		t.Errorf("expected throttled lookup not to reach upstream, got %d calls", next.calls)
	}
}

func TestThrottledResolver_Unlimited(t *testing.T) {
	next := &countingResolver{}
	resolver := NewThrottledResolver(next, 0, 0)

	for range 20 {
		if _, err := resolver.LoadTracks(context.Background(), "ytsearch:a"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if next.calls != 20 {
		t.Errorf("expected 20 calls, got %d", next.calls)
	}
}

