package infrastructure

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/lavabot/internal/modules/music_player/domain"
)

func TestChannelEventBus_DeliversInOrderPerGuild(t *testing.T) {
	bus := NewChannelEventBus(10)
	defer bus.Close()

	var (
		mu       sync.Mutex
		received []string
		wg       sync.WaitGroup
	)
	wg.Add(3)
	bus.OnTrackEnded(func(_ context.Context, event domain.TrackEndedEvent) {
		mu.Lock()
		received = append(received, event.TrackEncoded)
		mu.Unlock()
		wg.Done()
	})

	for _, encoded := range []string{"t1", "t2", "t3"} {
		bus.PublishTrackEnded(domain.TrackEndedEvent{
			GuildID:      1,
			TrackEncoded: encoded,
			Reason:       domain.TrackEndFinished,
		})
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for events")
	}

	mu.Lock()
	defer mu.Unlock()
	if want := []string{"t1", "t2", "t3"}; !slices.Equal(received, want) {
		t.Errorf("expected %v, got %v", want, received)
	}
}

func TestChannelEventBus_SlowGuildDoesNotBlockOthers(t *testing.T) {
	bus := NewChannelEventBus(10)
	defer bus.Close()

	block := make(chan struct{})
	defer close(block)
	delivered := make(chan snowflake.ID, 1)
	bus.OnTrackEnded(func(_ context.Context, event domain.TrackEndedEvent) {
		if event.GuildID == 1 {
			<-block
			return
		}
		delivered <- event.GuildID
	})

	bus.PublishTrackEnded(domain.TrackEndedEvent{GuildID: 1})
	bus.PublishTrackEnded(domain.TrackEndedEvent{GuildID: 2})

	select {
	case got := <-delivered:
		if got != 2 {
			t.Errorf("expected event for guild 2, got guild %d", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event for guild 2 was not delivered while guild 1 was busy")
	}
}

func TestChannelEventBus_DropsWhenFull(t *testing.T) {
	bus := NewChannelEventBus(1)
	defer bus.Close()

	block := make(chan struct{})
	started := make(chan struct{}, 1)
	var count int
	var mu sync.Mutex
	bus.OnTrackEnded(func(context.Context, domain.TrackEndedEvent) {
		select {
		case started <- struct{}{}:
		default:
		}
		<-block
		mu.Lock()
		count++
		mu.Unlock()
	})

	bus.PublishTrackEnded(domain.TrackEndedEvent{GuildID: 1, TrackEncoded: "t1"})
	<-started // the guild's dispatcher is busy with the first event

	bus.PublishTrackEnded(domain.TrackEndedEvent{GuildID: 1, TrackEncoded: "t2"}) // buffered
	bus.PublishTrackEnded(domain.TrackEndedEvent{GuildID: 1, TrackEncoded: "t3"}) // dropped

	close(block)

	delivered := func() int {
		mu.Lock()
		defer mu.Unlock()
		return count
	}
	deadline := time.Now().Add(2 * time.Second)
	for delivered() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)

	if got := delivered(); got != 2 {
		t.Errorf("expected 2 delivered events, got %d", got)
	}
}

func TestChannelEventBus_PublishAfterClose(t *testing.T) {
	bus := NewChannelEventBus(1)
	bus.Close()
	bus.Close()

	// Must neither panic nor block.
	bus.PublishTrackEnded(domain.TrackEndedEvent{GuildID: 1})
}
