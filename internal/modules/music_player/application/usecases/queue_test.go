package usecases

import (
	"errors"
	"fmt"
	"testing"

	"github.com/disgoorg/snowflake/v2"
)

func TestQueueService_List(t *testing.T) {
	tests := []struct {
		name        string
		tracks      int // first starts playing, rest are pending
		input       QueueListInput
		wantCurrent bool
		wantEntries int
		wantFirst   string
		wantOffset  int
		wantTotal   int
		wantPage    int
		wantPages   int
	}{
		{
			name:      "idle session",
			input:     QueueListInput{GuildID: testGuildID},
			wantPage:  1,
			wantPages: 1,
		},
		{
			name:        "now playing only",
			tracks:      1,
			input:       QueueListInput{GuildID: testGuildID},
			wantCurrent: true,
			wantPage:    1,
			wantPages:   1,
		},
		{
			name:        "first page",
			tracks:      26,
			input:       QueueListInput{GuildID: testGuildID, Page: 1},
			wantCurrent: true,
			wantEntries: 10,
			wantFirst:   "t1",
			wantTotal:   25,
			wantPage:    1,
			wantPages:   3,
		},
		{
			name:        "last partial page",
			tracks:      26,
			input:       QueueListInput{GuildID: testGuildID, Page: 3},
			wantCurrent: true,
			wantEntries: 5,
			wantFirst:   "t21",
			wantOffset:  20,
			wantTotal:   25,
			wantPage:    3,
			wantPages:   3,
		},
		{
			name:        "page beyond range is clamped",
			tracks:      6,
			input:       QueueListInput{GuildID: testGuildID, Page: 9, PageSize: 2},
			wantCurrent: true,
			wantEntries: 1,
			wantFirst:   "t5",
			wantOffset:  4,
			wantTotal:   5,
			wantPage:    3,
			wantPages:   3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPlaybackFixture(100)
			f.connect()
			for i := range tt.tracks {
				f.enqueue(t, fmt.Sprintf("t%d", i))
			}
			service := NewQueueService(f.registry, f.service.gate, 0)

			out, err := service.List(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if (out.Current != nil) != tt.wantCurrent {
				t.Errorf("expected current present=%v, got %v", tt.wantCurrent, out.Current)
			}
			if len(out.Entries) != tt.wantEntries {
				t.Errorf("expected %d entries, got %d", tt.wantEntries, len(out.Entries))
			}
			if tt.wantFirst != "" && out.Entries[0].Track.Identifier != tt.wantFirst {
				t.Errorf("expected first entry %s, got %s", tt.wantFirst, out.Entries[0].Track.Identifier)
			}
			if out.Offset != tt.wantOffset {
				t.Errorf("expected offset %d, got %d", tt.wantOffset, out.Offset)
			}
			if out.TotalTracks != tt.wantTotal {
				t.Errorf("expected %d total, got %d", tt.wantTotal, out.TotalTracks)
			}
			if out.CurrentPage != tt.wantPage || out.TotalPages != tt.wantPages {
				t.Errorf("expected page %d/%d, got %d/%d",
					tt.wantPage, tt.wantPages, out.CurrentPage, out.TotalPages)
			}
		})
	}
}

func TestQueueService_List_NotConnected(t *testing.T) {
	f := newPlaybackFixture(10)
	service := NewQueueService(f.registry, f.service.gate, 0)

	if _, err := service.List(QueueListInput{GuildID: testGuildID}); !errors.Is(err, ErrNotConnected) {
		t.Errorf("expected ErrNotConnected, got %v", err)
	}
}

func TestQueueService_Clear(t *testing.T) {
	tests := []struct {
		name        string
		userID      snowflake.ID
		tracks      []string
		wantErr     error
		wantCleared int
		wantCurrent string
	}{
		{
			name:        "clears pending tracks and keeps current",
			userID:      testUserID,
			tracks:      []string{"a", "b", "c"},
			wantCleared: 2,
			wantCurrent: "a",
		},
		{
			name:        "already empty",
			userID:      testUserID,
			tracks:      []string{"a"},
			wantCurrent: "a",
		},
		{
			name:        "not privileged",
			userID:      testOutsiderID,
			tracks:      []string{"a", "b"},
			wantErr:     ErrNotPrivileged,
			wantCurrent: "a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPlaybackFixture(10)
			f.connect()
			for _, id := range tt.tracks {
				f.enqueue(t, id)
			}
			service := NewQueueService(f.registry, f.service.gate, 0)

			out, err := service.Clear(QueueClearInput{GuildID: testGuildID, UserID: tt.userID})

			if current, _ := f.snapshot(); current != tt.wantCurrent {
				t.Errorf("expected current %q, got %q", tt.wantCurrent, current)
			}
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out.ClearedCount != tt.wantCleared {
				t.Errorf("expected %d cleared, got %d", tt.wantCleared, out.ClearedCount)
			}
		})
	}
}
