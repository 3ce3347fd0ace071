package domain

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// QueueEntry represents a track's placement in the queue,
// associating a track with who requested it and when.
type QueueEntry struct {
	Track       *Track
	RequesterID snowflake.ID
	EnqueuedAt  time.Time
}

// NewQueueEntry creates a new QueueEntry with the current time as EnqueuedAt.
func NewQueueEntry(track *Track, requesterID snowflake.ID) QueueEntry {
	return QueueEntry{
		Track:       track,
		RequesterID: requesterID,
		EnqueuedAt:  time.Now().UTC(),
	}
}
