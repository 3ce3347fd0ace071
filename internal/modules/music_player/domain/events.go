package domain

import (
	"github.com/disgoorg/snowflake/v2"
)

// TrackEndReason represents why a track ended.
type TrackEndReason string

const (
	// TrackEndFinished means the track finished normally.
	TrackEndFinished TrackEndReason = "finished"
	// TrackEndLoadFailed means the track failed to load.
	TrackEndLoadFailed TrackEndReason = "load_failed"
	// TrackEndStopped means the track was stopped (skip or stop).
	TrackEndStopped TrackEndReason = "stopped"
	// TrackEndReplaced means the track was replaced by another.
	TrackEndReplaced TrackEndReason = "replaced"
	// TrackEndCleanup means the track was cleaned up.
	TrackEndCleanup TrackEndReason = "cleanup"
)

// ShouldAdvanceQueue returns true if this end reason should advance the queue.
// Skip is implemented as a stop, so stopped tracks advance too.
func (r TrackEndReason) ShouldAdvanceQueue() bool {
	return r == TrackEndFinished || r == TrackEndLoadFailed || r == TrackEndStopped
}

// TrackEndedEvent is published when the audio backend reports the end of a track.
type TrackEndedEvent struct {
	GuildID      snowflake.ID
	TrackEncoded string // Encoded form of the track that ended; empty if unknown
	Reason       TrackEndReason
}
