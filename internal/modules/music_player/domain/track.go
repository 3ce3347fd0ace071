package domain

import (
	"strconv"
	"time"
)

// Track represents a playable audio track.
// Tracks are shared between cache entries and queues and must not be mutated.
type Track struct {
	Identifier string // Source-specific identifier (e.g., YouTube video ID)
	Encoded    string // Lavalink encoded track data
	Title      string
	Artist     string
	Duration   time.Duration
	URI        string
	ArtworkURL string
	SourceName string // e.g., "youtube", "spotify", "soundcloud"
	IsStream   bool
}

// IsValid returns true if the track has the minimum required fields.
func (t *Track) IsValid() bool {
	return t.Encoded != "" && t.Title != ""
}

// FormattedDuration returns the duration as a human-readable string (mm:ss or hh:mm:ss).
func (t *Track) FormattedDuration() string {
	if t.IsStream {
		return "LIVE"
	}

	totalSeconds := int(t.Duration.Seconds())
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	if hours > 0 {
		return formatTime(hours, minutes, seconds)
	}
	return formatTimeShort(minutes, seconds)
}

func formatTime(hours, minutes, seconds int) string {
	return pad(hours) + ":" + pad(minutes) + ":" + pad(seconds)
}

func formatTimeShort(minutes, seconds int) string {
	return pad(minutes) + ":" + pad(seconds)
}

func pad(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
