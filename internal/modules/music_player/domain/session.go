package domain

import (
	"github.com/disgoorg/snowflake/v2"
	"github.com/google/uuid"
)

// PlaybackState is the playback state of a guild session.
type PlaybackState int

const (
	PlaybackIdle PlaybackState = iota
	PlaybackPlaying
)

// String returns a human-readable representation of the playback state.
func (s PlaybackState) String() string {
	if s == PlaybackPlaying {
		return "playing"
	}
	return "idle"
}

// Session is the playback state of one guild, bound to one voice channel.
// It is not safe for concurrent use; callers serialize access per guild.
type Session struct {
	id             string
	guildID        snowflake.ID
	voiceChannelID snowflake.ID
	current        *QueueEntry // nil while idle
	Queue          Queue
}

// NewSession creates an idle Session bound to the given voice channel.
func NewSession(guildID, voiceChannelID snowflake.ID, queueCapacity int) *Session {
	return &Session{
		id:             uuid.NewString(),
		guildID:        guildID,
		voiceChannelID: voiceChannelID,
		Queue:          NewQueue(queueCapacity),
	}
}

// ID returns the unique identifier of this session instance.
// A guild that leaves and rejoins gets a new ID.
func (s *Session) ID() string {
	return s.id
}

// GuildID returns the guild ID.
func (s *Session) GuildID() snowflake.ID {
	// guildID must not be modified after initialization
	return s.guildID
}

// VoiceChannelID returns the voice channel the session is bound to.
func (s *Session) VoiceChannelID() snowflake.ID {
	return s.voiceChannelID
}

// Rebind moves the session to another voice channel, keeping its queue.
func (s *Session) Rebind(channelID snowflake.ID) {
	s.voiceChannelID = channelID
}

// State returns the current playback state.
func (s *Session) State() PlaybackState {
	if s.current != nil {
		return PlaybackPlaying
	}
	return PlaybackIdle
}

// IsPlaying returns true if a track is current.
func (s *Session) IsPlaying() bool {
	return s.current != nil
}

// Current returns a copy of the current entry, or nil while idle.
func (s *Session) Current() *QueueEntry {
	if s.current == nil {
		return nil
	}
	current := *s.current
	return &current
}

// SetCurrent marks the entry as playing.
func (s *Session) SetCurrent(entry QueueEntry) {
	s.current = &entry
}

// ClearCurrent returns the session to idle.
func (s *Session) ClearCurrent() {
	s.current = nil
}

// IsCurrentTrack reports whether the encoded track is the one currently playing.
func (s *Session) IsCurrentTrack(encoded string) bool {
	return s.current != nil && s.current.Track.Encoded == encoded
}
