package discord

import (
	"errors"

	"github.com/sglre6355/lavabot/internal/modules/music_player/application/usecases"
)

// userErrors maps use case errors to the messages shown to users.
// Wrapped causes are never shown.
var userErrors = []struct {
	err     error
	message string
}{
	{usecases.ErrInvalidQuery, "Please provide a search query of at most 1000 characters."},
	{usecases.ErrUserNotInVoice, "You must be in a voice channel to use this command."},
	{usecases.ErrNotPrivileged, "You must be in the same voice channel as the bot."},
	{usecases.ErrChannelMismatch, "I'm already connected to a different voice channel."},
	{usecases.ErrVoiceConnectFailure, "Could not connect to your voice channel. Please try again."},
	{usecases.ErrNotConnected, "I'm not connected to a voice channel."},
	{usecases.ErrNotPlaying, "Nothing is currently playing."},
	{usecases.ErrSearchFailure, "Search is unavailable right now. Please try again later."},
	{usecases.ErrQueueFull, "The queue is full."},
	{usecases.ErrEmptyPlaylist, "The playlist is empty."},
	{usecases.ErrPlaybackFailed, "Could not start playback of that track."},
}

// userMessage returns the user-facing message for a known error.
func userMessage(err error) (string, bool) {
	for _, e := range userErrors {
		if errors.Is(err, e.err) {
			return e.message, true
		}
	}
	return "", false
}
