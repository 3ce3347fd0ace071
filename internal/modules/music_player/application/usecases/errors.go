package usecases

import (
	"errors"

	"github.com/sglre6355/lavabot/internal/modules/music_player/domain"
)

// Domain errors for the music player module.
var (
	// ErrNotConnected is returned when an operation requires the bot to be in a voice channel.
	ErrNotConnected = errors.New("not connected to a voice channel")

	// ErrUserNotInVoice is returned when the user is not in a voice channel.
	ErrUserNotInVoice = errors.New("you must be in a voice channel")

	// ErrNotPrivileged is returned when the user is not in the bot's voice channel.
	ErrNotPrivileged = errors.New("you must be in the same voice channel as the bot")

	// ErrChannelMismatch is returned when the bot is already bound to another voice channel.
	ErrChannelMismatch = errors.New("already connected to a different voice channel")

	// ErrVoiceConnectFailure is returned when joining a voice channel fails.
	// The wrapped cause is for logs only and must not be shown to users.
	ErrVoiceConnectFailure = errors.New("failed to connect to the voice channel")

	// ErrNotPlaying is returned when no track is currently playing.
	ErrNotPlaying = errors.New("nothing is currently playing")

	// ErrNoResults is returned when a search yields no results.
	ErrNoResults = errors.New("no results found")

	// ErrSearchFailure is returned when the upstream search fails.
	ErrSearchFailure = errors.New("failed to search for tracks")

	// ErrPlaybackFailed is returned when a track requested by a user could not be started.
	ErrPlaybackFailed = errors.New("failed to start playback")

	// ErrInvalidQuery is an alias for domain.ErrInvalidQuery.
	ErrInvalidQuery = domain.ErrInvalidQuery

	// ErrQueueFull is an alias for domain.ErrQueueFull.
	ErrQueueFull = domain.ErrQueueFull

	// ErrEmptyPlaylist is an alias for domain.ErrEmptyPlaylist.
	ErrEmptyPlaylist = domain.ErrEmptyPlaylist
)
