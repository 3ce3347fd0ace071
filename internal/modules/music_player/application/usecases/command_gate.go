package usecases

import (
	"fmt"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/lavabot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/lavabot/internal/modules/music_player/domain"
)

// CommandGate decides whether a user may run commands that change a session.
type CommandGate struct {
	voiceState ports.VoiceStateProvider
}

// NewCommandGate creates a new CommandGate.
func NewCommandGate(voiceState ports.VoiceStateProvider) *CommandGate {
	return &CommandGate{voiceState: voiceState}
}

// Authorize returns nil if the user is in the voice channel the session is bound to.
func (g *CommandGate) Authorize(guildID, userID snowflake.ID, session *domain.Session) error {
	if session == nil {
		return ErrNotConnected
	}

	channelID, err := g.voiceState.GetUserVoiceChannel(guildID, userID)
	if err != nil {
		return fmt.Errorf("failed to get user voice channel: %w", err)
	}

	if !domain.IsPrivileged(channelID, session) {
		return ErrNotPrivileged
	}

	return nil
}
