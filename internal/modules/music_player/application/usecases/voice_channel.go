package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/lavabot/internal/modules/music_player/application/ports"
)

// playerCleanupTimeout bounds releasing the audio player after a forced disconnect.
const playerCleanupTimeout = 5 * time.Second

// JoinInput contains the input for the Join use case.
type JoinInput struct {
	GuildID snowflake.ID
	UserID  snowflake.ID
}

// JoinOutput contains the result of the Join use case.
type JoinOutput struct {
	VoiceChannelID snowflake.ID
	Created        bool // false if the bot was already in the channel
}

// LeaveInput contains the input for the Leave use case.
type LeaveInput struct {
	GuildID snowflake.ID
	UserID  snowflake.ID
}

// BotVoiceStateChangeInput contains the input for handling bot voice state changes.
type BotVoiceStateChangeInput struct {
	GuildID      snowflake.ID
	NewChannelID *snowflake.ID // nil means disconnected
}

// VoiceChannelService handles voice channel operations.
type VoiceChannelService struct {
	registry        *SessionRegistry
	voiceConnection ports.VoiceConnection
	voiceState      ports.VoiceStateProvider
	gate            *CommandGate
	botUserID       snowflake.ID
}

// NewVoiceChannelService creates a new VoiceChannelService.
func NewVoiceChannelService(
	registry *SessionRegistry,
	voiceConnection ports.VoiceConnection,
	voiceState ports.VoiceStateProvider,
	gate *CommandGate,
	botUserID snowflake.ID,
) *VoiceChannelService {
	return &VoiceChannelService{
		registry:        registry,
		voiceConnection: voiceConnection,
		voiceState:      voiceState,
		gate:            gate,
		botUserID:       botUserID,
	}
}

// Join connects the bot to the user's voice channel, or confirms it is already there.
func (v *VoiceChannelService) Join(ctx context.Context, input JoinInput) (*JoinOutput, error) {
	channelID, err := v.voiceState.GetUserVoiceChannel(input.GuildID, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user voice channel: %w", err)
	}

	var created bool
	err = v.registry.WithGuild(input.GuildID, func(g *Guild) error {
		var err error
		_, created, err = g.GetOrCreate(ctx, channelID, func(ctx context.Context) error {
			return v.voiceConnection.JoinChannel(ctx, input.GuildID, channelID)
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return &JoinOutput{VoiceChannelID: channelID, Created: created}, nil
}

// Leave disconnects the bot and discards the guild's session.
func (v *VoiceChannelService) Leave(ctx context.Context, input LeaveInput) error {
	return v.registry.WithGuild(input.GuildID, func(g *Guild) error {
		if err := v.gate.Authorize(input.GuildID, input.UserID, g.Session()); err != nil {
			return err
		}

		if err := v.voiceConnection.LeaveChannel(ctx, input.GuildID); err != nil {
			return fmt.Errorf("failed to leave voice channel: %w", err)
		}

		g.Remove()
		return nil
	})
}

// HandleBotVoiceStateChange reacts to the bot being moved or disconnected by someone else.
func (v *VoiceChannelService) HandleBotVoiceStateChange(input BotVoiceStateChangeInput) {
	_ = v.registry.WithGuild(input.GuildID, func(g *Guild) error {
		session := g.Session()
		if session == nil {
			return nil
		}

		if input.NewChannelID == nil {
			// A disconnect delivered after a rejoin must not remove the new session.
			current, err := v.voiceState.GetUserVoiceChannel(input.GuildID, v.botUserID)
			if err == nil && current != 0 && current == session.VoiceChannelID() {
				return nil
			}

			slog.Info("bot disconnected from voice",
				"guild", input.GuildID,
				"session", session.ID(),
			)

			ctx, cancel := context.WithTimeout(context.Background(), playerCleanupTimeout)
			defer cancel()
			if err := v.voiceConnection.LeaveChannel(ctx, input.GuildID); err != nil {
				slog.Warn("failed to release player after disconnect",
					"guild", input.GuildID,
					"session", session.ID(),
					"error", err,
				)
			}

			g.Remove()
			return nil
		}

		if *input.NewChannelID != session.VoiceChannelID() {
			slog.Info("bot moved to another voice channel",
				"guild", input.GuildID,
				"session", session.ID(),
				"channel", *input.NewChannelID,
			)
			session.Rebind(*input.NewChannelID)
		}
		return nil
	})
}
