package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/lavabot/internal/bot"
	"github.com/sglre6355/lavabot/internal/modules/music_player/application/usecases"
)

// Embed colors.
const (
	colorSuccess = 0x08c404
	colorError   = 0xE74C3C
)

// playTimeout bounds the voice connect and search of a /play command.
const playTimeout = 30 * time.Second

const guildOnlyMessage = "This command can only be used in a server."

// genericErrorMessage is shown for errors that have no user-facing message.
const genericErrorMessage = "An error occurred while processing your command."

// CommandHandlers holds all the command handlers.
type CommandHandlers struct {
	voiceChannel *usecases.VoiceChannelService
	playback     *usecases.PlaybackService
	queue        *usecases.QueueService
	play         *usecases.PlayService
}

// NewCommandHandlers creates new CommandHandlers.
func NewCommandHandlers(
	voiceChannel *usecases.VoiceChannelService,
	playback *usecases.PlaybackService,
	queue *usecases.QueueService,
	play *usecases.PlayService,
) *CommandHandlers {
	return &CommandHandlers{
		voiceChannel: voiceChannel,
		playback:     playback,
		queue:        queue,
		play:         play,
	}
}

// HandleJoin handles the /join command.
func (h *CommandHandlers) HandleJoin(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, userID, err := interactionIDs(i)
	if err != nil {
		return respondError(r, guildOnlyMessage)
	}

	output, err := h.voiceChannel.Join(context.Background(), usecases.JoinInput{
		GuildID: guildID,
		UserID:  userID,
	})
	if err != nil {
		return respondUseCaseError(r, "join", err)
	}

	description := fmt.Sprintf("Connected to <#%d>.", output.VoiceChannelID)
	if !output.Created {
		description = fmt.Sprintf("Already connected to <#%d>.", output.VoiceChannelID)
	}

	return respondSuccess(r, description)
}

// HandleLeave handles the /leave command.
func (h *CommandHandlers) HandleLeave(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, userID, err := interactionIDs(i)
	if err != nil {
		return respondError(r, guildOnlyMessage)
	}

	err = h.voiceChannel.Leave(context.Background(), usecases.LeaveInput{
		GuildID: guildID,
		UserID:  userID,
	})
	if err != nil {
		return respondUseCaseError(r, "leave", err)
	}

	return respondSuccess(r, "Disconnected.")
}

// HandlePlay handles the /play command.
// The response is deferred because connecting and searching can take longer
// than Discord's initial response window.
func (h *CommandHandlers) HandlePlay(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, userID, err := interactionIDs(i)
	if err != nil {
		return respondError(r, guildOnlyMessage)
	}

	var query string
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "query" {
			query = opt.StringValue()
		}
	}

	if err := r.Defer(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), playTimeout)
	defer cancel()

	output, err := h.play.Play(ctx, usecases.PlayInput{
		GuildID: guildID,
		UserID:  userID,
		Query:   query,
	})
	if err != nil {
		if errors.Is(err, usecases.ErrNoResults) {
			return editError(r, fmt.Sprintf("No results found for: `%s`", strings.TrimSpace(query)))
		}

		message, ok := userMessage(err)
		if !ok {
			message = genericErrorMessage
		}
		slog.Warn("failed to handle command", "command", "play", "guild", guildID, "error", err)
		return editError(r, message)
	}

	return editSuccess(r, playDescription(output))
}

func playDescription(output *usecases.PlayOutput) string {
	if output.PlaylistName != "" {
		description := fmt.Sprintf(
			"Added %d tracks from playlist `%s`",
			output.Added,
			output.PlaylistName,
		)
		if output.Dropped > 0 {
			description += fmt.Sprintf(
				"\n%d tracks were not added because the queue is full.",
				output.Dropped,
			)
		}
		if output.Track != nil {
			description += "\nNow playing: " + trackLink(output.Track)
		}
		return description
	}

	if output.Started {
		return "Now playing: " + trackLink(output.Track)
	}
	return fmt.Sprintf("Added to queue: %s (position %d)", trackLink(output.Track), output.Position)
}

// HandleStop handles the /stop command.
func (h *CommandHandlers) HandleStop(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, userID, err := interactionIDs(i)
	if err != nil {
		return respondError(r, guildOnlyMessage)
	}

	output, err := h.playback.Stop(context.Background(), usecases.StopInput{
		GuildID: guildID,
		UserID:  userID,
	})
	if err != nil {
		return respondUseCaseError(r, "stop", err)
	}

	if !output.Stopped {
		return respondSuccess(r, "Nothing to stop.")
	}
	return respondSuccess(r, "Stopped playback and cleared the queue.")
}

// HandleSkip handles the /skip command.
func (h *CommandHandlers) HandleSkip(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, userID, err := interactionIDs(i)
	if err != nil {
		return respondError(r, guildOnlyMessage)
	}

	output, err := h.playback.Skip(context.Background(), usecases.SkipInput{
		GuildID: guildID,
		UserID:  userID,
	})
	if err != nil {
		return respondUseCaseError(r, "skip", err)
	}

	description := fmt.Sprintf("Skipped %s.", trackLink(output.SkippedTrack))
	if output.NextTrack != nil {
		description += "\nUp next: " + trackLink(output.NextTrack)
	}

	return respondSuccess(r, description)
}

// HandleQueue handles the /queue command.
func (h *CommandHandlers) HandleQueue(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, _, err := interactionIDs(i)
	if err != nil {
		return respondError(r, guildOnlyMessage)
	}

	var page int
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "page" {
			page = int(opt.IntValue())
		}
	}

	output, err := h.queue.List(usecases.QueueListInput{
		GuildID: guildID,
		Page:    page,
	})
	if err != nil {
		return respondUseCaseError(r, "queue", err)
	}

	return respondEmbed(r, queueEmbed(output))
}

func queueEmbed(output *usecases.QueueListOutput) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "Queue",
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf(
				"Page %d/%d | %d tracks in queue",
				output.CurrentPage,
				output.TotalPages,
				output.TotalTracks,
			),
		},
	}

	if output.Current == nil && output.TotalTracks == 0 {
		embed.Description = "Queue is empty."
		return embed
	}

	var sb strings.Builder

	if output.Current != nil {
		sb.WriteString("### Now Playing\n")
		fmt.Fprintf(&sb, "%s - %s `%s`\n",
			trackLink(output.Current.Track),
			output.Current.Track.Artist,
			output.Current.Track.FormattedDuration(),
		)
	}

	if len(output.Entries) > 0 {
		sb.WriteString("### Up Next\n")
		for i, entry := range output.Entries {
			writeTrackLine(&sb, output.Offset+i+1, entry.Track)
		}
	}

	if remaining := output.TotalTracks - output.Offset - len(output.Entries); remaining > 0 {
		fmt.Fprintf(&sb, "... and %d more\n", remaining)
	}

	embed.Description = sb.String()
	return embed
}

// HandleClear handles the /clear command.
func (h *CommandHandlers) HandleClear(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, userID, err := interactionIDs(i)
	if err != nil {
		return respondError(r, guildOnlyMessage)
	}

	output, err := h.queue.Clear(usecases.QueueClearInput{
		GuildID: guildID,
		UserID:  userID,
	})
	if err != nil {
		return respondUseCaseError(r, "clear", err)
	}

	if output.ClearedCount == 0 {
		return respondSuccess(r, "Queue is already empty.")
	}
	return respondSuccess(r, fmt.Sprintf("Cleared %d tracks from the queue.", output.ClearedCount))
}

var errGuildOnly = errors.New("command used outside of a guild")

// interactionIDs extracts the guild and invoking user of a guild interaction.
func interactionIDs(i *discordgo.InteractionCreate) (guildID, userID snowflake.ID, err error) {
	if i.GuildID == "" || i.Member == nil || i.Member.User == nil {
		return 0, 0, errGuildOnly
	}

	guildID, err = snowflake.Parse(i.GuildID)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid guild ID: %w", err)
	}

	userID, err = snowflake.Parse(i.Member.User.ID)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid user ID: %w", err)
	}

	return guildID, userID, nil
}

// Response helpers.

// respondUseCaseError responds with the user-facing message of a known error.
// Unknown errors are returned so the bot replies with its generic error embed.
func respondUseCaseError(r bot.Responder, command string, err error) error {
	message, ok := userMessage(err)
	if !ok {
		return err
	}

	slog.Debug("rejected command", "command", command, "error", err)
	return respondError(r, message)
}

func respondEmbed(r bot.Responder, embed *discordgo.MessageEmbed) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
}

func respondSuccess(r bot.Responder, description string) error {
	return respondEmbed(r, &discordgo.MessageEmbed{
		Description: description,
		Color:       colorSuccess,
	})
}

func respondError(r bot.Responder, message string) error {
	return respondEmbed(r, &discordgo.MessageEmbed{
		Title:       "Error",
		Description: message,
		Color:       colorError,
	})
}

func editEmbed(r bot.Responder, embed *discordgo.MessageEmbed) error {
	embeds := []*discordgo.MessageEmbed{embed}
	return r.EditResponse(&discordgo.WebhookEdit{Embeds: &embeds})
}

func editSuccess(r bot.Responder, description string) error {
	return editEmbed(r, &discordgo.MessageEmbed{
		Description: description,
		Color:       colorSuccess,
	})
}

func editError(r bot.Responder, message string) error {
	return editEmbed(r, &discordgo.MessageEmbed{
		Title:       "Error",
		Description: message,
		Color:       colorError,
	})
}

func trackLink(track *usecases.Track) string {
	if track.URI != "" {
		return fmt.Sprintf("[%s](%s)", track.Title, track.URI)
	}
	return fmt.Sprintf("**%s**", track.Title)
}

// writeTrackLine writes a single track line to the string builder.
// Escapes period to prevent Discord markdown list formatting.
func writeTrackLine(sb *strings.Builder, displayIndex int, track *usecases.Track) {
	fmt.Fprintf(sb, "%d\\. %s - %s\n", displayIndex, trackLink(track), track.Artist)
}
