package discord

import (
	"context"
	"strconv"
	"sync"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/lavabot/internal/bot"
	"github.com/sglre6355/lavabot/internal/modules/music_player/application/usecases"
	"github.com/sglre6355/lavabot/internal/modules/music_player/domain"
)

const (
	testGuildID    snowflake.ID = 1
	testChannelID  snowflake.ID = 10
	testUserID     snowflake.ID = 100
	testOutsiderID snowflake.ID = 200
	testBotID      snowflake.ID = 999
)

type testError string

func (e testError) Error() string { return string(e) }

type fakeAudioPlayer struct {
	mu     sync.Mutex
	played []string
}

func (f *fakeAudioPlayer) Play(_ context.Context, _ snowflake.ID, track *domain.Track) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.played = append(f.played, track.Title)
	return nil
}

func (f *fakeAudioPlayer) Stop(context.Context, snowflake.ID) error {
	return nil
}

type fakeVoiceConnection struct {
	joinErr error
}

func (f *fakeVoiceConnection) JoinChannel(context.Context, snowflake.ID, snowflake.ID) error {
	return f.joinErr
}

func (f *fakeVoiceConnection) LeaveChannel(context.Context, snowflake.ID) error {
	return nil
}

type fakeVoiceState struct {
	channels map[snowflake.ID]snowflake.ID
}

func (f *fakeVoiceState) GetUserVoiceChannel(_, userID snowflake.ID) (snowflake.ID, error) {
	return f.channels[userID], nil
}

type fakeResolver struct {
	results map[string]*domain.TrackList
	err     error
}

func (f *fakeResolver) LoadTracks(_ context.Context, query string) (*domain.TrackList, error) {
	if f.err != nil {
		return nil, f.err
	}
	if result, ok := f.results[query]; ok {
		return result, nil
	}
	return domain.NewEmptyTrackList(), nil
}

func testTrack(title string) *domain.Track {
	return &domain.Track{
		Encoded: "encoded-" + title,
		Title:   title,
		Artist:  "Artist",
		URI:     "https://example.com/" + title,
	}
}

// handlerFixture wires real services to fakes.
type handlerFixture struct {
	handlers     *CommandHandlers
	player       *fakeAudioPlayer
	voice        *fakeVoiceConnection
	voiceState   *fakeVoiceState
	resolver     *fakeResolver
	voiceChannel *usecases.VoiceChannelService
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()

	player := &fakeAudioPlayer{}
	voice := &fakeVoiceConnection{}
	voiceState := &fakeVoiceState{channels: map[snowflake.ID]snowflake.ID{
		testUserID:     testChannelID,
		testOutsiderID: testChannelID + 1,
	}}
	resolver := &fakeResolver{results: make(map[string]*domain.TrackList)}

	cache, err := usecases.NewSearchCache(resolver, 10)
	if err != nil {
		t.Fatalf("failed to create search cache: %v", err)
	}

	registry := usecases.NewSessionRegistry(3)
	gate := usecases.NewCommandGate(voiceState)
	voiceChannel := usecases.NewVoiceChannelService(registry, voice, voiceState, gate, testBotID)
	playback := usecases.NewPlaybackService(registry, player, gate)
	queue := usecases.NewQueueService(registry, gate, 2)
	play := usecases.NewPlayService(voiceChannel, cache, playback)

	return &handlerFixture{
		handlers:     NewCommandHandlers(voiceChannel, playback, queue, play),
		player:       player,
		voice:        voice,
		voiceState:   voiceState,
		resolver:     resolver,
		voiceChannel: voiceChannel,
	}
}

// play runs /play as testUserID and returns the edited embed.
func (f *handlerFixture) play(t *testing.T, query string) *discordgo.MessageEmbed {
	t.Helper()

	r := &bot.MockResponder{}
	i := newInteraction(testUserID, "play", stringOption("query", query))
	if err := f.handlers.HandlePlay(nil, i, r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return editedEmbed(t, r)
}

func newInteraction(
	userID snowflake.ID,
	command string,
	options ...*discordgo.ApplicationCommandInteractionDataOption,
) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			Type:    discordgo.InteractionApplicationCommand,
			GuildID: strconv.FormatUint(uint64(testGuildID), 10),
			Member: &discordgo.Member{
				User: &discordgo.User{ID: strconv.FormatUint(uint64(userID), 10)},
			},
			Data: discordgo.ApplicationCommandInteractionData{
				Name:    command,
				Options: options,
			},
		},
	}
}

func stringOption(name, value string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  name,
		Type:  discordgo.ApplicationCommandOptionString,
		Value: value,
	}
}

func intOption(name string, value int) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  name,
		Type:  discordgo.ApplicationCommandOptionInteger,
		Value: float64(value),
	}
}

func respondedEmbed(t *testing.T, r *bot.MockResponder) *discordgo.MessageEmbed {
	t.Helper()

	if r.LastResponse == nil || r.LastResponse.Data == nil || len(r.LastResponse.Data.Embeds) != 1 {
		t.Fatalf("expected a single embed response, got %+v", r.LastResponse)
	}
	return r.LastResponse.Data.Embeds[0]
}

func editedEmbed(t *testing.T, r *bot.MockResponder) *discordgo.MessageEmbed {
	t.Helper()

	if !r.Deferred {
		t.Fatal("expected response to be deferred")
	}
	if r.LastEdit == nil || r.LastEdit.Embeds == nil || len(*r.LastEdit.Embeds) != 1 {
		t.Fatalf("expected a single embed edit, got %+v", r.LastEdit)
	}
	return (*r.LastEdit.Embeds)[0]
}

func snowflakeID(id uint64) snowflake.ID {
	return snowflake.ID(id)
}
