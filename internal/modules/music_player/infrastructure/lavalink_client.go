package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/disgolink/v3/disgolink"
	"github.com/disgoorg/disgolink/v3/lavalink"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/lavabot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/lavabot/internal/modules/music_player/domain"
)

// voiceConnectionTimeout is the maximum time to wait for voice connection to be established.
const voiceConnectionTimeout = 10 * time.Second

var (
	// ErrNoNode is returned when no Lavalink node is available.
	ErrNoNode = errors.New("no available Lavalink node")

	// ErrLoadException is returned when Lavalink reports an exception while loading tracks.
	ErrLoadException = errors.New("lavalink failed to load tracks")
)

// LavalinkConfig contains Lavalink connection configuration.
type LavalinkConfig struct {
	Address  string
	Password string
	Secure   bool
}

// LavalinkAdapter wraps DisGoLink to implement the audio, voice and search ports.
type LavalinkAdapter struct {
	link      disgolink.Client
	session   *discordgo.Session
	botID     snowflake.ID
	publisher ports.EventPublisher

	handshakeMu sync.Mutex
	handshakes  map[snowflake.ID]*voiceHandshake
}

// NewLavalinkAdapter creates a new LavalinkAdapter and connects to the node.
// Track-end events are published to publisher.
func NewLavalinkAdapter(
	ctx context.Context,
	session *discordgo.Session,
	config LavalinkConfig,
	publisher ports.EventPublisher,
) (*LavalinkAdapter, error) {
	botID, err := snowflake.Parse(session.State.User.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bot ID: %w", err)
	}

	adapter := &LavalinkAdapter{
		session:    session,
		botID:      botID,
		publisher:  publisher,
		handshakes: make(map[snowflake.ID]*voiceHandshake),
	}

	adapter.link = disgolink.New(botID,
		disgolink.WithListenerFunc(adapter.onTrackStart),
		disgolink.WithListenerFunc(adapter.onTrackEnd),
		disgolink.WithListenerFunc(adapter.onTrackException),
		disgolink.WithListenerFunc(adapter.onTrackStuck),
	)

	node, err := adapter.link.AddNode(ctx, disgolink.NodeConfig{
		Name:     "main",
		Address:  config.Address,
		Password: config.Password,
		Secure:   config.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add Lavalink node: %w", err)
	}

	slog.Info("connected to Lavalink",
		"node", node.Config().Name,
		"address", config.Address,
		"secure", config.Secure,
	)

	return adapter, nil
}

// BotID returns the bot's user ID.
func (c *LavalinkAdapter) BotID() snowflake.ID {
	return c.botID
}

// Close disconnects from all Lavalink nodes.
func (c *LavalinkAdapter) Close() {
	c.link.Close()
}

// JoinChannel connects to a voice channel and waits until Lavalink has received
// both halves of the voice handshake.
func (c *LavalinkAdapter) JoinChannel(ctx context.Context, guildID, channelID snowflake.ID) error {
	handshake := newVoiceHandshake()

	c.handshakeMu.Lock()
	c.handshakes[guildID] = handshake
	c.handshakeMu.Unlock()

	err := c.session.ChannelVoiceJoinManual(guildID.String(), channelID.String(), false, true)
	if err != nil {
		return fmt.Errorf("failed to join voice channel: %w", err)
	}

	timer := time.NewTimer(voiceConnectionTimeout)
	defer timer.Stop()

	select {
	case <-handshake.Done():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("context cancelled while waiting for voice connection: %w", ctx.Err())
	case <-timer.C:
		return fmt.Errorf("timeout waiting for voice connection")
	}
}

// LeaveChannel destroys the guild's player and disconnects from voice.
func (c *LavalinkAdapter) LeaveChannel(ctx context.Context, guildID snowflake.ID) error {
	if player := c.link.ExistingPlayer(guildID); player != nil {
		if err := player.Destroy(ctx); err != nil {
			slog.Warn("failed to destroy player", "guild", guildID, "error", err)
		}
	}

	err := c.session.ChannelVoiceJoinManual(guildID.String(), "", false, false)
	if err != nil {
		return fmt.Errorf("failed to leave voice channel: %w", err)
	}
	return nil
}

// Play starts a track, replacing anything playing.
func (c *LavalinkAdapter) Play(
	ctx context.Context,
	guildID snowflake.ID,
	track *domain.Track,
) error {
	player := c.link.Player(guildID)

	// Use WithEncodedTrack to avoid userData:null issue
	if err := player.Update(ctx, lavalink.WithEncodedTrack(track.Encoded)); err != nil {
		return fmt.Errorf("failed to play track: %w", err)
	}

	return nil
}

// Stop stops the current track. Lavalink reports it as ended with reason "stopped".
func (c *LavalinkAdapter) Stop(ctx context.Context, guildID snowflake.ID) error {
	player := c.link.ExistingPlayer(guildID)
	if player == nil {
		return nil
	}

	if err := player.Update(ctx, lavalink.WithNullTrack()); err != nil {
		return fmt.Errorf("failed to stop playback: %w", err)
	}

	return nil
}

// LoadTracks resolves a Lavalink identifier on the best available node.
func (c *LavalinkAdapter) LoadTracks(ctx context.Context, query string) (*domain.TrackList, error) {
	node := c.link.BestNode()
	if node == nil {
		return nil, ErrNoNode
	}

	result, err := node.LoadTracks(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load tracks: %w", err)
	}

	return convertLoadResult(result)
}

// convertLoadResult converts a Lavalink load result to a domain track list.
func convertLoadResult(result *lavalink.LoadResult) (*domain.TrackList, error) {
	switch data := result.Data.(type) {
	case lavalink.Track:
		track := convertTrack(data)
		if !track.IsValid() {
			slog.Debug("skipping unplayable track", "identifier", track.Identifier)
			return domain.NewEmptyTrackList(), nil
		}
		return &domain.TrackList{
			Type:   domain.TrackListTypeTrack,
			Tracks: []*domain.Track{track},
		}, nil

	case lavalink.Playlist:
		return &domain.TrackList{
			Type:   domain.TrackListTypePlaylist,
			Name:   data.Info.Name,
			Tracks: convertTracks(data.Tracks),
		}, nil

	case lavalink.Search:
		return &domain.TrackList{
			Type:   domain.TrackListTypeSearch,
			Tracks: convertTracks(data),
		}, nil

	case lavalink.Exception:
		return nil, fmt.Errorf("%w: %s (%s)", ErrLoadException, data.Message, data.Severity)

	default:
		return domain.NewEmptyTrackList(), nil
	}
}

// convertTracks converts Lavalink tracks, dropping any that cannot be played.
func convertTracks(tracks []lavalink.Track) []*domain.Track {
	result := make([]*domain.Track, 0, len(tracks))
	for _, track := range tracks {
		converted := convertTrack(track)
		if !converted.IsValid() {
			slog.Debug("skipping unplayable track", "identifier", converted.Identifier)
			continue
		}
		result = append(result, converted)
	}
	return result
}

// convertTrack converts a Lavalink track to a domain track.
func convertTrack(track lavalink.Track) *domain.Track {
	info := track.Info

	return &domain.Track{
		Identifier: info.Identifier,
		Encoded:    track.Encoded,
		Title:      info.Title,
		Artist:     info.Author,
		Duration:   time.Duration(info.Length) * time.Millisecond,
		URI:        derefString(info.URI),
		ArtworkURL: derefString(info.ArtworkURL),
		SourceName: info.SourceName,
		IsStream:   info.IsStream,
	}
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// OnVoiceServerUpdate handles Discord voice server updates.
// This must be called from the Discord event handler.
func (c *LavalinkAdapter) OnVoiceServerUpdate(event *discordgo.VoiceServerUpdate) {
	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		slog.Error("failed to parse guild ID in voice server update", "error", err)
		return
	}

	handshake := c.handshake(guildID)
	if data, ok := handshake.setServer(event.Token, event.Endpoint); ok {
		c.forwardVoiceHandshake(guildID, handshake, data)
	}
}

// OnVoiceStateUpdate handles Discord voice state updates for the bot user.
// This must be called from the Discord event handler.
func (c *LavalinkAdapter) OnVoiceStateUpdate(event *discordgo.VoiceStateUpdate) {
	if event.UserID != c.botID.String() {
		return
	}

	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		slog.Error("failed to parse guild ID in voice state update", "error", err)
		return
	}

	// Disconnects need no server half.
	if event.ChannelID == "" {
		c.link.OnVoiceStateUpdate(context.Background(), guildID, nil, event.SessionID)
		c.handshakeMu.Lock()
		delete(c.handshakes, guildID)
		c.handshakeMu.Unlock()
		return
	}

	channelID, err := snowflake.Parse(event.ChannelID)
	if err != nil {
		slog.Error("failed to parse channel ID in voice state update", "error", err)
		return
	}

	handshake := c.handshake(guildID)
	if data, ok := handshake.setState(&channelID, event.SessionID); ok {
		c.forwardVoiceHandshake(guildID, handshake, data)
	}
}

// handshake returns the guild's handshake, creating one for updates that were
// not initiated by JoinChannel (e.g. a voice server migration).
func (c *LavalinkAdapter) handshake(guildID snowflake.ID) *voiceHandshake {
	c.handshakeMu.Lock()
	defer c.handshakeMu.Unlock()

	handshake, ok := c.handshakes[guildID]
	if !ok {
		handshake = newVoiceHandshake()
		c.handshakes[guildID] = handshake
	}
	return handshake
}

func (c *LavalinkAdapter) forwardVoiceHandshake(
	guildID snowflake.ID,
	handshake *voiceHandshake,
	data voiceHandshakeData,
) {
	slog.Debug("forwarding voice handshake to Lavalink",
		"guild", guildID,
		"channel", data.channelID,
	)

	c.link.OnVoiceStateUpdate(context.Background(), guildID, data.channelID, data.sessionID)
	c.link.OnVoiceServerUpdate(context.Background(), guildID, data.token, data.endpoint)

	handshake.complete()
}

func (c *LavalinkAdapter) onTrackStart(player disgolink.Player, event lavalink.TrackStartEvent) {
	slog.Debug("track started", "guild", player.GuildID(), "track", event.Track.Info.Title)
}

func (c *LavalinkAdapter) onTrackEnd(player disgolink.Player, event lavalink.TrackEndEvent) {
	c.publisher.PublishTrackEnded(domain.TrackEndedEvent{
		GuildID:      player.GuildID(),
		TrackEncoded: event.Track.Encoded,
		Reason:       convertEndReason(event.Reason),
	})
}

func (c *LavalinkAdapter) onTrackException(
	player disgolink.Player,
	event lavalink.TrackExceptionEvent,
) {
	slog.Warn("track exception",
		"guild", player.GuildID(),
		"track", event.Track.Info.Title,
		"error", event.Exception.Message,
	)
}

func (c *LavalinkAdapter) onTrackStuck(player disgolink.Player, event lavalink.TrackStuckEvent) {
	slog.Warn("track stuck",
		"guild", player.GuildID(),
		"track", event.Track.Info.Title,
		"threshold", event.Threshold,
	)
}

func convertEndReason(reason lavalink.TrackEndReason) domain.TrackEndReason {
	switch reason {
	case lavalink.TrackEndReasonFinished:
		return domain.TrackEndFinished
	case lavalink.TrackEndReasonLoadFailed:
		return domain.TrackEndLoadFailed
	case lavalink.TrackEndReasonStopped:
		return domain.TrackEndStopped
	case lavalink.TrackEndReasonReplaced:
		return domain.TrackEndReplaced
	case lavalink.TrackEndReasonCleanup:
		return domain.TrackEndCleanup
	default:
		return domain.TrackEndCleanup
	}
}

// Ensure LavalinkAdapter implements port interfaces.
var (
	_ ports.AudioPlayer     = (*LavalinkAdapter)(nil)
	_ ports.VoiceConnection = (*LavalinkAdapter)(nil)
	_ ports.TrackResolver   = (*LavalinkAdapter)(nil)
)
