package music_player

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/caarlos0/env/v11"
	"github.com/sglre6355/lavabot/internal/bot"
	"github.com/sglre6355/lavabot/internal/modules/music_player/application"
	"github.com/sglre6355/lavabot/internal/modules/music_player/application/usecases"
	"github.com/sglre6355/lavabot/internal/modules/music_player/infrastructure"
	"github.com/sglre6355/lavabot/internal/modules/music_player/presentation/discord"
)

// lavalinkConnectTimeout bounds the initial connection to the Lavalink node.
const lavalinkConnectTimeout = 15 * time.Second

func init() {
	bot.Register(&MusicPlayerModule{})
}

// Compile-time interface checks.
var _ bot.ConfigurableModule = (*MusicPlayerModule)(nil)

// MusicPlayerModule provides music playback commands.
type MusicPlayerModule struct {
	config          *Config
	commandHandlers *discord.CommandHandlers
	eventHandlers   *discord.EventHandlers
	lavalinkAdapter *infrastructure.LavalinkAdapter
	registry        *usecases.SessionRegistry
	searchCache     *usecases.SearchCache

	// Event-driven components
	eventBus        *infrastructure.ChannelEventBus
	playbackHandler *application.PlaybackEventHandler
}

// Name returns the module name.
func (m *MusicPlayerModule) Name() string {
	return "music_player"
}

// Commands returns the slash commands for this module.
func (m *MusicPlayerModule) Commands() []*discordgo.ApplicationCommand {
	return discord.Commands()
}

// CommandHandlers returns the command handlers for this module.
func (m *MusicPlayerModule) CommandHandlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		"join":  m.commandHandlers.HandleJoin,
		"leave": m.commandHandlers.HandleLeave,
		"play":  m.commandHandlers.HandlePlay,
		"stop":  m.commandHandlers.HandleStop,
		"skip":  m.commandHandlers.HandleSkip,
		"queue": m.commandHandlers.HandleQueue,
		"clear": m.commandHandlers.HandleClear,
	}
}

// EventHandlers returns the event handlers for this module.
func (m *MusicPlayerModule) EventHandlers() []bot.EventHandler {
	return []bot.EventHandler{
		func(s *discordgo.Session, event *discordgo.VoiceServerUpdate) {
			m.handleVoiceServerUpdate(s, event)
		},
		func(s *discordgo.Session, event *discordgo.VoiceStateUpdate) {
			m.handleVoiceStateUpdate(s, event)
		},
	}
}

// LoadConfig loads module-specific configuration from environment variables.
func (m *MusicPlayerModule) LoadConfig() error {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return err
	}
	m.config = cfg
	return nil
}

// Init connects to Lavalink and wires the playback services.
func (m *MusicPlayerModule) Init(ctx context.Context, deps bot.ModuleDependencies) error {
	if deps.Session == nil {
		return errors.New("music_player module requires a Discord session")
	}
	if m.config == nil {
		if err := m.LoadConfig(); err != nil {
			return err
		}
	}

	// Create event bus (needed by Lavalink adapter for publishing events)
	m.eventBus = infrastructure.NewChannelEventBus(infrastructure.DefaultEventBufferSize)

	// Create Lavalink adapter
	lavalinkConfig := infrastructure.LavalinkConfig{
		Address:  m.config.LavalinkAddress,
		Password: m.config.LavalinkPassword,
		Secure:   m.config.LavalinkSecure,
	}

	connectCtx, cancel := context.WithTimeout(ctx, lavalinkConnectTimeout)
	defer cancel()

	lavalinkAdapter, err := infrastructure.NewLavalinkAdapter(
		connectCtx,
		deps.Session,
		lavalinkConfig,
		m.eventBus,
	)
	if err != nil {
		m.eventBus.Close()
		return err
	}
	m.lavalinkAdapter = lavalinkAdapter

	// Create infrastructure
	voiceState := infrastructure.NewVoiceStateProvider(deps.Session)
	resolver := infrastructure.NewThrottledResolver(
		lavalinkAdapter,
		m.config.SearchRateLimit,
		m.config.SearchRateBurst,
	)

	searchCache, err := usecases.NewSearchCache(resolver, m.config.SearchCacheSize)
	if err != nil {
		_ = m.Shutdown(ctx)
		return fmt.Errorf("failed to create search cache: %w", err)
	}

	// Create services
	registry := usecases.NewSessionRegistry(m.config.MaxQueueSize)
	m.registry = registry
	m.searchCache = searchCache
	gate := usecases.NewCommandGate(voiceState)

	voiceChannel := usecases.NewVoiceChannelService(
		registry,
		lavalinkAdapter,
		voiceState,
		gate,
		lavalinkAdapter.BotID(),
	)
	playback := usecases.NewPlaybackService(registry, lavalinkAdapter, gate)
	queue := usecases.NewQueueService(registry, gate, m.config.QueuePageSize)
	play := usecases.NewPlayService(voiceChannel, searchCache, playback)

	// Register application event handlers
	m.playbackHandler = application.NewPlaybackEventHandler(playback, m.eventBus)
	m.playbackHandler.Start()

	// Create presentation handlers
	m.commandHandlers = discord.NewCommandHandlers(voiceChannel, playback, queue, play)
	m.eventHandlers = discord.NewEventHandlers(lavalinkAdapter.BotID(), voiceChannel)

	slog.Info("initialized music_player module",
		"search_cache_size", m.config.SearchCacheSize,
		"max_queue_size", m.config.MaxQueueSize,
	)

	return nil
}

// Shutdown closes the event bus and the Lavalink connection.
func (m *MusicPlayerModule) Shutdown(context.Context) error {
	if m.registry != nil && m.searchCache != nil {
		slog.Info("shutting down music_player module",
			"sessions", m.registry.Count(),
			"cached_searches", m.searchCache.Len(),
		)
	}

	// Stop dispatching events before the link goes away
	if m.eventBus != nil {
		m.eventBus.Close()
	}

	// Close Lavalink connection
	if m.lavalinkAdapter != nil {
		m.lavalinkAdapter.Close()
	}

	return nil
}

// Event handlers.

func (m *MusicPlayerModule) handleVoiceServerUpdate(
	_ *discordgo.Session,
	event *discordgo.VoiceServerUpdate,
) {
	if m.lavalinkAdapter != nil {
		m.lavalinkAdapter.OnVoiceServerUpdate(event)
	}
}

func (m *MusicPlayerModule) handleVoiceStateUpdate(
	s *discordgo.Session,
	event *discordgo.VoiceStateUpdate,
) {
	if m.lavalinkAdapter != nil {
		m.lavalinkAdapter.OnVoiceStateUpdate(event)
	}
	if m.eventHandlers != nil {
		m.eventHandlers.HandleVoiceStateUpdate(s, event)
	}
}
