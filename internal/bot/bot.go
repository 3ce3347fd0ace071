package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"

	"github.com/bwmarrin/discordgo"
)

// Bot owns the Discord session and drives the module lifecycle.
type Bot struct {
	config   *Config
	session  *discordgo.Session
	modules  []Module
	handlers map[string]InteractionHandler
}

// NewBot creates a new Bot instance with the given configuration.
func NewBot(cfg *Config) *Bot {
	return &Bot{
		config:   cfg,
		handlers: make(map[string]InteractionHandler),
	}
}

// LoadModules loads modules from the global registry.
func (b *Bot) LoadModules() {
	b.modules = Modules()
}

// Start loads module configuration, connects to Discord, initializes modules
// and registers commands.
// Modules are initialized after the connection is open because they may
// depend on the bot user from the Ready event.
func (b *Bot) Start(ctx context.Context) error {
	if err := b.loadModuleConfigs(); err != nil {
		return fmt.Errorf("failed to load module configuration: %w", err)
	}

	session, err := discordgo.New("Bot " + b.config.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create Discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildVoiceStates
	b.session = session

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}

	if err := b.initModules(ctx); err != nil {
		return fmt.Errorf("failed to initialize modules: %w", err)
	}

	if err := b.buildHandlerMap(); err != nil {
		return err
	}
	b.session.AddHandler(b.handleInteraction)
	b.registerEventHandlers()

	if err := b.registerCommands(); err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}

	slog.Info("started bot",
		"user_id", b.session.State.User.ID,
		"username", b.session.State.User.Username,
	)

	return nil
}

// Stop shuts modules down in reverse registration order, then closes the session.
func (b *Bot) Stop(ctx context.Context) error {
	for i := len(b.modules) - 1; i >= 0; i-- {
		mod := b.modules[i]
		if err := mod.Shutdown(ctx); err != nil {
			slog.Warn("failed to shutdown module", "module", mod.Name(), "error", err)
		}
	}

	if b.session != nil {
		return b.session.Close()
	}

	return nil
}

// loadModuleConfigs calls LoadConfig on every module that implements ConfigurableModule.
func (b *Bot) loadModuleConfigs() error {
	var errs []error
	for _, mod := range b.modules {
		configurable, ok := mod.(ConfigurableModule)
		if !ok {
			continue
		}
		if err := configurable.LoadConfig(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", mod.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// initModules initializes all loaded modules.
func (b *Bot) initModules(ctx context.Context) error {
	deps := ModuleDependencies{
		Session: b.session,
	}

	moduleNames := make([]string, 0, len(b.modules))
	for _, mod := range b.modules {
		if err := mod.Init(ctx, deps); err != nil {
			return fmt.Errorf("failed to initialize %s module: %w", mod.Name(), err)
		}
		slog.Debug("initialized module", "module", mod.Name())
		moduleNames = append(moduleNames, mod.Name())
	}
	slog.Info("initialized modules", "modules", moduleNames)

	return nil
}

// buildHandlerMap builds the command name to handler mapping.
// Two modules may not handle the same command.
func (b *Bot) buildHandlerMap() error {
	for _, mod := range b.modules {
		handlers := mod.CommandHandlers()
		for name := range handlers {
			if _, ok := b.handlers[name]; ok {
				return fmt.Errorf("command %q is handled by more than one module", name)
			}
		}
		maps.Copy(b.handlers, handlers)
	}
	return nil
}

// registerEventHandlers registers all module event handlers with the session.
func (b *Bot) registerEventHandlers() {
	for _, mod := range b.modules {
		for _, handler := range mod.EventHandlers() {
			b.session.AddHandler(handler)
		}
	}
}

// collectCommands gathers all commands from loaded modules.
func (b *Bot) collectCommands() []*discordgo.ApplicationCommand {
	var commands []*discordgo.ApplicationCommand
	for _, mod := range b.modules {
		commands = append(commands, mod.Commands()...)
	}
	return commands
}

// registerCommands replaces the bot's global commands with the modules' commands.
func (b *Bot) registerCommands() error {
	commands := b.collectCommands()

	registered, err := b.session.ApplicationCommandBulkOverwrite(
		b.session.State.User.ID,
		"", // Empty string registers commands globally
		commands,
	)
	if err != nil {
		return err
	}

	for _, cmd := range registered {
		slog.Debug("registered command", "command", cmd.Name)
	}

	return nil
}

// Embed colors for responses.
const (
	colorYellow = 0xFFFF00
	colorRed    = 0xFF0000
)

// handleInteraction routes incoming interactions to the appropriate handler.
func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	responder := NewDiscordResponder(s, i.Interaction)
	b.dispatch(s, i, responder)
}

// dispatch runs the command handler and reports failures to the user.
// A panicking handler is treated like one that returned an error.
func (b *Bot) dispatch(s *discordgo.Session, i *discordgo.InteractionCreate, r AckResponder) {
	cmdName := i.ApplicationCommandData().Name
	handler, ok := b.handlers[cmdName]
	if !ok {
		slog.Warn("found no handler for command", "command", cmdName)
		respondWithEmbed(r, "Unknown Command", "This command is not recognized.", colorYellow)
		return
	}

	defer func() {
		if p := recover(); p != nil {
			slog.Error("recovered from panic in command handler", "command", cmdName, "panic", p)
			respondWithEmbed(r, "Error", "An error occurred while processing your command.", colorRed)
		}
	}()

	if err := handler(s, i, r); err != nil {
		slog.Error("failed to handle command", "command", cmdName, "error", err)
		respondWithEmbed(r, "Error", "An error occurred while processing your command.", colorRed)
	}
}

// respondWithEmbed sends an embed, editing the response if the interaction
// was already acknowledged.
func respondWithEmbed(r AckResponder, title, description string, color int) {
	embeds := []*discordgo.MessageEmbed{
		{
			Title:       title,
			Description: description,
			Color:       color,
		},
	}

	var err error
	if r.Acknowledged() {
		err = r.EditResponse(&discordgo.WebhookEdit{Embeds: &embeds})
	} else {
		err = r.Respond(&discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{Embeds: embeds},
		})
	}
	if err != nil {
		slog.Error("failed to send embed response", "error", err)
	}
}
