package bot

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// InteractionHandler handles an application command and responds through r.
// A returned error is reported to the user as a generic failure.
type InteractionHandler func(s *discordgo.Session, i *discordgo.InteractionCreate, r Responder) error

// EventHandler is a function matching one of discordgo's handler signatures,
// e.g. func(s *discordgo.Session, m *discordgo.VoiceStateUpdate).
type EventHandler any

// ModuleDependencies are the shared resources handed to every module.
type ModuleDependencies struct {
	// Session is connected and its State carries the bot user.
	Session *discordgo.Session
}

// Module is a self-contained feature set of the bot.
type Module interface {
	Name() string

	// Commands returns the slash commands the module owns.
	Commands() []*discordgo.ApplicationCommand

	// CommandHandlers maps each command name from Commands to its handler.
	CommandHandlers() map[string]InteractionHandler

	// EventHandlers returns gateway event handlers to register on the session.
	EventHandlers() []EventHandler

	// Init builds the module's services. ctx bounds any setup I/O.
	Init(ctx context.Context, deps ModuleDependencies) error

	// Shutdown releases the module's resources. ctx bounds the shutdown.
	Shutdown(ctx context.Context) error
}

// ConfigurableModule is implemented by modules that read their own configuration.
// LoadConfig runs before the Discord connection is opened, so missing settings
// fail fast.
type ConfigurableModule interface {
	LoadConfig() error
}
