package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sglre6355/lavabot/internal/bot"
	_ "github.com/sglre6355/lavabot/internal/modules/music_player"
)

// version is set at build time via ldflags:
// go build -ldflags "-X main.version=1.0.0" ./cmd/lavabot
var version = "dev"

// shutdownTimeout bounds module shutdown after a termination signal.
const shutdownTimeout = 10 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	// Log as JSON until the configured logger is available
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := bot.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}

	logger, logCloser, err := bot.NewLogger(cfg)
	if err != nil {
		slog.Error("failed to create logger", "error", err)
		return 1
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	slog.Info("starting lavabot", "version", version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b := bot.NewBot(cfg)
	b.LoadModules()

	if err := b.Start(ctx); err != nil {
		slog.Error("failed to start bot", "error", err)
		shutdown(b)
		return 1
	}

	<-ctx.Done()
	slog.Info("received termination signal, shutting down")
	shutdown(b)

	slog.Info("completed bot shutdown")
	return 0
}

func shutdown(b *bot.Bot) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := b.Stop(ctx); err != nil {
		slog.Error("failed to shutdown", "error", err)
	}
}
