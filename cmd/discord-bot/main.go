package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aleister1102/globalping-bots/internal/app"
	"github.com/aleister1102/globalping-bots/internal/config"
)

func main() {
	configFile := flag.String("config", "", "Path to the YAML/JSON configuration file. If not set, searches default locations.")
	configFileAlias := flag.String("c", "", "Alias for -config")
	flag.Parse()

	if *configFile == "" {
		*configFile = *configFileAlias
	}

	a, err := app.New(app.Options{
		ConfigPath: *configFile,
		Surface:    config.SurfaceDiscord,
		Service:    "discord-bot",
		HotReload:  true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "[FATAL] Could not start Discord bot: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.Start(ctx)

	bot, err := NewBot(a)
	if err != nil {
		a.Logger.Fatal().Err(err).Msg("Failed to create Discord bot")
	}

	a.Logger.Info().Msg("Starting Globalping Discord bot...")
	if err := bot.Start(ctx); err != nil {
		a.Logger.Error().Err(err).Msg("Bot stopped with error")
		os.Exit(1)
	}
	a.Logger.Info().Msg("Discord bot stopped")
}
