package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aleister1102/globalping-bots/internal/app"
	"github.com/aleister1102/globalping-bots/internal/common"
	"github.com/aleister1102/globalping-bots/internal/config"
	"github.com/aleister1102/globalping-bots/internal/datastore"
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
		Surface:    config.SurfaceSlack,
		Service:    "slack-bot",
		HotReload:  true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "[FATAL] Could not start Slack bot: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	a.Start(ctx)

	cfg := a.Config.GetConfig()

	var store InstallationStore
	if cfg.Slack.OAuthEnabled() {
		sqliteStore, err := datastore.NewStore(cfg.Slack.DBPath, a.Logger)
		if err != nil {
			a.Logger.Fatal().Err(err).Msg("Failed to open installation store")
		}
		defer sqliteStore.Close()
		store = sqliteStore
	}

	executor := common.NewConcurrentExecutor(context.Background(), a.Logger, cfg.RateLimit.MaxConcurrent)
	server := NewServer(a, store, executor)

	httpServer := &http.Server{
		Addr:              cfg.Slack.ListenAddr,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		a.Logger.Info().Str("addr", httpServer.Addr).Bool("oauth", store != nil).Msg("Slack bot listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.Error().Err(err).Msg("HTTP server failed")
			stop()
		}
	}()

	<-ctx.Done()
	a.Logger.Info().Msg("Shutting down Slack bot...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		a.Logger.Warn().Err(err).Msg("HTTP server shutdown error")
	}
	if err := executor.Shutdown(15 * time.Second); err != nil {
		a.Logger.Warn().Err(err).Msg("Some commands did not finish before shutdown")
	}
	a.Logger.Info().Msg("Slack bot stopped")
}
