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
	"github.com/aleister1102/globalping-bots/internal/platform/lark"
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
		Surface:    config.SurfaceLark,
		Service:    "lark-bot",
		HotReload:  true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "[FATAL] Could not start Lark bot: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	a.Start(ctx)

	cfg := a.Config.GetConfig()
	messenger := lark.NewMessenger(cfg.Lark.AppID, cfg.Lark.AppSecret, cfg.Lark.BaseURL, a.Logger)
	executor := common.NewConcurrentExecutor(context.Background(), a.Logger, cfg.RateLimit.MaxConcurrent)
	server := NewServer(a, messenger, executor)

	httpServer := &http.Server{
		Addr:              cfg.Lark.ListenAddr,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		a.Logger.Info().Str("addr", httpServer.Addr).Msg("Lark bot listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.Error().Err(err).Msg("HTTP server failed")
			stop()
		}
	}()

	<-ctx.Done()
	a.Logger.Info().Msg("Shutting down Lark bot...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		a.Logger.Warn().Err(err).Msg("HTTP server shutdown error")
	}
	if err := executor.Shutdown(15 * time.Second); err != nil {
		a.Logger.Warn().Err(err).Msg("Some commands did not finish before shutdown")
	}
	a.Logger.Info().Msg("Lark bot stopped")
}
