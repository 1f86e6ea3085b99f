// Package app wires configuration, logging, the Globalping client and the
// command pipeline together for the bot binaries.
package app

import (
	"context"
	"io"

	"github.com/aleister1102/globalping-bots/internal/cache"
	"github.com/aleister1102/globalping-bots/internal/common"
	"github.com/aleister1102/globalping-bots/internal/config"
	"github.com/aleister1102/globalping-bots/internal/globalping"
	"github.com/aleister1102/globalping-bots/internal/logger"
	"github.com/aleister1102/globalping-bots/internal/orchestrator"
	"github.com/aleister1102/globalping-bots/internal/ratelimit"
	"github.com/rs/zerolog"
)

// Options selects what New loads.
type Options struct {
	ConfigPath string
	Surface    string    // one of the config.Surface* names
	Service    string    // logged as the "service" field
	HotReload  bool      // watch the config file
	Console    io.Writer // log console output, stderr when nil
	DotEnv     []string  // .env files, ".env" when empty
}

// App holds the long-lived pieces every surface shares.
type App struct {
	Config  *config.ConfigManager
	Logger  zerolog.Logger
	Client  *globalping.Client
	Service *orchestrator.Service
	Limiter *ratelimit.UserLimiter

	surface string
}

// New loads configuration and builds the shared components.
func New(opts Options) (*App, error) {
	if err := config.LoadDotEnv(opts.DotEnv...); err != nil {
		return nil, common.WrapError(err, "failed to load .env")
	}

	initial, _, err := config.LoadBotConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	log, err := logger.NewLoggerBuilder().
		WithConfig(initial.LogConfig).
		WithService(opts.Service).
		WithConsole(opts.Console).
		Build()
	if err != nil {
		return nil, common.WrapError(err, "failed to initialize logger")
	}
	zLogger := *log.GetZerolog()

	managerOpts := config.DefaultConfigManagerOptions()
	managerOpts.Logger = zLogger
	managerOpts.Surface = opts.Surface
	managerOpts.HotReloadEnabled = opts.HotReload
	cm, err := config.NewConfigManager(opts.ConfigPath, managerOpts)
	if err != nil {
		return nil, err
	}
	cfg := cm.GetConfig()

	client, err := NewClient(cfg.Globalping, zLogger)
	if err != nil {
		cm.Close()
		return nil, err
	}

	a := &App{
		Config:  cm,
		Logger:  zLogger,
		Client:  client,
		surface: opts.Surface,
		Limiter: ratelimit.NewUserLimiter(ratelimit.UserLimiterConfig{
			CommandsPerMinute: cfg.RateLimit.CommandsPerMinute,
			BurstLimit:        cfg.RateLimit.BurstLimit,
		}, zLogger),
	}
	a.Service = orchestrator.NewService(client, a.Settings, zLogger)

	cm.OnReload(a.applyReload)
	return a, nil
}

// NewClient builds a Globalping API client from the config section.
func NewClient(cfg config.GlobalpingConfig, logger zerolog.Logger) (*globalping.Client, error) {
	retry := globalping.DefaultRetryHandlerConfig()
	retry.MaxRetries = cfg.MaxRetries

	builder := globalping.NewClientBuilder(logger).
		WithBaseURL(cfg.APIURL).
		WithToken(cfg.Token).
		WithTimeout(cfg.RequestTimeout()).
		WithPollInterval(cfg.PollInterval()).
		WithCache(cache.NewETagCache(cfg.CacheSize, cfg.CacheTTL())).
		WithRetry(retry)
	if cfg.UserAgent != "" {
		builder = builder.WithUserAgent(cfg.UserAgent)
	}
	return builder.Build()
}

// Start begins watching the config file. It returns immediately.
func (a *App) Start(ctx context.Context) {
	a.Config.StartHotReload(ctx)
}

// Close releases the config watcher.
func (a *App) Close() error {
	return a.Config.Close()
}

// Settings reports the per-command settings from the current config.
func (a *App) Settings() orchestrator.Settings {
	cfg := a.Config.GetConfig()
	return orchestrator.Settings{
		DashboardURL:       cfg.Globalping.DashboardURL,
		MeasurementTimeout: cfg.Globalping.MeasurementTimeout(),
		Authenticated:      cfg.Globalping.Token != "",
	}
}

// Surface reports the output limits of this app's platform from the
// current config.
func (a *App) Surface() orchestrator.Surface {
	return SurfaceFor(a.Config.GetConfig(), a.surface)
}

// SurfaceFor maps a platform name to its output limits.
func SurfaceFor(cfg *config.BotConfig, name string) orchestrator.Surface {
	s := orchestrator.Surface{Name: name, MaxProbes: cfg.Render.MaxProbes}
	switch name {
	case config.SurfaceDiscord:
		s.Budget = cfg.Render.DiscordBudget
		s.CodeBlock = true
	case config.SurfaceSlack:
		s.Budget = cfg.Render.SlackBudget
		s.CodeBlock = true
	case config.SurfaceLark:
		s.Budget = cfg.Render.LarkBudget
	}
	return s
}

func (a *App) applyReload(cfg *config.BotConfig) {
	if err := logger.SetLevel(cfg.LogConfig.LogLevel); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to apply reloaded log level")
	}
	a.Limiter.Update(cfg.RateLimit.CommandsPerMinute, cfg.RateLimit.BurstLimit)
	a.Logger.Info().
		Str("log_level", cfg.LogConfig.LogLevel).
		Int("max_probes", cfg.Render.MaxProbes).
		Msg("Configuration reloaded")
}
