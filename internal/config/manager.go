package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aleister1102/globalping-bots/internal/common"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// ConfigManager holds the current configuration and reloads it when the
// file changes on disk.
type ConfigManager struct {
	mu           sync.RWMutex
	config       *BotConfig
	configPath   string
	surface      string
	logger       zerolog.Logger
	watcher      *fsnotify.Watcher
	stopChan     chan struct{}
	stopOnce     sync.Once
	lastModified time.Time
	onReload     []func(*BotConfig)

	hotReloadEnabled bool
	reloadDelay      time.Duration
}

// ConfigManagerOptions holds options for creating a ConfigManager
type ConfigManagerOptions struct {
	Logger           zerolog.Logger
	Surface          string // validated with ValidateFor when set
	HotReloadEnabled bool
	ReloadDelay      time.Duration
}

// DefaultConfigManagerOptions returns default options for ConfigManager
func DefaultConfigManagerOptions() ConfigManagerOptions {
	return ConfigManagerOptions{
		Logger:           zerolog.Nop(),
		HotReloadEnabled: true,
		ReloadDelay:      500 * time.Millisecond,
	}
}

// NewConfigManager loads the configuration and, when a file backs it,
// prepares the watcher used by StartHotReload.
func NewConfigManager(configPath string, opts ConfigManagerOptions) (*ConfigManager, error) {
	cm := &ConfigManager{
		logger:           opts.Logger.With().Str("component", "ConfigManager").Logger(),
		surface:          opts.Surface,
		stopChan:         make(chan struct{}),
		hotReloadEnabled: opts.HotReloadEnabled,
		reloadDelay:      opts.ReloadDelay,
	}

	cfg, path, err := LoadBotConfig(configPath)
	if err != nil {
		return nil, common.WrapError(err, "failed to load initial configuration")
	}
	if err := cm.validate(cfg); err != nil {
		return nil, err
	}
	cm.config = cfg
	cm.configPath = path
	cm.touch()

	if path == "" {
		cm.logger.Info().Msg("No config file found, using defaults and environment")
		cm.hotReloadEnabled = false
	} else {
		cm.logger.Info().Str("path", path).Msg("Configuration loaded successfully")
	}

	if cm.hotReloadEnabled {
		if err := cm.setupFileWatcher(); err != nil {
			cm.logger.Warn().Err(err).Msg("Failed to setup file watcher, hot-reload disabled")
			cm.hotReloadEnabled = false
		}
	}

	return cm, nil
}

// GetConfig returns a copy of the current configuration (thread-safe)
func (cm *ConfigManager) GetConfig() *BotConfig {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config.Clone()
}

// GetConfigPath returns the current configuration file path
func (cm *ConfigManager) GetConfigPath() string {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.configPath
}

// IsHotReloadEnabled returns whether hot-reload is enabled
func (cm *ConfigManager) IsHotReloadEnabled() bool {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.hotReloadEnabled
}

// OnReload registers fn to run with the new configuration after each
// successful reload.
func (cm *ConfigManager) OnReload(fn func(*BotConfig)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.onReload = append(cm.onReload, fn)
}

// ReloadConfig re-reads the file. An invalid file leaves the current
// configuration in place.
func (cm *ConfigManager) ReloadConfig() error {
	cm.mu.RLock()
	path := cm.configPath
	cm.mu.RUnlock()

	cfg, _, err := LoadBotConfig(path)
	if err != nil {
		return err
	}
	if err := cm.validate(cfg); err != nil {
		return err
	}

	cm.mu.Lock()
	cm.config = cfg
	cm.touch()
	callbacks := append([]func(*BotConfig){}, cm.onReload...)
	cm.mu.Unlock()

	for _, fn := range callbacks {
		fn(cfg.Clone())
	}
	return nil
}

// StartHotReload starts the hot-reload goroutine (non-blocking)
func (cm *ConfigManager) StartHotReload(ctx context.Context) {
	if !cm.IsHotReloadEnabled() {
		return
	}
	go cm.hotReloadLoop(ctx)
}

// Close stops the configuration manager and cleans up resources
func (cm *ConfigManager) Close() error {
	var err error
	cm.stopOnce.Do(func() {
		close(cm.stopChan)
		if cm.watcher != nil {
			err = cm.watcher.Close()
		}
	})
	return err
}

func (cm *ConfigManager) validate(cfg *BotConfig) error {
	if cm.surface != "" {
		return ValidateFor(cfg, cm.surface)
	}
	return ValidateConfig(cfg)
}

// touch records the file's modification time; callers hold the lock.
func (cm *ConfigManager) touch() {
	if cm.configPath == "" {
		return
	}
	if stat, err := os.Stat(cm.configPath); err == nil {
		cm.lastModified = stat.ModTime()
	}
}

// setupFileWatcher watches the directory so editors that replace the file
// on save are still seen.
func (cm *ConfigManager) setupFileWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return common.WrapError(err, "failed to create file watcher")
	}

	configDir := filepath.Dir(cm.configPath)
	if err := watcher.Add(configDir); err != nil {
		watcher.Close()
		return common.WrapErrorf(err, "failed to watch config directory '%s'", configDir)
	}

	cm.watcher = watcher
	cm.logger.Info().Str("directory", configDir).Msg("File watcher setup for hot-reload")
	return nil
}

func (cm *ConfigManager) hotReloadLoop(ctx context.Context) {
	reloadTimer := time.NewTimer(0)
	if !reloadTimer.Stop() {
		<-reloadTimer.C
	}

	target := filepath.Clean(cm.configPath)

	for {
		select {
		case <-ctx.Done():
			cm.logger.Info().Msg("Hot-reload loop stopped due to context cancellation")
			return

		case <-cm.stopChan:
			cm.logger.Info().Msg("Hot-reload loop stopped")
			return

		case event, ok := <-cm.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) == target && event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				cm.logger.Debug().Str("file", event.Name).Str("op", event.Op.String()).Msg("Config file change detected")
				reloadTimer.Reset(cm.reloadDelay)
			}

		case err, ok := <-cm.watcher.Errors:
			if !ok {
				return
			}
			cm.logger.Error().Err(err).Msg("File watcher error")

		case <-reloadTimer.C:
			stat, err := os.Stat(cm.configPath)
			if err != nil {
				continue
			}
			cm.mu.RLock()
			changed := !stat.ModTime().Equal(cm.lastModified)
			cm.mu.RUnlock()
			if !changed {
				continue
			}

			cm.logger.Info().Msg("Reloading configuration due to file change")
			if err := cm.ReloadConfig(); err != nil {
				cm.logger.Error().Err(err).Msg("Failed to reload configuration, keeping previous")
			} else {
				cm.logger.Info().Msg("Configuration reloaded successfully")
			}
		}
	}
}
