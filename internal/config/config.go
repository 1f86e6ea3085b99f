package config

import (
	"time"

	"github.com/aleister1102/globalping-bots/internal/logger"
)

// BotConfig contains all configuration sections shared by the bot binaries.
type BotConfig struct {
	Globalping GlobalpingConfig     `json:"globalping,omitempty" yaml:"globalping,omitempty"`
	Render     RenderConfig         `json:"render,omitempty" yaml:"render,omitempty"`
	RateLimit  RateLimitConfig      `json:"rate_limit,omitempty" yaml:"rate_limit,omitempty"`
	Discord    DiscordConfig        `json:"discord,omitempty" yaml:"discord,omitempty"`
	Slack      SlackConfig          `json:"slack,omitempty" yaml:"slack,omitempty"`
	Lark       LarkConfig           `json:"lark,omitempty" yaml:"lark,omitempty"`
	LogConfig  logger.FileLogConfig `json:"log_config,omitempty" yaml:"log_config,omitempty"`
}

// GlobalpingConfig configures the measurement API client.
type GlobalpingConfig struct {
	APIURL                 string `json:"api_url,omitempty" yaml:"api_url,omitempty" validate:"omitempty,url"`
	Token                  string `json:"token,omitempty" yaml:"token,omitempty"`
	DashboardURL           string `json:"dashboard_url,omitempty" yaml:"dashboard_url,omitempty" validate:"omitempty,url"`
	UserAgent              string `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
	RequestTimeoutSecs     int    `json:"request_timeout_secs,omitempty" yaml:"request_timeout_secs,omitempty" validate:"gte=1"`
	PollIntervalMs         int    `json:"poll_interval_ms,omitempty" yaml:"poll_interval_ms,omitempty" validate:"gte=100"`
	MeasurementTimeoutSecs int    `json:"measurement_timeout_secs,omitempty" yaml:"measurement_timeout_secs,omitempty" validate:"gte=1"`
	MaxRetries             int    `json:"max_retries,omitempty" yaml:"max_retries,omitempty" validate:"gte=0,lte=10"`
	CacheSize              int    `json:"cache_size,omitempty" yaml:"cache_size,omitempty" validate:"gte=1"`
	CacheTTLSecs           int    `json:"cache_ttl_secs,omitempty" yaml:"cache_ttl_secs,omitempty" validate:"gte=1"`
}

// NewDefaultGlobalpingConfig creates default API client settings
func NewDefaultGlobalpingConfig() GlobalpingConfig {
	return GlobalpingConfig{
		APIURL:                 DefaultAPIURL,
		DashboardURL:           DefaultDashboardURL,
		RequestTimeoutSecs:     DefaultRequestTimeoutSecs,
		PollIntervalMs:         DefaultPollIntervalMs,
		MeasurementTimeoutSecs: DefaultMeasurementTimeoutSecs,
		MaxRetries:             DefaultMaxRetries,
		CacheSize:              DefaultCacheSize,
		CacheTTLSecs:           DefaultCacheTTLSecs,
	}
}

func (c GlobalpingConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSecs) * time.Second
}

func (c GlobalpingConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

func (c GlobalpingConfig) MeasurementTimeout() time.Duration {
	return time.Duration(c.MeasurementTimeoutSecs) * time.Second
}

func (c GlobalpingConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSecs) * time.Second
}

// RenderConfig holds the per-surface output limits. Budgets count runes of
// one probe's body including its code fence; 0 disables truncation.
type RenderConfig struct {
	MaxProbes     int `json:"max_probes,omitempty" yaml:"max_probes,omitempty" validate:"gte=1,lte=10"`
	DiscordBudget int `json:"discord_budget,omitempty" yaml:"discord_budget,omitempty" validate:"budget"`
	SlackBudget   int `json:"slack_budget,omitempty" yaml:"slack_budget,omitempty" validate:"budget"`
	LarkBudget    int `json:"lark_budget,omitempty" yaml:"lark_budget,omitempty" validate:"budget"`
}

// NewDefaultRenderConfig creates default render limits
func NewDefaultRenderConfig() RenderConfig {
	return RenderConfig{
		MaxProbes:     DefaultMaxProbes,
		DiscordBudget: DefaultDiscordBudget,
		SlackBudget:   DefaultSlackBudget,
		LarkBudget:    DefaultLarkBudget,
	}
}

// RateLimitConfig limits how fast one chat user may issue commands.
type RateLimitConfig struct {
	CommandsPerMinute int `json:"commands_per_minute,omitempty" yaml:"commands_per_minute,omitempty" validate:"gte=1"`
	BurstLimit        int `json:"burst_limit,omitempty" yaml:"burst_limit,omitempty" validate:"gte=1"`
	MaxConcurrent     int `json:"max_concurrent,omitempty" yaml:"max_concurrent,omitempty" validate:"gte=1"`
}

// NewDefaultRateLimitConfig creates default rate limit settings
func NewDefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		CommandsPerMinute: DefaultCommandsPerMinute,
		BurstLimit:        DefaultBurstLimit,
		MaxConcurrent:     DefaultMaxConcurrent,
	}
}

// DiscordConfig contains Discord-specific settings
type DiscordConfig struct {
	BotToken string   `json:"bot_token,omitempty" yaml:"bot_token,omitempty"`
	GuildIDs []string `json:"guild_ids,omitempty" yaml:"guild_ids,omitempty" validate:"dive,numeric"`
}

// SlackConfig contains Slack app settings. BotToken serves a single
// workspace; with ClientID and ClientSecret set, workspaces install through
// OAuth and their tokens are kept in the sqlite store at DBPath.
type SlackConfig struct {
	ListenAddr    string `json:"listen_addr,omitempty" yaml:"listen_addr,omitempty" validate:"omitempty,hostname_port|startswith=:"`
	SigningSecret string `json:"signing_secret,omitempty" yaml:"signing_secret,omitempty"`
	BotToken      string `json:"bot_token,omitempty" yaml:"bot_token,omitempty"`
	ClientID      string `json:"client_id,omitempty" yaml:"client_id,omitempty"`
	ClientSecret  string `json:"client_secret,omitempty" yaml:"client_secret,omitempty"`
	RedirectURL   string `json:"redirect_url,omitempty" yaml:"redirect_url,omitempty" validate:"omitempty,url"`
	DBPath        string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// OAuthEnabled reports whether multi-workspace installs are configured.
func (c SlackConfig) OAuthEnabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// LarkConfig contains Lark (Feishu) app settings
type LarkConfig struct {
	ListenAddr        string `json:"listen_addr,omitempty" yaml:"listen_addr,omitempty" validate:"omitempty,hostname_port|startswith=:"`
	AppID             string `json:"app_id,omitempty" yaml:"app_id,omitempty"`
	AppSecret         string `json:"app_secret,omitempty" yaml:"app_secret,omitempty"`
	VerificationToken string `json:"verification_token,omitempty" yaml:"verification_token,omitempty"`
	BaseURL           string `json:"base_url,omitempty" yaml:"base_url,omitempty" validate:"omitempty,url"`
}

// NewDefaultBotConfig creates a new BotConfig with default values
func NewDefaultBotConfig() *BotConfig {
	return &BotConfig{
		Globalping: NewDefaultGlobalpingConfig(),
		Render:     NewDefaultRenderConfig(),
		RateLimit:  NewDefaultRateLimitConfig(),
		Slack: SlackConfig{
			ListenAddr: DefaultSlackListenAddr,
			DBPath:     DefaultSlackDBPath,
		},
		Lark: LarkConfig{
			ListenAddr: DefaultLarkListenAddr,
		},
		LogConfig: logger.NewDefaultFileLogConfig(),
	}
}

// Clone returns a deep copy.
func (c *BotConfig) Clone() *BotConfig {
	if c == nil {
		return NewDefaultBotConfig()
	}
	dst := *c
	dst.Discord.GuildIDs = append([]string(nil), c.Discord.GuildIDs...)
	return &dst
}
