package config

const (
	// Globalping defaults
	DefaultAPIURL                 = "https://api.globalping.io"
	DefaultDashboardURL           = "https://globalping.io"
	DefaultRequestTimeoutSecs     = 30
	DefaultPollIntervalMs         = 500
	DefaultMeasurementTimeoutSecs = 60
	DefaultMaxRetries             = 2
	DefaultCacheSize              = 256
	DefaultCacheTTLSecs           = 120

	// Render defaults, in runes per probe body
	DefaultMaxProbes     = 4
	DefaultDiscordBudget = 1000
	DefaultSlackBudget   = 2900
	DefaultLarkBudget    = 3000

	// Platform hard limits the budgets must stay under
	MaxDiscordBudget = 4096 - 8 // embed description minus the code fence
	MaxSlackBudget   = 3000 - 8 // section text minus the code fence
	MaxBudget        = 6000

	// Rate limit defaults
	DefaultCommandsPerMinute = 10
	DefaultBurstLimit        = 3
	DefaultMaxConcurrent     = 16

	// Server defaults
	DefaultSlackListenAddr = ":3000"
	DefaultLarkListenAddr  = ":3001"
	DefaultSlackDBPath     = "data/slack_installations.db"

	// Environment
	ConfigPathEnv = "GLOBALPING_BOTS_CONFIG"
)

// Surface names used for per-surface validation.
const (
	SurfaceDiscord  = "discord"
	SurfaceSlack    = "slack"
	SurfaceLark     = "lark"
	SurfaceTerminal = "terminal"
)
