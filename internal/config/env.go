package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads .env files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var existing []string
	for _, f := range files {
		if fileExists(f) {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// ApplyEnvOverrides overlays secrets and addresses from the environment.
// Secrets usually live there rather than in the file.
func ApplyEnvOverrides(cfg *BotConfig) {
	setString(&cfg.Globalping.Token, "GLOBALPING_TOKEN")
	setString(&cfg.Globalping.APIURL, "GLOBALPING_API_URL")

	setString(&cfg.Discord.BotToken, "DISCORD_BOT_TOKEN")
	if ids := os.Getenv("DISCORD_GUILD_IDS"); ids != "" {
		cfg.Discord.GuildIDs = splitList(ids)
	}

	setString(&cfg.Slack.SigningSecret, "SLACK_SIGNING_SECRET")
	setString(&cfg.Slack.BotToken, "SLACK_BOT_TOKEN")
	setString(&cfg.Slack.ClientID, "SLACK_CLIENT_ID")
	setString(&cfg.Slack.ClientSecret, "SLACK_CLIENT_SECRET")
	setString(&cfg.Slack.RedirectURL, "SLACK_REDIRECT_URL")
	setString(&cfg.Slack.ListenAddr, "SLACK_LISTEN_ADDR")

	setString(&cfg.Lark.AppID, "LARK_APP_ID")
	setString(&cfg.Lark.AppSecret, "LARK_APP_SECRET")
	setString(&cfg.Lark.VerificationToken, "LARK_VERIFICATION_TOKEN")
	setString(&cfg.Lark.ListenAddr, "LARK_LISTEN_ADDR")

	setString(&cfg.LogConfig.LogLevel, "LOG_LEVEL")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
