package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aleister1102/globalping-bots/internal/common"
	"github.com/aleister1102/globalping-bots/internal/logger"
	"github.com/go-playground/validator/v10"
)

func newValidator() *validator.Validate {
	validate := validator.New()

	_ = validate.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		level := fl.Field().String()
		return level == "" || logger.IsValidLevel(level)
	})

	_ = validate.RegisterValidation("logformat", func(fl validator.FieldLevel) bool {
		format := fl.Field().String()
		return format == "" || logger.IsValidFormat(format)
	})

	// 0 disables truncation
	_ = validate.RegisterValidation("budget", func(fl validator.FieldLevel) bool {
		budget := fl.Field().Int()
		return budget >= 0 && budget <= MaxBudget
	})

	return validate
}

// ValidateConfig checks field rules on the whole configuration.
func ValidateConfig(cfg *BotConfig) error {
	err := newValidator().Struct(cfg)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return common.WrapError(err, "configuration validation error")
	}

	var messages []string
	for _, e := range errs {
		msg := fmt.Sprintf("Validation failed for '%s': rule '%s'", strings.TrimPrefix(e.Namespace(), "BotConfig."), e.Tag())
		if e.Param() != "" {
			msg += fmt.Sprintf(" (expected: %s)", e.Param())
		}
		if e.Value() != nil && e.Value() != "" {
			msg += fmt.Sprintf(", actual: '%v'", e.Value())
		}
		messages = append(messages, msg)
	}
	return common.NewConfigurationError("", "", "validation failed:\n  "+strings.Join(messages, "\n  "))
}

// ValidateFor runs ValidateConfig plus the credential checks a surface needs
// to start.
func ValidateFor(cfg *BotConfig, surface string) error {
	if err := ValidateConfig(cfg); err != nil {
		return err
	}

	var ec common.ErrorCollector
	switch surface {
	case SurfaceDiscord:
		if cfg.Discord.BotToken == "" {
			ec.Add(common.NewConfigurationError("discord", "bot_token", "is required (set DISCORD_BOT_TOKEN)"))
		}
		if cfg.Render.DiscordBudget > MaxDiscordBudget {
			ec.Add(common.NewConfigurationError("render", "discord_budget", fmt.Sprintf("must be at most %d", MaxDiscordBudget)))
		}
	case SurfaceSlack:
		if cfg.Slack.SigningSecret == "" {
			ec.Add(common.NewConfigurationError("slack", "signing_secret", "is required (set SLACK_SIGNING_SECRET)"))
		}
		if cfg.Slack.BotToken == "" && !cfg.Slack.OAuthEnabled() {
			ec.Add(common.NewConfigurationError("slack", "", "either bot_token or client_id and client_secret are required"))
		}
		if cfg.Slack.OAuthEnabled() && cfg.Slack.DBPath == "" {
			ec.Add(common.NewConfigurationError("slack", "db_path", "is required for OAuth installs"))
		}
		if cfg.Render.SlackBudget > MaxSlackBudget {
			ec.Add(common.NewConfigurationError("render", "slack_budget", fmt.Sprintf("must be at most %d", MaxSlackBudget)))
		}
	case SurfaceLark:
		if cfg.Lark.AppID == "" || cfg.Lark.AppSecret == "" {
			ec.Add(common.NewConfigurationError("lark", "", "app_id and app_secret are required (set LARK_APP_ID and LARK_APP_SECRET)"))
		}
		if cfg.Lark.VerificationToken == "" {
			ec.Add(common.NewConfigurationError("lark", "verification_token", "is required (set LARK_VERIFICATION_TOKEN)"))
		}
	case SurfaceTerminal:
	default:
		ec.Add(common.NewConfigurationError("", "", "unknown surface "+surface))
	}
	return ec.Error()
}
