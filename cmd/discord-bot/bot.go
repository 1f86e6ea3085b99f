package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aleister1102/globalping-bots/internal/app"
	"github.com/aleister1102/globalping-bots/internal/common"
	"github.com/aleister1102/globalping-bots/internal/platform/discord"
	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 15 * time.Second

// Bot represents the Discord bot instance
type Bot struct {
	session   *discordgo.Session
	app       *app.App
	formatter *discord.Formatter
	executor  *common.ConcurrentExecutor
	logger    zerolog.Logger
	guildIDs  []string

	mu         sync.Mutex
	registered map[string][]*discordgo.ApplicationCommand
}

// NewBot creates a new Discord bot instance
func NewBot(a *app.App) (*Bot, error) {
	cfg := a.Config.GetConfig()

	session, err := discordgo.New("Bot " + cfg.Discord.BotToken)
	if err != nil {
		return nil, common.WrapError(err, "failed to create Discord session")
	}
	session.Identify.Intents = discordgo.IntentsGuilds

	guildIDs := cfg.Discord.GuildIDs
	if len(guildIDs) == 0 {
		guildIDs = []string{""} // global commands
	}

	bot := &Bot{
		session:    session,
		app:        a,
		formatter:  discord.NewFormatter(),
		logger:     a.Logger.With().Str("component", "DiscordBot").Logger(),
		guildIDs:   guildIDs,
		registered: make(map[string][]*discordgo.ApplicationCommand),
	}

	bot.session.AddHandler(bot.onReady)
	bot.session.AddHandler(bot.onInteractionCreate)

	return bot, nil
}

// Start opens the gateway connection and blocks until ctx is done.
func (b *Bot) Start(ctx context.Context) error {
	cfg := b.app.Config.GetConfig()
	// In-flight commands outlive ctx until Shutdown gives up on them.
	b.executor = common.NewConcurrentExecutor(context.Background(), b.logger, cfg.RateLimit.MaxConcurrent)

	if err := b.session.Open(); err != nil {
		return common.WrapError(err, "failed to open Discord session")
	}

	if err := b.session.UpdateGameStatus(0, "/globalping help"); err != nil {
		b.logger.Warn().Err(err).Msg("Failed to set bot status")
	}

	<-ctx.Done()

	b.logger.Info().Msg("Shutting down Discord bot...")

	if err := b.executor.Shutdown(shutdownTimeout); err != nil {
		b.logger.Warn().Err(err).Msg("Some commands did not finish before shutdown")
	}

	b.cleanupCommands()

	return b.session.Close()
}

func (b *Bot) onReady(s *discordgo.Session, event *discordgo.Ready) {
	b.logger.Info().
		Str("username", event.User.Username).
		Int("guilds", len(event.Guilds)).
		Msg("Discord bot is ready")

	b.registerCommands(s)
}

func (b *Bot) registerCommands(s *discordgo.Session) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, guildID := range b.guildIDs {
		if len(b.registered[guildID]) > 0 {
			continue // reconnects fire onReady again
		}
		for _, cmd := range commands {
			created, err := s.ApplicationCommandCreate(s.State.User.ID, guildID, cmd)
			if err != nil {
				b.logger.Error().Err(err).Str("guild_id", guildID).Str("command", cmd.Name).Msg("Failed to register command")
				continue
			}
			b.registered[guildID] = append(b.registered[guildID], created)
			b.logger.Debug().Str("guild_id", guildID).Str("command", cmd.Name).Msg("Registered command")
		}
	}
}

// cleanupCommands removes the commands this process registered.
func (b *Bot) cleanupCommands() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.session.State == nil || b.session.State.User == nil {
		return
	}

	for guildID, cmds := range b.registered {
		for _, cmd := range cmds {
			if err := b.session.ApplicationCommandDelete(b.session.State.User.ID, guildID, cmd.ID); err != nil {
				b.logger.Error().Err(err).Str("command", cmd.Name).Msg("Failed to delete command")
			}
		}
	}
	b.registered = make(map[string][]*discordgo.ApplicationCommand)
	b.logger.Info().Msg("Command cleanup completed")
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	data := i.ApplicationCommandData()
	if data.Name != commandName {
		return
	}

	userID := interactionUserID(i.Interaction)
	logger := b.logger.With().Str("user_id", userID).Str("guild_id", i.GuildID).Logger()

	if !b.app.Limiter.Allow(userID) {
		logger.Warn().Msg("Rate limit exceeded for interaction")
		b.respondEphemeral(s, i.Interaction, rateLimitMessage(b.app.Limiter.RetryAfter(userID)))
		return
	}

	// Defer so the measurement can take longer than the 3s interaction window.
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to defer interaction response")
		return
	}

	text := commandText(data)
	err = b.executor.Go("discord-command", func(ctx context.Context) {
		reply := b.app.Service.Handle(ctx, text, b.app.Surface())
		b.followup(s, i.Interaction, b.formatter.Format(reply), logger)
	})
	if err != nil {
		b.followup(s, i.Interaction, b.formatter.FormatText("The bot is shutting down. Please try again shortly.", true), logger)
	}
}

func (b *Bot) followup(s *discordgo.Session, interaction *discordgo.Interaction, msg discord.Message, logger zerolog.Logger) {
	if err := b.formatter.Validate(msg); err != nil {
		logger.Warn().Err(err).Msg("Reply exceeds Discord limits, sending plain notice")
		msg = b.formatter.FormatText("The result is too large to display here.", true)
	}
	if _, err := s.FollowupMessageCreate(interaction, true, discord.ToWebhookParams(msg)); err != nil {
		logger.Error().Err(err).Msg("Failed to send follow-up message")
	}
}

func (b *Bot) respondEphemeral(s *discordgo.Session, interaction *discordgo.Interaction, content string) {
	err := s.InteractionRespond(interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		b.logger.Error().Err(err).Msg("Failed to send ephemeral response")
	}
}

func rateLimitMessage(wait time.Duration) string {
	if wait <= 0 {
		return "Rate limit exceeded. Please wait before sending another command."
	}
	return fmt.Sprintf("Rate limit exceeded. Try again in %s.", wait.Round(time.Second))
}
