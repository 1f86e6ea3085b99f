package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aleister1102/globalping-bots/internal/app"
	"github.com/aleister1102/globalping-bots/internal/common"
	"github.com/aleister1102/globalping-bots/internal/config"
	"github.com/aleister1102/globalping-bots/internal/datastore"
	"github.com/aleister1102/globalping-bots/internal/orchestrator"
	"github.com/aleister1102/globalping-bots/internal/platform/slack"
	"github.com/aleister1102/globalping-bots/internal/ratelimit"
	"github.com/rs/zerolog"
	slackapi "github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
)

const (
	maxRequestBody = 1 << 20

	responseTypeInChannel = "in_channel"
	responseTypeEphemeral = "ephemeral"
)

// InstallationStore is the part of the sqlite store the server needs.
type InstallationStore interface {
	SaveInstallation(ctx context.Context, inst datastore.Installation) error
	GetInstallation(ctx context.Context, teamID string) (*datastore.Installation, error)
	DeleteInstallation(ctx context.Context, teamID string) error
}

type oauthExchangeFunc func(ctx context.Context, client *http.Client, clientID, clientSecret, code, redirectURL string) (*slackapi.OAuthV2Response, error)

// Server handles Slack's HTTP callbacks.
type Server struct {
	service  *orchestrator.Service
	surface  func() orchestrator.Surface
	config   func() *config.BotConfig
	limiter  *ratelimit.UserLimiter
	store    InstallationStore // nil when OAuth is off
	executor *common.ConcurrentExecutor
	logger   zerolog.Logger

	httpClient    *http.Client
	slackAPIURL   string // overrides slack.com for tests
	oauthExchange oauthExchangeFunc
}

// NewServer creates a server for the app. store may be nil.
func NewServer(a *app.App, store InstallationStore, executor *common.ConcurrentExecutor) *Server {
	return &Server{
		service:       a.Service,
		surface:       a.Surface,
		config:        a.Config.GetConfig,
		limiter:       a.Limiter,
		store:         store,
		executor:      executor,
		logger:        a.Logger.With().Str("component", "SlackServer").Logger(),
		httpClient:    &http.Client{Timeout: 15 * time.Second},
		oauthExchange: func(ctx context.Context, client *http.Client, clientID, clientSecret, code, redirectURL string) (*slackapi.OAuthV2Response, error) {
			return slackapi.GetOAuthV2ResponseContext(ctx, client, clientID, clientSecret, code, redirectURL)
		},
	}
}

// Routes returns the HTTP handler for all endpoints.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /slack/commands", s.handleCommand)
	mux.HandleFunc("POST /slack/events", s.handleEvents)
	mux.HandleFunc("GET /slack/install", s.handleInstall)
	mux.HandleFunc("GET /slack/oauth/callback", s.handleOAuthCallback)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "ok")
	})
	return mux
}

// verifiedBody reads the request body and checks Slack's signature over it.
func (s *Server) verifiedBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		return nil, common.WrapError(err, "failed to read request body")
	}

	verifier, err := slackapi.NewSecretsVerifier(r.Header, s.config().Slack.SigningSecret)
	if err != nil {
		return nil, err
	}
	if _, err := verifier.Write(body); err != nil {
		return nil, err
	}
	if err := verifier.Ensure(); err != nil {
		return nil, err
	}
	return body, nil
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	body, err := s.verifiedBody(r)
	if err != nil {
		s.logger.Warn().Err(err).Str("remote_addr", r.RemoteAddr).Msg("Rejected unsigned slash command")
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	r.Body = io.NopCloser(bytes.NewReader(body))
	cmd, err := slackapi.SlashCommandParse(r)
	if err != nil {
		http.Error(w, "invalid slash command", http.StatusBadRequest)
		return
	}

	logger := s.logger.With().
		Str("team_id", cmd.TeamID).
		Str("user_id", cmd.UserID).
		Str("channel_id", cmd.ChannelID).
		Logger()

	if !s.limiter.Allow(cmd.TeamID + ":" + cmd.UserID) {
		logger.Warn().Msg("Rate limit exceeded for slash command")
		writeJSON(w, &slackapi.Msg{
			ResponseType: responseTypeEphemeral,
			Text:         fmt.Sprintf("Rate limit exceeded. Try again in %s.", s.limiter.RetryAfter(cmd.TeamID+":"+cmd.UserID).Round(time.Second)),
		})
		return
	}

	err = s.executor.Go("slack-command", func(ctx context.Context) {
		reply := s.service.Handle(ctx, cmd.Text, s.surface())
		s.deliver(ctx, cmd, slack.Format(reply), logger)
	})
	if err != nil {
		writeJSON(w, &slackapi.Msg{ResponseType: responseTypeEphemeral, Text: "The bot is shutting down. Please try again shortly."})
		return
	}

	// Echo the command in the channel so the result has context.
	writeJSON(w, &slackapi.Msg{
		ResponseType: responseTypeInChannel,
		Text:         fmt.Sprintf("<@%s> ran `%s %s`", cmd.UserID, cmd.Command, slack.Escape(cmd.Text)),
	})
}

// deliver posts with the workspace's bot token, falling back to the
// command's response_url, which works without the bot being in the channel.
func (s *Server) deliver(ctx context.Context, cmd slackapi.SlashCommand, msg slack.Message, logger zerolog.Logger) {
	if token := s.botToken(ctx, cmd.TeamID); token != "" {
		_, _, err := s.api(token).PostMessageContext(ctx, cmd.ChannelID,
			slackapi.MsgOptionText(msg.Text, false),
			slackapi.MsgOptionBlocks(msg.Blocks...),
		)
		if err == nil {
			return
		}
		logger.Debug().Err(err).Msg("chat.postMessage failed, using response_url")
	}

	err := slackapi.PostWebhookCustomHTTPContext(ctx, cmd.ResponseURL, s.httpClient, &slackapi.WebhookMessage{
		ResponseType: responseTypeInChannel,
		Text:         msg.Text,
		Blocks:       &slackapi.Blocks{BlockSet: msg.Blocks},
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to deliver reply")
	}
}

func (s *Server) botToken(ctx context.Context, teamID string) string {
	if s.store != nil {
		inst, err := s.store.GetInstallation(ctx, teamID)
		if err == nil {
			return inst.BotToken
		}
		if !errors.Is(err, datastore.ErrNotFound) {
			s.logger.Error().Err(err).Str("team_id", teamID).Msg("Failed to look up installation")
		}
	}
	return s.config().Slack.BotToken
}

func (s *Server) api(token string) *slackapi.Client {
	opts := []slackapi.Option{slackapi.OptionHTTPClient(s.httpClient)}
	if s.slackAPIURL != "" {
		opts = append(opts, slackapi.OptionAPIURL(s.slackAPIURL))
	}
	return slackapi.New(token, opts...)
}

// handleEvents answers the Events API URL check and forgets workspaces that
// uninstall the app.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	body, err := s.verifiedBody(r)
	if err != nil {
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	event, err := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
	if err != nil {
		http.Error(w, "invalid event", http.StatusBadRequest)
		return
	}

	switch event.Type {
	case slackevents.URLVerification:
		var challenge slackevents.ChallengeResponse
		if err := json.Unmarshal(body, &challenge); err != nil {
			http.Error(w, "invalid challenge", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		_, _ = io.WriteString(w, challenge.Challenge)

	case slackevents.CallbackEvent:
		if _, ok := event.InnerEvent.Data.(*slackevents.AppUninstalledEvent); ok && s.store != nil {
			err := s.store.DeleteInstallation(r.Context(), event.TeamID)
			if err != nil && !errors.Is(err, datastore.ErrNotFound) {
				s.logger.Error().Err(err).Str("team_id", event.TeamID).Msg("Failed to delete installation")
			}
		}
		w.WriteHeader(http.StatusOK)

	default:
		w.WriteHeader(http.StatusOK)
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
