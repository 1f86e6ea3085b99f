package main

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/aleister1102/globalping-bots/internal/app"
	"github.com/aleister1102/globalping-bots/internal/common"
	"github.com/aleister1102/globalping-bots/internal/config"
	"github.com/aleister1102/globalping-bots/internal/orchestrator"
	"github.com/aleister1102/globalping-bots/internal/platform/lark"
	"github.com/aleister1102/globalping-bots/internal/ratelimit"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"
)

const (
	maxRequestBody = 1 << 20

	// Lark redelivers events it did not see acknowledged in time.
	seenEventsSize = 4096
	seenEventsTTL  = 30 * time.Minute
)

// Replier sends a text reply to a message.
type Replier interface {
	ReplyText(ctx context.Context, messageID, text string) error
}

// Server handles Lark's event subscription callbacks.
type Server struct {
	service  *orchestrator.Service
	surface  func() orchestrator.Surface
	config   func() *config.BotConfig
	limiter  *ratelimit.UserLimiter
	replier  Replier
	executor *common.ConcurrentExecutor
	seenMu   sync.Mutex
	seen     *expirable.LRU[string, struct{}]
	logger   zerolog.Logger
}

// NewServer creates a server for the app.
func NewServer(a *app.App, replier Replier, executor *common.ConcurrentExecutor) *Server {
	return &Server{
		service:  a.Service,
		surface:  a.Surface,
		config:   a.Config.GetConfig,
		limiter:  a.Limiter,
		replier:  replier,
		executor: executor,
		seen:     expirable.NewLRU[string, struct{}](seenEventsSize, nil, seenEventsTTL),
		logger:   a.Logger.With().Str("component", "LarkServer").Logger(),
	}
}

// Routes returns the HTTP handler for all endpoints.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /lark/events", s.handleEvents)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "ok")
	})
	return mux
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	cb, err := lark.ParseCallback(body)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Rejected event payload")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !s.tokenValid(cb.VerificationToken()) {
		s.logger.Warn().Str("remote_addr", r.RemoteAddr).Msg("Rejected event with bad verification token")
		http.Error(w, "invalid verification token", http.StatusUnauthorized)
		return
	}

	if cb.Type == lark.TypeURLVerification {
		writeJSON(w, map[string]string{"challenge": cb.Challenge})
		return
	}

	if cb.EventType() == lark.EventMessageReceiveV1 {
		s.handleMessage(cb)
	}
	writeJSON(w, map[string]string{"msg": "success"})
}

func (s *Server) tokenValid(token string) bool {
	expected := s.config().Lark.VerificationToken
	return subtle.ConstantTimeCompare([]byte(token), []byte(expected)) == 1
}

// handleMessage runs a command in the background; Lark expects the
// callback to be acknowledged within a few seconds.
func (s *Server) handleMessage(cb *lark.Callback) {
	if !s.firstDelivery(cb.Header.EventID) {
		s.logger.Debug().Str("event_id", cb.Header.EventID).Msg("Skipping redelivered event")
		return
	}

	ev, err := cb.MessageEvent()
	if err != nil {
		s.logger.Warn().Err(err).Msg("Ignoring malformed message event")
		return
	}

	text, ok := ev.CommandText()
	if !ok {
		return
	}

	userID := ev.Sender.SenderID.OpenID
	messageID := ev.Message.MessageID
	logger := s.logger.With().
		Str("open_id", userID).
		Str("chat_id", ev.Message.ChatID).
		Str("message_id", messageID).
		Logger()

	if !s.limiter.Allow(userID) {
		logger.Warn().Msg("Rate limit exceeded for message")
		s.reply(messageID, rateLimitMessage(s.limiter.RetryAfter(userID)), logger)
		return
	}

	err = s.executor.Go("lark-command", func(ctx context.Context) {
		reply := s.service.Handle(ctx, text, s.surface())
		if err := s.replier.ReplyText(ctx, messageID, lark.FormatReply(reply)); err != nil {
			logger.Error().Err(err).Msg("Failed to send reply")
		}
	})
	if err != nil {
		s.reply(messageID, "The bot is shutting down. Please try again shortly.", logger)
	}
}

// firstDelivery records eventID and reports whether it was new. Events
// without an id are always processed.
func (s *Server) firstDelivery(eventID string) bool {
	if eventID == "" {
		return true
	}
	s.seenMu.Lock()
	defer s.seenMu.Unlock()
	if s.seen.Contains(eventID) {
		return false
	}
	s.seen.Add(eventID, struct{}{})
	return true
}

func (s *Server) reply(messageID, text string, logger zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.replier.ReplyText(ctx, messageID, text); err != nil {
		logger.Error().Err(err).Msg("Failed to send reply")
	}
}

func rateLimitMessage(wait time.Duration) string {
	if wait <= 0 {
		return "Rate limit exceeded. Please wait before sending another command."
	}
	return fmt.Sprintf("Rate limit exceeded. Try again in %s.", wait.Round(time.Second))
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
