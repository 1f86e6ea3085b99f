package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aleister1102/globalping-bots/internal/common"
	"github.com/aleister1102/globalping-bots/internal/globalping"
	"github.com/aleister1102/globalping-bots/internal/help"
	"github.com/aleister1102/globalping-bots/internal/measurement"
	"github.com/aleister1102/globalping-bots/internal/models"
	"github.com/aleister1102/globalping-bots/internal/parser"
	"github.com/aleister1102/globalping-bots/internal/render"
	"github.com/rs/zerolog"
)

// DefaultMeasurementTimeout bounds one command from submission to result.
const DefaultMeasurementTimeout = 60 * time.Second

// MeasurementAPI is the part of the Globalping client the pipeline needs.
type MeasurementAPI interface {
	CreateMeasurement(ctx context.Context, m models.Measurement) (*models.CreatedMeasurement, error)
	AwaitMeasurement(ctx context.Context, id string) (*models.MeasurementResult, error)
	GetLimits(ctx context.Context) (*models.Limits, error)
}

// Kind tells a platform adapter how to lay out a Reply.
type Kind int

const (
	KindText Kind = iota
	KindMeasurement
)

// Reply is the outcome of one command.
type Reply struct {
	Kind    Kind
	Text    string
	IsError bool
	Output  render.Output
	Request models.Request
}

// Surface describes the message limits of a chat platform.
type Surface struct {
	Name      string
	Budget    int // per-probe body budget in runes, 0 for unlimited
	MaxProbes int
	CodeBlock bool
}

// Settings are re-read on every command so a config reload takes effect
// without restarting the bot.
type Settings struct {
	DashboardURL       string
	MeasurementTimeout time.Duration
	Authenticated      bool
}

// SettingsFunc supplies the current Settings.
type SettingsFunc func() Settings

// Service runs chat text through parse, build, submit, await and render.
// It holds no per-command state and is safe for concurrent use.
type Service struct {
	api      MeasurementAPI
	settings SettingsFunc
	logger   zerolog.Logger
}

// NewService creates a Service. A nil settings func uses defaults.
func NewService(api MeasurementAPI, settings SettingsFunc, logger zerolog.Logger) *Service {
	if settings == nil {
		settings = func() Settings { return Settings{} }
	}
	return &Service{
		api:      api,
		settings: settings,
		logger:   logger.With().Str("component", "Orchestrator").Logger(),
	}
}

// Handle runs raw chat text.
func (s *Service) Handle(ctx context.Context, text string, surface Surface) Reply {
	return s.HandleWords(ctx, parser.Split(text), surface)
}

// HandleWords runs text a platform has already split into words.
func (s *Service) HandleWords(ctx context.Context, words []string, surface Surface) Reply {
	logger := s.logger.With().Str("surface", surface.Name).Logger()

	if len(words) == 0 {
		return Reply{Kind: KindText, Text: help.General()}
	}

	flags, err := parser.ParseWords(words)
	if err != nil {
		logger.Debug().Err(err).Msg("Command rejected by parser")
		return errorReply(err)
	}

	if flags.Help {
		return Reply{Kind: KindText, Text: help.Command(help.Topic(flags))}
	}

	req, err := measurement.Build(flags)
	if err != nil {
		logger.Debug().Err(err).Str("cmd", flags.Cmd).Msg("Command rejected by builder")
		return errorReply(err)
	}

	settings := s.settings()

	switch r := req.(type) {
	case *models.AuthRequest:
		return Reply{Kind: KindText, Text: authMessage(r, settings), Request: req}
	case *models.LimitsRequest:
		return s.limits(ctx, logger, req)
	case models.Measurement:
		return s.measure(ctx, logger, flags, r, surface, settings)
	default:
		return errorReply(common.NewError("unsupported command %q", req.Command()))
	}
}

// Explain parses and builds without contacting the API.
func (s *Service) Explain(text string) (models.Request, error) {
	flags, err := parser.Parse(text)
	if err != nil {
		return nil, err
	}
	if flags.Help {
		return nil, errors.New(help.Command(help.Topic(flags)))
	}
	return measurement.Build(flags)
}

func (s *Service) measure(ctx context.Context, logger zerolog.Logger, flags *parser.Flags, m models.Measurement, surface Surface, settings Settings) Reply {
	timeout := settings.MeasurementTimeout
	if timeout <= 0 {
		timeout = DefaultMeasurementTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	logger = logger.With().Str("cmd", flags.Cmd).Str("target", flags.Target).Logger()

	created, err := s.api.CreateMeasurement(ctx, m)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to create measurement")
		return errorReply(err)
	}
	logger = logger.With().Str("measurement_id", created.ID).Int("probes", created.ProbesCount).Logger()

	result, err := s.api.AwaitMeasurement(ctx, created.ID)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to fetch measurement result")
		return errorReply(err)
	}

	out := render.Render(result, m, render.Options{
		Latency:      flags.Latency,
		Full:         flags.Full,
		Share:        flags.Share,
		MaxProbes:    surface.MaxProbes,
		Budget:       surface.Budget,
		CodeBlock:    surface.CodeBlock,
		DashboardURL: settings.DashboardURL,
	})

	logger.Info().
		Int("results", len(result.Results)).
		Int("hidden", out.Hidden).
		Bool("truncated", out.Truncated).
		Msg("Measurement rendered")

	return Reply{Kind: KindMeasurement, Output: out, Request: m}
}

func (s *Service) limits(ctx context.Context, logger zerolog.Logger, req models.Request) Reply {
	limits, err := s.api.GetLimits(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to fetch limits")
		return errorReply(err)
	}
	return Reply{Kind: KindText, Text: FormatLimits(limits), Request: req}
}

// FormatLimits renders the limits body for a chat reply.
func FormatLimits(l *models.Limits) string {
	create := l.RateLimit.Measurements.Create

	var b strings.Builder
	identity := "IP address"
	if create.Type == "user" {
		identity = "token"
	}
	fmt.Fprintf(&b, "Authentication: %s\n", identity)
	fmt.Fprintf(&b, "Creating measurements:\n - rate limit: %d per hour\n - consumed: %d\n - remaining: %d\n",
		create.Limit, create.Limit-create.Remaining, create.Remaining)
	if create.Reset > 0 && create.Remaining < create.Limit {
		fmt.Fprintf(&b, " - resets in: %s\n", (time.Duration(create.Reset) * time.Second).String())
	}
	if l.Credits != nil {
		fmt.Fprintf(&b, "Credits:\n - remaining: %d\n", l.Credits.Remaining)
	}
	return strings.TrimRight(b.String(), "\n")
}

func authMessage(r *models.AuthRequest, settings Settings) string {
	state := "This bot runs measurements anonymously, limited per IP address."
	if settings.Authenticated {
		state = "This bot runs measurements with a Globalping token configured by its operator."
	}

	switch r.Subcommand {
	case "", "status":
		return state
	default:
		return state + "\nTokens are managed in the bot configuration, not through chat. See https://dash.globalping.io to create one."
	}
}

// UserMessage turns a pipeline error into text for the user.
func UserMessage(err error) string {
	var apiErr *globalping.APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.UserMessage()
	case errors.Is(err, context.DeadlineExceeded):
		return "The measurement did not finish in time. Please try again later."
	case errors.Is(err, context.Canceled):
		return "The command was cancelled."
	default:
		return err.Error()
	}
}

func errorReply(err error) Reply {
	return Reply{Kind: KindText, Text: UserMessage(err), IsError: true}
}
