package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aleister1102/globalping-bots/internal/globalping"
	"github.com/aleister1102/globalping-bots/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu        sync.Mutex
	created   []models.Measurement
	result    *models.MeasurementResult
	limits    *models.Limits
	createErr error
	awaitErr  error
	block     bool
}

func (f *fakeAPI) CreateMeasurement(ctx context.Context, m models.Measurement) (*models.CreatedMeasurement, error) {
	f.mu.Lock()
	f.created = append(f.created, m)
	f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &models.CreatedMeasurement{ID: "m1", ProbesCount: 1}, nil
}

func (f *fakeAPI) AwaitMeasurement(ctx context.Context, id string) (*models.MeasurementResult, error) {
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.awaitErr != nil {
		return nil, f.awaitErr
	}
	return f.result, nil
}

func (f *fakeAPI) GetLimits(ctx context.Context) (*models.Limits, error) {
	return f.limits, nil
}

func (f *fakeAPI) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created)
}

var chat = Surface{Name: "test", Budget: 1000, MaxProbes: 4, CodeBlock: true}

func finishedPing() *models.MeasurementResult {
	return &models.MeasurementResult{
		ID:     "m1",
		Type:   models.TypePing,
		Status: models.StatusFinished,
		Results: []models.ProbeResult{{
			Probe: models.Probe{City: "New York", Country: "US", Continent: "NA", Network: "Net", ASN: 1},
			Result: models.Result{
				Status:    models.ResultFinished,
				RawOutput: "PING google.com: 56 data bytes",
			},
		}},
	}
}

func TestHandle_Measurement(t *testing.T) {
	api := &fakeAPI{result: finishedPing()}
	svc := NewService(api, nil, zerolog.Nop())

	reply := svc.Handle(context.Background(), "ping google.com from New York --share", chat)

	require.Equal(t, KindMeasurement, reply.Kind)
	assert.False(t, reply.IsError)
	require.Len(t, reply.Output.Sections, 1)
	assert.Equal(t, "New York, US, NA, Net (AS1)", reply.Output.Sections[0].Header)
	assert.Equal(t, "```\nPING google.com: 56 data bytes\n```", reply.Output.Sections[0].Body)
	assert.Equal(t, "https://globalping.io?measurement=m1", reply.Output.Footer)

	require.Equal(t, 1, api.calls())
	ping, ok := api.created[0].(*models.PingRequest)
	require.True(t, ok)
	assert.Equal(t, "google.com", ping.Target)
	assert.Equal(t, []models.Location{{Magic: "New York"}}, ping.Locations)
}

func TestHandle_ParseErrorNeverCallsAPI(t *testing.T) {
	api := &fakeAPI{}
	svc := NewService(api, nil, zerolog.Nop())

	reply := svc.Handle(context.Background(), "ping google.com --method GET", chat)

	assert.Equal(t, KindText, reply.Kind)
	assert.True(t, reply.IsError)
	assert.Equal(t, "Invalid option \"method\" for \"ping\"!\nExpected \"packets, latency, target, from, limit, share\".", reply.Text)
	assert.Equal(t, 0, api.calls())
}

func TestHandle_BuildErrorNeverCallsAPI(t *testing.T) {
	api := &fakeAPI{}
	svc := NewService(api, nil, zerolog.Nop())

	reply := svc.Handle(context.Background(), "dns example.com --query BOGUS", chat)

	assert.True(t, reply.IsError)
	assert.Contains(t, reply.Text, `Invalid argument "BOGUS" for "query"!`)
	assert.Equal(t, 0, api.calls())
}

func TestHandle_Help(t *testing.T) {
	svc := NewService(&fakeAPI{}, nil, zerolog.Nop())

	reply := svc.Handle(context.Background(), "help dns", chat)
	assert.Equal(t, KindText, reply.Kind)
	assert.Contains(t, reply.Text, "--resolver")

	reply = svc.Handle(context.Background(), "   ", chat)
	assert.Contains(t, reply.Text, "Commands:")
}

func TestHandle_Limits(t *testing.T) {
	api := &fakeAPI{limits: &models.Limits{
		RateLimit: models.RateLimits{Measurements: models.MeasurementLimits{
			Create: models.CreateLimit{Type: "ip", Limit: 250, Remaining: 240, Reset: 1800},
		}},
	}}
	svc := NewService(api, nil, zerolog.Nop())

	reply := svc.Handle(context.Background(), "limits", chat)

	assert.Equal(t, KindText, reply.Kind)
	assert.Equal(t, "Authentication: IP address\nCreating measurements:\n - rate limit: 250 per hour\n - consumed: 10\n - remaining: 240\n - resets in: 30m0s", reply.Text)
	assert.IsType(t, &models.LimitsRequest{}, reply.Request)
}

func TestHandle_Auth(t *testing.T) {
	svc := NewService(&fakeAPI{}, func() Settings { return Settings{Authenticated: true} }, zerolog.Nop())

	reply := svc.Handle(context.Background(), "auth status", chat)
	assert.Equal(t, KindText, reply.Kind)
	assert.Contains(t, reply.Text, "token configured by its operator")

	auth, ok := reply.Request.(*models.AuthRequest)
	require.True(t, ok)
	assert.Equal(t, "status", auth.Subcommand)
}

func TestHandle_APIErrorsBecomeText(t *testing.T) {
	api := &fakeAPI{createErr: &globalping.APIError{
		StatusCode: 422,
		Type:       globalping.ErrTypeNoProbesFound,
		Message:    "No suitable probes supporting IPv6 found.",
	}}
	svc := NewService(api, nil, zerolog.Nop())

	reply := svc.Handle(context.Background(), "ping google.com", chat)
	assert.True(t, reply.IsError)
	assert.Equal(t, "No suitable probes found. No suitable probes supporting IPv6 found.", reply.Text)
}

func TestHandle_TransportErrorStringified(t *testing.T) {
	api := &fakeAPI{awaitErr: errors.New("dial tcp: connection refused")}
	svc := NewService(api, nil, zerolog.Nop())

	reply := svc.Handle(context.Background(), "ping google.com", chat)
	assert.Equal(t, "dial tcp: connection refused", reply.Text)
}

func TestHandle_Timeout(t *testing.T) {
	api := &fakeAPI{block: true}
	svc := NewService(api, func() Settings {
		return Settings{MeasurementTimeout: 10 * time.Millisecond}
	}, zerolog.Nop())

	reply := svc.Handle(context.Background(), "ping google.com", chat)
	assert.True(t, reply.IsError)
	assert.Equal(t, "The measurement did not finish in time. Please try again later.", reply.Text)
}

func TestHandle_Concurrent(t *testing.T) {
	api := &fakeAPI{result: finishedPing()}
	svc := NewService(api, nil, zerolog.Nop())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reply := svc.Handle(context.Background(), "ping google.com", chat)
			assert.Equal(t, KindMeasurement, reply.Kind)
		}()
	}
	wg.Wait()
	assert.Equal(t, 8, api.calls())
}

func TestExplain(t *testing.T) {
	svc := NewService(&fakeAPI{}, nil, zerolog.Nop())

	req, err := svc.Explain("http https://example.com/a?b=c from Paris")
	require.NoError(t, err)
	h, ok := req.(*models.HTTPRequest)
	require.True(t, ok)
	assert.Equal(t, "example.com", h.Target)
	assert.Equal(t, "/a", h.Options.Request.Path)
	assert.Equal(t, "b=c", h.Options.Request.Query)

	_, err = svc.Explain("ping")
	assert.Error(t, err)
}
