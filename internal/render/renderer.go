package render

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/aleister1102/globalping-bots/internal/models"
)

const (
	// DefaultMaxProbes is how many probe results a chat reply shows.
	DefaultMaxProbes = 4
	// DefaultDashboardURL is where shared measurements are linked.
	DefaultDashboardURL = "https://globalping.io"
)

// Options controls how a measurement is presented.
type Options struct {
	Latency      bool
	Full         bool
	Share        bool
	MaxProbes    int
	Budget       int  // per-section body budget in runes, 0 for unlimited
	CodeBlock    bool // wrap bodies in ``` fences
	DashboardURL string
}

// Section is one probe's rendered result.
type Section struct {
	Header string
	Body   string
	Failed bool
}

// Output is the platform-neutral rendering of a measurement. Platform
// adapters lay the sections out in their own message structure.
type Output struct {
	ID        string
	Sections  []Section
	Footer    string
	Hidden    int // probes not shown
	Truncated bool
}

// Render formats up to opts.MaxProbes results of m. req supplies the
// request-side details (http method) and may be nil.
func Render(m *models.MeasurementResult, req models.Request, opts Options) Output {
	maxProbes := opts.MaxProbes
	if maxProbes <= 0 {
		maxProbes = DefaultMaxProbes
	}

	out := Output{ID: m.ID}
	method := requestMethod(req)

	shown := m.Results
	if len(shown) > maxProbes {
		shown = shown[:maxProbes]
	}
	out.Hidden = len(m.Results) - len(shown)

	for _, pr := range shown {
		body := Body(m.Type, pr.Result, method, opts)
		if opts.CodeBlock {
			body = CodeBlock(body)
		}
		truncated := Truncate(body, opts.Budget)
		if truncated != body {
			out.Truncated = true
		}

		out.Sections = append(out.Sections, Section{
			Header: ProbeHeader(pr.Probe),
			Body:   truncated,
			Failed: pr.Result.Status == models.ResultFailed || pr.Result.Status == models.ResultOffline,
		})
	}

	if out.Hidden > 0 || opts.Share {
		out.Footer = ResultsLink(opts.DashboardURL, m.ID)
	}

	return out
}

// ResultsLink points at the web view of a measurement.
func ResultsLink(dashboardURL, id string) string {
	if dashboardURL == "" {
		dashboardURL = DefaultDashboardURL
	}
	return fmt.Sprintf("%s?measurement=%s", strings.TrimSuffix(dashboardURL, "/"), id)
}

// ProbeHeader describes where a probe is: "City (State), Country, Continent,
// Network (ASn)" plus a distinguishing tag when one exists.
func ProbeHeader(p models.Probe) string {
	var b strings.Builder
	b.WriteString(p.City)
	if p.State != "" {
		fmt.Fprintf(&b, " (%s)", p.State)
	}
	fmt.Fprintf(&b, ", %s, %s, %s (AS%d)", p.Country, p.Continent, p.Network, p.ASN)
	if tag := distinguishingTag(p.Tags); tag != "" {
		fmt.Fprintf(&b, ", (%s)", tag)
	}
	return b.String()
}

// distinguishingTag picks the first tag ending in a digit, which is how
// cloud region tags ("aws-eu-west-1") look.
func distinguishingTag(tags []string) string {
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		last := []rune(tag)[len([]rune(tag))-1]
		if unicode.IsDigit(last) {
			return tag
		}
	}
	return ""
}

// Body renders one result without fencing or truncation.
func Body(t models.TestType, res models.Result, method string, opts Options) string {
	failed := res.Status == models.ResultFailed || res.Status == models.ResultOffline
	isGet := strings.EqualFold(method, "GET")

	var body string
	switch {
	case failed:
		body = strings.TrimSpace(res.RawOutput)
	case opts.Latency:
		body = latencyBody(t, res)
	case opts.Full && t == models.TypeHTTP:
		body = fullHTTPBody(res, isGet)
	case t == models.TypeHTTP && isGet:
		body = strings.TrimSpace(res.RawBody)
	default:
		body = strings.TrimSpace(res.RawOutput)
	}

	if body == "" {
		return "No output."
	}
	return body
}

func requestMethod(req models.Request) string {
	if r, ok := req.(*models.HTTPRequest); ok {
		return r.Options.Request.Method
	}
	return ""
}
