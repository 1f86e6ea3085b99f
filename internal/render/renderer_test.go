package render

import (
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/aleister1102/globalping-bots/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func probe(city string) models.Probe {
	return models.Probe{
		Continent: "EU",
		Country:   "DE",
		City:      city,
		ASN:       3320,
		Network:   "Deutsche Telekom AG",
	}
}

func TestTruncate(t *testing.T) {
	text := strings.Repeat("a", 100)

	assert.Equal(t, text, Truncate(text, 100))
	assert.Equal(t, text, Truncate(text, 500))
	assert.Equal(t, text, Truncate(text, 0))

	for _, budget := range []int{17, 20, 50, 99} {
		got := Truncate(text, budget)
		assert.Equal(t, budget, utf8.RuneCountInString(got))
		assert.True(t, strings.HasSuffix(got, TruncationMarker))
	}

	assert.Equal(t, "\n...", Truncate(text, 4))
}

func TestTruncate_Multibyte(t *testing.T) {
	text := strings.Repeat("é", 40)
	got := Truncate(text, 30)
	assert.Equal(t, 30, utf8.RuneCountInString(got))
	assert.True(t, utf8.ValidString(got))
}

func TestProbeHeader(t *testing.T) {
	p := probe("Berlin")
	assert.Equal(t, "Berlin, DE, EU, Deutsche Telekom AG (AS3320)", ProbeHeader(p))

	p = models.Probe{
		Continent: "NA",
		Country:   "US",
		State:     "VA",
		City:      "Ashburn",
		ASN:       16509,
		Network:   "Amazon.com, Inc.",
		Tags:      []string{"datacenter-network", "aws-us-east-1", "aws"},
	}
	assert.Equal(t, "Ashburn (VA), US, NA, Amazon.com, Inc. (AS16509), (aws-us-east-1)", ProbeHeader(p))
}

func TestRender_DefaultModeAndFooter(t *testing.T) {
	m := &models.MeasurementResult{ID: "abc123", Type: models.TypePing, Status: models.StatusFinished}
	for _, city := range []string{"Berlin", "Munich", "Hamburg", "Cologne", "Frankfurt"} {
		m.Results = append(m.Results, models.ProbeResult{
			Probe:  probe(city),
			Result: models.Result{Status: models.ResultFinished, RawOutput: "\nPING google.com\n64 bytes\n"},
		})
	}

	out := Render(m, nil, Options{CodeBlock: true})

	require.Len(t, out.Sections, DefaultMaxProbes)
	assert.Equal(t, 1, out.Hidden)
	assert.Equal(t, "```\nPING google.com\n64 bytes\n```", out.Sections[0].Body)
	assert.Equal(t, "https://globalping.io?measurement=abc123", out.Footer)
	assert.False(t, out.Truncated)
}

func TestRender_ShareAddsFooter(t *testing.T) {
	m := &models.MeasurementResult{ID: "id1", Type: models.TypePing, Results: []models.ProbeResult{{Probe: probe("Berlin")}}}

	assert.Empty(t, Render(m, nil, Options{}).Footer)
	assert.Equal(t, "https://example.org?measurement=id1", Render(m, nil, Options{Share: true, DashboardURL: "https://example.org/"}).Footer)
}

func TestRender_Truncates(t *testing.T) {
	m := &models.MeasurementResult{ID: "x", Type: models.TypeTraceroute, Results: []models.ProbeResult{{
		Probe:  probe("Berlin"),
		Result: models.Result{Status: models.ResultFinished, RawOutput: strings.Repeat("hop\n", 500)},
	}}}

	out := Render(m, nil, Options{CodeBlock: true, Budget: 300})
	require.Len(t, out.Sections, 1)
	assert.True(t, out.Truncated)
	assert.Equal(t, 300, utf8.RuneCountInString(out.Sections[0].Body))
	assert.True(t, strings.HasSuffix(out.Sections[0].Body, TruncationMarker))
}

func TestBody_Latency(t *testing.T) {
	ping := models.Result{Status: models.ResultFinished, Stats: &models.PingStats{Min: f(1.5), Max: f(3), Avg: f(2.25)}}
	assert.Equal(t, "Min: 1.5 ms\nMax: 3 ms\nAvg: 2.25 ms", Body(models.TypePing, ping, "", Options{Latency: true}))

	dns := models.Result{Status: models.ResultFinished, Timings: json.RawMessage(`{"total":17}`)}
	assert.Equal(t, "Total: 17 ms", Body(models.TypeDNS, dns, "", Options{Latency: true}))

	http := models.Result{
		Status:  models.ResultFinished,
		Timings: json.RawMessage(`{"total":120,"dns":5,"tcp":10,"tls":20,"firstByte":70,"download":15}`),
	}
	assert.Equal(t,
		"Total: 120 ms\nDownload: 15 ms\nFirst byte: 70 ms\nDNS: 5 ms\nTLS: 20 ms\nTCP: 10 ms",
		Body(models.TypeHTTP, http, "GET", Options{Latency: true}))
}

func TestBody_HTTPModes(t *testing.T) {
	res := models.Result{
		Status:         models.ResultFinished,
		RawOutput:      "HTTP/1.1 200\nServer: nginx\n\n<html></html>",
		RawHeaders:     "Server: nginx\nContent-Type: text/html",
		RawBody:        "<html></html>",
		StatusCode:     200,
		StatusCodeName: "OK",
		TLS: &models.TLSInfo{
			Protocol:       "TLSv1.3",
			CipherName:     "TLS_AES_256_GCM_SHA384",
			Subject:        models.TLSSubject{CN: "example.com"},
			Issuer:         models.TLSIssuer{CN: "R3", O: "Let's Encrypt", C: "US"},
			KeyType:        "EC",
			KeyBits:        256,
			SerialNumber:   "0A:0B",
			Fingerprint256: "AA:BB",
		},
	}

	assert.Equal(t, "<html></html>", Body(models.TypeHTTP, res, "GET", Options{}))
	assert.Equal(t, strings.TrimSpace(res.RawOutput), Body(models.TypeHTTP, res, "HEAD", Options{}))

	full := Body(models.TypeHTTP, res, "GET", Options{Full: true})
	assert.True(t, strings.HasPrefix(full, "TLSv1.3/TLS_AES_256_GCM_SHA384\nSubject: example.com\nIssuer: R3; Let's Encrypt; US"))
	assert.Contains(t, full, "Key type: EC256")
	assert.Contains(t, full, "HTTP 200 OK\nServer: nginx\nContent-Type: text/html")
	assert.True(t, strings.HasSuffix(full, "<html></html>"))

	head := Body(models.TypeHTTP, res, "HEAD", Options{Full: true})
	assert.NotContains(t, head, "<html>")

	res.TLS = nil
	plain := Body(models.TypeHTTP, res, "GET", Options{Full: true})
	assert.True(t, strings.HasPrefix(plain, "HTTP 200 OK"))
}

func TestBody_FailedResultShowsRawOutput(t *testing.T) {
	res := models.Result{Status: models.ResultFailed, RawOutput: "ping: unknown host"}
	assert.Equal(t, "ping: unknown host", Body(models.TypePing, res, "", Options{Latency: true}))
}

func TestBody_Empty(t *testing.T) {
	assert.Equal(t, "No output.", Body(models.TypeMTR, models.Result{Status: models.ResultFinished}, "", Options{}))
}

func TestRender_UsesRequestMethod(t *testing.T) {
	m := &models.MeasurementResult{ID: "h", Type: models.TypeHTTP, Results: []models.ProbeResult{{
		Probe:  probe("Berlin"),
		Result: models.Result{Status: models.ResultFinished, RawOutput: "raw", RawBody: "body"},
	}}}
	req := &models.HTTPRequest{Options: models.HTTPOptions{Request: models.HTTPRequestOptions{Method: "GET"}}}

	out := Render(m, req, Options{})
	assert.Equal(t, "body", out.Sections[0].Body)
}

func TestText(t *testing.T) {
	out := Output{
		Sections: []Section{{Header: "A", Body: "1"}, {Header: "B", Body: "2"}},
		Footer:   "link",
	}
	assert.Equal(t, "> A\n1\n\n> B\n2\n\nlink", Text(out, "> "))
}
