package measurement

import (
	"strings"
	"testing"

	"github.com/aleister1102/globalping-bots/internal/models"
	"github.com/aleister1102/globalping-bots/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func build(t *testing.T, input string) (models.Request, error) {
	t.Helper()
	flags, err := parser.Parse(input)
	require.NoError(t, err)
	return Build(flags)
}

func TestBuild_Ping(t *testing.T) {
	req, err := build(t, "ping google.com from New York --limit 2 --packets 3")
	require.NoError(t, err)

	assert.Equal(t, &models.PingRequest{
		Common: models.Common{
			Target:    "google.com",
			Limit:     2,
			Locations: []models.Location{{Magic: "New York"}},
		},
		Options: models.PingOptions{Packets: 3},
	}, req)
}

func TestBuild_HTTP(t *testing.T) {
	req, err := build(t, "http https://google.com:80/test?a=abc from New York --method get")
	require.NoError(t, err)

	httpReq, ok := req.(*models.HTTPRequest)
	require.True(t, ok)
	assert.Equal(t, "google.com", httpReq.Target)
	assert.Equal(t, 80, httpReq.Options.Port)
	assert.Equal(t, "HTTPS", httpReq.Options.Protocol)
	assert.Equal(t, "/test", httpReq.Options.Request.Path)
	assert.Equal(t, "a=abc", httpReq.Options.Request.Query)
	assert.Equal(t, "GET", httpReq.Options.Request.Method)
	assert.Equal(t, "google.com", httpReq.Options.Request.Host)
}

func TestBuild_HTTPDefaultsMethod(t *testing.T) {
	req, err := build(t, "http example.com --host internal.example.com -H X-Id: 7")
	require.NoError(t, err)

	httpReq := req.(*models.HTTPRequest)
	assert.Equal(t, DefaultHTTPMethod, httpReq.Options.Request.Method)
	assert.Equal(t, "internal.example.com", httpReq.Options.Request.Host)
	assert.Equal(t, map[string]string{"X-Id": "7"}, httpReq.Options.Request.Headers)
}

func TestBuild_DNS(t *testing.T) {
	req, err := build(t, "dns example.com @8.8.8.8 --type mx --protocol tcp --trace")
	require.NoError(t, err)

	assert.Equal(t, &models.DNSRequest{
		Common: models.Common{
			Target:    "example.com",
			Limit:     1,
			Locations: []models.Location{{Magic: "world"}},
		},
		Options: models.DNSOptions{
			Query:    &models.DNSQuery{Type: "MX"},
			Protocol: "TCP",
			Resolver: "8.8.8.8",
			Trace:    true,
		},
	}, req)
}

func TestBuild_TracerouteAndMTR(t *testing.T) {
	req, err := build(t, "traceroute example.com --protocol udp --port 33434")
	require.NoError(t, err)
	assert.Equal(t, models.TracerouteOptions{Protocol: "UDP", Port: 33434}, req.(*models.TracerouteRequest).Options)

	req, err = build(t, "mtr example.com --protocol icmp --packets 5")
	require.NoError(t, err)
	assert.Equal(t, models.MTROptions{Protocol: "ICMP", Packets: 5}, req.(*models.MTRRequest).Options)
}

func TestBuild_EnumErrors(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{
			input: "traceroute example.com --protocol sctp",
			want:  "Invalid argument \"sctp\" for \"protocol\"!\nExpected \"TCP, UDP, ICMP\".",
		},
		{
			input: "dns example.com --protocol icmp",
			want:  "Invalid argument \"icmp\" for \"protocol\"!\nExpected \"UDP, TCP\".",
		},
		{
			input: "dns example.com --query XYZ",
			want:  "Invalid argument \"XYZ\" for \"query\"!\nExpected \"A, AAAA, ANY, CNAME, DNSKEY, DS, HTTPS, MX, NS, NSEC, PTR, RRSIG, SOA, TXT, SRV\".",
		},
		{
			input: "http example.com --method POST",
			want:  "Invalid argument \"POST\" for \"method\"!\nExpected \"GET, HEAD, OPTIONS\".",
		},
		{
			input: "http ftp://example.com",
			want:  "Invalid argument \"FTP\" for \"protocol\"!\nExpected \"HTTP, HTTPS, HTTP2\".",
		},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := build(t, tt.input)
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())
		})
	}
}

func TestBuild_Sentinels(t *testing.T) {
	req, err := build(t, "limits")
	require.NoError(t, err)
	assert.Equal(t, &models.LimitsRequest{}, req)

	req, err = build(t, "auth status")
	require.NoError(t, err)
	assert.Equal(t, &models.AuthRequest{Subcommand: "status"}, req)
}

func TestParseLocations(t *testing.T) {
	locations, err := ParseLocations(" Germany, AS13335 ,Tokyo ")
	require.NoError(t, err)
	assert.Equal(t, []models.Location{{Magic: "Germany"}, {Magic: "AS13335"}, {Magic: "Tokyo"}}, locations)

	_, err = ParseLocations(" , ")
	assert.Error(t, err)

	_, err = ParseLocations(strings.Repeat("x,", 10) + "y")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "up to 10 locations")

	locations, err = ParseLocations(strings.TrimSuffix(strings.Repeat("x,", 10), ","))
	require.NoError(t, err)
	assert.Len(t, locations, 10)
}

func TestBuild_Idempotent(t *testing.T) {
	input := "dns example.com from Europe, Asia --type AAAA --limit 4"
	first, err := build(t, input)
	require.NoError(t, err)
	second, err := build(t, input)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBuild_MissingTarget(t *testing.T) {
	_, err := build(t, "ping --from Germany")

	var cmdErr *parser.CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, `Missing target. Expected "ping <target> from <location>".`, err.Error())
}
