package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPingRequest_Payload(t *testing.T) {
	req := &PingRequest{
		Common: Common{
			Target:    "google.com",
			Limit:     2,
			Locations: []Location{{Magic: "New York"}},
		},
		Options: PingOptions{Packets: 3},
	}

	body, err := json.Marshal(req.Payload())
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "ping",
		"target": "google.com",
		"limit": 2,
		"locations": [{"magic": "New York"}],
		"measurementOptions": {"packets": 3},
		"inProgressUpdates": false
	}`, string(body))
}

func TestHTTPRequest_PayloadKeepsRequestObject(t *testing.T) {
	req := &HTTPRequest{
		Common:  Common{Target: "example.com", Limit: 1, Locations: []Location{{Magic: "world"}}},
		Options: HTTPOptions{Protocol: "HTTPS", Request: HTTPRequestOptions{Method: "GET", Path: "/"}},
	}

	body, err := json.Marshal(req.Payload())
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "http",
		"target": "example.com",
		"limit": 1,
		"locations": [{"magic": "world"}],
		"measurementOptions": {"protocol": "HTTPS", "request": {"method": "GET", "path": "/"}},
		"inProgressUpdates": false
	}`, string(body))
}

func TestResult_Timings(t *testing.T) {
	var ping Result
	require.NoError(t, json.Unmarshal([]byte(`{"status":"finished","timings":[{"rtt":1.2,"ttl":57}]}`), &ping))
	assert.Nil(t, ping.DNSTimings())
	assert.Nil(t, ping.HTTPTimings())

	var dns Result
	require.NoError(t, json.Unmarshal([]byte(`{"status":"finished","timings":{"total":17}}`), &dns))
	timings := dns.DNSTimings()
	require.NotNil(t, timings)
	require.NotNil(t, timings.Total)
	assert.Equal(t, 17.0, *timings.Total)

	var http Result
	require.NoError(t, json.Unmarshal([]byte(`{"status":"finished","timings":{"total":120,"dns":5,"tcp":10,"tls":null,"firstByte":90,"download":15}}`), &http))
	ht := http.HTTPTimings()
	require.NotNil(t, ht)
	assert.Nil(t, ht.TLS)
	assert.Equal(t, 90.0, *ht.FirstByte)
}

func TestRequestVariants_Commands(t *testing.T) {
	requests := map[string]Request{
		"ping":       &PingRequest{},
		"traceroute": &TracerouteRequest{},
		"dns":        &DNSRequest{},
		"mtr":        &MTRRequest{},
		"http":       &HTTPRequest{},
		"auth":       &AuthRequest{},
		"limits":     &LimitsRequest{},
	}
	for want, req := range requests {
		assert.Equal(t, want, req.Command())
	}
}
