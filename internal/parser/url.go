package parser

import (
	"net/url"
	"strconv"
	"strings"
)

// InferURL decomposes a URL-shaped http target. Slack-style rich links
// ("<https://example.com|example.com>") are unwrapped first and a missing
// scheme defaults to http.
func InferURL(target string) (URLData, error) {
	raw := strings.TrimSpace(target)
	raw = strings.TrimPrefix(raw, "<")
	raw = strings.TrimSuffix(raw, ">")
	if idx := strings.Index(raw, "|"); idx >= 0 {
		raw = raw[:idx]
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return URLData{}, newCommandError("Invalid http target: %s", target)
	}

	data := URLData{
		Target:   u.Hostname(),
		Host:     u.Hostname(),
		Path:     u.EscapedPath(),
		Protocol: strings.ToUpper(u.Scheme),
		Query:    strings.TrimPrefix(u.RawQuery, "?"),
	}
	if data.Path == "" {
		data.Path = "/"
	}
	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return URLData{}, newCommandError("Invalid http target: %s", target)
		}
		if port != defaultPorts[strings.ToLower(u.Scheme)] {
			data.Port = port
		}
	}

	return data, nil
}

// defaultPorts are left implicit so they are not sent as an explicit port.
var defaultPorts = map[string]int{
	"http":  80,
	"https": 443,
}

// MergeURL fills the http fields the user left unset from the decomposed
// URL. The target itself is always replaced by the URL hostname.
func MergeURL(f *Flags, data URLData) {
	f.Target = data.Target
	if f.Host == "" {
		f.Host = data.Host
	}
	if f.Path == "" {
		f.Path = data.Path
	}
	if f.Port == 0 {
		f.Port = data.Port
	}
	if f.Protocol == "" {
		f.Protocol = data.Protocol
	}
	if f.Query == "" {
		f.Query = data.Query
	}
}
