package measurement

import (
	"strings"

	"github.com/aleister1102/globalping-bots/internal/models"
	"github.com/aleister1102/globalping-bots/internal/parser"
)

// MaxLocations is the most comma-separated locations one command may name.
const MaxLocations = 10

// Allowed enum values, in the order shown to users.
var (
	TracerouteProtocols = []string{"TCP", "UDP", "ICMP"}
	MTRProtocols        = []string{"TCP", "UDP", "ICMP"}
	DNSProtocols        = []string{"UDP", "TCP"}
	DNSQueryTypes       = []string{"A", "AAAA", "ANY", "CNAME", "DNSKEY", "DS", "HTTPS", "MX", "NS", "NSEC", "PTR", "RRSIG", "SOA", "TXT", "SRV"}
	HTTPProtocols       = []string{"HTTP", "HTTPS", "HTTP2"}
	HTTPMethods         = []string{"GET", "HEAD", "OPTIONS"}
)

// DefaultHTTPMethod is used when an http command names no method.
const DefaultHTTPMethod = "GET"

// Build turns parsed flags into a typed request. It performs no I/O, so any
// error it returns is safe to show before contacting the API.
func Build(f *parser.Flags) (models.Request, error) {
	switch f.Cmd {
	case parser.CmdAuth:
		return &models.AuthRequest{Subcommand: f.Target}, nil
	case parser.CmdLimits:
		return &models.LimitsRequest{}, nil
	}

	if err := parser.ValidateCommand(f.Cmd); err != nil {
		return nil, err
	}

	if f.Target == "" {
		return nil, parser.NewCommandError("Missing target. Expected \"%s <target> from <location>\".", f.Cmd)
	}

	locations, err := ParseLocations(f.From)
	if err != nil {
		return nil, err
	}
	common := models.Common{
		Target:    f.Target,
		Limit:     f.Limit,
		Locations: locations,
	}

	switch f.Cmd {
	case parser.CmdPing:
		return &models.PingRequest{
			Common:  common,
			Options: models.PingOptions{Packets: f.Packets},
		}, nil

	case parser.CmdTraceroute:
		protocol, err := enum("protocol", f.Protocol, TracerouteProtocols)
		if err != nil {
			return nil, err
		}
		return &models.TracerouteRequest{
			Common:  common,
			Options: models.TracerouteOptions{Protocol: protocol, Port: f.Port},
		}, nil

	case parser.CmdDNS:
		return buildDNS(common, f)

	case parser.CmdMTR:
		protocol, err := enum("protocol", f.Protocol, MTRProtocols)
		if err != nil {
			return nil, err
		}
		return &models.MTRRequest{
			Common:  common,
			Options: models.MTROptions{Protocol: protocol, Port: f.Port, Packets: f.Packets},
		}, nil

	default:
		return buildHTTP(common, f)
	}
}

func buildDNS(common models.Common, f *parser.Flags) (models.Request, error) {
	protocol, err := enum("protocol", f.Protocol, DNSProtocols)
	if err != nil {
		return nil, err
	}
	queryType, err := enum("query", f.Query, DNSQueryTypes)
	if err != nil {
		return nil, err
	}

	opts := models.DNSOptions{
		Protocol: protocol,
		Port:     f.Port,
		Resolver: f.Resolver,
		Trace:    f.Trace,
	}
	if queryType != "" {
		opts.Query = &models.DNSQuery{Type: queryType}
	}
	return &models.DNSRequest{Common: common, Options: opts}, nil
}

func buildHTTP(common models.Common, f *parser.Flags) (models.Request, error) {
	protocol, err := enum("protocol", f.Protocol, HTTPProtocols)
	if err != nil {
		return nil, err
	}
	method, err := enum("method", f.Method, HTTPMethods)
	if err != nil {
		return nil, err
	}
	if method == "" {
		method = DefaultHTTPMethod
	}

	return &models.HTTPRequest{
		Common: common,
		Options: models.HTTPOptions{
			Protocol: protocol,
			Port:     f.Port,
			Resolver: f.Resolver,
			Request: models.HTTPRequestOptions{
				Host:    f.Host,
				Path:    f.Path,
				Query:   f.Query,
				Method:  method,
				Headers: f.Headers,
			},
		},
	}, nil
}

// ParseLocations splits a from clause on commas into magic locations.
func ParseLocations(from string) ([]models.Location, error) {
	var locations []models.Location
	for _, part := range strings.Split(from, ",") {
		if part = strings.TrimSpace(part); part != "" {
			locations = append(locations, models.Location{Magic: part})
		}
	}

	switch {
	case len(locations) == 0:
		return nil, &parser.CommandError{Message: "No locations specified. Use \"from <location>\" or --from."}
	case len(locations) > MaxLocations:
		return nil, &parser.CommandError{Message: "You can only specify up to 10 locations at once."}
	}
	return locations, nil
}

// enum upper-cases value and checks it against allowed. An empty value is
// passed through so the API default applies.
func enum(field, value string, allowed []string) (string, error) {
	if value == "" {
		return "", nil
	}
	upper := strings.ToUpper(value)
	for _, a := range allowed {
		if a == upper {
			return upper, nil
		}
	}
	return "", parser.NewArgumentError(field, value, allowed)
}
