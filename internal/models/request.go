package models

// TestType identifies a measurement kind on the wire.
type TestType string

const (
	TypePing       TestType = "ping"
	TypeTraceroute TestType = "traceroute"
	TypeDNS        TestType = "dns"
	TypeMTR        TestType = "mtr"
	TypeHTTP       TestType = "http"
)

// Location is a free-text probe selector resolved by the API
// (city, country, network, ASN, or a previous measurement id).
type Location struct {
	Magic string `json:"magic"`
}

// Request is the closed set of commands the pipeline can execute. Only types
// in this package implement it.
type Request interface {
	Command() string
	isRequest()
}

// Measurement is a Request that is submitted to the measurement API.
type Measurement interface {
	Request
	Type() TestType
	Payload() MeasurementPayload
}

// Common holds the fields every measurement shares.
type Common struct {
	Target    string
	Limit     int
	Locations []Location
}

// MeasurementPayload is the JSON body of POST /v1/measurements.
type MeasurementPayload struct {
	Type               TestType    `json:"type"`
	Target             string      `json:"target"`
	Limit              int         `json:"limit,omitempty"`
	Locations          []Location  `json:"locations,omitempty"`
	MeasurementOptions interface{} `json:"measurementOptions,omitempty"`
	InProgressUpdates  bool        `json:"inProgressUpdates"`
}

func (c Common) payload(t TestType, options interface{}) MeasurementPayload {
	return MeasurementPayload{
		Type:               t,
		Target:             c.Target,
		Limit:              c.Limit,
		Locations:          c.Locations,
		MeasurementOptions: options,
	}
}

type PingOptions struct {
	Packets int `json:"packets,omitempty"`
}

type PingRequest struct {
	Common
	Options PingOptions
}

func (r *PingRequest) Command() string { return string(TypePing) }
func (r *PingRequest) Type() TestType  { return TypePing }
func (r *PingRequest) isRequest()      {}

func (r *PingRequest) Payload() MeasurementPayload {
	return r.payload(TypePing, r.Options)
}

type TracerouteOptions struct {
	Protocol string `json:"protocol,omitempty"`
	Port     int    `json:"port,omitempty"`
}

type TracerouteRequest struct {
	Common
	Options TracerouteOptions
}

func (r *TracerouteRequest) Command() string { return string(TypeTraceroute) }
func (r *TracerouteRequest) Type() TestType  { return TypeTraceroute }
func (r *TracerouteRequest) isRequest()      {}

func (r *TracerouteRequest) Payload() MeasurementPayload {
	return r.payload(TypeTraceroute, r.Options)
}

type DNSQuery struct {
	Type string `json:"type"`
}

type DNSOptions struct {
	Query    *DNSQuery `json:"query,omitempty"`
	Protocol string    `json:"protocol,omitempty"`
	Port     int       `json:"port,omitempty"`
	Resolver string    `json:"resolver,omitempty"`
	Trace    bool      `json:"trace,omitempty"`
}

type DNSRequest struct {
	Common
	Options DNSOptions
}

func (r *DNSRequest) Command() string { return string(TypeDNS) }
func (r *DNSRequest) Type() TestType  { return TypeDNS }
func (r *DNSRequest) isRequest()      {}

func (r *DNSRequest) Payload() MeasurementPayload {
	return r.payload(TypeDNS, r.Options)
}

type MTROptions struct {
	Protocol string `json:"protocol,omitempty"`
	Port     int    `json:"port,omitempty"`
	Packets  int    `json:"packets,omitempty"`
}

type MTRRequest struct {
	Common
	Options MTROptions
}

func (r *MTRRequest) Command() string { return string(TypeMTR) }
func (r *MTRRequest) Type() TestType  { return TypeMTR }
func (r *MTRRequest) isRequest()      {}

func (r *MTRRequest) Payload() MeasurementPayload {
	return r.payload(TypeMTR, r.Options)
}

// HTTPRequestOptions is the "request" object of an http measurement.
type HTTPRequestOptions struct {
	Host    string            `json:"host,omitempty"`
	Path    string            `json:"path,omitempty"`
	Query   string            `json:"query,omitempty"`
	Method  string            `json:"method,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
}

type HTTPOptions struct {
	Protocol string             `json:"protocol,omitempty"`
	Port     int                `json:"port,omitempty"`
	Resolver string             `json:"resolver,omitempty"`
	Request  HTTPRequestOptions `json:"request"`
}

type HTTPRequest struct {
	Common
	Options HTTPOptions
}

func (r *HTTPRequest) Command() string { return string(TypeHTTP) }
func (r *HTTPRequest) Type() TestType  { return TypeHTTP }
func (r *HTTPRequest) isRequest()      {}

func (r *HTTPRequest) Payload() MeasurementPayload {
	return r.payload(TypeHTTP, r.Options)
}

// AuthRequest asks about the account behind the bot. Subcommand is whatever
// followed the verb, e.g. "status".
type AuthRequest struct {
	Subcommand string
}

func (r *AuthRequest) Command() string { return "auth" }
func (r *AuthRequest) isRequest()      {}

// LimitsRequest asks for the current API rate limits and credits.
type LimitsRequest struct{}

func (r *LimitsRequest) Command() string { return "limits" }
func (r *LimitsRequest) isRequest()      {}
