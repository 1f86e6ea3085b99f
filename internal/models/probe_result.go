package models

import "encoding/json"

// MeasurementStatus is the lifecycle state reported by GET /v1/measurements/{id}.
type MeasurementStatus string

const (
	StatusInProgress MeasurementStatus = "in-progress"
	StatusFinished   MeasurementStatus = "finished"
)

// Per-probe result states.
const (
	ResultInProgress = "in-progress"
	ResultFinished   = "finished"
	ResultFailed     = "failed"
	ResultOffline    = "offline"
)

// CreatedMeasurement is the 202 body of POST /v1/measurements.
type CreatedMeasurement struct {
	ID          string `json:"id"`
	ProbesCount int    `json:"probesCount"`
}

// MeasurementResult is the envelope returned while polling a measurement.
type MeasurementResult struct {
	ID          string            `json:"id"`
	Type        TestType          `json:"type"`
	Status      MeasurementStatus `json:"status"`
	Target      string            `json:"target"`
	ProbesCount int               `json:"probesCount"`
	CreatedAt   string            `json:"createdAt,omitempty"`
	UpdatedAt   string            `json:"updatedAt,omitempty"`
	Results     []ProbeResult     `json:"results"`
}

// InProgress reports whether the API is still collecting results.
func (m *MeasurementResult) InProgress() bool {
	return m.Status == StatusInProgress
}

// ProbeResult pairs a probe with what it measured.
type ProbeResult struct {
	Probe  Probe  `json:"probe"`
	Result Result `json:"result"`
}

// Probe describes where a test ran. Optional fields are empty when the API
// does not know them.
type Probe struct {
	Continent string   `json:"continent"`
	Region    string   `json:"region,omitempty"`
	Country   string   `json:"country"`
	State     string   `json:"state,omitempty"`
	City      string   `json:"city"`
	ASN       int      `json:"asn"`
	Network   string   `json:"network"`
	Tags      []string `json:"tags,omitempty"`
	Resolvers []string `json:"resolvers,omitempty"`
}

// Result is the union of every test type's result fields. Which ones are set
// depends on the measurement type.
type Result struct {
	Status          string `json:"status"`
	RawOutput       string `json:"rawOutput"`
	ResolvedAddress string `json:"resolvedAddress,omitempty"`
	ResolvedHost    string `json:"resolvedHostname,omitempty"`

	// ping
	Stats *PingStats `json:"stats,omitempty"`

	// Timings is an array for ping and an object for dns and http.
	Timings json.RawMessage `json:"timings,omitempty"`

	// http
	RawHeaders     string   `json:"rawHeaders,omitempty"`
	RawBody        string   `json:"rawBody,omitempty"`
	Truncated      bool     `json:"truncated,omitempty"`
	StatusCode     int      `json:"statusCode,omitempty"`
	StatusCodeName string   `json:"statusCodeName,omitempty"`
	TLS            *TLSInfo `json:"tls,omitempty"`
}

// PingStats values are null when every packet was lost.
type PingStats struct {
	Min   *float64 `json:"min"`
	Max   *float64 `json:"max"`
	Avg   *float64 `json:"avg"`
	Total int      `json:"total"`
	Rcv   int      `json:"rcv"`
	Drop  int      `json:"drop"`
	Loss  float64  `json:"loss"`
}

type DNSTimings struct {
	Total *float64 `json:"total"`
}

type HTTPTimings struct {
	Total     *float64 `json:"total"`
	DNS       *float64 `json:"dns"`
	TCP       *float64 `json:"tcp"`
	TLS       *float64 `json:"tls"`
	FirstByte *float64 `json:"firstByte"`
	Download  *float64 `json:"download"`
}

// DNSTimings decodes the timings object of a dns result. It returns nil when
// the result carries none, e.g. for trace queries.
func (r Result) DNSTimings() *DNSTimings {
	var t DNSTimings
	if !decodeTimings(r.Timings, &t) {
		return nil
	}
	return &t
}

// HTTPTimings decodes the timings object of an http result.
func (r Result) HTTPTimings() *HTTPTimings {
	var t HTTPTimings
	if !decodeTimings(r.Timings, &t) {
		return nil
	}
	return &t
}

func decodeTimings(raw json.RawMessage, dst interface{}) bool {
	if len(raw) == 0 || raw[0] != '{' {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

type TLSSubject struct {
	CN  string `json:"CN"`
	Alt string `json:"alt"`
}

type TLSIssuer struct {
	C  string `json:"C"`
	O  string `json:"O"`
	CN string `json:"CN"`
}

// TLSInfo is the certificate and handshake summary of an https result.
type TLSInfo struct {
	Authorized     bool       `json:"authorized"`
	Error          string     `json:"error,omitempty"`
	Protocol       string     `json:"protocol"`
	CipherName     string     `json:"cipherName"`
	CreatedAt      string     `json:"createdAt"`
	ExpiresAt      string     `json:"expiresAt"`
	Subject        TLSSubject `json:"subject"`
	Issuer         TLSIssuer  `json:"issuer"`
	KeyType        string     `json:"keyType"`
	KeyBits        int        `json:"keyBits"`
	SerialNumber   string     `json:"serialNumber"`
	Fingerprint256 string     `json:"fingerprint256"`
}
