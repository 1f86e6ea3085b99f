package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aleister1102/globalping-bots/internal/models"
)

type timing struct {
	label string
	value *float64
}

func latencyBody(t models.TestType, res models.Result) string {
	var timings []timing

	switch t {
	case models.TypePing:
		if res.Stats != nil {
			timings = []timing{
				{"Min", res.Stats.Min},
				{"Max", res.Stats.Max},
				{"Avg", res.Stats.Avg},
			}
		}
	case models.TypeDNS:
		if dt := res.DNSTimings(); dt != nil {
			timings = []timing{{"Total", dt.Total}}
		}
	case models.TypeHTTP:
		if ht := res.HTTPTimings(); ht != nil {
			timings = []timing{
				{"Total", ht.Total},
				{"Download", ht.Download},
				{"First byte", ht.FirstByte},
				{"DNS", ht.DNS},
				{"TLS", ht.TLS},
				{"TCP", ht.TCP},
			}
		}
	default:
		return strings.TrimSpace(res.RawOutput)
	}

	lines := make([]string, 0, len(timings))
	for _, tm := range timings {
		if tm.value == nil {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s ms", tm.label, formatMs(*tm.value)))
	}
	return strings.Join(lines, "\n")
}

func formatMs(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// fullHTTPBody shows the TLS handshake, status line and headers, and the
// body for GET requests.
func fullHTTPBody(res models.Result, isGet bool) string {
	var parts []string
	if res.TLS != nil {
		if summary := tlsSummary(res.TLS); summary != "" {
			parts = append(parts, summary)
		}
	}

	head := fmt.Sprintf("HTTP %d %s", res.StatusCode, res.StatusCodeName)
	if headers := strings.TrimSpace(res.RawHeaders); headers != "" {
		head += "\n" + headers
	}
	parts = append(parts, strings.TrimSpace(head))

	if isGet {
		if body := strings.TrimSpace(res.RawBody); body != "" {
			parts = append(parts, body)
		}
	}

	return strings.Join(parts, "\n\n")
}

func tlsSummary(tls *models.TLSInfo) string {
	var lines []string

	if tls.Protocol != "" || tls.CipherName != "" {
		lines = append(lines, joinNonEmpty("/", tls.Protocol, tls.CipherName))
	}
	if s := joinNonEmpty("; ", tls.Subject.CN, tls.Subject.Alt); s != "" {
		lines = append(lines, "Subject: "+s)
	}
	if s := joinNonEmpty("; ", tls.Issuer.CN, tls.Issuer.O, tls.Issuer.C); s != "" {
		lines = append(lines, "Issuer: "+s)
	}
	if s := joinNonEmpty("; ", tls.CreatedAt, tls.ExpiresAt); s != "" {
		lines = append(lines, "Validity: "+s)
	}
	if tls.SerialNumber != "" {
		lines = append(lines, "Serial number: "+tls.SerialNumber)
	}
	if tls.Fingerprint256 != "" {
		lines = append(lines, "Fingerprint: "+tls.Fingerprint256)
	}
	if tls.KeyType != "" {
		keyType := tls.KeyType
		if tls.KeyBits > 0 {
			keyType += strconv.Itoa(tls.KeyBits)
		}
		lines = append(lines, "Key type: "+keyType)
	}
	if tls.Error != "" {
		lines = append(lines, "Error: "+tls.Error)
	}

	return strings.Join(lines, "\n")
}

func joinNonEmpty(sep string, values ...string) string {
	kept := values[:0:0]
	for _, v := range values {
		if v != "" {
			kept = append(kept, v)
		}
	}
	return strings.Join(kept, sep)
}
