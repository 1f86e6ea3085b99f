// Package help renders command usage. Flag lists are read from the parser's
// allow-lists and the builder's enums so the text always matches what the
// validator accepts.
package help

import (
	"fmt"
	"strings"

	"github.com/aleister1102/globalping-bots/internal/measurement"
	"github.com/aleister1102/globalping-bots/internal/parser"
)

var summaries = map[string]string{
	parser.CmdPing:       "Run a ping test from probes around the world.",
	parser.CmdTraceroute: "Trace the network path to a target.",
	parser.CmdDNS:        "Resolve a hostname from remote probes.",
	parser.CmdMTR:        "Run mtr, a combined traceroute and ping.",
	parser.CmdHTTP:       "Send an HTTP request from remote probes.",
	parser.CmdLimits:     "Show your current rate limits and credits.",
	parser.CmdAuth:       "Authenticate with a Globalping token to raise your limits.",
}

var flagDescriptions = map[string]string{
	"target":   "Target host, IP or URL. Usually given positionally.",
	"from":     `Comma-separated probe locations (default "world"). Also "from <location>".`,
	"limit":    "Number of probes to use (default 1).",
	"share":    "Print a link to the results on the Globalping dashboard.",
	"packets":  "Number of packets to send.",
	"latency":  "Show only latency statistics.",
	"protocol": "Protocol to use.",
	"port":     "Destination port.",
	"query":    "DNS record type, or the HTTP query string for http.",
	"resolver": "Resolver to use. Also \"@<resolver>\" after the target.",
	"trace":    "Trace delegation from the root servers.",
	"method":   "HTTP method.",
	"host":     "Host header to send.",
	"path":     "Request path.",
	"header":   `Extra request headers, e.g. --header "Accept: text/html".`,
	"full":     "Show status line, headers and body.",
}

var shorthands = map[string]string{
	"from":   "F",
	"limit":  "L",
	"header": "H",
}

// Topics lists everything Command accepts, in display order.
var Topics = []string{
	parser.CmdPing,
	parser.CmdTraceroute,
	parser.CmdDNS,
	parser.CmdMTR,
	parser.CmdHTTP,
	parser.CmdLimits,
	parser.CmdAuth,
}

// Topic picks the help topic from parsed flags: "help dns" and "dns --help"
// both select dns.
func Topic(f *parser.Flags) string {
	if f.Cmd != parser.CmdHelp {
		return f.Cmd
	}
	topic, _, _ := strings.Cut(strings.TrimSpace(f.Target), " ")
	return strings.ToLower(topic)
}

// Command returns help for topic, or General when topic is unknown.
func Command(topic string) string {
	summary, ok := summaries[topic]
	if !ok {
		return General()
	}

	var b strings.Builder
	b.WriteString(summary)
	b.WriteString("\n\n")

	switch topic {
	case parser.CmdLimits:
		b.WriteString("Usage:\n  limits\n")
		return b.String()
	case parser.CmdAuth:
		b.WriteString("Usage:\n  auth login <token>\n  auth status\n  auth logout\n")
		return b.String()
	}

	b.WriteString("Usage:\n  ")
	b.WriteString(usage(topic))
	b.WriteString("\n\nFlags:\n")
	for _, flag := range parser.AllowedFlags(topic) {
		b.WriteString("  ")
		b.WriteString(flagName(flag))
		b.WriteString("  ")
		b.WriteString(flagDescriptions[flag])
		if values := enumValues(topic, flag); len(values) > 0 {
			fmt.Fprintf(&b, " One of: %s.", strings.Join(values, ", "))
		}
		b.WriteString("\n")
	}

	b.WriteString("\nExamples:\n")
	for _, ex := range examples[topic] {
		b.WriteString("  ")
		b.WriteString(ex)
		b.WriteString("\n")
	}
	return b.String()
}

// General lists every command.
func General() string {
	var b strings.Builder
	b.WriteString("Globalping runs network tests from probes all over the world.\n\nCommands:\n")
	for _, topic := range Topics {
		fmt.Fprintf(&b, "  %-11s %s\n", topic, summaries[topic])
	}
	b.WriteString("\nRun \"help <command>\" or \"<command> --help\" for details.\n")
	return b.String()
}

func usage(cmd string) string {
	target := "<target>"
	switch cmd {
	case parser.CmdHTTP:
		target = "<url>"
	}
	if parser.AcceptsResolver(cmd) {
		target += " [@resolver]"
	}
	return fmt.Sprintf("%s %s [from <location>] [flags]", cmd, target)
}

func flagName(flag string) string {
	if short, ok := shorthands[flag]; ok {
		return fmt.Sprintf("-%s, --%s", short, flag)
	}
	return "--" + flag
}

func enumValues(cmd, flag string) []string {
	switch flag {
	case "protocol":
		switch cmd {
		case parser.CmdTraceroute:
			return measurement.TracerouteProtocols
		case parser.CmdMTR:
			return measurement.MTRProtocols
		case parser.CmdDNS:
			return measurement.DNSProtocols
		case parser.CmdHTTP:
			return measurement.HTTPProtocols
		}
	case "query":
		if cmd == parser.CmdDNS {
			return measurement.DNSQueryTypes
		}
	case "method":
		return measurement.HTTPMethods
	}
	return nil
}

var examples = map[string][]string{
	parser.CmdPing: {
		"ping google.com from New York --limit 2",
		"ping 1.1.1.1 --from Europe,Asia --packets 6",
	},
	parser.CmdTraceroute: {
		"traceroute cloudflare.com from Germany --protocol tcp --port 443",
	},
	parser.CmdDNS: {
		"dns example.com @1.1.1.1 from Brazil --query MX",
		"dns jsdelivr.com --trace",
	},
	parser.CmdMTR: {
		"mtr 8.8.8.8 from Tokyo --packets 5",
	},
	parser.CmdHTTP: {
		"http https://www.jsdelivr.com/package/npm/test?nav=stats from Paris",
		`http example.com --method HEAD --header "Accept: text/html" --full`,
	},
}
