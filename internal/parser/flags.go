package parser

// Test commands accepted by the measurement API.
const (
	CmdPing       = "ping"
	CmdTraceroute = "traceroute"
	CmdDNS        = "dns"
	CmdMTR        = "mtr"
	CmdHTTP       = "http"
)

// Sentinel commands that never reach flag validation.
const (
	CmdAuth   = "auth"
	CmdLimits = "limits"
	CmdHelp   = "help"
)

// DefaultFrom is the location used when the command names none.
const DefaultFrom = "world"

// Commands lists the test commands in the order used for error messages.
var Commands = []string{CmdPing, CmdTraceroute, CmdDNS, CmdMTR, CmdHTTP}

var baseFlags = []string{"target", "from", "limit", "share"}

var commandFlags = map[string][]string{
	CmdPing:       {"packets", "latency"},
	CmdTraceroute: {"protocol", "port"},
	CmdDNS:        {"query", "protocol", "port", "resolver", "trace", "latency"},
	CmdMTR:        {"protocol", "port", "packets"},
	CmdHTTP:       {"method", "protocol", "port", "resolver", "host", "path", "query", "header", "latency", "full"},
}

// AllowedFlags returns the ordered allow-list for a test command, or nil for
// an unknown command.
func AllowedFlags(cmd string) []string {
	specific, ok := commandFlags[cmd]
	if !ok {
		return nil
	}
	allowed := make([]string, 0, len(specific)+len(baseFlags))
	allowed = append(allowed, specific...)
	return append(allowed, baseFlags...)
}

// IsTestCommand reports whether cmd is one of the five measurement types.
func IsTestCommand(cmd string) bool {
	_, ok := commandFlags[cmd]
	return ok
}

// AcceptsResolver reports whether cmd takes an @resolver positional.
func AcceptsResolver(cmd string) bool {
	return cmd == CmdDNS || cmd == CmdHTTP
}

// Flags is the normalized form of one chat command. Numeric fields are zero
// when unset.
type Flags struct {
	Cmd      string
	Target   string
	From     string
	Limit    int
	Packets  int
	Protocol string
	Port     int
	Resolver string
	Trace    bool
	Query    string
	Method   string
	Path     string
	Host     string
	Headers  map[string]string
	Help     bool
	Latency  bool
	Full     bool
	Share    bool
}

// TargetQuery holds what the positional arguments say about where to test.
type TargetQuery struct {
	Target   string
	From     string
	Resolver string
}

// URLData is a URL-shaped target broken into request parts.
type URLData struct {
	Target   string
	Host     string
	Path     string
	Port     int
	Protocol string
	Query    string
}
