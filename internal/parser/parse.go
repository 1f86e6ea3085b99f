package parser

import (
	"strconv"
	"strings"
)

// Parse turns raw chat text into Flags.
func Parse(raw string) (*Flags, error) {
	return ParseWords(Split(raw))
}

// ParseWords is Parse for callers whose platform already split the text.
// Errors are user-facing and returned before anything touches the network.
func ParseWords(words []string) (*Flags, error) {
	t := Tokenize(words)

	switch t.Verb {
	case CmdAuth, CmdLimits:
		return &Flags{
			Cmd:    t.Verb,
			Target: strings.Join(t.Positionals, " "),
			From:   "",
			Limit:  1,
		}, nil
	}

	if t.Bool("help") {
		return &Flags{
			Cmd:    t.Verb,
			Target: strings.Join(t.Positionals, " "),
			Help:   true,
		}, nil
	}

	if err := ValidateCommand(t.Verb); err != nil {
		return nil, err
	}
	if err := ValidateFlags(t.Verb, t); err != nil {
		return nil, err
	}

	q, err := ExtractTarget(t.Verb, t.Positionals)
	if err != nil {
		return nil, err
	}

	f := &Flags{
		Cmd:      t.Verb,
		Target:   q.Target,
		From:     firstNonEmpty(q.From, t.First("from"), DefaultFrom),
		Limit:    1,
		Protocol: t.First("protocol"),
		Resolver: firstNonEmpty(q.Resolver, t.First("resolver")),
		Trace:    t.Bool("trace"),
		Query:    t.First("query"),
		Method:   t.First("method"),
		Path:     t.First("path"),
		Host:     t.First("host"),
		Latency:  t.Bool("latency"),
		Full:     t.Bool("full"),
		Share:    t.Bool("share"),
	}
	if v := t.First("target"); f.Target == "" && v != "" {
		f.Target = v
	}

	numeric := []struct {
		name string
		dst  *int
	}{
		{"limit", &f.Limit},
		{"packets", &f.Packets},
		{"port", &f.Port},
	}
	for _, n := range numeric {
		v, ok, err := intFlag(t, n.name)
		if err != nil {
			return nil, err
		}
		if ok {
			*n.dst = v
		}
	}

	if headers := t.Flags["header"]; len(headers) > 0 {
		f.Headers = ParseHeaders(SplitHeaderTokens(headers))
	}

	if f.Cmd == CmdHTTP && f.Target != "" {
		data, err := InferURL(f.Target)
		if err != nil {
			return nil, err
		}
		MergeURL(f, data)
	}

	return f, nil
}

// intFlag reads the first value of a numeric flag.
func intFlag(t Tokens, name string) (int, bool, error) {
	v := t.First(name)
	if v == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false, NewArgumentError(name, v, []string{"number"})
	}
	return n, true, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
