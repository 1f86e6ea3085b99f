package parser

import "strings"

// SplitHeaderTokens flattens repeated header values into whitespace-separated
// tokens. Chat transports lose the grouping anyway, so ParseHeaders always
// works from this flat form.
func SplitHeaderTokens(values []string) []string {
	var tokens []string
	for _, v := range values {
		tokens = append(tokens, strings.Fields(v)...)
	}
	return tokens
}

// ParseHeaders rebuilds "Key: Value" pairs from a flat token stream. A token
// ending in ':' starts a new key; everything else belongs to the current value.
func ParseHeaders(tokens []string) map[string]string {
	headers := make(map[string]string)

	var key string
	var value strings.Builder

	flush := func() {
		if key != "" {
			headers[key] = strings.TrimSpace(value.String())
		}
		key = ""
		value.Reset()
	}

	for _, token := range tokens {
		token = quoteStripper.Replace(token)
		if strings.HasSuffix(token, ":") {
			flush()
			key = strings.TrimSuffix(token, ":")
			continue
		}
		value.WriteString(token)
		value.WriteString(" ")
	}
	flush()

	return headers
}
