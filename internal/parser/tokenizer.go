package parser

import (
	"strconv"
	"strings"
	"unicode"
)

var aliases = map[string]string{
	"F":    "from",
	"L":    "limit",
	"H":    "header",
	"h":    "help",
	"type": "query",
}

var booleanFlags = map[string]bool{
	"help":    true,
	"latency": true,
	"full":    true,
	"share":   true,
	"trace":   true,
}

var arrayFlags = map[string]bool{
	"header": true,
}

// quoteStripper removes every ASCII and typographic quote character.
var quoteStripper = strings.NewReplacer(
	`"`, "",
	"'", "",
	"“", "",
	"”", "",
	"‘", "",
	"’", "",
)

// closingQuotes maps an opening quote to the characters that may close it.
// Chat clients often autocorrect only one side of a pair.
var closingQuotes = map[rune]string{
	'"':  `"`,
	'\'': "'",
	'“':  "”“\"",
	'‘':  "’‘'",
}

// Tokens is the raw result of tokenizing a command line.
type Tokens struct {
	Verb        string
	Flags       map[string][]string
	Order       []string // flag names in order of first appearance
	Positionals []string
}

// Has reports whether the flag was given at all, with or without a value.
func (t Tokens) Has(name string) bool {
	_, ok := t.Flags[name]
	return ok
}

// First returns the first value of a flag, or "".
func (t Tokens) First(name string) string {
	if values := t.Flags[name]; len(values) > 0 {
		return values[0]
	}
	return ""
}

// Bool interprets a boolean flag. A bare flag is true; an explicit value is
// parsed and anything unparseable counts as true.
func (t Tokens) Bool(name string) bool {
	if !t.Has(name) {
		return false
	}
	v := t.First(name)
	if v == "" {
		return true
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return true
	}
	return b
}

func (t *Tokens) add(name, value string) {
	values, seen := t.Flags[name]
	if !seen {
		t.Order = append(t.Order, name)
		t.Flags[name] = []string{value}
		return
	}
	if arrayFlags[name] {
		t.Flags[name] = append(values, value)
	}
}

// Split breaks raw chat text into words. Quoted runs stay together, quote
// characters included; Tokenize strips them afterwards.
func Split(raw string) []string {
	var words []string
	var current strings.Builder
	var closers string

	flush := func() {
		if current.Len() > 0 {
			words = append(words, current.String())
			current.Reset()
		}
	}

	for _, r := range raw {
		if closers != "" {
			current.WriteRune(r)
			if strings.ContainsRune(closers, r) {
				closers = ""
			}
			continue
		}
		if c, ok := closingQuotes[r]; ok && opensQuote(current.String()) {
			closers = c
			current.WriteRune(r)
			continue
		}
		if unicode.IsSpace(r) {
			flush()
			continue
		}
		current.WriteRune(r)
	}
	flush()

	return words
}

// opensQuote reports whether a quote at this point starts a quoted run rather
// than being an apostrophe inside a word.
func opensQuote(prefix string) bool {
	return prefix == "" || strings.HasSuffix(prefix, "=") || strings.HasSuffix(prefix, ":")
}

// Tokenize turns words into a flag map and positional list. The first
// positional becomes the verb.
func Tokenize(words []string) Tokens {
	words = withHelpFlag(words)

	t := Tokens{Flags: make(map[string][]string)}
	var positionals []string

	for i := 0; i < len(words); i++ {
		word := words[i]
		name, value, hasValue, ok := splitFlag(word)
		if !ok {
			positionals = append(positionals, word)
			continue
		}

		switch {
		case hasValue:
			t.add(name, value)
		case booleanFlags[name]:
			t.add(name, "")
		case arrayFlags[name]:
			consumed := false
			// A bare "from" starts the location clause, not another value.
			for i+1 < len(words) && !isFlag(words[i+1]) && !strings.EqualFold(words[i+1], "from") {
				i++
				t.add(name, words[i])
				consumed = true
			}
			if !consumed {
				t.add(name, "")
			}
		default:
			if i+1 < len(words) && !isFlag(words[i+1]) {
				i++
				t.add(name, words[i])
			} else {
				t.add(name, "")
			}
		}
	}

	for name, values := range t.Flags {
		t.Flags[name] = cleanValues(values)
	}
	positionals = cleanValues(positionals)

	if len(positionals) > 0 {
		t.Verb = strings.ToLower(positionals[0])
		t.Positionals = positionals[1:]
	}

	return t
}

func withHelpFlag(words []string) []string {
	if (len(words) > 0 && words[0] == CmdHelp) || (len(words) > 1 && words[1] == CmdHelp) {
		out := make([]string, 0, len(words)+1)
		out = append(out, words...)
		return append(out, "--help")
	}
	return words
}

// splitFlag decodes "--name", "--name=value" and "-n" forms.
func splitFlag(word string) (name, value string, hasValue, ok bool) {
	if !isFlag(word) {
		return "", "", false, false
	}
	body := strings.TrimPrefix(strings.TrimPrefix(word, "-"), "-")
	if idx := strings.Index(body, "="); idx >= 0 {
		name, value, hasValue = body[:idx], body[idx+1:], true
	} else {
		name = body
	}
	return canonicalFlag(name), value, hasValue, true
}

func canonicalFlag(name string) string {
	if canonical, ok := aliases[name]; ok {
		return canonical
	}
	return strings.ToLower(name)
}

func isFlag(word string) bool {
	if len(word) < 2 || word[0] != '-' {
		return false
	}
	if _, err := strconv.ParseFloat(word, 64); err == nil {
		return false
	}
	return word != "--"
}

// cleanValues strips quote characters and drops entries left empty.
func cleanValues(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = quoteStripper.Replace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
