package render

import "strings"

// Text lays out an Output as a single plain message: each header on its own
// line followed by its body, sections separated by blank lines.
func Text(out Output, headerPrefix string) string {
	var b strings.Builder
	for i, s := range out.Sections {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(headerPrefix)
		b.WriteString(s.Header)
		b.WriteString("\n")
		b.WriteString(s.Body)
	}
	if out.Footer != "" {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(out.Footer)
	}
	return b.String()
}
