package slack

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/aleister1102/globalping-bots/internal/orchestrator"
	"github.com/aleister1102/globalping-bots/internal/render"
	"github.com/slack-go/slack"
)

// Slack Block Kit limits.
const (
	MaxSectionText  = 3000
	MaxBlocks       = 50
	MaxFallbackText = 4000
)

var mrkdwnEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// Escape makes user-controlled text safe for mrkdwn.
func Escape(text string) string {
	return mrkdwnEscaper.Replace(text)
}

// escapeWithin escapes text and keeps the result within limit runes. The
// renderer may already have truncated text, and escaping can grow it again,
// so an existing marker is dropped and the text is cut at whole entities
// before a single marker is appended.
func escapeWithin(text string, limit int) string {
	escaped := Escape(text)
	if utf8.RuneCountInString(escaped) <= limit {
		return escaped
	}

	text = strings.TrimSuffix(text, render.TruncationMarker)
	budget := limit - utf8.RuneCountInString(render.TruncationMarker)

	var b strings.Builder
	used := 0
	for _, r := range text {
		piece := Escape(string(r))
		n := utf8.RuneCountInString(piece)
		if used+n > budget {
			break
		}
		b.WriteString(piece)
		used += n
	}
	b.WriteString(render.TruncationMarker)
	return b.String()
}

// Message is a reply as Block Kit blocks plus the notification fallback.
type Message struct {
	Text   string
	Blocks []slack.Block
}

// Format lays out a reply. A measurement becomes a context block with the
// probe location followed by a section with its output, per probe.
func Format(reply orchestrator.Reply) Message {
	if reply.Kind == orchestrator.KindMeasurement {
		return formatMeasurement(reply.Output)
	}
	return FormatText(reply.Text)
}

// FormatText puts text in a single section.
func FormatText(text string) Message {
	escaped := escapeWithin(text, MaxSectionText)
	return Message{
		Text:   render.Truncate(text, MaxFallbackText),
		Blocks: []slack.Block{section(escaped)},
	}
}

func formatMeasurement(out render.Output) Message {
	var blocks []slack.Block
	var fallback []string

	if len(out.Sections) == 0 {
		blocks = append(blocks, section("No results."))
	}

	for _, s := range out.Sections {
		header := "*" + Escape(s.Header) + "*"
		if s.Failed {
			header = ":warning: " + header
		}
		blocks = append(blocks,
			slack.NewContextBlock("", slack.NewTextBlockObject(slack.MarkdownType, header, false, false)),
			section(escapeWithin(s.Body, MaxSectionText)),
		)
		fallback = append(fallback, s.Header)
	}

	var trailer []slack.Block
	if out.Hidden > 0 {
		trailer = append(trailer, slack.NewContextBlock("",
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("%d more %s not shown", out.Hidden, plural(out.Hidden)), false, false)))
	}
	if out.Footer != "" {
		trailer = append(trailer, section(fmt.Sprintf("<%s|View full results>", out.Footer)))
	}

	// Drop whole probes (context + section pairs) until the message fits.
	for len(blocks)+len(trailer) > MaxBlocks && len(blocks) >= 2 {
		blocks = blocks[:len(blocks)-2]
	}
	blocks = append(blocks, trailer...)

	text := "Measurement results"
	if len(fallback) > 0 {
		text += ": " + strings.Join(fallback, "; ")
	}
	return Message{Text: render.Truncate(text, MaxFallbackText), Blocks: blocks}
}

func section(mrkdwn string) *slack.SectionBlock {
	return slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, mrkdwn, false, false), nil, nil)
}

func plural(n int) string {
	if n == 1 {
		return "probe"
	}
	return "probes"
}
