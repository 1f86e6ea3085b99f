package discord

import (
	"fmt"

	"github.com/aleister1102/globalping-bots/internal/orchestrator"
	"github.com/aleister1102/globalping-bots/internal/render"
)

// Formatter lays out orchestrator replies as Discord embeds: one embed per
// probe, with the results link as message content.
type Formatter struct {
	validator *EmbedValidator
}

// NewFormatter creates a new Formatter
func NewFormatter() *Formatter {
	return &Formatter{validator: NewEmbedValidator()}
}

// Format converts a reply into a message within Discord's limits.
func (f *Formatter) Format(reply orchestrator.Reply) Message {
	if reply.Kind == orchestrator.KindMeasurement {
		return f.formatMeasurement(reply.Output)
	}
	return f.FormatText(reply.Text, reply.IsError)
}

// FormatText wraps plain text in a single embed.
func (f *Formatter) FormatText(text string, isError bool) Message {
	color := InfoEmbedColor
	if isError {
		color = ErrorEmbedColor
	}
	embed := Embed{
		Description: render.Truncate(text, MaxDescriptionLength),
		Color:       color,
	}
	return NewMessageBuilder().AddEmbed(embed).Build()
}

func (f *Formatter) formatMeasurement(out render.Output) Message {
	mb := NewMessageBuilder()

	if len(out.Sections) == 0 {
		mb.AddEmbed(Embed{Description: "No results.", Color: DefaultEmbedColor})
	}

	for _, s := range out.Sections {
		color := DefaultEmbedColor
		if s.Failed {
			color = FailedProbeColor
		}
		mb.AddEmbed(Embed{
			Title:       render.Truncate(s.Header, MaxTitleLength),
			Description: render.Truncate(s.Body, MaxDescriptionLength),
			Color:       color,
		})
	}

	msg := mb.Build()
	if out.Hidden > 0 {
		last := &msg.Embeds[len(msg.Embeds)-1]
		last.Footer = &EmbedFooter{Text: fmt.Sprintf("%d more %s not shown", out.Hidden, plural(out.Hidden, "probe", "probes"))}
	}

	dropped := 0
	for len(msg.Embeds) > 1 && (len(msg.Embeds) > MaxEmbedsPerMessage || TotalLength(msg.Embeds) > MaxEmbedTotalLength) {
		msg.Embeds = msg.Embeds[:len(msg.Embeds)-1]
		dropped++
	}

	msg.Content = out.Footer
	if dropped > 0 {
		note := fmt.Sprintf("%d %s omitted to fit the message size limit.", dropped, plural(dropped, "result", "results"))
		if msg.Content == "" {
			msg.Content = note
		} else {
			msg.Content = note + "\n" + msg.Content
		}
	}
	return msg
}

// Validate checks a formatted message against Discord's limits.
func (f *Formatter) Validate(msg Message) error {
	return f.validator.ValidateMessage(msg)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
