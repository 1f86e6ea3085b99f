package discord

// Embed is one Discord embed of a reply.
type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	URL         string       `json:"url,omitempty"`
	Color       int          `json:"color,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
}

// EmbedFooter represents the footer of an embed.
type EmbedFooter struct {
	Text string `json:"text"`
}

// EmbedField represents a field in an embed.
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// NewEmbedField creates a new embed field
func NewEmbedField(name, value string, inline bool) EmbedField {
	return EmbedField{
		Name:   name,
		Value:  value,
		Inline: inline,
	}
}

const (
	DefaultEmbedColor = 0x2B2D31 // Discord dark theme color
	ErrorEmbedColor   = 0xD9534F
	InfoEmbedColor    = 0x5BC0DE
	FailedProbeColor  = 0xF0AD4E
)
