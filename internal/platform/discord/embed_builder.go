package discord

// EmbedBuilder helps in constructing Embed objects.
type EmbedBuilder struct {
	embed     Embed
	validator *EmbedValidator
}

// NewEmbedBuilder creates a new embed builder
func NewEmbedBuilder() *EmbedBuilder {
	return &EmbedBuilder{
		embed:     Embed{Color: DefaultEmbedColor},
		validator: NewEmbedValidator(),
	}
}

// WithTitle sets the embed title
func (eb *EmbedBuilder) WithTitle(title string) *EmbedBuilder {
	eb.embed.Title = title
	return eb
}

// WithDescription sets the embed description
func (eb *EmbedBuilder) WithDescription(description string) *EmbedBuilder {
	eb.embed.Description = description
	return eb
}

// WithURL makes the title a link
func (eb *EmbedBuilder) WithURL(url string) *EmbedBuilder {
	eb.embed.URL = url
	return eb
}

// WithColor sets the embed color
func (eb *EmbedBuilder) WithColor(color int) *EmbedBuilder {
	eb.embed.Color = color
	return eb
}

// WithFooter sets the embed footer
func (eb *EmbedBuilder) WithFooter(text string) *EmbedBuilder {
	eb.embed.Footer = &EmbedFooter{Text: text}
	return eb
}

// AddField adds a field to the embed
func (eb *EmbedBuilder) AddField(name, value string, inline bool) *EmbedBuilder {
	eb.embed.Fields = append(eb.embed.Fields, NewEmbedField(name, value, inline))
	return eb
}

// Validate validates the current embed
func (eb *EmbedBuilder) Validate() error {
	return eb.validator.ValidateEmbed(eb.embed)
}

// Build returns the embed, or the first limit it breaks.
func (eb *EmbedBuilder) Build() (Embed, error) {
	if err := eb.Validate(); err != nil {
		return Embed{}, err
	}
	return eb.embed, nil
}
