package discord

import "github.com/bwmarrin/discordgo"

// Message is a reply ready to be sent as an interaction follow-up.
type Message struct {
	Content string
	Embeds  []Embed
}

// MessageBuilder helps in constructing Message objects.
type MessageBuilder struct {
	msg Message
}

// NewMessageBuilder creates a new message builder
func NewMessageBuilder() *MessageBuilder {
	return &MessageBuilder{}
}

// WithContent sets the plain text above the embeds
func (b *MessageBuilder) WithContent(content string) *MessageBuilder {
	b.msg.Content = content
	return b
}

// AddEmbed appends an embed
func (b *MessageBuilder) AddEmbed(embed Embed) *MessageBuilder {
	b.msg.Embeds = append(b.msg.Embeds, embed)
	return b
}

// Build returns the constructed message
func (b *MessageBuilder) Build() Message {
	return b.msg
}

// ToMessageEmbeds converts embeds to their discordgo form.
func ToMessageEmbeds(embeds []Embed) []*discordgo.MessageEmbed {
	out := make([]*discordgo.MessageEmbed, 0, len(embeds))
	for _, e := range embeds {
		me := &discordgo.MessageEmbed{
			Type:        discordgo.EmbedTypeRich,
			Title:       e.Title,
			Description: e.Description,
			URL:         e.URL,
			Color:       e.Color,
		}
		if e.Footer != nil {
			me.Footer = &discordgo.MessageEmbedFooter{Text: e.Footer.Text}
		}
		for _, f := range e.Fields {
			me.Fields = append(me.Fields, &discordgo.MessageEmbedField{
				Name:   f.Name,
				Value:  f.Value,
				Inline: f.Inline,
			})
		}
		out = append(out, me)
	}
	return out
}

// ToWebhookParams converts a message for FollowupMessageCreate. Mentions in
// echoed user input are never resolved.
func ToWebhookParams(msg Message) *discordgo.WebhookParams {
	return &discordgo.WebhookParams{
		Content:         msg.Content,
		Embeds:          ToMessageEmbeds(msg.Embeds),
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	}
}
