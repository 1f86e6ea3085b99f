package discord

import (
	"fmt"
	"unicode/utf8"
)

// Discord message limits, counted in characters.
const (
	MaxTitleLength       = 256
	MaxDescriptionLength = 4096
	MaxFields            = 25
	MaxFieldNameLength   = 256
	MaxFieldValueLength  = 1024
	MaxFooterLength      = 2048
	MaxEmbedsPerMessage  = 10
	MaxEmbedTotalLength  = 6000
	MaxContentLength     = 2000
)

// ValidationError reports which part of an embed breaks a Discord limit.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid embed %s: %s", e.Field, e.Reason)
}

// NewValidationError creates a new validation error
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// EmbedValidator validates embeds against Discord's limits
type EmbedValidator struct{}

// NewEmbedValidator creates a new embed validator
func NewEmbedValidator() *EmbedValidator {
	return &EmbedValidator{}
}

// ValidateEmbed validates a single embed
func (ev *EmbedValidator) ValidateEmbed(embed Embed) error {
	if utf8.RuneCountInString(embed.Title) > MaxTitleLength {
		return NewValidationError("title", fmt.Sprintf("cannot exceed %d characters", MaxTitleLength))
	}

	if utf8.RuneCountInString(embed.Description) > MaxDescriptionLength {
		return NewValidationError("description", fmt.Sprintf("cannot exceed %d characters", MaxDescriptionLength))
	}

	if len(embed.Fields) > MaxFields {
		return NewValidationError("fields", fmt.Sprintf("cannot have more than %d fields", MaxFields))
	}

	for i, field := range embed.Fields {
		if field.Name == "" {
			return NewValidationError("field_name", fmt.Sprintf("field %d name cannot be empty", i))
		}
		if field.Value == "" {
			return NewValidationError("field_value", fmt.Sprintf("field %d value cannot be empty", i))
		}
		if utf8.RuneCountInString(field.Name) > MaxFieldNameLength {
			return NewValidationError("field_name", fmt.Sprintf("field %d name cannot exceed %d characters", i, MaxFieldNameLength))
		}
		if utf8.RuneCountInString(field.Value) > MaxFieldValueLength {
			return NewValidationError("field_value", fmt.Sprintf("field %d value cannot exceed %d characters", i, MaxFieldValueLength))
		}
	}

	if embed.Footer != nil && utf8.RuneCountInString(embed.Footer.Text) > MaxFooterLength {
		return NewValidationError("footer_text", fmt.Sprintf("cannot exceed %d characters", MaxFooterLength))
	}

	return nil
}

// ValidateMessage checks the per-message limits on top of each embed's.
func (ev *EmbedValidator) ValidateMessage(msg Message) error {
	if utf8.RuneCountInString(msg.Content) > MaxContentLength {
		return NewValidationError("content", fmt.Sprintf("cannot exceed %d characters", MaxContentLength))
	}
	if len(msg.Embeds) > MaxEmbedsPerMessage {
		return NewValidationError("embeds", fmt.Sprintf("cannot have more than %d embeds", MaxEmbedsPerMessage))
	}
	for _, e := range msg.Embeds {
		if err := ev.ValidateEmbed(e); err != nil {
			return err
		}
	}
	if total := TotalLength(msg.Embeds); total > MaxEmbedTotalLength {
		return NewValidationError("embeds", fmt.Sprintf("total length %d exceeds %d characters", total, MaxEmbedTotalLength))
	}
	return nil
}

// TotalLength counts the characters Discord sums across a message's embeds.
func TotalLength(embeds []Embed) int {
	total := 0
	for _, e := range embeds {
		total += embedLength(e)
	}
	return total
}

func embedLength(e Embed) int {
	n := utf8.RuneCountInString(e.Title) + utf8.RuneCountInString(e.Description)
	for _, f := range e.Fields {
		n += utf8.RuneCountInString(f.Name) + utf8.RuneCountInString(f.Value)
	}
	if e.Footer != nil {
		n += utf8.RuneCountInString(e.Footer.Text)
	}
	return n
}
