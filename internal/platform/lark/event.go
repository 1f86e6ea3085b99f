package lark

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/aleister1102/globalping-bots/internal/common"
)

const (
	TypeURLVerification   = "url_verification"
	EventMessageReceiveV1 = "im.message.receive_v1"

	ChatTypeP2P   = "p2p"
	ChatTypeGroup = "group"
)

// ErrEncrypted is returned for payloads sent with an encrypt key configured.
var ErrEncrypted = common.NewError("encrypted event payloads are not supported, disable the encrypt key")

// Callback is an event subscription request body. It covers both the URL
// check and schema 2.0 events.
type Callback struct {
	Challenge string          `json:"challenge"`
	Token     string          `json:"token"`
	Type      string          `json:"type"`
	Encrypt   string          `json:"encrypt"`
	Schema    string          `json:"schema"`
	Header    *EventHeader    `json:"header"`
	Event     json.RawMessage `json:"event"`
}

// EventHeader identifies a schema 2.0 event.
type EventHeader struct {
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
	Token     string `json:"token"`
	AppID     string `json:"app_id"`
	TenantKey string `json:"tenant_key"`
}

// MessageEvent is the body of im.message.receive_v1.
type MessageEvent struct {
	Sender struct {
		SenderID struct {
			OpenID string `json:"open_id"`
			UserID string `json:"user_id"`
		} `json:"sender_id"`
		SenderType string `json:"sender_type"`
	} `json:"sender"`
	Message struct {
		MessageID   string    `json:"message_id"`
		ChatID      string    `json:"chat_id"`
		ChatType    string    `json:"chat_type"`
		MessageType string    `json:"message_type"`
		Content     string    `json:"content"`
		Mentions    []Mention `json:"mentions"`
	} `json:"message"`
}

// Mention is an @ in a message; its Key appears in the text as @_user_N.
type Mention struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// ParseCallback decodes a request body.
func ParseCallback(body []byte) (*Callback, error) {
	var cb Callback
	if err := json.Unmarshal(body, &cb); err != nil {
		return nil, common.WrapError(err, "invalid event payload")
	}
	if cb.Encrypt != "" {
		return nil, ErrEncrypted
	}
	return &cb, nil
}

// VerificationToken returns the token of either payload schema.
func (cb *Callback) VerificationToken() string {
	if cb.Header != nil {
		return cb.Header.Token
	}
	return cb.Token
}

// EventType returns the schema 2.0 event type, or "".
func (cb *Callback) EventType() string {
	if cb.Header != nil {
		return cb.Header.EventType
	}
	return ""
}

// MessageEvent decodes the event body of im.message.receive_v1.
func (cb *Callback) MessageEvent() (*MessageEvent, error) {
	var ev MessageEvent
	if err := json.Unmarshal(cb.Event, &ev); err != nil {
		return nil, common.WrapError(err, "invalid message event")
	}
	return &ev, nil
}

var mentionPattern = regexp.MustCompile(`@_user_\d+`)

// CommandText extracts the command typed in a text message, without mention
// placeholders. ok is false for other message types and for group messages
// that do not mention anyone, which are not addressed to the bot.
func (ev *MessageEvent) CommandText() (text string, ok bool) {
	if ev.Message.MessageType != "text" {
		return "", false
	}
	if ev.Message.ChatType == ChatTypeGroup && len(ev.Message.Mentions) == 0 {
		return "", false
	}

	var content struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal([]byte(ev.Message.Content), &content); err != nil {
		return "", false
	}

	text = mentionPattern.ReplaceAllString(content.Text, "")
	return strings.Join(strings.Fields(text), " "), true
}
