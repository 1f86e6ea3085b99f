package lark

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aleister1102/globalping-bots/internal/common"
	"github.com/aleister1102/globalping-bots/internal/orchestrator"
	"github.com/aleister1102/globalping-bots/internal/render"
	"github.com/google/uuid"
	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	"github.com/rs/zerolog"
)

// MaxTextLength bounds a text message body.
const MaxTextLength = 30000

// replyNamespace derives reply idempotency keys from message ids, so a
// redelivered event cannot produce a second reply.
var replyNamespace = uuid.MustParse("6f1c7b53-3f2a-4d5e-9a0b-2c8d4e6f7a91")

// FormatReply lays out a reply as plain text.
func FormatReply(reply orchestrator.Reply) string {
	text := reply.Text
	if reply.Kind == orchestrator.KindMeasurement {
		text = render.Text(reply.Output, "")
		if text == "" {
			text = "No results."
		}
		if reply.Output.Hidden > 0 {
			text += fmt.Sprintf("\n\n(%d more not shown)", reply.Output.Hidden)
		}
	}
	return render.Truncate(text, MaxTextLength)
}

// ReplyKey returns the idempotency key for the reply to messageID.
func ReplyKey(messageID string) string {
	return uuid.NewSHA1(replyNamespace, []byte(messageID)).String()
}

// Messenger sends replies through the Lark open API.
type Messenger struct {
	client *lark.Client
	logger zerolog.Logger
}

// NewMessenger creates a messenger for a self-built app. baseURL may be
// empty for the default Lark endpoint.
func NewMessenger(appID, appSecret, baseURL string, logger zerolog.Logger) *Messenger {
	var opts []lark.ClientOptionFunc
	if baseURL != "" {
		opts = append(opts, lark.WithOpenBaseUrl(baseURL))
	}
	return &Messenger{
		client: lark.NewClient(appID, appSecret, opts...),
		logger: logger.With().Str("component", "LarkMessenger").Logger(),
	}
}

// ReplyText replies to messageID with a text message.
func (m *Messenger) ReplyText(ctx context.Context, messageID, text string) error {
	content, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return common.WrapError(err, "failed to marshal message content")
	}

	req := larkim.NewReplyMessageReqBuilder().
		MessageId(messageID).
		Body(larkim.NewReplyMessageReqBodyBuilder().
			Content(string(content)).
			MsgType("text").
			Uuid(ReplyKey(messageID)).
			Build()).
		Build()

	resp, err := m.client.Im.Message.Reply(ctx, req)
	if err != nil {
		return common.WrapError(err, "failed to reply message")
	}
	if !resp.Success() {
		return common.NewError("failed to reply message: code=%d, msg=%s", resp.Code, resp.Msg)
	}

	m.logger.Debug().Str("message_id", messageID).Msg("Replied to message")
	return nil
}
