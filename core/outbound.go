package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Parse modes accepted by Telegram.
const (
	ParseModeNone       = ""
	ParseModeHTML       = "HTML"
	ParseModeMarkdownV2 = "MarkdownV2"
)

// OutboundMessage is a text message to be delivered to a chat.
type OutboundMessage struct {
	ID               string    `json:"id"`
	ChatID           int64     `json:"chat_id"`
	Text             string    `json:"text"`
	ParseMode        string    `json:"parse_mode,omitempty"`
	ReplyToMessageID int64     `json:"reply_to_message_id,omitempty"`
	Source           string    `json:"source"`
	CreatedAt        time.Time `json:"created_at"`
}

// OutboundDocument is a file to be delivered to a chat.
type OutboundDocument struct {
	ID               string    `json:"id"`
	ChatID           int64     `json:"chat_id"`
	FileName         string    `json:"file_name"`
	Data             []byte    `json:"-"`
	Caption          string    `json:"caption,omitempty"`
	ParseMode        string    `json:"parse_mode,omitempty"`
	ReplyToMessageID int64     `json:"reply_to_message_id,omitempty"`
	Source           string    `json:"source"`
	CreatedAt        time.Time `json:"created_at"`
}

// Result describes a message accepted by the transport.
type Result struct {
	MessageID int64
	ChatID    int64
}

// NewMessage builds an outbound message with a fresh ID.
func NewMessage(chatID int64, text, source string) OutboundMessage {
	return OutboundMessage{
		ID:        uuid.New().String(),
		ChatID:    chatID,
		Text:      text,
		Source:    source,
		CreatedAt: time.Now(),
	}
}

const tooLongCaption = "Message too long, sent as file"

// Deliver sends m as text. If the transport rejects it as too long, the text
// is sent instead as a document named fileName, replying to the same message.
func Deliver(ctx context.Context, s Sender, m OutboundMessage, fileName string) (Result, error) {
	res, err := s.SendMessage(ctx, m)
	if err == nil || !errors.Is(err, ErrMessageTooLong) {
		return res, err
	}

	doc := OutboundDocument{
		ID:               m.ID,
		ChatID:           m.ChatID,
		FileName:         fileName,
		Data:             []byte(m.Text),
		Caption:          tooLongCaption,
		ReplyToMessageID: m.ReplyToMessageID,
		Source:           m.Source,
		CreatedAt:        time.Now(),
	}
	res, err = s.SendDocument(ctx, doc)
	if err != nil {
		return Result{}, fmt.Errorf("send as file: %w", err)
	}
	return res, nil
}
