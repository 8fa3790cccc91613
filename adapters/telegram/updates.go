package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jdelaire/sentinelbot/core"
)

type wireUpdate struct {
	UpdateID      int64        `json:"update_id"`
	Message       *wireMessage `json:"message"`
	EditedMessage *wireMessage `json:"edited_message"`
	ChannelPost   *wireMessage `json:"channel_post"`
	CallbackQuery *struct{}    `json:"callback_query"`
}

type wireMessage struct {
	MessageID       int64            `json:"message_id"`
	From            *core.User       `json:"from"`
	Chat            core.Chat        `json:"chat"`
	Date            int64            `json:"date"`
	Text            string           `json:"text"`
	Caption         string           `json:"caption"`
	Entities        []core.Entity    `json:"entities"`
	CaptionEntities []core.Entity    `json:"caption_entities"`
	Document        *core.File       `json:"document"`
	Photo           []core.PhotoSize `json:"photo"`
	Video           *core.File       `json:"video"`
	PinnedMessage   *wireMessage     `json:"pinned_message"`
	ReplyTo         *wireMessage     `json:"reply_to_message"`
}

// Fetch long-polls getUpdates for updates strictly after the cursor. A
// timeout with no updates yields an empty batch.
func (c *Client) Fetch(ctx context.Context, after core.Cursor, timeout time.Duration) ([]core.Update, error) {
	secs := int(timeout.Seconds())
	if secs < 0 {
		secs = 0
	}
	url := fmt.Sprintf("%s?offset=%d&timeout=%d", c.endpoint("getUpdates"), after.Offset(), secs)

	reqCtx, cancel := context.WithTimeout(ctx, timeout+httpSlack)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &core.TransportError{Op: "getUpdates", Err: fmt.Errorf("create request: %w", stripURL(err))}
	}

	var raw []json.RawMessage
	if err := c.do(req, "getUpdates", &raw); err != nil {
		// The server holding the poll past our own deadline is a timeout, not a failure.
		if ctx.Err() == nil && errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return nil, nil
		}
		return nil, err
	}

	updates := make([]core.Update, 0, len(raw))
	for _, r := range raw {
		var w wireUpdate
		if err := json.Unmarshal(r, &w); err != nil {
			return nil, &core.TransportError{Op: "getUpdates", Err: fmt.Errorf("decode update: %w", err)}
		}
		updates = append(updates, toUpdate(w, r))
	}
	return updates, nil
}

func toUpdate(w wireUpdate, raw json.RawMessage) core.Update {
	u := core.Update{ID: w.UpdateID, Raw: raw}
	switch {
	case w.Message != nil:
		u.Kind = core.KindMessage
		u.Message = w.Message.toCore()
	case w.EditedMessage != nil:
		u.Kind = core.KindEditedMessage
		u.Message = w.EditedMessage.toCore()
	case w.ChannelPost != nil:
		u.Kind = core.KindChannelPost
		u.Message = w.ChannelPost.toCore()
	case w.CallbackQuery != nil:
		u.Kind = core.KindCallbackQuery
	default:
		u.Kind = core.KindOther
	}
	return u
}

func (m *wireMessage) toCore() *core.Message {
	if m == nil {
		return nil
	}
	return &core.Message{
		ID:            m.MessageID,
		From:          m.From,
		Chat:          m.Chat,
		Date:          time.Unix(m.Date, 0),
		Text:          m.Text,
		Caption:       m.Caption,
		Entities:      m.Entities,
		CaptionEnts:   m.CaptionEntities,
		Document:      m.Document,
		Photo:         m.Photo,
		Video:         m.Video,
		PinnedMessage: m.PinnedMessage.toCore(),
		ReplyTo:       m.ReplyTo.toCore(),
	}
}
