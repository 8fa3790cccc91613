package core

import (
	"encoding/json"
	"strings"
	"time"
	"unicode/utf16"
)

// UpdateKind classifies an update received from Telegram.
type UpdateKind string

const (
	KindMessage       UpdateKind = "message"
	KindEditedMessage UpdateKind = "edited_message"
	KindChannelPost   UpdateKind = "channel_post"
	KindCallbackQuery UpdateKind = "callback_query"
	KindOther         UpdateKind = "other"
)

// Update is one event payload from the transport. It lives for a single
// dispatch cycle and is never persisted.
type Update struct {
	ID      int64           `json:"update_id"`
	Kind    UpdateKind      `json:"kind"`
	Message *Message        `json:"message,omitempty"`
	Raw     json.RawMessage `json:"-"`
}

// Cursor returns the update identifier as a cursor value.
func (u Update) Cursor() Cursor { return Cursor(u.ID) }

// Message is the subset of a Telegram message the bot cares about.
type Message struct {
	ID            int64       `json:"message_id"`
	From          *User       `json:"from,omitempty"`
	Chat          Chat        `json:"chat"`
	Date          time.Time   `json:"date"`
	Text          string      `json:"text,omitempty"`
	Caption       string      `json:"caption,omitempty"`
	Entities      []Entity    `json:"entities,omitempty"`
	CaptionEnts   []Entity    `json:"caption_entities,omitempty"`
	Document      *File       `json:"document,omitempty"`
	Photo         []PhotoSize `json:"photo,omitempty"`
	Video         *File       `json:"video,omitempty"`
	PinnedMessage *Message    `json:"pinned_message,omitempty"`
	ReplyTo       *Message    `json:"reply_to_message,omitempty"`
}

// User identifies a message sender.
type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
}

// Chat identifies a conversation.
type Chat struct {
	ID   int64  `json:"id"`
	Type string `json:"type,omitempty"`
}

// Entity marks a span of message text. Offsets are in UTF-16 code units.
type Entity struct {
	Type     string `json:"type"`
	Offset   int    `json:"offset"`
	Length   int    `json:"length"`
	Language string `json:"language,omitempty"`
}

// File references an attachment stored on Telegram servers.
type File struct {
	FileID   string `json:"file_id"`
	FileName string `json:"file_name,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
	FileSize int64  `json:"file_size,omitempty"`
}

// PhotoSize is one resolution of an attached photo.
type PhotoSize struct {
	FileID   string `json:"file_id"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	FileSize int64  `json:"file_size,omitempty"`
}

// Text extracts the entity substring from the message text.
func (e Entity) Text(msg *Message) string {
	if msg == nil {
		return ""
	}
	return e.slice(msg.Text)
}

func (e Entity) slice(src string) string {
	units := utf16.Encode([]rune(src))
	start, end := e.Offset, e.Offset+e.Length
	if start < 0 || end > len(units) || start > end {
		return ""
	}
	return string(utf16.Decode(units[start:end]))
}

// Command returns the leading bot command (including the "/") and the
// remaining argument text. It handles "/command", "/command args", and
// "/command@botname args". Both are empty when the message is not a command.
func (m *Message) Command() (cmd, args string) {
	if m == nil {
		return "", ""
	}

	text, entities := m.Text, m.Entities
	if text == "" {
		text, entities = m.Caption, m.CaptionEnts
	}
	if len(entities) > 0 {
		first := entities[0]
		if first.Type != "bot_command" || first.Offset != 0 {
			return "", ""
		}
		cmd = first.slice(text)
		args = strings.TrimSpace(strings.TrimPrefix(text, cmd))
	} else {
		text = strings.TrimLeft(text, " \t")
		if !strings.HasPrefix(text, "/") {
			return "", ""
		}
		parts := strings.SplitN(text, " ", 2)
		cmd = parts[0]
		if len(parts) > 1 {
			args = strings.TrimSpace(parts[1])
		}
	}

	if at := strings.Index(cmd, "@"); at != -1 {
		cmd = cmd[:at]
	}
	if cmd == "/" {
		return "", ""
	}
	return cmd, args
}

// LargestPhoto returns the photo size with the biggest file, or nil.
func (m *Message) LargestPhoto() *PhotoSize {
	if m == nil || len(m.Photo) == 0 {
		return nil
	}
	best := &m.Photo[0]
	for i := range m.Photo[1:] {
		p := &m.Photo[i+1]
		if p.FileSize > best.FileSize {
			best = p
		}
	}
	return best
}
