package telegram

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"unicode/utf16"

	"github.com/jdelaire/sentinelbot/core"
)

type sendMessageRequest struct {
	ChatID           int64  `json:"chat_id"`
	Text             string `json:"text"`
	ParseMode        string `json:"parse_mode,omitempty"`
	ReplyToMessageID int64  `json:"reply_to_message_id,omitempty"`
}

type chatActionRequest struct {
	ChatID int64  `json:"chat_id"`
	Action string `json:"action"`
}

type sentMessage struct {
	MessageID int64     `json:"message_id"`
	Chat      core.Chat `json:"chat"`
}

type fileInfo struct {
	FileID   string `json:"file_id"`
	FilePath string `json:"file_path"`
}

// SendMessage delivers a text message. Plain text over MaxMessageLen fails
// with core.ErrMessageTooLong without calling the API. Formatted text is
// measured by Telegram after entity parsing, so its length is left to the
// server's "message is too long" reply.
func (c *Client) SendMessage(ctx context.Context, m core.OutboundMessage) (core.Result, error) {
	if m.ParseMode == core.ParseModeNone && len(utf16.Encode([]rune(m.Text))) > MaxMessageLen {
		return core.Result{}, &core.TransportError{Op: "sendMessage", Description: "message is too long", Err: core.ErrMessageTooLong}
	}

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	var out sentMessage
	err := c.postJSON(ctx, "sendMessage", sendMessageRequest{
		ChatID:           m.ChatID,
		Text:             m.Text,
		ParseMode:        m.ParseMode,
		ReplyToMessageID: m.ReplyToMessageID,
	}, &out)
	if err != nil {
		return core.Result{}, err
	}
	return core.Result{MessageID: out.MessageID, ChatID: out.Chat.ID}, nil
}

// SendDocument uploads d as a multipart document.
func (c *Client) SendDocument(ctx context.Context, d core.OutboundDocument) (core.Result, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fields := map[string]string{"chat_id": strconv.FormatInt(d.ChatID, 10)}
	if d.Caption != "" {
		fields["caption"] = d.Caption
	}
	if d.ParseMode != "" {
		fields["parse_mode"] = d.ParseMode
	}
	if d.ReplyToMessageID != 0 {
		fields["reply_to_message_id"] = strconv.FormatInt(d.ReplyToMessageID, 10)
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return core.Result{}, &core.TransportError{Op: "sendDocument", Err: err}
		}
	}

	name := d.FileName
	if name == "" {
		name = "file"
	}
	part, err := mw.CreateFormFile("document", name)
	if err != nil {
		return core.Result{}, &core.TransportError{Op: "sendDocument", Err: err}
	}
	if _, err := part.Write(d.Data); err != nil {
		return core.Result{}, &core.TransportError{Op: "sendDocument", Err: err}
	}
	if err := mw.Close(); err != nil {
		return core.Result{}, &core.TransportError{Op: "sendDocument", Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("sendDocument"), &body)
	if err != nil {
		return core.Result{}, &core.TransportError{Op: "sendDocument", Err: fmt.Errorf("create request: %w", stripURL(err))}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out sentMessage
	if err := c.do(req, "sendDocument", &out); err != nil {
		return core.Result{}, err
	}
	return core.Result{MessageID: out.MessageID, ChatID: out.Chat.ID}, nil
}

// SendChatAction shows a status such as "upload_document" in the chat.
func (c *Client) SendChatAction(ctx context.Context, chatID int64, action string) error {
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	return c.postJSON(ctx, "sendChatAction", chatActionRequest{ChatID: chatID, Action: action}, nil)
}

// DownloadFile resolves fileID with getFile and downloads its contents.
func (c *Client) DownloadFile(ctx context.Context, fileID string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	var info fileInfo
	if err := c.postJSON(ctx, "getFile", map[string]string{"file_id": fileID}, &info); err != nil {
		return nil, err
	}
	if info.FilePath == "" {
		return nil, &core.TransportError{Op: "getFile", Description: "empty file_path"}
	}

	fileURL := fmt.Sprintf("%s/file/bot%s/%s", c.baseURL, c.botToken, (&url.URL{Path: info.FilePath}).EscapedPath())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, &core.TransportError{Op: "downloadFile", Err: fmt.Errorf("create request: %w", stripURL(err))}
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &core.TransportError{Op: "downloadFile", Err: stripURL(err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &core.TransportError{Op: "downloadFile", StatusCode: resp.StatusCode}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &core.TransportError{Op: "downloadFile", Err: fmt.Errorf("read body: %w", err)}
	}
	return data, nil
}
