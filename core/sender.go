package core

import "context"

// Chat actions understood by Telegram.
const (
	ActionTyping         = "typing"
	ActionUploadDocument = "upload_document"
)

// Sender delivers outbound messages and files to a chat.
type Sender interface {
	SendMessage(ctx context.Context, m OutboundMessage) (Result, error)
	SendDocument(ctx context.Context, d OutboundDocument) (Result, error)
	SendChatAction(ctx context.Context, chatID int64, action string) error
}

// FileSource downloads attachments referenced by updates.
type FileSource interface {
	DownloadFile(ctx context.Context, fileID string) ([]byte, error)
}
