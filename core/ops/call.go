package ops

import "context"

// Call is the view of an inbound command message an op works with.
type Call struct {
	ChatID     int64
	UserID     int64
	MessageID  int64
	Args       string
	CodeBlocks []CodeBlock
	Attachment *Attachment
}

// CodeBlock is a preformatted block of message text.
type CodeBlock struct {
	Language string
	Code     string
}

// Attachment kinds.
const (
	AttachmentDocument = "document"
	AttachmentPhoto    = "photo"
	AttachmentVideo    = "video"
)

// Attachment references a file sent along with the command.
type Attachment struct {
	Kind   string
	FileID string
}

// Reply is what an op wants delivered back to the chat. A zero Reply sends
// nothing.
type Reply struct {
	Text     string
	HTML     bool
	Document *Document
}

// Document is a file reply.
type Document struct {
	Name    string
	Data    []byte
	Caption string
}

// Empty reports whether the reply carries nothing to send.
func (r Reply) Empty() bool {
	return r.Text == "" && r.Document == nil
}

// Text builds a plain-text reply.
func Text(s string) Reply { return Reply{Text: s} }

// Downloader fetches attachment contents by file ID.
type Downloader interface {
	DownloadFile(ctx context.Context, fileID string) ([]byte, error)
}
