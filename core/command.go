package core

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jdelaire/sentinelbot/core/ops"
)

// Guard decides whether a sender may run a command in a chat.
type Guard interface {
	Allow(chatID, userID int64) bool
}

// CommandHandler runs an op for messages whose leading command token equals
// a configured string, and delivers the op's reply as a quote of the
// command message.
type CommandHandler struct {
	command string
	op      ops.Op
	sender  Sender
	guard   Guard
	logger  *slog.Logger
}

// NewCommandHandler creates a command handler. guard may be nil.
func NewCommandHandler(command string, op ops.Op, sender Sender, guard Guard, logger *slog.Logger) *CommandHandler {
	if !strings.HasPrefix(command, "/") {
		command = "/" + command
	}
	return &CommandHandler{
		command: command,
		op:      op,
		sender:  sender,
		guard:   guard,
		logger:  logger,
	}
}

func (h *CommandHandler) Name() string { return h.command }

func (h *CommandHandler) CanHandle(u Update) bool {
	return MatchCommand(h.command)(u)
}

func (h *CommandHandler) Process(ctx context.Context, u Update) error {
	msg := u.Message
	var userID int64
	if msg.From != nil {
		userID = msg.From.ID
	}

	// Unauthorized senders get no reply so the command stays invisible.
	if h.guard != nil && !h.guard.Allow(msg.Chat.ID, userID) {
		h.logger.Debug("command rejected by guard", "command", h.command, "chat_id", msg.Chat.ID, "user_id", userID)
		return nil
	}

	_, args := msg.Command()
	reply, err := h.op.Execute(ctx, callFromMessage(msg, args))
	if err != nil {
		return fmt.Errorf("%s: %w", h.op.Name(), err)
	}
	if reply.Empty() {
		return nil
	}
	return h.deliver(ctx, msg, reply)
}

func (h *CommandHandler) deliver(ctx context.Context, msg *Message, reply ops.Reply) error {
	parseMode := ParseModeNone
	if reply.HTML {
		parseMode = ParseModeHTML
	}

	if doc := reply.Document; doc != nil {
		if err := h.sender.SendChatAction(ctx, msg.Chat.ID, ActionUploadDocument); err != nil {
			h.logger.Warn("send chat action failed", "chat_id", msg.Chat.ID, "error", err)
		}
		out := OutboundDocument{
			ID:               uuid.New().String(),
			ChatID:           msg.Chat.ID,
			FileName:         doc.Name,
			Data:             doc.Data,
			Caption:          doc.Caption,
			ParseMode:        parseMode,
			ReplyToMessageID: msg.ID,
			Source:           h.command,
			CreatedAt:        time.Now(),
		}
		_, err := h.sender.SendDocument(ctx, out)
		return err
	}

	out := NewMessage(msg.Chat.ID, reply.Text, h.command)
	out.ParseMode = parseMode
	out.ReplyToMessageID = msg.ID
	_, err := Deliver(ctx, h.sender, out, "resp.html")
	return err
}

func callFromMessage(msg *Message, args string) ops.Call {
	call := ops.Call{
		ChatID:    msg.Chat.ID,
		MessageID: msg.ID,
		Args:      args,
	}
	if msg.From != nil {
		call.UserID = msg.From.ID
	}
	for _, e := range msg.Entities {
		if e.Type == "pre" {
			call.CodeBlocks = append(call.CodeBlocks, ops.CodeBlock{Language: e.Language, Code: e.Text(msg)})
		}
	}

	switch {
	case msg.Document != nil:
		call.Attachment = &ops.Attachment{Kind: ops.AttachmentDocument, FileID: msg.Document.FileID}
	case len(msg.Photo) > 0:
		call.Attachment = &ops.Attachment{Kind: ops.AttachmentPhoto, FileID: msg.LargestPhoto().FileID}
	case msg.Video != nil:
		call.Attachment = &ops.Attachment{Kind: ops.AttachmentVideo, FileID: msg.Video.FileID}
	}
	return call
}

// NewGreeting returns the trivial /start handler.
func NewGreeting(sender Sender) Handler {
	return &HandlerFunc{
		HandlerName: "/start",
		Match:       MatchCommand("/start"),
		Fn: func(ctx context.Context, u Update) error {
			_, err := sender.SendMessage(ctx, NewMessage(u.Message.Chat.ID, "Hello, world!", "/start"))
			return err
		},
	}
}
