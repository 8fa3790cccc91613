package core

import (
	"context"
	"log/slog"
)

const fallbackText = "unknown type of message"

// Dispatcher routes each update to the first registered handler that claims
// it. Handler errors are returned, never swallowed.
type Dispatcher struct {
	registry *Registry
	sender   Sender
	logger   *slog.Logger
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(registry *Registry, sender Sender, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		sender:   sender,
		logger:   logger,
	}
}

// Dispatch processes one update: skip structural events, run the first
// matching handler, or reply with a fallback when nothing matches.
func (d *Dispatcher) Dispatch(ctx context.Context, u Update) error {
	if skip, reason := skipUpdate(u); skip {
		d.logger.Warn("update not routed", "update_id", u.ID, "kind", u.Kind, "reason", reason)
		return nil
	}

	if h := d.registry.Match(u); h != nil {
		d.logger.Debug("dispatching update", "update_id", u.ID, "handler", h.Name())
		if err := h.Process(ctx, u); err != nil {
			return &HandlerError{Handler: h.Name(), UpdateID: u.ID, Err: err}
		}
		return nil
	}

	d.logger.Info("no handler matched", "update_id", u.ID, "chat_id", u.Message.Chat.ID)
	reply := NewMessage(u.Message.Chat.ID, fallbackText, "dispatcher")
	reply.ReplyToMessageID = u.Message.ID
	_, err := d.sender.SendMessage(ctx, reply)
	return err
}

// skipUpdate reports whether u is a structural event that must never reach
// a command handler.
func skipUpdate(u Update) (bool, string) {
	if u.Kind != KindMessage || u.Message == nil {
		return true, "unsupported kind"
	}
	if u.Message.PinnedMessage != nil {
		return true, "pinned message changed"
	}
	return false, ""
}
