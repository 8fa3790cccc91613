package core

import (
	"context"
	"errors"
	"testing"
)

func newTestDispatcher(spy *spySender, handlers ...Handler) *Dispatcher {
	reg := NewRegistry()
	for _, h := range handlers {
		if err := reg.Register(h); err != nil {
			panic(err)
		}
	}
	return NewDispatcher(reg, spy, testLogger())
}

func TestDispatchFirstMatchWins(t *testing.T) {
	spy := &spySender{}
	first := &spyHandler{name: "first", cmd: "/start"}
	second := &spyHandler{name: "second", claimAll: true}
	d := newTestDispatcher(spy, first, second)

	if err := d.Dispatch(context.Background(), msgUpdate(1, "/start")); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(first.processed) != 1 {
		t.Errorf("first processed %d, want 1", len(first.processed))
	}
	if len(second.processed) != 0 {
		t.Errorf("second processed %d, want 0", len(second.processed))
	}
	if spy.count() != 0 {
		t.Errorf("sent %d fallback replies, want 0", spy.count())
	}
}

func TestDispatchRegistrationOrderBreaksTies(t *testing.T) {
	spy := &spySender{}
	generic := &spyHandler{name: "generic", claimAll: true}
	specific := &spyHandler{name: "specific", cmd: "/start"}
	d := newTestDispatcher(spy, generic, specific)

	d.Dispatch(context.Background(), msgUpdate(1, "/start"))

	if len(generic.processed) != 1 || len(specific.processed) != 0 {
		t.Errorf("generic=%d specific=%d, want 1/0", len(generic.processed), len(specific.processed))
	}
}

func TestDispatchFallbackReply(t *testing.T) {
	spy := &spySender{}
	d := newTestDispatcher(spy, &spyHandler{name: "start", cmd: "/start"})

	u := msgUpdate(3, "hello there")
	if err := d.Dispatch(context.Background(), u); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if spy.count() != 1 {
		t.Fatalf("sent %d, want 1", spy.count())
	}
	m := spy.messages[0]
	if m.Text != "unknown type of message" {
		t.Errorf("text = %q", m.Text)
	}
	if m.ChatID != u.Message.Chat.ID || m.ReplyToMessageID != u.Message.ID {
		t.Errorf("reply addressed to %d/%d, want %d/%d", m.ChatID, m.ReplyToMessageID, u.Message.Chat.ID, u.Message.ID)
	}
}

func TestDispatchSkipsPinnedMessage(t *testing.T) {
	spy := &spySender{}
	h := &spyHandler{name: "all", claimAll: true}
	d := newTestDispatcher(spy, h)

	u := msgUpdate(4, "")
	u.Message.PinnedMessage = &Message{ID: 1}
	if err := d.Dispatch(context.Background(), u); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(h.processed) != 0 || spy.count() != 0 {
		t.Errorf("pinned update routed: processed=%d replies=%d", len(h.processed), spy.count())
	}
}

func TestDispatchSkipsNonMessageKinds(t *testing.T) {
	spy := &spySender{}
	h := &spyHandler{name: "all", claimAll: true}
	d := newTestDispatcher(spy, h)

	for _, kind := range []UpdateKind{KindEditedMessage, KindChannelPost, KindCallbackQuery, KindOther} {
		u := msgUpdate(5, "/start")
		u.Kind = kind
		if err := d.Dispatch(context.Background(), u); err != nil {
			t.Fatalf("dispatch %s: %v", kind, err)
		}
	}
	if len(h.processed) != 0 || spy.count() != 0 {
		t.Errorf("non-message routed: processed=%d replies=%d", len(h.processed), spy.count())
	}
}

func TestDispatchHandlerErrorPropagates(t *testing.T) {
	spy := &spySender{}
	boom := errors.New("boom")
	d := newTestDispatcher(spy, &spyHandler{name: "start", cmd: "/start", err: boom})

	err := d.Dispatch(context.Background(), msgUpdate(6, "/start"))
	var herr *HandlerError
	if !errors.As(err, &herr) {
		t.Fatalf("error = %v, want *HandlerError", err)
	}
	if herr.Handler != "start" || herr.UpdateID != 6 || !errors.Is(err, boom) {
		t.Errorf("handler error = %+v", herr)
	}
	if spy.count() != 0 {
		t.Errorf("sent %d replies after handler failure, want 0", spy.count())
	}
}

func TestDispatchFallbackSendError(t *testing.T) {
	spy := &spySender{err: &TransportError{Op: "sendMessage", StatusCode: 500}}
	d := newTestDispatcher(spy)

	err := d.Dispatch(context.Background(), msgUpdate(7, "hi"))
	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Errorf("error = %v, want *TransportError", err)
	}
}
