package core

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"
)

// --- test helpers ---

type spySender struct {
	mu        sync.Mutex
	messages  []OutboundMessage
	documents []OutboundDocument
	actions   []string
	err       error
	tooLong   bool
}

func (s *spySender) SendMessage(_ context.Context, m OutboundMessage) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return Result{}, s.err
	}
	if s.tooLong {
		return Result{}, &TransportError{Op: "sendMessage", Err: ErrMessageTooLong}
	}
	s.messages = append(s.messages, m)
	return Result{MessageID: int64(len(s.messages)), ChatID: m.ChatID}, nil
}

func (s *spySender) SendDocument(_ context.Context, d OutboundDocument) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return Result{}, s.err
	}
	s.documents = append(s.documents, d)
	return Result{MessageID: 100, ChatID: d.ChatID}, nil
}

func (s *spySender) SendChatAction(_ context.Context, _ int64, action string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions = append(s.actions, action)
	return nil
}

func (s *spySender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// spyHandler claims updates whose command equals cmd and records calls.
type spyHandler struct {
	name      string
	cmd       string
	claimAll  bool
	err       error
	panicWith any
	processed []int64
}

func (h *spyHandler) Name() string { return h.name }

func (h *spyHandler) CanHandle(u Update) bool {
	if h.claimAll {
		return true
	}
	return MatchCommand(h.cmd)(u)
}

func (h *spyHandler) Process(_ context.Context, u Update) error {
	h.processed = append(h.processed, u.ID)
	if h.panicWith != nil {
		panic(h.panicWith)
	}
	return h.err
}

type spyReporter struct {
	reports   []Failure
	announced []string
	err       error
	panicWith any
}

func (r *spyReporter) Report(_ context.Context, f Failure) error {
	if r.panicWith != nil {
		panic(r.panicWith)
	}
	if r.err != nil {
		return r.err
	}
	r.reports = append(r.reports, f)
	return nil
}

func (r *spyReporter) Announce(_ context.Context, text string) error {
	r.announced = append(r.announced, text)
	return nil
}

// scriptFetcher returns one scripted result per call, then empty batches.
type scriptFetcher struct {
	batches [][]Update
	errs    []error
	calls   int
	afters  []Cursor
	last    []byte
}

func (f *scriptFetcher) Fetch(_ context.Context, after Cursor, _ time.Duration) ([]Update, error) {
	i := f.calls
	f.calls++
	f.afters = append(f.afters, after)
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i < len(f.batches) {
		return f.batches[i], nil
	}
	return nil, nil
}

func (f *scriptFetcher) LastResponse() []byte { return f.last }

// fakeClock advances time only when the loop sleeps.
type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.sleeps = append(c.sleeps, d)
	if d > 0 {
		c.now = c.now.Add(d)
	}
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func msgUpdate(id int64, text string) Update {
	return Update{
		ID:   id,
		Kind: KindMessage,
		Message: &Message{
			ID:   id * 10,
			From: &User{ID: 1},
			Chat: Chat{ID: 100, Type: "private"},
			Date: time.Now(),
			Text: text,
		},
	}
}
