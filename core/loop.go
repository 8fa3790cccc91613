package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jdelaire/sentinelbot/core/dedup"
)

// Phase is the state of the poll loop.
type Phase int

const (
	PhaseRunning Phase = iota
	PhaseRecovering
	PhaseRestarting
	PhaseStopped
)

func (p Phase) String() string {
	switch p {
	case PhaseRunning:
		return "running"
	case PhaseRecovering:
		return "recovering"
	case PhaseRestarting:
		return "restarting"
	case PhaseStopped:
		return "stopped"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// State is one node of the loop's state machine. Signature and Until are
// set while recovering; Err holds the cause of a restart or stop.
type State struct {
	Phase     Phase
	Signature string
	Until     time.Time
	Err       error
}

// LoopConfig holds the loop timings.
type LoopConfig struct {
	PollInterval      time.Duration
	PollTimeout       time.Duration
	ErrorCooldown     time.Duration
	RestartCooldown   time.Duration
	SuppressionWindow time.Duration
}

// DefaultLoopConfig returns the production timings.
func DefaultLoopConfig() LoopConfig {
	return LoopConfig{
		PollInterval:      time.Second,
		PollTimeout:       60 * time.Second,
		ErrorCooldown:     30 * time.Second,
		RestartCooldown:   60 * time.Second,
		SuppressionWindow: dedup.DefaultWindow,
	}
}

// Loop fetches updates, dispatches them, and contains every failure so the
// process keeps running. Everything runs on the caller's goroutine.
type Loop struct {
	fetcher    Fetcher
	dispatcher *Dispatcher
	reporter   Reporter
	recorder   ResponseRecorder
	cursor     *CursorStore
	table      *dedup.Table
	cfg        LoopConfig
	logger     *slog.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error

	current *Update
}

// NewLoop creates a loop. recorder may be nil when the transport keeps no
// raw responses.
func NewLoop(fetcher Fetcher, dispatcher *Dispatcher, reporter Reporter, recorder ResponseRecorder,
	cursor *CursorStore, cfg LoopConfig, logger *slog.Logger) *Loop {
	return &Loop{
		fetcher:    fetcher,
		dispatcher: dispatcher,
		reporter:   reporter,
		recorder:   recorder,
		cursor:     cursor,
		table:      dedup.New(cfg.SuppressionWindow),
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
		sleep:      sleepContext,
	}
}

// WithClock overrides the time source and sleeper (for testing).
func (l *Loop) WithClock(now func() time.Time, sleep func(ctx context.Context, d time.Duration) error) *Loop {
	if now != nil {
		l.now = now
		l.table.WithClock(now)
	}
	if sleep != nil {
		l.sleep = sleep
	}
	return l
}

// Cursor returns the loop's cursor store.
func (l *Loop) Cursor() *CursorStore { return l.cursor }

// Run drives the state machine until ctx is cancelled or termination is
// requested. It returns context.Canceled or ErrTerminate accordingly.
func (l *Loop) Run(ctx context.Context) error {
	l.announce(ctx, ":: *bot started*")
	l.logger.Info("poll loop started", "cursor", l.cursor.Current())

	st := State{Phase: PhaseRunning}
	for st.Phase != PhaseStopped {
		st = l.Step(ctx, st)
	}

	l.logger.Info("poll loop stopped", "cursor", l.cursor.Current(), "reason", st.Err)
	return st.Err
}

// Step performs the work of one state and returns the next state. Any panic
// escaping the state's own containment forces a restart.
func (l *Loop) Step(ctx context.Context, st State) (next State) {
	defer func() {
		if r := recover(); r != nil {
			next = State{Phase: PhaseRestarting, Err: &ContainmentError{Err: newPanicError(r)}}
		}
	}()

	switch st.Phase {
	case PhaseRunning:
		return l.stepRunning(ctx)
	case PhaseRecovering:
		l.logger.Info("sleeping after error", "until", st.Until)
		if err := l.sleep(ctx, st.Until.Sub(l.now())); err != nil {
			return l.stopped(ctx, err)
		}
		return State{Phase: PhaseRunning}
	case PhaseRestarting:
		l.logger.Error("restarting poll loop", "error", st.Err, "cooldown", l.cfg.RestartCooldown)
		if err := l.sleep(ctx, l.cfg.RestartCooldown); err != nil {
			return l.stopped(ctx, err)
		}
		l.table.Reset()
		l.current = nil
		l.announce(ctx, ":: *bot restarted*")
		return State{Phase: PhaseRunning}
	default:
		return st
	}
}

func (l *Loop) stepRunning(ctx context.Context) State {
	err := l.cycle(ctx)
	if err == nil {
		return State{Phase: PhaseRunning}
	}
	if isStop(ctx, err) {
		return l.stopped(ctx, err)
	}

	sig, cerr := l.contain(ctx, err)
	if cerr != nil {
		if isStop(ctx, cerr) {
			return l.stopped(ctx, cerr)
		}
		return State{Phase: PhaseRestarting, Err: cerr}
	}
	return State{Phase: PhaseRecovering, Signature: sig, Until: l.now().Add(l.cfg.ErrorCooldown)}
}

// cycle sleeps the poll interval, fetches one batch and dispatches it. The
// cursor is advanced past the whole batch before any dispatch, so a failure
// mid-batch skips the rest of it rather than redelivering.
func (l *Loop) cycle(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newPanicError(r)
		}
	}()

	l.logger.Debug("sleeping before poll", "interval", l.cfg.PollInterval)
	if err := l.sleep(ctx, l.cfg.PollInterval); err != nil {
		return err
	}

	updates, err := l.fetcher.Fetch(ctx, l.cursor.Current(), l.cfg.PollTimeout)
	if err != nil {
		return err
	}
	if len(updates) == 0 {
		return nil
	}

	last := l.cursor.Current()
	for _, u := range updates {
		if u.Cursor() > last {
			last = u.Cursor()
		}
	}
	l.cursor.Advance(last)

	for i := range updates {
		u := updates[i]
		l.current = &u
		if err := l.dispatcher.Dispatch(ctx, u); err != nil {
			return err
		}
	}
	return nil
}

// contain renders the failure signature and reports it unless the same
// signature was reported within the suppression window. Failures of the
// reporting path come back as *ContainmentError.
func (l *Loop) contain(ctx context.Context, cause error) (sig string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ContainmentError{Err: newPanicError(r)}
		}
	}()

	sig = Signature(cause)
	l.logger.Error("poll cycle failed", "error", cause, "cursor", l.cursor.Current())

	if !l.table.ShouldReport(sig) {
		l.logger.Info("not sending same failure report", "error", cause)
		return sig, nil
	}

	f := Failure{
		ID:        uuid.New().String(),
		Signature: sig,
		Update:    l.current,
		At:        l.now(),
	}
	if l.recorder != nil {
		f.LastResponse = l.recorder.LastResponse()
	}
	if err := l.reporter.Report(ctx, f); err != nil {
		return sig, &ContainmentError{Err: fmt.Errorf("report %s: %w", f.ID, err)}
	}
	l.logger.Info("failure reported", "report_id", f.ID)
	return sig, nil
}

func (l *Loop) announce(ctx context.Context, text string) {
	if err := l.reporter.Announce(ctx, text); err != nil {
		l.logger.Warn("announce failed", "text", text, "error", err)
	}
}

func (l *Loop) stopped(ctx context.Context, err error) State {
	if errors.Is(err, ErrTerminate) {
		return State{Phase: PhaseStopped, Err: ErrTerminate}
	}
	if ctx.Err() != nil {
		return State{Phase: PhaseStopped, Err: ctx.Err()}
	}
	return State{Phase: PhaseStopped, Err: err}
}

// isStop reports whether err (or the context) demands an immediate stop.
func isStop(ctx context.Context, err error) bool {
	return ctx.Err() != nil || IsFatal(err)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
