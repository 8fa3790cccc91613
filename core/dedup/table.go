package dedup

import "time"

// DefaultWindow is how long a reported failure signature stays suppressed.
const DefaultWindow = time.Hour

// Table remembers when each failure signature was last reported so repeats
// within the window are not reported again. Entries expire by comparison
// only; there is no eviction pass.
type Table struct {
	window   time.Duration
	reported map[string]time.Time
	now      func() time.Time
}

// New creates a table with the given suppression window. A non-positive
// window uses DefaultWindow.
func New(window time.Duration) *Table {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Table{
		window:   window,
		reported: make(map[string]time.Time),
		now:      time.Now,
	}
}

// WithClock overrides the time source (for testing).
func (t *Table) WithClock(now func() time.Time) *Table {
	if now != nil {
		t.now = now
	}
	return t
}

// ShouldReport returns true when sig was never reported or was last reported
// more than the window ago, and records the report time. It returns false
// while the signature is suppressed.
func (t *Table) ShouldReport(sig string) bool {
	now := t.now()
	if last, ok := t.reported[sig]; ok && now.Sub(last) <= t.window {
		return false
	}
	t.reported[sig] = now
	return true
}

// LastReported returns when sig was last reported.
func (t *Table) LastReported(sig string) (time.Time, bool) {
	ts, ok := t.reported[sig]
	return ts, ok
}

// Len returns the number of remembered signatures.
func (t *Table) Len() int { return len(t.reported) }

// Reset forgets every signature.
func (t *Table) Reset() {
	t.reported = make(map[string]time.Time)
}
