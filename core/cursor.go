package core

// Cursor marks the last update consumed. Zero means nothing has been
// consumed yet.
type Cursor int64

// CursorStore holds the loop's cursor in memory. It only moves forward.
type CursorStore struct {
	current Cursor
}

// NewCursorStore creates a store starting at c.
func NewCursorStore(c Cursor) *CursorStore {
	return &CursorStore{current: c}
}

// Current returns the last consumed update identifier.
func (s *CursorStore) Current() Cursor { return s.current }

// Advance moves the cursor to c. It returns false and leaves the cursor
// unchanged when c is not ahead of the current value.
func (s *CursorStore) Advance(c Cursor) bool {
	if c <= s.current {
		return false
	}
	s.current = c
	return true
}

// Offset returns the Telegram getUpdates offset for updates strictly after
// the cursor.
func (c Cursor) Offset() int64 {
	if c <= 0 {
		return 0
	}
	return int64(c) + 1
}
