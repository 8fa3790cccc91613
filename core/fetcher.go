package core

import (
	"context"
	"time"
)

// Fetcher long-polls the transport for updates strictly after a cursor.
// It returns an empty batch and nil error when the poll times out, and a
// *TransportError on network or protocol failure. It never retries.
type Fetcher interface {
	Fetch(ctx context.Context, after Cursor, timeout time.Duration) ([]Update, error)
}

// ResponseRecorder exposes the last raw body seen from the transport.
type ResponseRecorder interface {
	LastResponse() []byte
}
