package core

import (
	"context"
	"time"
)

// Failure is one contained failure selected for reporting.
type Failure struct {
	ID           string
	Signature    string
	Update       *Update
	LastResponse []byte
	At           time.Time
}

// Reporter emits diagnostic reports and lifecycle notices through an
// external channel.
type Reporter interface {
	Report(ctx context.Context, f Failure) error
	Announce(ctx context.Context, text string) error
}
