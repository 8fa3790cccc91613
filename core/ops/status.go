package ops

import (
	"context"
	"fmt"
	"runtime"
	"time"
)

var startTime = time.Now()

// StatusOp returns uptime, the current update cursor and the Go version.
type StatusOp struct {
	Cursor func() int64
}

func (s *StatusOp) Name() string        { return "status" }
func (s *StatusOp) Description() string { return "Show bot status" }

func (s *StatusOp) Execute(_ context.Context, _ Call) (Reply, error) {
	uptime := time.Since(startTime).Truncate(time.Second)
	var cursor int64
	if s.Cursor != nil {
		cursor = s.Cursor()
	}
	return Text(fmt.Sprintf("Status: OK\nUptime: %s\nCursor: %d\nGo: %s",
		uptime, cursor, runtime.Version())), nil
}
