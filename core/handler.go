package core

import "context"

// Handler claims and processes one class of update. The dispatcher knows
// nothing about what a handler does beyond these two operations.
type Handler interface {
	Name() string
	CanHandle(u Update) bool
	Process(ctx context.Context, u Update) error
}

// HandlerFunc adapts a match predicate and a function into a Handler.
type HandlerFunc struct {
	HandlerName string
	Match       func(u Update) bool
	Fn          func(ctx context.Context, u Update) error
}

func (h *HandlerFunc) Name() string            { return h.HandlerName }
func (h *HandlerFunc) CanHandle(u Update) bool { return h.Match(u) }

func (h *HandlerFunc) Process(ctx context.Context, u Update) error {
	return h.Fn(ctx, u)
}

// MatchCommand returns a predicate matching messages whose leading command
// token equals command exactly.
func MatchCommand(command string) func(u Update) bool {
	return func(u Update) bool {
		if u.Kind != KindMessage || u.Message == nil {
			return false
		}
		cmd, _ := u.Message.Command()
		return cmd != "" && cmd == command
	}
}
