package core

import "fmt"

// Registry holds handlers in registration order. Order is the tie-break:
// only the first handler that claims an update runs, so more specific
// handlers must be registered before generic ones.
type Registry struct {
	handlers []Handler
	names    map[string]bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{names: make(map[string]bool)}
}

// Register appends a handler. Names must be unique.
func (r *Registry) Register(h Handler) error {
	name := h.Name()
	if r.names[name] {
		return fmt.Errorf("handler %q already registered", name)
	}
	r.names[name] = true
	r.handlers = append(r.handlers, h)
	return nil
}

// Handlers returns the handlers in registration order.
func (r *Registry) Handlers() []Handler {
	out := make([]Handler, len(r.handlers))
	copy(out, r.handlers)
	return out
}

// Len returns the number of registered handlers.
func (r *Registry) Len() int { return len(r.handlers) }

// Match returns the first handler that claims u, or nil.
func (r *Registry) Match(u Update) Handler {
	for _, h := range r.handlers {
		if h.CanHandle(u) {
			return h
		}
	}
	return nil
}
