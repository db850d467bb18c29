package jsonrpc

import (
	"context"
	"encoding/json"
	"maps"
	"slices"
)

// Handler runs one method. params is nil when the call carried none.
type Handler func(ctx context.Context, params json.RawMessage) (any, *Error)

// MethodRegistry is the method table of a Server. It is not safe for
// concurrent registration; register everything before serving.
type MethodRegistry struct {
	methods map[string]Handler
}

func NewMethodRegistry() *MethodRegistry {
	return &MethodRegistry{methods: map[string]Handler{}}
}

// Register binds method to handler, replacing any earlier binding.
func (r *MethodRegistry) Register(method string, handler Handler) {
	r.methods[method] = handler
}

// Lookup returns nil for unknown methods.
func (r *MethodRegistry) Lookup(method string) Handler {
	return r.methods[method]
}

// Methods lists the registered names alphabetically.
func (r *MethodRegistry) Methods() []string {
	return slices.Sorted(maps.Keys(r.methods))
}
