// Package tools defines the tool catalogue exposed by the server: the
// descriptor type, the per-call response accumulator, and the handlers that
// drive the browser.
package tools

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/AgentWings/chrome-devtools-mcp/internal/browser"
)

// Category is a coarse tag used to bulk-enable or disable groups of tools.
type Category string

const (
	CategoryEmulation   Category = "emulation"
	CategoryPerformance Category = "performance"
	CategoryNetwork     Category = "network"
	CategoryOther       Category = "other"
)

// Request carries the decoded tool-call parameters.
type Request struct {
	Params map[string]any
}

// Handler is the tool implementation contract. It may append content to resp
// and may fail with any error; it runs with exclusive access to the browser
// context (the dispatch guard is held for the whole call).
type Handler func(ctx context.Context, req Request, resp *Response, bctx *browser.Context) error

// Tool is an immutable descriptor for one remote-invocable operation. The
// catalogue is assembled once at process start and never mutated.
type Tool struct {
	Name        string
	Description string
	Schema      *jsonschema.Schema
	Category    Category
	Handler     Handler
}

// String returns the parameter's string value, or fallback if absent.
func (r Request) String(key, fallback string) string {
	if v, ok := r.Params[key].(string); ok {
		return v
	}
	return fallback
}

// Int returns the parameter's integer value, or fallback if absent. JSON
// numbers decode as float64, so both forms are accepted.
func (r Request) Int(key string, fallback int) int {
	switch v := r.Params[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return fallback
}

// Float returns the parameter's numeric value, or fallback if absent.
func (r Request) Float(key string, fallback float64) float64 {
	if v, ok := r.Params[key].(float64); ok {
		return v
	}
	return fallback
}

// Bool returns the parameter's boolean value, or fallback if absent.
func (r Request) Bool(key string, fallback bool) bool {
	if v, ok := r.Params[key].(bool); ok {
		return v
	}
	return fallback
}
