// Package tool defines the shape of the tools spade exposes to an
// LLM-driven agent loop, and a small explicit registry for them.
//
// The loop, the model client, and the wire protocol all live
// elsewhere; this package is only the contract between them and the
// tool implementations in spadetool.
package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Tool is one capability offered to the model.
type Tool struct {
	Name        string
	Description string
	InputSchema json.RawMessage

	// Run is called when the tool is used. The input complies with
	// InputSchema; the returned string is sent back to the model.
	// Run functions may be called concurrently with each other and
	// themselves.
	Run func(ctx context.Context, input json.RawMessage) (string, error) `json:"-"`
}

// MustSchema validates that schema is valid JSON and returns it as a
// json.RawMessage. It panics if the schema is invalid; schemas are
// package-level constants, so this fails at init time, not at tool
// call time.
func MustSchema(schema string) json.RawMessage {
	schema = strings.TrimSpace(schema)
	if !json.Valid([]byte(schema)) {
		panic("invalid JSON schema: " + schema)
	}
	return json.RawMessage(schema)
}

// Registry is an explicit name-to-tool table. Tools are registered
// once at startup; there is no dynamic class lookup.
type Registry struct {
	tools  []*Tool
	byName map[string]*Tool
}

func NewRegistry(tools ...*Tool) (*Registry, error) {
	r := &Registry{byName: make(map[string]*Tool, len(tools))}
	for _, t := range tools {
		if t.Name == "" {
			return nil, fmt.Errorf("tool with empty name")
		}
		if _, exists := r.byName[t.Name]; exists {
			return nil, fmt.Errorf("duplicate tool name %q", t.Name)
		}
		r.byName[t.Name] = t
		r.tools = append(r.tools, t)
	}
	return r, nil
}

// Lookup returns the named tool, if registered.
func (r *Registry) Lookup(name string) (*Tool, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Tools returns the registered tools in registration order.
func (r *Registry) Tools() []*Tool {
	return r.tools
}
