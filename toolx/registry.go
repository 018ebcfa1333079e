package toolx

import (
	"context"
	"encoding/json"
	"sync"
)

// ToolRegistry holds tools by name and keeps their registration order.
type ToolRegistry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{tools: make(map[string]Tool)}
}

// Register adds tools in order. A name that is already taken fails with
// ErrDuplicateTool and leaves the remaining tools unregistered.
func (r *ToolRegistry) Register(tools ...Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range tools {
		if _, exists := r.tools[t.Name()]; exists {
			return Registry.New(ErrDuplicateTool).WithDetail("tool", t.Name())
		}
		r.tools[t.Name()] = t
		r.order = append(r.order, t.Name())
	}
	return nil
}

func (r *ToolRegistry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// List returns the tools in registration order.
func (r *ToolRegistry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		tools = append(tools, r.tools[name])
	}
	return tools
}

func (r *ToolRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Call dispatches to the named tool. Unknown names produce a failure
// envelope like any other error.
func (r *ToolRegistry) Call(ctx context.Context, name string, args json.RawMessage) Envelope {
	t, ok := r.Get(name)
	if !ok {
		return Fail[struct{}](Registry.NewWithMessage(ErrUnknownTool, "unknown tool: "+name).
			WithDetail("tool", name)).Envelope()
	}
	return t.Call(ctx, args)
}

// Definition is the host-neutral description of a tool.
type Definition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

func (r *ToolRegistry) Definitions() []Definition {
	tools := r.List()
	defs := make([]Definition, 0, len(tools))
	for _, t := range tools {
		defs = append(defs, Definition{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: t.Schema().Map(),
		})
	}
	return defs
}
