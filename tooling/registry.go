package tooling

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/kaptinlin/jsonschema"
	"golang.org/x/sync/semaphore"
)

// Registry is the tool directory: an explicit value mapping tool names to
// tools, constructed once at startup and passed by reference into whatever
// needs lookups. There is deliberately no package-level default registry.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*registeredTool
}

type registeredTool struct {
	tool   Tool
	schema *jsonschema.Schema   // compiled input schema, nil when Parameters is nil
	sem    *semaphore.Weighted  // nil when MaxConcurrency == 0
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*registeredTool)}
}

// Register adds or replaces a tool. The tool's input schema is compiled
// eagerly so a malformed schema fails at startup, not mid-run.
func (r *Registry) Register(tool Tool) error {
	spec := tool.Spec()
	if spec.Name == "" {
		return fmt.Errorf("register: tool has empty name")
	}

	entry := &registeredTool{tool: tool}

	if spec.Parameters != nil {
		raw, err := json.Marshal(spec.Parameters)
		if err != nil {
			return fmt.Errorf("register %s: marshal schema: %w", spec.Name, err)
		}
		compiled, err := jsonschema.NewCompiler().Compile(raw)
		if err != nil {
			return fmt.Errorf("register %s: compile schema: %w", spec.Name, err)
		}
		entry.schema = compiled
	}

	if spec.MaxConcurrency > 0 {
		entry.sem = semaphore.NewWeighted(int64(spec.MaxConcurrency))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[spec.Name] = entry
	return nil
}

// MustRegister registers tools and panics on error. Intended for builtin
// tools whose schemas are fixed at compile time.
func (r *Registry) MustRegister(tools ...Tool) {
	for _, t := range tools {
		if err := r.Register(t); err != nil {
			panic(err)
		}
	}
}

// Unregister removes a tool from the registry.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, name)
}

// Get returns a registered tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[name]
	if !ok {
		return nil, false
	}
	return entry.tool, true
}

// Has reports whether a tool is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Names returns the names of all registered tools.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	return names
}

// Specs returns the specs of all registered tools.
func (r *Registry) Specs() []Spec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	specs := make([]Spec, 0, len(r.entries))
	for _, entry := range r.entries {
		specs = append(specs, entry.tool.Spec())
	}
	return specs
}

// SpecFor returns the spec of one registered tool.
func (r *Registry) SpecFor(name string) (Spec, bool) {
	tool, ok := r.Get(name)
	if !ok {
		return Spec{}, false
	}
	return tool.Spec(), true
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Execute runs a tool through the registry boundary: schema validation,
// concurrency limiting, and timeout enforcement all happen here so
// individual tools stay simple.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any, meta map[string]any) (any, error) {
	r.mu.RLock()
	entry, ok := r.entries[name]
	r.mu.RUnlock()
	if !ok {
		return nil, &ToolError{Tool: name, Message: "unknown tool"}
	}

	if entry.schema != nil {
		result := entry.schema.Validate(args)
		if !result.IsValid() {
			return nil, &ToolError{Tool: name, Message: fmt.Sprintf("invalid input: %s", result.Error())}
		}
	}

	if entry.sem != nil {
		if err := entry.sem.Acquire(ctx, 1); err != nil {
			return nil, &ToolError{Tool: name, Message: "cancelled waiting for concurrency slot", Cause: err}
		}
		defer entry.sem.Release(1)
	}

	spec := entry.tool.Spec()
	if spec.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, spec.Timeout)
		defer cancel()
	}

	type outcome struct {
		out any
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		out, err := entry.tool.Execute(ctx, args, meta)
		done <- outcome{out, err}
	}()

	select {
	case res := <-done:
		return res.out, res.err
	case <-ctx.Done():
		return nil, &ToolError{Tool: name, Message: "execution timed out", Cause: ctx.Err()}
	}
}
