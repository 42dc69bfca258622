// Package toolregistry maintains the set of tools an agent run may call,
// validating each CallTool's Args against the tool's declared JSON Schema
// before it ever reaches a capability.Tool implementation.
package toolregistry

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Spec describes one registrable tool: its name, a human-readable
// description for prompt rendering, and the JSON Schema its input must
// satisfy.
type Spec struct {
	Name        string
	Description string
	InputSchema json.RawMessage
}

// Registry validates tool input against each tool's declared schema.
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]*jsonschema.Schema
	specs   map[string]Spec
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		schemas: make(map[string]*jsonschema.Schema),
		specs:   make(map[string]Spec),
	}
}

// Register compiles spec.InputSchema and adds it to the registry under
// spec.Name, replacing any prior registration of the same name.
func (r *Registry) Register(spec Spec) error {
	compiler := jsonschema.NewCompiler()
	url := "mem://" + spec.Name + ".json"
	if err := compiler.AddResource(url, toJSONAny(spec.InputSchema)); err != nil {
		return fmt.Errorf("toolregistry: adding schema for %q: %w", spec.Name, err)
	}
	schema, err := compiler.Compile(url)
	if err != nil {
		return fmt.Errorf("toolregistry: compiling schema for %q: %w", spec.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemas[spec.Name] = schema
	r.specs[spec.Name] = spec
	return nil
}

// Validate checks rawArgs (a JSON object) against the named tool's schema.
// Validate reports an error both when the tool is unknown and when the
// arguments fail validation.
func (r *Registry) Validate(toolName string, rawArgs string) error {
	r.mu.RLock()
	schema, ok := r.schemas[toolName]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("toolregistry: unknown tool %q", toolName)
	}

	var instance any
	if err := json.Unmarshal([]byte(rawArgs), &instance); err != nil {
		return fmt.Errorf("toolregistry: tool %q args are not valid JSON: %w", toolName, err)
	}
	if err := schema.Validate(instance); err != nil {
		return fmt.Errorf("toolregistry: tool %q args failed validation: %w", toolName, err)
	}
	return nil
}

// Spec returns the registered Spec for name, if any.
func (r *Registry) Spec(name string) (Spec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	spec, ok := r.specs[name]
	return spec, ok
}

// Names returns every currently registered tool name.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.specs))
	for name := range r.specs {
		names = append(names, name)
	}
	return names
}

func toJSONAny(raw json.RawMessage) any {
	var v any
	_ = json.Unmarshal(raw, &v)
	return v
}
