// Package registry implements the Block Registry: the catalog of
// BlockDefinition values a loaded program's blocks are resolved against.
// Grounded on the teacher's internal/block.ExecutorRegistry
// (map+RWMutex, Register/Get), generalized from "one executor per
// runtime type" to "one executor per block type" and extended with the
// visual/argument metadata the original interpreter's decorator-based
// registry (engine/blocks/block.py) carried implicitly in each
// PyBlockSettings entry. Per spec's design note, the decorator registry
// is replaced with this explicit Registry object.
package registry

import (
	"fmt"
	"sync"

	"github.com/blockrt/blockrt/internal/execctx"
	"github.com/blockrt/blockrt/internal/value"
)

// ArgKind identifies the shape of a single block argument for metadata
// export and for the loader's variable-reference detection.
type ArgKind string

const (
	ArgFieldNumber    ArgKind = "field_number"
	ArgFieldVariable  ArgKind = "field_variable"
	ArgFieldDropdown  ArgKind = "field_dropdown"
	ArgInputValue     ArgKind = "input_value"
	ArgInputStatement ArgKind = "input_statement"
	ArgInputDummy     ArgKind = "input_dummy"
)

// Argument describes one named argument of a block, for visual metadata
// export and variable-reference detection only; the executor itself
// reads arguments out of execctx.Args by name.
type Argument struct {
	Name          string
	Kind          ArgKind
	Min, Max      *float64
	VariableTypes []string
	Options       [][2]string
}

// IsVariableRef reports whether this argument should be bound as a
// varstore reference rather than resolved to its value.
func (a Argument) IsVariableRef() bool { return a.Kind == ArgFieldVariable }

// Executor is the function signature every block's implementation must
// satisfy.
type Executor func(ctx *execctx.Context, args execctx.Args) (value.Value, error)

// VisualDefinition is the Blockly-style shape export: the layout a
// visual editor needs to render the block. Optional — built-in blocks
// supply one for extension-block discoverability; it has no bearing on
// execution.
type VisualDefinition struct {
	Title             string
	Colour            int
	HasPreviousStatement bool
	HasNextStatement  bool
	Output            string
	OutputShape       string
	Extensions        []string
}

// BlockDefinition is one catalog entry.
type BlockDefinition struct {
	Type          string
	Category      string
	IsVisible     bool
	CanRun        bool
	IsPredefined  bool
	Arguments     []Argument
	Visual        *VisualDefinition
	Executor      Executor
}

func (d BlockDefinition) argument(name string) (Argument, bool) {
	for _, a := range d.Arguments {
		if a.Name == name {
			return a, true
		}
	}
	return Argument{}, false
}

// IsVariableArg reports whether argument name on this block is
// registered as a variable-reference kind.
func (d BlockDefinition) IsVariableArg(name string) bool {
	a, ok := d.argument(name)
	return ok && a.IsVariableRef()
}

// Registry is the engine's Block Registry.
type Registry struct {
	mu    sync.RWMutex
	types map[string]BlockDefinition
}

// New builds an empty Registry.
func New() *Registry {
	return &Registry{types: make(map[string]BlockDefinition)}
}

// Register adds or replaces a BlockDefinition. Returns an error if the
// definition is malformed: an empty Type or a nil Executor.
func (r *Registry) Register(d BlockDefinition) error {
	if d.Type == "" {
		return fmt.Errorf("block definition missing a type name")
	}
	if d.Executor == nil {
		return fmt.Errorf("block %q registered with no executor", d.Type)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[d.Type] = d
	return nil
}

// Lookup returns the definition registered for typeName.
func (r *Registry) Lookup(typeName string) (BlockDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.types[typeName]
	return d, ok
}

// StartingTypes returns the set of block type names that may serve as
// program entry points (CanRun == true), matching the original's
// possible_starting_blocks computation in load_program.
func (r *Registry) StartingTypes() map[string]bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]bool)
	for t, d := range r.types {
		if d.CanRun {
			out[t] = true
		}
	}
	return out
}

// All returns every registered definition, for metadata export.
func (r *Registry) All() []BlockDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]BlockDefinition, 0, len(r.types))
	for _, d := range r.types {
		out = append(out, d)
	}
	return out
}
