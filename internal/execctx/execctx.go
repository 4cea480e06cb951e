// Package execctx implements the per-invocation Execution Context facade
// passed to every block executor: continuation callables (next/recurse),
// event bus access (broadcast/listen), variable access, and plugin
// context lookup. Grounded on the teacher's execcontext.ExecutionContext
// for its zerolog-carrying, facade-over-shared-state shape, and on the
// original interpreter's Context dataclass (a plain bag of callables) for
// the exact operation set.
package execctx

import (
	"github.com/blockrt/blockrt/internal/pluginctx"
	"github.com/blockrt/blockrt/internal/value"
	"github.com/blockrt/blockrt/internal/varstore"
	"github.com/rs/zerolog"
)

// BlockCall invokes a statically-resolved block continuation. eager
// selects whether the call runs immediately (the caller's own call stack
// grows — the "eager" path) or is instead registered with the scheduler
// to run on a later Step (the "non-eager" path). Eager calls return the
// callee's produced Value; non-eager calls always return value.Nil since
// their result, if any, only matters once actually stepped.
type BlockCall func(eager bool) (value.Value, error)

// Noop is the BlockCall used where a program omits an optional next
// statement or substack.
var Noop BlockCall = func(bool) (value.Value, error) { return value.Nil, nil }

// Listener mirrors bus.Listener so block code never needs to import the
// bus package directly.
type Listener func(topic, message string) (interface{}, error)

// Context is passed to every block executor function.
type Context struct {
	// Next invokes the block chained after the current one via a <next>
	// element.
	Next BlockCall
	// Recurse re-invokes the current block itself (used by forever/
	// repeat_until to loop without unwinding the Go call stack eagerly).
	Recurse BlockCall
	// Listen registers l as a run-scoped bus listener.
	Listen func(l Listener)
	// Broadcast publishes (topic, message) on the event bus.
	Broadcast func(topic, message string)
	// GetVariable reads the current value of a variable store slot.
	GetVariable func(ref varstore.Ref) value.Value
	// SetVariable writes a variable store slot, publishing a
	// ("variable", "change") event.
	SetVariable func(ref varstore.Ref, v value.Value)
	// PluginContext looks up an acquired plugin context by name.
	PluginContext func(name string) (pluginctx.Context, bool)

	// Eager is the eagerness this invocation's body is itself running
	// under. Block bodies thread it into their own Next/Recurse/
	// substack calls (ctx.Next(ctx.Eager), not a hardcoded literal) so
	// eagerness is inherited call-by-call exactly as it was for this
	// invocation, mirroring the original interpreter's
	// create_callable_block(block, is_eager_call) default-argument
	// binding. A handful of looping constructs deliberately override
	// this default; see internal/blocks/control.go.
	Eager bool

	Logger zerolog.Logger
}

// Args is the bound-argument bag passed alongside Context to a block
// executor: scalar/value inputs resolved to a Value, and statement
// (substack) inputs resolved to a BlockCall.
type Args struct {
	values     map[string]value.Value
	statements map[string]BlockCall
}

// NewArgs builds an Args bag; either map may be nil.
func NewArgs(values map[string]value.Value, statements map[string]BlockCall) Args {
	return Args{values: values, statements: statements}
}

// Value returns the bound value for name, or value.Nil if unbound.
func (a Args) Value(name string) value.Value {
	if v, ok := a.values[name]; ok {
		return v
	}
	return value.Nil
}

// Has reports whether name was bound as a value argument.
func (a Args) Has(name string) bool {
	_, ok := a.values[name]
	return ok
}

// Number coerces the named argument to a float64.
func (a Args) Number(name string) (float64, error) {
	return value.ToNumber(a.Value(name))
}

// Bool coerces the named argument to a bool.
func (a Args) Bool(name string) (bool, error) {
	return value.ToBool(a.Value(name))
}

// String coerces the named argument to a string.
func (a Args) String(name string) (string, error) {
	return value.ToString(a.Value(name))
}

// VarRef returns the named argument as a variable reference. Callers
// must only use this for arguments the registry marked as variable-typed.
func (a Args) VarRef(name string) varstore.Ref {
	v := a.Value(name)
	if ref, ok := v.(value.VarRef); ok {
		return varstore.Ref{Type: ref.Type, ID: ref.ID}
	}
	return varstore.Ref{}
}

// Statement returns the named substack as a BlockCall, or Noop if the
// program left that substack empty.
func (a Args) Statement(name string) BlockCall {
	if s, ok := a.statements[name]; ok {
		return s
	}
	return Noop
}
