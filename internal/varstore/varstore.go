// Package varstore implements the engine's variable store: a
// (typeTag, id) -> Value mapping with a side table of editor display
// names and a pluggable default-value handler per type tag, grounded on
// the teacher's execcontext.ExecutionContext state map (RWMutex-guarded,
// nested-path access) and the original interpreter's per-type
// VariableHandler registry.
package varstore

import (
	"sync"

	"github.com/blockrt/blockrt/internal/bus"
	"github.com/blockrt/blockrt/internal/value"
)

// Ref is the (type, id) key identifying a single variable slot.
type Ref struct {
	Type string
	ID   string
}

// Decl is a variable declaration as parsed from a program's <variables>
// block: an id, a type tag (empty for a plain scalar), a display name,
// and any inline text content (used by handlers such as broadcast
// messages whose "default value" is literally their declared text).
type Decl struct {
	ID   string
	Type string
	Name string
	Text string
}

// DefaultHandler supplies the initial value for variables of one type
// tag, mirroring the original interpreter's VariableHandler interface
// (PlainVariableHandler, BroadcastVariableHandler, ListVariableHandler).
type DefaultHandler interface {
	TypeName() string
	DefaultValue(decl Decl) value.Value
}

// Store is the engine's variable store.
type Store struct {
	mu       sync.RWMutex
	values   map[Ref]value.Value
	names    map[Ref]string
	handlers map[string]DefaultHandler
	bus      *bus.Bus
}

// New constructs an empty Store publishing variable-change events on b.
func New(b *bus.Bus) *Store {
	return &Store{
		values:   make(map[Ref]value.Value),
		names:    make(map[Ref]string),
		handlers: make(map[string]DefaultHandler),
		bus:      b,
	}
}

// RegisterHandler installs a default-value handler for a type tag,
// overwriting any handler previously registered for that tag.
func (s *Store) RegisterHandler(h DefaultHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[h.TypeName()] = h
}

// Load resets the store to the given declarations, assigning each
// variable its handler-supplied (or literal-text) default value. Called
// once per LoadProgram.
func (s *Store) Load(decls []Decl) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = make(map[Ref]value.Value, len(decls))
	s.names = make(map[Ref]string, len(decls))
	for _, d := range decls {
		ref := Ref{Type: d.Type, ID: d.ID}
		if h, ok := s.handlers[d.Type]; ok {
			s.values[ref] = h.DefaultValue(d)
		} else {
			s.values[ref] = value.String(d.Text)
		}
		s.names[ref] = d.Name
	}
}

// Get returns the current value for ref and whether it is declared.
func (s *Store) Get(ref Ref) (value.Value, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[ref]
	return v, ok
}

// Set stores v for ref and then publishes ("variable", "change") on the
// bus, so listeners of that event already read the new value.
func (s *Store) Set(ref Ref, v value.Value) {
	s.mu.Lock()
	s.values[ref] = v
	s.mu.Unlock()
	if s.bus != nil {
		s.bus.Publish("variable", "change")
	}
}

// Name returns the declared display name for ref, or "" if unknown.
func (s *Store) Name(ref Ref) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.names[ref]
}

// Entry is a snapshot row used by the engine's status/export operations.
type Entry struct {
	Type  string      `json:"type"`
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Value interface{} `json:"value"`
}

// All returns a snapshot of every declared variable.
func (s *Store) All() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make([]Entry, 0, len(s.values))
	for ref, v := range s.values {
		entries = append(entries, Entry{
			Type:  ref.Type,
			ID:    ref.ID,
			Name:  s.names[ref],
			Value: v.Go(),
		})
	}
	return entries
}

// PlainHandler is the default handler for untyped scalar variables: it
// defaults to the numeric zero value the original's PlainVariableHandler
// returns.
type PlainHandler struct{}

func (PlainHandler) TypeName() string                { return "" }
func (PlainHandler) DefaultValue(Decl) value.Value { return value.Number(0) }

// BroadcastHandler is the default handler for broadcast-message
// variables: their default value is their declared text, since a
// broadcast variable's "value" is the message name itself.
type BroadcastHandler struct{}

func (BroadcastHandler) TypeName() string { return "broadcast_msg" }
func (BroadcastHandler) DefaultValue(d Decl) value.Value {
	return value.String(d.Text)
}

// ListHandler is the default handler for list variables: they default
// to an empty list.
type ListHandler struct{}

func (ListHandler) TypeName() string                { return "list" }
func (ListHandler) DefaultValue(Decl) value.Value { return value.List(nil) }

// RegisterCoreHandlers installs the built-in plain/broadcast/list
// handlers, mirroring the original's core_variable_handlers list.
func RegisterCoreHandlers(s *Store) {
	s.RegisterHandler(PlainHandler{})
	s.RegisterHandler(BroadcastHandler{})
	s.RegisterHandler(ListHandler{})
}
