package blocks

import (
	"testing"

	"github.com/blockrt/blockrt/internal/registry"
	"github.com/blockrt/blockrt/internal/value"
	"github.com/blockrt/blockrt/internal/varstore"
)

func registryForTest(t *testing.T) *registry.Registry {
	t.Helper()
	return registry.New()
}

// fakeVarStore is a minimal in-memory variable map whose Get/Set back a
// test Context's GetVariable/SetVariable in block executor unit tests,
// without pulling in the full varstore.Store event-publication machinery.
type fakeVarStore struct {
	values map[varstore.Ref]value.Value
}

func newFakeVarStore() *fakeVarStore {
	return &fakeVarStore{values: make(map[varstore.Ref]value.Value)}
}

func (f *fakeVarStore) Get(ref varstore.Ref) value.Value {
	if v, ok := f.values[ref]; ok {
		return v
	}
	return value.Nil
}

func (f *fakeVarStore) Set(ref varstore.Ref, v value.Value) {
	f.values[ref] = v
}
