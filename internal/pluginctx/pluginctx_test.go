package pluginctx

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

type fakeContext struct {
	name        string
	acquireErr  error
	releaseErr  error
	acquired    bool
	released    bool
}

func (f *fakeContext) Name() string { return f.name }
func (f *fakeContext) Acquire(broadcast func(topic, message string)) error {
	f.acquired = true
	if f.acquireErr != nil {
		return f.acquireErr
	}
	broadcast(f.name, "acquired")
	return nil
}
func (f *fakeContext) Release() error {
	f.released = true
	return f.releaseErr
}

func TestAcquireAllActivatesRegisteredContexts(t *testing.T) {
	m := NewManager(zerolog.Nop())
	c := &fakeContext{name: "clipboard"}
	m.Register(c)

	var broadcasts [][2]string
	m.AcquireAll(func(topic, message string) {
		broadcasts = append(broadcasts, [2]string{topic, message})
	})

	if !c.acquired {
		t.Error("AcquireAll should call Acquire on every registered context")
	}
	got, ok := m.Get("clipboard")
	if !ok || got != c {
		t.Error("Get should return the acquired context")
	}
	if len(broadcasts) != 1 || broadcasts[0][0] != "clipboard" {
		t.Errorf("unexpected broadcasts: %v", broadcasts)
	}
}

func TestAcquireAllSkipsFailingContextWithoutAbortingOthers(t *testing.T) {
	m := NewManager(zerolog.Nop())
	bad := &fakeContext{name: "bad", acquireErr: errors.New("no device")}
	good := &fakeContext{name: "good"}
	m.Register(bad)
	m.Register(good)

	m.AcquireAll(func(topic, message string) {})

	if _, ok := m.Get("bad"); ok {
		t.Error("a context whose Acquire fails should not become active")
	}
	if _, ok := m.Get("good"); !ok {
		t.Error("a sibling context should still be acquired")
	}
}

func TestReleaseAllClearsActiveSet(t *testing.T) {
	m := NewManager(zerolog.Nop())
	c := &fakeContext{name: "clipboard"}
	m.Register(c)
	m.AcquireAll(func(topic, message string) {})

	m.ReleaseAll()

	if !c.released {
		t.Error("ReleaseAll should call Release on every active context")
	}
	if _, ok := m.Get("clipboard"); ok {
		t.Error("ReleaseAll should clear the active set")
	}
}

func TestReleaseAllToleratesReleaseErrors(t *testing.T) {
	m := NewManager(zerolog.Nop())
	c := &fakeContext{name: "flaky", releaseErr: errors.New("close failed")}
	m.Register(c)
	m.AcquireAll(func(topic, message string) {})

	m.ReleaseAll()

	if _, ok := m.Get("flaky"); ok {
		t.Error("a context should be removed from the active set even if Release errors")
	}
}
