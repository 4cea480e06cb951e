package blocks

import (
	"testing"

	"github.com/blockrt/blockrt/internal/execctx"
	"github.com/blockrt/blockrt/internal/value"
)

func newCallCounter() (execctx.BlockCall, *int) {
	calls := 0
	return func(eager bool) (value.Value, error) {
		calls++
		return value.Nil, nil
	}, &calls
}

func TestControlRepeatRunsSubstackExactCount(t *testing.T) {
	substack, calls := newCallCounter()
	nextCall, nextCalls := newCallCounter()
	ctx := &execctx.Context{Next: nextCall}
	args := execctx.NewArgs(
		map[string]value.Value{"times": value.Number(3)},
		map[string]execctx.BlockCall{"substack": substack},
	)
	if _, err := controlRepeat(ctx, args); err != nil {
		t.Fatalf("controlRepeat: unexpected error: %v", err)
	}
	if *calls != 3 {
		t.Errorf("expected substack invoked 3 times, got %d", *calls)
	}
	if *nextCalls != 1 {
		t.Errorf("expected Next invoked once after the loop, got %d", *nextCalls)
	}
}

func TestControlForeverRunsOnceThenRecursesNonEagerly(t *testing.T) {
	substack, calls := newCallCounter()
	var recurseEager *bool
	ctx := &execctx.Context{
		// Eager: true deliberately — controlForever must force its
		// Recurse call to false regardless of the invocation's own
		// eagerness, or a forever loop driven through Complete (which
		// always invokes eagerly) would recurse on the Go call stack
		// without bound instead of re-queueing.
		Eager: true,
		Recurse: func(eager bool) (value.Value, error) {
			recurseEager = &eager
			return value.Nil, nil
		},
	}
	args := execctx.NewArgs(nil, map[string]execctx.BlockCall{"substack": substack})
	if _, err := controlForever(ctx, args); err != nil {
		t.Fatalf("controlForever: unexpected error: %v", err)
	}
	if *calls != 1 {
		t.Errorf("expected substack invoked once per call, got %d", *calls)
	}
	if recurseEager == nil || *recurseEager {
		t.Error("controlForever should always recurse non-eagerly (eager=false), even when invoked eagerly")
	}
}

func TestControlIfRunsSubstackOnlyWhenTrue(t *testing.T) {
	substack, calls := newCallCounter()
	nextCall, _ := newCallCounter()
	ctx := &execctx.Context{Next: nextCall}
	args := execctx.NewArgs(
		map[string]value.Value{"condition": value.Bool(false)},
		map[string]execctx.BlockCall{"substack": substack},
	)
	if _, err := controlIf(ctx, args); err != nil {
		t.Fatalf("controlIf: unexpected error: %v", err)
	}
	if *calls != 0 {
		t.Errorf("substack should not run when condition is false, got %d calls", *calls)
	}

	args = execctx.NewArgs(
		map[string]value.Value{"condition": value.Bool(true)},
		map[string]execctx.BlockCall{"substack": substack},
	)
	if _, err := controlIf(ctx, args); err != nil {
		t.Fatalf("controlIf: unexpected error: %v", err)
	}
	if *calls != 1 {
		t.Errorf("substack should run once when condition is true, got %d calls", *calls)
	}
}

func TestControlIfElseBranches(t *testing.T) {
	thenCall, thenCalls := newCallCounter()
	elseCall, elseCalls := newCallCounter()
	nextCall, _ := newCallCounter()
	ctx := &execctx.Context{Next: nextCall}
	args := execctx.NewArgs(
		map[string]value.Value{"condition": value.Bool(false)},
		map[string]execctx.BlockCall{"substack": thenCall, "substack2": elseCall},
	)
	if _, err := controlIfElse(ctx, args); err != nil {
		t.Fatalf("controlIfElse: unexpected error: %v", err)
	}
	if *thenCalls != 0 || *elseCalls != 1 {
		t.Errorf("expected only the else branch to run, got then=%d else=%d", *thenCalls, *elseCalls)
	}
}

func TestControlWaitUntilRecursesUntilTrue(t *testing.T) {
	var recursed bool
	ctx := &execctx.Context{
		Recurse: func(eager bool) (value.Value, error) {
			recursed = true
			return value.Nil, nil
		},
		Next: func(eager bool) (value.Value, error) { return value.Nil, nil },
	}
	args := execctx.NewArgs(map[string]value.Value{"condition": value.Bool(false)}, nil)
	if _, err := controlWaitUntil(ctx, args); err != nil {
		t.Fatalf("controlWaitUntil: unexpected error: %v", err)
	}
	if !recursed {
		t.Error("controlWaitUntil should recurse while its condition is false")
	}

	recursed = false
	args = execctx.NewArgs(map[string]value.Value{"condition": value.Bool(true)}, nil)
	if _, err := controlWaitUntil(ctx, args); err != nil {
		t.Fatalf("controlWaitUntil: unexpected error: %v", err)
	}
	if recursed {
		t.Error("controlWaitUntil should not recurse once its condition is true")
	}
}

// controlRepeatUntil loops while its condition is true and stops once it
// turns false — the opposite polarity of controlWaitUntil.
func TestControlRepeatUntilRunsBodyThenRecursesWhileConditionTrue(t *testing.T) {
	substack, calls := newCallCounter()
	nextCall, nextCalls := newCallCounter()
	var recursed bool
	ctx := &execctx.Context{
		Next: nextCall,
		Recurse: func(eager bool) (value.Value, error) {
			recursed = true
			return value.Nil, nil
		},
	}
	args := execctx.NewArgs(
		map[string]value.Value{"condition": value.Bool(true)},
		map[string]execctx.BlockCall{"substack": substack},
	)
	if _, err := controlRepeatUntil(ctx, args); err != nil {
		t.Fatalf("controlRepeatUntil: unexpected error: %v", err)
	}
	if *calls != 1 || !recursed {
		t.Errorf("expected the body to run once and then recurse while condition is true, calls=%d recursed=%v", *calls, recursed)
	}
	if *nextCalls != 0 {
		t.Error("controlRepeatUntil should not call Next while its condition is still true")
	}
}

func TestControlRepeatUntilCallsNextOnceConditionIsFalse(t *testing.T) {
	substack, calls := newCallCounter()
	nextCall, nextCalls := newCallCounter()
	var recursed bool
	ctx := &execctx.Context{
		Next: nextCall,
		Recurse: func(eager bool) (value.Value, error) {
			recursed = true
			return value.Nil, nil
		},
	}
	args := execctx.NewArgs(
		map[string]value.Value{"condition": value.Bool(false)},
		map[string]execctx.BlockCall{"substack": substack},
	)
	if _, err := controlRepeatUntil(ctx, args); err != nil {
		t.Fatalf("controlRepeatUntil: unexpected error: %v", err)
	}
	if *calls != 0 || recursed {
		t.Errorf("expected the body not to run and no recursion once condition is false, calls=%d recursed=%v", *calls, recursed)
	}
	if *nextCalls != 1 {
		t.Error("controlRepeatUntil should call Next once its condition is false")
	}
}

func TestControlStopReturnsNilWithoutAdvancing(t *testing.T) {
	v, err := controlStop(&execctx.Context{}, execctx.NewArgs(nil, nil))
	if err != nil || !v.Equal(value.Nil) {
		t.Errorf("controlStop should return (Nil, nil), got (%v, %v)", v, err)
	}
}

func TestRegisterControlRegistersAllTypes(t *testing.T) {
	r := registryForTest(t)
	if err := RegisterControl(r); err != nil {
		t.Fatalf("RegisterControl: unexpected error: %v", err)
	}
	for _, typ := range []string{
		"control_wait", "control_repeat", "control_forever", "control_if",
		"control_if_else", "control_wait_until", "control_repeat_until", "control_stop",
	} {
		if _, ok := r.Lookup(typ); !ok {
			t.Errorf("expected %q to be registered", typ)
		}
	}
}
