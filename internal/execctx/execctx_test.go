package execctx

import (
	"testing"

	"github.com/blockrt/blockrt/internal/value"
	"github.com/blockrt/blockrt/internal/varstore"
)

func TestNoopReturnsNilValue(t *testing.T) {
	v, err := Noop(true)
	if err != nil {
		t.Fatalf("Noop: unexpected error: %v", err)
	}
	if !v.Equal(value.Nil) {
		t.Errorf("Noop should return value.Nil, got %v", v)
	}
}

func TestArgsValueAndHas(t *testing.T) {
	a := NewArgs(map[string]value.Value{"X": value.Number(5)}, nil)
	if !a.Has("X") {
		t.Error("Has(X) should be true for a bound value argument")
	}
	if a.Has("Y") {
		t.Error("Has(Y) should be false for an unbound argument")
	}
	if !a.Value("X").Equal(value.Number(5)) {
		t.Errorf("Value(X) = %v, want 5", a.Value("X"))
	}
	if !a.Value("Y").Equal(value.Nil) {
		t.Errorf("Value(Y) on an unbound argument should be Nil, got %v", a.Value("Y"))
	}
}

func TestArgsCoercionHelpers(t *testing.T) {
	a := NewArgs(map[string]value.Value{
		"N": value.String("3.5"),
		"B": value.Number(1),
		"S": value.Number(7),
	}, nil)

	n, err := a.Number("N")
	if err != nil || n != 3.5 {
		t.Errorf("Number(N) = %v, %v; want 3.5, nil", n, err)
	}
	b, err := a.Bool("B")
	if err != nil || !b {
		t.Errorf("Bool(B) = %v, %v; want true, nil", b, err)
	}
	s, err := a.String("S")
	if err != nil || s != "7" {
		t.Errorf("String(S) = %q, %v; want \"7\", nil", s, err)
	}
}

func TestArgsVarRef(t *testing.T) {
	a := NewArgs(map[string]value.Value{
		"VARIABLE": value.VarRef{Type: "list", ID: "abc"},
		"NOTAREF":  value.Number(1),
	}, nil)
	ref := a.VarRef("VARIABLE")
	if ref.Type != "list" || ref.ID != "abc" {
		t.Errorf("VarRef(VARIABLE) = %+v, want {list abc}", ref)
	}
	zero := a.VarRef("NOTAREF")
	if zero != (varstore.Ref{}) {
		t.Errorf("VarRef on a non-ref value should return a zero Ref, got %+v", zero)
	}
}

func TestArgsStatementFallsBackToNoop(t *testing.T) {
	called := false
	a := NewArgs(nil, map[string]BlockCall{
		"BODY": func(eager bool) (value.Value, error) {
			called = true
			return value.Nil, nil
		},
	})
	if _, err := a.Statement("BODY")(true); err != nil || !called {
		t.Errorf("Statement(BODY) should invoke the bound call, called=%v err=%v", called, err)
	}
	if _, err := a.Statement("MISSING")(true); err != nil {
		t.Errorf("Statement(MISSING) should fall back to Noop without error, got %v", err)
	}
}
