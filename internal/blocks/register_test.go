package blocks

import "testing"

func TestRegisterAllInstallsEveryCategory(t *testing.T) {
	r := registryForTest(t)
	if err := RegisterAll(r); err != nil {
		t.Fatalf("RegisterAll: unexpected error: %v", err)
	}
	for _, typ := range []string{
		"control_repeat", "data_setvariableto", "operator_add", "event_whenflagclicked",
	} {
		if _, ok := r.Lookup(typ); !ok {
			t.Errorf("expected %q registered by RegisterAll", typ)
		}
	}
	if len(r.All()) < 30 {
		t.Errorf("expected the full built-in block library registered, got %d definitions", len(r.All()))
	}
}
