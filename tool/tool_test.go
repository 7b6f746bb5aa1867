package tool

import "testing"

func TestMustSchemaPanicsOnBadJSON(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic for invalid JSON")
		}
	}()
	MustSchema(`{"type": "object",`)
}

func TestRegistry(t *testing.T) {
	a := &Tool{Name: "a"}
	b := &Tool{Name: "b"}
	r, err := NewRegistry(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got, ok := r.Lookup("a"); !ok || got != a {
		t.Errorf("Lookup(a) = %v, %v", got, ok)
	}
	if _, ok := r.Lookup("missing"); ok {
		t.Errorf("Lookup(missing) succeeded")
	}
	if tools := r.Tools(); len(tools) != 2 || tools[0] != a || tools[1] != b {
		t.Errorf("Tools() = %v", tools)
	}

	if _, err := NewRegistry(a, a); err == nil {
		t.Errorf("expected error for duplicate name")
	}
	if _, err := NewRegistry(&Tool{}); err == nil {
		t.Errorf("expected error for empty name")
	}
}
