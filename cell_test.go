package corotask

import "testing"

func TestCellTakeConsumes(t *testing.T) {
	c := NewCell(42)
	if c.Empty() {
		t.Fatalf("freshly stored cell reports empty")
	}

	v, err := Take[int](c)
	if err != nil {
		t.Fatalf("Take: unexpected error: %v", err)
	}
	if v != 42 {
		t.Fatalf("Take: got %d, want 42", v)
	}
	if !c.Empty() {
		t.Fatalf("cell still reports non-empty after Take")
	}

	if _, err := Take[int](c); err == nil {
		t.Fatalf("Take on empty cell: expected error, got nil")
	} else if e, ok := err.(*Error); !ok || e.Kind != EmptyObject {
		t.Fatalf("Take on empty cell: expected EmptyObject, got %v", err)
	}
}

func TestCellPeekDoesNotConsume(t *testing.T) {
	c := NewCell("hello")
	v, err := Peek[string](c)
	if err != nil {
		t.Fatalf("Peek: unexpected error: %v", err)
	}
	if v != "hello" {
		t.Fatalf("Peek: got %q, want %q", v, "hello")
	}
	if c.Empty() {
		t.Fatalf("Peek consumed the cell")
	}
}

func TestCellBadConversion(t *testing.T) {
	c := NewCell(7)
	if _, err := Peek[string](c); err == nil {
		t.Fatalf("expected error reading int cell as string")
	} else if e, ok := err.(*Error); !ok || e.Kind != BadConversion {
		t.Fatalf("expected BadConversion, got %v", err)
	}
}

func TestCellStoreReplaces(t *testing.T) {
	c := NewCell(1)
	c.Store("replaced")
	v, err := Take[string](c)
	if err != nil {
		t.Fatalf("Take after Store: unexpected error: %v", err)
	}
	if v != "replaced" {
		t.Fatalf("Take after Store: got %q, want %q", v, "replaced")
	}
}
