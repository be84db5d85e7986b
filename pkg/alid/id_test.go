package alid

import "testing"

func TestCounterMonotonic(t *testing.T) {
	var c Counter
	first := c.Next()
	second := c.Next()
	if first != 1 || second != 2 {
		t.Fatalf("expected 1, 2, got %d, %d", first, second)
	}
}

func TestNewNameRoundTrip(t *testing.T) {
	n, err := NewName("worker-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.String() != "worker-1" {
		t.Fatalf("expected %q, got %q", "worker-1", n.String())
	}
}

func TestNewNameTooLong(t *testing.T) {
	_, err := NewName("this-name-is-way-too-long-for-16-bytes")
	if err == nil {
		t.Fatal("expected InvalidParameter error for an oversized name")
	}
}

func TestNewNameExactCapacity(t *testing.T) {
	// NameCapacity-1 bytes must fit, leaving room for a trailing NUL.
	name := "123456789012345" // 15 bytes
	n, err := NewName(name)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.String() != name {
		t.Fatalf("expected %q, got %q", name, n.String())
	}
}

func TestSocketUnbound(t *testing.T) {
	if Unbound.IsBound() {
		t.Fatal("Unbound socket must not report as bound")
	}
	if !Socket(0).IsBound() {
		t.Fatal("socket 0 must report as bound")
	}
}

func TestPeripheralNumberString(t *testing.T) {
	if PeripheralZero.String() != "Peripheral0" {
		t.Fatalf("unexpected string: %q", PeripheralZero.String())
	}
	if PeripheralUnknown.String() != "PeripheralUnknown" {
		t.Fatalf("unexpected string: %q", PeripheralUnknown.String())
	}
}
