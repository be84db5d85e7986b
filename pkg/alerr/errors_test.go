package alerr

import (
	"errors"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	e := New(Timeout, "waited %dms", 50)
	if e.Code != Timeout {
		t.Fatalf("expected Timeout, got %v", e.Code)
	}
	if got := e.Error(); got != "Timeout: waited 50ms" {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestErrorWrap(t *testing.T) {
	cause := errors.New("connection refused")
	e := Wrap(Failure, cause, "dial failed")
	if !errors.Is(e, e) {
		t.Fatal("Error should be Is itself")
	}
	if errors.Unwrap(e) != cause {
		t.Fatal("Unwrap should return the cause")
	}
}

func TestIsHelper(t *testing.T) {
	var err error = New(NoData, "unknown thread")
	if !Is(err, NoData) {
		t.Fatal("expected Is(err, NoData) to be true")
	}
	if Is(err, Timeout) {
		t.Fatal("expected Is(err, Timeout) to be false")
	}
	if Is(nil, NoData) {
		t.Fatal("expected Is(nil, ...) to be false")
	}
}

func TestSentinelComparison(t *testing.T) {
	err := New(LimitReached, "queue full")
	if !errors.Is(err, Sentinel(LimitReached)) {
		t.Fatal("expected sentinel comparison by code to succeed")
	}
	if errors.Is(err, Sentinel(Timeout)) {
		t.Fatal("expected sentinel comparison against different code to fail")
	}
}

func TestCodeStringUnknown(t *testing.T) {
	var c Code = 999
	if got := c.String(); got != "Unknown(999)" {
		t.Fatalf("unexpected string: %q", got)
	}
}
