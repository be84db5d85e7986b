package peripheral

import (
	"testing"

	"github.com/benhaub/abstractionlayer/pkg/alid"
)

func TestHandleForMappedPeripheral(t *testing.T) {
	h := HandleFor(PosixUART, alid.PeripheralZero)
	if !h.IsMapped() {
		t.Fatal("expected PeripheralZero to be mapped")
	}
	if h.Number() != alid.PeripheralZero {
		t.Fatalf("expected PeripheralZero, got %v", h.Number())
	}
}

func TestHandleForUnmappedPeripheralGetsFreshUUID(t *testing.T) {
	h1 := HandleFor(PosixUART, alid.PeripheralTen)
	h2 := HandleFor(PosixUART, alid.PeripheralTen)
	if h1.IsMapped() || h2.IsMapped() {
		t.Fatal("expected PeripheralTen to be unmapped on PosixUART")
	}
	if h1.String() == h2.String() {
		t.Fatal("expected two independently generated handles to differ")
	}
}

func TestPathTableLookup(t *testing.T) {
	path, ok := PosixUART.Path(alid.PeripheralOne)
	if !ok {
		t.Fatal("expected PeripheralOne to resolve")
	}
	if path == "" {
		t.Fatal("expected a non-empty path")
	}

	if _, ok := PosixUART.Path(alid.PeripheralNine); ok {
		t.Fatal("expected PeripheralNine to be unmapped")
	}
}
