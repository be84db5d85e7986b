// Package peripheral defines the contract between the OS capability
// service and whatever driver code addresses on-board peripherals. It
// carries no driver logic: no UART, SPI, I2C, or GPIO implementation
// lives here, only the PeripheralNumber enumeration and the table
// mapping each number to a platform path, per the abstraction layer's
// scope -- peripheral drivers are an external collaborator's job.
package peripheral

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/benhaub/abstractionlayer/pkg/alid"
)

// PathTable maps a PeripheralNumber to the platform-specific path a
// driver would open to address it (e.g. a POSIX UART device node).
// Numbers absent from the table are unmapped on this build.
type PathTable map[alid.PeripheralNumber]string

// PosixUART is the POSIX build's UART path table. Paths are examples
// of the convention a driver collaborator expects, not a claim that
// these devices exist on any given host.
var PosixUART = PathTable{
	alid.PeripheralZero:  "/dev/cu.usbserial-10",
	alid.PeripheralOne:   "/dev/cu.usbserial-11",
	alid.PeripheralTwo:   "/dev/ttyUSB0",
	alid.PeripheralThree: "/dev/ttyUSB1",
}

// Path returns the platform path mapped to number, or ok=false if
// number is unmapped on this table.
func (t PathTable) Path(number alid.PeripheralNumber) (string, bool) {
	p, ok := t[number]
	return p, ok
}

// Handle is a stable opaque identifier for a peripheral. Mapped
// peripherals are identified by their PeripheralNumber directly;
// peripherals the table doesn't recognize still need something a
// driver collaborator can hold onto across calls without that
// something silently aliasing an unrelated mapped peripheral, so an
// unmapped peripheral is instead given a fresh uuid.UUID.
type Handle struct {
	number  alid.PeripheralNumber
	unknown uuid.UUID
}

// HandleFor resolves number against t: mapped numbers get a Handle
// that reports IsMapped() true and echoes Number(); unmapped numbers
// get a Handle carrying a freshly generated UUID instead.
func HandleFor(t PathTable, number alid.PeripheralNumber) Handle {
	if _, ok := t.Path(number); ok {
		return Handle{number: number}
	}
	return Handle{number: alid.PeripheralUnknown, unknown: uuid.New()}
}

// IsMapped reports whether this handle refers to a peripheral the
// table recognizes.
func (h Handle) IsMapped() bool { return h.number != alid.PeripheralUnknown }

// Number returns the mapped PeripheralNumber, or PeripheralUnknown if
// IsMapped is false.
func (h Handle) Number() alid.PeripheralNumber { return h.number }

// String renders the handle's mapped number, or its opaque UUID when
// unmapped.
func (h Handle) String() string {
	if h.IsMapped() {
		return h.number.String()
	}
	return fmt.Sprintf("unmapped(%s)", h.unknown)
}
