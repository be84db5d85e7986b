//go:build mcu

package osal

import (
	"sync/atomic"

	"github.com/benhaub/abstractionlayer/pkg/alerr"
)

// interruptNesting counts balanced DisableAllInterrupts/
// EnableAllInterrupts calls on a simulated MCU build. It is a
// critical-section depth counter, not a lock: callers must balance
// every Disable with an Enable.
var interruptNesting atomic.Int32

// DisableAllInterrupts enters a nested critical section.
func (s *Service) DisableAllInterrupts() *alerr.Error {
	interruptNesting.Add(1)
	return nil
}

// EnableAllInterrupts exits one level of critical section.
func (s *Service) EnableAllInterrupts() *alerr.Error {
	if interruptNesting.Add(-1) < 0 {
		interruptNesting.Store(0)
		return alerr.New(alerr.PrerequisitesNotMet, "osal: EnableAllInterrupts without matching Disable")
	}
	return nil
}
