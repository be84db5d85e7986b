//go:build !mcu

package osal

import "github.com/benhaub/abstractionlayer/pkg/alerr"

// DisableAllInterrupts is NotAvailable on hosted builds: there is no
// process-wide interrupt mask to take.
func (s *Service) DisableAllInterrupts() *alerr.Error {
	return alerr.New(alerr.NotAvailable, "osal: interrupt masking is not available on a hosted build")
}

// EnableAllInterrupts is NotAvailable on hosted builds.
func (s *Service) EnableAllInterrupts() *alerr.Error {
	return alerr.New(alerr.NotAvailable, "osal: interrupt masking is not available on a hosted build")
}
