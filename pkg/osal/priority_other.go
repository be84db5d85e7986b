//go:build !posix

package osal

// applyPlatformPriority is a no-op on builds without the posix tag.
// Priority is still recorded on the thread record for introspection
// via Status, but nothing asks the scheduler to honor it.
func applyPlatformPriority(_ Priority) {}
