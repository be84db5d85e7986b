package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// registry holds the process-wide Prometheus registry metrics are
// registered against once InitRegistry has been called. Nil means
// metrics are disabled: every constructor in this package returns nil
// in that state, and every recorder function is a nil-receiver no-op,
// so disabling metrics costs exactly one branch per call site rather
// than a second code path.
var (
	registryMu sync.RWMutex
	registry   *prometheus.Registry
)

// InitRegistry enables metrics collection, creating a fresh Prometheus
// registry that subsequent NewXMetrics calls register against. Safe to
// call more than once; each call replaces the previous registry.
func InitRegistry() *prometheus.Registry {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = prometheus.NewRegistry()
	return registry
}

// DisableRegistry turns metrics back off. Existing collectors already
// constructed keep their nil-safe no-op behavior; NewXMetrics called
// after this returns nil again.
func DisableRegistry() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = nil
}

// IsEnabled reports whether InitRegistry has been called and
// DisableRegistry has not since.
func IsEnabled() bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return registry != nil
}

// GetRegistry returns the active registry, or nil if metrics are
// disabled. Callers only reach this after checking IsEnabled.
func GetRegistry() *prometheus.Registry {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return registry
}
