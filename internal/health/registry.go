// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package health tracks the availability of the external terminology
// services: per-service circuit breakers, manual enable/disable overrides,
// and success/failure bookkeeping rolled up into health reports.
package health

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/ontomap/internal/resilience"
)

// Registry tracks named services. Construct one at process start and pass it
// to the orchestrator and clients; there is no process-wide instance.
type Registry struct {
	logger *zap.SugaredLogger
	now    func() time.Time

	mu       sync.RWMutex
	services map[string]*entry
}

type entry struct {
	breaker             *resilience.CircuitBreaker
	enabled             bool
	lastSuccess         time.Time
	lastFailure         time.Time
	consecutiveFailures int
}

// ServiceStatus is one service's row in a health report.
type ServiceStatus struct {
	Available           bool                         `json:"available"`
	Enabled             bool                         `json:"enabled"`
	LastSuccess         *time.Time                   `json:"last_success"`
	LastFailure         *time.Time                   `json:"last_failure"`
	ConsecutiveFailures int                          `json:"consecutive_failures"`
	CircuitBreaker      *resilience.BreakerSnapshot  `json:"circuit_breaker,omitempty"`
}

// Summary aggregates service availability counts.
type Summary struct {
	TotalServices         int      `json:"total_services"`
	AvailableServices     int      `json:"available_services"`
	UnavailableServices   int      `json:"unavailable_services"`
	AvailableServiceNames []string `json:"available_service_names"`
}

// Report is a point-in-time snapshot of every registered service.
type Report struct {
	Timestamp time.Time                 `json:"timestamp"`
	Services  map[string]ServiceStatus  `json:"services"`
	Summary   Summary                   `json:"summary"`
}

// NewRegistry builds an empty registry. A nil logger disables logging.
func NewRegistry(logger *zap.SugaredLogger) *Registry {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Registry{
		logger:   logger,
		now:      time.Now,
		services: make(map[string]*entry),
	}
}

// Register adds a named service, optionally with a circuit breaker attached.
// Registering a name again replaces its entry.
func (r *Registry) Register(name string, breaker *resilience.CircuitBreaker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.services[name] = &entry{breaker: breaker, enabled: true}
}

// MarkSuccess records a successful operation for a service. This bookkeeping
// is a coarse secondary signal; an attached breaker remains the authority
// for availability.
func (r *Registry) MarkSuccess(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.services[name]; ok {
		e.lastSuccess = r.now()
		e.consecutiveFailures = 0
		r.logger.Debugw("service succeeded", "service", name)
	}
}

// MarkFailure records a failed operation for a service.
func (r *Registry) MarkFailure(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.services[name]; ok {
		e.lastFailure = r.now()
		e.consecutiveFailures++
		r.logger.Warnw("service failed",
			"service", name,
			"consecutive_failures", e.consecutiveFailures)
	}
}

// IsAvailable reports whether a service should be consulted: it must be
// registered, not manually disabled, and its breaker (if any) must be CLOSED.
// A service without a breaker is available whenever it is enabled.
func (r *Registry) IsAvailable(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.isAvailableLocked(name)
}

func (r *Registry) isAvailableLocked(name string) bool {
	e, ok := r.services[name]
	if !ok {
		return false
	}
	if !e.enabled {
		return false
	}
	if e.breaker != nil {
		return e.breaker.State() == resilience.StateClosed
	}
	return true
}

// AvailableServices returns the sorted names of currently available services.
func (r *Registry) AvailableServices() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var names []string
	for name := range r.services {
		if r.isAvailableLocked(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Breaker returns the breaker attached to a service, or nil.
func (r *Registry) Breaker(name string) *resilience.CircuitBreaker {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.services[name]; ok {
		return e.breaker
	}
	return nil
}

// Enable clears a service's manual-disable override.
func (r *Registry) Enable(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.services[name]; ok {
		e.enabled = true
		r.logger.Infow("service manually enabled", "service", name)
	}
}

// Disable marks a service manually unavailable until Enable is called.
func (r *Registry) Disable(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.services[name]; ok {
		e.enabled = false
		r.logger.Infow("service manually disabled", "service", name)
	}
}

// Reset clears a service's breaker and failure bookkeeping.
func (r *Registry) Reset(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.services[name]; ok {
		if e.breaker != nil {
			e.breaker.Reset()
		}
		e.consecutiveFailures = 0
		r.logger.Infow("service reset", "service", name)
	}
}

// HealthReport snapshots every registered service plus an aggregate summary.
func (r *Registry) HealthReport() Report {
	r.mu.RLock()
	defer r.mu.RUnlock()

	report := Report{
		Timestamp: r.now(),
		Services:  make(map[string]ServiceStatus, len(r.services)),
	}

	var available []string
	for name, e := range r.services {
		status := ServiceStatus{
			Available:           r.isAvailableLocked(name),
			Enabled:             e.enabled,
			ConsecutiveFailures: e.consecutiveFailures,
		}
		if !e.lastSuccess.IsZero() {
			t := e.lastSuccess
			status.LastSuccess = &t
		}
		if !e.lastFailure.IsZero() {
			t := e.lastFailure
			status.LastFailure = &t
		}
		if e.breaker != nil {
			snap := e.breaker.Snapshot()
			status.CircuitBreaker = &snap
		}
		report.Services[name] = status

		if status.Available {
			available = append(available, name)
		}
	}
	sort.Strings(available)

	report.Summary = Summary{
		TotalServices:         len(r.services),
		AvailableServices:     len(available),
		UnavailableServices:   len(r.services) - len(available),
		AvailableServiceNames: available,
	}
	return report
}
