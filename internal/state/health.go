package state

import (
	"sync"
	"time"

	"github.com/five82/coloringbook/internal/colorbook"
)

// HealthSnapshot is the latest result of the server health probe.
type HealthSnapshot struct {
	Status              colorbook.HealthStatus
	HasStatus           bool
	LastChecked         time.Time
	LastError           error
	ConsecutiveFailures int
}

// IsOffline returns true when the server has failed more than one probe in a row.
func (s HealthSnapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Health records health probe results. The zero value is ready to use.
type Health struct {
	mu       sync.RWMutex
	snapshot HealthSnapshot
}

// Update records a probe result. When err is non-nil the last good status is
// kept and the failure is counted.
func (h *Health) Update(status *colorbook.HealthStatus, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.snapshot.LastChecked = time.Now()
	if err != nil {
		h.snapshot.LastError = err
		h.snapshot.ConsecutiveFailures++
		return
	}

	if status != nil {
		h.snapshot.Status = *status
		h.snapshot.HasStatus = true
	} else {
		h.snapshot.HasStatus = false
	}
	h.snapshot.LastError = nil
	h.snapshot.ConsecutiveFailures = 0
}

// Reset forgets all results, used when the server URL changes.
func (h *Health) Reset() {
	h.mu.Lock()
	h.snapshot = HealthSnapshot{}
	h.mu.Unlock()
}

// Snapshot returns a copy of the current snapshot.
func (h *Health) Snapshot() HealthSnapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.snapshot
}
