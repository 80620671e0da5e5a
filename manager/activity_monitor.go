package manager

import (
	"context"
	"sync"
	"time"
)

// ActivityMetrics is a point-in-time view of relay activity.
type ActivityMetrics struct {
	InFlight int
	Served   int
}

// ActivityMonitor counts relays in flight and logs the counts when they
// change. It never blocks or rejects a relay.
type ActivityMonitor struct {
	mu          sync.Mutex
	inFlight    int
	served      int
	changed     bool
	lastLogTime time.Time

	pollInterval time.Duration
	logInterval  time.Duration
}

// NewActivityMonitor creates a monitor that checks for changes twice a
// second and logs at most once a second.
func NewActivityMonitor() *ActivityMonitor {
	return &ActivityMonitor{
		pollInterval: 500 * time.Millisecond,
		logInterval:  time.Second,
	}
}

// Begin marks a relay as started. The returned func marks it finished and
// is safe to call more than once.
func (m *ActivityMonitor) Begin() func() {
	m.mu.Lock()
	m.inFlight++
	m.changed = true
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(m.end)
	}
}

func (m *ActivityMonitor) end() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.inFlight > 0 {
		m.inFlight--
	}
	m.served++
	m.changed = true
}

// Snapshot returns the current counts.
func (m *ActivityMonitor) Snapshot() ActivityMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	return ActivityMetrics{InFlight: m.inFlight, Served: m.served}
}

// Run logs changed counts until ctx is done.
func (m *ActivityMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			m.logIfChanged(now)
		}
	}
}

func (m *ActivityMonitor) logIfChanged(now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.changed || now.Sub(m.lastLogTime) < m.logInterval {
		return false
	}
	log.Infof("Relays in flight: %d | Served: %d", m.inFlight, m.served)
	m.lastLogTime = now
	m.changed = false
	return true
}
