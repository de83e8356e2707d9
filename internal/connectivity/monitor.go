// Package connectivity tracks online/offline transitions. The monitor is
// purely reactive: platform connectivity events are fed in through
// SetOnline and the current flag plus an edge-triggered "was offline"
// marker are exposed to callers. No retries, no polling.
package connectivity

import "sync"

// Monitor holds the current connectivity flag.
type Monitor struct {
	mu         sync.Mutex
	online     bool
	wasOffline bool
	subs       []func(online bool)
}

// NewMonitor returns a monitor with the given initial state.
func NewMonitor(online bool) *Monitor {
	return &Monitor{online: online}
}

// SetOnline records a connectivity transition. Subscribers are notified
// only on actual edges, not on repeated reports of the same state.
func (m *Monitor) SetOnline(online bool) {
	m.mu.Lock()
	changed := m.online != online
	m.online = online
	if changed && !online {
		m.wasOffline = true
	}
	subs := m.subs
	m.mu.Unlock()

	if !changed {
		return
	}
	for _, fn := range subs {
		fn(online)
	}
}

// Online reports the current connectivity flag.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// ConsumeWasOffline reports whether the device has been offline since the
// last call, clearing the flag.
func (m *Monitor) ConsumeWasOffline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	was := m.wasOffline
	m.wasOffline = false
	return was
}

// Subscribe registers a callback invoked on every connectivity edge.
func (m *Monitor) Subscribe(fn func(online bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
}
