package engine

import "sync"

// MemoryAccountant tracks bytes currently in flight (encoded frames not yet
// assumed delivered) against a ceiling, latching a pressure flag once the
// ceiling is crossed. The flag only clears once usage falls back under the
// ceiling, matching the hysteresis the teacher's MemoryMonitor applies to
// host RSS sampling, generalized here to an explicit byte counter the
// engine itself drives rather than a background runtime.ReadMemStats poll.
type MemoryAccountant struct {
	mu       sync.Mutex
	ceiling  int64
	total    int64
	pressure bool
}

// NewMemoryAccountant creates an accountant with the given ceiling in bytes.
func NewMemoryAccountant(ceilingBytes int64) *MemoryAccountant {
	return &MemoryAccountant{ceiling: ceilingBytes}
}

// Add records additional bytes in flight.
func (m *MemoryAccountant) Add(n int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.total += n
	if m.ceiling > 0 && m.total > m.ceiling {
		m.pressure = true
	}
}

// Release records bytes no longer in flight.
func (m *MemoryAccountant) Release(n int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.total -= n
	if m.total < 0 {
		m.total = 0
	}
	if m.ceiling == 0 || m.total <= m.ceiling {
		m.pressure = false
	}
}

// Pressure reports whether in-flight bytes currently exceed (or last
// exceeded, until released back under) the ceiling.
func (m *MemoryAccountant) Pressure() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pressure
}

// Total returns the current in-flight byte count.
func (m *MemoryAccountant) Total() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.total
}
