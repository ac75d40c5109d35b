package engine

import "testing"

func TestMemoryAccountant_LatchesAndClears(t *testing.T) {
	m := NewMemoryAccountant(1000)

	m.Add(600)
	if m.Pressure() {
		t.Fatalf("pressure latched early at %d/1000", m.Total())
	}

	m.Add(500) // total 1100, crosses ceiling
	if !m.Pressure() {
		t.Fatalf("expected pressure after crossing ceiling, total=%d", m.Total())
	}

	m.Release(50) // total 1050, still over ceiling
	if !m.Pressure() {
		t.Fatalf("pressure cleared while still over ceiling, total=%d", m.Total())
	}

	m.Release(200) // total 850, back under ceiling
	if m.Pressure() {
		t.Fatalf("pressure still latched after dropping under ceiling, total=%d", m.Total())
	}
}

func TestMemoryAccountant_ReleaseNeverNegative(t *testing.T) {
	m := NewMemoryAccountant(1000)
	m.Add(100)
	m.Release(500)
	if m.Total() != 0 {
		t.Errorf("Total() = %d, want 0 (floored)", m.Total())
	}
	if m.Pressure() {
		t.Errorf("Pressure() = true, want false at zero usage")
	}
}
