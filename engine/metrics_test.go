package engine

import "testing"

func TestMetrics_RollingWindowCapsAtLimit(t *testing.T) {
	m := NewMetrics()
	for i := 0; i < metricsWindow+10; i++ {
		m.RecordProcessingTime(float64(i))
	}
	// Average of the last metricsWindow samples: 10..39 inclusive.
	got := m.AverageProcessingMs()
	want := 0.0
	for i := 10; i < 10+metricsWindow; i++ {
		want += float64(i)
	}
	want /= float64(metricsWindow)
	if got != want {
		t.Errorf("AverageProcessingMs() = %v, want %v", got, want)
	}
}

func TestMetrics_DropRateAndSnapshot(t *testing.T) {
	m := NewMetrics()
	for i := 0; i < 3; i++ {
		m.IncrementDropped()
	}
	for i := 0; i < 7; i++ {
		m.IncrementSent(int64(i))
	}
	snap := m.Snapshot()
	if snap.DroppedFrames != 3 || snap.FramesSent != 7 {
		t.Fatalf("Snapshot() = %+v, want DroppedFrames=3 FramesSent=7", snap)
	}
	want := 3.0 / 11.0 // dropped/(dropped+sent+1), per spec §4.3
	if snap.DropRate != want {
		t.Errorf("DropRate = %v, want %v", snap.DropRate, want)
	}
}

func TestMetrics_ControllerEvaluationNeverResetsCounters(t *testing.T) {
	m := NewMetrics()
	m.IncrementDropped()
	m.IncrementSent(0)

	// Reading a snapshot repeatedly must not change the underlying counts.
	_ = m.Snapshot()
	_ = m.Snapshot()
	snap := m.Snapshot()
	if snap.DroppedFrames != 1 || snap.FramesSent != 1 {
		t.Fatalf("counters mutated by non-mutating Snapshot(): %+v", snap)
	}

	m.ResetCounters()
	snap = m.Snapshot()
	if snap.DroppedFrames != 0 || snap.FramesSent != 0 {
		t.Errorf("ResetCounters() did not clear counters: %+v", snap)
	}
}

func TestMetrics_HashLifecycle(t *testing.T) {
	m := NewMetrics()
	if _, ok := m.LastHash(); ok {
		t.Fatalf("expected no hash recorded initially")
	}
	m.SetLastHash([16]byte{1, 2, 3})
	if h, ok := m.LastHash(); !ok || h != ([16]byte{1, 2, 3}) {
		t.Fatalf("LastHash() = %v, %v, want {1,2,3}, true", h, ok)
	}
	m.ClearHash()
	if _, ok := m.LastHash(); ok {
		t.Errorf("expected hash cleared after ClearHash()")
	}
}
