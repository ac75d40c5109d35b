package input

import "testing"

func TestButtonCode(t *testing.T) {
	tests := []struct {
		button MouseButton
		want   int32
	}{
		{ButtonLeft, 0x110},
		{ButtonRight, 0x111},
		{ButtonMiddle, 0x112},
		{MouseButton("unknown"), 0x110},
	}

	for _, tt := range tests {
		if got := buttonCode(tt.button); got != tt.want {
			t.Errorf("buttonCode(%q) = %#x, want %#x", tt.button, got, tt.want)
		}
	}
}

func TestKeysymFor(t *testing.T) {
	if got := keysymFor("a"); got != uint32('a') {
		t.Errorf("keysymFor(%q) = %d, want %d", "a", got, uint32('a'))
	}
	if got := keysymFor("Return"); got != 0 {
		t.Errorf("keysymFor(%q) = %d, want 0 (named keys are not resolved, fall through to ydotool)", "Return", got)
	}
	if got := keysymFor(""); got != 0 {
		t.Errorf("keysymFor(\"\") = %d, want 0", got)
	}
}

func TestLinuxInjector_ZeroValueHasNoSession(t *testing.T) {
	// A zero-value LinuxInjector has neither a D-Bus connection nor a
	// negotiated session, which is the state in which every method skips
	// the D-Bus path and uses the ydotool fallback.
	l := &LinuxInjector{}
	if l.conn != nil || l.sessionPath != "" {
		t.Fatalf("zero-value LinuxInjector unexpectedly has conn=%v sessionPath=%q", l.conn, l.sessionPath)
	}
}
