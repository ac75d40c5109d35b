package engine

import "testing"

func TestSelectProfile(t *testing.T) {
	tests := []struct {
		name        string
		screenWidth int
		wantName    string
	}{
		{"below every threshold", 800, "FHD"},
		{"exact FHD-class width", 1920, "FHD"},
		{"exact QHD boundary", 2560, "QHD"},
		{"between QHD and ultrawide", 3000, "QHD"},
		{"exact ultrawide boundary", 3440, "Ultrawide"},
		{"exact 4K boundary", 3840, "4K"},
		{"exact 5K boundary", 5120, "5K-6K"},
		{"exact 8K boundary", 7680, "8K+"},
		{"above every threshold", 15360, "8K+"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SelectProfile(tt.screenWidth)
			if got.Name != tt.wantName {
				t.Errorf("SelectProfile(%d).Name = %q, want %q", tt.screenWidth, got.Name, tt.wantName)
			}
		})
	}
}
