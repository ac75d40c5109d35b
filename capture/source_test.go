package capture

import "testing"

func TestParseXrandrCurrent(t *testing.T) {
	tests := []struct {
		name       string
		out        string
		wantW      int
		wantH      int
		wantOK     bool
	}{
		{
			name:   "typical xrandr output",
			out:    "Screen 0: minimum 8 x 8, current 1920 x 1080, maximum 16384 x 16384\n",
			wantW:  1920,
			wantH:  1080,
			wantOK: true,
		},
		{
			name:   "no current marker",
			out:    "garbage output with no resolution info\n",
			wantOK: false,
		},
		{
			name:   "ultrawide resolution",
			out:    "Screen 0: minimum 8 x 8, current 3440 x 1440, maximum 16384 x 16384\n",
			wantW:  3440,
			wantH:  1440,
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, ok := parseXrandrCurrent([]byte(tt.out))
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("got (%d,%d), want (%d,%d)", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}
