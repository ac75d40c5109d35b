package session

import "testing"

func TestSupportsCommand(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"type prefix", "type hello world", true},
		{"type prefix uppercase", "TYPE hello world", true},
		{"keytap prefix", "keytap ctrl+s", true},
		{"go to line", "go to line 42", true},
		{"open file", "open file main.go", true},
		{"search prefix", "search TODO", true},
		{"replace prefix", "replace foo with bar", true},
		{"cline mention", "@cline fix this bug", true},
		{"plain chat text", "hey, how's it going?", false},
		{"binary-looking text", "\x00\x01\x02", false},
		{"empty string", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SupportsCommand(tt.text); got != tt.want {
				t.Errorf("SupportsCommand(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}
