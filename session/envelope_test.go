package session

import "testing"

func TestParseBinary_MouseEvent(t *testing.T) {
	in := ParseBinary([]byte(`{"type":"mouse-event","x":400,"y":300,"eventType":"down","screenWidth":800,"screenHeight":600}`))
	if in.Kind != InboundMouseEvent {
		t.Fatalf("Kind = %v, want InboundMouseEvent", in.Kind)
	}
	if in.Mouse.X != 400 || in.Mouse.Y != 300 || in.Mouse.EventType != "down" {
		t.Errorf("Mouse = %+v, unexpected", in.Mouse)
	}
}

func TestParseBinary_KeyboardEvent(t *testing.T) {
	in := ParseBinary([]byte(`{"type":"keyboard-event","key":"a","modifier":"ctrl"}`))
	if in.Kind != InboundKeyboardEvent {
		t.Fatalf("Kind = %v, want InboundKeyboardEvent", in.Kind)
	}
	if in.Keyboard.Key != "a" || in.Keyboard.Modifier != "ctrl" {
		t.Errorf("Keyboard = %+v, unexpected", in.Keyboard)
	}
}

func TestParseBinary_QualityUpdate(t *testing.T) {
	in := ParseBinary([]byte(`{"type":"quality-update","width":1280,"fps":30}`))
	if in.Kind != InboundQualityUpdate {
		t.Fatalf("Kind = %v, want InboundQualityUpdate", in.Kind)
	}
	if in.Quality.Width == nil || *in.Quality.Width != 1280 {
		t.Errorf("Quality.Width = %v, want 1280", in.Quality.Width)
	}
	if in.Quality.JPEGQuality != nil {
		t.Errorf("Quality.JPEGQuality = %v, want nil (omitted field)", in.Quality.JPEGQuality)
	}
}

func TestParseBinary_UnknownTypeFallsThroughToCommandOrUpload(t *testing.T) {
	in := ParseBinary([]byte(`{"type":"some-future-envelope","foo":"bar"}`))
	if in.Kind != InboundCommandOrUpload {
		t.Fatalf("Kind = %v, want InboundCommandOrUpload for an unrecognized type", in.Kind)
	}
}

func TestParseBinary_UnparseableFallsThroughToCommandOrUpload(t *testing.T) {
	raw := []byte{0x00, 0x01, 0xFF, 0xFE, 'n', 'o', 't', 'j', 's', 'o', 'n'}
	in := ParseBinary(raw)
	if in.Kind != InboundCommandOrUpload {
		t.Fatalf("Kind = %v, want InboundCommandOrUpload for non-JSON binary", in.Kind)
	}
	if string(in.Raw) != string(raw) {
		t.Errorf("Raw payload not preserved for the command/upload branch")
	}
}

func TestParseText_QualityUpdate(t *testing.T) {
	in := ParseText(`{"type":"quality-update","jpegQuality":75}`)
	if in.Kind != InboundQualityUpdate {
		t.Fatalf("Kind = %v, want InboundQualityUpdate", in.Kind)
	}
}

func TestParseText_PlainChat(t *testing.T) {
	in := ParseText("hello there")
	if in.Kind != InboundChat {
		t.Fatalf("Kind = %v, want InboundChat", in.Kind)
	}
	if in.Text != "hello there" {
		t.Errorf("Text = %q, want %q", in.Text, "hello there")
	}
}
