package codec

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/oldirty/AirCodum/engine"
)

func encodeFixture(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("failed to build fixture: %v", err)
	}
	return buf.Bytes()
}

func TestStdImageCodec_DecodeBounds(t *testing.T) {
	c := New()
	data := encodeFixture(t, 64, 48)

	img, err := c.Decode(data)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	w, h := img.Bounds()
	if w != 64 || h != 48 {
		t.Errorf("Bounds() = (%d,%d), want (64,48)", w, h)
	}
}

func TestStdImageCodec_ResizeChangesBounds(t *testing.T) {
	c := New()
	img, err := c.Decode(encodeFixture(t, 200, 100))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}

	resized := img.Resize(100, 50, engine.FilterBilinear)
	w, h := resized.Bounds()
	if w != 100 || h != 50 {
		t.Errorf("Bounds() after resize = (%d,%d), want (100,50)", w, h)
	}
}

func TestStdImageCodec_EncodeJPEGProducesValidOutput(t *testing.T) {
	c := New()
	img, err := c.Decode(encodeFixture(t, 32, 32))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}

	out, err := img.EncodeJPEG(80, engine.JPEGOptions{FastEntropy: true})
	if err != nil {
		t.Fatalf("EncodeJPEG returned error: %v", err)
	}
	if _, err := jpeg.Decode(bytes.NewReader(out)); err != nil {
		t.Errorf("EncodeJPEG produced invalid JPEG: %v", err)
	}
}
