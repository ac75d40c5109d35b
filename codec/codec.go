// Package codec implements engine.ImageCodec against the standard image
// packages and golang.org/x/image/draw, the ecosystem-standard resize
// library for cases (like this one) where image/draw's own Draw does not
// offer a selectable interpolation filter.
package codec

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // registers the PNG decoder for screenshot utilities that emit PNG

	"golang.org/x/image/draw"

	"github.com/oldirty/AirCodum/engine"
)

// StdImageCodec decodes raw captured frames with the standard library's
// registered image decoders and encodes with image/jpeg.
type StdImageCodec struct{}

// New returns a ready-to-use StdImageCodec.
func New() *StdImageCodec {
	return &StdImageCodec{}
}

// Decode implements engine.ImageCodec.
func (c *StdImageCodec) Decode(data []byte) (engine.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode captured frame: %w", err)
	}
	return &stdImage{img: img}, nil
}

type stdImage struct {
	img image.Image
}

func (s *stdImage) Bounds() (int, int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

func (s *stdImage) Resize(width, height int, filter engine.ResizeFilter) engine.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	scaler := draw.Scaler(draw.BiLinear)
	if filter == engine.FilterNearestNeighbor {
		scaler = draw.NearestNeighbor
	}
	scaler.Scale(dst, dst.Bounds(), s.img, s.img.Bounds(), draw.Over, nil)
	return &stdImage{img: dst}
}

func (s *stdImage) EncodeJPEG(quality int, opts engine.JPEGOptions) ([]byte, error) {
	var buf bytes.Buffer
	// image/jpeg only ever produces baseline, non-progressive output with
	// fixed 4:2:0-style chroma subsampling and non-optimized ("fast")
	// Huffman tables, which is exactly the Progressive=false/FastEntropy=true
	// combination the engine asks for; opts exists so a future codec with a
	// real progressive/optimized mode has somewhere to read the flags from.
	if err := jpeg.Encode(&buf, s.img, &jpeg.Options{Quality: clampQuality(quality)}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

func clampQuality(q int) int {
	if q < 1 {
		return 1
	}
	if q > 100 {
		return 100
	}
	return q
}
