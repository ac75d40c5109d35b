package engine

import "math"

// ScreenSize is the real, physical resolution of the captured display. It
// is read once at engine initialization; the engine does not react to
// resolution changes mid-session (see Non-goals).
type ScreenSize struct {
	Width  int
	Height int
}

// ScaledDims is the width/height a frame is resized to before encoding,
// derived from the active QualityConfig.Width and the real aspect ratio.
type ScaledDims struct {
	Width  int
	Height int
}

// ComputeScaledDims derives the output height for a target width that
// preserves the real display's aspect ratio.
func ComputeScaledDims(width int, real ScreenSize) ScaledDims {
	if real.Width == 0 {
		return ScaledDims{Width: width, Height: width}
	}
	height := int(math.Floor(float64(width) * float64(real.Height) / float64(real.Width)))
	return ScaledDims{Width: width, Height: height}
}

// Frame is one raw sample pulled from the ScreenSource, prior to decode,
// resize, or encode.
type Frame struct {
	Data []byte
	Real ScreenSize
}

// EncodedFrame is a JPEG-encoded frame small enough to be delivered in a
// single screen-update envelope.
type EncodedFrame struct {
	Data []byte
	Dims ScaledDims
	Size int
}

// ChunkedFrame is an encoded frame too large for a single envelope, split
// into sequentially-indexed chunks.
type ChunkedFrame struct {
	Chunks []Chunk
	Total  int
	Dims   ScaledDims
}

// Delivery is what a subscriber callback receives: exactly one of Encoded
// or Chunked is set.
type Delivery struct {
	Encoded *EncodedFrame
	Chunked *ChunkedFrame
}
