package engine

import "context"

// ScreenSource is the narrow capture port the engine samples through. The
// engine treats it as an opaque external collaborator the same way the
// teacher treats its GStreamer subprocess: it knows nothing about how
// bytes get produced, only that Capture returns one raw still image per
// call.
type ScreenSource interface {
	Capture(ctx context.Context) ([]byte, error)
}

// ResizeFilter selects the interpolation strategy used when scaling a
// decoded frame down to the active QualityConfig.Width.
type ResizeFilter int

const (
	FilterBilinear ResizeFilter = iota
	FilterNearestNeighbor
)

// JPEGOptions mirrors the encode-time flags spec'd for the codec: baseline
// (non-progressive) output, a fixed chroma subsampling scheme, and
// non-optimized ("fast") Huffman tables so encode latency stays bounded
// under load.
type JPEGOptions struct {
	Progressive       bool
	ChromaSubsampling bool
	FastEntropy       bool
}

// Image is a decoded frame a codec hands back, ready to be resized and
// re-encoded.
type Image interface {
	Bounds() (width, height int)
	Resize(width, height int, filter ResizeFilter) Image
	EncodeJPEG(quality int, opts JPEGOptions) ([]byte, error)
}

// ImageCodec decodes a raw captured frame into an Image the engine can
// resize and encode.
type ImageCodec interface {
	Decode(data []byte) (Image, error)
}
