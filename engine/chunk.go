package engine

// Chunk is one piece of an encoded frame too large to deliver as a single
// screen-update envelope. Indexing mirrors the teacher's RTP packetizer:
// a dedicated struct carrying position and total count rather than bare
// byte slices, so a receiver can detect gaps without a separate header.
type Chunk struct {
	Data        []byte
	Index       int
	Total       int
	IsLastChunk bool
}

// NeedsChunking reports whether an encoded frame's size exceeds the active
// profile's MaxFrameKB and should be split before delivery.
func NeedsChunking(encodedSize int, profile DisplayProfile) bool {
	return encodedSize/1024 > profile.MaxFrameKB
}

// SplitChunks splits data into ChunkSize-sized pieces. The final chunk may
// be shorter than ChunkSize. An empty input still yields exactly one
// (empty) chunk, so callers never have to special-case a zero-length frame.
func SplitChunks(data []byte) []Chunk {
	total := (len(data) + ChunkSize - 1) / ChunkSize
	if total == 0 {
		total = 1
	}

	chunks := make([]Chunk, 0, total)
	for i := 0; i < total; i++ {
		start := i * ChunkSize
		end := start + ChunkSize
		if end > len(data) {
			end = len(data)
		}
		chunks = append(chunks, Chunk{
			Data:        data[start:end],
			Index:       i,
			Total:       total,
			IsLastChunk: i == total-1,
		})
	}
	return chunks
}
