package engine

import "time"

const (
	// defaultCoalesceMaxWait is Limits.CoalesceMaxWait's value absent a
	// config override.
	defaultCoalesceMaxWait = 100 * time.Millisecond

	// defaultPerformanceCheckInterval is Limits.PerformanceCheckInterval's
	// value absent a config override.
	defaultPerformanceCheckInterval = 2 * time.Second

	// statsResetInterval is how often dropped/sent counters are reset. Per
	// design, this is independent of PerformanceCheckInterval: the
	// controller only reads counters, it never resets them. Not operator
	// tunable: unlike the other constants here it has no config-facing
	// rationale, it's purely an internal bookkeeping cadence.
	statsResetInterval = time.Second

	// MinFrameIntervalMs is the floor frame interval used as the reference
	// point for the "is processing keeping up" comparisons in encode().
	MinFrameIntervalMs = 33.0

	// ChunkSize is the maximum payload size of a single screen-update-chunk
	// envelope's binary payload, before base64 encoding.
	ChunkSize = 32 * 1024

	// defaultMinWidth, defaultMaxWidth, defaultMinQuality, defaultMaxQuality
	// are Limits' values absent a config override. MinFPS/MaxFPS are not
	// operator-configurable (no config field claims otherwise) and stay as
	// plain constants.
	defaultMinWidth   = 800
	defaultMaxWidth   = 1920
	defaultMinQuality = 60
	defaultMaxQuality = 90
	MinFPS            = 1
	MaxFPS            = 60
)

// Limits holds the operator-tunable bounds and timings that were static
// constants in the teacher's equivalent code: the coalesce wait, the
// quality-controller cadence, and the static width/quality clamp range.
// DefaultLimits seeds the values every CaptureEngine starts with;
// CaptureEngine.SetLimits lets an operator re-tune them from config,
// mirroring the SetMemoryCeiling override pattern.
type Limits struct {
	CoalesceMaxWait          time.Duration
	PerformanceCheckInterval time.Duration
	MinWidth, MaxWidth       int
	MinQuality, MaxQuality   int
}

// DefaultLimits returns the static bounds spec'd for this pipeline,
// matching the pre-config-wiring hardcoded values.
func DefaultLimits() Limits {
	return Limits{
		CoalesceMaxWait:          defaultCoalesceMaxWait,
		PerformanceCheckInterval: defaultPerformanceCheckInterval,
		MinWidth:                 defaultMinWidth,
		MaxWidth:                 defaultMaxWidth,
		MinQuality:               defaultMinQuality,
		MaxQuality:               defaultMaxQuality,
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
