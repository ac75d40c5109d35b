package engine

// QualityConfig is the live, mutable set of encode knobs: the target
// output width (height follows from the real aspect ratio), the JPEG
// quality, and the capture FPS.
type QualityConfig struct {
	Width       int
	JPEGQuality int
	FPS         int
}

// NewQualityConfig seeds a QualityConfig from a display profile's defaults.
func NewQualityConfig(p DisplayProfile) QualityConfig {
	return QualityConfig{Width: p.DefaultWidth, JPEGQuality: p.JPEGQuality, FPS: p.FPS}
}

// ControllerInputs is the evaluation snapshot the Controller reacts to.
// HighRes marks profiles at or above 4K, which step quality up and down in
// larger increments.
type ControllerInputs struct {
	AvgProcessingMs  float64
	AdaptiveInterval float64
	DropRate         float64
	Pressure         bool
	HighRes          bool
}

// degradeDropRateThreshold is the baseline drop-rate above which the
// controller degrades quality. Evaluate widens it by 1.5x under memory
// pressure, but pressure on its own already selects the degrade branch, so
// the widened threshold does not change the outcome.
const degradeDropRateThreshold = 0.15

// improveDropRateThreshold is the drop-rate below which, combined with fast
// processing and no pressure, the controller considers improving quality.
const improveDropRateThreshold = 0.05

// Controller is a pure decision-table evaluator: given a snapshot of recent
// performance, it nudges a QualityConfig up, down, or leaves it untouched.
// It never itself mutates Metrics; see Metrics.Snapshot.
type Controller struct {
	limits Limits
}

// NewController returns a Controller that clamps against limits.
func NewController(limits Limits) *Controller {
	return &Controller{limits: limits}
}

// Evaluate applies the degrade/improve/no-op decision table to cfg in
// place. The degrade branch always clamps against the static [MinWidth,
// MaxWidth] bound; the improve branch caps Width at profile.DefaultWidth
// rather than MaxWidth — an external quality-update message is the only
// way to push Width above a profile's default, and that asymmetry is
// intentional (see DESIGN.md).
func (c *Controller) Evaluate(cfg *QualityConfig, profile DisplayProfile, in ControllerInputs) {
	degradeThreshold := degradeDropRateThreshold
	if in.Pressure {
		degradeThreshold *= 1.5
	}

	switch {
	case in.DropRate > degradeThreshold || in.AvgProcessingMs > 0.8*in.AdaptiveInterval || in.Pressure:
		qualityStep, widthStep := 5, 128
		if in.HighRes {
			qualityStep, widthStep = 8, 192
		}
		cfg.JPEGQuality = clamp(cfg.JPEGQuality-qualityStep, c.limits.MinQuality, c.limits.MaxQuality)
		cfg.Width = clamp(cfg.Width-widthStep, c.limits.MinWidth, c.limits.MaxWidth)

	case in.DropRate < improveDropRateThreshold && in.AvgProcessingMs < 0.5*in.AdaptiveInterval && !in.Pressure:
		qualityStep := 1
		if in.HighRes {
			qualityStep = 2
		}
		cfg.JPEGQuality = clamp(cfg.JPEGQuality+qualityStep, c.limits.MinQuality, c.limits.MaxQuality)
		cfg.Width = clamp(cfg.Width+64, c.limits.MinWidth, profile.DefaultWidth)
	}
}

// ApplyExternalUpdate applies an explicit viewer-driven quality-update
// message. Unlike Controller.Evaluate, every field is validated
// independently against the static [limits.MinWidth,limits.MaxWidth]/
// [limits.MinQuality,limits.MaxQuality]/[MinFPS,MaxFPS] bounds, never
// against the active profile, so a viewer can request a width above the
// profile's default. A field left nil or out of bounds is left untouched.
// Reports whether anything changed.
func ApplyExternalUpdate(cfg *QualityConfig, limits Limits, width, jpegQuality, fps *int) (changed bool) {
	if width != nil && *width >= limits.MinWidth && *width <= limits.MaxWidth && *width != cfg.Width {
		cfg.Width = *width
		changed = true
	}
	if jpegQuality != nil && *jpegQuality >= limits.MinQuality && *jpegQuality <= limits.MaxQuality && *jpegQuality != cfg.JPEGQuality {
		cfg.JPEGQuality = *jpegQuality
		changed = true
	}
	if fps != nil && *fps >= MinFPS && *fps <= MaxFPS && *fps != cfg.FPS {
		cfg.FPS = *fps
		changed = true
	}
	return changed
}
