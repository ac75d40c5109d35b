// Package engine owns the capture-encode-fan-out pipeline: a singleton
// CaptureEngine that samples the host display, deduplicates and coalesces
// frames, encodes them to JPEG, and distributes them to subscribers in
// subscription order.
package engine

// DisplayProfile is a fixed tuning point selected once at startup based on
// the real screen width. Profiles are consulted top-down; the first entry
// whose MinWidth the real width meets or exceeds wins.
type DisplayProfile struct {
	Name         string
	MinWidth     int
	DefaultWidth int
	JPEGQuality  int
	FPS          int
	MaxFrameKB   int
}

// Profiles is ordered from the widest displays to the narrowest. The last
// entry (MinWidth 0) is the catch-all for anything below QHD.
var Profiles = []DisplayProfile{
	{Name: "8K+", MinWidth: 7680, DefaultWidth: 960, JPEGQuality: 70, FPS: 20, MaxFrameKB: 512},
	{Name: "5K-6K", MinWidth: 5120, DefaultWidth: 1024, JPEGQuality: 75, FPS: 25, MaxFrameKB: 768},
	{Name: "4K", MinWidth: 3840, DefaultWidth: 1200, JPEGQuality: 80, FPS: 30, MaxFrameKB: 1024},
	{Name: "Ultrawide", MinWidth: 3440, DefaultWidth: 1280, JPEGQuality: 82, FPS: 35, MaxFrameKB: 1024},
	{Name: "QHD", MinWidth: 2560, DefaultWidth: 1440, JPEGQuality: 85, FPS: 40, MaxFrameKB: 1280},
	{Name: "FHD", MinWidth: 0, DefaultWidth: 1440, JPEGQuality: 85, FPS: 45, MaxFrameKB: 1536},
}

// SelectProfile returns the first profile whose MinWidth the given real
// screen width meets or exceeds.
func SelectProfile(screenWidth int) DisplayProfile {
	for _, p := range Profiles {
		if screenWidth >= p.MinWidth {
			return p
		}
	}
	return Profiles[len(Profiles)-1]
}
