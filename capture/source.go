// Package capture provides a reference engine.ScreenSource for Linux
// hosts. The port itself is implementer-provided per the wider spec; this
// is the one concrete implementation shipped so the module runs
// end-to-end rather than only against fakes in tests.
package capture

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"github.com/oldirty/AirCodum/engine"
)

// LinuxScreenSource captures the host display by shelling out to whichever
// screenshot utility is available, falling back through the chain until
// one produces output. Wayland compositors typically ship grim; X11
// desktops typically ship scrot.
type LinuxScreenSource struct {
	commands [][]string
}

// NewLinuxScreenSource returns a LinuxScreenSource with the default
// grim-then-scrot fallback chain.
func NewLinuxScreenSource() *LinuxScreenSource {
	return &LinuxScreenSource{
		commands: [][]string{
			{"grim", "-"},
			{"scrot", "-o", "/dev/stdout"},
		},
	}
}

// Capture implements engine.ScreenSource.
func (s *LinuxScreenSource) Capture(ctx context.Context) ([]byte, error) {
	var lastErr error
	for _, argv := range s.commands {
		data, err := runCapture(ctx, argv)
		if err == nil {
			return data, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("no screenshot utility succeeded: %w", lastErr)
}

func runCapture(ctx context.Context, argv []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w", argv[0], err)
	}
	if out.Len() == 0 {
		return nil, fmt.Errorf("%s produced no output", argv[0])
	}
	return out.Bytes(), nil
}

// DetectScreenSize queries the host's real display resolution via xrandr,
// falling back to a conservative default if detection fails (headless
// hosts, missing xrandr, or a Wayland session without an X11 compat
// layer).
func DetectScreenSize(ctx context.Context) (engine.ScreenSize, error) {
	cmd := exec.CommandContext(ctx, "xrandr", "--current")
	out, err := cmd.Output()
	if err != nil {
		return engine.ScreenSize{Width: 1920, Height: 1080}, fmt.Errorf("xrandr unavailable, defaulting to 1920x1080: %w", err)
	}

	w, h, ok := parseXrandrCurrent(out)
	if !ok {
		return engine.ScreenSize{Width: 1920, Height: 1080}, fmt.Errorf("could not parse xrandr output, defaulting to 1920x1080")
	}
	return engine.ScreenSize{Width: w, Height: h}, nil
}

func parseXrandrCurrent(out []byte) (width, height int, ok bool) {
	var w, h int
	n, err := fmt.Sscanf(firstCurrentLine(out), "%dx%d", &w, &h)
	if err != nil || n != 2 {
		return 0, 0, false
	}
	return w, h, true
}

// firstCurrentLine extracts the "WIDTHxHEIGHT" token following "current"
// on the first matching line of xrandr's output, e.g.
// "Screen 0: ... current 1920 x 1080, maximum ...".
func firstCurrentLine(out []byte) string {
	const marker = "current "
	idx := bytes.Index(out, []byte(marker))
	if idx < 0 {
		return ""
	}
	rest := out[idx+len(marker):]
	end := bytes.IndexByte(rest, ',')
	if end < 0 {
		end = len(rest)
	}
	field := bytes.TrimSpace(rest[:end])
	return string(bytes.ReplaceAll(field, []byte(" "), nil))
}
