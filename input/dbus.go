package input

import (
	"fmt"
	"os/exec"
	"strconv"

	"github.com/godbus/dbus/v5"
)

const (
	remoteDesktopDest      = "org.gnome.Mutter.RemoteDesktop"
	remoteDesktopPath      = "/org/gnome/Mutter/RemoteDesktop"
	remoteDesktopInterface = "org.gnome.Mutter.RemoteDesktop"
	remoteDesktopSessionIf = "org.gnome.Mutter.RemoteDesktop.Session"
)

// LinuxInjector talks to the GNOME Shell remote-desktop D-Bus portal when
// a session bus is reachable and a RemoteDesktop session was successfully
// created and started, and falls back to shelling out to ydotool
// otherwise (headless hosts, window managers other than Mutter, or a
// missing portal grant).
type LinuxInjector struct {
	conn        *dbus.Conn
	sessionPath dbus.ObjectPath
}

// NewLinuxInjector connects to the session bus and negotiates a
// RemoteDesktop session if one is reachable. Neither step is fatal: every
// method below falls back to ydotool when conn is nil or sessionPath was
// never populated.
func NewLinuxInjector() (*LinuxInjector, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return &LinuxInjector{}, fmt.Errorf("session bus unavailable, falling back to ydotool only: %w", err)
	}

	l := &LinuxInjector{conn: conn}
	if err := l.createAndStartSession(); err != nil {
		return l, fmt.Errorf("RemoteDesktop session unavailable, falling back to ydotool only: %w", err)
	}
	return l, nil
}

// createAndStartSession calls RemoteDesktop.CreateSession then
// Session.Start, populating sessionPath on success so the NotifyXxx calls
// below have somewhere to send input to.
func (l *LinuxInjector) createAndStartSession() error {
	rdObj := l.conn.Object(remoteDesktopDest, remoteDesktopPath)

	var sessionPath dbus.ObjectPath
	if err := rdObj.Call(remoteDesktopInterface+".CreateSession", 0).Store(&sessionPath); err != nil {
		return fmt.Errorf("create RemoteDesktop session: %w", err)
	}

	session := l.conn.Object(remoteDesktopDest, sessionPath)
	if err := session.Call(remoteDesktopSessionIf+".Start", 0).Err; err != nil {
		return fmt.Errorf("start RemoteDesktop session: %w", err)
	}

	l.sessionPath = sessionPath
	return nil
}

func (l *LinuxInjector) MoveMouse(x, y int) error {
	if l.conn != nil && l.sessionPath != "" {
		obj := l.conn.Object(remoteDesktopDest, l.sessionPath)
		call := obj.Call(remoteDesktopSessionIf+".NotifyPointerMotionAbsolute", 0, uint32(0), float64(x), float64(y))
		if call.Err == nil {
			return nil
		}
	}
	return runYdotool("mousemove", "--absolute", "-x", strconv.Itoa(x), "-y", strconv.Itoa(y))
}

func (l *LinuxInjector) ToggleMouseButton(state ButtonState, button MouseButton) error {
	if l.conn != nil && l.sessionPath != "" {
		obj := l.conn.Object(remoteDesktopDest, l.sessionPath)
		call := obj.Call(remoteDesktopSessionIf+".NotifyPointerButton", 0, buttonCode(button), state == StateDown)
		if call.Err == nil {
			return nil
		}
	}
	arg := "0"
	if state == StateDown {
		arg = "1"
	}
	return runYdotool("click", "--button", string(button), arg)
}

func (l *LinuxInjector) TapKey(key string, modifier string) error {
	if keysym := keysymFor(key); keysym != 0 && l.conn != nil && l.sessionPath != "" {
		obj := l.conn.Object(remoteDesktopDest, l.sessionPath)
		call := obj.Call(remoteDesktopSessionIf+".NotifyKeyboardKeysym", 0, keysym, true)
		if call.Err == nil {
			obj.Call(remoteDesktopSessionIf+".NotifyKeyboardKeysym", 0, keysym, false)
			return nil
		}
	}
	combo := key
	if modifier != "" {
		combo = modifier + "+" + key
	}
	return runYdotool("key", combo)
}

func runYdotool(args ...string) error {
	cmd := exec.Command("ydotool", args...)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ydotool %v: %w", args, err)
	}
	return nil
}

// buttonCode maps a named button to the evdev BTN_* code NotifyPointerButton
// expects.
func buttonCode(b MouseButton) int32 {
	switch b {
	case ButtonRight:
		return 0x111 // BTN_RIGHT
	case ButtonMiddle:
		return 0x112 // BTN_MIDDLE
	default:
		return 0x110 // BTN_LEFT
	}
}

// keysymFor maps a single printable character to its X11 keysym value.
// Non-printable/named keys (arrows, function keys) are not handled by this
// reference implementation and fall through to ydotool, which accepts
// names directly.
func keysymFor(key string) uint32 {
	if len(key) == 1 {
		return uint32(key[0])
	}
	return 0
}
