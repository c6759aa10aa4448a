// Package desktop detects the Linux desktop environment and display
// server protocol of the current session.
package desktop

import (
	"os"
	"strings"
)

// Type identifies the desktop environment family.
type Type int

const (
	Unknown Type = iota
	Gnome
	KDE
)

func (t Type) String() string {
	switch t {
	case Gnome:
		return "gnome"
	case KDE:
		return "kde"
	default:
		return "unknown"
	}
}

// Desktop holds the detected session properties.
type Desktop struct {
	typ     Type
	wayland bool
}

// Detect inspects the session environment variables. GNOME is checked
// before KDE; a session matching neither stays Unknown.
func Detect() *Desktop {
	d := &Desktop{}

	kdeFullSession := os.Getenv("KDE_FULL_SESSION")
	gnomeSessionID := os.Getenv("GNOME_DESKTOP_SESSION_ID")
	desktopSession := os.Getenv("DESKTOP_SESSION")
	xdgCurrentDesktop := os.Getenv("XDG_CURRENT_DESKTOP")

	if gnomeSessionID != "" || strings.Contains(strings.ToLower(xdgCurrentDesktop), "gnome") {
		d.typ = Gnome
	} else if kdeFullSession != "" || desktopSession == "kde-plasma" {
		d.typ = KDE
	}

	waylandDisplay := os.Getenv("WAYLAND_DISPLAY")
	xdgSessionType := os.Getenv("XDG_SESSION_TYPE")
	d.wayland = xdgSessionType == "wayland" ||
		strings.Contains(strings.ToLower(waylandDisplay), "wayland")

	return d
}

// Type returns the detected desktop environment.
func (d *Desktop) Type() Type {
	return d.typ
}

// IsWayland reports whether the session runs on Wayland.
func (d *Desktop) IsWayland() bool {
	return d.wayland
}
