package capture

import (
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/godbus/dbus/v5"
	"github.com/pkg/errors"
)

const (
	gnomeShellDest = "org.gnome.Shell"
	gnomeShellPath = "/org/gnome/Shell/Screenshot"

	// Leading zeros keep the file at the top of the temp dir listing.
	gnomeScreenshotName = "000_spotbeam_zoom_screenshot.png"
)

// GnomeGrabber captures the screen through the GNOME Shell screenshot
// D-Bus service. The shell writes a PNG file which is loaded and removed.
type GnomeGrabber struct {
	TempDir string
}

func (g *GnomeGrabber) Name() string {
	return "gnome-dbus"
}

func (g *GnomeGrabber) Grab(screen Screen) (image.Image, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to session bus")
	}

	tempDir := g.TempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	file := filepath.Join(tempDir, gnomeScreenshotName)

	obj := conn.Object(gnomeShellDest, gnomeShellPath)

	var success bool
	var usedFile string
	call := obj.Call("org.gnome.Shell.Screenshot.Screenshot", 0, false, false, file)
	if call.Err != nil {
		return nil, errors.Wrap(call.Err, "screenshot via GNOME D-Bus interface failed")
	}
	if err := call.Store(&success, &usedFile); err != nil {
		return nil, errors.Wrap(err, "unexpected GNOME screenshot reply")
	}
	if !success {
		return nil, errors.New("screenshot via GNOME D-Bus interface failed")
	}

	if usedFile == "" {
		usedFile = file
	}
	defer os.Remove(usedFile)

	f, err := os.Open(usedFile)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open GNOME screenshot file")
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode GNOME screenshot")
	}

	return img, nil
}
