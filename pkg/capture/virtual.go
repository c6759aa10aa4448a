package capture

import (
	"image"

	"github.com/kbinani/screenshot"
	"github.com/pkg/errors"
)

// VirtualGrabber captures the union rectangle of all displays, covering
// multi-output X11 virtual desktops. The dispatcher crops the result to
// the requested screen.
type VirtualGrabber struct{}

func (g *VirtualGrabber) Name() string {
	return "virtual-desktop"
}

func (g *VirtualGrabber) Grab(screen Screen) (image.Image, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, errors.New("no active displays found")
	}

	union := screenshot.GetDisplayBounds(0)
	for i := 1; i < n; i++ {
		union = union.Union(screenshot.GetDisplayBounds(i))
	}

	img, err := screenshot.CaptureRect(union)
	if err != nil {
		return nil, errors.Wrap(err, "failed to capture virtual desktop")
	}

	// CaptureRect returns an image rooted at (0,0); shift it back into
	// virtual desktop coordinates so cropping by screen geometry works.
	img.Rect = img.Rect.Add(union.Min)
	return img, nil
}
