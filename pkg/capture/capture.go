// Package capture grabs screen contents for the zoom overlay. The grab
// strategy depends on the display server protocol and, on Wayland, on the
// desktop environment: X11 sessions are grabbed directly, Wayland sessions
// go through the GNOME or KDE compositor D-Bus screenshot services.
package capture

import (
	"image"
	"image/draw"

	"github.com/kbinani/screenshot"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/spotbeam/spotbeam/pkg/desktop"
)

// Screen describes one output's geometry in virtual desktop coordinates.
type Screen struct {
	Index    int
	Geometry image.Rectangle
}

// Grabber is one concrete grab strategy.
type Grabber interface {
	// Grab captures the screen. Implementations may return an image larger
	// than the requested screen; the dispatcher crops the result.
	Grab(screen Screen) (image.Image, error)

	// Name identifies the strategy in logs.
	Name() string
}

// Capturer selects and runs the grab strategy for the current session.
type Capturer struct {
	desktop *desktop.Desktop
	log     zerolog.Logger

	gnome   Grabber
	kde     Grabber
	x11     Grabber
	virtual Grabber

	numDisplays func() int
}

// New creates a Capturer wired with the real grab strategies.
func New(d *desktop.Desktop, tempDir string, log zerolog.Logger) *Capturer {
	return &Capturer{
		desktop:     d,
		log:         log,
		gnome:       &GnomeGrabber{TempDir: tempDir},
		kde:         &KDEGrabber{},
		x11:         &X11Grabber{},
		virtual:     &VirtualGrabber{},
		numDisplays: screenshot.NumActiveDisplays,
	}
}

// GrabScreen captures the given screen. Failures degrade to an empty
// image with a logged warning; the returned error describes the failure
// but the image is always usable.
func (c *Capturer) GrabScreen(screen Screen) (image.Image, error) {
	if c.desktop.IsWayland() {
		return c.grabWayland(screen)
	}

	// Multiple outputs form one big X11 virtual desktop. Grab the union
	// rectangle and crop, so coordinates stay consistent across screens.
	if c.numDisplays() > 1 {
		return c.runGrabber(c.virtual, screen)
	}

	// Everything else, usually plain X11.
	return c.runGrabber(c.x11, screen)
}

func (c *Capturer) grabWayland(screen Screen) (image.Image, error) {
	var grabber Grabber
	switch c.desktop.Type() {
	case desktop.Gnome:
		grabber = c.gnome
	case desktop.KDE:
		grabber = c.kde
	default:
		err := errors.New("zoom on Wayland is only supported via D-Bus on KDE and GNOME")
		c.log.Warn().Msg(err.Error())
		return emptyImage(), err
	}

	return c.runGrabber(grabber, screen)
}

func (c *Capturer) runGrabber(g Grabber, screen Screen) (image.Image, error) {
	img, err := g.Grab(screen)
	if err != nil {
		c.log.Warn().Err(err).Str("grabber", g.Name()).Msg("screen capture failed")
		return emptyImage(), err
	}
	return cropTo(img, screen.Geometry), nil
}

// Screens enumerates the active displays.
func Screens() []Screen {
	n := screenshot.NumActiveDisplays()
	out := make([]Screen, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Screen{Index: i, Geometry: screenshot.GetDisplayBounds(i)})
	}
	return out
}

// PrimaryScreen returns the first active display, or a zero screen when
// none can be enumerated.
func PrimaryScreen() Screen {
	screens := Screens()
	if len(screens) == 0 {
		return Screen{}
	}
	return screens[0]
}

func emptyImage() image.Image {
	return image.NewRGBA(image.Rectangle{})
}

// cropTo extracts the part of img covering geometry. Images already
// matching the geometry are returned as-is.
func cropTo(img image.Image, geometry image.Rectangle) image.Image {
	if img.Bounds() == geometry || geometry.Empty() {
		return img
	}

	region := geometry.Intersect(img.Bounds())
	if region.Empty() {
		return img
	}

	out := image.NewRGBA(image.Rect(0, 0, region.Dx(), region.Dy()))
	draw.Draw(out, out.Bounds(), img, region.Min, draw.Src)
	return out
}
