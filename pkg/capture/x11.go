package capture

import (
	"image"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
	"github.com/pkg/errors"
)

// X11Grabber grabs a screen region straight off the X11 root window.
type X11Grabber struct{}

func (g *X11Grabber) Name() string {
	return "x11"
}

func (g *X11Grabber) Grab(screen Screen) (image.Image, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to X server")
	}
	defer conn.Close()

	setup := xproto.Setup(conn)
	root := setup.DefaultScreen(conn)
	drawable := xproto.Drawable(root.Root)

	geo := screen.Geometry
	if geo.Empty() {
		geo = image.Rect(0, 0, int(root.WidthInPixels), int(root.HeightInPixels))
	}

	reply, err := xproto.GetImage(
		conn,
		xproto.ImageFormatZPixmap,
		drawable,
		int16(geo.Min.X), int16(geo.Min.Y),
		uint16(geo.Dx()), uint16(geo.Dy()),
		0xffffffff,
	).Reply()
	if err != nil {
		return nil, errors.Wrap(err, "x11 GetImage failed")
	}

	return zPixmapToRGBA(reply.Data, geo), nil
}

// zPixmapToRGBA converts little-endian BGRx ZPixmap data into an RGBA
// image positioned at the screen's virtual desktop coordinates.
func zPixmapToRGBA(data []byte, geometry image.Rectangle) *image.RGBA {
	img := image.NewRGBA(geometry)
	n := geometry.Dx() * geometry.Dy() * 4
	if len(data) < n {
		n = len(data) / 4 * 4
	}
	for i := 0; i < n; i += 4 {
		img.Pix[i+0] = data[i+2]
		img.Pix[i+1] = data[i+1]
		img.Pix[i+2] = data[i+0]
		img.Pix[i+3] = 0xff
	}
	return img
}
