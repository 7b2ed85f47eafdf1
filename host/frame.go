package host

import (
	"image"
	"image/color"
	"image/png"
	"io"

	"golang.org/x/image/draw"

	"github.com/nf/ch8/chip8"
)

// Pixel colors used when rendering a display to an image.
var (
	OnColor  = color.RGBA{0xe0, 0xf0, 0xd0, 0xff}
	OffColor = color.RGBA{0x10, 0x18, 0x10, 0xff}
)

// Frame renders d into dst, one image pixel per display pixel, with the
// display's origin at dst.Rect.Min. Pixels outside dst are skipped.
func Frame(dst *image.RGBA, d *chip8.Display) {
	for y := 0; y < chip8.DisplayHeight; y++ {
		for x := 0; x < chip8.DisplayWidth; x++ {
			c := OffColor
			if d[x][y] {
				c = OnColor
			}
			p := image.Pt(dst.Rect.Min.X+x, dst.Rect.Min.Y+y)
			if !p.In(dst.Rect) {
				continue
			}
			i := dst.PixOffset(p.X, p.Y)
			dst.Pix[i+0] = c.R
			dst.Pix[i+1] = c.G
			dst.Pix[i+2] = c.B
			dst.Pix[i+3] = c.A
		}
	}
}

// Snapshot returns d rendered as an image enlarged scale times.
func Snapshot(d *chip8.Display, scale int) *image.RGBA {
	src := image.NewRGBA(image.Rect(0, 0, chip8.DisplayWidth, chip8.DisplayHeight))
	Frame(src, d)
	if scale <= 1 {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, chip8.DisplayWidth*scale, chip8.DisplayHeight*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// WritePNG writes a snapshot of d to w in PNG format.
func WritePNG(w io.Writer, d *chip8.Display, scale int) error {
	return png.Encode(w, Snapshot(d, scale))
}
