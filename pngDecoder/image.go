package pngDecoder

import (
	"image"
	"image/color"

	"github.com/elliotchance/orderedmap/v3"
)

// Image is a decoded PNG. Pixels holds Width*Height values, row-major, top row
// first.
type Image struct {
	IHDR
	Pixels []Pixel

	// Ancillary counts every chunk the decoder skipped, keyed by its tag, in
	// the order each tag first appeared.
	Ancillary *orderedmap.OrderedMap[string, int]
}

func (img *Image) PixelAt(x, y int) Pixel {
	return img.Pixels[y*int(img.Width)+x]
}

func (img *Image) ColorModel() color.Model {
	return color.NRGBAModel
}

func (img *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, int(img.Width), int(img.Height))
}

func (img *Image) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}.In(img.Bounds())) {
		return color.NRGBA{}
	}
	p := img.PixelAt(x, y)
	return color.NRGBA{R: p.R, G: p.G, B: p.B, A: p.A}
}

// NRGBA copies the pixels into a standard library image.
func (img *Image) NRGBA() *image.NRGBA {
	dst := image.NewNRGBA(img.Bounds())
	for i, p := range img.Pixels {
		dst.Pix[i*4] = p.R
		dst.Pix[i*4+1] = p.G
		dst.Pix[i*4+2] = p.B
		dst.Pix[i*4+3] = p.A
	}
	return dst
}
