package pngDecoder

import (
	"bytes"
	"encoding/binary"
	"math"
	"math/bits"
)

const ihdrLength = 13

// ColorType is the color model tag from IHDR.
type ColorType byte

const (
	Grayscale      ColorType = 0
	Truecolor      ColorType = 2
	Indexed        ColorType = 3
	GrayscaleAlpha ColorType = 4
	TruecolorAlpha ColorType = 6
)

func (ct ColorType) String() string {
	switch ct {
	case Grayscale:
		return "grayscale"
	case Truecolor:
		return "truecolor"
	case Indexed:
		return "indexed"
	case GrayscaleAlpha:
		return "grayscale+alpha"
	case TruecolorAlpha:
		return "truecolor+alpha"
	}
	return "unknown"
}

// Channels returns the number of samples per pixel, or 0 for an unknown tag.
func (ct ColorType) Channels() int {
	switch ct {
	case Grayscale, Indexed:
		return 1
	case GrayscaleAlpha:
		return 2
	case Truecolor:
		return 3
	case TruecolorAlpha:
		return 4
	}
	return 0
}

// allowedDepths maps each color type to its legal bit depths.
var allowedDepths = map[ColorType][]byte{
	Grayscale:      {1, 2, 4, 8, 16},
	Truecolor:      {8, 16},
	Indexed:        {1, 2, 4, 8},
	GrayscaleAlpha: {8, 16},
	TruecolorAlpha: {8, 16},
}

type IHDR struct {
	Width             uint32
	Height            uint32
	BitDepth          byte
	ColorType         ColorType
	CompressionMethod byte
	FilterMethod      byte
	InterlaceMethod   byte
}

// ParseIHDR decodes and validates a header chunk payload.
func ParseIHDR(data []byte) (IHDR, error) {
	var ihdr IHDR
	if len(data) != ihdrLength {
		return ihdr, newError(InvalidHeaderLength, "IHDR is %d bytes, want %d", len(data), ihdrLength)
	}
	if err := binary.Read(bytes.NewReader(data), binary.BigEndian, &ihdr); err != nil {
		return ihdr, wrapError(err, InvalidHeaderLength, "reading IHDR")
	}
	if err := ihdr.validate(); err != nil {
		return IHDR{}, err
	}
	return ihdr, nil
}

func (ihdr *IHDR) validate() error {
	if ihdr.Width == 0 || ihdr.Width > math.MaxInt32 {
		return newError(InvalidDimension, "width %d", ihdr.Width)
	}
	if ihdr.Height == 0 || ihdr.Height > math.MaxInt32 {
		return newError(InvalidDimension, "height %d", ihdr.Height)
	}

	depths, ok := allowedDepths[ihdr.ColorType]
	if !ok {
		return newError(InvalidColorModel, "color type %d", ihdr.ColorType)
	}
	if ihdr.ColorType == Indexed {
		return unsupported("palette")
	}
	if !bytes.Contains(depths, []byte{ihdr.BitDepth}) {
		return newError(InvalidColorModel, "bit depth %d not allowed for %s", ihdr.BitDepth, ihdr.ColorType)
	}
	if ihdr.FilterMethod != 0 {
		return newError(UnsupportedFeature, "filter method %d", ihdr.FilterMethod)
	}
	if ihdr.InterlaceMethod != 0 {
		return unsupported("interlace")
	}
	return nil
}

func (ihdr *IHDR) bitsPerPixel() int {
	return ihdr.ColorType.Channels() * int(ihdr.BitDepth)
}

// BytesPerPixel is the filter distance: bits per pixel rounded up to whole
// bytes, never less than 1.
func (ihdr *IHDR) BytesPerPixel() int {
	bpp := (ihdr.bitsPerPixel() + 7) / 8
	if bpp < 1 {
		return 1
	}
	return bpp
}

func (ihdr *IHDR) rowBytes() uint64 {
	return (uint64(ihdr.Width)*uint64(ihdr.bitsPerPixel()) + 7) / 8
}

// RowBytes is the length of a scanline without its filter byte.
func (ihdr *IHDR) RowBytes() int {
	return int(ihdr.rowBytes())
}

// decodedSize is the inflated payload length the header implies. Only valid
// once footprint has reported no overflow.
func (ihdr *IHDR) decodedSize() uint64 {
	return uint64(ihdr.Height) * (ihdr.rowBytes() + 1)
}

// footprint is the memory a full decode allocates: the inflated payload, the
// reconstructed rows and the pixel slice. ok is false when the total does not
// fit in a uint64.
func (ihdr *IHDR) footprint() (total uint64, ok bool) {
	height, rowBytes := uint64(ihdr.Height), ihdr.rowBytes()
	hiPayload, payload := bits.Mul64(height, rowBytes+1)
	hiRows, rows := bits.Mul64(height, rowBytes)
	hiPixels, pixels := bits.Mul64(uint64(ihdr.Width)*height, pixelSize)
	total, carry := bits.Add64(payload, rows, 0)
	total, carry2 := bits.Add64(total, pixels, 0)
	return total, hiPayload|hiRows|hiPixels|carry|carry2 == 0
}
