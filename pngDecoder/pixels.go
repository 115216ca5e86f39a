package pngDecoder

// Pixel is a non-premultiplied 8-bit RGBA value. Models without alpha get
// A = 255.
type Pixel struct {
	R, G, B, A uint8
}

const pixelSize = 4

func gray(v uint8) Pixel {
	return Pixel{R: v, G: v, B: v, A: 255}
}

// sampleReader pulls 8-bit samples out of one reconstructed row at any legal
// bit depth. 16-bit samples keep their most significant byte, sub-byte samples
// are scaled up to the full 0..255 range.
type sampleReader struct {
	row   []byte
	depth int
	bit   int
}

func (s *sampleReader) next() uint8 {
	switch s.depth {
	case 8:
		v := s.row[s.bit/8]
		s.bit += 8
		return v
	case 16:
		v := s.row[s.bit/8]
		s.bit += 16
		return v
	}
	shift := 8 - s.depth - s.bit%8
	mask := byte(1)<<s.depth - 1
	v := (s.row[s.bit/8] >> shift) & mask
	s.bit += s.depth
	return v * (255 / mask)
}

// assemblePixels converts reconstructed rows into width*height pixels in
// row-major order.
func assemblePixels(ihdr IHDR, rows []byte) ([]Pixel, error) {
	switch ihdr.ColorType {
	case Grayscale, Truecolor, GrayscaleAlpha, TruecolorAlpha:
	case Indexed:
		return nil, unsupported("palette")
	default:
		return nil, newError(InvalidColorModel, "color type %d", ihdr.ColorType)
	}

	width, height := int(ihdr.Width), int(ihdr.Height)
	rowBytes := ihdr.RowBytes()
	if len(rows) != height*rowBytes {
		return nil, newError(SizeMismatch, "have %d reconstructed bytes, want %d", len(rows), height*rowBytes)
	}

	pixels := make([]Pixel, 0, width*height)
	for y := 0; y < height; y++ {
		s := sampleReader{row: rows[y*rowBytes : (y+1)*rowBytes], depth: int(ihdr.BitDepth)}
		for x := 0; x < width; x++ {
			var p Pixel
			switch ihdr.ColorType {
			case Grayscale:
				p = gray(s.next())
			case Truecolor:
				p = Pixel{R: s.next(), G: s.next(), B: s.next(), A: 255}
			case GrayscaleAlpha:
				p = gray(s.next())
				p.A = s.next()
			case TruecolorAlpha:
				p = Pixel{R: s.next(), G: s.next(), B: s.next(), A: s.next()}
			}
			pixels = append(pixels, p)
		}
	}
	return pixels, nil
}
