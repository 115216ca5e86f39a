package pngDecoder

type FilterMethod byte

const (
	NONE FilterMethod = iota
	SUB
	UP
	AVG
	PAETH
)

func (f FilterMethod) String() string {
	switch f {
	case NONE:
		return "none"
	case SUB:
		return "sub"
	case UP:
		return "up"
	case AVG:
		return "average"
	case PAETH:
		return "paeth"
	}
	return "invalid"
}

// The process*Filter functions reconstruct one scanline into out. scanline
// and out have the same length; previousLine is the reconstructed row above,
// or nil for the first row.

func processNoneFilter(scanline, out []byte) {
	copy(out, scanline)
}

func processSubFilter(scanline, out []byte, bytesPerPixel int) {
	for i := range scanline {
		var left byte
		if i >= bytesPerPixel {
			left = out[i-bytesPerPixel]
		}
		out[i] = scanline[i] + left
	}
}

func processUpFilter(previousLine, scanline, out []byte) {
	if previousLine == nil {
		copy(out, scanline)
		return
	}
	for i := range scanline {
		out[i] = scanline[i] + previousLine[i]
	}
}

func processAvgFilter(previousLine, scanline, out []byte, bytesPerPixel int) {
	for i := range scanline {
		var left, above int
		if i >= bytesPerPixel {
			left = int(out[i-bytesPerPixel])
		}
		if previousLine != nil {
			above = int(previousLine[i])
		}
		out[i] = scanline[i] + byte((left+above)/2)
	}
}

func processPaethFilter(previousLine, scanline, out []byte, bytesPerPixel int) {
	for i := range scanline {
		var left, above, upperLeft int
		if i >= bytesPerPixel {
			left = int(out[i-bytesPerPixel])
		}
		if previousLine != nil {
			above = int(previousLine[i])
			if i >= bytesPerPixel {
				upperLeft = int(previousLine[i-bytesPerPixel])
			}
		}
		out[i] = scanline[i] + byte(paethPredictor(left, above, upperLeft))
	}
}

// unfilterScanline reverses the filter named by line[0] into out.
func unfilterScanline(row int, line, previousLine, out []byte, bytesPerPixel int) error {
	filter := FilterMethod(line[0])
	scanline := line[1:]
	switch filter {
	case NONE:
		processNoneFilter(scanline, out)
	case SUB:
		processSubFilter(scanline, out, bytesPerPixel)
	case UP:
		processUpFilter(previousLine, scanline, out)
	case AVG:
		processAvgFilter(previousLine, scanline, out, bytesPerPixel)
	case PAETH:
		processPaethFilter(previousLine, scanline, out, bytesPerPixel)
	default:
		return newError(InvalidFilterType, "row %d uses filter %d", row, line[0])
	}
	return nil
}

// defilter splits the inflated payload into height scanlines of rowBytes+1
// bytes and returns the reconstructed rows back to back, rowBytes each.
func defilter(decompressed []byte, height, rowBytes, bytesPerPixel int) ([]byte, error) {
	stride := rowBytes + 1
	if len(decompressed) != height*stride {
		return nil, newError(SizeMismatch, "have %d bytes for %d rows of %d", len(decompressed), height, stride)
	}

	out := make([]byte, height*rowBytes)
	var previousLine []byte
	for row := 0; row < height; row++ {
		line := decompressed[row*stride : (row+1)*stride]
		current := out[row*rowBytes : (row+1)*rowBytes]
		if err := unfilterScanline(row, line, previousLine, current, bytesPerPixel); err != nil {
			return nil, err
		}
		previousLine = current
	}
	return out, nil
}
