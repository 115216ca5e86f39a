package pngDecoder

import (
	"bytes"

	"rsm/utils"
)

var pngHeader = []uint8{137, 80, 78, 71, 13, 10, 26, 10}

// minStreamLength is the smallest stream that can hold a signature, IHDR,
// one IDAT of a minimal zlib stream and IEND:
//
//	signature                         8
//	IHDR  4 len + 4 type + 13 + 4 crc 25
//	IDAT  4 len + 4 type + 10 + 4 crc 22
//	IEND  4 len + 4 type      + 4 crc 12
const minStreamLength = 67

// validateStream checks the length and signature and leaves the cursor just
// past the signature.
func validateStream(c *utils.Cursor) error {
	if c.Len() < minStreamLength {
		return newError(MalformedStream, "stream is %d bytes, need at least %d", c.Len(), minStreamLength)
	}
	sig, err := c.Advance(len(pngHeader))
	if err != nil {
		return wrapError(err, MalformedStream, "reading signature")
	}
	if !bytes.Equal(sig, pngHeader) {
		return newError(MalformedStream, "signature mismatch: % x", sig)
	}
	return nil
}

func paethPredictor(a, b, c int) int {
	p := a + b - c
	pa := abs(p - a)
	pb := abs(p - b)
	pc := abs(p - c)

	if pa <= pb && pa <= pc {
		return a
	} else if pb <= pc {
		return b
	}
	return c
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
