package compression

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// ErrOutputLimit is returned when the inflated stream is larger than the
// caller allowed.
var ErrOutputLimit = errors.New("inflated data exceeds limit")

// InflateData decompresses a zlib stream. At most limit bytes are produced;
// a stream that would inflate past limit fails with ErrOutputLimit. A limit of
// zero or less means no bound.
func InflateData(compressedData []byte, limit int64) ([]byte, error) {
	reader := bytes.NewReader(compressedData)

	zlibReader, err := zlib.NewReader(reader)
	if err != nil {
		return nil, err
	}
	defer zlibReader.Close()

	var src io.Reader = zlibReader
	var decompressedData bytes.Buffer
	if limit > 0 {
		// One extra byte tells an exact fit apart from an overflow.
		src = io.LimitReader(zlibReader, limit+1)
		// DEFLATE tops out around 1032:1.
		if limit < int64(len(compressedData))*1032 {
			decompressedData.Grow(int(limit))
		}
	}
	n, err := io.Copy(&decompressedData, src)
	if err != nil {
		return nil, err
	}
	if limit > 0 && n > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrOutputLimit, limit)
	}
	return decompressedData.Bytes(), nil
}
