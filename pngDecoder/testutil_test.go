package pngDecoder

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"testing"

	"github.com/klauspost/compress/zlib"
)

// makeChunk frames data as a PNG chunk with a correct CRC.
func makeChunk(typ string, data []byte) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, uint32(len(data)))
	buf.WriteString(typ)
	buf.Write(data)
	crc := crc32.NewIEEE()
	crc.Write([]byte(typ))
	crc.Write(data)
	binary.Write(&buf, binary.BigEndian, crc.Sum32())
	return buf.Bytes()
}

func ihdrData(w, h uint32, depth byte, ct ColorType) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, w)
	binary.Write(&buf, binary.BigEndian, h)
	buf.Write([]byte{depth, byte(ct), 0, 0, 0})
	return buf.Bytes()
}

// zlibStored compresses with stored blocks so fixture sizes are predictable.
func zlibStored(t testing.TB, raw []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, zlib.NoCompression)
	if err != nil {
		t.Fatalf("zlib writer: %v", err)
	}
	if _, err := w.Write(raw); err != nil {
		t.Fatalf("zlib write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("zlib close: %v", err)
	}
	return buf.Bytes()
}

func pngStream(chunks ...[]byte) []byte {
	out := append([]byte(nil), pngHeader...)
	for _, c := range chunks {
		out = append(out, c...)
	}
	return out
}

// buildPNG assembles a complete stream from a header and the filtered
// scanlines (filter bytes included).
func buildPNG(t testing.TB, w, h uint32, depth byte, ct ColorType, scanlines []byte) []byte {
	t.Helper()
	return pngStream(
		makeChunk("IHDR", ihdrData(w, h, depth, ct)),
		makeChunk("IDAT", zlibStored(t, scanlines)),
		makeChunk("IEND", nil),
	)
}

func assertKind(t *testing.T, err error, want ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", want)
	}
	if got := Kind(err); got != want {
		t.Fatalf("got kind %s, want %s (err: %v)", got, want, err)
	}
}

// filterRow applies PNG filter ft to raw given the unfiltered previous row.
func filterRow(ft FilterMethod, raw, prev []byte, bpp int) []byte {
	out := make([]byte, len(raw)+1)
	out[0] = byte(ft)
	for i := range raw {
		var a, b, c int
		if i >= bpp {
			a = int(raw[i-bpp])
		}
		if prev != nil {
			b = int(prev[i])
			if i >= bpp {
				c = int(prev[i-bpp])
			}
		}
		var pred int
		switch ft {
		case SUB:
			pred = a
		case UP:
			pred = b
		case AVG:
			pred = (a + b) / 2
		case PAETH:
			pred = paethPredictor(a, b, c)
		}
		out[i+1] = raw[i] - byte(pred)
	}
	return out
}
