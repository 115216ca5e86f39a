package compression

import (
	"bytes"
	"errors"
	"testing"

	"github.com/klauspost/compress/zlib"
)

func deflate(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		t.Fatalf("zlib write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("zlib close: %v", err)
	}
	return buf.Bytes()
}

func TestInflateData(t *testing.T) {
	raw := bytes.Repeat([]byte{0, 10, 20, 30, 40}, 100)
	comp := deflate(t, raw)

	for _, tc := range []struct {
		name    string
		limit   int64
		wantErr error
	}{
		{name: "unbounded", limit: 0},
		{name: "exact_limit", limit: int64(len(raw))},
		{name: "generous_limit", limit: int64(len(raw)) * 2},
		{name: "limit_too_small", limit: int64(len(raw)) - 1, wantErr: ErrOutputLimit},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := InflateData(comp, tc.limit)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("got err %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("InflateData: %v", err)
			}
			if !bytes.Equal(got, raw) {
				t.Fatalf("inflated data mismatch: got %d bytes, want %d", len(got), len(raw))
			}
		})
	}
}

func TestInflateData_Corrupt(t *testing.T) {
	comp := deflate(t, []byte("scanline bytes"))

	if _, err := InflateData([]byte{0x01, 0x02, 0x03}, 0); err == nil {
		t.Errorf("expected error for bad zlib header")
	}
	if _, err := InflateData(comp[:len(comp)-3], 0); err == nil {
		t.Errorf("expected error for truncated stream")
	}

	flipped := append([]byte(nil), comp...)
	flipped[len(flipped)-1] ^= 0xff
	if _, err := InflateData(flipped, 0); err == nil {
		t.Errorf("expected error for bad adler32 checksum")
	}
}
