package handler

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	stdpng "image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/palantir/stacktrace"

	"rsm/pngDecoder"
)

func writePNG(t *testing.T, path string) *image.NRGBA {
	t.Helper()
	src := image.NewNRGBA(image.Rect(0, 0, 4, 3))
	for i := range src.Pix {
		src.Pix[i] = uint8(i * 7)
	}
	var buf bytes.Buffer
	if err := stdpng.Encode(&buf, src); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return src
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "image.PNG")
	src := writePNG(t, path)

	img, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if img.Bounds() != src.Bounds() {
		t.Fatalf("bounds %v, want %v", img.Bounds(), src.Bounds())
	}
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			if got, want := img.At(x, y), src.NRGBAAt(x, y); got != want {
				t.Fatalf("(%d,%d): got %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestReadFileErrors(t *testing.T) {
	dir := t.TempDir()

	jpg := filepath.Join(dir, "photo.jpg")
	if err := os.WriteFile(jpg, []byte("whatever"), 0o644); err != nil {
		t.Fatal(err)
	}
	broken := filepath.Join(dir, "broken.png")
	if err := os.WriteFile(broken, []byte("short"), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, tc := range []struct {
		name string
		path string
		want error
	}{
		{"missing", filepath.Join(dir, "nope.png"), ErrMissingFile},
		{"directory", dir, ErrIsDirectory},
		{"unsupported_extension", jpg, ErrUnsupportedFormat},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadFile(tc.path)
			if err == nil {
				t.Fatalf("expected error")
			}
			if root := stacktrace.RootCause(err); !errors.Is(root, tc.want) {
				t.Fatalf("root cause %v, want %v", root, tc.want)
			}
		})
	}

	_, err := ReadFile(broken)
	if kind := pngDecoder.Kind(err); kind != pngDecoder.MalformedStream {
		t.Fatalf("kind %s, want %s (err: %v)", kind, pngDecoder.MalformedStream, err)
	}
}

func TestRegister(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "solid.fake")
	if err := os.WriteFile(path, []byte{0x42}, 0o644); err != nil {
		t.Fatal(err)
	}

	Register("FAKE", func(data []byte) (image.Image, error) {
		img := image.NewGray(image.Rect(0, 0, 1, 1))
		img.SetGray(0, 0, color.Gray{Y: data[0]})
		return img, nil
	})
	t.Cleanup(func() {
		decodersMu.Lock()
		delete(decoders, "fake")
		decodersMu.Unlock()
	})

	img, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got := img.At(0, 0); got != (color.Gray{Y: 0x42}) {
		t.Fatalf("got %v", got)
	}
}
