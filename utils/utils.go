package utils

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func BytesToLength(data []byte) uint32 {
	return binary.BigEndian.Uint32(data)
}

// WritePPM writes img as binary PPM (P6). Alpha is dropped.
func WritePPM(w io.Writer, img image.Image) error {
	b := img.Bounds()
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "P6\n%d %d\n255\n", b.Dx(), b.Dy()); err != nil {
		return err
	}
	if err := writePPMPixels(bw, img); err != nil {
		return err
	}
	return bw.Flush()
}

func writePPMPixels(w io.Writer, img image.Image) error {
	b := img.Bounds()
	row := make([]byte, 0, b.Dx()*3)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row = row[:0]
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			row = append(row, c.R, c.G, c.B)
		}
		if _, err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// Formats lists the output formats WriteImage understands.
var Formats = []string{"ppm", "bmp", "tiff"}

// WriteImage writes img to name in the given format (ppm, bmp or tiff). A
// failed write leaves no file behind.
func WriteImage(name, format string, img image.Image) error {
	var encode func(io.Writer, image.Image) error
	switch strings.ToLower(format) {
	case "ppm":
		encode = WritePPM
	case "bmp":
		encode = bmp.Encode
	case "tiff", "tif":
		encode = func(w io.Writer, m image.Image) error {
			return tiff.Encode(w, m, &tiff.Options{Compression: tiff.Deflate})
		}
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
	return writeFile(name, img, encode)
}

func writeFile(name string, img image.Image, encode func(io.Writer, image.Image) error) error {
	file, err := os.Create(name)
	if err != nil {
		return err
	}
	err = encode(file, img)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(name)
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}
