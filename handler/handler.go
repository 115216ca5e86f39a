// Package handler reads image files from disk and routes them to a decoder
// chosen by file extension.
package handler

import (
	"errors"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/palantir/stacktrace"
	log "github.com/sirupsen/logrus"

	"rsm/pngDecoder"
)

var (
	ErrMissingFile       = errors.New("file does not exist")
	ErrIsDirectory       = errors.New("path is a directory")
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

// DecodeFunc turns file contents into an image.
type DecodeFunc func(data []byte) (image.Image, error)

var (
	decodersMu sync.RWMutex
	decoders   = map[string]DecodeFunc{
		"png": decodePNG,
	}
)

func decodePNG(data []byte) (image.Image, error) {
	img, err := pngDecoder.Decode(data)
	if err != nil {
		return nil, err
	}
	return img, nil
}

// Register adds or replaces the decoder for a file extension (without the
// leading dot, case-insensitive).
func Register(ext string, fn DecodeFunc) {
	decodersMu.Lock()
	defer decodersMu.Unlock()
	decoders[strings.ToLower(ext)] = fn
}

func lookup(ext string) (DecodeFunc, bool) {
	decodersMu.RLock()
	defer decodersMu.RUnlock()
	fn, ok := decoders[ext]
	return fn, ok
}

// ReadFile decodes the image stored at path.
func ReadFile(path string) (image.Image, error) {
	st, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, stacktrace.Propagate(ErrMissingFile, "%s", path)
	}
	if err != nil {
		return nil, stacktrace.Propagate(err, "stat %s", path)
	}
	if st.IsDir() {
		return nil, stacktrace.Propagate(ErrIsDirectory, "%s", path)
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	decode, ok := lookup(ext)
	if !ok {
		return nil, stacktrace.Propagate(ErrUnsupportedFormat, "%q", ext)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, stacktrace.Propagate(err, "failed reading %q", path)
	}
	log.WithFields(log.Fields{"path": path, "bytes": len(data), "format": ext}).Debug("decoding file")

	img, err := decode(data)
	if err != nil {
		return nil, stacktrace.Propagate(err, "decoding %s", path)
	}
	return img, nil
}
