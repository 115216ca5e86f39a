package pngDecoder

import (
	"fmt"

	"github.com/palantir/stacktrace"
)

// ErrorKind classifies a decode failure. Kinds are carried as stacktrace error
// codes so they survive stacktrace.Propagate by callers.
type ErrorKind stacktrace.ErrorCode

const (
	MalformedStream ErrorKind = iota + 1
	TruncatedStream
	ChecksumMismatch
	InvalidHeaderLength
	InvalidDimension
	InvalidColorModel
	InvalidFilterType
	UnsupportedFeature
	DecompressionFailed
	SizeMismatch
	HeaderMissing
)

var kindNames = map[ErrorKind]string{
	MalformedStream:     "malformed stream",
	TruncatedStream:     "truncated stream",
	ChecksumMismatch:    "checksum mismatch",
	InvalidHeaderLength: "invalid header length",
	InvalidDimension:    "invalid dimension",
	InvalidColorModel:   "invalid color model",
	InvalidFilterType:   "invalid filter type",
	UnsupportedFeature:  "unsupported feature",
	DecompressionFailed: "decompression failed",
	SizeMismatch:        "size mismatch",
	HeaderMissing:       "header missing",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Kind returns the ErrorKind attached to err, or 0 if err did not come from
// the decoder.
func Kind(err error) ErrorKind {
	if err == nil {
		return 0
	}
	code := stacktrace.GetCode(err)
	if code == stacktrace.NoCode {
		return 0
	}
	return ErrorKind(code)
}

func newError(kind ErrorKind, format string, args ...interface{}) error {
	return stacktrace.NewErrorWithCode(stacktrace.ErrorCode(kind), "png: "+kind.String()+": "+format, args...)
}

func wrapError(cause error, kind ErrorKind, format string, args ...interface{}) error {
	return stacktrace.PropagateWithCode(cause, stacktrace.ErrorCode(kind), "png: "+kind.String()+": "+format, args...)
}

func unsupported(feature string) error {
	return newError(UnsupportedFeature, "%s", feature)
}
