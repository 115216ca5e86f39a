package pngDecoder

import (
	"errors"

	"github.com/elliotchance/orderedmap/v3"
	log "github.com/sirupsen/logrus"

	"rsm/compression"
	"rsm/utils"
)

// DefaultMaxDecodedBytes bounds decode memory when Options leaves
// MaxDecodedBytes unset.
const DefaultMaxDecodedBytes = 1 << 30

// Options controls decoding. A nil *Options uses the defaults.
type Options struct {
	// MaxDecodedBytes caps the memory a decode allocates: inflated data,
	// reconstructed rows and pixels together. Headers implying more are
	// rejected before inflating.
	MaxDecodedBytes uint64
	// Logger receives per-chunk and per-stage debug output. Defaults to the
	// logrus standard logger.
	Logger log.FieldLogger
}

func resolveOptions(opts []*Options) Options {
	o := Options{}
	if len(opts) > 0 && opts[0] != nil {
		o = *opts[0]
	}
	if o.MaxDecodedBytes == 0 {
		o.MaxDecodedBytes = DefaultMaxDecodedBytes
	}
	if o.Logger == nil {
		o.Logger = log.StandardLogger()
	}
	return o
}

type stage int

const (
	stageStart stage = iota
	stageSignature
	stageFraming
	stageHeader
	stageTrailer
	stageInflated
	stageDefiltered
	stageAssembled
	stageDone
)

var stageNames = [...]string{
	"start", "signature", "framing", "header", "trailer",
	"inflated", "defiltered", "assembled", "done",
}

func (s stage) String() string {
	return stageNames[s]
}

// PngDecoder decodes a single PNG stream held in memory. It is not safe for
// concurrent use, but separate decoders share nothing.
type PngDecoder struct {
	cursor *utils.Cursor
	opts   Options
	log    log.FieldLogger
	stage  stage

	ihdr      IHDR
	idat      []byte
	ancillary *orderedmap.OrderedMap[string, int]
}

// NewDecoder checks the stream's length and signature.
func NewDecoder(data []byte, opts ...*Options) (*PngDecoder, error) {
	o := resolveOptions(opts)
	pd := &PngDecoder{
		cursor:    utils.NewCursor(data),
		opts:      o,
		log:       o.Logger,
		ancillary: orderedmap.NewOrderedMap[string, int](),
	}
	if err := validateStream(pd.cursor); err != nil {
		return nil, err
	}
	pd.advance(stageSignature)
	return pd, nil
}

// Decode decodes data into an Image.
func Decode(data []byte, opts ...*Options) (*Image, error) {
	pd, err := NewDecoder(data, opts...)
	if err != nil {
		return nil, err
	}
	return pd.Decode()
}

// DecodeConfig returns the validated header without inflating any image
// data.
func DecodeConfig(data []byte) (IHDR, error) {
	c := utils.NewCursor(data)
	if err := validateStream(c); err != nil {
		return IHDR{}, err
	}
	for c.Remaining() > 0 {
		chunk, err := readChunk(c)
		if err != nil {
			return IHDR{}, err
		}
		switch chunk.Type.Kind {
		case ChunkIHDR:
			return ParseIHDR(chunk.Data)
		case ChunkIDAT, ChunkIEND:
			return IHDR{}, newError(HeaderMissing, "%s before IHDR", chunk.Type)
		case ChunkUnknown:
		}
	}
	return IHDR{}, newError(TruncatedStream, "no IHDR chunk")
}

func (pd *PngDecoder) advance(s stage) {
	pd.stage = s
	pd.log.WithField("stage", s.String()).Debug("png decode stage")
}

// Decode runs the pipeline. A decoder can be used once.
func (pd *PngDecoder) Decode() (*Image, error) {
	if pd.stage != stageSignature {
		return nil, newError(MalformedStream, "decoder is in stage %s, not ready to decode", pd.stage)
	}
	pd.advance(stageFraming)

	chunks, err := readChunks(pd.cursor)
	if err != nil {
		return nil, err
	}

	for i := range chunks {
		chunk := &chunks[i]
		pd.log.WithFields(log.Fields{
			"type":     chunk.Type.String(),
			"length":   chunk.Length,
			"critical": chunk.Critical(),
		}).Debug("png chunk")

		switch chunk.Type.Kind {
		case ChunkIHDR:
			err = pd.handleIHDR(chunk)
		case ChunkIDAT:
			err = pd.handleIDAT(chunk)
		case ChunkIEND:
			return pd.handleIEND(chunk)
		case ChunkUnknown:
			pd.handleUnknown(chunk)
		}
		if err != nil {
			return nil, err
		}
	}
	// readChunks only returns a sequence that ends in IEND.
	return nil, newError(TruncatedStream, "no IEND chunk")
}

func (pd *PngDecoder) handleIHDR(chunk *Chunk) error {
	if pd.stage >= stageHeader {
		return newError(MalformedStream, "duplicate IHDR chunk")
	}
	ihdr, err := ParseIHDR(chunk.Data)
	if err != nil {
		return err
	}
	pd.ihdr = ihdr
	pd.log.WithFields(log.Fields{
		"width":      ihdr.Width,
		"height":     ihdr.Height,
		"bit_depth":  ihdr.BitDepth,
		"color_type": ihdr.ColorType.String(),
	}).Debug("png header")
	pd.advance(stageHeader)
	return nil
}

func (pd *PngDecoder) handleIDAT(chunk *Chunk) error {
	if pd.stage < stageHeader {
		return newError(HeaderMissing, "IDAT before IHDR")
	}
	pd.idat = append(pd.idat, chunk.Data...)
	return nil
}

func (pd *PngDecoder) handleUnknown(chunk *Chunk) {
	tag := chunk.Type.String()
	n, _ := pd.ancillary.Get(tag)
	pd.ancillary.Set(tag, n+1)
}

func (pd *PngDecoder) handleIEND(chunk *Chunk) (*Image, error) {
	if pd.stage < stageHeader {
		return nil, newError(HeaderMissing, "IEND before IHDR")
	}
	if chunk.Length != 0 {
		return nil, newError(MalformedStream, "IEND carries %d bytes of data", chunk.Length)
	}
	pd.advance(stageTrailer)

	decompressed, err := pd.inflate()
	if err != nil {
		return nil, err
	}
	pd.advance(stageInflated)

	rows, err := defilter(decompressed, int(pd.ihdr.Height), pd.ihdr.RowBytes(), pd.ihdr.BytesPerPixel())
	if err != nil {
		return nil, err
	}
	pd.advance(stageDefiltered)

	pixels, err := assemblePixels(pd.ihdr, rows)
	if err != nil {
		return nil, err
	}
	pd.advance(stageAssembled)

	img := &Image{
		IHDR:      pd.ihdr,
		Pixels:    pixels,
		Ancillary: pd.ancillary,
	}
	pd.advance(stageDone)
	return img, nil
}

func (pd *PngDecoder) inflate() ([]byte, error) {
	if pd.ihdr.CompressionMethod != 0 {
		return nil, newError(DecompressionFailed, "compression method %d", pd.ihdr.CompressionMethod)
	}

	need, ok := pd.ihdr.footprint()
	if !ok || need > pd.opts.MaxDecodedBytes {
		return nil, newError(SizeMismatch, "%dx%d %d-bit %s image needs %d bytes, limit is %d",
			pd.ihdr.Width, pd.ihdr.Height, pd.ihdr.BitDepth, pd.ihdr.ColorType, need, pd.opts.MaxDecodedBytes)
	}
	expected := pd.ihdr.decodedSize()

	decompressed, err := compression.InflateData(pd.idat, int64(expected))
	if errors.Is(err, compression.ErrOutputLimit) {
		return nil, wrapError(err, SizeMismatch, "inflated data is longer than %d bytes", expected)
	}
	if err != nil {
		return nil, wrapError(err, DecompressionFailed, "inflating %d bytes of IDAT", len(pd.idat))
	}
	if uint64(len(decompressed)) != expected {
		return nil, newError(SizeMismatch, "inflated %d bytes, want %d", len(decompressed), expected)
	}
	pd.log.WithFields(log.Fields{
		"compressed":   len(pd.idat),
		"decompressed": len(decompressed),
	}).Debug("png inflate")
	return decompressed, nil
}
