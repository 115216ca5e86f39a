package pngDecoder

import (
	"hash/crc32"
	"math"

	"rsm/utils"
)

// ChunkKind is the closed set of chunk types the decoder acts on.
type ChunkKind int

const (
	ChunkUnknown ChunkKind = iota
	ChunkIHDR
	ChunkIDAT
	ChunkIEND
)

func (k ChunkKind) String() string {
	switch k {
	case ChunkIHDR:
		return "IHDR"
	case ChunkIDAT:
		return "IDAT"
	case ChunkIEND:
		return "IEND"
	}
	return "unknown"
}

// ChunkType is a chunk's kind plus its raw tag. For ChunkUnknown the tag is the
// only thing the decoder looks at.
type ChunkType struct {
	Kind ChunkKind
	Tag  [4]byte
}

func parseChunkType(tag [4]byte) ChunkType {
	switch string(tag[:]) {
	case "IHDR":
		return ChunkType{Kind: ChunkIHDR, Tag: tag}
	case "IDAT":
		return ChunkType{Kind: ChunkIDAT, Tag: tag}
	case "IEND":
		return ChunkType{Kind: ChunkIEND, Tag: tag}
	}
	return ChunkType{Kind: ChunkUnknown, Tag: tag}
}

func (t ChunkType) String() string {
	return string(t.Tag[:])
}

// Chunk is one framed record. Data aliases the input buffer and must not be
// modified.
type Chunk struct {
	Length uint32
	Type   ChunkType
	Data   []byte
	CRC    uint32
}

// Critical reports whether the chunk is critical (upper-case first letter).
func (c *Chunk) Critical() bool {
	return c.Type.Tag[0] >= 'A' && c.Type.Tag[0] <= 'Z'
}

func isASCIILetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

// readChunk frames the next record at the cursor and verifies its CRC.
func readChunk(c *utils.Cursor) (Chunk, error) {
	start := c.Pos()
	length, err := c.Uint32()
	if err != nil {
		return Chunk{}, wrapError(err, TruncatedStream, "chunk length at offset %d", start)
	}
	if length > math.MaxInt32 {
		return Chunk{}, newError(MalformedStream, "chunk length %d at offset %d exceeds %d", length, start, math.MaxInt32)
	}

	typ, err := c.Advance(4)
	if err != nil {
		return Chunk{}, wrapError(err, TruncatedStream, "chunk type at offset %d", start+4)
	}
	for _, b := range typ {
		if !isASCIILetter(b) {
			return Chunk{}, newError(MalformedStream, "chunk type % x at offset %d is not alphabetic", typ, start+4)
		}
	}
	var tag [4]byte
	copy(tag[:], typ)

	data, err := c.Advance(int(length))
	if err != nil {
		return Chunk{}, wrapError(err, TruncatedStream, "%s chunk data of %d bytes", typ, length)
	}
	crc, err := c.Uint32()
	if err != nil {
		return Chunk{}, wrapError(err, TruncatedStream, "%s chunk checksum", typ)
	}

	sum := crc32.NewIEEE()
	sum.Write(typ)
	sum.Write(data)
	if got := sum.Sum32(); got != crc {
		return Chunk{}, newError(ChecksumMismatch, "%s chunk at offset %d: stored %08x, computed %08x", typ, start, crc, got)
	}

	return Chunk{
		Length: length,
		Type:   parseChunkType(tag),
		Data:   data,
		CRC:    crc,
	}, nil
}

// readChunks frames records until the first IEND. Anything after IEND is
// ignored; running out of bytes before IEND is a TruncatedStream error.
func readChunks(c *utils.Cursor) ([]Chunk, error) {
	var chunks []Chunk
	for c.Remaining() > 0 {
		chunk, err := readChunk(c)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
		if chunk.Type.Kind == ChunkIEND {
			return chunks, nil
		}
	}
	return nil, newError(TruncatedStream, "stream ended after %d chunks without IEND", len(chunks))
}
