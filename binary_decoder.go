// Copyright (c) 2025 Neomantra Corp

package avro

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"unicode/utf8"
)

///////////////////////////////////////////////////////////////////////////////

// Default buffer size for decoding
const DEFAULT_DECODE_BUFFER_SIZE = 16 * 1024

// Maximum encoded sizes of the zig-zag varints, 7 payload bits per byte.
const (
	maxIntVarintLen  = 5
	maxLongVarintLen = 10
)

// byteSource is what BinaryDecoder pulls from: exact-count reads plus
// single-byte reads for varint scanning.
type byteSource interface {
	io.Reader
	io.ByteReader
}

// BinaryDecoder decodes Avro primitive encodings from a byte stream.
// It tracks the count of consumed bytes for error diagnostics.
type BinaryDecoder struct {
	src    byteSource
	offset int64 // bytes consumed so far
}

// NewBinaryDecoder creates a BinaryDecoder over the reader, buffering it
// unless it already supports byte-at-a-time reads (e.g. bytes.Reader).
func NewBinaryDecoder(reader io.Reader) *BinaryDecoder {
	src, ok := reader.(byteSource)
	if !ok {
		src = bufio.NewReaderSize(reader, DEFAULT_DECODE_BUFFER_SIZE)
	}
	return &BinaryDecoder{src: src}
}

// Offset returns the number of bytes consumed from the source.
func (d *BinaryDecoder) Offset() int64 {
	return d.offset
}

///////////////////////////////////////////////////////////////////////////////

// readByte reads one byte.  io.EOF passes through untranslated so callers
// at item boundaries can distinguish clean stream end from truncation.
func (d *BinaryDecoder) readByte() (byte, error) {
	b, err := d.src.ReadByte()
	if err != nil {
		return 0, err
	}
	d.offset++
	return b, nil
}

// readFull reads exactly len(buf) bytes.  Any shortfall is ErrUnexpectedEOF.
func (d *BinaryDecoder) readFull(buf []byte) error {
	n, err := io.ReadFull(d.src, buf)
	d.offset += int64(n)
	if err != nil {
		return unexpectedEOFError(d.offset, "short read")
	}
	return nil
}

///////////////////////////////////////////////////////////////////////////////

// ReadBoolean reads a single byte: 0x00 is false, 0x01 is true.
func (d *BinaryDecoder) ReadBoolean() (bool, error) {
	b, err := d.readByte()
	if err != nil {
		if err == io.EOF {
			return false, unexpectedEOFError(d.offset, "boolean")
		}
		return false, err
	}
	switch b {
	case 0x00:
		return false, nil
	case 0x01:
		return true, nil
	default:
		return false, malformedDataError(d.offset, "invalid boolean byte")
	}
}

// readVarint reads an unsigned little-endian base-128 varint of at most
// maxLen bytes.  The first byte hitting io.EOF is passed through; EOF
// mid-varint is ErrUnexpectedEOF.
func (d *BinaryDecoder) readVarint(maxLen int) (uint64, error) {
	var value uint64
	for i := 0; ; i++ {
		if i >= maxLen {
			return 0, malformedDataError(d.offset, "varint overflow")
		}
		b, err := d.src.ReadByte()
		if err != nil {
			if err == io.EOF && i > 0 {
				return 0, unexpectedEOFError(d.offset, "truncated varint")
			}
			return 0, err
		}
		d.offset++
		value |= uint64(b&0x7f) << uint(7*i)
		if b&0x80 == 0 {
			return value, nil
		}
	}
}

// ReadInt reads a zig-zag varint encoded 32-bit integer.
func (d *BinaryDecoder) ReadInt() (int32, error) {
	u, err := d.readVarint(maxIntVarintLen)
	if err != nil {
		return 0, err
	}
	// 5 bytes can carry 35 payload bits; anything beyond 32 is overflow
	if u > math.MaxUint32 {
		return 0, malformedDataError(d.offset, "int varint overflow")
	}
	v := uint32(u)
	return int32(v>>1) ^ -int32(v&1), nil
}

// ReadLong reads a zig-zag varint encoded 64-bit integer.
func (d *BinaryDecoder) ReadLong() (int64, error) {
	u, err := d.readVarint(maxLongVarintLen)
	if err != nil {
		return 0, err
	}
	return int64(u>>1) ^ -int64(u&1), nil
}

// ReadFloat reads a 4-byte little-endian IEEE-754 float.
func (d *BinaryDecoder) ReadFloat() (float32, error) {
	var buf [4]byte
	if err := d.readFull(buf[:]); err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[:])), nil
}

// ReadDouble reads an 8-byte little-endian IEEE-754 double.
func (d *BinaryDecoder) ReadDouble() (float64, error) {
	var buf [8]byte
	if err := d.readFull(buf[:]); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(buf[:])), nil
}

// ReadBytes reads a long length then that many bytes.
func (d *BinaryDecoder) ReadBytes() ([]byte, error) {
	length, err := d.ReadLong()
	if err != nil {
		if err == io.EOF {
			return nil, unexpectedEOFError(d.offset, "bytes length")
		}
		return nil, err
	}
	if length < 0 {
		return nil, malformedDataError(d.offset, "negative bytes length")
	}
	buf := make([]byte, length)
	if err := d.readFull(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// ReadString reads bytes and validates them as UTF-8.
func (d *BinaryDecoder) ReadString() (string, error) {
	buf, err := d.ReadBytes()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(buf) {
		return "", malformedDataError(d.offset, "invalid utf-8 in string")
	}
	return string(buf), nil
}

// ReadFixed reads exactly size bytes.
func (d *BinaryDecoder) ReadFixed(size int) ([]byte, error) {
	buf := make([]byte, size)
	if err := d.readFull(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// ReadBlockCount reads an array/map block count.  A negative count means
// the writer prefixed the block with its byte size for skipping; the size
// is consumed and discarded, and the absolute item count is returned.
// A zero return terminates the collection.
func (d *BinaryDecoder) ReadBlockCount() (int64, error) {
	count, err := d.ReadLong()
	if err != nil {
		if err == io.EOF {
			return 0, unexpectedEOFError(d.offset, "block count")
		}
		return 0, err
	}
	if count >= 0 {
		return count, nil
	}
	if _, err := d.ReadLong(); err != nil { // block byte size, unused
		if err == io.EOF {
			return 0, unexpectedEOFError(d.offset, "block size")
		}
		return 0, err
	}
	if count == math.MinInt64 {
		return 0, malformedDataError(d.offset, "block count overflow")
	}
	return -count, nil
}
