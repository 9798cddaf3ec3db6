// Copyright (c) 2025 Neomantra Corp

package avro

import (
	"fmt"
	"io"
)

///////////////////////////////////////////////////////////////////////////////

const (
	MetaKey_Schema = "avro.schema"
	MetaKey_Codec  = "avro.codec"

	SyncMarker_Size = 16
)

// Magic prefixes every Avro object container file.
var Magic = [4]byte{'O', 'b', 'j', 1}

///////////////////////////////////////////////////////////////////////////////

// Codec identifies a block compression codec.
type Codec uint8

const (
	Codec_Null Codec = iota
	Codec_Deflate
)

// String returns the codec's metadata name.
func (c Codec) String() string {
	switch c {
	case Codec_Null:
		return "null"
	case Codec_Deflate:
		return "deflate"
	default:
		return "unknown"
	}
}

// ParseCodec maps an avro.codec metadata value to a Codec.  An empty
// value means the codec entry was absent, which is the null codec.
func ParseCodec(name string) (Codec, error) {
	switch name {
	case "", "null":
		return Codec_Null, nil
	case "deflate":
		return Codec_Deflate, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedCodec, name)
	}
}

///////////////////////////////////////////////////////////////////////////////

// FileHeader is the normalized decoded header of a container file: the
// writer's schema, the block codec, the sync marker, and every metadata
// entry verbatim.
type FileHeader struct {
	Schema     *Schema           // the writer's schema, parsed
	SchemaJSON []byte            // the raw avro.schema metadata value
	Codec      Codec             // block compression codec
	Sync       [SyncMarker_Size]byte
	Meta       map[string][]byte // all metadata entries, unmodified
}

// ReadFileHeader reads and validates a container file header: magic,
// metadata map, and sync marker.
func ReadFileHeader(dec *BinaryDecoder) (*FileHeader, error) {
	magic, err := dec.ReadFixed(len(Magic))
	if err != nil || [4]byte(magic) != Magic {
		return nil, ErrNotAnAvroFile
	}

	meta, err := readMetaMap(dec)
	if err != nil {
		return nil, err
	}

	header := &FileHeader{Meta: meta}
	sync, err := dec.ReadFixed(SyncMarker_Size)
	if err != nil {
		return nil, err
	}
	copy(header.Sync[:], sync)

	schemaJson, ok := meta[MetaKey_Schema]
	if !ok {
		return nil, fmt.Errorf("%w: metadata %q", ErrMissingAttribute, MetaKey_Schema)
	}
	header.SchemaJSON = schemaJson
	if header.Schema, err = ParseSchema(schemaJson); err != nil {
		return nil, err
	}

	if header.Codec, err = ParseCodec(string(meta[MetaKey_Codec])); err != nil {
		return nil, err
	}
	return header, nil
}

// readMetaMap reads the header metadata: block-framed (string, bytes)
// pairs terminated by a zero-count block.
func readMetaMap(dec *BinaryDecoder) (map[string][]byte, error) {
	meta := make(map[string][]byte)
	for {
		count, err := dec.ReadBlockCount()
		if err != nil {
			if err == io.EOF {
				return nil, unexpectedEOFError(dec.Offset(), "metadata")
			}
			return nil, err
		}
		if count == 0 {
			return meta, nil
		}
		for i := int64(0); i < count; i++ {
			key, err := dec.ReadString()
			if err != nil {
				return nil, err
			}
			value, err := dec.ReadBytes()
			if err != nil {
				return nil, err
			}
			meta[key] = value
		}
	}
}
