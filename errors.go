// Copyright (c) 2025 Neomantra Corp

package avro

import "fmt"

var (
	ErrNotAnAvroFile       = fmt.Errorf("not an avro container file")
	ErrUnexpectedEOF       = fmt.Errorf("unexpected end of stream")
	ErrMalformedData       = fmt.Errorf("malformed data")
	ErrCorruptSyncMarker   = fmt.Errorf("block sync marker does not match header")
	ErrUnsupportedCodec    = fmt.Errorf("unsupported codec")
	ErrDecompressionFailed = fmt.Errorf("block decompression failed")

	ErrMissingAttribute   = fmt.Errorf("schema is missing a required attribute")
	ErrInvalidAttribute   = fmt.Errorf("schema attribute has an invalid value")
	ErrUnknownNamedType   = fmt.Errorf("reference to unknown named type")
	ErrDuplicateNamedType = fmt.Errorf("named type defined more than once")
	ErrInvalidUnion       = fmt.Errorf("invalid union")
	ErrInvalidSymbol      = fmt.Errorf("invalid enum symbol")
)

func malformedDataError(offset int64, what string) error {
	return fmt.Errorf("%w: %s at byte %d", ErrMalformedData, what, offset)
}

func unexpectedEOFError(offset int64, what string) error {
	return fmt.Errorf("%w: %s at byte %d", ErrUnexpectedEOF, what, offset)
}
