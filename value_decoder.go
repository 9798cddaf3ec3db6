// Copyright (c) 2025 Neomantra Corp

package avro

import (
	"fmt"
	"io"
)

///////////////////////////////////////////////////////////////////////////////

// DecodeValue decodes one datum of the given schema from the decoder.
// The walk mirrors the schema tree; self-referential schemas terminate
// because the binary stream only carries finitely many records.
func DecodeValue(schema *Schema, dec *BinaryDecoder) (Value, error) {
	switch schema.Type {
	case SchemaType_Null:
		return Value{Kind: SchemaType_Null}, nil

	case SchemaType_Boolean:
		b, err := dec.ReadBoolean()
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: SchemaType_Boolean, Boolean: b}, nil

	case SchemaType_Int:
		i, err := dec.ReadInt()
		if err != nil {
			return Value{}, eofToUnexpected(dec, err, "int")
		}
		return Value{Kind: SchemaType_Int, Int: i}, nil

	case SchemaType_Long:
		l, err := dec.ReadLong()
		if err != nil {
			return Value{}, eofToUnexpected(dec, err, "long")
		}
		return Value{Kind: SchemaType_Long, Long: l}, nil

	case SchemaType_Float:
		f, err := dec.ReadFloat()
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: SchemaType_Float, Float: f}, nil

	case SchemaType_Double:
		d, err := dec.ReadDouble()
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: SchemaType_Double, Double: d}, nil

	case SchemaType_Bytes:
		b, err := dec.ReadBytes()
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: SchemaType_Bytes, Bytes: b}, nil

	case SchemaType_String:
		s, err := dec.ReadString()
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: SchemaType_String, Str: s}, nil

	case SchemaType_Fixed:
		b, err := dec.ReadFixed(schema.Size)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: SchemaType_Fixed, Bytes: b}, nil

	case SchemaType_Enum:
		return decodeEnum(schema, dec)

	case SchemaType_Array:
		return decodeArray(schema, dec)

	case SchemaType_Map:
		return decodeMap(schema, dec)

	case SchemaType_Record:
		return decodeRecord(schema, dec)

	case SchemaType_Union:
		return decodeUnion(schema, dec)

	default:
		return Value{}, fmt.Errorf("%w: unhandled schema type %d", ErrMalformedData, schema.Type)
	}
}

///////////////////////////////////////////////////////////////////////////////

func decodeEnum(schema *Schema, dec *BinaryDecoder) (Value, error) {
	index, err := dec.ReadInt()
	if err != nil {
		return Value{}, eofToUnexpected(dec, err, "enum index")
	}
	if index < 0 || int(index) >= len(schema.Symbols) {
		return Value{}, malformedDataError(dec.Offset(),
			fmt.Sprintf("enum index %d out of range for %s", index, schema.Name))
	}
	return Value{
		Kind:  SchemaType_Enum,
		Index: int64(index),
		Str:   schema.Symbols[index],
	}, nil
}

func decodeArray(schema *Schema, dec *BinaryDecoder) (Value, error) {
	value := Value{Kind: SchemaType_Array, Items: []Value{}}
	for {
		count, err := dec.ReadBlockCount()
		if err != nil {
			return Value{}, err
		}
		if count == 0 {
			return value, nil
		}
		for i := int64(0); i < count; i++ {
			item, err := DecodeValue(schema.Items, dec)
			if err != nil {
				return Value{}, err
			}
			value.Items = append(value.Items, item)
		}
	}
}

func decodeMap(schema *Schema, dec *BinaryDecoder) (Value, error) {
	value := Value{Kind: SchemaType_Map, Entries: []MapEntry{}}
	index := make(map[string]int)
	for {
		count, err := dec.ReadBlockCount()
		if err != nil {
			return Value{}, err
		}
		if count == 0 {
			return value, nil
		}
		for i := int64(0); i < count; i++ {
			key, err := dec.ReadString()
			if err != nil {
				return Value{}, err
			}
			entry, err := DecodeValue(schema.Values, dec)
			if err != nil {
				return Value{}, err
			}
			// duplicate keys: the last occurrence wins, keeping the
			// first occurrence's position
			if at, exists := index[key]; exists {
				value.Entries[at].Value = entry
			} else {
				index[key] = len(value.Entries)
				value.Entries = append(value.Entries, MapEntry{Key: key, Value: entry})
			}
		}
	}
}

func decodeRecord(schema *Schema, dec *BinaryDecoder) (Value, error) {
	value := Value{Kind: SchemaType_Record, Fields: make([]RecordField, 0, len(schema.Fields))}
	for _, field := range schema.Fields {
		fieldValue, err := DecodeValue(field.Type, dec)
		if err != nil {
			return Value{}, fmt.Errorf("record %s field %s: %w", schema.Name, field.Name, err)
		}
		value.Fields = append(value.Fields, RecordField{Name: field.Name, Value: fieldValue})
	}
	return value, nil
}

func decodeUnion(schema *Schema, dec *BinaryDecoder) (Value, error) {
	branch, err := dec.ReadLong()
	if err != nil {
		return Value{}, eofToUnexpected(dec, err, "union branch")
	}
	if branch < 0 || int(branch) >= len(schema.Branches) {
		return Value{}, malformedDataError(dec.Offset(),
			fmt.Sprintf("union branch %d out of range", branch))
	}
	inner, err := DecodeValue(schema.Branches[branch], dec)
	if err != nil {
		return Value{}, err
	}
	return Value{Kind: SchemaType_Union, Index: branch, Inner: &inner}, nil
}

///////////////////////////////////////////////////////////////////////////////

// eofToUnexpected maps a bare io.EOF to ErrUnexpectedEOF: inside a datum,
// a clean stream end is still a truncation.
func eofToUnexpected(dec *BinaryDecoder, err error, what string) error {
	if err == io.EOF {
		return unexpectedEOFError(dec.Offset(), what)
	}
	return err
}
