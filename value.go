// Copyright (c) 2025 Neomantra Corp

package avro

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"strconv"
)

///////////////////////////////////////////////////////////////////////////////

// Value is a decoded Avro datum, tagged by the SchemaType of the schema
// node it was decoded against.  Only the fields for its Kind are set.
type Value struct {
	Kind SchemaType

	Boolean bool
	Int     int32
	Long    int64
	Float   float32
	Double  float64
	Bytes   []byte // bytes and fixed
	Str     string // string, and the enum symbol
	Index   int64  // enum symbol index, or union branch index

	Items   []Value       // array elements, in stream order
	Entries []MapEntry    // map entries, insertion order preserved
	Fields  []RecordField // record fields, in declared order
	Inner   *Value        // union inner value
}

// MapEntry is one map entry.  Duplicate keys are resolved last-wins
// during decoding, so keys are unique here.
type MapEntry struct {
	Key   string
	Value Value
}

// RecordField is one decoded record field.
type RecordField struct {
	Name  string
	Value Value
}

///////////////////////////////////////////////////////////////////////////////

// MarshalJSON renders the value as plain JSON for diagnostic output:
// records and maps become objects with insertion order preserved, unions
// collapse to their inner value, enums to their symbol, and bytes/fixed
// to base64 strings.  This is not the Avro JSON encoding.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) writeJSON(buf *bytes.Buffer) error {
	switch v.Kind {
	case SchemaType_Null:
		buf.WriteString("null")
	case SchemaType_Boolean:
		buf.WriteString(strconv.FormatBool(v.Boolean))
	case SchemaType_Int:
		buf.WriteString(strconv.FormatInt(int64(v.Int), 10))
	case SchemaType_Long:
		buf.WriteString(strconv.FormatInt(v.Long, 10))
	case SchemaType_Float:
		return writeJSONFloat(buf, float64(v.Float), 32)
	case SchemaType_Double:
		return writeJSONFloat(buf, v.Double, 64)
	case SchemaType_Bytes, SchemaType_Fixed:
		buf.WriteByte('"')
		buf.WriteString(base64.StdEncoding.EncodeToString(v.Bytes))
		buf.WriteByte('"')
	case SchemaType_String, SchemaType_Enum:
		return writeJSONString(buf, v.Str)
	case SchemaType_Array:
		buf.WriteByte('[')
		for i := range v.Items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := v.Items[i].writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case SchemaType_Map:
		buf.WriteByte('{')
		for i := range v.Entries {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONString(buf, v.Entries[i].Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := v.Entries[i].Value.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case SchemaType_Record:
		buf.WriteByte('{')
		for i := range v.Fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONString(buf, v.Fields[i].Name); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := v.Fields[i].Value.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case SchemaType_Union:
		if v.Inner == nil {
			buf.WriteString("null")
		} else {
			return v.Inner.writeJSON(buf)
		}
	}
	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	encoded, err := json.Marshal(s)
	if err != nil {
		return err
	}
	buf.Write(encoded)
	return nil
}

func writeJSONFloat(buf *bytes.Buffer, f float64, bits int) error {
	encoded, err := json.Marshal(json.Number(strconv.FormatFloat(f, 'g', -1, bits)))
	if err != nil {
		return err
	}
	buf.Write(encoded)
	return nil
}
