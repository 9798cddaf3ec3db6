// Copyright (c) 2025 Neomantra Corp

package avro_test

import (
	"bytes"

	avro "github.com/NimbleMarkets/avro-go"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// decodeWith parses the schema and decodes one datum from data.
func decodeWith(schemaJson string, data []byte) (avro.Value, error) {
	schema, err := avro.ParseSchemaString(schemaJson)
	Expect(err).To(BeNil())
	return avro.DecodeValue(schema, avro.NewBinaryDecoder(bytes.NewReader(data)))
}

var _ = Describe("DecodeValue", func() {
	Context("arrays", func() {
		It("should concatenate multiple blocks", func() {
			var buf []byte
			buf = appendLong(buf, 2) // first block: two items
			buf = appendLong(buf, 10)
			buf = appendLong(buf, 20)
			buf = appendLong(buf, 1) // second block: one item
			buf = appendLong(buf, 30)
			buf = appendLong(buf, 0) // terminator

			value, err := decodeWith(`{"type":"array","items":"long"}`, buf)
			Expect(err).To(BeNil())
			Expect(value.Kind).To(Equal(avro.SchemaType_Array))
			Expect(len(value.Items)).To(Equal(3))
			Expect(value.Items[0].Long).To(Equal(int64(10)))
			Expect(value.Items[1].Long).To(Equal(int64(20)))
			Expect(value.Items[2].Long).To(Equal(int64(30)))
		})

		It("should read the items of a size-prefixed negative-count block", func() {
			items := appendLong(nil, 5)
			items = appendLong(items, 6)
			var buf []byte
			buf = appendLong(buf, -2)
			buf = appendLong(buf, int64(len(items)))
			buf = append(buf, items...)
			buf = appendLong(buf, 0)

			value, err := decodeWith(`{"type":"array","items":"long"}`, buf)
			Expect(err).To(BeNil())
			Expect(len(value.Items)).To(Equal(2))
			Expect(value.Items[0].Long).To(Equal(int64(5)))
			Expect(value.Items[1].Long).To(Equal(int64(6)))
		})

		It("should decode an empty array", func() {
			value, err := decodeWith(`{"type":"array","items":"long"}`, appendLong(nil, 0))
			Expect(err).To(BeNil())
			Expect(len(value.Items)).To(Equal(0))
		})
	})

	Context("maps", func() {
		It("should preserve insertion order", func() {
			var buf []byte
			buf = appendLong(buf, 2)
			buf = appendString(buf, "b")
			buf = appendLong(buf, 2)
			buf = appendString(buf, "a")
			buf = appendLong(buf, 1)
			buf = appendLong(buf, 0)

			value, err := decodeWith(`{"type":"map","values":"long"}`, buf)
			Expect(err).To(BeNil())
			Expect(value.Kind).To(Equal(avro.SchemaType_Map))
			Expect(value.Entries[0].Key).To(Equal("b"))
			Expect(value.Entries[0].Value.Long).To(Equal(int64(2)))
			Expect(value.Entries[1].Key).To(Equal("a"))
			Expect(value.Entries[1].Value.Long).To(Equal(int64(1)))
		})

		It("should let the last duplicate key win without failing", func() {
			var buf []byte
			buf = appendLong(buf, 3)
			buf = appendString(buf, "k")
			buf = appendLong(buf, 1)
			buf = appendString(buf, "other")
			buf = appendLong(buf, 5)
			buf = appendString(buf, "k")
			buf = appendLong(buf, 9)
			buf = appendLong(buf, 0)

			value, err := decodeWith(`{"type":"map","values":"long"}`, buf)
			Expect(err).To(BeNil())
			Expect(len(value.Entries)).To(Equal(2))
			Expect(value.Entries[0].Key).To(Equal("k"))
			Expect(value.Entries[0].Value.Long).To(Equal(int64(9)))
			Expect(value.Entries[1].Key).To(Equal("other"))
		})
	})

	Context("enums", func() {
		const suit = `{"type":"enum","name":"suit","symbols":["SPADES","HEARTS"]}`

		It("should carry the index and the symbol", func() {
			value, err := decodeWith(suit, appendInt(nil, 1))
			Expect(err).To(BeNil())
			Expect(value.Kind).To(Equal(avro.SchemaType_Enum))
			Expect(value.Index).To(Equal(int64(1)))
			Expect(value.Str).To(Equal("HEARTS"))
		})

		It("should reject out-of-range indices", func() {
			_, err := decodeWith(suit, appendInt(nil, 2))
			Expect(err).To(MatchError(avro.ErrMalformedData))
			_, err = decodeWith(suit, appendInt(nil, -1))
			Expect(err).To(MatchError(avro.ErrMalformedData))
		})
	})

	Context("unions", func() {
		It("should decode the selected branch", func() {
			value, err := decodeWith(`["null","boolean"]`, []byte{0x02, 0x01})
			Expect(err).To(BeNil())
			Expect(value.Kind).To(Equal(avro.SchemaType_Union))
			Expect(value.Index).To(Equal(int64(1)))
			Expect(value.Inner.Kind).To(Equal(avro.SchemaType_Boolean))
			Expect(value.Inner.Boolean).To(BeTrue())
		})

		It("should decode the null branch with no further bytes", func() {
			value, err := decodeWith(`["null","boolean"]`, appendLong(nil, 0))
			Expect(err).To(BeNil())
			Expect(value.Index).To(Equal(int64(0)))
			Expect(value.Inner.Kind).To(Equal(avro.SchemaType_Null))
		})

		It("should reject out-of-range branch indices", func() {
			_, err := decodeWith(`["null","boolean"]`, appendLong(nil, 2))
			Expect(err).To(MatchError(avro.ErrMalformedData))
		})
	})

	Context("records", func() {
		It("should decode fields in declared order", func() {
			var buf []byte
			buf = appendString(buf, "bloblaw@example.com")
			buf = appendInt(buf, 42)

			value, err := decodeWith(`{
				"type": "record", "name": "user",
				"fields": [
					{"name": "email", "type": "string"},
					{"name": "age", "type": "int"}
				]
			}`, buf)
			Expect(err).To(BeNil())
			Expect(value.Kind).To(Equal(avro.SchemaType_Record))
			Expect(value.Fields[0].Name).To(Equal("email"))
			Expect(value.Fields[0].Value.Str).To(Equal("bloblaw@example.com"))
			Expect(value.Fields[1].Name).To(Equal("age"))
			Expect(value.Fields[1].Value.Int).To(Equal(int32(42)))
		})

		It("should decode a self-referential list to its full depth", func() {
			// LongList{1, LongList{2, LongList{3, null}}}
			var buf []byte
			for _, v := range []int64{1, 2, 3} {
				buf = appendLong(buf, v)
				branch := int64(1)
				if v == 3 {
					branch = 0
				}
				buf = appendLong(buf, branch)
			}

			value, err := decodeWith(`{
				"type": "record", "name": "LongList",
				"fields": [
					{"name": "value", "type": "long"},
					{"name": "next", "type": ["null", "LongList"]}
				]
			}`, buf)
			Expect(err).To(BeNil())

			depth := 0
			for node := &value; node != nil; {
				depth++
				Expect(node.Fields[0].Value.Long).To(Equal(int64(depth)))
				next := node.Fields[1].Value
				if next.Index == 0 {
					node = nil
				} else {
					node = next.Inner
				}
			}
			Expect(depth).To(Equal(3))
		})
	})

	Context("fixed", func() {
		It("should read the declared byte length", func() {
			value, err := decodeWith(`{"type":"fixed","name":"pair","size":2}`, []byte{0xca, 0xfe, 0x00})
			Expect(err).To(BeNil())
			Expect(value.Kind).To(Equal(avro.SchemaType_Fixed))
			Expect(value.Bytes).To(Equal([]byte{0xca, 0xfe}))
		})
	})

	Context("truncation", func() {
		It("should report EOF inside a datum as unexpected", func() {
			_, err := decodeWith(`"long"`, nil)
			Expect(err).To(MatchError(avro.ErrUnexpectedEOF))

			_, err = decodeWith(`"string"`, appendLong(nil, 5))
			Expect(err).To(MatchError(avro.ErrUnexpectedEOF))
		})
	})
})
