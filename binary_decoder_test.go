// Copyright (c) 2025 Neomantra Corp

package avro_test

import (
	"bytes"
	"io"
	"math"

	avro "github.com/NimbleMarkets/avro-go"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func decoderFor(data []byte) *avro.BinaryDecoder {
	return avro.NewBinaryDecoder(bytes.NewReader(data))
}

var _ = Describe("BinaryDecoder", func() {
	Context("booleans", func() {
		It("should decode 0x00 and 0x01", func() {
			dec := decoderFor([]byte{0x00, 0x01})
			b, err := dec.ReadBoolean()
			Expect(err).To(BeNil())
			Expect(b).To(BeFalse())
			b, err = dec.ReadBoolean()
			Expect(err).To(BeNil())
			Expect(b).To(BeTrue())
		})

		It("should reject any other byte", func() {
			_, err := decoderFor([]byte{0x02}).ReadBoolean()
			Expect(err).To(MatchError(avro.ErrMalformedData))
		})

		It("should report truncation", func() {
			_, err := decoderFor(nil).ReadBoolean()
			Expect(err).To(MatchError(avro.ErrUnexpectedEOF))
		})
	})

	Context("zig-zag varints", func() {
		It("should round-trip longs across the range", func() {
			values := []int64{0, -1, 1, -2, 42, -100, 63, -64, 64,
				math.MaxInt32, math.MinInt32, math.MaxInt64, math.MinInt64}
			var buf []byte
			for _, v := range values {
				buf = appendLong(buf, v)
			}
			dec := decoderFor(buf)
			for _, want := range values {
				got, err := dec.ReadLong()
				Expect(err).To(BeNil())
				Expect(got).To(Equal(want))
			}
		})

		It("should round-trip ints at the boundaries", func() {
			values := []int32{0, -1, 1, math.MaxInt32, math.MinInt32}
			var buf []byte
			for _, v := range values {
				buf = appendInt(buf, v)
			}
			dec := decoderFor(buf)
			for _, want := range values {
				got, err := dec.ReadInt()
				Expect(err).To(BeNil())
				Expect(got).To(Equal(want))
			}
		})

		It("should use known encodings", func() {
			// 1 -> 02, -1 -> 01, -64 -> 7f, 64 -> 80 01
			dec := decoderFor([]byte{0x02, 0x01, 0x7f, 0x80, 0x01})
			for _, want := range []int64{1, -1, -64, 64} {
				got, err := dec.ReadLong()
				Expect(err).To(BeNil())
				Expect(got).To(Equal(want))
			}
		})

		It("should reject an int wider than 32 bits", func() {
			// five full payload bytes carry 35 bits
			_, err := decoderFor([]byte{0xff, 0xff, 0xff, 0xff, 0x7f}).ReadInt()
			Expect(err).To(MatchError(avro.ErrMalformedData))
		})

		It("should reject an int varint longer than 5 bytes", func() {
			_, err := decoderFor([]byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x01}).ReadInt()
			Expect(err).To(MatchError(avro.ErrMalformedData))
		})

		It("should accept a 10-byte long varint", func() {
			// zig-zag(MinInt64) is all ones
			data := []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01}
			got, err := decoderFor(data).ReadLong()
			Expect(err).To(BeNil())
			Expect(got).To(Equal(int64(math.MinInt64)))
		})

		It("should reject a long varint consuming an 11th byte", func() {
			data := []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x01}
			_, err := decoderFor(data).ReadLong()
			Expect(err).To(MatchError(avro.ErrMalformedData))
		})

		It("should report EOF mid-varint as truncation", func() {
			_, err := decoderFor([]byte{0x80}).ReadLong()
			Expect(err).To(MatchError(avro.ErrUnexpectedEOF))
		})

		It("should pass through a clean EOF before the first byte", func() {
			_, err := decoderFor(nil).ReadLong()
			Expect(err).To(Equal(io.EOF))
		})
	})

	Context("floats", func() {
		It("should decode little-endian IEEE-754", func() {
			dec := decoderFor([]byte{
				0x00, 0x00, 0x80, 0x3f, // float32(1.0)
				0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xf0, 0xbf, // float64(-1.0)
			})
			f, err := dec.ReadFloat()
			Expect(err).To(BeNil())
			Expect(f).To(Equal(float32(1.0)))
			d, err := dec.ReadDouble()
			Expect(err).To(BeNil())
			Expect(d).To(Equal(float64(-1.0)))
		})

		It("should report short reads", func() {
			_, err := decoderFor([]byte{0x00, 0x00}).ReadFloat()
			Expect(err).To(MatchError(avro.ErrUnexpectedEOF))
		})
	})

	Context("bytes and strings", func() {
		It("should decode length-prefixed bytes", func() {
			buf := appendBytes(nil, []byte{0xde, 0xad})
			b, err := decoderFor(buf).ReadBytes()
			Expect(err).To(BeNil())
			Expect(b).To(Equal([]byte{0xde, 0xad}))
		})

		It("should decode an empty string", func() {
			s, err := decoderFor(appendString(nil, "")).ReadString()
			Expect(err).To(BeNil())
			Expect(s).To(Equal(""))
		})

		It("should reject a negative length", func() {
			_, err := decoderFor(appendLong(nil, -1)).ReadBytes()
			Expect(err).To(MatchError(avro.ErrMalformedData))
		})

		It("should reject invalid UTF-8", func() {
			buf := appendBytes(nil, []byte{0xff})
			_, err := decoderFor(buf).ReadString()
			Expect(err).To(MatchError(avro.ErrMalformedData))
		})

		It("should report truncated payloads", func() {
			buf := appendLong(nil, 100)
			_, err := decoderFor(append(buf, 'x')).ReadBytes()
			Expect(err).To(MatchError(avro.ErrUnexpectedEOF))
		})
	})

	Context("fixed", func() {
		It("should read exactly the declared size", func() {
			dec := decoderFor([]byte{1, 2, 3, 4})
			b, err := dec.ReadFixed(3)
			Expect(err).To(BeNil())
			Expect(b).To(Equal([]byte{1, 2, 3}))
			Expect(dec.Offset()).To(Equal(int64(3)))
		})
	})

	Context("block counts", func() {
		It("should return positive counts as-is", func() {
			count, err := decoderFor(appendLong(nil, 3)).ReadBlockCount()
			Expect(err).To(BeNil())
			Expect(count).To(Equal(int64(3)))
		})

		It("should consume the byte size of a negative-count block", func() {
			buf := appendLong(nil, -2)
			buf = appendLong(buf, 10) // block byte size, skipped
			buf = appendLong(buf, 7)  // next datum, must remain readable
			dec := decoderFor(buf)
			count, err := dec.ReadBlockCount()
			Expect(err).To(BeNil())
			Expect(count).To(Equal(int64(2)))
			next, err := dec.ReadLong()
			Expect(err).To(BeNil())
			Expect(next).To(Equal(int64(7)))
		})
	})
})
