// Copyright (c) 2025 Neomantra Corp

package avro

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
)

///////////////////////////////////////////////////////////////////////////////

// OcfScanner scans an Avro object container file stream, yielding one
// decoded Value per record in writer order.  A scanner is single-use and
// not safe for concurrent use; independent scanners over independent
// sources may run in parallel.
type OcfScanner struct {
	srcReader io.Reader      // the source we pull data from
	decoder   *BinaryDecoder // buffered decoder over srcReader
	header    *FileHeader    // the parsed file header
	lastError error          // the last error encountered; io.EOF at clean end
	value     Value          // last record decoded by Next

	blockRemaining int64          // records left in the current block
	blockDecoder   *BinaryDecoder // decoder over the current block payload
	blockBuf       []byte         // raw payload buffer, reused across blocks
	inflateBuf     bytes.Buffer   // decompressed payload, reused across blocks
	inflater       io.ReadCloser  // deflate reader, reused via flate.Resetter
}

// NewOcfScanner creates a new avro.OcfScanner over the reader.
func NewOcfScanner(sourceReader io.Reader) *OcfScanner {
	return &OcfScanner{
		srcReader: sourceReader,
		decoder:   NewBinaryDecoder(sourceReader),
	}
}

/////////////////////////////////////////////////////////////////////////////

// Header returns the container file header, or nil if none.
// May try to read the header, which may result in an error.
func (s *OcfScanner) Header() (*FileHeader, error) {
	if s.header != nil {
		return s.header, nil
	}
	err := s.readHeader()
	return s.header, err
}

// Schema returns the writer's schema from the file header.
func (s *OcfScanner) Schema() (*Schema, error) {
	header, err := s.Header()
	if err != nil {
		return nil, err
	}
	return header.Schema, nil
}

// Error returns the last error from Next().  May be io.EOF, which marks
// normal exhaustion at a block boundary.
func (s *OcfScanner) Error() error {
	return s.lastError
}

// Value returns the last record decoded by Next.
func (s *OcfScanner) Value() Value {
	return s.value
}

/////////////////////////////////////////////////////////////////////////////

// readHeader is an internal method to read the file header from the stream.
func (s *OcfScanner) readHeader() error {
	if s.header != nil {
		return nil
	}
	if s.lastError != nil {
		return s.lastError
	}
	h, err := ReadFileHeader(s.decoder)
	if err != nil {
		s.lastError = err
		return err
	}
	s.header = h
	return nil
}

// Next decodes the next record from the stream.  Returns false at the
// end of the stream or on error; call Error to tell which.  Errors are
// terminal: once Next has returned false it never advances again.
func (s *OcfScanner) Next() bool {
	if s.lastError != nil {
		return false
	}
	if s.header == nil {
		if err := s.readHeader(); err != nil {
			return false
		}
	}

	// advance to a block with records; a zero-count block is legal
	for s.blockRemaining == 0 {
		if err := s.readBlock(); err != nil {
			s.lastError = err
			return false
		}
	}

	value, err := DecodeValue(s.header.Schema, s.blockDecoder)
	if err != nil {
		s.lastError = err
		return false
	}
	s.blockRemaining--
	s.value = value

	// the trailing sync is checked as soon as the block drains, so a
	// corrupt trailer surfaces before any record of the next block
	if s.blockRemaining == 0 {
		if err := s.verifySync(); err != nil {
			s.lastError = err
		}
	}
	return true
}

// readBlock reads the next block header, materializes its payload
// (inflating when the codec requires), and primes the block decoder.
// A clean EOF before the block count is io.EOF: normal termination.
func (s *OcfScanner) readBlock() error {
	count, err := s.decoder.ReadLong()
	if err != nil {
		return err // io.EOF here is the normal end of the file
	}
	if count < 0 {
		return malformedDataError(s.decoder.Offset(), "negative block record count")
	}

	size, err := s.decoder.ReadLong()
	if err != nil {
		return eofToUnexpected(s.decoder, err, "block byte size")
	}
	if size < 0 {
		return malformedDataError(s.decoder.Offset(), "negative block byte size")
	}

	if cap(s.blockBuf) < int(size) {
		s.blockBuf = make([]byte, size)
	}
	s.blockBuf = s.blockBuf[:size]
	if err := s.decoder.readFull(s.blockBuf); err != nil {
		return err
	}

	if count == 0 {
		// the payload was consumed above; nothing to decode
		return s.verifySync()
	}

	payload := s.blockBuf
	if s.header.Codec == Codec_Deflate {
		if payload, err = s.inflate(payload); err != nil {
			return err
		}
	}
	s.blockDecoder = NewBinaryDecoder(bytes.NewReader(payload))
	s.blockRemaining = count
	return nil
}

// inflate decompresses a raw-DEFLATE block payload into the reused buffer.
func (s *OcfScanner) inflate(compressed []byte) ([]byte, error) {
	if s.inflater == nil {
		s.inflater = flate.NewReader(bytes.NewReader(compressed))
	} else {
		if err := s.inflater.(flate.Resetter).Reset(bytes.NewReader(compressed), nil); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrDecompressionFailed, err.Error())
		}
	}
	s.inflateBuf.Reset()
	if _, err := s.inflateBuf.ReadFrom(s.inflater); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrDecompressionFailed, err.Error())
	}
	return s.inflateBuf.Bytes(), nil
}

// verifySync reads the block trailer and compares it to the header's
// sync marker.
func (s *OcfScanner) verifySync() error {
	trailer, err := s.decoder.ReadFixed(SyncMarker_Size)
	if err != nil {
		return err
	}
	if !bytes.Equal(trailer, s.header.Sync[:]) {
		return ErrCorruptSyncMarker
	}
	return nil
}

/////////////////////////////////////////////////////////////////////////////

// ReadOcfToSlice reads an entire Avro container file from an io.Reader.
// Returns the decoded records, the file header, and any error.
// Example:
//
//	fileReader, err := os.Open(avroFilename)
//	records, header, err := avro.ReadOcfToSlice(fileReader)
func ReadOcfToSlice(reader io.Reader) ([]Value, *FileHeader, error) {
	records := make([]Value, 0)
	scanner := NewOcfScanner(reader)
	for scanner.Next() {
		records = append(records, scanner.Value())
	}
	err := scanner.Error()
	if err == io.EOF {
		// In this function, EOF is not propagated as an error
		err = nil
	}
	return records, scanner.header, err
}
