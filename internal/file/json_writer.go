// Copyright (c) 2025 Neomantra Corp

package file

import (
	"fmt"
	"io"

	avro "github.com/NimbleMarkets/avro-go"
	"github.com/segmentio/encoding/json"
)

// WriteOcfFileAsJson writes every record of an Avro container file as a
// line of JSON to the writer, returning any error.
func WriteOcfFileAsJson(sourceFile string, forceZstdInput bool, writer io.Writer) error {
	scanner, closer, err := avro.OpenOcfFile(sourceFile, forceZstdInput)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", sourceFile, err)
	}
	if closer != nil {
		defer closer.Close()
	}

	if _, err := scanner.Header(); err != nil {
		return fmt.Errorf("scanner failed to read header: %w", err)
	}

	visitor := NewJsonWriterVisitor(writer)
	if err := scanner.Visit(visitor); err != nil {
		return fmt.Errorf("json print failed: %w", err)
	}
	return nil
}

////////////////////////////////////////////////////////////////////////////////

// WriteAsJson writes a value marshalled as JSON to the writer, returning any error.
func WriteAsJson(val any, writer io.Writer) error {
	jstr, err := json.Marshal(val)
	if err != nil {
		return err
	}
	_, err = writer.Write(jstr)
	if err != nil {
		return err
	}
	_, err = writer.Write([]byte{'\n'})
	return err
}

////////////////////////////////////////////////////////////////////////////////

// JsonWriterVisitor is an implementation of the avro.Visitor interface.
// It marshals every record as JSON and outputs it to its Writer.
type JsonWriterVisitor struct {
	writer io.Writer
}

// NewJsonWriterVisitor creates a new JsonWriterVisitor with the given writer.
func NewJsonWriterVisitor(writer io.Writer) *JsonWriterVisitor {
	return &JsonWriterVisitor{writer: writer}
}

func (v *JsonWriterVisitor) OnValue(value avro.Value) error {
	return WriteAsJson(value, v.writer)
}

func (v *JsonWriterVisitor) OnStreamEnd() error {
	return nil
}
