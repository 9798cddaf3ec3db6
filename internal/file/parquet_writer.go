// Copyright (c) 2025 Neomantra Corp

package file

import (
	"fmt"
	"io"

	avro "github.com/NimbleMarkets/avro-go"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	pqfile "github.com/apache/arrow-go/v18/parquet/file"
	pqschema "github.com/apache/arrow-go/v18/parquet/schema"
)

// WriteOcfFileAsParquet converts an Avro container file to a Parquet file.
// Only flat record schemas whose fields are all primitive are supported;
// anything else returns an error naming the unsupported shape.
func WriteOcfFileAsParquet(sourceFile string, forceZstdInput bool, destFile string) error {
	scanner, closer, err := avro.OpenOcfFile(sourceFile, forceZstdInput)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", sourceFile, err)
	}
	if closer != nil {
		defer closer.Close()
	}

	header, err := scanner.Header()
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}

	// Grab the appropriate Parquet schema
	pqGroupNode, err := ParquetGroupNodeForSchema(header.Schema)
	if err != nil {
		return err
	}

	// Prepare for writing
	outfile, outfileCloser, err := avro.MakeCompressedWriter(destFile, false)
	if err != nil {
		return fmt.Errorf("failed to create writer %w", err)
	}
	defer outfileCloser()

	pwProperties := parquet.NewWriterProperties(
		parquet.WithVersion(parquet.V2_LATEST),
		parquet.WithCompression(compress.Codecs.Snappy))

	pw := pqfile.NewParquetWriter(outfile, pqGroupNode, pqfile.WithWriterProps(pwProperties))
	defer pw.Close()

	rgw := pw.AppendBufferedRowGroup()

	for scanner.Next() {
		if err := parquetWriteRow(rgw, header.Schema, scanner.Value()); err != nil {
			return err
		}
	}
	if err := scanner.Error(); err != nil && err != io.EOF {
		return fmt.Errorf("scanner error: %w", err)
	}

	// Flush and close the parquet writer
	rgw.Close()
	if err := pw.FlushWithFooter(); err != nil {
		return fmt.Errorf("failed to flush: %w", err)
	}
	return nil
}

///////////////////////////////////////////////////////////////////////////////

// ParquetGroupNodeForSchema builds the Parquet GroupNode for a flat
// record schema of primitive fields.
func ParquetGroupNodeForSchema(schema *avro.Schema) (*pqschema.GroupNode, error) {
	if schema.Type != avro.SchemaType_Record {
		return nil, fmt.Errorf("no converter for schema %s", schema.String())
	}
	fields := make(pqschema.FieldList, 0, len(schema.Fields))
	for _, field := range schema.Fields {
		switch field.Type.Type {
		case avro.SchemaType_Boolean:
			fields = append(fields, pqschema.NewBooleanNode(field.Name, parquet.Repetitions.Required, -1))
		case avro.SchemaType_Int:
			fields = append(fields, pqschema.NewInt32Node(field.Name, parquet.Repetitions.Required, -1))
		case avro.SchemaType_Long:
			fields = append(fields, pqschema.NewInt64Node(field.Name, parquet.Repetitions.Required, -1))
		case avro.SchemaType_Float:
			fields = append(fields, pqschema.NewFloat32Node(field.Name, parquet.Repetitions.Required, -1))
		case avro.SchemaType_Double:
			fields = append(fields, pqschema.NewFloat64Node(field.Name, parquet.Repetitions.Required, -1))
		case avro.SchemaType_String:
			fields = append(fields, pqschema.MustPrimitive(pqschema.NewPrimitiveNodeConverted(
				field.Name, parquet.Repetitions.Required, parquet.Types.ByteArray,
				pqschema.ConvertedTypes.UTF8, 0, 0, 0, -1)))
		case avro.SchemaType_Bytes, avro.SchemaType_Fixed:
			fields = append(fields, pqschema.NewByteArrayNode(field.Name, parquet.Repetitions.Required, -1))
		default:
			return nil, fmt.Errorf("no converter for field %s of type %s",
				field.Name, field.Type.String())
		}
	}
	return pqschema.MustGroup(pqschema.NewGroupNode("schema", parquet.Repetitions.Required, fields, -1)), nil
}

func parquetWriteRow(rgw pqfile.BufferedRowGroupWriter, schema *avro.Schema, record avro.Value) error {
	for i, field := range record.Fields {
		cw, err := rgw.Column(i)
		if err != nil {
			return err
		}
		switch fieldType := schema.Fields[i].Type.Type; fieldType {
		case avro.SchemaType_Boolean:
			cw.(*pqfile.BooleanColumnChunkWriter).WriteBatch([]bool{field.Value.Boolean}, nil, nil)
		case avro.SchemaType_Int:
			cw.(*pqfile.Int32ColumnChunkWriter).WriteBatch([]int32{field.Value.Int}, nil, nil)
		case avro.SchemaType_Long:
			cw.(*pqfile.Int64ColumnChunkWriter).WriteBatch([]int64{field.Value.Long}, nil, nil)
		case avro.SchemaType_Float:
			cw.(*pqfile.Float32ColumnChunkWriter).WriteBatch([]float32{field.Value.Float}, nil, nil)
		case avro.SchemaType_Double:
			cw.(*pqfile.Float64ColumnChunkWriter).WriteBatch([]float64{field.Value.Double}, nil, nil)
		case avro.SchemaType_String:
			cw.(*pqfile.ByteArrayColumnChunkWriter).WriteBatch([]parquet.ByteArray{parquet.ByteArray(field.Value.Str)}, nil, nil)
		case avro.SchemaType_Bytes, avro.SchemaType_Fixed:
			cw.(*pqfile.ByteArrayColumnChunkWriter).WriteBatch([]parquet.ByteArray{parquet.ByteArray(field.Value.Bytes)}, nil, nil)
		default:
			return fmt.Errorf("no converter for field %s of type %s",
				schema.Fields[i].Name, fieldType.String())
		}
	}
	return nil
}
