// Copyright (c) 2025 Neomantra Corp

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	avro "github.com/NimbleMarkets/avro-go"
	"github.com/mark3labs/mcp-go/mcp"
	mcp_server "github.com/mark3labs/mcp-go/server"
)

///////////////////////////////////////////////////////////////////////////////

// registerTools registers all MCP tools with the server.
func registerTools(mcpServer *mcp_server.MCPServer) {
	// avro_metadata - header inspection
	mcpServer.AddTool(
		mcp.NewTool("avro_metadata",
			mcp.WithDescription("Reads the header of a local Avro object container file and returns its metadata as JSON: the writer's schema, the block codec, the sync marker, and any custom metadata entries. Use this to understand a file before sampling its records."),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithDestructiveHintAnnotation(false),
			mcp.WithIdempotentHintAnnotation(true),
			mcp.WithString("path",
				mcp.Required(),
				mcp.Description("Filesystem path of the Avro container file. Files with a .zst/.zstd suffix are decompressed transparently."),
			),
		),
		avroMetadataHandler,
	)
	// avro_records - bounded record sampling
	mcpServer.AddTool(
		mcp.NewTool("avro_records",
			mcp.WithDescription("Reads records from a local Avro object container file and returns them as JSON, one document per record in writer order. The count is bounded by the 'limit' argument and the server's --max-records setting."),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithDestructiveHintAnnotation(false),
			mcp.WithIdempotentHintAnnotation(true),
			mcp.WithString("path",
				mcp.Required(),
				mcp.Description("Filesystem path of the Avro container file. Files with a .zst/.zstd suffix are decompressed transparently."),
			),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of records to return (default 10)."),
			),
		),
		avroRecordsHandler,
	)
}

///////////////////////////////////////////////////////////////////////////////

func avroMetadataHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("path must be set"), nil
	}

	scanner, closer, err := avro.OpenOcfFile(path, false)
	if err != nil {
		return mcp.NewToolResultErrorf("failed to open %s: %s", path, err), nil
	}
	defer closer.Close()

	header, err := scanner.Header()
	if err != nil {
		return mcp.NewToolResultErrorf("failed to read header: %s", err), nil
	}

	meta := make(map[string]string, len(header.Meta))
	for key, value := range header.Meta {
		meta[key] = string(value)
	}
	jbytes, err := json.Marshal(map[string]any{
		"schema": json.RawMessage(header.SchemaJSON),
		"codec":  header.Codec.String(),
		"sync":   fmt.Sprintf("%x", header.Sync),
		"meta":   meta,
	})
	if err != nil {
		return mcp.NewToolResultErrorf("failed to marshal results: %s", err), nil
	}

	logger.Info("avro_metadata", "path", path, "codec", header.Codec.String())
	return mcp.NewToolResultText(string(jbytes)), nil
}

func avroRecordsHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("path must be set"), nil
	}
	limit := request.GetInt("limit", 10)
	if config.MaxRecords > 0 && limit > config.MaxRecords {
		limit = config.MaxRecords
	}

	scanner, closer, err := avro.OpenOcfFile(path, false)
	if err != nil {
		return mcp.NewToolResultErrorf("failed to open %s: %s", path, err), nil
	}
	defer closer.Close()

	var buf bytes.Buffer
	count := 0
	for count < limit && scanner.Next() {
		jbytes, err := json.Marshal(scanner.Value())
		if err != nil {
			return mcp.NewToolResultErrorf("failed to marshal record: %s", err), nil
		}
		buf.Write(jbytes)
		buf.WriteByte('\n')
		count++
	}
	if err := scanner.Error(); err != nil && err != io.EOF {
		return mcp.NewToolResultErrorf("scanner error: %s", err), nil
	}

	logger.Info("avro_records", "path", path, "count", count)
	return mcp.NewToolResultText(buf.String()), nil
}
