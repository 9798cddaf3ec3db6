// Copyright (c) 2025 Neomantra Corp

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	avro "github.com/NimbleMarkets/avro-go"
	avro_file "github.com/NimbleMarkets/avro-go/internal/file"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

///////////////////////////////////////////////////////////////////////////////

var (
	verbose bool

	destFile string // destination file for conversions

	forceZstdInput = false // force input to be zstd, irrespective of filename suffix
)

func requireNoErrorWithoutPrint(err error) {
	if err != nil {
		os.Exit(1)
	}
}

///////////////////////////////////////////////////////////////////////////////

func main() {
	cobra.OnInitialize()

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(printMetadataCmd)
	printMetadataCmd.Flags().BoolVarP(&forceZstdInput, "zstd", "z", false, "Input is zstd (useful for handling zstd on stdin)")

	rootCmd.AddCommand(printSchemaCmd)
	printSchemaCmd.Flags().BoolVarP(&forceZstdInput, "zstd", "z", false, "Input is zstd (useful for handling zstd on stdin)")

	rootCmd.AddCommand(jsonPrintCmd)
	jsonPrintCmd.Flags().BoolVarP(&forceZstdInput, "zstd", "z", false, "Input is zstd (useful for handling zstd on stdin)")

	rootCmd.AddCommand(parquetCmd)
	parquetCmd.Flags().BoolVarP(&forceZstdInput, "zstd", "z", false, "Input is zstd (useful for handling zstd on stdin)")
	parquetCmd.Flags().StringVarP(&destFile, "dest", "d", "", "Destination file")
	parquetCmd.MarkFlagRequired("dest")

	rootCmd.AddCommand(countCmd)
	countCmd.Flags().BoolVarP(&forceZstdInput, "zstd", "z", false, "Input is zstd (useful for handling zstd on stdin)")

	err := rootCmd.Execute()
	requireNoErrorWithoutPrint(err)
}

///////////////////////////////////////////////////////////////////////////////

var rootCmd = &cobra.Command{
	Use:   "avro-go-file",
	Short: "avro-go-file processes Avro object container files",
	Long:  "avro-go-file processes Avro object container files",
}

///////////////////////////////////////////////////////////////////////////////

var printMetadataCmd = &cobra.Command{
	Use:   "metadata file...",
	Short: `Prints the specified file's header metadata as JSON`,
	Long:  `Prints the specified file's header metadata as JSON`,
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		for _, sourceFile := range args {
			if err := printMetadata(sourceFile, forceZstdInput); err != nil {
				fmt.Fprintf(os.Stderr, "error: reading %s: %s\n", sourceFile, err.Error())
			}
		}
	},
}

func printMetadata(sourceFile string, forceZstd bool) error {
	scanner, closer, err := avro.OpenOcfFile(sourceFile, forceZstd)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	header, err := scanner.Header()
	if err != nil {
		return fmt.Errorf("scanner failed to read header: %w", err)
	}

	meta := make(map[string]string, len(header.Meta))
	for key, value := range header.Meta {
		meta[key] = string(value)
	}
	jstr, err := json.Marshal(map[string]any{
		"codec": header.Codec.String(),
		"sync":  fmt.Sprintf("%x", header.Sync),
		"meta":  meta,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	fmt.Printf("%s\n", jstr)
	return nil
}

///////////////////////////////////////////////////////////////////////////////

var printSchemaCmd = &cobra.Command{
	Use:   "schema file...",
	Short: `Prints the specified file's writer schema JSON`,
	Long:  `Prints the specified file's writer schema JSON`,
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		for _, sourceFile := range args {
			if err := printSchema(sourceFile, forceZstdInput); err != nil {
				fmt.Fprintf(os.Stderr, "error: reading %s: %s\n", sourceFile, err.Error())
			}
		}
	},
}

func printSchema(sourceFile string, forceZstd bool) error {
	scanner, closer, err := avro.OpenOcfFile(sourceFile, forceZstd)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	header, err := scanner.Header()
	if err != nil {
		return fmt.Errorf("scanner failed to read header: %w", err)
	}
	fmt.Printf("%s\n", header.SchemaJSON)
	return nil
}

///////////////////////////////////////////////////////////////////////////////

var jsonPrintCmd = &cobra.Command{
	Use:   "json file...",
	Short: `Prints the specified file's records as JSON`,
	Long:  `Prints the specified file's records as JSON`,
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		for _, sourceFile := range args {
			if err := avro_file.WriteOcfFileAsJson(sourceFile, forceZstdInput, os.Stdout); err != nil {
				fmt.Fprintf(os.Stderr, "error: reading %s: %s\n", sourceFile, err.Error())
			}
		}
	},
}

///////////////////////////////////////////////////////////////////////////////

var parquetCmd = &cobra.Command{
	Use:   "parquet file",
	Short: `Converts the specified file to a Parquet file`,
	Long: `Converts the specified file to a Parquet file.
Only flat records of primitive fields have a converter.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := avro_file.WriteOcfFileAsParquet(args[0], forceZstdInput, destFile); err != nil {
			fmt.Fprintf(os.Stderr, "error: converting %s: %s\n", args[0], err.Error())
			os.Exit(1)
		}
	},
}

///////////////////////////////////////////////////////////////////////////////

var countCmd = &cobra.Command{
	Use:   "count file...",
	Short: `Counts the records in the specified files`,
	Long:  `Counts the records in the specified files`,
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		for _, sourceFile := range args {
			if err := countRecords(sourceFile, forceZstdInput); err != nil {
				fmt.Fprintf(os.Stderr, "error: reading %s: %s\n", sourceFile, err.Error())
			}
		}
	},
}

func countRecords(sourceFile string, forceZstd bool) error {
	scanner, closer, err := avro.OpenOcfFile(sourceFile, forceZstd)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	header, err := scanner.Header()
	if err != nil {
		return fmt.Errorf("scanner failed to read header: %w", err)
	}

	var count uint64
	for scanner.Next() {
		count++
	}
	if err := scanner.Error(); err != nil && err != io.EOF {
		return fmt.Errorf("scanner error: %w", err)
	}

	if verbose {
		fmt.Printf("%s: %s records, schema %s, codec %s\n", sourceFile,
			humanize.Comma(int64(count)), header.Schema.String(), header.Codec.String())
	} else {
		fmt.Printf("%s: %s\n", sourceFile, humanize.Comma(int64(count)))
	}
	return nil
}
