package writer

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/quantfeed/ohlcv-ingest/internal/ingest"
	"github.com/quantfeed/ohlcv-ingest/internal/types"
)

// CSVWriter implements MarketDataWriter by re-serializing records into one
// of the accepted column layouts. Records parsed from the canonical layouts
// round-trip byte-for-byte.
type CSVWriter struct {
	outputPath string
	schema     ingest.Schema
	header     bool

	file *os.File
	csv  *csv.Writer
}

// NewCSVWriter creates a CSV writer emitting the given schema variant.
// When header is true the column names are written as the first row.
func NewCSVWriter(outputPath string, schema ingest.Schema, header bool) MarketDataWriter {
	return &CSVWriter{
		outputPath: outputPath,
		schema:     schema,
		header:     header,
	}
}

// Initialize creates the output file and writes the header row if configured.
func (w *CSVWriter) Initialize() error {
	if !w.schema.Valid() {
		return fmt.Errorf("unknown schema %q", w.schema)
	}

	file, err := os.Create(w.outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	w.file = file
	w.csv = csv.NewWriter(file)

	if w.header {
		if err := w.csv.Write(w.schema.Columns()); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	return nil
}

// Write appends a single record in the schema's column order.
func (w *CSVWriter) Write(data types.MarketData) error {
	if w.csv == nil {
		return fmt.Errorf("writer not initialized")
	}

	if err := w.csv.Write(ingest.FormatRow(w.schema, data)); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}

	return nil
}

// Finalize flushes buffered rows and reports the output path.
func (w *CSVWriter) Finalize() (string, error) {
	if w.csv == nil {
		return "", fmt.Errorf("writer not initialized")
	}

	w.csv.Flush()

	if err := w.csv.Error(); err != nil {
		return "", fmt.Errorf("failed to flush output: %w", err)
	}

	return w.outputPath, nil
}

// GetOutputPath returns the output file path.
func (w *CSVWriter) GetOutputPath() string {
	return w.outputPath
}

// Close flushes and closes the output file.
func (w *CSVWriter) Close() error {
	if w.csv != nil {
		w.csv.Flush()
		w.csv = nil
	}

	if w.file != nil {
		err := w.file.Close()
		w.file = nil

		return err
	}

	return nil
}
