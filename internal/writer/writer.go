package writer

import (
	"github.com/quantfeed/ohlcv-ingest/internal/types"
)

// MarketDataWriter defines the interface for writing market data to a destination.
type MarketDataWriter interface {
	// Initialize sets up the writer, potentially creating tables or files.
	Initialize() error
	// Write persists a single market data record.
	Write(data types.MarketData) error
	// Finalize completes the writing process (e.g., commits transactions, flushes files).
	Finalize() (outputPath string, err error)
	// Close releases any resources held by the writer.
	Close() error
	// GetOutputPath returns the configured output path.
	GetOutputPath() string
}
