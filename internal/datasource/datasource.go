package datasource

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/quantfeed/ohlcv-ingest/internal/types"
)

// SQLResult represents a row of data from a SQL query
type SQLResult struct {
	Values map[string]interface{}
}

// DataSource provides read access to ingested market data.
type DataSource interface {
	// ReadAll reads all the data from the data source and yields it to the caller
	ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) func(yield func(types.MarketData, error) bool)
	// GetRange reads a range of data from the data source ordered by time
	GetRange(start time.Time, end time.Time, symbol optional.Option[string]) ([]types.MarketData, error)
	// ReadLastData reads the most recent record for a specific symbol
	ReadLastData(symbol string) (types.MarketData, error)
	// GetAllSymbols returns all distinct symbols in the data source
	GetAllSymbols() ([]string, error)
	// ExecuteSQL executes a raw SQL query and returns the results as SQLResult
	ExecuteSQL(query string, params ...interface{}) ([]SQLResult, error)
	// Count returns the number of rows in the data source
	Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error)
	// Close closes the data source and releases any resources
	Close() error
}
