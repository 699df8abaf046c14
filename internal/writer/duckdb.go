package writer

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/google/uuid"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/quantfeed/ohlcv-ingest/internal/types"
)

// DuckDBWriter implements the MarketDataWriter interface for DuckDB.
// All writes of one run share a single transaction and an ingest batch id,
// so a failed run leaves no partial batch behind.
type DuckDBWriter struct {
	db       *sql.DB
	tx       *sql.Tx
	stmt     *sql.Stmt
	ingestID string
	dbPath   string // DuckDB database file, or ":memory:"
}

// NewDuckDBWriter creates a new DuckDBWriter targeting the given database path.
func NewDuckDBWriter(dbPath string) MarketDataWriter {
	return &DuckDBWriter{
		dbPath: dbPath,
	}
}

// Initialize sets up the DuckDB writer.
// It opens the database, creates the market_data table if needed, begins a
// transaction, and prepares the insert statement.
func (w *DuckDBWriter) Initialize() (err error) {
	w.db, err = sql.Open("duckdb", w.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open DuckDB connection: %w", err)
	}

	_, err = w.db.Exec(`
		CREATE TABLE IF NOT EXISTS market_data (
			ingest_id TEXT,
			time TIMESTAMP,
			symbol TEXT,
			open DOUBLE,
			high DOUBLE,
			low DOUBLE,
			close DOUBLE,
			volume BIGINT
		)
	`)
	if err != nil {
		w.db.Close()

		return fmt.Errorf("failed to create table: %w", err)
	}

	w.tx, err = w.db.Begin()
	if err != nil {
		w.db.Close()

		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	w.stmt, err = w.tx.Prepare(`
		INSERT INTO market_data (ingest_id, time, symbol, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		w.tx.Rollback()
		w.db.Close()

		return fmt.Errorf("failed to prepare statement: %w", err)
	}

	w.ingestID = uuid.New().String()

	return nil
}

// IngestID returns the batch id assigned to this run. Empty until Initialize.
func (w *DuckDBWriter) IngestID() string {
	return w.ingestID
}

// Write persists a single record using the prepared statement within the transaction.
func (w *DuckDBWriter) Write(data types.MarketData) error {
	if w.stmt == nil {
		return fmt.Errorf("writer not initialized or statement is nil")
	}

	open, _ := data.Open.Float64()
	high, _ := data.High.Float64()
	low, _ := data.Low.Float64()
	closePrice, _ := data.Close.Float64()

	_, err := w.stmt.Exec(
		w.ingestID,
		data.Time,
		data.Symbol,
		open,
		high,
		low,
		closePrice,
		data.Volume,
	)
	if err != nil {
		// Don't rollback here, let Finalize handle it or allow further writes
		return fmt.Errorf("failed to insert data: %w", err)
	}

	return nil
}

// Finalize commits the transaction.
func (w *DuckDBWriter) Finalize() (outputPath string, err error) {
	if w.tx == nil {
		return "", fmt.Errorf("writer not initialized or transaction is nil")
	}

	if err = w.tx.Commit(); err != nil {
		w.tx.Rollback()

		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	w.tx = nil

	return w.dbPath, nil
}

// GetOutputPath returns the database path.
func (w *DuckDBWriter) GetOutputPath() string {
	return w.dbPath
}

// Close cleans up resources used by the writer. An uncommitted transaction
// is rolled back.
func (w *DuckDBWriter) Close() error {
	var closeErrors []error

	if w.stmt != nil {
		if err := w.stmt.Close(); err != nil {
			closeErrors = append(closeErrors, fmt.Errorf("failed to close statement: %w", err))
		}

		w.stmt = nil
	}

	if w.tx != nil {
		if err := w.tx.Rollback(); err != nil {
			log.Printf("Warning: failed to rollback transaction during close: %v", err)
		}

		w.tx = nil
	}

	if w.db != nil {
		if err := w.db.Close(); err != nil {
			closeErrors = append(closeErrors, fmt.Errorf("failed to close db connection: %w", err))
		}

		w.db = nil
	}

	if len(closeErrors) > 0 {
		errMsg := "errors occurred during close:"
		for _, e := range closeErrors {
			errMsg += fmt.Sprintf("\n- %v", e)
		}

		return fmt.Errorf("%s", errMsg)
	}

	return nil
}
