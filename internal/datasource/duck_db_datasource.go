package datasource

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/quantfeed/ohlcv-ingest/internal/logger"
	"github.com/quantfeed/ohlcv-ingest/internal/types"
	"github.com/quantfeed/ohlcv-ingest/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Schema shared with the writer package. Prices are stored as doubles; the
// exact-scale contract applies to CSV round-trips, not the query layer.
const createTableSQL = `
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
`

type DuckDBDataSource struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewDataSource opens a DuckDB data source at the given database path.
// Use ":memory:" for an ephemeral database.
func NewDataSource(path string, logger *logger.Logger) (DataSource, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDatabaseInitFailed, err, "failed to open database %s", path)
	}

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()

		return nil, errors.Wrap(errors.ErrCodeDatabaseInitFailed, "failed to create market_data table", err)
	}

	return &DuckDBDataSource{
		db:     db,
		logger: logger,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}, nil
}

// Count implements DataSource.
func (d *DuckDBDataSource) Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error) {
	var count int

	query := "SELECT COUNT(*) FROM market_data"

	var params []interface{}

	paramCount := 0

	if start.IsSome() {
		paramCount++
		query += fmt.Sprintf(" WHERE time >= $%d", paramCount)
		params = append(params, start.Unwrap())
	}

	if end.IsSome() {
		paramCount++
		if paramCount == 1 {
			query += " WHERE"
		} else {
			query += " AND"
		}

		query += fmt.Sprintf(" time <= $%d", paramCount)

		params = append(params, end.Unwrap())
	}

	row := d.db.QueryRow(query, params...)
	if err := row.Scan(&count); err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to count rows", err)
	}

	return count, nil
}

// ReadAll implements DataSource with batch processing.
func (d *DuckDBDataSource) ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) func(yield func(types.MarketData, error) bool) {
	const batchSize = 1000

	return func(yield func(types.MarketData, error) bool) {
		d.logger.Debug("reading all data from DuckDB with batch processing")

		query := `
			SELECT time, symbol, open, high, low, close, volume
			FROM market_data
		`

		var conditions []string

		var params []interface{}

		paramCount := 0

		if start.IsSome() {
			paramCount++
			conditions = append(conditions, fmt.Sprintf("time >= $%d", paramCount))
			params = append(params, start.Unwrap())
		}

		if end.IsSome() {
			paramCount++
			conditions = append(conditions, fmt.Sprintf("time <= $%d", paramCount))
			params = append(params, end.Unwrap())
		}

		if len(conditions) > 0 {
			query += " WHERE " + strings.Join(conditions, " AND ")
		}

		query += " ORDER BY time ASC"

		stmt, err := d.db.Prepare(query)
		if err != nil {
			yield(types.MarketData{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to prepare query", err))

			return
		}
		defer stmt.Close()

		rows, err := stmt.Query(params...)
		if err != nil {
			yield(types.MarketData{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query market data", err))

			return
		}

		defer rows.Close()

		batch := make([]types.MarketData, 0, batchSize)

		for rows.Next() {
			data, err := scanMarketData(rows)
			if err != nil {
				yield(types.MarketData{}, err)

				return
			}

			batch = append(batch, data)

			if len(batch) >= batchSize {
				for _, data := range batch {
					if !yield(data, nil) {
						return
					}
				}

				batch = batch[:0]
			}
		}

		for _, data := range batch {
			if !yield(data, nil) {
				return
			}
		}
	}
}

// GetRange implements DataSource.
func (d *DuckDBDataSource) GetRange(start time.Time, end time.Time, symbol optional.Option[string]) ([]types.MarketData, error) {
	conditions := squirrel.And{
		squirrel.GtOrEq{"time": start},
		squirrel.LtOrEq{"time": end},
	}

	if symbol.IsSome() {
		conditions = append(conditions, squirrel.Eq{"symbol": symbol.Unwrap()})
	}

	query, args, err := d.sq.
		Select("time", "symbol", "open", "high", "low", "close", "volume").
		From("market_data").
		Where(conditions).
		OrderBy("time ASC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err)
	}

	stmt, err := d.db.Prepare(query)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to prepare query", err)
	}
	defer stmt.Close()

	rows, err := stmt.Query(args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query market data", err)
	}
	defer rows.Close()

	result := make([]types.MarketData, 0, 1000)

	for rows.Next() {
		data, err := scanMarketData(rows)
		if err != nil {
			return nil, err
		}

		result = append(result, data)
	}

	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating rows", err)
	}

	return result, nil
}

// ReadLastData implements DataSource.
// Returns the most recent market data for the specified symbol.
func (d *DuckDBDataSource) ReadLastData(symbol string) (types.MarketData, error) {
	d.logger.Debug("reading last data for symbol", zap.String("symbol", symbol))

	query := `
		SELECT time, symbol, open, high, low, close, volume
		FROM market_data
		WHERE symbol = $1
		ORDER BY time DESC
		LIMIT 1
	`

	stmt, err := d.db.Prepare(query)
	if err != nil {
		return types.MarketData{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to prepare query", err)
	}
	defer stmt.Close()

	var (
		timestamp               time.Time
		open, high, low, closeP float64
		volume                  int64
		symbolResult            string
	)

	err = stmt.QueryRow(symbol).Scan(&timestamp, &symbolResult, &open, &high, &low, &closeP, &volume)
	if err != nil {
		if err == sql.ErrNoRows {
			return types.MarketData{}, errors.Newf(errors.ErrCodeDataNotFound, "no data found for symbol %s", symbol)
		}

		return types.MarketData{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan row", err)
	}

	return types.MarketData{
		Symbol: symbolResult,
		Time:   timestamp,
		Open:   decimal.NewFromFloat(open),
		High:   decimal.NewFromFloat(high),
		Low:    decimal.NewFromFloat(low),
		Close:  decimal.NewFromFloat(closeP),
		Volume: volume,
	}, nil
}

// GetAllSymbols returns all distinct symbols from the market data.
func (d *DuckDBDataSource) GetAllSymbols() ([]string, error) {
	rows, err := d.db.Query("SELECT DISTINCT symbol FROM market_data ORDER BY symbol")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to get symbols", err)
	}
	defer rows.Close()

	var symbols []string

	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan symbol", err)
		}

		symbols = append(symbols, symbol)
	}

	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating symbols", err)
	}

	return symbols, nil
}

// ExecuteSQL implements DataSource.
func (d *DuckDBDataSource) ExecuteSQL(query string, params ...interface{}) ([]SQLResult, error) {
	d.logger.Debug("executing SQL query", zap.String("query", query))

	stmt, err := d.db.Prepare(query)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to prepare query", err)
	}
	defer stmt.Close()

	rows, err := stmt.Query(params...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to execute query", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to get columns", err)
	}

	result := make([]SQLResult, 0, 1000)

	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))

		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan row", err)
		}

		rowMap := make(map[string]interface{})
		for i, col := range columns {
			rowMap[col] = values[i]
		}

		result = append(result, SQLResult{Values: rowMap})
	}

	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating rows", err)
	}

	return result, nil
}

// Close implements DataSource.
func (d *DuckDBDataSource) Close() error {
	if d.db != nil {
		return d.db.Close()
	}

	return nil
}

func scanMarketData(rows *sql.Rows) (types.MarketData, error) {
	var (
		timestamp               time.Time
		open, high, low, closeP float64
		volume                  int64
		symbol                  string
	)

	if err := rows.Scan(&timestamp, &symbol, &open, &high, &low, &closeP, &volume); err != nil {
		return types.MarketData{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan row", err)
	}

	return types.MarketData{
		Symbol: symbol,
		Time:   timestamp,
		Open:   decimal.NewFromFloat(open),
		High:   decimal.NewFromFloat(high),
		Low:    decimal.NewFromFloat(low),
		Close:  decimal.NewFromFloat(closeP),
		Volume: volume,
	}, nil
}
