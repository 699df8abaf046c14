package ingest

import (
	"encoding/csv"
	"io"
	"strings"
	"time"

	"github.com/quantfeed/ohlcv-ingest/internal/logger"
	"github.com/quantfeed/ohlcv-ingest/internal/types"
	"github.com/quantfeed/ohlcv-ingest/pkg/errors"
	"go.uber.org/zap"
)

// ReaderConfig controls how a Reader interprets its input.
type ReaderConfig struct {
	// Symbol is stamped on every record. Usually the file stem.
	Symbol string
	// Strict restricts timestamp parsing to the canonical layouts.
	Strict bool
	// Location localizes naive timestamps. Nil means UTC.
	Location *time.Location
}

// Reader validates a comma-separated OHLCV stream against the two accepted
// column layouts and yields records lazily. The schema is taken from the
// header row when one is present, otherwise inferred from the field count
// of the first data row.
type Reader struct {
	csv       *csv.Reader
	config    ReaderConfig
	logger    *logger.Logger
	schema    Schema
	hasHeader bool
	started   bool
}

// NewReader creates a Reader over r. The logger may not be nil.
func NewReader(r io.Reader, config ReaderConfig, logger *logger.Logger) *Reader {
	csvReader := csv.NewReader(r)
	// Field count is validated per schema, not by encoding/csv.
	csvReader.FieldsPerRecord = -1
	csvReader.TrimLeadingSpace = true

	return &Reader{
		csv:    csvReader,
		config: config,
		logger: logger,
	}
}

// Schema returns the detected schema. It is the zero value until the first
// row has been read.
func (r *Reader) Schema() Schema {
	return r.schema
}

// HasHeader reports whether the input carried a header row. It is only
// meaningful after the first row has been read.
func (r *Reader) HasHeader() bool {
	return r.hasHeader
}

// Rows returns an iterator over validated records. Each malformed row is
// yielded as a RowError carrying its line number and reason; iteration
// continues past row failures so a caller can collect a full report, and
// stops when yield returns false or the input is exhausted.
func (r *Reader) Rows() func(yield func(types.MarketData, error) bool) {
	return func(yield func(types.MarketData, error) bool) {
		for {
			record, err := r.csv.Read()
			if err == io.EOF {
				return
			}

			if err != nil {
				line := 0
				if parseErr, ok := err.(*csv.ParseError); ok {
					line = parseErr.Line
				}

				if !yield(types.MarketData{}, errors.WrapRowError(errors.ErrCodeFileReadFailed, line, "", err)) {
					return
				}

				continue
			}

			line, _ := r.csv.FieldPos(0)

			fields := trimFields(record)
			if allEmpty(fields) {
				continue
			}

			if !r.started {
				r.started = true

				if IsHeaderRow(fields) {
					schema, err := detectHeaderSchema(fields)
					if err != nil {
						if !yield(types.MarketData{}, errors.WrapRowError(errors.ErrCodeSchemaMismatch, line, "", err)) {
							return
						}

						continue
					}

					r.schema = schema
					r.hasHeader = true
					r.logger.Debug("detected schema from header",
						zap.String("schema", string(schema)))

					continue
				}

				schema, err := InferSchema(fields)
				if err != nil {
					if !yield(types.MarketData{}, errors.WrapRowError(errors.ErrCodeSchemaMismatch, line, "", err)) {
						return
					}

					continue
				}

				r.schema = schema
				r.logger.Debug("inferred schema from first data row",
					zap.String("schema", string(schema)),
					zap.Int("fields", len(fields)))
			}

			if r.schema == "" {
				// Header was malformed and already reported; rows after it
				// cannot be validated against a known schema.
				schema, err := InferSchema(fields)
				if err != nil {
					if !yield(types.MarketData{}, errors.WrapRowError(errors.ErrCodeSchemaMismatch, line, "", err)) {
						return
					}

					continue
				}

				r.schema = schema
			}

			data, err := ParseRow(r.schema, fields, line, r.config.Location, r.config.Strict)
			if err != nil {
				if !yield(types.MarketData{}, err) {
					return
				}

				continue
			}

			data.Symbol = r.config.Symbol

			if !yield(data, nil) {
				return
			}
		}
	}
}

func trimFields(record []string) []string {
	fields := make([]string, len(record))
	for i, field := range record {
		fields[i] = strings.TrimSpace(field)
	}

	return fields
}

func allEmpty(fields []string) bool {
	for _, field := range fields {
		if field != "" {
			return false
		}
	}

	return true
}
