package ingest

import (
	"strings"

	"github.com/quantfeed/ohlcv-ingest/pkg/errors"
)

// Schema identifies which of the two accepted column layouts a file uses.
type Schema string

const (
	// SchemaSplit is the Date,Time,Open,High,Low,Close,Volume layout.
	SchemaSplit Schema = "split"
	// SchemaCombined is the Datetime,Open,High,Low,Close,Volume layout.
	SchemaCombined Schema = "combined"
)

var (
	splitColumns    = []string{"Date", "Time", "Open", "High", "Low", "Close", "Volume"}
	combinedColumns = []string{"Datetime", "Open", "High", "Low", "Close", "Volume"}
)

// Columns returns the schema's column names in order.
func (s Schema) Columns() []string {
	switch s {
	case SchemaSplit:
		return splitColumns
	case SchemaCombined:
		return combinedColumns
	}

	return nil
}

// NumFields returns the number of fields a data row must carry.
func (s Schema) NumFields() int {
	return len(s.Columns())
}

// Valid reports whether s is one of the accepted schemas.
func (s Schema) Valid() bool {
	return s == SchemaSplit || s == SchemaCombined
}

// DetectSchema matches a header row against the two accepted column sets.
// The match is exact and order-sensitive. Fields are trimmed before comparison.
func DetectSchema(header []string) (Schema, error) {
	trimmed := make([]string, len(header))
	for i, field := range header {
		trimmed[i] = strings.TrimSpace(field)
	}

	if matchColumns(trimmed, splitColumns) {
		return SchemaSplit, nil
	}

	if matchColumns(trimmed, combinedColumns) {
		return SchemaCombined, nil
	}

	return "", errors.Newf(errors.ErrCodeSchemaMismatch,
		"header %q matches neither accepted column set", strings.Join(trimmed, ","))
}

// detectHeaderSchema matches a recognized header row against the accepted
// column sets, ignoring case. Exports in the wild often lowercase their
// headers; a case variant is still unambiguous and is skipped like any
// other header rather than rejected.
func detectHeaderSchema(header []string) (Schema, error) {
	trimmed := make([]string, len(header))
	for i, field := range header {
		trimmed[i] = strings.TrimSpace(field)
	}

	if matchColumnsFold(trimmed, splitColumns) {
		return SchemaSplit, nil
	}

	if matchColumnsFold(trimmed, combinedColumns) {
		return SchemaCombined, nil
	}

	return "", errors.Newf(errors.ErrCodeSchemaMismatch,
		"header %q matches neither accepted column set", strings.Join(trimmed, ","))
}

// InferSchema determines the schema of a headerless file from the field
// count of its first data row: 7 fields means split Date+Time, 6 means
// combined Datetime.
func InferSchema(fields []string) (Schema, error) {
	switch len(fields) {
	case len(splitColumns):
		return SchemaSplit, nil
	case len(combinedColumns):
		return SchemaCombined, nil
	}

	return "", errors.Newf(errors.ErrCodeSchemaMismatch,
		"row has %d fields, expected %d (split) or %d (combined)",
		len(fields), len(splitColumns), len(combinedColumns))
}

// IsHeaderRow reports whether a row looks like a header rather than data.
// The check is case-insensitive on the first field so a malformed header is
// still recognized as a header and reported as a schema mismatch instead of
// a bad timestamp.
func IsHeaderRow(fields []string) bool {
	if len(fields) == 0 {
		return false
	}

	first := strings.ToLower(strings.TrimSpace(fields[0]))

	return first == "date" || first == "datetime"
}

func matchColumns(fields, want []string) bool {
	if len(fields) != len(want) {
		return false
	}

	for i, field := range fields {
		if field != want[i] {
			return false
		}
	}

	return true
}

func matchColumnsFold(fields, want []string) bool {
	if len(fields) != len(want) {
		return false
	}

	for i, field := range fields {
		if !strings.EqualFold(field, want[i]) {
			return false
		}
	}

	return true
}
