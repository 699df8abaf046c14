package ingest

import (
	"strconv"
	"strings"
	"time"

	"github.com/quantfeed/ohlcv-ingest/internal/types"
	"github.com/quantfeed/ohlcv-ingest/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	dateLayout     = "2006-01-02"
	timeLayout     = "15:04:05"
	datetimeLayout = "2006-01-02 15:04:05"
)

// Fallback layouts accepted outside strict mode. Export data in the wild uses
// slashed dates and T-separated stamps often enough that rejecting them
// outright makes the loader useless.
var (
	fallbackDateLayouts     = []string{"2006/01/02", "01/02/2006"}
	fallbackTimeLayouts     = []string{"15:04"}
	fallbackDatetimeLayouts = []string{
		"2006-01-02T15:04:05",
		"2006/01/02 15:04:05",
		"01/02/2006 15:04:05",
	}
)

// ParseRow converts a trimmed CSV row into a MarketData record according to
// the given schema. The line number is carried into any RowError. The
// location localizes naive timestamps; nil means UTC.
func ParseRow(schema Schema, fields []string, line int, loc *time.Location, strict bool) (types.MarketData, error) {
	if loc == nil {
		loc = time.UTC
	}

	if len(fields) != schema.NumFields() {
		return types.MarketData{}, errors.NewRowErrorf(errors.ErrCodeWrongFieldCount, line, "",
			"expected %d fields, got %d", schema.NumFields(), len(fields))
	}

	var (
		timestamp time.Time
		err       error
		offset    int
	)

	switch schema {
	case SchemaSplit:
		timestamp, err = parseDateTimePair(fields[0], fields[1], line, loc, strict)
		offset = 2
	case SchemaCombined:
		timestamp, err = parseDatetime(fields[0], line, loc, strict)
		offset = 1
	default:
		return types.MarketData{}, errors.Newf(errors.ErrCodeSchemaMismatch, "unknown schema %q", schema)
	}

	if err != nil {
		return types.MarketData{}, err
	}

	columns := schema.Columns()

	open, err := parsePrice(fields[offset], columns[offset], line)
	if err != nil {
		return types.MarketData{}, err
	}

	high, err := parsePrice(fields[offset+1], columns[offset+1], line)
	if err != nil {
		return types.MarketData{}, err
	}

	low, err := parsePrice(fields[offset+2], columns[offset+2], line)
	if err != nil {
		return types.MarketData{}, err
	}

	closePrice, err := parsePrice(fields[offset+3], columns[offset+3], line)
	if err != nil {
		return types.MarketData{}, err
	}

	volume, err := parseVolume(fields[offset+4], columns[offset+4], line)
	if err != nil {
		return types.MarketData{}, err
	}

	return types.MarketData{
		Time:   timestamp,
		Open:   open,
		High:   high,
		Low:    low,
		Close:  closePrice,
		Volume: volume,
	}, nil
}

// FormatRow serializes a record back into the schema's column order.
// Joining the result with commas reproduces the original line byte-for-byte
// for records parsed from the canonical layouts.
func FormatRow(schema Schema, data types.MarketData) []string {
	switch schema {
	case SchemaSplit:
		return []string{
			data.Time.Format(dateLayout),
			data.Time.Format(timeLayout),
			data.Open.String(),
			data.High.String(),
			data.Low.String(),
			data.Close.String(),
			strconv.FormatInt(data.Volume, 10),
		}
	case SchemaCombined:
		return []string{
			data.Time.Format(datetimeLayout),
			data.Open.String(),
			data.High.String(),
			data.Low.String(),
			data.Close.String(),
			strconv.FormatInt(data.Volume, 10),
		}
	}

	return nil
}

// FormatLine is FormatRow joined with commas.
func FormatLine(schema Schema, data types.MarketData) string {
	return strings.Join(FormatRow(schema, data), ",")
}

func parseDateTimePair(dateField, timeField string, line int, loc *time.Location, strict bool) (time.Time, error) {
	date, err := parseWithLayouts(dateField, dateLayout, fallbackDateLayouts, loc, strict)
	if err != nil {
		return time.Time{}, errors.NewRowErrorf(errors.ErrCodeBadTimestamp, line, "Date",
			"unrecognized date %q", dateField)
	}

	tod, err := parseWithLayouts(timeField, timeLayout, fallbackTimeLayouts, loc, strict)
	if err != nil {
		return time.Time{}, errors.NewRowErrorf(errors.ErrCodeBadTimestamp, line, "Time",
			"unrecognized time %q", timeField)
	}

	return time.Date(date.Year(), date.Month(), date.Day(),
		tod.Hour(), tod.Minute(), tod.Second(), 0, loc), nil
}

func parseDatetime(field string, line int, loc *time.Location, strict bool) (time.Time, error) {
	timestamp, err := parseWithLayouts(field, datetimeLayout, fallbackDatetimeLayouts, loc, strict)
	if err != nil {
		return time.Time{}, errors.NewRowErrorf(errors.ErrCodeBadTimestamp, line, "Datetime",
			"unrecognized datetime %q", field)
	}

	return timestamp, nil
}

func parseWithLayouts(value, canonical string, fallbacks []string, loc *time.Location, strict bool) (time.Time, error) {
	value = strings.TrimSpace(value)

	timestamp, err := time.ParseInLocation(canonical, value, loc)
	if err == nil {
		return timestamp, nil
	}

	if strict {
		return time.Time{}, err
	}

	for _, layout := range fallbacks {
		if timestamp, err := time.ParseInLocation(layout, value, loc); err == nil {
			return timestamp, nil
		}
	}

	return time.Time{}, err
}

func parsePrice(value, field string, line int) (decimal.Decimal, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	if cleaned == "" {
		return decimal.Decimal{}, errors.NewRowErrorf(errors.ErrCodeBadPrice, line, field, "missing value")
	}

	price, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, errors.NewRowErrorf(errors.ErrCodeBadPrice, line, field,
			"value %q is not numeric", value)
	}

	return price, nil
}

func parseVolume(value, field string, line int) (int64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	if cleaned == "" {
		return 0, errors.NewRowErrorf(errors.ErrCodeBadVolume, line, field, "missing value")
	}

	volume, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		return 0, errors.NewRowErrorf(errors.ErrCodeBadVolume, line, field,
			"value %q is not an integer", value)
	}

	if volume < 0 {
		return 0, errors.NewRowErrorf(errors.ErrCodeBadVolume, line, field,
			"volume %d is negative", volume)
	}

	return volume, nil
}
