package ingest

import (
	"github.com/quantfeed/ohlcv-ingest/internal/types"
	"github.com/quantfeed/ohlcv-ingest/pkg/errors"
)

// ValidateSeries checks that a loaded series is non-empty and that its
// timestamps are strictly increasing. Duplicate timestamps are rejected
// because downstream consumers key bars by time.
func ValidateSeries(records []types.MarketData) error {
	if len(records) == 0 {
		return errors.New(errors.ErrCodeEmptyFile, "series contains no records")
	}

	for i := 1; i < len(records); i++ {
		if !records[i].Time.After(records[i-1].Time) {
			return errors.Newf(errors.ErrCodeUnorderedSeries,
				"timestamps must be strictly increasing: record %d (%s) does not follow record %d (%s)",
				i, records[i].Time.Format(datetimeLayout),
				i-1, records[i-1].Time.Format(datetimeLayout))
		}
	}

	return nil
}

// FilterSession keeps only records whose time of day falls inside the
// trading-session window.
func FilterSession(records []types.MarketData, window types.SessionWindow) []types.MarketData {
	filtered := make([]types.MarketData, 0, len(records))

	for _, record := range records {
		if window.Contains(record.Time) {
			filtered = append(filtered, record)
		}
	}

	return filtered
}
