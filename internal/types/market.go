package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// MarketData represents a single OHLCV record for a trading interval.
// Prices are decimals so a record re-serializes with the exact scale it
// was parsed with. Volume is a non-negative trade count.
type MarketData struct {
	Symbol string          `csv:"symbol" yaml:"symbol"`
	Time   time.Time       `csv:"time" yaml:"time"`
	Open   decimal.Decimal `csv:"open" yaml:"open"`
	High   decimal.Decimal `csv:"high" yaml:"high"`
	Low    decimal.Decimal `csv:"low" yaml:"low"`
	Close  decimal.Decimal `csv:"close" yaml:"close"`
	Volume int64           `csv:"volume" yaml:"volume"`
}

// IsZero reports whether the record is the zero value.
func (m MarketData) IsZero() bool {
	return m.Symbol == "" && m.Time.IsZero() && m.Volume == 0 &&
		m.Open.IsZero() && m.High.IsZero() && m.Low.IsZero() && m.Close.IsZero()
}
