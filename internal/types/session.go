package types

import "time"

// SessionWindow describes a trading-session window as times of day.
// The start bound is inclusive and the end bound exclusive, so a
// 09:30:00-16:00:00 window keeps the 09:30 bar and drops the 16:00 bar.
type SessionWindow struct {
	Start time.Duration // offset from midnight
	End   time.Duration
}

// DefaultSessionWindow is the regular trading hours window for US equities
// and index futures, expressed in the data's local time.
func DefaultSessionWindow() SessionWindow {
	return SessionWindow{
		Start: 9*time.Hour + 30*time.Minute,
		End:   16 * time.Hour,
	}
}

// Contains reports whether the timestamp's time of day falls inside the window.
func (w SessionWindow) Contains(t time.Time) bool {
	offset := time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond())

	return offset >= w.Start && offset < w.End
}
