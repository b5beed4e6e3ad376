package domain

import "time"

const dateLayout = "2006-01-02"

// FetchWindow is the inclusive range of posting dates one run asks for.
type FetchWindow struct {
	Start time.Time
	End   time.Time
}

// NewFetchWindow derives the lookback window for a run happening on today. On Mondays the
// window reaches back to Friday; otherwise it covers yesterday and today.
func NewFetchWindow(today time.Time) FetchWindow {
	end := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	lookback := 1
	if end.Weekday() == time.Monday {
		lookback = 3
	}
	return FetchWindow{Start: end.AddDate(0, 0, -lookback), End: end}
}

// From formats the start date as an ISO date.
func (w FetchWindow) From() string {
	return w.Start.Format(dateLayout)
}

// Till formats the end date as an ISO date.
func (w FetchWindow) Till() string {
	return w.End.Format(dateLayout)
}
