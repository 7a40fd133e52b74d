package extract

import (
	"time"

	"HabitusForecast/internal/config"
)

// MonthEnds synthesizes n consecutive month-end competence dates starting
// at the given anchor month. The day-zero trick yields the true last
// calendar day (28/29/30/31) and wraps the year boundary.
func MonthEnds(year int, month time.Month, n int) []time.Time {
	out := make([]time.Time, n)
	for i := 0; i < n; i++ {
		out[i] = time.Date(year, month+time.Month(i)+1, 0, 0, 0, 0, 0, time.UTC)
	}
	return out
}

// ForecastMonths returns the fixed 12-month horizon every extractor pairs
// values with. Dates present in the sheets are deliberately ignored: the
// layouts do not carry parseable date headers reliably.
func ForecastMonths() []time.Time {
	return MonthEnds(config.AnchorYear, config.AnchorMonth, config.ForecastMonths)
}
