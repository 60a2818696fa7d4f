package analysis

import (
	"sort"
	"time"
)

// EWMA time constants in days
const (
	CTLTimeConstant = 42.0
	ATLTimeConstant = 7.0
)

// dayKey truncates t to its UTC calendar date
func dayKey(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// CalculateTrainingLoad computes the daily CTL/ATL/TSB/ACWR series.
//
// Days are UTC calendar dates, whatever zone the session times and today are
// given in. A session that starts late in the evening west of Greenwich counts
// toward the next day.
//
// One row is produced for every calendar day from the earliest session through
// today (or through the last session day if that is later). Same-day TSS is
// summed and rest days contribute 0. Both averages are seeded at 0 before the
// first day, so day one already reflects its own TSS:
//
//	CTL = CTL + (tss - CTL) * 2/(42+1)
//	ATL = ATL + (tss - ATL) * 2/(7+1)
//
// ACWR is ATL/CTL, or 0 while CTL is 0. Sessions may arrive in any order.
func CalculateTrainingLoad(sessions []TrainingSession, today time.Time) []DailyMetrics {
	if len(sessions) == 0 {
		return nil
	}

	loads := make(map[time.Time]float64, len(sessions))
	dates := make([]time.Time, 0, len(sessions))
	for _, s := range sessions {
		d := dayKey(s.Date)
		if _, ok := loads[d]; !ok {
			dates = append(dates, d)
		}
		loads[d] += s.TSS
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	start := dates[0]
	end := dayKey(today)
	if last := dates[len(dates)-1]; last.After(end) {
		end = last
	}

	ctlDecay := 2.0 / (CTLTimeConstant + 1)
	atlDecay := 2.0 / (ATLTimeConstant + 1)

	days := int(end.Sub(start).Hours()/24) + 1
	metrics := make([]DailyMetrics, 0, days)
	var ctl, atl float64
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		tss := loads[d]

		ctl += (tss - ctl) * ctlDecay
		atl += (tss - atl) * atlDecay

		var acwr float64
		if ctl != 0 {
			acwr = atl / ctl
		}

		metrics = append(metrics, DailyMetrics{
			Date: d,
			TSS:  tss,
			CTL:  ctl,
			ATL:  atl,
			TSB:  ctl - atl,
			ACWR: acwr,
		})
	}

	return metrics
}

// CurrentLoad returns the most recent row of a load series
func CurrentLoad(metrics []DailyMetrics) (DailyMetrics, bool) {
	if len(metrics) == 0 {
		return DailyMetrics{}, false
	}
	return metrics[len(metrics)-1], true
}

// LoadOn returns the row for the given calendar day, or the last row before it.
// Returns false when the day precedes the series.
func LoadOn(metrics []DailyMetrics, day time.Time) (DailyMetrics, bool) {
	d := dayKey(day)
	i := sort.Search(len(metrics), func(i int) bool { return metrics[i].Date.After(d) })
	if i == 0 {
		return DailyMetrics{}, false
	}
	return metrics[i-1], true
}
