package stats

import (
	"sort"
	"time"

	"github.com/2beens/fittracker/internal/fitness/records"
)

// ChartDateLayout is the calendar date label of a chart point.
const ChartDateLayout = "02/01/2006"

// ChartPoint is one record projected onto the chart. First and Second are
// situps/pushups for count records, situpTime/pushupTime for timed ones.
type ChartPoint struct {
	Date      string    `json:"date"`
	Timestamp time.Time `json:"timestamp"`
	First     int       `json:"first"`
	Second    int       `json:"second"`
}

// ChartSeries projects records onto chart points ordered by ascending timestamp.
// Records arrive newest first from the store; equal timestamps keep their
// reversed store order.
func ChartSeries(recs []records.Record, loc *time.Location) []ChartPoint {
	if loc == nil {
		loc = time.UTC
	}

	points := make([]ChartPoint, 0, len(recs))
	for i := len(recs) - 1; i >= 0; i-- {
		first, second := recs[i].Values()
		points = append(points, ChartPoint{
			Date:      recs[i].Timestamp.In(loc).Format(ChartDateLayout),
			Timestamp: recs[i].Timestamp,
			First:     first,
			Second:    second,
		})
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp)
	})

	return points
}

type WindowTotals struct {
	First  int `json:"first"`
	Second int `json:"second"`
}

// Totals holds the sums of the last seven days and the seven days before,
// and the percentage change between them per field.
type Totals struct {
	Current      WindowTotals `json:"current"`
	Previous     WindowTotals `json:"previous"`
	FirstChange  float64      `json:"firstChange"`
	SecondChange float64      `json:"secondChange"`
}

// RollingTotals sums records into the current window [ref-7d, ref] and the
// previous window [ref-14d, ref-7d). Records outside both are ignored.
func RollingTotals(recs []records.Record, ref time.Time) Totals {
	sevenDaysAgo := ref.AddDate(0, 0, -7)
	fourteenDaysAgo := ref.AddDate(0, 0, -14)

	var totals Totals
	for _, r := range recs {
		first, second := r.Values()
		ts := r.Timestamp
		switch {
		case !ts.Before(sevenDaysAgo) && !ts.After(ref):
			totals.Current.First += first
			totals.Current.Second += second
		case !ts.Before(fourteenDaysAgo) && ts.Before(sevenDaysAgo):
			totals.Previous.First += first
			totals.Previous.Second += second
		}
	}

	totals.FirstChange = PercentageChange(totals.Current.First, totals.Previous.First)
	totals.SecondChange = PercentageChange(totals.Current.Second, totals.Previous.Second)
	return totals
}

// PercentageChange returns (current-previous)/previous*100.
// With no previous activity it is 100 for any current activity and 0 otherwise.
func PercentageChange(current, previous int) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return float64(current-previous) / float64(previous) * 100
}
