package analytics

import (
	"time"

	"github.com/GRamos199/call-center-analytics/metrics"
	"github.com/GRamos199/call-center-analytics/models"
)

// AggregateByDay returns one KPI bucket per calendar day in [start,
// end), ascending.
func (e *Engine) AggregateByDay(start, end time.Time) ([]models.PeriodMetrics, error) {
	defer observe("aggregate_by_day", time.Now())
	calls, costs, err := e.snapshot("aggregate_by_day", start, end)
	if err != nil {
		return nil, err
	}

	var buckets []models.PeriodMetrics
	for d := dayFloor(start); d.Before(end); d = d.AddDate(0, 0, 1) {
		buckets = append(buckets, periodTotals(calls, costs, clampStart(d, start), clampEnd(d.AddDate(0, 0, 1), end)))
	}
	metrics.EngineBucketsReturned.Observe(float64(len(buckets)))
	return buckets, nil
}

// AggregateByWeek folds days into weekly buckets. Weeks start on Monday;
// the convention is fixed. Boundary weeks are truncated to the requested
// range.
func (e *Engine) AggregateByWeek(start, end time.Time) ([]models.PeriodMetrics, error) {
	defer observe("aggregate_by_week", time.Now())
	calls, costs, err := e.snapshot("aggregate_by_week", start, end)
	if err != nil {
		return nil, err
	}

	var buckets []models.PeriodMetrics
	for cur := start; cur.Before(end); {
		next := clampEnd(weekFloor(cur).AddDate(0, 0, 7), end)
		buckets = append(buckets, periodTotals(calls, costs, cur, next))
		cur = next
	}
	metrics.EngineBucketsReturned.Observe(float64(len(buckets)))
	return buckets, nil
}

// AggregateByMonth folds days into calendar-month buckets regardless of
// the requested boundaries; partial boundary months are truncated to the
// requested range. Fixed monthly cost entries (every cost type besides
// the hourly rate) are added in full to each month bucket.
func (e *Engine) AggregateByMonth(start, end time.Time) ([]models.PeriodMetrics, error) {
	defer observe("aggregate_by_month", time.Now())
	calls, costs, err := e.snapshot("aggregate_by_month", start, end)
	if err != nil {
		return nil, err
	}

	fixed := costs.FixedMonthlyTotal()
	var buckets []models.PeriodMetrics
	for cur := start; cur.Before(end); {
		next := clampEnd(monthFloor(cur).AddDate(0, 1, 0), end)
		bucket := periodTotals(calls, costs, cur, next)
		bucket.TotalCost += fixed
		buckets = append(buckets, bucket)
		cur = next
	}
	metrics.EngineBucketsReturned.Observe(float64(len(buckets)))
	return buckets, nil
}

func dayFloor(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// weekFloor returns the Monday midnight at or before t.
func weekFloor(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return dayFloor(t).AddDate(0, 0, -offset)
}

func monthFloor(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func clampStart(t, start time.Time) time.Time {
	if t.Before(start) {
		return start
	}
	return t
}

func clampEnd(t, end time.Time) time.Time {
	if t.After(end) {
		return end
	}
	return t
}
