// Package analytics computes call-center KPIs over half-open date
// intervals [start, end) and compares consecutive periods. All queries
// are pure given the loaded tables; the engine never triggers a load
// itself.
package analytics

import (
	"fmt"
	"time"

	"github.com/GRamos199/call-center-analytics/errors"
	"github.com/GRamos199/call-center-analytics/loader"
	"github.com/GRamos199/call-center-analytics/metrics"
	"github.com/GRamos199/call-center-analytics/models"
)

// Engine answers metric queries against a loaded store.
type Engine struct {
	store *loader.Store
}

// New creates an engine over the given store. The store must have been
// loaded before the first query.
func New(store *loader.Store) *Engine {
	return &Engine{store: store}
}

// CostPerAgent returns the labor cost per agent over [start, end):
// in-range call minutes / 60 x hourly rate. Agents with zero calls in
// range are omitted, not reported as zero.
func (e *Engine) CostPerAgent(start, end time.Time) (map[int]float64, error) {
	defer observe("cost_per_agent", time.Now())
	calls, costs, err := e.snapshot("cost_per_agent", start, end)
	if err != nil {
		return nil, err
	}
	return costByKey(calls, costs.HourlyRate(), start, end, func(c models.CallRecord) int {
		return c.AgentID
	}), nil
}

// CostPerClient returns the labor cost per client over [start, end).
// Clients are discovered from the call set, not predefined.
func (e *Engine) CostPerClient(start, end time.Time) (map[int]float64, error) {
	defer observe("cost_per_client", time.Now())
	calls, costs, err := e.snapshot("cost_per_client", start, end)
	if err != nil {
		return nil, err
	}
	return costByKey(calls, costs.HourlyRate(), start, end, func(c models.CallRecord) int {
		return c.ClientID
	}), nil
}

// Totals aggregates every KPI of the period [start, end). An empty
// period yields zero values, not an error.
func (e *Engine) Totals(start, end time.Time) (models.PeriodMetrics, error) {
	defer observe("totals", time.Now())
	calls, costs, err := e.snapshot("totals", start, end)
	if err != nil {
		return models.PeriodMetrics{}, err
	}
	return periodTotals(calls, costs, start, end), nil
}

// HourlyDistribution buckets in-range calls by hour of day (0-23),
// ascending. Hours without calls are omitted.
func (e *Engine) HourlyDistribution(start, end time.Time) ([]models.HourlyStats, error) {
	defer observe("hourly_distribution", time.Now())
	calls, _, err := e.snapshot("hourly_distribution", start, end)
	if err != nil {
		return nil, err
	}

	var count [24]int
	var minutes [24]float64
	for _, c := range calls {
		if !inRange(c.Date, start, end) {
			continue
		}
		h := c.StartTime.Hour()
		count[h]++
		minutes[h] += c.DurationMinutes
	}

	var out []models.HourlyStats
	for h := 0; h < 24; h++ {
		if count[h] == 0 {
			continue
		}
		out = append(out, models.HourlyStats{
			Hour:        h,
			TotalCalls:  count[h],
			AvgDuration: minutes[h] / float64(count[h]),
		})
	}
	return out, nil
}

// deltaMetrics lists the comparable scalar metrics in report order.
var deltaMetrics = []string{
	"total_calls",
	"total_duration",
	"avg_duration",
	"active_agents",
	"unique_clients",
	"total_cost",
}

// DeltaMetrics returns the comparable scalar metric names in report
// order.
func DeltaMetrics() []string {
	out := make([]string, len(deltaMetrics))
	copy(out, deltaMetrics)
	return out
}

// ScalarMetric returns the named scalar value of a period. The second
// result is false for unknown metric names.
func ScalarMetric(m models.PeriodMetrics, name string) (float64, bool) {
	switch name {
	case "total_calls":
		return float64(m.TotalCalls), true
	case "total_duration":
		return m.TotalDuration, true
	case "avg_duration":
		return m.AvgDuration, true
	case "active_agents":
		return float64(m.ActiveAgents), true
	case "unique_clients":
		return float64(m.UniqueClients), true
	case "total_cost":
		return m.TotalCost, true
	default:
		return 0, false
	}
}

// Deltas compares every scalar metric of two periods. A zero previous
// value sets the NoBaseline sentinel instead of dividing; no delta
// computation ever faults.
func Deltas(current, previous models.PeriodMetrics) map[string]models.Delta {
	out := make(map[string]models.Delta, len(deltaMetrics))
	for _, name := range deltaMetrics {
		cur, _ := ScalarMetric(current, name)
		prev, _ := ScalarMetric(previous, name)

		d := models.Delta{
			Metric:       name,
			Current:      cur,
			Previous:     prev,
			AbsoluteDiff: cur - prev,
		}
		switch {
		case d.AbsoluteDiff > 0:
			d.Trend = models.TrendUp
		case d.AbsoluteDiff < 0:
			d.Trend = models.TrendDown
		default:
			d.Trend = models.TrendFlat
		}
		if prev != 0 {
			d.PercentDiff = d.AbsoluteDiff / prev * 100
		} else {
			d.NoBaseline = true
		}
		out[name] = d
	}
	return out
}

// TrendSeries extracts one named scalar metric from an ordered bucket
// sequence for charting.
func TrendSeries(metric string, buckets []models.PeriodMetrics) ([]models.TrendPoint, error) {
	if _, ok := ScalarMetric(models.PeriodMetrics{}, metric); !ok {
		return nil, fmt.Errorf("%w: %q", errors.ErrUnknownMetric, metric)
	}
	points := make([]models.TrendPoint, 0, len(buckets))
	for _, b := range buckets {
		v, _ := ScalarMetric(b, metric)
		points = append(points, models.TrendPoint{Period: b.PeriodStart, Value: v})
	}
	return points, nil
}

// snapshot validates the interval and fetches the cached tables.
func (e *Engine) snapshot(op string, start, end time.Time) ([]models.CallRecord, models.CostConfig, error) {
	metrics.EngineQueriesTotal.WithLabelValues(op).Inc()

	if !end.After(start) {
		metrics.EngineQueryErrorsTotal.WithLabelValues(op).Inc()
		return nil, nil, fmt.Errorf("%w: [%s, %s)", errors.ErrInvalidRange,
			start.Format("2006-01-02"), end.Format("2006-01-02"))
	}
	calls, costs, err := e.store.Snapshot()
	if err != nil {
		metrics.EngineQueryErrorsTotal.WithLabelValues(op).Inc()
		return nil, nil, err
	}
	return calls, costs, nil
}

// periodTotals computes the full KPI record of one period. Pure.
func periodTotals(calls []models.CallRecord, costs models.CostConfig, start, end time.Time) models.PeriodMetrics {
	m := models.PeriodMetrics{PeriodStart: start, PeriodEnd: end}

	agents := make(map[int]struct{})
	clients := make(map[int]struct{})
	for _, c := range calls {
		if !inRange(c.Date, start, end) {
			continue
		}
		m.TotalCalls++
		m.TotalDuration += c.DurationMinutes
		agents[c.AgentID] = struct{}{}
		clients[c.ClientID] = struct{}{}
	}

	// An empty period is a defined zero outcome, never a fault.
	if m.TotalCalls > 0 {
		m.AvgDuration = m.TotalDuration / float64(m.TotalCalls)
	}
	m.ActiveAgents = len(agents)
	m.UniqueClients = len(clients)

	rate := costs.HourlyRate()
	m.TotalCost = m.TotalDuration / 60 * rate
	m.CostPerAgent = costByKey(calls, rate, start, end, func(c models.CallRecord) int { return c.AgentID })
	m.CostPerClient = costByKey(calls, rate, start, end, func(c models.CallRecord) int { return c.ClientID })
	return m
}

// costByKey sums in-range call minutes per key and converts to cost.
// Keys with no calls in range are omitted, not reported as zero.
func costByKey(calls []models.CallRecord, hourlyRate float64, start, end time.Time, key func(models.CallRecord) int) map[int]float64 {
	minutes := make(map[int]float64)
	for _, c := range calls {
		if !inRange(c.Date, start, end) {
			continue
		}
		minutes[key(c)] += c.DurationMinutes
	}

	out := make(map[int]float64, len(minutes))
	for k, mins := range minutes {
		out[k] = mins / 60 * hourlyRate
	}
	return out
}

func inRange(date, start, end time.Time) bool {
	return !date.Before(start) && date.Before(end)
}

func observe(op string, started time.Time) {
	metrics.EngineQueryDurationSeconds.WithLabelValues(op).Observe(time.Since(started).Seconds())
}
