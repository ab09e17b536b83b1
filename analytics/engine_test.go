package analytics_test

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GRamos199/call-center-analytics/analytics"
	customerrors "github.com/GRamos199/call-center-analytics/errors"
	"github.com/GRamos199/call-center-analytics/loader"
	"github.com/GRamos199/call-center-analytics/models"
)

const testAgents = `agent_id,agent_name,department,hire_date
1,Alice Johnson,Sales,2020-03-01
2,Bob Smith,Support,2021-07-15
3,Carol White,Support,2019-11-20
`

const testCosts = `cost_type,amount,currency,description
hourly_rate,45.50,USD,Hourly labor rate
infrastructure,1000.00,USD,Monthly infrastructure cost
management,500.00,USD,Monthly management overhead
`

// callRow builds one consistent calls CSV row: the call starts at the
// given hour and runs for durationMin minutes.
func callRow(id, agent, client int, date string, hour, durationMin int) string {
	endH := hour + durationMin/60
	endM := durationMin % 60
	return fmt.Sprintf("%d,%d,%d,%s,%s %02d:00:00,%s %02d:%02d:00,%d",
		id, agent, client, date, date, hour, date, endH, endM, durationMin)
}

func newEngine(t *testing.T, callRows ...string) *analytics.Engine {
	t.Helper()
	dir := t.TempDir()

	calls := "call_id,agent_id,client_id,date,start_time,end_time,duration_minutes\n"
	for _, r := range callRows {
		calls += r + "\n"
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "calls.csv"), []byte(calls), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "agents.csv"), []byte(testAgents), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "costs.csv"), []byte(testCosts), 0o644))

	store := loader.NewStore(dir)
	_, err := store.LoadCalls()
	require.NoError(t, err)
	_, err = store.LoadCosts()
	require.NoError(t, err)
	return analytics.New(store)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCostPerAgent_ConcreteScenario(t *testing.T) {
	// agent 1: 60 + 30 minutes, agent 2: 90 minutes, rate $45.50.
	engine := newEngine(t,
		callRow(1, 1, 101, "2024-01-01", 9, 60),
		callRow(2, 1, 102, "2024-01-01", 11, 30),
		callRow(3, 2, 101, "2024-01-01", 14, 90),
	)

	costs, err := engine.CostPerAgent(date(2024, 1, 1), date(2024, 1, 2))
	require.NoError(t, err)
	require.Len(t, costs, 2)
	assert.InDelta(t, 68.25, costs[1], 1e-9)
	assert.InDelta(t, 68.25, costs[2], 1e-9)

	totals, err := engine.Totals(date(2024, 1, 1), date(2024, 1, 2))
	require.NoError(t, err)
	assert.Equal(t, 3, totals.TotalCalls)
	assert.InDelta(t, 60.0, totals.AvgDuration, 1e-9)
	assert.Equal(t, 2, totals.ActiveAgents)
	assert.Equal(t, 2, totals.UniqueClients)
}

func TestCostPerAgent_OmitsZeroCallAgents(t *testing.T) {
	engine := newEngine(t, callRow(1, 1, 101, "2024-01-01", 9, 60))

	costs, err := engine.CostPerAgent(date(2024, 1, 1), date(2024, 1, 2))
	require.NoError(t, err)

	// Agents 2 and 3 exist but had no calls: omitted, not zero.
	require.Len(t, costs, 1)
	_, present := costs[2]
	assert.False(t, present)
}

func TestCostPerAgent_Conservation(t *testing.T) {
	engine := newEngine(t,
		callRow(1, 1, 101, "2024-01-01", 9, 42),
		callRow(2, 2, 102, "2024-01-01", 10, 17),
		callRow(3, 3, 103, "2024-01-02", 11, 88),
		callRow(4, 1, 104, "2024-01-03", 12, 5),
	)

	start, end := date(2024, 1, 1), date(2024, 1, 4)
	costs, err := engine.CostPerAgent(start, end)
	require.NoError(t, err)
	totals, err := engine.Totals(start, end)
	require.NoError(t, err)

	sum := 0.0
	for _, c := range costs {
		sum += c
	}
	assert.InDelta(t, totals.TotalDuration/60*45.50, sum, 1e-9)
	assert.InDelta(t, totals.TotalCost, sum, 1e-9)
}

func TestCostPerClient(t *testing.T) {
	engine := newEngine(t,
		callRow(1, 1, 101, "2024-01-01", 9, 60),
		callRow(2, 2, 101, "2024-01-01", 11, 30),
		callRow(3, 2, 102, "2024-01-01", 14, 30),
	)

	costs, err := engine.CostPerClient(date(2024, 1, 1), date(2024, 1, 2))
	require.NoError(t, err)
	require.Len(t, costs, 2)
	assert.InDelta(t, 1.5*45.50, costs[101], 1e-9)
	assert.InDelta(t, 0.5*45.50, costs[102], 1e-9)
}

func TestTotals_EmptyRange(t *testing.T) {
	engine := newEngine(t, callRow(1, 1, 101, "2024-01-01", 9, 60))

	totals, err := engine.Totals(date(2024, 6, 1), date(2024, 6, 2))
	require.NoError(t, err)
	assert.Equal(t, 0, totals.TotalCalls)
	assert.Equal(t, 0.0, totals.AvgDuration)
	assert.Equal(t, 0, totals.ActiveAgents)
	assert.Empty(t, totals.CostPerAgent)
}

func TestQueries_InvalidRange(t *testing.T) {
	engine := newEngine(t, callRow(1, 1, 101, "2024-01-01", 9, 60))
	day := date(2024, 1, 1)

	_, err := engine.Totals(day, day)
	assert.True(t, errors.Is(err, customerrors.ErrInvalidRange))

	_, err = engine.CostPerAgent(day, day.AddDate(0, 0, -1))
	assert.True(t, errors.Is(err, customerrors.ErrInvalidRange))

	_, err = engine.AggregateByDay(day, day)
	assert.True(t, errors.Is(err, customerrors.ErrInvalidRange))
}

func TestQueries_BeforeLoad(t *testing.T) {
	engine := analytics.New(loader.NewStore(t.TempDir()))

	_, err := engine.Totals(date(2024, 1, 1), date(2024, 1, 2))
	assert.True(t, errors.Is(err, customerrors.ErrDataNotLoaded))

	_, err = engine.CostPerAgent(date(2024, 1, 1), date(2024, 1, 2))
	assert.True(t, errors.Is(err, customerrors.ErrDataNotLoaded))

	_, err = engine.AggregateByWeek(date(2024, 1, 1), date(2024, 2, 1))
	assert.True(t, errors.Is(err, customerrors.ErrDataNotLoaded))
}

func TestDeltas(t *testing.T) {
	tests := map[string]struct {
		current    int
		previous   int
		expectAbs  float64
		expectPct  float64
		expectDir  string
		noBaseline bool
	}{
		"Up": {
			current:   587,
			previous:  520,
			expectAbs: 67,
			expectPct: 12.88,
			expectDir: models.TrendUp,
		},
		"Down": {
			current:   400,
			previous:  500,
			expectAbs: -100,
			expectPct: -20,
			expectDir: models.TrendDown,
		},
		"Flat": {
			current:   500,
			previous:  500,
			expectAbs: 0,
			expectPct: 0,
			expectDir: models.TrendFlat,
		},
		"NoBaseline": {
			current:    42,
			previous:   0,
			expectAbs:  42,
			expectDir:  models.TrendUp,
			noBaseline: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			current := models.PeriodMetrics{TotalCalls: tc.current}
			previous := models.PeriodMetrics{TotalCalls: tc.previous}

			deltas := analytics.Deltas(current, previous)
			d, ok := deltas["total_calls"]
			require.True(t, ok)

			assert.InDelta(t, tc.expectAbs, d.AbsoluteDiff, 1e-9)
			assert.Equal(t, tc.expectDir, d.Trend)
			assert.Equal(t, tc.noBaseline, d.NoBaseline)
			if !tc.noBaseline {
				assert.InDelta(t, tc.expectPct, d.PercentDiff, 0.01)
			}
		})
	}
}

func TestDeltas_CoversAllScalars(t *testing.T) {
	deltas := analytics.Deltas(models.PeriodMetrics{}, models.PeriodMetrics{})
	assert.Len(t, deltas, len(analytics.DeltaMetrics()))
	for _, name := range analytics.DeltaMetrics() {
		assert.Contains(t, deltas, name)
	}
}

func TestAggregateByDay_SevenBuckets(t *testing.T) {
	engine := newEngine(t,
		callRow(1, 1, 101, "2024-01-01", 9, 60),
		callRow(2, 2, 102, "2024-01-04", 11, 30),
		callRow(3, 1, 103, "2024-01-07", 14, 90),
	)

	buckets, err := engine.AggregateByDay(date(2024, 1, 1), date(2024, 1, 8))
	require.NoError(t, err)
	require.Len(t, buckets, 7)

	for i, b := range buckets {
		expected := date(2024, 1, 1+i)
		assert.Equal(t, expected, b.PeriodStart)
		assert.Equal(t, expected.AddDate(0, 0, 1), b.PeriodEnd)
	}
	assert.Equal(t, 1, buckets[0].TotalCalls)
	assert.Equal(t, 0, buckets[1].TotalCalls)
	assert.Equal(t, 1, buckets[3].TotalCalls)
	assert.Equal(t, 1, buckets[6].TotalCalls)
}

func TestAggregateByWeek_MondayAlignment(t *testing.T) {
	// 2024-01-01 is a Monday; the range starts on a Wednesday.
	engine := newEngine(t,
		callRow(1, 1, 101, "2024-01-03", 9, 60),
		callRow(2, 2, 102, "2024-01-09", 11, 30),
		callRow(3, 1, 103, "2024-01-16", 14, 90),
	)

	buckets, err := engine.AggregateByWeek(date(2024, 1, 3), date(2024, 1, 17))
	require.NoError(t, err)
	require.Len(t, buckets, 3)

	assert.Equal(t, date(2024, 1, 3), buckets[0].PeriodStart)
	assert.Equal(t, date(2024, 1, 8), buckets[0].PeriodEnd)
	assert.Equal(t, date(2024, 1, 8), buckets[1].PeriodStart)
	assert.Equal(t, date(2024, 1, 15), buckets[1].PeriodEnd)
	assert.Equal(t, date(2024, 1, 15), buckets[2].PeriodStart)
	assert.Equal(t, date(2024, 1, 17), buckets[2].PeriodEnd)

	for _, b := range buckets {
		assert.Equal(t, 1, b.TotalCalls)
	}
}

func TestAggregateByMonth_CalendarBoundaries(t *testing.T) {
	engine := newEngine(t,
		callRow(1, 1, 101, "2024-01-20", 9, 60),
		callRow(2, 2, 102, "2024-02-10", 11, 30),
		callRow(3, 1, 103, "2024-03-05", 14, 90),
	)

	buckets, err := engine.AggregateByMonth(date(2024, 1, 15), date(2024, 3, 10))
	require.NoError(t, err)
	require.Len(t, buckets, 3)

	assert.Equal(t, date(2024, 1, 15), buckets[0].PeriodStart)
	assert.Equal(t, date(2024, 2, 1), buckets[0].PeriodEnd)
	assert.Equal(t, date(2024, 2, 1), buckets[1].PeriodStart)
	assert.Equal(t, date(2024, 3, 1), buckets[1].PeriodEnd)
	assert.Equal(t, date(2024, 3, 1), buckets[2].PeriodStart)
	assert.Equal(t, date(2024, 3, 10), buckets[2].PeriodEnd)

	// Fixed monthly costs (infrastructure + management) are added in
	// full to each month bucket on top of labor cost.
	labor := 1.0 * 45.50
	assert.InDelta(t, labor+1500.00, buckets[0].TotalCost, 1e-9)
}

func TestHourlyDistribution(t *testing.T) {
	engine := newEngine(t,
		callRow(1, 1, 101, "2024-01-01", 9, 60),
		callRow(2, 2, 102, "2024-01-01", 9, 30),
		callRow(3, 1, 103, "2024-01-01", 14, 90),
	)

	stats, err := engine.HourlyDistribution(date(2024, 1, 1), date(2024, 1, 2))
	require.NoError(t, err)
	require.Len(t, stats, 2)

	assert.Equal(t, 9, stats[0].Hour)
	assert.Equal(t, 2, stats[0].TotalCalls)
	assert.InDelta(t, 45.0, stats[0].AvgDuration, 1e-9)
	assert.Equal(t, 14, stats[1].Hour)
	assert.Equal(t, 1, stats[1].TotalCalls)
}

func TestTrendSeries(t *testing.T) {
	buckets := []models.PeriodMetrics{
		{PeriodStart: date(2024, 1, 1), TotalCalls: 10},
		{PeriodStart: date(2024, 1, 2), TotalCalls: 20},
	}

	points, err := analytics.TrendSeries("total_calls", buckets)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, date(2024, 1, 1), points[0].Period)
	assert.Equal(t, 10.0, points[0].Value)
	assert.Equal(t, 20.0, points[1].Value)
}

func TestTrendSeries_UnknownMetric(t *testing.T) {
	_, err := analytics.TrendSeries("bogus", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, customerrors.ErrUnknownMetric))
}
