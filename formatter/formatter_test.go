package formatter_test

import (
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GRamos199/call-center-analytics/formatter"
	"github.com/GRamos199/call-center-analytics/models"
)

func sampleBuckets() []models.PeriodMetrics {
	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }
	return []models.PeriodMetrics{
		{
			PeriodStart:   day(1),
			PeriodEnd:     day(2),
			TotalCalls:    520,
			TotalDuration: 26000,
			AvgDuration:   50,
			ActiveAgents:  5,
			UniqueClients: 40,
			TotalCost:     19716.67,
		},
		{
			PeriodStart:   day(2),
			PeriodEnd:     day(3),
			TotalCalls:    587,
			TotalDuration: 29350,
			AvgDuration:   50,
			ActiveAgents:  6,
			UniqueClients: 44,
			TotalCost:     22257.08,
		},
	}
}

func TestNewReport_Deltas(t *testing.T) {
	report := formatter.NewReport("daily", sampleBuckets())

	require.NotNil(t, report.Deltas)
	d, ok := report.Deltas["total_calls"]
	require.True(t, ok)
	assert.Equal(t, 67.0, d.AbsoluteDiff)
	assert.Equal(t, models.TrendUp, d.Trend)
	assert.InDelta(t, 12.88, d.PercentDiff, 0.01)
}

func TestNewReport_SingleBucket(t *testing.T) {
	report := formatter.NewReport("daily", sampleBuckets()[:1])
	assert.Nil(t, report.Deltas)
}

func TestFormatText(t *testing.T) {
	out := formatter.FormatText(formatter.NewReport("daily", sampleBuckets()))

	assert.Contains(t, out, "Period: daily (2 buckets)")
	assert.Contains(t, out, "2024-01-01 .. 2024-01-02 | calls=520")
	assert.Contains(t, out, "Change vs previous period:")
	assert.Contains(t, out, "total_calls")
	assert.Contains(t, out, "up")
}

func TestFormatText_NoBaseline(t *testing.T) {
	buckets := sampleBuckets()
	buckets[0] = models.PeriodMetrics{PeriodStart: buckets[0].PeriodStart, PeriodEnd: buckets[0].PeriodEnd}

	out := formatter.FormatText(formatter.NewReport("daily", buckets))
	assert.Contains(t, out, "no baseline")
}

func TestFormatCSV(t *testing.T) {
	out := formatter.FormatCSV(formatter.NewReport("daily", sampleBuckets()))

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "period_start", records[0][0])
	assert.Equal(t, "520", records[1][2])
	assert.Equal(t, "587", records[2][2])
}

func TestFormatJSON(t *testing.T) {
	out := formatter.FormatJSON(formatter.NewReport("weekly", sampleBuckets()))

	var decoded formatter.Report
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "weekly", decoded.Period)
	require.Len(t, decoded.Buckets, 2)
	assert.Equal(t, 587, decoded.Buckets[1].TotalCalls)
	assert.Contains(t, decoded.Deltas, "total_cost")
}
