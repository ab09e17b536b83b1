package formatter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/GRamos199/call-center-analytics/analytics"
	"github.com/GRamos199/call-center-analytics/models"
)

const dateLayout = "2006-01-02"

// Report bundles an ordered bucket series with the deltas of its two
// most recent buckets.
type Report struct {
	Period  string                  `json:"period"`
	Buckets []models.PeriodMetrics  `json:"buckets"`
	Deltas  map[string]models.Delta `json:"deltas,omitempty"`
}

// NewReport builds a report for an ordered bucket series. Deltas are
// computed for the last bucket against the one before it when at least
// two buckets exist.
func NewReport(period string, buckets []models.PeriodMetrics) *Report {
	r := &Report{Period: period, Buckets: buckets}
	if len(buckets) >= 2 {
		r.Deltas = analytics.Deltas(buckets[len(buckets)-1], buckets[len(buckets)-2])
	}
	return r
}

// FormatText returns the text representation of the report
func FormatText(report *Report) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Period: %s (%d buckets)\n\n", report.Period, len(report.Buckets)))
	for _, b := range report.Buckets {
		sb.WriteString(formatBucketLine(b))
		sb.WriteString("\n")
	}

	if report.Deltas != nil {
		sb.WriteString("\nChange vs previous period:\n")
		for _, name := range analytics.DeltaMetrics() {
			d, ok := report.Deltas[name]
			if !ok {
				continue
			}
			if d.NoBaseline {
				sb.WriteString(fmt.Sprintf("  %-15s %.2f (prev %.2f)  %+.2f  n/a (no baseline)\n",
					name, d.Current, d.Previous, d.AbsoluteDiff))
				continue
			}
			sb.WriteString(fmt.Sprintf("  %-15s %.2f (prev %.2f)  %+.2f (%+.2f%%)  %s\n",
				name, d.Current, d.Previous, d.AbsoluteDiff, d.PercentDiff, d.Trend))
		}
	}

	return sb.String()
}

func formatBucketLine(b models.PeriodMetrics) string {
	return fmt.Sprintf("%s .. %s | calls=%d duration=%.1fm avg=%.1fm agents=%d clients=%d cost=%.2f",
		b.PeriodStart.Format(dateLayout), b.PeriodEnd.Format(dateLayout),
		b.TotalCalls, b.TotalDuration, b.AvgDuration,
		b.ActiveAgents, b.UniqueClients, b.TotalCost)
}

// FormatJSON returns the JSON representation of the report
func FormatJSON(report *Report) string {
	jsonBytes, _ := json.MarshalIndent(report, "", "  ")
	return string(jsonBytes)
}

// FormatCSV returns the CSV representation of the report's buckets
func FormatCSV(report *Report) string {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	writer.Write([]string{
		"period_start", "period_end", "total_calls", "total_duration",
		"avg_duration", "active_agents", "unique_clients", "total_cost",
	})

	for _, b := range report.Buckets {
		writer.Write([]string{
			b.PeriodStart.Format(dateLayout),
			b.PeriodEnd.Format(dateLayout),
			strconv.Itoa(b.TotalCalls),
			strconv.FormatFloat(b.TotalDuration, 'f', 2, 64),
			strconv.FormatFloat(b.AvgDuration, 'f', 2, 64),
			strconv.Itoa(b.ActiveAgents),
			strconv.Itoa(b.UniqueClients),
			strconv.FormatFloat(b.TotalCost, 'f', 2, 64),
		})
	}

	writer.Flush()
	return sb.String()
}
