package models

import "time"

// Known department labels for agents. The set is open ended: a new
// department in the source data is kept as-is rather than rejected.
const (
	DepartmentSales   = "Sales"
	DepartmentSupport = "Support"
)

// HourlyRateKey is the cost type carrying the hourly labor rate. It must
// be present in every cost configuration.
const HourlyRateKey = "hourly_rate"

// CallRecord is a single transactional call row. Records are immutable
// once loaded; all metrics are derived from them on demand.
type CallRecord struct {
	CallID          int
	AgentID         int
	ClientID        int
	Date            time.Time
	StartTime       time.Time
	EndTime         time.Time
	DurationMinutes float64
}

// Agent is a row of the agents master table.
type Agent struct {
	AgentID    int
	AgentName  string
	Department string
	HireDate   time.Time
}

// CostEntry is a single configured cost item.
type CostEntry struct {
	Amount      float64
	Currency    string
	Description string
}

// CostConfig maps a cost-type label to its configured entry.
type CostConfig map[string]CostEntry

// HourlyRate returns the configured hourly labor rate.
func (c CostConfig) HourlyRate() float64 {
	return c[HourlyRateKey].Amount
}

// FixedMonthlyTotal sums every configured cost other than the hourly
// labor rate (infrastructure, management, ...).
func (c CostConfig) FixedMonthlyTotal() float64 {
	total := 0.0
	for costType, entry := range c {
		if costType == HourlyRateKey {
			continue
		}
		total += entry.Amount
	}
	return total
}

// PeriodMetrics holds the aggregated KPIs of one half-open period
// [PeriodStart, PeriodEnd). It is computed on demand and never mutated
// after construction.
type PeriodMetrics struct {
	PeriodStart   time.Time       `json:"period_start"`
	PeriodEnd     time.Time       `json:"period_end"`
	TotalCalls    int             `json:"total_calls"`
	TotalDuration float64         `json:"total_duration"`
	AvgDuration   float64         `json:"avg_duration"`
	ActiveAgents  int             `json:"active_agents"`
	UniqueClients int             `json:"unique_clients"`
	TotalCost     float64         `json:"total_cost"`
	CostPerAgent  map[int]float64 `json:"cost_per_agent"`
	CostPerClient map[int]float64 `json:"cost_per_client"`
}

// Trend directions of a Delta.
const (
	TrendUp   = "up"
	TrendDown = "down"
	TrendFlat = "flat"
)

// Delta compares one scalar metric between two periods.
type Delta struct {
	Metric       string  `json:"metric"`
	Current      float64 `json:"current"`
	Previous     float64 `json:"previous"`
	AbsoluteDiff float64 `json:"absolute_diff"`
	PercentDiff  float64 `json:"percent_diff"`
	// NoBaseline is set when the previous value is zero. PercentDiff
	// carries no meaning in that case and must not be read.
	NoBaseline bool   `json:"no_baseline,omitempty"`
	Trend      string `json:"trend"`
}

// HourlyStats aggregates calls by hour of day (0-23).
type HourlyStats struct {
	Hour        int     `json:"hour"`
	TotalCalls  int     `json:"total_calls"`
	AvgDuration float64 `json:"avg_duration"`
}

// TrendPoint pairs a period start with one scalar metric value, used to
// chart a metric across consecutive buckets.
type TrendPoint struct {
	Period time.Time `json:"period"`
	Value  float64   `json:"value"`
}
