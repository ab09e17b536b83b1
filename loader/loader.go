// Package loader reads, validates and caches the three call-center
// source tables: calls, agents and cost configuration. Tables load once
// per store and stay in memory until an explicit cache clear; a failed
// load caches nothing.
package loader

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/GRamos199/call-center-analytics/errors"
	"github.com/GRamos199/call-center-analytics/logger"
	"github.com/GRamos199/call-center-analytics/metrics"
	"github.com/GRamos199/call-center-analytics/models"
)

const dateLayout = "2006-01-02"

// datetimeLayouts accepted for start_time/end_time columns.
var datetimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
}

// durationTolerance is the maximum allowed gap, in minutes, between the
// duration_minutes column and the end-start difference of a call row.
const durationTolerance = 1.0

// Store loads and caches the call-center tables from dataDir. All
// mutation is a full-table replace; readers see either the fully-old or
// fully-new table.
type Store struct {
	dataDir string
	log     *logger.Logger

	calls  []models.CallRecord
	agents []models.Agent
	costs  models.CostConfig

	callsLoaded  bool
	agentsLoaded bool
	costsLoaded  bool
}

// NewStore creates an empty store over the given data directory.
// Nothing is read until the first load.
func NewStore(dataDir string) *Store {
	return &Store{dataDir: dataDir, log: logger.New()}
}

// LoadCalls parses and validates the calls table. Every agent reference
// is checked against the agents table (loading it if needed). The result
// is cached on first success; later calls return the cached records
// until ClearCache.
func (s *Store) LoadCalls() ([]models.CallRecord, error) {
	if s.callsLoaded {
		metrics.CacheHitsTotal.WithLabelValues("calls").Inc()
		return s.calls, nil
	}
	metrics.CacheMissesTotal.WithLabelValues("calls").Inc()

	agents, err := s.LoadAgents()
	if err != nil {
		return nil, err
	}
	known := make(map[int]struct{}, len(agents))
	for _, a := range agents {
		known[a.AgentID] = struct{}{}
	}

	started := time.Now()
	path, err := tablePath(s.dataDir, "calls")
	if err != nil {
		return nil, err
	}
	rows, err := readTable(path, "call_id")
	if err != nil {
		return nil, err
	}

	calls, err := parseCalls(rows, known)
	if err != nil {
		metrics.LoaderErrorsTotal.WithLabelValues("calls", errors.Category(err)).Inc()
		return nil, err
	}

	metrics.LoaderDurationSeconds.WithLabelValues("calls").Observe(time.Since(started).Seconds())
	metrics.LoaderRecordsTotal.WithLabelValues("calls").Add(float64(len(calls)))
	s.log.WithTable("calls").WithField("records", len(calls)).Debug("table loaded")

	s.calls = calls
	s.callsLoaded = true
	return s.calls, nil
}

// LoadAgents parses and validates the agents table; cached identically
// to LoadCalls.
func (s *Store) LoadAgents() ([]models.Agent, error) {
	if s.agentsLoaded {
		metrics.CacheHitsTotal.WithLabelValues("agents").Inc()
		return s.agents, nil
	}
	metrics.CacheMissesTotal.WithLabelValues("agents").Inc()

	started := time.Now()
	path, err := tablePath(s.dataDir, "agents")
	if err != nil {
		return nil, err
	}
	rows, err := readTable(path, "agent_id")
	if err != nil {
		return nil, err
	}

	agents, err := parseAgents(rows)
	if err != nil {
		metrics.LoaderErrorsTotal.WithLabelValues("agents", errors.Category(err)).Inc()
		return nil, err
	}

	metrics.LoaderDurationSeconds.WithLabelValues("agents").Observe(time.Since(started).Seconds())
	metrics.LoaderRecordsTotal.WithLabelValues("agents").Add(float64(len(agents)))
	s.log.WithTable("agents").WithField("records", len(agents)).Debug("table loaded")

	s.agents = agents
	s.agentsLoaded = true
	return s.agents, nil
}

// LoadCosts parses the costs table into a cost configuration. The
// hourly_rate entry must be present with a positive amount.
func (s *Store) LoadCosts() (models.CostConfig, error) {
	if s.costsLoaded {
		metrics.CacheHitsTotal.WithLabelValues("costs").Inc()
		return s.costs, nil
	}
	metrics.CacheMissesTotal.WithLabelValues("costs").Inc()

	started := time.Now()
	path, err := tablePath(s.dataDir, "costs")
	if err != nil {
		return nil, err
	}
	rows, err := readTable(path, "cost_type")
	if err != nil {
		return nil, err
	}

	costs, err := parseCosts(rows)
	if err != nil {
		metrics.LoaderErrorsTotal.WithLabelValues("costs", errors.Category(err)).Inc()
		return nil, err
	}

	metrics.LoaderDurationSeconds.WithLabelValues("costs").Observe(time.Since(started).Seconds())
	metrics.LoaderRecordsTotal.WithLabelValues("costs").Add(float64(len(costs)))
	s.log.WithTable("costs").WithField("entries", len(costs)).Debug("table loaded")

	s.costs = costs
	s.costsLoaded = true
	return s.costs, nil
}

// DateRange returns the minimum and maximum call dates of the loaded
// dataset, loading the calls table if needed.
func (s *Store) DateRange() (time.Time, time.Time, error) {
	calls, err := s.LoadCalls()
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if len(calls) == 0 {
		return time.Time{}, time.Time{}, errors.ErrEmptyDataset
	}
	minDate, maxDate := calls[0].Date, calls[0].Date
	for _, c := range calls[1:] {
		if c.Date.Before(minDate) {
			minDate = c.Date
		}
		if c.Date.After(maxDate) {
			maxDate = c.Date
		}
	}
	return minDate, maxDate, nil
}

// ClearCache invalidates every cached table. The next access triggers a
// full reload from the source files.
func (s *Store) ClearCache() {
	s.calls = nil
	s.agents = nil
	s.costs = nil
	s.callsLoaded = false
	s.agentsLoaded = false
	s.costsLoaded = false
	metrics.CacheClearsTotal.Inc()
	s.log.Debug("cache cleared")
}

// Snapshot returns the cached calls and cost configuration without
// triggering a load. Queries issued before a successful load fail with
// ErrDataNotLoaded.
func (s *Store) Snapshot() ([]models.CallRecord, models.CostConfig, error) {
	if !s.callsLoaded || !s.costsLoaded {
		return nil, nil, errors.ErrDataNotLoaded
	}
	return s.calls, s.costs, nil
}

func parseCalls(rows []row, knownAgents map[int]struct{}) ([]models.CallRecord, error) {
	calls := make([]models.CallRecord, 0, len(rows))
	seen := make(map[int]struct{}, len(rows))

	for _, r := range rows {
		if len(r.fields) != 7 {
			return nil, rowErr(r, errors.ErrInvalidFieldCount)
		}

		rec := models.CallRecord{}
		var err error

		rec.CallID, err = strconv.Atoi(strings.TrimSpace(r.fields[0]))
		if err != nil {
			return nil, rowErrf(r, errors.ErrInvalidID, err)
		}
		if _, dup := seen[rec.CallID]; dup {
			return nil, rowErr(r, errors.ErrDuplicateID)
		}

		rec.AgentID, err = strconv.Atoi(strings.TrimSpace(r.fields[1]))
		if err != nil {
			return nil, rowErrf(r, errors.ErrInvalidID, err)
		}
		rec.ClientID, err = strconv.Atoi(strings.TrimSpace(r.fields[2]))
		if err != nil {
			return nil, rowErrf(r, errors.ErrInvalidID, err)
		}

		rec.Date, err = time.Parse(dateLayout, strings.TrimSpace(r.fields[3]))
		if err != nil {
			return nil, rowErrf(r, errors.ErrInvalidDate, err)
		}
		rec.StartTime, err = parseDateTime(strings.TrimSpace(r.fields[4]))
		if err != nil {
			return nil, rowErrf(r, errors.ErrInvalidStartTime, err)
		}
		rec.EndTime, err = parseDateTime(strings.TrimSpace(r.fields[5]))
		if err != nil {
			return nil, rowErrf(r, errors.ErrInvalidEndTime, err)
		}

		rec.DurationMinutes, err = strconv.ParseFloat(strings.TrimSpace(r.fields[6]), 64)
		if err != nil {
			return nil, rowErrf(r, errors.ErrInvalidDuration, err)
		}
		if rec.DurationMinutes <= 0 || math.IsNaN(rec.DurationMinutes) || math.IsInf(rec.DurationMinutes, 0) {
			return nil, rowErr(r, errors.ErrInvalidDuration)
		}
		if !rec.StartTime.Before(rec.EndTime) {
			return nil, rowErr(r, errors.ErrStartAfterEnd)
		}
		if math.Abs(rec.EndTime.Sub(rec.StartTime).Minutes()-rec.DurationMinutes) > durationTolerance {
			return nil, rowErr(r, errors.ErrDurationMismatch)
		}
		if _, ok := knownAgents[rec.AgentID]; !ok {
			return nil, rowErr(r, errors.ErrUnknownAgent)
		}

		seen[rec.CallID] = struct{}{}
		calls = append(calls, rec)
	}
	return calls, nil
}

func parseAgents(rows []row) ([]models.Agent, error) {
	agents := make([]models.Agent, 0, len(rows))
	seen := make(map[int]struct{}, len(rows))

	for _, r := range rows {
		if len(r.fields) != 4 {
			return nil, rowErr(r, errors.ErrInvalidFieldCount)
		}

		a := models.Agent{}
		var err error

		a.AgentID, err = strconv.Atoi(strings.TrimSpace(r.fields[0]))
		if err != nil {
			return nil, rowErrf(r, errors.ErrInvalidID, err)
		}
		if _, dup := seen[a.AgentID]; dup {
			return nil, rowErr(r, errors.ErrDuplicateID)
		}

		a.AgentName = strings.TrimSpace(r.fields[1])
		if a.AgentName == "" {
			return nil, rowErr(r, errors.ErrEmptyName)
		}
		a.Department = strings.TrimSpace(r.fields[2])

		a.HireDate, err = time.Parse(dateLayout, strings.TrimSpace(r.fields[3]))
		if err != nil {
			return nil, rowErrf(r, errors.ErrInvalidDate, err)
		}

		seen[a.AgentID] = struct{}{}
		agents = append(agents, a)
	}
	return agents, nil
}

func parseCosts(rows []row) (models.CostConfig, error) {
	costs := make(models.CostConfig, len(rows))

	for _, r := range rows {
		if len(r.fields) != 4 {
			return nil, rowErr(r, errors.ErrInvalidFieldCount)
		}

		costType := strings.TrimSpace(r.fields[0])
		if costType == "" {
			return nil, rowErr(r, errors.ErrEmptyName)
		}
		if _, dup := costs[costType]; dup {
			return nil, rowErr(r, errors.ErrDuplicateID)
		}

		amount, err := strconv.ParseFloat(strings.TrimSpace(r.fields[1]), 64)
		if err != nil {
			return nil, rowErrf(r, errors.ErrInvalidAmount, err)
		}
		if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
			return nil, rowErr(r, errors.ErrInvalidAmount)
		}

		currency := strings.TrimSpace(r.fields[2])
		if !validCurrency(currency) {
			return nil, rowErr(r, errors.ErrInvalidCurrency)
		}

		costs[costType] = models.CostEntry{
			Amount:      amount,
			Currency:    currency,
			Description: strings.TrimSpace(r.fields[3]),
		}
	}

	if costs.HourlyRate() <= 0 {
		return nil, errors.ErrMissingHourlyRate
	}
	return costs, nil
}

func parseDateTime(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range datetimeLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// validCurrency accepts ISO-4217 style codes: three uppercase letters.
func validCurrency(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, c := range code {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}

func rowErr(r row, err error) error {
	return &errors.RowError{Line: r.line, Record: r.fields, Err: err}
}

func rowErrf(r row, sentinel error, cause error) error {
	return &errors.RowError{Line: r.line, Record: r.fields, Err: fmt.Errorf("%w: %v", sentinel, cause)}
}
