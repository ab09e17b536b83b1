package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/GRamos199/call-center-analytics/analytics"
	"github.com/GRamos199/call-center-analytics/config"
	"github.com/GRamos199/call-center-analytics/formatter"
	"github.com/GRamos199/call-center-analytics/loader"
	"github.com/GRamos199/call-center-analytics/logger"
	"github.com/GRamos199/call-center-analytics/metrics"
	"github.com/GRamos199/call-center-analytics/models"
)

const dateLayout = "2006-01-02"

func main() {
	// Define flags
	configPath := flag.String("config", "", "Optional YAML config file")
	dataDir := flag.String("data-dir", "", "Directory with calls/agents/costs tables (overrides config)")
	session := flag.String("session", "", "Session key for the store registry (new session when empty)")
	period := flag.String("period", "daily", "Aggregation period: daily|weekly|monthly")
	startStr := flag.String("start", "", "Range start, YYYY-MM-DD (defaults to dataset minimum)")
	endStr := flag.String("end", "", "Range end, YYYY-MM-DD, exclusive (defaults to day after dataset maximum)")
	format := flag.String("format", "text", "Output format: text|json|csv")
	metricsAddr := flag.String("metrics-addr", "", "Address to expose Prometheus metrics (e.g., :9090)")
	pushGateway := flag.String("push-url", "", "Pushgateway URL to push metrics to (e.g., http://localhost:9091)")
	wait := flag.Bool("wait", false, "Keep process running after completion to allow for metric scraping")

	// Parse command-line flags
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}

	log := logger.New()
	log.WithField("data_dir", cfg.DataDir).Info("starting analytics run")

	// Start metrics server if address provided
	if *metricsAddr != "" {
		go func() {
			http.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
			fmt.Printf("Metrics server listening on %s/metrics\n", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, nil); err != nil {
				fmt.Printf("Metrics server error: %v\n", err)
			}
		}()
	}

	// Validate format enum
	validFormats := map[string]bool{"text": true, "json": true, "csv": true}
	if !validFormats[*format] {
		fmt.Printf("Error: format must be one of: text, json, csv (got: %s)\n", *format)
		os.Exit(1)
	}
	validPeriods := map[string]bool{"daily": true, "weekly": true, "monthly": true}
	if !validPeriods[*period] {
		fmt.Printf("Error: period must be one of: daily, weekly, monthly (got: %s)\n", *period)
		os.Exit(1)
	}

	registry := loader.NewRegistry(cfg.DataDir)
	store, sessionKey := registry.Store(*session)
	log.WithField("session", sessionKey).Debug("store registered")

	if _, err := store.LoadCalls(); err != nil {
		log.WithError(err).Error("failed to load calls")
		os.Exit(1)
	}
	if _, err := store.LoadCosts(); err != nil {
		log.WithError(err).Error("failed to load costs")
		os.Exit(1)
	}

	start, end, err := resolveRange(store, *startStr, *endStr)
	if err != nil {
		log.WithError(err).Error("failed to resolve date range")
		os.Exit(1)
	}

	engine := analytics.New(store)
	var buckets []models.PeriodMetrics
	switch *period {
	case "weekly":
		buckets, err = engine.AggregateByWeek(start, end)
	case "monthly":
		buckets, err = engine.AggregateByMonth(start, end)
	default: // "daily"
		buckets, err = engine.AggregateByDay(start, end)
	}
	if err != nil {
		log.WithError(err).Error("aggregation failed")
		os.Exit(1)
	}

	report := formatter.NewReport(*period, buckets)

	// Output based on format
	switch *format {
	case "json":
		fmt.Print(formatter.FormatJSON(report))
	case "csv":
		fmt.Print(formatter.FormatCSV(report))
	default: // "text"
		fmt.Print(formatter.FormatText(report))
	}

	// Handle metrics pushing or waiting
	if *pushGateway != "" {
		jobName := "call_center_analytics"
		if err := push.New(*pushGateway, jobName).Gatherer(metrics.Registry).Push(); err != nil {
			fmt.Fprintf(os.Stderr, "Error pushing to Pushgateway: %v\n", err)
		} else {
			fmt.Println("\nMetrics successfully pushed to Pushgateway")
		}
	}

	if *wait && *metricsAddr != "" {
		fmt.Println("\nProcess kept alive for metric scraping. Press Ctrl+C to exit.")
		// Wait for interrupt signal
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		fmt.Println("\nExiting...")
	} else if *metricsAddr != "" && *pushGateway == "" {
		// Small delay to allow final scrape if not waiting explicitly
		// but typically batch jobs should use pushgateway or wait
		time.Sleep(100 * time.Millisecond)
	}
}

// resolveRange turns the -start/-end flags into a half-open interval,
// falling back to the dataset's own date range.
func resolveRange(store *loader.Store, startStr, endStr string) (time.Time, time.Time, error) {
	minDate, maxDate, err := store.DateRange()
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	start := minDate
	if startStr != "" {
		start, err = time.Parse(dateLayout, startStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid -start: %w", err)
		}
	}
	end := maxDate.AddDate(0, 0, 1)
	if endStr != "" {
		end, err = time.Parse(dateLayout, endStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid -end: %w", err)
		}
	}
	return start, end, nil
}
