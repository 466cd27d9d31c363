// project runs the cooling-demand pipeline once for the configured scenarios
// and writes the hourly table, per-period chart data and a summary log.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"cooling_demand/internal/config"
	"cooling_demand/internal/export"
	"cooling_demand/internal/ingest"
	"cooling_demand/internal/model"
	"cooling_demand/internal/pipeline"
	"cooling_demand/internal/runner"
	"cooling_demand/internal/stats"
)

func main() {
	configFlag := flag.String("config", "", "YAML config file (overrides COOLING_CONFIG)")
	envFile := flag.String("env", ".env", "dotenv file")
	input := flag.String("input", "", "baseline CSV; empty fetches from NASA POWER")
	outputDir := flag.String("output-dir", "", "output directory")
	check := flag.Bool("check", false, "validate the configuration and exit")
	flag.Parse()

	config.LoadDotEnv(*envFile)

	cfg, err := loadConfig(config.ResolveFlag(*configFlag, "COOLING_CONFIG"))
	if err != nil {
		log.Fatalf("Config: %v", err)
	}
	cfg.ApplyEnv()
	if *input != "" {
		cfg.Input = *input
	}
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}

	if *check {
		os.Exit(checkConfig(cfg))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	r := runner.New(cfg)
	if cfg.Input == "" {
		log.Printf("Fetching %d hourly temperature for %.3f, %.3f (%s)",
			cfg.Year, cfg.Latitude, cfg.Longitude, cfg.Zone())
	}
	baseline, err := r.Baseline(ctx)
	if err != nil {
		log.Fatalf("Baseline: %v", err)
	}
	tr, _ := baseline.TimeRange()
	log.Printf("Baseline: %d hours, %s to %s", baseline.Len(),
		tr.Start.Format(time.RFC3339), tr.End.Format(time.RFC3339))

	start := time.Now()
	res, err := r.Run(baseline)
	if err != nil {
		log.Fatalf("Run: %v", err)
	}
	log.Printf("Run %s: %d/%d scenarios in %s", res.ID, len(res.Scenarios), len(res.Labels),
		time.Since(start).Round(time.Millisecond))

	logFailures(res)
	if runner.AllFailed(res) {
		log.Fatal("All scenarios failed")
	}

	periods, err := cfg.ChartPeriods()
	if err != nil {
		log.Fatalf("Periods: %v", err)
	}
	if err := writeOutputs(cfg.OutputDir, res, baseline, cfg.Input == "", periods); err != nil {
		log.Fatalf("Writing outputs: %v", err)
	}

	logSummaries(stats.SummarizeAll(res))
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// checkConfig logs every invalid scenario and returns the exit code.
func checkConfig(cfg *config.Config) int {
	code := 0
	valid, err := cfg.ValidScenarios()
	if err != nil {
		log.Printf("Invalid scenarios: %v", err)
		code = 1
	}
	for _, c := range valid {
		log.Printf("  %s: ok", c.Label())
	}
	if _, err := cfg.ChartPeriods(); err != nil {
		log.Printf("Invalid periods: %v", err)
		code = 1
	}
	return code
}

func logFailures(res *pipeline.Result) {
	for _, l := range res.Labels {
		if f, ok := res.Failures[l]; ok {
			log.Printf("Scenario %s failed: %v", l, f.Err)
		}
	}
}

func writeOutputs(dir string, res *pipeline.Result, baseline model.Series, fetched bool, periods []model.Period) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	if fetched {
		path := filepath.Join(dir, "baseline.csv")
		if err := writeFile(path, func(f *os.File) error { return ingest.WriteCSV(f, baseline) }); err != nil {
			return err
		}
		log.Printf("Wrote %s", path)
	}

	path := filepath.Join(dir, "hourly.csv")
	if err := writeFile(path, func(f *os.File) error { return export.WriteCSV(f, res) }); err != nil {
		return err
	}
	log.Printf("Wrote %s (%d rows)", path, len(res.Index))

	for _, p := range periods {
		path := filepath.Join(dir, "chart_"+p.Name+".json")
		if err := writeFile(path, func(f *os.File) error { return export.WriteChartJSON(f, res, p) }); err != nil {
			return err
		}
		log.Printf("Wrote %s", path)
	}
	return nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

func logSummaries(summaries []stats.Summary) {
	for i, s := range summaries {
		log.Printf("%s: peak %.1f MW at %s, mean %.1f MW, p95 %.1f MW, %.0f MWh, %d cooling hours, max internal %.1f°C",
			s.Label, s.PeakMW, s.PeakAt.Format("2006-01-02 15:04"), s.MeanMW, s.P95MW,
			s.EnergyMWh, s.CoolingHours, s.MaxInternalC)
		if i > 0 {
			peak, energy := stats.Increase(summaries[0], s)
			log.Printf("  vs %s: peak %+.1f%%, energy %+.1f%%", summaries[0].Label, peak*100, energy*100)
		}
	}
}
