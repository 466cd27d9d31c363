package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cooling_demand/internal/config"
	"cooling_demand/internal/metrics"
	"cooling_demand/internal/runner"
	"cooling_demand/internal/stats"
	"cooling_demand/internal/ws"
)

func main() {
	configFlag := flag.String("config", "", "YAML config file (overrides COOLING_CONFIG)")
	envFile := flag.String("env", ".env", "dotenv file")
	input := flag.String("input", "", "baseline CSV; empty fetches from NASA POWER")
	frontendDir := flag.String("frontend-dir", "frontend/build", "directory containing frontend build")
	addr := flag.String("addr", ":8080", "listen address")
	flag.Parse()

	config.LoadDotEnv(*envFile)

	path := config.ResolveFlag(*configFlag, "COOLING_CONFIG")
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			log.Fatalf("Config: %v", err)
		}
	}
	cfg.ApplyEnv()
	if *input != "" {
		cfg.Input = *input
	}

	periods, err := cfg.ChartPeriods()
	if err != nil {
		log.Fatalf("Periods: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	// Run the pipeline once
	r := runner.New(cfg, m)
	baseline, err := r.Baseline(ctx)
	if err != nil {
		log.Fatalf("Baseline: %v", err)
	}
	res, err := r.Run(baseline)
	if err != nil {
		log.Fatalf("Run: %v", err)
	}
	for l, f := range res.Failures {
		log.Printf("Scenario %s failed: %v", l, f.Err)
	}
	if runner.AllFailed(res) {
		log.Fatal("All scenarios failed")
	}

	hub := ws.NewHub()
	bridge := ws.NewBridge(hub)
	run := ws.NewRun(res, periods)
	bridge.Publish(run)
	m.RunDone(time.Now(), run.Summaries)

	tr, _ := res.TimeRange()
	log.Printf("Run %s loaded: %d scenarios, %s to %s", res.ID, len(res.Scenarios),
		tr.Start.Format("2006-01-02"), tr.End.Format("2006-01-02"))
	for _, s := range run.Summaries {
		logSummary(s)
	}

	srv := &http.Server{
		Addr:    *addr,
		Handler: newMux(ws.NewHandler(hub, bridge), reg, *frontendDir),
	}

	go func() {
		<-ctx.Done()
		log.Printf("Shutting down")
		hub.CloseAll()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("Starting server on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

func newMux(wsHandler http.Handler, gatherer prometheus.Gatherer, frontendDir string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	mux.Handle("/ws", wsHandler)
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// Serve frontend static files
	if _, err := os.Stat(frontendDir); err == nil {
		log.Printf("Serving frontend from %s", frontendDir)
		mux.Handle("/", http.FileServer(http.Dir(frontendDir)))
	}
	return mux
}

func logSummary(s stats.Summary) {
	log.Printf("  %s: peak %.1f MW at %s, %.0f MWh", s.Label, s.PeakMW,
		s.PeakAt.Format("2006-01-02 15:04"), s.EnergyMWh)
}
