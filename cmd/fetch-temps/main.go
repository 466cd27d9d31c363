// fetch-temps downloads one year of hourly 2 m air temperature (T2M) for a
// point from the NASA POWER API (https://power.larc.nasa.gov) and writes it
// in the baseline CSV format (timestamp,temperature_c), stamped in local
// standard time.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"time"

	"cooling_demand/internal/config"
	"cooling_demand/internal/ingest"
)

func main() {
	latFlag := flag.String("lat", "", "latitude (overrides COOLING_LAT)")
	lonFlag := flag.String("lon", "", "longitude (overrides COOLING_LON)")
	yearFlag := flag.String("year", "", "year (overrides COOLING_YEAR)")
	lstOffset := flag.Int("lst-offset", 99, "LST offset in hours; default derives it from the longitude")
	url := flag.String("url", ingest.DefaultPowerURL, "NASA POWER hourly point endpoint")
	output := flag.String("output", "", "output CSV path, defaults to input/t2m_<year>.csv")
	flag.Parse()

	config.LoadDotEnv(".env")

	cfg := config.Default()
	if err := applyFlags(cfg,
		config.ResolveFlag(*latFlag, "COOLING_LAT"),
		config.ResolveFlag(*lonFlag, "COOLING_LON"),
		config.ResolveFlag(*yearFlag, "COOLING_YEAR"),
	); err != nil {
		log.Fatalf("Invalid flag: %v", err)
	}
	if *lstOffset != 99 {
		cfg.LSTOffsetHours = lstOffset
	}

	out := *output
	if out == "" {
		out = filepath.Join("input", "t2m_"+strconv.Itoa(cfg.Year)+".csv")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := ingest.NewPowerClient(cfg.Zone())
	client.BaseURL = *url

	log.Printf("Fetching T2M %d for %.3f, %.3f (%s)", cfg.Year, cfg.Latitude, cfg.Longitude, cfg.Zone())
	start := time.Now()
	series, err := client.FetchYear(ctx, cfg.Latitude, cfg.Longitude, cfg.Year)
	if err != nil {
		log.Fatalf("Fetching: %v", err)
	}
	log.Printf("Fetched %d hours in %s", series.Len(), time.Since(start).Round(time.Millisecond))

	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		log.Fatalf("Creating output directory: %v", err)
	}
	f, err := os.Create(out)
	if err != nil {
		log.Fatalf("Creating %s: %v", out, err)
	}
	if err := ingest.WriteCSV(f, series); err != nil {
		f.Close()
		log.Fatalf("Writing CSV: %v", err)
	}
	if err := f.Close(); err != nil {
		log.Fatalf("Closing %s: %v", out, err)
	}

	log.Printf("Wrote %d rows to %s", series.Len(), out)
}

// applyFlags sets the site and year from non-empty string values.
func applyFlags(cfg *config.Config, lat, lon, year string) error {
	if lat != "" {
		v, err := strconv.ParseFloat(lat, 64)
		if err != nil {
			return err
		}
		cfg.Latitude = v
	}
	if lon != "" {
		v, err := strconv.ParseFloat(lon, 64)
		if err != nil {
			return err
		}
		cfg.Longitude = v
	}
	if year != "" {
		v, err := strconv.Atoi(year)
		if err != nil {
			return err
		}
		cfg.Year = v
	}
	return nil
}
