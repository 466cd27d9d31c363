package config

import (
	"bufio"
	"os"
	"strconv"
	"strings"
)

// LoadDotEnv sets variables from a .env file without overriding ones
// already in the environment. A missing file is ignored.
func LoadDotEnv(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		val = strings.Trim(strings.TrimSpace(val), `"'`)
		if _, exists := os.LookupEnv(key); !exists {
			os.Setenv(key, val)
		}
	}
}

// ResolveFlag returns flagVal if set, otherwise the value of envKey.
func ResolveFlag(flagVal, envKey string) string {
	if flagVal != "" {
		return flagVal
	}
	return os.Getenv(envKey)
}

// ApplyEnv overrides site and output settings from COOLING_* variables.
// Unparseable numbers are ignored.
func (c *Config) ApplyEnv() {
	if v, err := strconv.ParseFloat(os.Getenv("COOLING_LAT"), 64); err == nil {
		c.Latitude = v
	}
	if v, err := strconv.ParseFloat(os.Getenv("COOLING_LON"), 64); err == nil {
		c.Longitude = v
	}
	if v, err := strconv.Atoi(os.Getenv("COOLING_YEAR")); err == nil {
		c.Year = v
	}
	if v, err := strconv.Atoi(os.Getenv("COOLING_WORKERS")); err == nil {
		c.Workers = v
	}
	if v := os.Getenv("COOLING_INPUT"); v != "" {
		c.Input = v
	}
	if v := os.Getenv("COOLING_OUTPUT_DIR"); v != "" {
		c.OutputDir = v
	}
}
