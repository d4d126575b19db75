// Package config loads runtime settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Provider names accepted in DATA_PROVIDER.
const (
	ProviderSynthetic = "synthetic"
	ProviderMassive   = "massive"
	ProviderPolygon   = "polygon"
	ProviderCSV       = "csv"
)

// Config holds every tunable of the pricer and its collaborators.
type Config struct {
	RiskFreeRate    float64
	VolLookbackDays int
	DataProvider    string
	MassiveAPIKey   string
	PolygonAPIKey   string
	DataDir         string
	ListenAddr      string
	LogVerbosity    int
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		RiskFreeRate:    0.05,
		VolLookbackDays: 30,
		DataProvider:    ProviderSynthetic,
		DataDir:         "data",
		ListenAddr:      ":8080",
		LogVerbosity:    1,
	}
}

// Load reads envFile when it exists and then overlays environment variables
// on top of Default. A missing env file is not an error; a malformed value is.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	cfg := Default()
	var err error

	if cfg.RiskFreeRate, err = floatEnv("RISK_FREE_RATE", cfg.RiskFreeRate); err != nil {
		return Config{}, err
	}
	if cfg.VolLookbackDays, err = intEnv("VOL_LOOKBACK_DAYS", cfg.VolLookbackDays); err != nil {
		return Config{}, err
	}
	if cfg.LogVerbosity, err = intEnv("LOG_VERBOSITY", cfg.LogVerbosity); err != nil {
		return Config{}, err
	}
	cfg.DataProvider = strings.ToLower(stringEnv("DATA_PROVIDER", cfg.DataProvider))
	cfg.MassiveAPIKey = stringEnv("MASSIVE_API_KEY", cfg.MassiveAPIKey)
	cfg.PolygonAPIKey = stringEnv("POLYGON_API_KEY", cfg.PolygonAPIKey)
	cfg.DataDir = stringEnv("DATA_DIR", cfg.DataDir)
	cfg.ListenAddr = stringEnv("LISTEN_ADDR", cfg.ListenAddr)

	return cfg, cfg.Validate()
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	if c.VolLookbackDays < 2 {
		return fmt.Errorf("VOL_LOOKBACK_DAYS must be at least 2, got %d", c.VolLookbackDays)
	}
	switch c.DataProvider {
	case ProviderSynthetic, ProviderCSV:
	case ProviderMassive:
		if c.MassiveAPIKey == "" {
			return fmt.Errorf("DATA_PROVIDER=%s requires MASSIVE_API_KEY", c.DataProvider)
		}
	case ProviderPolygon:
		if c.PolygonAPIKey == "" {
			return fmt.Errorf("DATA_PROVIDER=%s requires POLYGON_API_KEY", c.DataProvider)
		}
	default:
		return fmt.Errorf("unknown DATA_PROVIDER %q", c.DataProvider)
	}
	return nil
}

func stringEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func floatEnv(key string, def float64) (float64, error) {
	v := stringEnv(key, "")
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func intEnv(key string, def int) (int, error) {
	v := stringEnv(key, "")
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return i, nil
}
