// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/ironsheep/scan-overlay-mcp/internal/imaging"
)

// Environment variables read by Load.
const (
	EnvLogLevel   = "SCAN_OVERLAY_LOG_LEVEL"
	EnvBoxColor   = "SCAN_OVERLAY_BOX_COLOR"
	EnvAnnotate   = "SCAN_OVERLAY_ANNOTATE"
	EnvJitterSeed = "SCAN_OVERLAY_JITTER_SEED"
	EnvMaxCache   = "SCAN_OVERLAY_MAX_CACHE"
)

// Config holds the server settings.
type Config struct {
	// Debug enables per-call debug logging.
	Debug bool

	// BoxColor outlines regions on annotated composites.
	BoxColor imaging.RGBA

	// Annotate draws region outlines on composites returned by the server.
	Annotate bool

	// JitterSeed, when non-nil, makes region confidence jitter reproducible.
	JitterSeed *int64

	// MaxCache caps the number of decoded images kept in memory.
	MaxCache int
}

// Default returns the configuration used when no variables are set.
func Default() *Config {
	return &Config{
		BoxColor: imaging.RGBA{R: 255, G: 77, B: 77, A: 255},
		Annotate: true,
		MaxCache: imaging.DefaultMaxEntries,
	}
}

// Load reads the configuration from the environment. Unset variables keep
// their defaults; malformed values are an error.
func Load() (*Config, error) {
	cfg := Default()

	switch level := getEnv(EnvLogLevel, "info"); level {
	case "debug":
		cfg.Debug = true
	case "info", "":
	default:
		return nil, fmt.Errorf("invalid %s %q: want info or debug", EnvLogLevel, level)
	}

	if hex := os.Getenv(EnvBoxColor); hex != "" {
		p, err := imaging.ParseHexColor(hex, 1)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvBoxColor, err)
		}
		cfg.BoxColor = imaging.RGBA{R: p.R, G: p.G, B: p.B, A: 255}
	}

	if v := os.Getenv(EnvAnnotate); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvAnnotate, err)
		}
		cfg.Annotate = b
	}

	if v := os.Getenv(EnvJitterSeed); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvJitterSeed, err)
		}
		cfg.JitterSeed = &seed
	}

	if v := os.Getenv(EnvMaxCache); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvMaxCache, err)
		}
		cfg.MaxCache = n
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
