package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Save sinks.
const (
	SinkLog    = "log"
	SinkMemory = "memory"
	SinkValkey = "valkey"
)

// Config controls the show service.
type Config struct {
	Addr         string        `env:"SHOWTIME_ADDR"          envDefault:":8080"`
	CORSOrigin   string        `env:"SHOWTIME_CORS_ORIGIN"   envDefault:"http://127.0.0.1:5173"`
	JWTSecret    string        `env:"SHOWTIME_JWT_SECRET"`
	TokenTTL     time.Duration `env:"SHOWTIME_TOKEN_TTL"     envDefault:"12h"`
	SaveSink     string        `env:"SHOWTIME_SAVE_SINK"     envDefault:"memory"` // log, memory or valkey
	ValkeyAddr   string        `env:"SHOWTIME_VALKEY_ADDR"   envDefault:"127.0.0.1:6379"`
	ValkeyPrefix string        `env:"SHOWTIME_VALKEY_PREFIX" envDefault:"showtime"`
}

// Load reads the given .env files, if they exist, into the process
// environment and then parses Config from it. Variables already set in the
// environment win over the files.
func Load(envFiles ...string) (Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	switch cfg.SaveSink {
	case SinkLog, SinkMemory, SinkValkey:
	default:
		return Config{}, fmt.Errorf("unknown save sink %q", cfg.SaveSink)
	}
	return cfg, nil
}
