// Package config reads process configuration from the environment. A .env
// file in the working directory is loaded first; variables already set in
// the environment win.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/alexanderramin/pblcoach/internal/llm"
)

// Config is everything the binary needs to wire itself.
type Config struct {
	// DBPath is the SQLite file holding design sessions.
	DBPath string
	// NarrativePack is an optional YAML file overriding the built-in phrases.
	NarrativePack string
	// SessionCache bounds how many live session stores stay in memory.
	SessionCache int
	// ImmediateMinLength and ReviewMaxAttempts tune the confirmation ladder.
	ImmediateMinLength int
	ReviewMaxAttempts  int
	// LogUseCases turns on one structured log line per session operation.
	LogUseCases bool

	LLM llm.LLMConfig
}

// Defaults for values not taken from the environment.
const (
	DefaultSessionCache       = 64
	DefaultImmediateMinLength = 15
	DefaultReviewMaxAttempts  = 2
)

// Load reads .env (if present) and the PBLCOACH_* variables.
func Load() (Config, error) {
	return LoadFile(".env")
}

// LoadFile is Load with an explicit dotenv path. Only a missing file is
// ignored; a malformed one is an error.
func LoadFile(envFile string) (Config, error) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading %s: %w", envFile, err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (Config, error) {
	cfg := Config{
		NarrativePack:      os.Getenv("PBLCOACH_NARRATIVE_PACK"),
		SessionCache:       DefaultSessionCache,
		ImmediateMinLength: DefaultImmediateMinLength,
		ReviewMaxAttempts:  DefaultReviewMaxAttempts,
		LLM:                llm.LoadConfig(),
	}

	cfg.DBPath = os.Getenv("PBLCOACH_DB")
	if cfg.DBPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("finding home directory: %w", err)
		}
		cfg.DBPath = filepath.Join(home, ".pblcoach", "pblcoach.db")
	}

	var err error
	if cfg.SessionCache, err = positiveInt("PBLCOACH_SESSION_CACHE", cfg.SessionCache); err != nil {
		return Config{}, err
	}
	if cfg.ImmediateMinLength, err = positiveInt("PBLCOACH_IMMEDIATE_MIN_LENGTH", cfg.ImmediateMinLength); err != nil {
		return Config{}, err
	}
	if cfg.ReviewMaxAttempts, err = positiveInt("PBLCOACH_REVIEW_MAX_ATTEMPTS", cfg.ReviewMaxAttempts); err != nil {
		return Config{}, err
	}
	if v := os.Getenv("PBLCOACH_LOG_USE_CASES"); v != "" {
		if cfg.LogUseCases, err = strconv.ParseBool(v); err != nil {
			return Config{}, fmt.Errorf("PBLCOACH_LOG_USE_CASES: %w", err)
		}
	}
	return cfg, nil
}

func positiveInt(name string, def int) (int, error) {
	v := os.Getenv(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s: must be positive, got %d", name, n)
	}
	return n, nil
}
