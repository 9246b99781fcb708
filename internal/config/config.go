// Package config reads the service settings from an optional .env file and
// the process environment. Variables already set in the environment win over
// the file.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
)

type Config struct {
	Addr        string
	DatabaseURL string
	TokenKey    string
	TLSCert     string
	TLSKey      string
	LogLevel    slog.Level
	// RateLimit is requests per second per client IP; RateBurst the bucket
	// size.
	RateLimit   float64
	RateBurst   int
}

// Load reads files (".env" when none are given) and then the environment.
// Missing files are skipped. A variable exported with an empty value counts
// as unset, so the file can still supply it.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	fromFile := map[string]string{}
	for _, f := range files {
		vals, err := godotenv.Read(f)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
		for k, v := range vals {
			if _, ok := fromFile[k]; !ok {
				fromFile[k] = v
			}
		}
	}
	env := func(key, def string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		if v := fromFile[key]; v != "" {
			return v
		}
		return def
	}

	c := Config{
		Addr:        env("HELIX_ADDR", ":8443"),
		DatabaseURL: env("DATABASE_URL", ""),
		TokenKey:    env("TOKEN_KEY", ""),
		TLSCert:     env("TLS_CERT", ""),
		TLSKey:      env("TLS_KEY", ""),
	}
	if c.TokenKey == "" {
		return Config{}, errors.New("TOKEN_KEY environment variable is not set")
	}
	if c.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL environment variable is not set")
	}
	if (c.TLSCert == "") != (c.TLSKey == "") {
		return Config{}, errors.New("TLS_CERT and TLS_KEY must be set together")
	}
	if err := c.LogLevel.UnmarshalText([]byte(env("LOG_LEVEL", "info"))); err != nil {
		return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	var err error
	rateLimit := env("RATE_LIMIT", "1")
	if c.RateLimit, err = strconv.ParseFloat(rateLimit, 64); err != nil || c.RateLimit <= 0 {
		return Config{}, fmt.Errorf("RATE_LIMIT must be a positive number, got %q", rateLimit)
	}
	rateBurst := env("RATE_BURST", "3")
	if c.RateBurst, err = strconv.Atoi(rateBurst); err != nil || c.RateBurst <= 0 {
		return Config{}, fmt.Errorf("RATE_BURST must be a positive integer, got %q", rateBurst)
	}
	return c, nil
}

// TLS reports whether the server should terminate TLS itself.
func (c Config) TLS() bool { return c.TLSCert != "" }

// Database splits DATABASE_URL into a driver name and DSN. A "sqlite:"
// prefix selects SQLite; anything else is handed to Postgres.
func (c Config) Database() (driver, dsn string) {
	if rest, ok := strings.CutPrefix(c.DatabaseURL, "sqlite:"); ok {
		return "sqlite", rest
	}
	return "postgres", c.DatabaseURL
}

// Logger returns a colourised slog logger at the configured level.
func (c Config) Logger(w io.Writer) *slog.Logger {
	return NewLogger(w, c.LogLevel)
}

func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05",
	}))
}
