package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/nalanda-edu/nalanda/internal/store"
)

// Config holds process-wide configuration.
type Config struct {
	DB   DBConfig
	HTTP HTTPConfig
	Log  LogConfig
}

// DBConfig selects the wallet database.
type DBConfig struct {
	// Driver is "sqlite" or "postgres". Default: "sqlite".
	Driver string

	// DSN is a file path or DSN for sqlite and a connection URL for
	// postgres. Empty means store.DefaultDBPath for sqlite.
	DSN string
}

// HTTPConfig configures `nalanda serve`.
type HTTPConfig struct {
	Addr         string        // Default: ":8080"
	CORSOrigins  []string      // Default: ["*"]
	ReadTimeout  time.Duration // Default: 10s
	WriteTimeout time.Duration // Default: 10s
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string // debug, info, warn, error. Default: "info"
	Format string // text or json. Default: "text"
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DB: DBConfig{
			Driver: string(store.SQLite),
		},
		HTTP: HTTPConfig{
			Addr:         ":8080",
			CORSOrigins:  []string{"*"},
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// FromEnv builds a Config from environment variables, falling back to
// defaults for unset values.
func FromEnv() Config {
	cfg := DefaultConfig()

	if d := os.Getenv("NALANDA_DB_DRIVER"); d != "" {
		cfg.DB.Driver = d
	}
	if dsn := os.Getenv("NALANDA_DB"); dsn != "" {
		cfg.DB.DSN = dsn
	}

	if a := os.Getenv("NALANDA_HTTP_ADDR"); a != "" {
		cfg.HTTP.Addr = a
	}
	if o := os.Getenv("NALANDA_CORS_ORIGINS"); o != "" {
		cfg.HTTP.CORSOrigins = splitList(o)
	}
	if d, err := time.ParseDuration(os.Getenv("NALANDA_HTTP_TIMEOUT")); err == nil {
		cfg.HTTP.ReadTimeout = d
		cfg.HTTP.WriteTimeout = d
	}

	if l := os.Getenv("NALANDA_LOG_LEVEL"); l != "" {
		cfg.Log.Level = l
	}
	if f := os.Getenv("NALANDA_LOG_FORMAT"); f != "" {
		cfg.Log.Format = f
	}

	return cfg
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	var errs []error
	driver, err := store.ParseDriver(c.DB.Driver)
	if err != nil {
		errs = append(errs, err)
	}
	if driver == store.Postgres && c.DB.DSN == "" {
		errs = append(errs, errors.New("postgres requires a DSN (NALANDA_DB)"))
	}
	if c.HTTP.Addr == "" {
		errs = append(errs, errors.New("http address is empty"))
	}
	if c.HTTP.ReadTimeout <= 0 || c.HTTP.WriteTimeout <= 0 {
		errs = append(errs, errors.New("http timeouts must be positive"))
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return l, nil
}

// Logger returns a slog logger writing to w at the configured level.
// Invalid settings fall back to info-level text output.
func (c Config) Logger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
