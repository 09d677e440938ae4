package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

// Load reads .env (if present) and environment variables, merges the optional
// mirrors file, validates the result, and ensures required directories exist.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	var cfg Config

	if err := envconfig.Process("MCF", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	cfg.Mirrors = DefaultMirrors()
	cfg.Loaders = DefaultLoaderTemplates()

	if cfg.MirrorsFile != "" {
		if err := mergeMirrorsFile(&cfg, cfg.MirrorsFile); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if err := createDirs(&cfg); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	return &cfg, nil
}

// mirrorsFile is the layout of the TOML mirrors file:
//
//	[source_link.<id>]
//	version_json = "..."
//	libraries = "..."
//	assets = "..."
//
//	[modloader]
//	fabric_profile_template = "..."
type mirrorsFile struct {
	SourceLink map[string]Mirror `mapstructure:"source_link"`
	ModLoader  LoaderTemplates   `mapstructure:"modloader"`
}

func mergeMirrorsFile(cfg *Config, path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read mirrors file %s: %w", path, err)
	}

	// Keys missing from the file keep their defaults.
	mf := mirrorsFile{ModLoader: cfg.Loaders}
	if err := v.Unmarshal(&mf); err != nil {
		return fmt.Errorf("failed to decode mirrors file %s: %w", path, err)
	}

	for name, m := range mf.SourceLink {
		cfg.Mirrors[name] = m
	}

	cfg.Loaders = mf.ModLoader

	slog.Debug("mirrors file merged", "path", path, "sources", len(mf.SourceLink))
	return nil
}

func createDirs(cfg *Config) error {
	dirs := []string{
		cfg.InstallRoot,
		filepath.Dir(cfg.StateFile),
	}
	if cfg.LogDir != "" {
		dirs = append(dirs, cfg.LogDir)
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		slog.Debug("directory created or verified", "path", dir)
	}
	return nil
}

// SetupLogger configures the global slog logger based on configuration.
// Supports "json" or "text" formats and log levels: debug, info, warn, error.
// When LogDir is set, records are also appended to <LogDir>/<date>.log.
// The returned closer releases the log file and is never nil.
func SetupLogger(cfg *Config) (io.Closer, error) {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var out io.Writer = os.Stdout
	var closer io.Closer = nopCloser{}
	if cfg.LogDir != "" {
		name := filepath.Join(cfg.LogDir, time.Now().Format("2006-01-02")+".log")
		f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return closer, fmt.Errorf("open log file: %w", err)
		}
		out = io.MultiWriter(os.Stdout, f)
		closer = f
	}

	var handler slog.Handler
	if cfg.LogFormat == "text" {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
