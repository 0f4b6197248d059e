// Package config loads thumbnailer defaults from a YAML file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/user-none/comicthumb/katalog"
	"github.com/user-none/comicthumb/thumbnail"
)

const (
	appName    = "comicthumb"
	configFile = "config.yaml"
)

// Config holds the thumbnailer settings.
type Config struct {
	Size                thumbnail.Size `yaml:"size"`
	Format              string         `yaml:"format"`
	JPEGQuality         int            `yaml:"jpegQuality"`
	MaxEntrySizeMB      int            `yaml:"maxEntrySizeMB"`
	MaxCompressionRatio int            `yaml:"maxCompressionRatio"` // 0 disables the heuristic
	Workers             int            `yaml:"workers"`
	ArchiveExtensions   []string       `yaml:"archiveExtensions"`
	CoverNames          []string       `yaml:"coverNames"`
	LogLevel            string         `yaml:"logLevel"`
}

// Default returns a new Config with default values
func Default() *Config {
	return &Config{
		Size:                thumbnail.DefaultSize(),
		Format:              "png",
		JPEGQuality:         thumbnail.DefaultJPEGQuality,
		MaxEntrySizeMB:      thumbnail.DefaultMaxEntrySize >> 20,
		MaxCompressionRatio: 0,
		Workers:             runtime.NumCPU(),
		ArchiveExtensions:   append([]string(nil), katalog.DefaultArchiveExtensions...),
		CoverNames:          append([]string(nil), katalog.DefaultCoverNames...),
		LogLevel:            "warn",
	}
}

// Dir returns the configuration directory for the application.
// Example paths:
// - macOS: ~/Library/Application Support/comicthumb
// - Linux: ~/.config/comicthumb
// - Windows: %APPDATA%/comicthumb
func Dir() (string, error) {
	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, "Library", "Application Support", appName), nil
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", fmt.Errorf("APPDATA environment variable not set")
		}
		return filepath.Join(appData, appName), nil
	default: // Linux and other Unix-like systems
		if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
			return filepath.Join(configHome, appName), nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, ".config", appName), nil
	}
}

// Path returns the full path to config.yaml
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// Load reads the configuration at path.
// If the file doesn't exist, it returns default configuration.
// Keys absent from the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Save writes cfg to path atomically.
func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	tempFile := path + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	// Rename temp file to target (atomic on most filesystems)
	if err := os.Rename(tempFile, path); err != nil {
		os.Remove(tempFile) // Clean up on failure
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// Encoder returns the output encoder described by the config.
func (c *Config) Encoder() thumbnail.Encoder {
	format, err := thumbnail.ParseFormat(c.Format)
	if err != nil {
		format = thumbnail.FormatPNG
	}
	return thumbnail.Encoder{Format: format, Quality: c.JPEGQuality}
}

// MaxEntrySize returns the per-entry read limit in bytes.
func (c *Config) MaxEntrySize() int64 {
	return int64(c.MaxEntrySizeMB) << 20
}

// ThumbnailOptions returns the extraction options described by the config.
func (c *Config) ThumbnailOptions(logger *slog.Logger) []thumbnail.Option {
	return []thumbnail.Option{
		thumbnail.WithLogger(logger),
		thumbnail.WithMaxEntrySize(c.MaxEntrySize()),
		thumbnail.WithMaxCompressionRatio(int64(c.MaxCompressionRatio)),
	}
}

// KatalogOptions returns the catalog scanner options described by the config.
func (c *Config) KatalogOptions(logger *slog.Logger) []katalog.Option {
	return []katalog.Option{
		katalog.WithLogger(logger),
		katalog.WithArchiveExtensions(c.ArchiveExtensions),
		katalog.WithCoverNames(c.CoverNames),
		katalog.WithMaxEntrySize(c.MaxEntrySize()),
		katalog.WithThumbnailOptions(c.ThumbnailOptions(logger)...),
	}
}

// Level parses LogLevel, falling back to warn.
func (c *Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelWarn
	}
	return level
}
