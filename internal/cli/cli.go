// Package cli holds the flag and logging setup shared by the commands.
package cli

import (
	"io"
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/user-none/comicthumb/config"
)

// Options are the flags every command accepts.
type Options struct {
	ConfigPath string
	LogLevel   string
}

// Bind registers the shared flags on flags.
func (o *Options) Bind(flags *pflag.FlagSet) {
	flags.StringVar(&o.ConfigPath, "config", "", "config file (default $XDG_CONFIG_HOME/comicthumb/config.yaml)")
	flags.StringVar(&o.LogLevel, "log-level", "", "log level: debug, info, warn or error")
}

// Load reads the config file, applies flag overrides and returns it with a
// text logger writing to w. Invalid settings are reset to their defaults
// and reported through the logger.
func (o *Options) Load(w io.Writer) (*config.Config, *slog.Logger, error) {
	cfg, err := o.read()
	if err != nil {
		return nil, nil, err
	}
	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}

	issues := cfg.Validate()
	cfg.Correct()

	logger := NewLogger(w, cfg.Level())
	for _, issue := range issues {
		logger.Warn("invalid config value, using default", slog.String("issue", issue))
	}
	return cfg, logger, nil
}

func (o *Options) read() (*config.Config, error) {
	path := o.ConfigPath
	if path == "" {
		p, err := config.Path()
		if err != nil {
			// no usable home directory, run on defaults
			return config.Default(), nil
		}
		path = p
	}
	return config.Load(path)
}

// NewLogger returns a text logger at level writing to w.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
