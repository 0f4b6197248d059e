package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/user-none/comicthumb/thumbnail"
)

// maxWorkers bounds concurrent thumbnailing
const maxWorkers = 256

// Validate checks all config fields against valid ranges and returns
// human-readable error descriptions. An empty slice means the config is valid.
func (c *Config) Validate() []string {
	var errors []string

	// size
	if c.Size.Validate() != nil {
		errors = append(errors, fmt.Sprintf("size: %s (valid: at least 1x1)", c.Size))
	}

	// format
	if _, err := thumbnail.ParseFormat(c.Format); err != nil {
		errors = append(errors, fmt.Sprintf("format: %q (valid: \"png\", \"jpeg\")", c.Format))
	}

	// jpegQuality
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		errors = append(errors, fmt.Sprintf("jpegQuality: %d (valid: 1-100)", c.JPEGQuality))
	}

	// maxEntrySizeMB
	if c.MaxEntrySizeMB < 1 || c.MaxEntrySizeMB > 4096 {
		errors = append(errors, fmt.Sprintf("maxEntrySizeMB: %d (valid: 1-4096)", c.MaxEntrySizeMB))
	}

	// maxCompressionRatio
	if c.MaxCompressionRatio < 0 {
		errors = append(errors, fmt.Sprintf("maxCompressionRatio: %d (valid: >= 0)", c.MaxCompressionRatio))
	}

	// workers
	if c.Workers < 1 || c.Workers > maxWorkers {
		errors = append(errors, fmt.Sprintf("workers: %d (valid: 1-%d)", c.Workers, maxWorkers))
	}

	// archiveExtensions
	if !validExtensions(c.ArchiveExtensions) {
		errors = append(errors, fmt.Sprintf("archiveExtensions: %v (valid: non-empty list of extensions)", c.ArchiveExtensions))
	}

	// coverNames
	if !validNames(c.CoverNames) {
		errors = append(errors, fmt.Sprintf("coverNames: %v (valid: non-empty list of names)", c.CoverNames))
	}

	// logLevel
	if !validLevel(c.LogLevel) {
		errors = append(errors, fmt.Sprintf("logLevel: %q (valid: \"debug\", \"info\", \"warn\", \"error\")", c.LogLevel))
	}

	return errors
}

// Correct resets any invalid fields to their defaults from Default().
// Valid fields are preserved.
func (c *Config) Correct() *Config {
	defaults := Default()

	if c.Size.Validate() != nil {
		c.Size = defaults.Size
	}
	if _, err := thumbnail.ParseFormat(c.Format); err != nil {
		c.Format = defaults.Format
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		c.JPEGQuality = defaults.JPEGQuality
	}
	if c.MaxEntrySizeMB < 1 || c.MaxEntrySizeMB > 4096 {
		c.MaxEntrySizeMB = defaults.MaxEntrySizeMB
	}
	if c.MaxCompressionRatio < 0 {
		c.MaxCompressionRatio = defaults.MaxCompressionRatio
	}
	if c.Workers < 1 || c.Workers > maxWorkers {
		c.Workers = defaults.Workers
	}
	if !validExtensions(c.ArchiveExtensions) {
		c.ArchiveExtensions = defaults.ArchiveExtensions
	}
	if !validNames(c.CoverNames) {
		c.CoverNames = defaults.CoverNames
	}
	if !validLevel(c.LogLevel) {
		c.LogLevel = defaults.LogLevel
	}

	return c
}

func validExtensions(exts []string) bool {
	if len(exts) == 0 {
		return false
	}
	for _, e := range exts {
		e = strings.TrimPrefix(strings.TrimSpace(e), ".")
		if e == "" || strings.ContainsAny(e, `/\.`) {
			return false
		}
	}
	return true
}

func validNames(names []string) bool {
	if len(names) == 0 {
		return false
	}
	for _, n := range names {
		if strings.TrimSpace(n) == "" || strings.ContainsAny(n, `/\.`) {
			return false
		}
	}
	return true
}

func validLevel(s string) bool {
	var level slog.Level
	return level.UnmarshalText([]byte(strings.TrimSpace(s))) == nil
}
