package thumbnail

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned for unknown output encodings
var ErrUnsupportedFormat = errors.New("unsupported output format")

// Format is an output image encoding.
type Format int

const (
	FormatPNG Format = iota
	FormatJPEG
)

// DefaultJPEGQuality is used when an Encoder has no quality set.
const DefaultJPEGQuality = 85

// String returns the lower-case format name.
func (f Format) String() string {
	switch f {
	case FormatPNG:
		return "png"
	case FormatJPEG:
		return "jpeg"
	default:
		return "unknown"
	}
}

// ParseFormat parses a format name ("png", "jpeg" or "jpg", any case).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "png":
		return FormatPNG, nil
	case "jpeg", "jpg":
		return FormatJPEG, nil
	default:
		return FormatPNG, fmt.Errorf("%w: %s", ErrUnsupportedFormat, s)
	}
}

// FormatFromPath picks the format from an output path's extension,
// falling back to def for anything it does not recognise.
func FormatFromPath(path string, def Format) Format {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if f, err := ParseFormat(ext); err == nil {
		return f
	}
	return def
}

// Encoder writes thumbnails in a fixed output encoding.
type Encoder struct {
	Format  Format
	Quality int // JPEG only, 1-100
}

// Encode writes img to w.
func (e Encoder) Encode(w io.Writer, img image.Image) error {
	switch e.Format {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatJPEG:
		quality := e.Quality
		if quality < 1 || quality > 100 {
			quality = DefaultJPEGQuality
		}
		return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
	default:
		return fmt.Errorf("%w: %d", ErrUnsupportedFormat, e.Format)
	}
}

// Save encodes img to path atomically. The image is written to a temporary
// file in the destination directory which is then renamed over path, so
// readers never observe a partial thumbnail.
func (e Encoder) Save(path string, img image.Image) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempFile := tmp.Name()

	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		os.Remove(tempFile)
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := e.Encode(tmp, img); err != nil {
		tmp.Close()
		os.Remove(tempFile)
		return fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	// Rename temp file to target (atomic on most filesystems)
	if err := os.Rename(tempFile, path); err != nil {
		os.Remove(tempFile) // Clean up on failure
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}
