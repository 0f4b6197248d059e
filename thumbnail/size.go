package thumbnail

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// DefaultDimension is the thumbnail width and height used when none is given.
const DefaultDimension = 128

// ErrEmptySize is returned by Size.Validate for a box with a zero dimension
var ErrEmptySize = errors.New("thumbnail size must be at least 1x1")

// Size is a thumbnail bounding box. It implements pflag.Value so it can
// be bound directly to a command line flag.
type Size struct {
	Width  int
	Height int
}

// DefaultSize returns the 128x128 default bounding box.
func DefaultSize() Size {
	return Size{Width: DefaultDimension, Height: DefaultDimension}
}

// ParseSize parses "WIDTHxHEIGHT" or a single "DIM" meaning DIM x DIM.
func ParseSize(s string) (Size, error) {
	if w, h, ok := strings.Cut(s, "x"); ok {
		width, err := parseDimension(w)
		if err != nil {
			return Size{}, fmt.Errorf("invalid width in size %q: %w", s, err)
		}
		height, err := parseDimension(h)
		if err != nil {
			return Size{}, fmt.Errorf("invalid height in size %q: %w", s, err)
		}
		return Size{Width: width, Height: height}, nil
	}

	dim, err := parseDimension(s)
	if err != nil {
		return Size{}, fmt.Errorf("invalid size %q: %w", s, err)
	}
	return Size{Width: dim, Height: dim}, nil
}

func parseDimension(s string) (int, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

// Validate reports an error when either dimension is zero. Extract and Fit
// accept such boxes, but the result has no pixels to encode.
func (s Size) Validate() error {
	if s.Width < 1 || s.Height < 1 {
		return fmt.Errorf("%w: %s", ErrEmptySize, s)
	}
	return nil
}

// String renders the size as "WIDTHxHEIGHT".
func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Set parses v into s.
func (s *Size) Set(v string) error {
	parsed, err := ParseSize(v)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Type names the flag value type in help output.
func (s *Size) Type() string {
	return "size"
}

// MarshalText implements encoding.TextMarshaler.
func (s Size) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Size) UnmarshalText(text []byte) error {
	return s.Set(string(text))
}
