package thumbnail

import (
	"log/slog"

	"golang.org/x/image/draw"
)

// DefaultMaxEntrySize caps how much of a single archive entry is read
// into memory (64 MiB).
const DefaultMaxEntrySize = 64 << 20

// Option configures an extraction.
type Option func(*options)

type options struct {
	logger              *slog.Logger
	maxEntrySize        int64
	maxCompressionRatio int64
	maxDecodedSize      int64
	scaler              draw.Scaler
}

func newOptions(opts []Option) *options {
	o := &options{
		logger:         slog.New(slog.DiscardHandler),
		maxEntrySize:   DefaultMaxEntrySize,
		maxDecodedSize: DefaultMaxDecodedSize,
		scaler:         draw.BiLinear,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets the logger that receives per-entry warnings.
// A nil logger keeps the default, which discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMaxEntrySize limits the decompressed size of a candidate entry.
// Larger entries are skipped. Values <= 0 restore the default.
func WithMaxEntrySize(n int64) Option {
	return func(o *options) {
		if n <= 0 {
			n = DefaultMaxEntrySize
		}
		o.maxEntrySize = n
	}
}

// WithMaxDecodedSize limits the pixel memory a candidate may decode to,
// judged from the dimensions in its header. Larger images are skipped.
// Values <= 0 restore the default.
func WithMaxDecodedSize(n int64) Option {
	return func(o *options) {
		if n <= 0 {
			n = DefaultMaxDecodedSize
		}
		o.maxDecodedSize = n
	}
}

// WithMaxCompressionRatio skips entries whose uncompressed size is more
// than n times their compressed size, without reading them. Image formats
// are already compressed, so a high ratio suggests text or metadata.
// Zero (the default) disables the check.
func WithMaxCompressionRatio(n int64) Option {
	return func(o *options) {
		if n < 0 {
			n = 0
		}
		o.maxCompressionRatio = n
	}
}

// WithScaler sets the resampling kernel used for the final resize.
// Default: draw.BiLinear
func WithScaler(s draw.Scaler) Option {
	return func(o *options) {
		if s != nil {
			o.scaler = s
		}
	}
}
