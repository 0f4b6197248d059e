// Package katalog picks a thumbnail for a catalog directory.
//
// A catalog is a directory of comic archives, optionally with a cover
// image. Cover images win over archives; within each kind the first path
// that produces a thumbnail is used.
package katalog

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/user-none/comicthumb/thumbnail"
)

// ErrNoCandidate is returned when no cover or archive in the catalog
// produced a thumbnail.
var ErrNoCandidate = errors.New("catalog contains no usable cover or archive")

// DefaultArchiveExtensions are the archive file extensions searched for.
var DefaultArchiveExtensions = []string{".cbz", ".cbr", ".cb7", ".cbt", ".zip"}

// DefaultCoverNames are the file name prefixes treated as cover images.
var DefaultCoverNames = []string{"cover"}

// Kind classifies a file found in a catalog. Lower kinds are tried first.
type Kind int

const (
	KindCover Kind = iota + 1
	KindArchive
)

func (k Kind) String() string {
	switch k {
	case KindCover:
		return "cover"
	case KindArchive:
		return "archive"
	default:
		return "unknown"
	}
}

// Found is a thumbnail candidate in a catalog.
type Found struct {
	Kind Kind
	Path string
}

// Scanner finds thumbnail candidates in catalog directories.
type Scanner struct {
	archiveExts  []string
	coverNames   []string
	maxEntrySize int64
	thumbOpts    []thumbnail.Option
	logger       *slog.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithArchiveExtensions replaces the archive extensions (".cbz" style).
func WithArchiveExtensions(exts []string) Option {
	return func(s *Scanner) {
		if len(exts) > 0 {
			s.archiveExts = normalizeExtensions(exts)
		}
	}
}

// WithCoverNames replaces the cover name prefixes.
func WithCoverNames(names []string) Option {
	return func(s *Scanner) {
		if len(names) > 0 {
			s.coverNames = names
		}
	}
}

// WithMaxEntrySize limits how much of a cover image file is read.
func WithMaxEntrySize(n int64) Option {
	return func(s *Scanner) {
		s.maxEntrySize = n
	}
}

// WithThumbnailOptions sets the options passed to thumbnail.Extract for
// archive candidates.
func WithThumbnailOptions(opts ...thumbnail.Option) Option {
	return func(s *Scanner) {
		s.thumbOpts = opts
	}
}

// WithLogger sets the logger for skipped candidates.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewScanner creates a Scanner with the default extensions and cover names.
func NewScanner(opts ...Option) *Scanner {
	s := &Scanner{
		archiveExts:  DefaultArchiveExtensions,
		coverNames:   DefaultCoverNames,
		maxEntrySize: thumbnail.DefaultMaxEntrySize,
		logger:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan walks dir and returns its candidates, covers first and then by
// path. Symlinks are not followed and unreadable entries are skipped.
func (s *Scanner) Scan(dir string) ([]Found, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var found []Found
	walkFn := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			s.logger.Debug("skipping unreadable path", slog.String("path", path), slog.Any("error", err))
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		if kind, ok := s.classify(d.Name()); ok {
			found = append(found, Found{Kind: kind, Path: path})
		}
		return nil
	}

	if err := filepath.WalkDir(dir, walkFn); err != nil {
		return nil, fmt.Errorf("error scanning %s: %w", dir, err)
	}

	slices.SortFunc(found, compareFound)
	return found, nil
}

// classify checks the archive extension first, so cover.cbz is an archive
func (s *Scanner) classify(name string) (Kind, bool) {
	if s.isArchive(name) {
		return KindArchive, true
	}
	if s.isCover(name) {
		return KindCover, true
	}
	return 0, false
}

func (s *Scanner) isArchive(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return false
	}
	return slices.Contains(s.archiveExts, ext)
}

func (s *Scanner) isCover(name string) bool {
	prefix := filePrefix(name)
	for _, c := range s.coverNames {
		if strings.EqualFold(prefix, c) || strings.EqualFold(prefix, "."+c) {
			return true
		}
	}
	return false
}

// filePrefix returns name up to its first dot, keeping a leading dot
func filePrefix(name string) string {
	start := 0
	if strings.HasPrefix(name, ".") {
		start = 1
	}
	if i := strings.IndexByte(name[start:], '.'); i >= 0 {
		return name[:start+i]
	}
	return name
}

// compareFound orders by kind, then path component by component
func compareFound(a, b Found) int {
	if a.Kind != b.Kind {
		return int(a.Kind) - int(b.Kind)
	}
	return slices.Compare(splitPath(a.Path), splitPath(b.Path))
}

func splitPath(p string) []string {
	return strings.Split(filepath.ToSlash(p), "/")
}

func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		out = append(out, e)
	}
	return out
}

// Thumbnail scans dir and returns a thumbnail from the first candidate that
// produces one, along with that candidate's path.
func (s *Scanner) Thumbnail(dir string, width, height int) (*image.RGBA, string, error) {
	found, err := s.Scan(dir)
	if err != nil {
		return nil, "", err
	}

	for _, f := range found {
		img, err := s.thumbnailFor(f, width, height)
		if err != nil {
			s.logger.Warn("skipping catalog candidate",
				slog.String("kind", f.Kind.String()),
				slog.String("path", f.Path),
				slog.Any("error", err))
			continue
		}
		return img, f.Path, nil
	}

	return nil, "", ErrNoCandidate
}

func (s *Scanner) thumbnailFor(f Found, width, height int) (*image.RGBA, error) {
	switch f.Kind {
	case KindCover:
		img, err := thumbnail.DecodeFile(f.Path, s.maxEntrySize)
		if err != nil {
			return nil, err
		}
		return thumbnail.Fit(img, width, height, nil), nil
	case KindArchive:
		file, err := os.Open(f.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open archive: %w", err)
		}
		defer file.Close()
		return thumbnail.Extract(file, width, height, s.thumbOpts...)
	default:
		return nil, fmt.Errorf("unknown candidate kind %d", f.Kind)
	}
}
