// Package thumbnail builds preview images for comic book archives.
//
// [Extract] scans an archive for the first entry, in byte-wise name order,
// that decodes as an image and returns it resized to fit a bounding box.
// Entries that cannot be read or decoded are logged and skipped; only a
// source that is not an archive at all, or an archive without any
// decodable image, fails the call.
package thumbnail

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"math"
	"slices"
	"sync"

	"github.com/user-none/comicthumb/archive"
)

// ErrNotAnArchive is returned when the source cannot be parsed as a
// supported archive. The parse diagnostic is wrapped alongside it.
var ErrNotAnArchive = errors.New("not a readable archive")

// ErrNoImageFound is returned when an archive was parsed but none of its
// files decoded as an image.
var ErrNoImageFound = errors.New("archive contains no decodable image")

// ErrEntryTooLarge is logged for entries exceeding the size limit
var ErrEntryTooLarge = errors.New("entry exceeds maximum size limit")

// candidate is a regular-file entry considered for decoding
type candidate struct {
	name  []byte
	index int
	entry archive.Entry
}

// Extract generates a thumbnail from the archive in src, fitted within
// width x height. src must stay valid for the duration of the call and
// is never written to.
func Extract(src io.ReadSeeker, width, height int, opts ...Option) (*image.RGBA, error) {
	size, err := src.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to determine size: %w", ErrNotAnArchive, err)
	}

	ra, ok := src.(io.ReaderAt)
	if !ok {
		ra = &seekReaderAt{rs: src}
	}
	return ExtractReaderAt(ra, size, width, height, opts...)
}

// ExtractReaderAt is Extract for sources that support random access reads.
func ExtractReaderAt(src io.ReaderAt, size int64, width, height int, opts ...Option) (*image.RGBA, error) {
	o := newOptions(opts)

	arc, err := archive.Open(src, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotAnArchive, err)
	}
	defer arc.Close()

	for _, c := range o.candidates(arc) {
		img, ok := o.decodeCandidate(arc, c)
		if !ok {
			continue
		}
		return Fit(img, width, height, o.scaler), nil
	}

	return nil, ErrNoImageFound
}

// candidates returns the regular files of arc ordered by raw name bytes.
// A name that appears twice resolves to its last index.
func (o *options) candidates(arc archive.Archive) []candidate {
	byName := make(map[string]candidate)

	for i := 0; i < arc.Len(); i++ {
		e, err := arc.Stat(i)
		if err != nil {
			o.logger.Warn("could not read archive entry metadata",
				slog.Int("index", i),
				slog.Any("error", err))
			continue
		}
		if !e.IsFile {
			continue
		}
		byName[string(e.Name)] = candidate{name: e.Name, index: i, entry: e}
	}

	ordered := make([]candidate, 0, len(byName))
	for _, c := range byName {
		ordered = append(ordered, c)
	}
	slices.SortFunc(ordered, func(a, b candidate) int {
		return bytes.Compare(a.name, b.name)
	})
	return ordered
}

// decodeCandidate reads one entry and attempts to decode it. Failures are
// logged; the content buffer does not outlive the call.
func (o *options) decodeCandidate(arc archive.Archive, c candidate) (image.Image, bool) {
	log := o.logger.With(
		slog.Int("index", c.index),
		slog.String("name", string(c.name)))

	rc, err := arc.Open(c.index)
	if err != nil {
		log.Warn("could not open archive entry", slog.Any("error", err))
		return nil, false
	}
	defer rc.Close()

	if o.maxCompressionRatio > 0 && exceedsRatio(c.entry, o.maxCompressionRatio) {
		log.Debug("skipping entry with high compression ratio",
			slog.Int64("compressed", c.entry.CompressedSize),
			slog.Int64("uncompressed", c.entry.UncompressedSize))
		return nil, false
	}

	data, err := limitedRead(rc, o.maxEntrySize)
	if err != nil {
		log.Warn("could not read archive entry", slog.Any("error", err))
		return nil, false
	}

	img, err := decodeLimited(data, o.maxDecodedSize)
	if err != nil {
		log.Warn("archive entry is not a decodable image", slog.Any("error", err))
		return nil, false
	}
	return img, true
}

// exceedsRatio reports whether uncompressed/compressed (integer division)
// is above limit. Unknown sizes never exceed; a zero compressed size with
// content is treated as an infinite ratio.
func exceedsRatio(e archive.Entry, limit int64) bool {
	if e.CompressedSize < 0 || e.UncompressedSize <= 0 {
		return false
	}
	if e.CompressedSize == 0 {
		return true
	}
	return e.UncompressedSize/e.CompressedSize > limit
}

// limitedRead reads from r up to limit bytes, returning an error if exceeded
func limitedRead(r io.Reader, limit int64) ([]byte, error) {
	n := limit
	if n < math.MaxInt64 {
		n++
	}
	lr := io.LimitReader(r, n)
	data, err := io.ReadAll(lr)
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, ErrEntryTooLarge
	}
	return data, nil
}

// seekReaderAt serves ReadAt from a plain ReadSeeker. Reads are serialised
// because each one moves the shared offset.
type seekReaderAt struct {
	mu sync.Mutex
	rs io.ReadSeeker
}

func (s *seekReaderAt) ReadAt(p []byte, off int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.rs.Seek(off, io.SeekStart); err != nil {
		return 0, err
	}
	n, err := io.ReadFull(s.rs, p)
	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}
	return n, err
}
