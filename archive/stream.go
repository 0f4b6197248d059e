package archive

import (
	"fmt"
	"io"
)

// walker iterates a sequential container. After Next returns an entry,
// reads return that entry's decompressed content.
type walker interface {
	io.Reader
	Next() (Entry, error)
}

type streamEntry struct {
	Entry
	err error
}

// streamArchive gives sequential formats (RAR, tar) the indexed Archive
// interface. Headers are walked once at open; Open walks again from the
// start of the source to reach the requested entry.
type streamArchive struct {
	format    Format
	src       io.ReaderAt
	size      int64
	newWalker func(io.Reader) (walker, error)
	entries   []streamEntry
}

func openStream(format Format, src io.ReaderAt, size int64, newWalker func(io.Reader) (walker, error)) (Archive, error) {
	w, err := startWalk(newWalker, io.NewSectionReader(src, 0, size))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", format, err)
	}

	s := &streamArchive{
		format:    format,
		src:       src,
		size:      size,
		newWalker: newWalker,
	}

	for {
		e, err := w.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			if len(s.entries) == 0 {
				return nil, fmt.Errorf("failed to read %s entry: %w", format, err)
			}
			// Headers after a damaged one cannot be reached. Keep the
			// damage as an entry so Stat reports it at its position.
			s.entries = append(s.entries, streamEntry{err: err})
			break
		}
		s.entries = append(s.entries, streamEntry{Entry: e})
	}

	return s, nil
}

func (s *streamArchive) Format() Format { return s.format }

func (s *streamArchive) Len() int { return len(s.entries) }

func (s *streamArchive) Stat(i int) (Entry, error) {
	if err := checkIndex(i, len(s.entries)); err != nil {
		return Entry{}, err
	}
	e := s.entries[i]
	if e.err != nil {
		return Entry{}, fmt.Errorf("failed to read %s entry %d: %w", s.format, i, e.err)
	}
	return e.Entry, nil
}

func (s *streamArchive) Open(i int) (io.ReadCloser, error) {
	if _, err := s.Stat(i); err != nil {
		return nil, err
	}

	w, err := startWalk(s.newWalker, io.NewSectionReader(s.src, 0, s.size))
	if err != nil {
		return nil, fmt.Errorf("failed to reopen %s: %w", s.format, err)
	}
	for j := 0; j <= i; j++ {
		if _, err := w.Next(); err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return nil, fmt.Errorf("failed to seek to %s entry %d: %w", s.format, i, err)
		}
	}

	return io.NopCloser(w), nil
}

func (s *streamArchive) Close() error { return nil }

func startWalk(newWalker func(io.Reader) (walker, error), r io.Reader) (w walker, err error) {
	defer recoverCorrupt(&err)
	w, err = newWalker(r)
	if err != nil {
		return nil, err
	}
	return guardedWalker{w}, nil
}

// guardedWalker turns decoder panics into ErrCorrupt. rardecode can panic
// on malformed blocks.
type guardedWalker struct {
	w walker
}

func (g guardedWalker) Next() (e Entry, err error) {
	defer recoverCorrupt(&err)
	return g.w.Next()
}

func (g guardedWalker) Read(p []byte) (n int, err error) {
	defer recoverCorrupt(&err)
	return g.w.Read(p)
}

// guardedReader applies the same protection to an entry reader.
type guardedReader struct {
	io.ReadCloser
}

func (g guardedReader) Read(p []byte) (n int, err error) {
	defer recoverCorrupt(&err)
	return g.ReadCloser.Read(p)
}

func recoverCorrupt(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%w: %v", ErrCorrupt, r)
	}
}
