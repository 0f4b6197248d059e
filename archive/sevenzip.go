package archive

import (
	"fmt"
	"io"

	"github.com/bodgit/sevenzip"
)

// sevenZipArchive reads 7z (cb7) archives. Entries in a solid stream have
// no individual compressed size.
type sevenZipArchive struct {
	r *sevenzip.Reader
}

func openSevenZip(src io.ReaderAt, size int64) (Archive, error) {
	r, err := sevenzip.NewReader(src, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open 7z: %w", err)
	}
	return &sevenZipArchive{r: r}, nil
}

func (s *sevenZipArchive) Format() Format { return Format7z }

func (s *sevenZipArchive) Len() int { return len(s.r.File) }

func (s *sevenZipArchive) Stat(i int) (Entry, error) {
	if err := checkIndex(i, len(s.r.File)); err != nil {
		return Entry{}, err
	}
	f := s.r.File[i]

	return Entry{
		Name:             []byte(f.Name),
		IsFile:           !f.FileInfo().IsDir(),
		CompressedSize:   -1,
		UncompressedSize: int64(f.UncompressedSize),
	}, nil
}

func (s *sevenZipArchive) Open(i int) (io.ReadCloser, error) {
	if err := checkIndex(i, len(s.r.File)); err != nil {
		return nil, err
	}
	f := s.r.File[i]

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s in archive: %w", f.Name, err)
	}
	return guardedReader{rc}, nil
}

func (s *sevenZipArchive) Close() error { return nil }
