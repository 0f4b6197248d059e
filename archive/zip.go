package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zstd"
)

// zipArchive reads ZIP (cbz) archives through the central directory
type zipArchive struct {
	zr *zip.Reader
}

func openZIP(src io.ReaderAt, size int64) (Archive, error) {
	zr, err := zip.NewReader(src, size)
	if err != nil {
		// Insecure names are irrelevant here, nothing is written to disk
		if !errors.Is(err, zip.ErrInsecurePath) || zr == nil {
			return nil, fmt.Errorf("failed to open zip: %w", err)
		}
	}

	// Decompressors are registered on this reader only, not process-wide
	zr.RegisterDecompressor(zip.Deflate, newFlateReader)
	zr.RegisterDecompressor(zstd.ZipMethodWinZip, zstd.ZipDecompressor())

	return &zipArchive{zr: zr}, nil
}

func newFlateReader(r io.Reader) io.ReadCloser {
	return flate.NewReader(r)
}

func (z *zipArchive) Format() Format { return FormatZIP }

func (z *zipArchive) Len() int { return len(z.zr.File) }

// Stat validates the entry's local header, the same record Open needs,
// so a damaged entry is reported here rather than mid-read.
func (z *zipArchive) Stat(i int) (Entry, error) {
	if err := checkIndex(i, len(z.zr.File)); err != nil {
		return Entry{}, err
	}
	f := z.zr.File[i]

	if _, err := f.DataOffset(); err != nil {
		return Entry{}, fmt.Errorf("failed to read local header of %q: %w", f.Name, err)
	}

	return Entry{
		Name:             []byte(f.Name),
		IsFile:           !f.FileInfo().IsDir(),
		CompressedSize:   int64(f.CompressedSize64),
		UncompressedSize: int64(f.UncompressedSize64),
	}, nil
}

func (z *zipArchive) Open(i int) (io.ReadCloser, error) {
	if err := checkIndex(i, len(z.zr.File)); err != nil {
		return nil, err
	}
	f := z.zr.File[i]

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %q in archive: %w", f.Name, err)
	}
	return rc, nil
}

func (z *zipArchive) Close() error { return nil }
