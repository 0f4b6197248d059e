package archive

import (
	"archive/tar"
	"io"
)

// tarWalker adapts archive/tar (cbt). Tar does not compress, so the
// stored size is the content size.
type tarWalker struct {
	*tar.Reader
}

func newTarWalker(r io.Reader) (walker, error) {
	return tarWalker{tar.NewReader(r)}, nil
}

func (w tarWalker) Next() (Entry, error) {
	header, err := w.Reader.Next()
	if err != nil {
		return Entry{}, err
	}

	return Entry{
		Name:             []byte(header.Name),
		IsFile:           header.Typeflag == tar.TypeReg,
		CompressedSize:   header.Size,
		UncompressedSize: header.Size,
	}, nil
}

func openTar(src io.ReaderAt, size int64) (Archive, error) {
	return openStream(FormatTar, src, size, newTarWalker)
}
