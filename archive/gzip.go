package archive

import (
	"archive/tar"
	"io"

	"github.com/klauspost/compress/gzip"
)

// tgzWalker reads a gzip-compressed tar. The compression covers the whole
// stream, so entries have no compressed size of their own.
type tgzWalker struct {
	tarWalker
}

func newTgzWalker(r io.Reader) (walker, error) {
	gr, err := gzip.NewReader(r)
	if err != nil {
		return nil, err
	}
	return tgzWalker{tarWalker{tar.NewReader(gr)}}, nil
}

func (w tgzWalker) Next() (Entry, error) {
	e, err := w.tarWalker.Next()
	if err != nil {
		return Entry{}, err
	}
	e.CompressedSize = -1
	return e, nil
}

func openTarGzip(src io.ReaderAt, size int64) (Archive, error) {
	return openStream(FormatTarGzip, src, size, newTgzWalker)
}
