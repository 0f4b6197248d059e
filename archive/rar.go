package archive

import (
	"io"

	"github.com/nwaples/rardecode/v2"
)

// rarWalker adapts rardecode's sequential reader (cbr)
type rarWalker struct {
	*rardecode.Reader
}

func newRARWalker(r io.Reader) (walker, error) {
	rr, err := rardecode.NewReader(r)
	if err != nil {
		return nil, err
	}
	return rarWalker{rr}, nil
}

func (w rarWalker) Next() (Entry, error) {
	header, err := w.Reader.Next()
	if err != nil {
		return Entry{}, err
	}

	e := Entry{
		Name:             []byte(header.Name),
		IsFile:           !header.IsDir,
		CompressedSize:   header.PackedSize,
		UncompressedSize: header.UnPackedSize,
	}
	// Solid entries share a compression stream with their predecessors
	if header.Solid {
		e.CompressedSize = -1
	}
	if header.UnKnownSize {
		e.UncompressedSize = -1
	}
	return e, nil
}

func openRAR(src io.ReaderAt, size int64) (Archive, error) {
	return openStream(FormatRAR, src, size, newRARWalker)
}
