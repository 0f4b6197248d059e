// Package archive provides a read-only, index-addressed view over the
// container formats comic book archives ship in (ZIP, 7z, RAR, tar and
// gzip-compressed tar).
//
// Every backend exposes the same [Archive] interface: an entry count,
// metadata lookup by index that never decompresses content, and a
// decompressing reader by index. Formats are detected from magic bytes,
// never from a file name.
package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// Magic bytes for format detection
var (
	magicZIP    = []byte{0x50, 0x4B, 0x03, 0x04}
	magicZIPEnd = []byte{0x50, 0x4B, 0x05, 0x06} // empty zip
	magic7z     = []byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}
	magicRAR    = []byte{0x52, 0x61, 0x72, 0x21, 0x1A, 0x07} // "Rar!\x1a\x07"
	magicTar    = []byte("ustar")
	magicGzip   = []byte{0x1F, 0x8B}
)

// offset of the ustar magic inside a tar header block
const tarMagicOffset = 257

// headerSize is how many leading bytes Open inspects for format detection.
const headerSize = tarMagicOffset + 8

// ErrEntryIndex is returned when an entry index is outside [0, Len()).
var ErrEntryIndex = errors.New("entry index out of range")

// ErrCorrupt is returned when a decoder gives up on malformed data in a
// way that it does not report as an error.
var ErrCorrupt = errors.New("corrupt archive data")

// Format identifies a container format.
type Format int

const (
	FormatUnknown Format = iota
	FormatZIP
	Format7z
	FormatRAR
	FormatTar
	FormatTarGzip
)

// String returns the display name of the format.
func (f Format) String() string {
	switch f {
	case FormatZIP:
		return "zip"
	case Format7z:
		return "7z"
	case FormatRAR:
		return "rar"
	case FormatTar:
		return "tar"
	case FormatTarGzip:
		return "tar.gz"
	default:
		return "unknown"
	}
}

// Entry is the metadata of a single archive member.
type Entry struct {
	// Name is the raw name bytes from the entry header. It is not
	// guaranteed to be valid UTF-8.
	Name []byte
	// IsFile reports whether the entry is a regular file rather than a directory.
	IsFile bool
	// CompressedSize is the stored size, or -1 when the format cannot
	// report it per entry (7z, solid RAR, gzip-compressed tar).
	CompressedSize int64
	// UncompressedSize is the size of the decompressed content.
	UncompressedSize int64
}

// Archive is an opened, read-only container.
type Archive interface {
	// Format returns the detected container format.
	Format() Format
	// Len returns the number of entries, including directories.
	Len() int
	// Stat returns the metadata of entry i without decompressing it.
	Stat(i int) (Entry, error)
	// Open returns a reader over the decompressed content of entry i.
	Open(i int) (io.ReadCloser, error)
	// Close releases the archive. It does not close the underlying source.
	Close() error
}

// Open detects the container format of src and returns an indexed view
// over it. Sources without a recognised leading signature are tried as
// ZIP, which locates its directory from the end of the file, so
// self-extracting or prefixed zips still open.
func Open(src io.ReaderAt, size int64) (a Archive, err error) {
	// Decoder libraries can panic on hostile headers
	defer func() {
		if r := recover(); r != nil {
			a, err = nil, fmt.Errorf("%w: %v", ErrCorrupt, r)
		}
	}()

	header := make([]byte, headerSize)
	n, err := src.ReadAt(header, 0)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read archive header: %w", err)
	}
	header = header[:n]

	switch DetectFormat(header) {
	case Format7z:
		return openSevenZip(src, size)
	case FormatRAR:
		return openRAR(src, size)
	case FormatTar:
		return openTar(src, size)
	case FormatTarGzip:
		return openTarGzip(src, size)
	default:
		return openZIP(src, size)
	}
}

// DetectFormat determines the container format from leading bytes.
func DetectFormat(header []byte) Format {
	if bytes.HasPrefix(header, magicZIP) || bytes.HasPrefix(header, magicZIPEnd) {
		return FormatZIP
	}
	if bytes.HasPrefix(header, magic7z) {
		return Format7z
	}
	if bytes.HasPrefix(header, magicRAR) {
		return FormatRAR
	}
	if bytes.HasPrefix(header, magicGzip) {
		return FormatTarGzip
	}
	if len(header) >= tarMagicOffset+len(magicTar) &&
		bytes.Equal(header[tarMagicOffset:tarMagicOffset+len(magicTar)], magicTar) {
		return FormatTar
	}
	return FormatUnknown
}

func checkIndex(i, n int) error {
	if i < 0 || i >= n {
		return fmt.Errorf("%w: %d (archive has %d entries)", ErrEntryIndex, i, n)
	}
	return nil
}
