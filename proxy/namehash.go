package proxy

import (
	_ "crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/opencontainers/go-digest"
)

// NameHash is a 64-bit fingerprint of the file names in a catalog.
type NameHash uint64

// FromKatalog hashes the base names of every regular file below dir.
// Directories are walked in file name order and symlinks are not followed.
// Unreadable entries are skipped, so a missing directory hashes the same
// as an empty one.
func FromKatalog(dir string) NameHash {
	d := digest.Canonical.Digester()
	h := d.Hash()

	filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		io.WriteString(h, entry.Name())
		return nil
	})

	return foldSum(h.Sum(nil))
}

// foldSum adds up the sum as little-endian 64-bit words, wrapping on overflow
func foldSum(sum []byte) NameHash {
	var acc uint64
	for len(sum) >= 8 {
		acc += binary.LittleEndian.Uint64(sum[:8])
		sum = sum[8:]
	}
	return NameHash(acc)
}

// String returns the hex encoding of the hash's little-endian bytes.
func (n NameHash) String() string {
	return hex.EncodeToString(binary.LittleEndian.AppendUint64(nil, uint64(n)))
}

// MarshalText implements encoding.TextMarshaler.
func (n NameHash) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (n *NameHash) UnmarshalText(text []byte) error {
	b, err := hex.DecodeString(string(text))
	if err != nil {
		return fmt.Errorf("invalid name hash %q: %w", text, err)
	}
	if len(b) != 8 {
		return fmt.Errorf("invalid name hash %q: want 8 bytes, got %d", text, len(b))
	}
	*n = NameHash(binary.LittleEndian.Uint64(b))
	return nil
}
