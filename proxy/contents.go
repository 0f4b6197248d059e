// Package proxy reads and writes katalog proxy files.
//
// A proxy is a small TOML sidecar that stands in for a catalog directory
// (a folder of comic archives). Opening the proxy opens the catalog in the
// desktop file manager, and the proxy can carry a hash of the catalog's
// file names so that tools notice when its contents change.
package proxy

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Header is the first line of every proxy file.
const Header = "#katalog-proxy\n"

// ErrMissingKatalog is returned when a proxy file names no catalog
var ErrMissingKatalog = errors.New("proxy file has no katalog path")

// Contents is the decoded body of a proxy file.
type Contents struct {
	// Katalog is the catalog directory, absolute or relative to the proxy file.
	Katalog string `toml:"katalog"`
	// NameHash is the hash of file names in the catalog, if recorded.
	NameHash *NameHash `toml:"name_hash,omitempty"`
}

// Write writes the header line followed by the TOML body.
func (c *Contents) Write(w io.Writer) error {
	body, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal proxy: %w", err)
	}

	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(Header); err != nil {
		return err
	}
	if _, err := bw.Write(body); err != nil {
		return err
	}
	return bw.Flush()
}

// Read parses a proxy file. The header line is a TOML comment and is not
// required when reading.
func Read(r io.Reader) (*Contents, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read proxy: %w", err)
	}

	var c Contents
	if err := toml.NewDecoder(bytes.NewReader(data)).Decode(&c); err != nil {
		return nil, fmt.Errorf("failed to parse proxy: %w", err)
	}
	if c.Katalog == "" {
		return nil, ErrMissingKatalog
	}
	return &c, nil
}

// ReadFile reads the proxy file at path.
func ReadFile(path string) (*Contents, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

// WriteFile writes the proxy to path atomically.
func (c *Contents) WriteFile(path string) error {
	var buf bytes.Buffer
	if err := c.Write(&buf); err != nil {
		return err
	}

	tempFile := path + ".tmp"
	if err := os.WriteFile(tempFile, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	// Rename temp file to target (atomic on most filesystems)
	if err := os.Rename(tempFile, path); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// KatalogPath resolves the catalog path against the directory holding the
// proxy file. Absolute paths are returned unchanged.
func (c *Contents) KatalogPath(proxyPath string) string {
	if filepath.IsAbs(c.Katalog) || proxyPath == "" || proxyPath == "-" {
		return c.Katalog
	}
	return filepath.Join(filepath.Dir(proxyPath), c.Katalog)
}

// Refresh recomputes the name hash of the catalog at dir according to
// skip. In auto mode a hash is maintained only when one is already
// recorded. A skipped hash is cleared. The result reports whether the
// stored hash changed and the file should be rewritten.
func (c *Contents) Refresh(dir string, skip TriState) bool {
	if skip.Resolve(func() bool { return c.NameHash == nil }) {
		c.NameHash = nil
		return false
	}

	h := FromKatalog(dir)
	if c.NameHash != nil && *c.NameHash == h {
		return false
	}
	c.NameHash = &h
	return true
}
