package proxy

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFiles creates each relative path under dir with a little content
func writeFiles(t *testing.T, dir string, paths ...string) {
	t.Helper()
	for _, p := range paths {
		full := filepath.Join(dir, p)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(p), 0644))
	}
}

func TestContents_WriteRead(t *testing.T) {
	h := NameHash(0x0123456789abcdef)
	c := &Contents{Katalog: "/comics/Series", NameHash: &h}

	var buf bytes.Buffer
	require.NoError(t, c.Write(&buf))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "#katalog-proxy\n"))
	assert.Contains(t, out, "katalog = ")
	assert.Contains(t, out, "efcdab8967452301")

	got, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, c.Katalog, got.Katalog)
	require.NotNil(t, got.NameHash)
	assert.Equal(t, h, *got.NameHash)
}

func TestContents_OmitsMissingHash(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&Contents{Katalog: "Series"}).Write(&buf))
	assert.NotContains(t, buf.String(), "name_hash")

	got, err := Read(&buf)
	require.NoError(t, err)
	assert.Nil(t, got.NameHash)
}

func TestRead(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"double quoted", "#katalog-proxy\nkatalog = \"/a/b\"\nname_hash = \"7dd15ee750001d01\"\n", nil},
		{"no header", "katalog = '/a/b'\n", nil},
		{"extra keys ignored", "katalog = '/a/b'\nowner = 'me'\n", nil},
		{"missing katalog", "#katalog-proxy\nname_hash = \"7dd15ee750001d01\"\n", ErrMissingKatalog},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Read(strings.NewReader(tc.input))
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "/a/b", got.Katalog)
		})
	}
}

func TestRead_Invalid(t *testing.T) {
	for name, input := range map[string]string{
		"not toml":       "katalog = ",
		"short hash":     "katalog = 'x'\nname_hash = '0102'\n",
		"non-hex hash":   "katalog = 'x'\nname_hash = 'zzzzzzzzzzzzzzzz'\n",
		"katalog number": "katalog = 3\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Read(strings.NewReader(input))
			assert.Error(t, err)
		})
	}
}

func TestContents_WriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Series.katalog-proxy")

	c := &Contents{Katalog: "Series"}
	require.NoError(t, c.WriteFile(path))

	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Series", got.Katalog)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestContents_KatalogPath(t *testing.T) {
	c := &Contents{Katalog: "Series"}
	assert.Equal(t, filepath.Join("/home/u/comics", "Series"), c.KatalogPath("/home/u/comics/Series.proxy"))
	assert.Equal(t, "Series", c.KatalogPath("-"))

	abs := &Contents{Katalog: "/srv/comics/Series"}
	assert.Equal(t, "/srv/comics/Series", abs.KatalogPath("/home/u/x.proxy"))
}

func TestFromKatalog(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "b/c.cbz", "a.cbz")

	// sha256("a.cbz" + "c.cbz") folded as four little-endian words
	assert.Equal(t, "7dd15ee750001d01", FromKatalog(dir).String())
}

func TestFromKatalog_Empty(t *testing.T) {
	empty := FromKatalog(t.TempDir())
	assert.Equal(t, "48f0940b0f5a22db", empty.String())
	assert.Equal(t, empty, FromKatalog(filepath.Join(t.TempDir(), "missing")))
}

func TestFromKatalog_IgnoresContentAndDirectories(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "b/c.cbz", "a.cbz")
	before := FromKatalog(dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.cbz"), []byte("changed"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "empty"), 0755))
	assert.Equal(t, before, FromKatalog(dir))

	writeFiles(t, dir, "d.cbz")
	assert.NotEqual(t, before, FromKatalog(dir))
}

func TestFromKatalog_SkipsSymlinks(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "b/c.cbz", "a.cbz")
	before := FromKatalog(dir)

	if err := os.Symlink(filepath.Join(dir, "a.cbz"), filepath.Join(dir, "link.cbz")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
	assert.Equal(t, before, FromKatalog(dir))
}

func TestNameHash_Text(t *testing.T) {
	var h NameHash
	require.NoError(t, h.UnmarshalText([]byte("0100000000000000")))
	assert.Equal(t, NameHash(1), h)

	text, err := NameHash(0xff).MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "ff00000000000000", string(text))

	assert.Error(t, h.UnmarshalText([]byte("01")))
	assert.Error(t, h.UnmarshalText([]byte("xyz")))
}

func TestContents_Refresh(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.cbz")
	current := FromKatalog(dir)
	stale := current + 1

	tests := []struct {
		name        string
		stored      *NameHash
		skip        TriState
		wantChanged bool
		wantHash    *NameHash
	}{
		{"auto without hash stays without", nil, Auto, false, nil},
		{"auto with stale hash updates", &stale, Auto, true, &current},
		{"auto with current hash", &current, Auto, false, &current},
		{"never adds a hash", nil, Never, true, &current},
		{"always drops the hash", &stale, Always, false, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := &Contents{Katalog: dir}
			if tc.stored != nil {
				v := *tc.stored
				c.NameHash = &v
			}

			assert.Equal(t, tc.wantChanged, c.Refresh(dir, tc.skip))
			assert.Equal(t, tc.wantHash, c.NameHash)
		})
	}
}

func TestTriState(t *testing.T) {
	var ts TriState
	assert.Equal(t, "auto", ts.String())

	require.NoError(t, ts.Set("always"))
	assert.Equal(t, Always, ts)
	assert.True(t, ts.Resolve(func() bool { return false }))

	require.NoError(t, ts.Set("never"))
	assert.False(t, ts.Resolve(func() bool { return true }))

	require.NoError(t, ts.Set("auto"))
	assert.True(t, ts.Resolve(func() bool { return true }))

	assert.Error(t, ts.Set("sometimes"))
}

func TestOpen(t *testing.T) {
	var gotName string
	var gotArgs []string
	orig := startDetached
	startDetached = func(name string, args ...string) error {
		gotName, gotArgs = name, args
		return nil
	}
	t.Cleanup(func() { startDetached = orig })

	require.NoError(t, Open("/comics/Series"))
	assert.NotEmpty(t, gotName)
	assert.Equal(t, "/comics/Series", gotArgs[len(gotArgs)-1])
}

func TestOpenerCommand(t *testing.T) {
	name, args := openerCommand("linux", "/x")
	assert.Equal(t, "xdg-open", name)
	assert.Equal(t, []string{"/x"}, args)

	name, _ = openerCommand("darwin", "/x")
	assert.Equal(t, "open", name)

	name, args = openerCommand("windows", `C:\x`)
	assert.Equal(t, "cmd", name)
	assert.Equal(t, []string{"/c", "start", "", `C:\x`}, args)
}
