package thumbnail

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		input   string
		want    Size
		wantErr bool
	}{
		{"128", Size{128, 128}, false},
		{"64x32", Size{64, 32}, false},
		{"0x10", Size{0, 10}, false},
		{"0", Size{0, 0}, false},
		{"4294967295", Size{4294967295, 4294967295}, false},
		{"4294967296", Size{}, true},
		{"", Size{}, true},
		{"x", Size{}, true},
		{"64x", Size{}, true},
		{"x64", Size{}, true},
		{"-1", Size{}, true},
		{"64X32", Size{}, true},
		{"64x32x16", Size{}, true},
		{" 64", Size{}, true},
		{"abc", Size{}, true},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseSize(tc.input)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSize_String(t *testing.T) {
	assert.Equal(t, "128x128", DefaultSize().String())
	assert.Equal(t, "64x32", Size{64, 32}.String())
}

func TestSize_Flag(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	size := DefaultSize()
	fs.Var(&size, "size", "thumbnail size")

	require.NoError(t, fs.Parse([]string{"--size", "300x200"}))
	assert.Equal(t, Size{300, 200}, size)

	err := fs.Parse([]string{"--size", "big"})
	require.Error(t, err)
	assert.Equal(t, Size{300, 200}, size, "a failed parse leaves the value untouched")
}

func TestSize_Text(t *testing.T) {
	var s Size
	require.NoError(t, s.UnmarshalText([]byte("48")))
	assert.Equal(t, Size{48, 48}, s)

	out, err := s.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "48x48", string(out))
}

func TestSize_Validate(t *testing.T) {
	require.NoError(t, DefaultSize().Validate())
	require.NoError(t, Size{1, 1}.Validate())

	for _, s := range []Size{{0, 64}, {64, 0}, {0, 0}, {-1, 10}} {
		err := s.Validate()
		require.ErrorIs(t, err, ErrEmptySize, s.String())
		assert.Contains(t, err.Error(), s.String())
	}
}
