package thumbnail

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// DefaultMaxDecodedSize caps the pixel memory of a decoded image (512 MiB).
const DefaultMaxDecodedSize = 512 << 20

// bytesPerPixel is the RGBA footprint used to estimate decoded size
const bytesPerPixel = 4

// ErrImageTooLarge is returned for images whose declared dimensions would
// decode to more than the allowed size.
var ErrImageTooLarge = errors.New("image dimensions exceed decode limit")

// ErrCorruptImage is returned when a decoder panics on malformed data.
var ErrCorruptImage = errors.New("corrupt image data")

// decoders maps sniffed content types to their decoder. Importing these
// packages also registers them with image.Decode for the magic fallback.
var decoders = map[string]func(io.Reader) (image.Image, error){
	"image/jpeg": jpeg.Decode,
	"image/png":  png.Decode,
	"image/gif":  gif.Decode,
	"image/webp": webp.Decode,
	"image/bmp":  bmp.Decode,
	"image/tiff": tiff.Decode,
}

// Decode decodes an in-memory image. The format is guessed from the
// content, never from a file name; when the guess names no known decoder
// or that decoder fails, image.Decode's magic-number detection is tried.
// Images declaring more than DefaultMaxDecodedSize of pixels are rejected
// before any pixel data is allocated.
func Decode(data []byte) (image.Image, error) {
	return decodeLimited(data, DefaultMaxDecodedSize)
}

func decodeLimited(data []byte, maxSize int64) (img image.Image, err error) {
	// The stdlib decoders can panic on hostile headers
	defer func() {
		if r := recover(); r != nil {
			img, err = nil, fmt.Errorf("%w: %v", ErrCorruptImage, r)
		}
	}()

	if err := checkDimensions(data, maxSize); err != nil {
		return nil, err
	}

	if decode := sniffDecoder(data); decode != nil {
		if img, err := decode(bytes.NewReader(data)); err == nil {
			return img, nil
		}
	}

	img, _, err = image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// DecodeFile reads and decodes an image file, reading at most maxSize bytes.
func DecodeFile(path string, maxSize int64) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	if maxSize <= 0 {
		maxSize = DefaultMaxEntrySize
	}
	data, err := limitedRead(f, maxSize)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return Decode(data)
}

// checkDimensions rejects images whose header declares more pixels than
// maxSize allows. Headers that cannot be read are left to the decoder.
func checkDimensions(data []byte, maxSize int64) error {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	if cfg.Width < 0 || cfg.Height < 0 {
		return fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}

	pixels := uint64(cfg.Width) * uint64(cfg.Height)
	if pixels > uint64(maxSize)/bytesPerPixel {
		return fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}
	return nil
}

// sniffDecoder walks the detected type and its parents (APNG is a PNG)
// looking for a registered decoder.
func sniffDecoder(data []byte) func(io.Reader) (image.Image, error) {
	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		if decode, ok := decoders[m.String()]; ok {
			return decode
		}
	}
	return nil
}
