package imageset

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/spf13/afero"

	// Register the decoders for the formats the pipeline accepts.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// EncodeOptions carries the lossy-format knobs for Encode.
type EncodeOptions struct {
	// Quality applies to jpg and webp output (1-100).
	Quality int
	// Lossless switches webp output to lossless mode.
	Lossless bool
}

// Decode reads an image from r, trying the registered decoders first and
// falling back to the dedicated WebP decoder.
func Decode(r io.Reader) (image.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	if img, err := webp.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	return nil, fmt.Errorf("image: unknown or unsupported format")
}

// DecodeFile reads and decodes the image at path on fsys.
func DecodeFile(fsys afero.Fs, path string) (image.Image, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer f.Close()

	img, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return img, nil
}

// Encode writes img to w in the named format ("jpg", "png", "webp", "tif",
// "bmp" or "gif").
func Encode(w io.Writer, img image.Image, format string, opts EncodeOptions) error {
	quality := opts.Quality
	if quality <= 0 || quality > 100 {
		quality = 90
	}

	switch strings.ToLower(format) {
	case "webp":
		return webp.Encode(w, img, &webp.Options{Lossless: opts.Lossless, Quality: float32(quality)})
	case "jpg", "jpeg":
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(quality))
	case "png":
		return imaging.Encode(w, img, imaging.PNG)
	case "tif", "tiff":
		return imaging.Encode(w, img, imaging.TIFF)
	case "bmp":
		return imaging.Encode(w, img, imaging.BMP)
	case "gif":
		return imaging.Encode(w, img, imaging.GIF)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// EncodeFile encodes img into path on fsys, deriving nothing from the
// extension; the caller names the format.
func EncodeFile(fsys afero.Fs, path string, img image.Image, format string, opts EncodeOptions) error {
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	if err := Encode(f, img, format, opts); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return nil
}
