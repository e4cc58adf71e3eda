// Package imageset holds the images a pipeline cycle works on and the
// providers that produce them.
//
// A Set is one cycle's view: named images, either added directly by a module
// or produced on demand by a Provider. The List spans the whole run and
// additionally carries shared providers, which expose an image to every
// cycle. File-backed providers decode lazily and memoize, so an image that
// is registered once and read in every cycle is decoded exactly once.
package imageset

import (
	"image"
	"path/filepath"
)

// Image is a decoded image together with its source bookkeeping.
type Image struct {
	// Pixels is the decoded image data.
	Pixels image.Image
	// PathName is the directory part of the source, empty for in-memory images.
	PathName string
	// FileName is the file part of the source, empty for in-memory images.
	FileName string
}

// FromMemory wraps pixel data produced by a module rather than read from disk.
func FromMemory(pixels image.Image) *Image {
	return &Image{Pixels: pixels}
}

// SourcePath returns the joined source path, or "" for in-memory images.
func (i *Image) SourcePath() string {
	if i.FileName == "" {
		return ""
	}
	return filepath.Join(i.PathName, i.FileName)
}

// Width returns the pixel width, 0 when no pixel data is present.
func (i *Image) Width() int {
	if i.Pixels == nil {
		return 0
	}
	return i.Pixels.Bounds().Dx()
}

// Height returns the pixel height, 0 when no pixel data is present.
func (i *Image) Height() int {
	if i.Pixels == nil {
		return 0
	}
	return i.Pixels.Bounds().Dy()
}
