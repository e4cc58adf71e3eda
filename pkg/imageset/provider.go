package imageset

import (
	"fmt"
	"path/filepath"

	gocache "github.com/patrickmn/go-cache"
	"github.com/spf13/afero"
)

// decoded is a process-wide cache of decoded images keyed by source path.
// Entries never expire; a pipeline references a bounded set of files and the
// point is to pay the decode cost once even when the same file backs several
// providers or runs.
var decoded = gocache.New(gocache.NoExpiration, 0)

// FlushDecodeCache empties the process-wide decoded-image cache.
func FlushDecodeCache() {
	decoded.Flush()
}

// Provider produces a named image on demand.
type Provider interface {
	// Name returns the image name the provider serves.
	Name() string
	// Provide returns the image, loading it if necessary.
	Provide() (*Image, error)
	// Release drops any image data the provider holds in memory.
	Release()
}

// FileProvider lazily loads an image from a file. The decode happens on the
// first Provide call; later calls return the memoized image.
type FileProvider struct {
	name     string
	pathName string
	fileName string
	fsys     afero.Fs

	img *Image
}

// NewFileProvider creates a provider serving name from the file at
// (pathName, fileName) on fsys.
func NewFileProvider(fsys afero.Fs, name, pathName, fileName string) *FileProvider {
	return &FileProvider{
		name:     name,
		pathName: pathName,
		fileName: fileName,
		fsys:     fsys,
	}
}

// Name returns the image name the provider serves.
func (p *FileProvider) Name() string { return p.name }

// PathName returns the directory part of the source.
func (p *FileProvider) PathName() string { return p.pathName }

// FileName returns the file part of the source.
func (p *FileProvider) FileName() string { return p.fileName }

// Provide loads the image on first use and memoizes it.
func (p *FileProvider) Provide() (*Image, error) {
	if p.img != nil {
		return p.img, nil
	}

	full := filepath.Join(p.pathName, p.fileName)
	if cached, found := decoded.Get(full); found {
		if img, ok := cached.(*Image); ok {
			p.img = img
			return img, nil
		}
	}

	pixels, err := DecodeFile(p.fsys, full)
	if err != nil {
		return nil, fmt.Errorf("image %q: %w", p.name, err)
	}

	img := &Image{Pixels: pixels, PathName: p.pathName, FileName: p.fileName}
	decoded.Set(full, img, gocache.NoExpiration)
	p.img = img
	return img, nil
}

// Release drops the memoized image. The shared decode cache keeps its entry,
// so a later Provide is still cheap.
func (p *FileProvider) Release() { p.img = nil }

// MemoryProvider serves an image a module already holds in memory.
type MemoryProvider struct {
	name string
	img  *Image
}

// NewMemoryProvider wraps an in-memory image under a name.
func NewMemoryProvider(name string, img *Image) *MemoryProvider {
	return &MemoryProvider{name: name, img: img}
}

// Name returns the image name the provider serves.
func (p *MemoryProvider) Name() string { return p.name }

// Provide returns the wrapped image.
func (p *MemoryProvider) Provide() (*Image, error) {
	if p.img == nil {
		return nil, fmt.Errorf("image %q was released", p.name)
	}
	return p.img, nil
}

// Release drops the wrapped image.
func (p *MemoryProvider) Release() { p.img = nil }
