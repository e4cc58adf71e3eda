// Package imagepipeline runs image-processing pipelines built from small
// configurable modules.
//
// A pipeline is an ordered list of modules, each declaring typed settings
// that are stored as text in a YAML pipeline file. The engine drives the
// module lifecycle: settings are applied at load (migrating old revisions),
// preparing modules build the list of image sets (cycles), then every cycle
// runs the modules in order. Images move between modules as named entries in
// the cycle's image set; loading modules register lazy providers so pixels
// are decoded only when a downstream module asks for them.
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"log"
//
//		imagepipeline "github.com/menta2k/image-pipeline"
//		"github.com/menta2k/image-pipeline/pkg/pipeline"
//	)
//
//	func main() {
//		engine := imagepipeline.New()
//
//		p, err := engine.LoadPipelineFile(engine.FS(), "pipeline.yaml")
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		measurements, err := engine.Run(context.Background(), p, pipeline.RunConfig{})
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		measurements.SetImageSetNumber(1)
//		for _, feature := range measurements.Features() {
//			value, _ := measurements.GetString(feature)
//			log.Printf("%s = %s", feature, value)
//		}
//	}
//
// The package consists of the following components:
//
//  1. Pipeline engine (pkg/pipeline): module lifecycle, registry, workspace,
//     YAML pipeline files and the cycle loop
//  2. Builtin modules (pkg/modules): LoadSingleImage, LoadImages, SaveImages,
//     Crop, Resize and DescribeImage
//  3. Image sets (pkg/imageset): named images, lazy file providers and the
//     codec for jpg/png/webp/tiff/bmp/gif
//  4. Measurements (pkg/measure): per-cycle features and metadata token
//     substitution in file-name patterns
//  5. Vision backends (pkg/vision): Ollama and llama.cpp clients used by
//     DescribeImage
package imagepipeline

import (
	"context"
	"io"

	"github.com/spf13/afero"

	"github.com/menta2k/image-pipeline/pkg/measure"
	"github.com/menta2k/image-pipeline/pkg/modules"
	"github.com/menta2k/image-pipeline/pkg/pipeline"
)

// Version of the image pipeline library
const Version = "1.0.0"

// Engine ties a module registry to pipeline loading and running.
type Engine struct {
	registry *pipeline.Registry
	fsys     afero.Fs
}

// New creates an engine with every builtin module registered, working
// against the OS filesystem.
func New() *Engine {
	return NewWithFS(afero.NewOsFs())
}

// NewWithFS creates an engine working against the given filesystem; tests
// pass afero.NewMemMapFs().
func NewWithFS(fsys afero.Fs) *Engine {
	reg := pipeline.NewRegistry()
	if err := modules.RegisterBuiltins(reg); err != nil {
		// Registration only fails on duplicate names; the builtin list
		// has none.
		panic(err)
	}
	return &Engine{registry: reg, fsys: fsys}
}

// FS returns the engine's filesystem.
func (e *Engine) FS() afero.Fs { return e.fsys }

// Registry exposes the module registry, e.g. to register project-specific
// modules next to the builtins.
func (e *Engine) Registry() *pipeline.Registry { return e.registry }

// RegisterModule adds a custom module factory.
func (e *Engine) RegisterModule(f pipeline.Factory) error {
	return e.registry.Register(f)
}

// ModuleNames returns the registered module names, sorted.
func (e *Engine) ModuleNames() []string { return e.registry.Names() }

// NewModule instantiates a registered module with default settings.
func (e *Engine) NewModule(name string) (pipeline.Module, error) {
	return e.registry.New(name)
}

// LoadPipeline reads a pipeline definition.
func (e *Engine) LoadPipeline(r io.Reader) (*pipeline.Pipeline, error) {
	return pipeline.Load(r, e.registry)
}

// LoadPipelineFile reads a pipeline definition from a file.
func (e *Engine) LoadPipelineFile(fsys afero.Fs, path string) (*pipeline.Pipeline, error) {
	return pipeline.LoadFile(fsys, path, e.registry)
}

// Run executes a pipeline. An unset RunConfig.FS defaults to the engine's
// filesystem.
func (e *Engine) Run(ctx context.Context, p *pipeline.Pipeline, cfg pipeline.RunConfig) (*measure.Measurements, error) {
	if cfg.FS == nil {
		cfg.FS = e.fsys
	}
	return p.RunWithConfig(ctx, cfg)
}

// RunFile loads and executes a pipeline file in one call.
func (e *Engine) RunFile(ctx context.Context, path string, cfg pipeline.RunConfig) (*measure.Measurements, error) {
	p, err := e.LoadPipelineFile(e.fsys, path)
	if err != nil {
		return nil, err
	}
	return e.Run(ctx, p, cfg)
}

// GetVersion returns the library version.
func GetVersion() string {
	return Version
}
