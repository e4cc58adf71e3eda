package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/menta2k/image-pipeline/pkg/imageset"
	"github.com/menta2k/image-pipeline/pkg/log"
	"github.com/menta2k/image-pipeline/pkg/measure"
)

// FileVersion is the pipeline file format version this package reads and
// writes.
const FileVersion = 1

// Pipeline is an ordered list of configured modules.
type Pipeline struct {
	modules []Module
}

// New creates an empty pipeline.
func New() *Pipeline {
	return &Pipeline{}
}

// Add appends a module to the pipeline.
func (p *Pipeline) Add(m Module) {
	p.modules = append(p.modules, m)
}

// Modules returns the pipeline's modules in execution order.
func (p *Pipeline) Modules() []Module {
	return p.modules
}

type pipelineFile struct {
	Version int           `yaml:"version"`
	Modules []moduleEntry `yaml:"modules"`
}

type moduleEntry struct {
	Module   string   `yaml:"module"`
	Revision int      `yaml:"revision"`
	Legacy   bool     `yaml:"legacy,omitempty"`
	Settings []string `yaml:"settings"`
}

// Load reads a pipeline file, instantiating each module through the registry
// and upgrading settings stored at older revisions before applying them.
func Load(r io.Reader, reg *Registry) (*Pipeline, error) {
	var file pipelineFile
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to decode pipeline: %w", err)
	}
	if file.Version != FileVersion {
		return nil, fmt.Errorf("unsupported pipeline version %d (want %d)", file.Version, FileVersion)
	}

	p := New()
	for i, entry := range file.Modules {
		m, err := reg.New(entry.Module)
		if err != nil {
			return nil, fmt.Errorf("module %d: %w", i+1, err)
		}

		values, rev, legacy := entry.Settings, entry.Revision, entry.Legacy
		for legacy || rev != m.Revision() {
			up, ok := m.(Upgrader)
			if !ok {
				return nil, fmt.Errorf("module %s stored at revision %d, current is %d and no upgrade path exists", m.Name(), rev, m.Revision())
			}
			newValues, newRev, newLegacy, err := up.UpgradeSettings(values, rev, legacy)
			if err != nil {
				return nil, fmt.Errorf("module %s: upgrading settings from revision %d: %w", m.Name(), rev, err)
			}
			if newRev == rev && newLegacy == legacy {
				return nil, fmt.Errorf("module %s: settings upgrade stalled at revision %d", m.Name(), rev)
			}
			if legacy && !newLegacy {
				log.Info("migrated legacy module settings",
					"module", m.Name(),
					"from_revision", rev,
					"to_revision", newRev)
			}
			values, rev, legacy = newValues, newRev, newLegacy
		}

		if err := ApplySettings(m, values); err != nil {
			return nil, err
		}
		p.Add(m)
	}
	return p, nil
}

// LoadFile reads a pipeline file from the filesystem.
func LoadFile(fsys afero.Fs, path string, reg *Registry) (*Pipeline, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pipeline file: %w", err)
	}
	defer f.Close()

	p, err := Load(f, reg)
	if err != nil {
		return nil, fmt.Errorf("pipeline %s: %w", path, err)
	}
	return p, nil
}

// Save writes the pipeline in the current file format.
func (p *Pipeline) Save(w io.Writer) error {
	file := pipelineFile{Version: FileVersion}
	for _, m := range p.modules {
		file.Modules = append(file.Modules, moduleEntry{
			Module:   m.Name(),
			Revision: m.Revision(),
			Settings: SettingsText(m),
		})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(file); err != nil {
		return fmt.Errorf("failed to encode pipeline: %w", err)
	}
	return enc.Close()
}

// SaveFile writes the pipeline to the filesystem.
func (p *Pipeline) SaveFile(fsys afero.Fs, path string) error {
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create pipeline file: %w", err)
	}
	defer f.Close()

	return p.Save(f)
}

// RunConfig adjusts how a pipeline run executes.
type RunConfig struct {
	// FS is the filesystem modules run against. Defaults to the OS
	// filesystem.
	FS afero.Fs
	// Frame receives module display tables. Nil runs headless.
	Frame *Frame
	// Cycles forces the cycle count. Zero derives it from the image-set
	// list built during PrepareRun, falling back to a single cycle.
	Cycles int
}

// Run executes the pipeline headless against the OS filesystem.
func (p *Pipeline) Run(ctx context.Context) (*measure.Measurements, error) {
	return p.RunWithConfig(ctx, RunConfig{})
}

// RunWithConfig executes the pipeline: every Preparer gets a PrepareRun call,
// then each cycle runs the modules in order. Modules that run once are
// skipped after the first cycle. The returned measurements hold whatever was
// collected up to the first error.
func (p *Pipeline) RunWithConfig(ctx context.Context, cfg RunConfig) (*measure.Measurements, error) {
	fsys := cfg.FS
	if fsys == nil {
		fsys = afero.NewOsFs()
	}

	ws := &Workspace{
		Pipeline:     p,
		List:         imageset.NewList(),
		Measurements: measure.New(),
		FS:           fsys,
		Frame:        cfg.Frame,
		Ctx:          ctx,
	}

	for _, m := range p.modules {
		prep, ok := m.(Preparer)
		if !ok {
			continue
		}
		ws.Module = m
		if err := prep.PrepareRun(ws); err != nil {
			return ws.Measurements, fmt.Errorf("module %s: prepare failed: %w", m.Name(), err)
		}
	}

	cycles := cfg.Cycles
	if cycles <= 0 {
		cycles = ws.List.Count()
	}
	if cycles == 0 {
		cycles = 1
	}
	log.Info("starting pipeline run", "modules", len(p.modules), "cycles", cycles)

	start := time.Now()
	for n := 1; n <= cycles; n++ {
		if err := ctx.Err(); err != nil {
			return ws.Measurements, fmt.Errorf("pipeline cancelled at cycle %d: %w", n, err)
		}

		ws.Measurements.SetImageSetNumber(n)
		ws.Set = ws.List.Set(n)

		for _, m := range p.modules {
			if n > 1 && runsOnce(m) {
				continue
			}
			ws.Module = m

			moduleStart := time.Now()
			if err := m.Run(ws); err != nil {
				return ws.Measurements, fmt.Errorf("module %s (cycle %d): %w", m.Name(), n, err)
			}
			log.Debug("module finished",
				"module", m.Name(),
				"cycle", n,
				"elapsed", time.Since(moduleStart))
		}
	}
	log.Info("pipeline run complete", "cycles", cycles, "elapsed", time.Since(start))

	return ws.Measurements, nil
}
