package pipeline

import (
	"context"

	"github.com/spf13/afero"

	"github.com/menta2k/image-pipeline/pkg/imageset"
	"github.com/menta2k/image-pipeline/pkg/measure"
)

// Workspace carries everything a module touches during one cycle.
type Workspace struct {
	// Pipeline is the pipeline being run.
	Pipeline *Pipeline
	// Module is the module currently executing.
	Module Module
	// Set is the image set for the current cycle. It is nil during
	// PrepareRun.
	Set *imageset.Set
	// List holds every image set of the run plus the shared providers.
	List *imageset.List
	// Measurements collects per-cycle and per-run results.
	Measurements *measure.Measurements
	// FS is the filesystem modules read images from and write images to.
	FS afero.Fs
	// Frame receives display tables when the run wants them; nil for
	// headless runs.
	Frame *Frame
	// Ctx is the run's context. Modules doing network or otherwise slow
	// work pass it on.
	Ctx context.Context
}

// Context returns the run's context, never nil.
func (ws *Workspace) Context() context.Context {
	if ws.Ctx == nil {
		return context.Background()
	}
	return ws.Ctx
}

// Table is one module's display output for a cycle: a titled list of
// name/value rows.
type Table struct {
	Title string
	Rows  [][2]string
}

// Frame collects display tables emitted by modules. A nil Frame drops them,
// so modules can post unconditionally via Workspace.Display.
type Frame struct {
	tables []Table
}

// NewFrame creates an empty table collector.
func NewFrame() *Frame {
	return &Frame{}
}

// Add appends a table to the frame.
func (f *Frame) Add(t Table) {
	f.tables = append(f.tables, t)
}

// Tables returns the collected tables in arrival order.
func (f *Frame) Tables() []Table {
	return f.tables
}

// Display posts a table to the workspace frame, if one is attached.
func (ws *Workspace) Display(title string, rows [][2]string) {
	if ws.Frame == nil {
		return
	}
	ws.Frame.Add(Table{Title: title, Rows: rows})
}
