// Package pipeline runs an ordered list of modules over a sequence of image
// sets (cycles).
//
// A module declares its settings, the engine drives its lifecycle: settings
// are applied from the stored pipeline file (upgrading old revisions first),
// PrepareRun builds the image-set list, then Run executes once per cycle,
// or once per run for one-shot modules. Everything a module touches during a
// cycle travels in the Workspace.
package pipeline

import (
	"fmt"

	"github.com/menta2k/image-pipeline/pkg/setting"
)

// Module is implemented by every pipeline module.
type Module interface {
	// Name returns the module identifier used in pipeline files.
	Name() string
	// Category groups the module in a settings UI.
	Category() string
	// Revision is the current settings-layout revision.
	Revision() int
	// Settings returns the stored settings in pipeline-file order.
	Settings() []setting.Setting
	// VisibleSettings returns the settings a UI shows, in display order.
	VisibleSettings() []setting.Setting
	// PrepareSettings adjusts repeated-entry counts so that Settings()
	// matches len(values) before the values are applied.
	PrepareSettings(values []string) error
	// Run executes the module for the workspace's current cycle.
	Run(ws *Workspace) error
}

// Preparer is implemented by modules that build the image-set list before
// any cycle runs.
type Preparer interface {
	PrepareRun(ws *Workspace) error
}

// OneShot is implemented by modules that run on the first cycle only.
type OneShot interface {
	RunsOnce() bool
}

// Upgrader is implemented by modules that can migrate settings stored at an
// older revision. The engine calls it repeatedly until the returned revision
// matches Module.Revision and the legacy flag clears.
type Upgrader interface {
	UpgradeSettings(values []string, revision int, legacy bool) ([]string, int, bool, error)
}

// ApplySettings sizes the module's repeated entries for the value count and
// then applies each value in Settings order.
func ApplySettings(m Module, values []string) error {
	if err := m.PrepareSettings(values); err != nil {
		return fmt.Errorf("module %s: %w", m.Name(), err)
	}

	settings := m.Settings()
	if len(settings) != len(values) {
		return fmt.Errorf("module %s expects %d settings, pipeline holds %d", m.Name(), len(settings), len(values))
	}
	for i, s := range settings {
		if err := s.SetText(values[i]); err != nil {
			return fmt.Errorf("module %s setting %d: %w", m.Name(), i+1, err)
		}
	}
	return nil
}

// SettingsText renders the module's stored settings in pipeline-file order.
func SettingsText(m Module) []string {
	settings := m.Settings()
	values := make([]string, len(settings))
	for i, s := range settings {
		values[i] = s.Text()
	}
	return values
}

func runsOnce(m Module) bool {
	once, ok := m.(OneShot)
	return ok && once.RunsOnce()
}
