// Package modules holds the builtin pipeline modules.
package modules

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/menta2k/image-pipeline/pkg/imageset"
	"github.com/menta2k/image-pipeline/pkg/log"
	"github.com/menta2k/image-pipeline/pkg/pipeline"
	"github.com/menta2k/image-pipeline/pkg/preferences"
	"github.com/menta2k/image-pipeline/pkg/setting"
)

// Folder options shared by the file modules. The strings appear verbatim in
// pipeline files.
const (
	DirDefaultImage  = "Default input folder"
	DirDefaultOutput = "Default output folder"
	DirCustom        = "Custom folder"
)

// LoadSingleImage loads fixed images once and shares them with every cycle.
//
// Each configured entry pairs a file-name pattern with an image name. On the
// first cycle the patterns are resolved against the cycle's metadata and a
// lazy provider is registered run-wide under each image name, so an
// illumination-correction image (or similar) is decoded at most once no
// matter how many cycles consume it.
type LoadSingleImage struct {
	dirChoice *setting.Choice
	customDir *setting.Text
	entries   []*singleFileEntry
	addButton *setting.Action
}

type singleFileEntry struct {
	key    uuid.UUID
	file   *setting.Text
	image  *setting.ImageName
	remove *setting.Action
}

// NewLoadSingleImage creates the module with one file entry.
func NewLoadSingleImage() *LoadSingleImage {
	m := &LoadSingleImage{
		dirChoice: setting.NewChoice("Which folder contains the image files?",
			[]string{DirDefaultImage, DirDefaultOutput, DirCustom}).
			WithDoc("It is best to store the image in either the input or output folder, so that the correct image is loaded into the pipeline and typos are avoided. If you must store it in another folder, select Custom."),
		customDir: setting.NewText("What is the name of the folder containing the image files?", "."),
	}
	m.addEntry()
	m.addButton = setting.NewAction("Add another file to be loaded", "Add", func() {
		m.addEntry()
	})
	return m
}

func (m *LoadSingleImage) addEntry() {
	key := uuid.New()
	entry := &singleFileEntry{
		key:   key,
		file:  setting.NewText("What image file do you want to load? Include the extension like .tif", "None"),
		image: setting.NewImageName("What do you want to call that image?", "OrigBlue"),
	}
	entry.remove = setting.NewAction("Remove the above image and file", "Remove", func() {
		m.removeEntry(key)
	})
	m.entries = append(m.entries, entry)
}

func (m *LoadSingleImage) removeEntry(key uuid.UUID) {
	for i, entry := range m.entries {
		if entry.key == key {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return
		}
	}
}

// Name implements pipeline.Module.
func (m *LoadSingleImage) Name() string { return "LoadSingleImage" }

// Category implements pipeline.Module.
func (m *LoadSingleImage) Category() string { return "File Processing" }

// Revision implements pipeline.Module.
func (m *LoadSingleImage) Revision() int { return 1 }

// Settings returns the stored settings: folder choice, custom folder, then a
// (file pattern, image name) pair per entry.
func (m *LoadSingleImage) Settings() []setting.Setting {
	result := []setting.Setting{m.dirChoice, m.customDir}
	for _, entry := range m.entries {
		result = append(result, entry.file, entry.image)
	}
	return result
}

// VisibleSettings hides the custom folder unless the custom choice is active
// and appends the per-entry remove buttons plus the trailing add button.
func (m *LoadSingleImage) VisibleSettings() []setting.Setting {
	result := []setting.Setting{m.dirChoice}
	if m.dirChoice.Is(DirCustom) {
		result = append(result, m.customDir)
	}
	for _, entry := range m.entries {
		result = append(result, entry.file, entry.image, entry.remove)
	}
	result = append(result, m.addButton)
	return result
}

// PrepareSettings resizes the entry list to (len(values)-2)/2 entries,
// dropping entries from the front when shrinking.
func (m *LoadSingleImage) PrepareSettings(values []string) error {
	count := (len(values) - 2) / 2
	for len(m.entries) > count {
		m.removeEntry(m.entries[0].key)
	}
	for len(m.entries) < count {
		m.addEntry()
	}
	return nil
}

// BaseDirectory resolves the folder the configured files live in. A custom
// value starting with "./" lands under the default input folder and one
// starting with "&/" under the default output folder.
func (m *LoadSingleImage) BaseDirectory() string {
	switch {
	case m.dirChoice.Is(DirDefaultImage):
		return preferences.DefaultImageDirectory()
	case m.dirChoice.Is(DirDefaultOutput):
		return preferences.DefaultOutputDirectory()
	default:
		return resolveCustomDirectory(m.customDir.Text())
	}
}

type resolvedFile struct {
	image string
	file  string
}

// fileNames resolves every entry's file pattern against the current cycle's
// metadata, in entry order.
func (m *LoadSingleImage) fileNames(ws *pipeline.Workspace) ([]resolvedFile, error) {
	resolved := make([]resolvedFile, 0, len(m.entries))
	for _, entry := range m.entries {
		fileName, err := ws.Measurements.ApplyMetadata(entry.file.Text())
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, resolvedFile{image: entry.image.Text(), file: fileName})
	}
	return resolved, nil
}

// RunsOnce marks the module as first-cycle only.
func (m *LoadSingleImage) RunsOnce() bool { return true }

// Run resolves the configured files and registers a run-wide lazy provider
// per image name, so later cycles see the images without reloading them.
func (m *LoadSingleImage) Run(ws *pipeline.Workspace) error {
	resolved, err := m.fileNames(ws)
	if err != nil {
		return err
	}
	root := m.BaseDirectory()

	statistics := [][2]string{{"Image name", "File"}}
	for _, r := range resolved {
		ws.List.AddSharedProvider(imageset.NewFileProvider(ws.FS, r.image, root, r.file))
		statistics = append(statistics, [2]string{r.image, r.file})
		log.Debug("registered run-wide image", "image", r.image, "dir", root, "file", r.file)
	}

	ws.Display(fmt.Sprintf("Load single image: image set #%d", ws.Measurements.ImageSetNumber()), statistics)
	return nil
}

// UpgradeSettings migrates settings written by legacy revisions of the
// module. Revision 4 stored the directory token in the second slot: "."
// meant the default input folder, "&" the default output folder and anything
// else a custom folder. Up to three trailing (file, image) pairs marked
// "Do not use" are dropped; the first pair always survives.
func (m *LoadSingleImage) UpgradeSettings(values []string, revision int, legacy bool) ([]string, int, bool, error) {
	if legacy && revision == 4 {
		if len(values) < 2 {
			return nil, 0, false, fmt.Errorf("legacy revision 4 needs at least 2 settings, got %d", len(values))
		}
		out := make([]string, len(values))
		copy(out, values)

		switch values[1] {
		case ".":
			out[0] = DirDefaultImage
		case "&":
			out[0] = DirDefaultOutput
		default:
			out[0] = DirCustom
		}

		for _, i := range []int{8, 6, 4} {
			if i+1 < len(out) && out[i+1] == setting.DoNotUse {
				out = append(out[:i], out[i+2:]...)
			}
		}
		return out, 1, false, nil
	}
	return values, revision, legacy, nil
}
