package modules

import (
	"fmt"
	"path/filepath"

	"github.com/menta2k/image-pipeline/pkg/imageset"
	"github.com/menta2k/image-pipeline/pkg/log"
	"github.com/menta2k/image-pipeline/pkg/pipeline"
	"github.com/menta2k/image-pipeline/pkg/preferences"
	"github.com/menta2k/image-pipeline/pkg/setting"

	"github.com/menta2k/image-pipeline/internal/fileutil"
)

// SaveImages writes a named image to disk every cycle. The file-name pattern
// goes through metadata substitution, so per-cycle names like
// "dna_\g<Well>" fall out naturally; the extension comes from the format
// choice.
type SaveImages struct {
	image     *setting.Text
	dirChoice *setting.Choice
	customDir *setting.Text
	fileName  *setting.Text
	format    *setting.Choice
	quality   *setting.Integer
	lossless  *setting.Bool
}

// NewSaveImages creates the module with its default settings.
func NewSaveImages() *SaveImages {
	return &SaveImages{
		image:     setting.NewText("Which image do you want to save?", "OrigBlue"),
		dirChoice: setting.NewChoice("Where do you want to store the file?", []string{DirDefaultOutput, DirCustom}),
		customDir: setting.NewText("What is the name of the folder to store the file in?", "."),
		fileName: setting.NewText("What file name pattern do you want? (extension is added from the format)", "OrigBlue").
			WithDoc(`Metadata tokens like \g<Well> are substituted per cycle.`),
		format:   setting.NewChoice("What file format do you want?", []string{"png", "jpg", "webp", "tiff", "bmp"}),
		quality:  setting.NewInteger("Quality for jpg or webp output (1-100)", 90),
		lossless: setting.NewBool("Use lossless webp?", false),
	}
}

// Name implements pipeline.Module.
func (m *SaveImages) Name() string { return "SaveImages" }

// Category implements pipeline.Module.
func (m *SaveImages) Category() string { return "File Processing" }

// Revision implements pipeline.Module.
func (m *SaveImages) Revision() int { return 1 }

// Settings implements pipeline.Module.
func (m *SaveImages) Settings() []setting.Setting {
	return []setting.Setting{m.image, m.dirChoice, m.customDir, m.fileName, m.format, m.quality, m.lossless}
}

// VisibleSettings hides the custom folder unless chosen and the lossy knobs
// when the format ignores them.
func (m *SaveImages) VisibleSettings() []setting.Setting {
	result := []setting.Setting{m.image, m.dirChoice}
	if m.dirChoice.Is(DirCustom) {
		result = append(result, m.customDir)
	}
	result = append(result, m.fileName, m.format)
	switch m.format.Text() {
	case "jpg":
		result = append(result, m.quality)
	case "webp":
		result = append(result, m.quality, m.lossless)
	}
	return result
}

// PrepareSettings implements pipeline.Module; the setting count is fixed.
func (m *SaveImages) PrepareSettings([]string) error { return nil }

// BaseDirectory resolves the output folder.
func (m *SaveImages) BaseDirectory() string {
	if m.dirChoice.Is(DirDefaultOutput) {
		return preferences.DefaultOutputDirectory()
	}
	return resolveCustomDirectory(m.customDir.Text())
}

// Run encodes the named image into the resolved path, creating directories
// as needed.
func (m *SaveImages) Run(ws *pipeline.Workspace) error {
	img, err := ws.Set.Image(m.image.Text())
	if err != nil {
		return err
	}

	name, err := ws.Measurements.ApplyMetadata(m.fileName.Text())
	if err != nil {
		return err
	}

	format := m.format.Text()
	full := filepath.Join(m.BaseDirectory(), name+"."+format)
	if err := fileutil.EnsureDir(ws.FS, filepath.Dir(full)); err != nil {
		return fmt.Errorf("failed to create output folder: %w", err)
	}

	opts := imageset.EncodeOptions{Quality: m.quality.Value(), Lossless: m.lossless.Value()}
	if err := imageset.EncodeFile(ws.FS, full, img.Pixels, format, opts); err != nil {
		return err
	}
	log.Debug("saved image", "image", m.image.Text(), "path", full, "format", format)

	ws.Display(fmt.Sprintf("Save images: image set #%d", ws.Set.Number), [][2]string{
		{"Image name", m.image.Text()},
		{"File", full},
	})
	return nil
}
