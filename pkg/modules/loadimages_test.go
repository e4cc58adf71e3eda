package modules

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/image-pipeline/pkg/imageset"
	"github.com/menta2k/image-pipeline/pkg/measure"
	"github.com/menta2k/image-pipeline/pkg/pipeline"
	"github.com/menta2k/image-pipeline/pkg/preferences"
)

func loadImagesFixture(t *testing.T) afero.Fs {
	t.Helper()
	preferences.Reset()
	t.Cleanup(preferences.Reset)
	preferences.SetDefaultImageDirectory("/in")
	imageset.FlushDecodeCache()

	fsys := afero.NewMemMapFs()
	writeTestImage(t, fsys, "/in/dna_01.png", 10, 10)
	writeTestImage(t, fsys, "/in/dna_02.png", 12, 12)
	writeTestImage(t, fsys, "/in/actin_01.png", 14, 14)
	writeTestImage(t, fsys, "/in/actin_02.png", 16, 16)
	return fsys
}

func TestLoadImagesDefaults(t *testing.T) {
	m := NewLoadImages()
	assert.Equal(t, "LoadImages", m.Name())
	assert.Equal(t, "File Processing", m.Category())

	values := pipeline.SettingsText(m)
	require.Len(t, values, 4)
	assert.Equal(t, DirDefaultImage, values[0])
}

func TestLoadImagesPrepareRunOrderBasedMatching(t *testing.T) {
	fsys := loadImagesFixture(t)

	m := NewLoadImages()
	require.NoError(t, pipeline.ApplySettings(m, []string{
		DirDefaultImage, ".",
		`dna_.*\.png`, "DNA",
		`actin_.*\.png`, "Actin",
	}))

	ws := newTestWorkspace(fsys)
	require.NoError(t, m.PrepareRun(ws))
	assert.Equal(t, 2, ws.List.Count())

	ws.Set = ws.List.Set(2)
	ws.Measurements.SetImageSetNumber(2)
	require.NoError(t, m.Run(ws))

	dna, err := ws.Set.Image("DNA")
	require.NoError(t, err)
	assert.Equal(t, "dna_02.png", dna.FileName, "sorted order pairs position 2 with the second file")
	assert.Equal(t, 12, dna.Width())

	actin, err := ws.Set.Image("Actin")
	require.NoError(t, err)
	assert.Equal(t, "actin_02.png", actin.FileName)

	file, ok := ws.Measurements.GetString(measure.FileNamePrefix + "DNA")
	require.True(t, ok)
	assert.Equal(t, "dna_02.png", file)
	dir, ok := ws.Measurements.GetString(measure.PathNamePrefix + "DNA")
	require.True(t, ok)
	assert.Equal(t, "/in", dir)
}

func TestLoadImagesMetadataGroups(t *testing.T) {
	preferences.Reset()
	t.Cleanup(preferences.Reset)
	preferences.SetDefaultImageDirectory("/in")
	imageset.FlushDecodeCache()

	fsys := afero.NewMemMapFs()
	writeTestImage(t, fsys, "/in/plate_P-01_well_A01.png", 8, 8)
	writeTestImage(t, fsys, "/in/plate_P-02_well_B03.png", 8, 8)

	m := NewLoadImages()
	require.NoError(t, pipeline.ApplySettings(m, []string{
		DirDefaultImage, ".",
		`plate_(?P<Plate>P-\d+)_well_(?P<Well>[A-H]\d+)\.png`, "Orig",
	}))

	ws := newTestWorkspace(fsys)
	require.NoError(t, m.PrepareRun(ws))

	assert.Equal(t, "P-01", ws.List.Set(1).Keys["Plate"])
	assert.Equal(t, "B03", ws.List.Set(2).Keys["Well"])

	ws.Measurements.SetImageSetNumber(1)
	plate, ok := ws.Measurements.GetString(measure.MetadataPrefix + "Plate")
	require.True(t, ok)
	assert.Equal(t, "P-01", plate)

	ws.Measurements.SetImageSetNumber(2)
	plate, ok = ws.Measurements.GetString(measure.MetadataPrefix + "Plate")
	require.True(t, ok)
	assert.Equal(t, "P-02", plate)
}

func TestLoadImagesCountMismatch(t *testing.T) {
	fsys := loadImagesFixture(t)
	writeTestImage(t, fsys, "/in/dna_03.png", 10, 10)

	m := NewLoadImages()
	require.NoError(t, pipeline.ApplySettings(m, []string{
		DirDefaultImage, ".",
		`dna_.*\.png`, "DNA",
		`actin_.*\.png`, "Actin",
	}))

	err := m.PrepareRun(newTestWorkspace(fsys))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "counts must agree")
}

func TestLoadImagesNoMatches(t *testing.T) {
	fsys := loadImagesFixture(t)

	m := NewLoadImages()
	require.NoError(t, pipeline.ApplySettings(m, []string{
		DirDefaultImage, ".",
		`tubulin_.*\.png`, "Tubulin",
	}))

	err := m.PrepareRun(newTestWorkspace(fsys))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "matched no files")
}

func TestLoadImagesBadPattern(t *testing.T) {
	fsys := loadImagesFixture(t)

	m := NewLoadImages()
	require.NoError(t, pipeline.ApplySettings(m, []string{
		DirDefaultImage, ".",
		`dna_(`, "DNA",
	}))

	err := m.PrepareRun(newTestWorkspace(fsys))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad pattern")
}

func TestLoadImagesDrivesPipelineCycles(t *testing.T) {
	fsys := loadImagesFixture(t)

	loader := NewLoadImages()
	require.NoError(t, pipeline.ApplySettings(loader, []string{
		DirDefaultImage, ".",
		`dna_.*\.png`, "DNA",
	}))
	consumer := &consumerModule{image: "DNA"}

	p := pipeline.New()
	p.Add(loader)
	p.Add(consumer)

	meas, err := p.RunWithConfig(context.Background(), pipeline.RunConfig{FS: fsys})
	require.NoError(t, err)
	assert.Equal(t, []int{10, 12}, consumer.widths, "one cycle per matched file, in sorted order")

	meas.SetImageSetNumber(1)
	file, ok := meas.GetString(measure.FileNamePrefix + "DNA")
	require.True(t, ok)
	assert.Equal(t, "dna_01.png", file)
}
