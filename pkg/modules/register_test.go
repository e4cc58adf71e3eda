package modules

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/image-pipeline/pkg/imageset"
	"github.com/menta2k/image-pipeline/pkg/measure"
	"github.com/menta2k/image-pipeline/pkg/pipeline"
	"github.com/menta2k/image-pipeline/pkg/preferences"
)

func TestRegisterBuiltins(t *testing.T) {
	reg := pipeline.NewRegistry()
	require.NoError(t, RegisterBuiltins(reg))

	assert.Equal(t, []string{"Crop", "DescribeImage", "LoadImages", "LoadSingleImage", "Resize", "SaveImages"}, reg.Names())

	m, err := reg.New("LoadSingleImage")
	require.NoError(t, err)
	assert.Equal(t, "LoadSingleImage", m.Name())

	require.Error(t, RegisterBuiltins(reg), "registering the builtins twice should fail")
}

func TestBuiltinsEndToEnd(t *testing.T) {
	preferences.Reset()
	t.Cleanup(preferences.Reset)
	preferences.SetDefaultImageDirectory("/in")
	preferences.SetDefaultOutputDirectory("/out")
	imageset.FlushDecodeCache()

	fsys := afero.NewMemMapFs()
	writeTestImage(t, fsys, "/in/dna_01.png", 40, 40)
	writeTestImage(t, fsys, "/in/dna_02.png", 40, 40)

	reg := pipeline.NewRegistry()
	require.NoError(t, RegisterBuiltins(reg))

	const text = `version: 1
modules:
  - module: LoadImages
    revision: 1
    settings: ['Default input folder', '.', 'dna_(?P<Num>\d+)\.png', 'DNA']
  - module: Crop
    revision: 1
    settings: ['DNA', 'CropDNA', '0.25', '0.25', '0.5', '0.5', '0', '0']
  - module: Resize
    revision: 1
    settings: ['CropDNA', 'SmallDNA', 'Resize by a factor', '0.5', '100', '100', 'Lanczos']
  - module: SaveImages
    revision: 1
    settings: ['SmallDNA', 'Default output folder', '.', 'small_\g<Num>', 'png', '90', 'No']
`
	p, err := pipeline.Load(strings.NewReader(text), reg)
	require.NoError(t, err)

	frame := pipeline.NewFrame()
	meas, err := p.RunWithConfig(context.Background(), pipeline.RunConfig{FS: fsys, Frame: frame})
	require.NoError(t, err)

	for _, name := range []string{"/out/small_01.png", "/out/small_02.png"} {
		img, err := imageset.DecodeFile(fsys, name)
		require.NoError(t, err, name)
		assert.Equal(t, 10, img.Bounds().Dx(), name)
		assert.Equal(t, 10, img.Bounds().Dy(), name)
	}

	meas.SetImageSetNumber(1)
	num, ok := meas.GetString(measure.MetadataPrefix + "Num")
	require.True(t, ok)
	assert.Equal(t, "01", num)

	assert.NotEmpty(t, frame.Tables(), "loading and saving modules post display tables")
}
