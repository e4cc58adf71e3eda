package modules

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/image-pipeline/pkg/imageset"
	"github.com/menta2k/image-pipeline/pkg/pipeline"
)

func TestCropQuarterBox(t *testing.T) {
	ws := newTestWorkspace(afero.NewMemMapFs())
	original := createTestImage(100, 100)
	ws.Set.Add("OrigBlue", original)

	m := NewCrop()
	require.NoError(t, m.Run(ws))

	img, err := ws.Set.Image("CropBlue")
	require.NoError(t, err)
	assert.Equal(t, 50, img.Width())
	assert.Equal(t, 50, img.Height())

	wantR, wantG, wantB, wantA := original.At(25, 25).RGBA()
	gotR, gotG, gotB, gotA := img.Pixels.At(img.Pixels.Bounds().Min.X, img.Pixels.Bounds().Min.Y).RGBA()
	assert.Equal(t, []uint32{wantR, wantG, wantB, wantA}, []uint32{gotR, gotG, gotB, gotA},
		"top-left of the crop should be the box origin of the source")
}

func TestCropToExactSize(t *testing.T) {
	ws := newTestWorkspace(afero.NewMemMapFs())
	ws.Set.Add("OrigBlue", createTestImage(100, 100))

	m := NewCrop()
	require.NoError(t, pipeline.ApplySettings(m, []string{
		"OrigBlue", "CropBlue", "0.25", "0.25", "0.5", "0.5", "30", "20",
	}))
	require.NoError(t, m.Run(ws))

	img, err := ws.Set.Image("CropBlue")
	require.NoError(t, err)
	assert.Equal(t, 30, img.Width())
	assert.Equal(t, 20, img.Height())
}

func TestCropEmptyBox(t *testing.T) {
	ws := newTestWorkspace(afero.NewMemMapFs())
	ws.Set.Add("OrigBlue", createTestImage(100, 100))

	m := NewCrop()
	require.NoError(t, pipeline.ApplySettings(m, []string{
		"OrigBlue", "CropBlue", "1", "1", "0", "0", "0", "0",
	}))

	err := m.Run(ws)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leaves nothing")
}

func TestCropMissingInput(t *testing.T) {
	ws := newTestWorkspace(afero.NewMemMapFs())

	m := NewCrop()
	err := m.Run(ws)
	require.Error(t, err)
	assert.ErrorIs(t, err, imageset.ErrNoSuchImage)
}
