package modules

import (
	"image"
	"image/color"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/image-pipeline/pkg/imageset"
	"github.com/menta2k/image-pipeline/pkg/measure"
	"github.com/menta2k/image-pipeline/pkg/pipeline"
)

// createTestImage builds a gradient so resizes and crops stay verifiable.
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(x * 255 / max(width-1, 1)),
				G: uint8(y * 255 / max(height-1, 1)),
				B: 100,
				A: 255,
			})
		}
	}
	return img
}

func writeTestImage(t *testing.T, fsys afero.Fs, path string, width, height int) {
	t.Helper()
	require.NoError(t, imageset.EncodeFile(fsys, path, createTestImage(width, height), "png", imageset.EncodeOptions{}))
}

// newTestWorkspace wires the pieces a module touches, with a frame attached
// so display output is observable.
func newTestWorkspace(fsys afero.Fs) *pipeline.Workspace {
	ws := &pipeline.Workspace{
		List:         imageset.NewList(),
		Measurements: measure.New(),
		FS:           fsys,
		Frame:        pipeline.NewFrame(),
	}
	ws.Set = ws.List.Set(1)
	return ws
}
