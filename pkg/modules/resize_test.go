package modules

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/image-pipeline/pkg/pipeline"
)

func TestResizeByFactor(t *testing.T) {
	ws := newTestWorkspace(afero.NewMemMapFs())
	ws.Set.Add("OrigBlue", createTestImage(100, 50))

	m := NewResize()
	require.NoError(t, pipeline.ApplySettings(m, []string{
		"OrigBlue", "ResizedBlue", ResizeByFactor, "0.5", "100", "100", "Lanczos",
	}))
	require.NoError(t, m.Run(ws))

	img, err := ws.Set.Image("ResizedBlue")
	require.NoError(t, err)
	assert.Equal(t, 50, img.Width())
	assert.Equal(t, 25, img.Height())
}

func TestResizeToDimensions(t *testing.T) {
	ws := newTestWorkspace(afero.NewMemMapFs())
	ws.Set.Add("OrigBlue", createTestImage(100, 50))

	m := NewResize()
	require.NoError(t, pipeline.ApplySettings(m, []string{
		"OrigBlue", "ResizedBlue", ResizeToDimensions, "0.25", "30", "40", "NearestNeighbor",
	}))
	require.NoError(t, m.Run(ws))

	img, err := ws.Set.Image("ResizedBlue")
	require.NoError(t, err)
	assert.Equal(t, 30, img.Width())
	assert.Equal(t, 40, img.Height())
}

func TestResizeTinyFactorKeepsOnePixel(t *testing.T) {
	ws := newTestWorkspace(afero.NewMemMapFs())
	ws.Set.Add("OrigBlue", createTestImage(10, 10))

	m := NewResize()
	require.NoError(t, pipeline.ApplySettings(m, []string{
		"OrigBlue", "ResizedBlue", ResizeByFactor, "0.01", "100", "100", "Linear",
	}))
	require.NoError(t, m.Run(ws))

	img, err := ws.Set.Image("ResizedBlue")
	require.NoError(t, err)
	assert.Equal(t, 1, img.Width())
	assert.Equal(t, 1, img.Height())
}

func TestResizeRejectsBadInputs(t *testing.T) {
	ws := newTestWorkspace(afero.NewMemMapFs())
	ws.Set.Add("OrigBlue", createTestImage(10, 10))

	m := NewResize()
	require.NoError(t, pipeline.ApplySettings(m, []string{
		"OrigBlue", "ResizedBlue", ResizeByFactor, "0", "100", "100", "Lanczos",
	}))
	err := m.Run(ws)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "factor must be positive")

	require.NoError(t, pipeline.ApplySettings(m, []string{
		"OrigBlue", "ResizedBlue", ResizeToDimensions, "0.5", "0", "40", "Lanczos",
	}))
	err = m.Run(ws)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimensions must be positive")
}

func TestResizeRejectsUnknownFilter(t *testing.T) {
	m := NewResize()
	err := pipeline.ApplySettings(m, []string{
		"OrigBlue", "ResizedBlue", ResizeByFactor, "0.5", "100", "100", "Gaussian",
	})
	require.Error(t, err, "filters outside the option list are rejected at apply time")
}

func TestResizeVisibleSettings(t *testing.T) {
	m := NewResize()

	visible := m.VisibleSettings()
	assert.Same(t, m.factor, visible[3], "factor method shows the factor")

	require.NoError(t, m.method.SetText(ResizeToDimensions))
	visible = m.VisibleSettings()
	assert.Same(t, m.width, visible[3])
	assert.Same(t, m.height, visible[4])
}
