package preferences

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreCurrentDirectory(t *testing.T) {
	Reset()
	assert.Equal(t, ".", DefaultImageDirectory())
	assert.Equal(t, ".", DefaultOutputDirectory())
}

func TestSetOverrides(t *testing.T) {
	Reset()
	defer Reset()

	SetDefaultImageDirectory("/data/images")
	SetDefaultOutputDirectory("/data/output")

	assert.Equal(t, "/data/images", DefaultImageDirectory())
	assert.Equal(t, "/data/output", DefaultOutputDirectory())
}

func TestEnvOverridesDefaults(t *testing.T) {
	Reset()
	defer Reset()

	t.Setenv("IMAGEPIPELINE_DEFAULT_IMAGE_DIRECTORY", "/mnt/scope")
	assert.Equal(t, "/mnt/scope", DefaultImageDirectory())
	assert.Equal(t, ".", DefaultOutputDirectory())
}

func TestLoadPreferencesFile(t *testing.T) {
	Reset()
	defer Reset()

	fs := afero.NewMemMapFs()
	content := "default_image_directory: /srv/incoming\ndefault_output_directory: /srv/results\n"
	require.NoError(t, afero.WriteFile(fs, "/etc/imagepipeline.yaml", []byte(content), 0o644))

	require.NoError(t, Load(fs, "/etc/imagepipeline.yaml"))
	assert.Equal(t, "/srv/incoming", DefaultImageDirectory())
	assert.Equal(t, "/srv/results", DefaultOutputDirectory())
}

func TestLoadMissingFile(t *testing.T) {
	Reset()
	defer Reset()

	fs := afero.NewMemMapFs()
	err := Load(fs, "/etc/missing.yaml")
	assert.ErrorContains(t, err, "failed to load preferences")
}
