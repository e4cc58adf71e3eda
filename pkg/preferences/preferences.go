// Package preferences holds the host-wide defaults modules resolve
// directories against: the default input (image) folder and the default
// output folder.
//
// Values come from, in rising precedence: built-in defaults, an optional
// preferences file, IMAGEPIPELINE_* environment variables, and explicit Set
// calls.
package preferences

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// Preference keys.
const (
	KeyDefaultImageDirectory  = "default_image_directory"
	KeyDefaultOutputDirectory = "default_output_directory"
)

const envPrefix = "IMAGEPIPELINE"

var v = newViper()

func newViper() *viper.Viper {
	vp := viper.New()
	vp.SetDefault(KeyDefaultImageDirectory, ".")
	vp.SetDefault(KeyDefaultOutputDirectory, ".")
	vp.SetEnvPrefix(envPrefix)
	vp.AutomaticEnv()
	return vp
}

// DefaultImageDirectory returns the default input folder.
func DefaultImageDirectory() string {
	return v.GetString(KeyDefaultImageDirectory)
}

// SetDefaultImageDirectory overrides the default input folder.
func SetDefaultImageDirectory(dir string) {
	v.Set(KeyDefaultImageDirectory, dir)
}

// DefaultOutputDirectory returns the default output folder.
func DefaultOutputDirectory() string {
	return v.GetString(KeyDefaultOutputDirectory)
}

// SetDefaultOutputDirectory overrides the default output folder.
func SetDefaultOutputDirectory(dir string) {
	v.Set(KeyDefaultOutputDirectory, dir)
}

// Load merges a preferences file (yaml, json or toml by extension) into the
// current values.
func Load(fsys afero.Fs, path string) error {
	v.SetFs(fsys)
	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil {
		return fmt.Errorf("failed to load preferences from %s: %w", path, err)
	}
	return nil
}

// Reset discards every override and returns to built-in defaults. Tests use
// this to isolate themselves.
func Reset() {
	v = newViper()
}
