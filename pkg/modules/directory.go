package modules

import (
	"path/filepath"
	"strings"

	"github.com/menta2k/image-pipeline/pkg/preferences"
)

// resolveCustomDirectory maps the "./" and "&/" shorthands onto the default
// input and output folders. Anything else passes through verbatim.
func resolveCustomDirectory(dir string) string {
	switch {
	case strings.HasPrefix(dir, "./") || strings.HasPrefix(dir, `.\`):
		return filepath.Join(preferences.DefaultImageDirectory(), dir[2:])
	case strings.HasPrefix(dir, "&/") || strings.HasPrefix(dir, `&\`):
		return filepath.Join(preferences.DefaultOutputDirectory(), dir[2:])
	}
	return dir
}
