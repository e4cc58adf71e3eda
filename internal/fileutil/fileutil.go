// Package fileutil provides filesystem helpers shared by the pipeline
// modules. All operations go through afero so tests can run against an
// in-memory filesystem.
package fileutil

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// imageExtensions lists the file extensions the codec can decode.
var imageExtensions = []string{"jpg", "jpeg", "png", "gif", "bmp", "tif", "tiff", "webp"}

// Extension returns the lower-cased file extension without the dot.
func Extension(filename string) string {
	ext := filepath.Ext(filename)
	if len(ext) > 0 {
		return strings.ToLower(ext[1:])
	}
	return ""
}

// IsImageFile reports whether the file name carries a decodable image extension.
func IsImageFile(filename string) bool {
	ext := Extension(filename)
	for _, imgExt := range imageExtensions {
		if ext == imgExt {
			return true
		}
	}
	return false
}

// ListImageFiles walks dir recursively and returns the image files found,
// as slash-separated paths relative to dir, sorted.
func ListImageFiles(fsys afero.Fs, dir string) ([]string, error) {
	var files []string

	err := afero.Walk(fsys, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !IsImageFile(path) {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// EnsureDir creates a directory if it doesn't exist.
func EnsureDir(fsys afero.Fs, dir string) error {
	if _, err := fsys.Stat(dir); os.IsNotExist(err) {
		return fsys.MkdirAll(dir, 0o755)
	}
	return nil
}

// FileExists checks if a file exists and is not a directory.
func FileExists(fsys afero.Fs, filename string) bool {
	info, err := fsys.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirExists checks if a directory exists.
func DirExists(fsys afero.Fs, dirname string) bool {
	info, err := fsys.Stat(dirname)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// SanitizeFilename replaces characters that are invalid in file names with
// underscores and trims leading/trailing spaces and dots.
func SanitizeFilename(filename string) string {
	invalid := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|"}
	result := filename

	for _, char := range invalid {
		result = strings.ReplaceAll(result, char, "_")
	}

	return strings.Trim(result, " .")
}
