package file

import (
	"path/filepath"
	"strings"
)

// ReplaceExt swaps the extension of path. A leading dot on ext is optional.
// Dotfiles like ".env" are treated as extension-less names.
func ReplaceExt(path, ext string) string {
	if path == "" {
		return path
	}

	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	dir := filepath.Dir(path)
	filename := filepath.Base(path)

	lastDot := strings.LastIndex(filename, ".")
	if lastDot <= 0 {
		return filepath.Join(dir, filename+ext)
	}

	return filepath.Join(dir, filename[:lastDot]+ext)
}

// Stem returns the base name of path without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
