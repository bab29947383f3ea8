package file

import (
	"io/fs"
	"path/filepath"
	"time"
)

// FindRecentAfter walks dir and returns files whose mtime is after startTime.
func FindRecentAfter(dir string, startTime time.Time) ([]string, error) {
	var recentFiles []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.ModTime().After(startTime) {
			recentFiles = append(recentFiles, path)
		}
		return nil
	})

	return recentFiles, err
}
