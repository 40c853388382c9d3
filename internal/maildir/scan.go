// Package maildir enumerates message files in a corpus directory tree.
package maildir

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
)

// Scan walks root recursively and returns every regular file path found.
// Hidden OS artifacts (.DS_Store) are excluded by name. Irregular entries
// such as symlinks and devices are skipped with a warning; they never
// fail the walk. The logger may be nil, in which case slog.Default()
// is used.
func Scan(root string, log *slog.Logger) ([]string, error) {
	if log == nil {
		log = slog.Default()
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !d.Type().IsRegular() {
			log.Warn("skipping irregular entry", "path", path, "type", d.Type().String())
			return nil
		}
		if d.Name() == ".DS_Store" {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	return files, nil
}
