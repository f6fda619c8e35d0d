package fileutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"sera/internal/organize"
)

// Enumerate walks root recursively and returns every regular file together
// with the total byte count. Paths are recorded relative to root.
func Enumerate(root string) ([]organize.SourceFile, int64, error) {
	var files []organize.SourceFile
	var totalBytes int64
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
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
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, organize.SourceFile{
			Path:         path,
			RelativePath: rel,
			Name:         d.Name(),
			Size:         info.Size(),
		})
		totalBytes += info.Size()
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return files, totalBytes, nil
}

// ListSubdirectories returns the names of root's immediate subdirectories,
// skipping reserved working directories (leading underscore).
func ListSubdirectories(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if strings.HasPrefix(entry.Name(), "_") {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}
