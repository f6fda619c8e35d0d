package fileutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

const verifyConcurrency = 8

// VerifyResult reports the outcome of an output integrity check.
type VerifyResult struct {
	Verified bool     `json:"verified"`
	Missing  []string `json:"missing"`
}

// VerifyTree walks sourceRoot and requires, for every file, an output file
// at the same relative path with identical byte length. This catches
// truncated or skipped copies; it is not a cryptographic check.
func VerifyTree(sourceRoot, outputRoot string) (VerifyResult, error) {
	var relPaths []string
	sizes := make(map[string]int64)
	err := filepath.WalkDir(sourceRoot, func(path string, d fs.DirEntry, err error) error {
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
		rel, err := filepath.Rel(sourceRoot, path)
		if err != nil {
			return err
		}
		relPaths = append(relPaths, rel)
		sizes[rel] = info.Size()
		return nil
	})
	if err != nil {
		return VerifyResult{}, err
	}

	var mu sync.Mutex
	var missing []string
	g := new(errgroup.Group)
	g.SetLimit(verifyConcurrency)
	for _, rel := range relPaths {
		rel := rel
		g.Go(func() error {
			info, statErr := os.Stat(filepath.Join(outputRoot, rel))
			if statErr != nil || info.Size() != sizes[rel] {
				mu.Lock()
				missing = append(missing, rel)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return VerifyResult{}, err
	}
	sort.Strings(missing)
	return VerifyResult{Verified: len(missing) == 0, Missing: missing}, nil
}
