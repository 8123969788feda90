package snapshot

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hyperjump/annai/internal/models"
)

// Build walks root, applies the filter, and returns a RepoSnapshot with
// sorted slash-separated relative paths. Symlinks and irregular files are
// skipped. filter may be nil, in which case DefaultFilter is used.
func Build(root string, filter *Filter) (*models.RepoSnapshot, error) {
	if filter == nil {
		filter = DefaultFilter()
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", absRoot)
	}

	var files []string
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if path != absRoot && filter.IgnoreDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if filter.IgnoreFile(d.Name()) {
			return nil
		}
		rel, relErr := filepath.Rel(absRoot, path)
		if relErr != nil {
			return relErr
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", absRoot, err)
	}
	sort.Strings(files)

	return &models.RepoSnapshot{
		Name:  filepath.Base(absRoot),
		Root:  absRoot,
		Files: files,
	}, nil
}

// Contains reports whether the snapshot includes the given relative path.
func Contains(snap *models.RepoSnapshot, rel string) bool {
	rel = filepath.ToSlash(rel)
	i := sort.SearchStrings(snap.Files, rel)
	return i < len(snap.Files) && snap.Files[i] == rel
}

// FilesWithSuffix returns the snapshot paths ending in any of the given
// suffixes (case-insensitive).
func FilesWithSuffix(snap *models.RepoSnapshot, suffixes ...string) []string {
	var out []string
	for _, f := range snap.Files {
		lower := strings.ToLower(f)
		for _, suf := range suffixes {
			if strings.HasSuffix(lower, strings.ToLower(suf)) {
				out = append(out, f)
				break
			}
		}
	}
	return out
}
