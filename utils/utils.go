package utils

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/julianpalladino/football-tracking/types"
)

// ValidateVideoPath checks that path names a file with the given extension
func ValidateVideoPath(path, ext string) error {
	if path == "" {
		return errors.Wrap(types.ErrConfiguration, "empty video path")
	}
	if !strings.EqualFold(filepath.Ext(path), ext) {
		return errors.Wrapf(types.ErrConfiguration, "only %s format is accepted, got %q", ext, path)
	}
	return nil
}

// EnsureDir creates the parent directory of a file path
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// ReplaceExt swaps the extension of path
func ReplaceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

// FindFiles walks root and returns the files with the given extension, sorted
func FindFiles(root, ext string) ([]string, error) {
	var found []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ext) {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walking %s", root)
	}
	sort.Strings(found)
	return found, nil
}
