package entity

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Walk returns every file below root in lexical order. Symlinks count as
// files when their target is not a directory; linked directories are not
// descended into. Paths are absolute when root can be made absolute.
func Walk(fs afero.Fs, root string) ([]string, error) {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}

	var paths []string
	err := afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.Mode()&os.ModeSymlink != 0 {
			target, err := fs.Stat(path)
			if err != nil || target.IsDir() {
				// dangling links and linked directories
				return nil
			}
			info = target
		}
		if !info.IsDir() {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return paths, nil
}
