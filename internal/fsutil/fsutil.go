// Package fsutil holds the filesystem primitives the archiver treats as
// black boxes: recursive sizing, directory creation and recursive copy.
package fsutil

import (
	"errors"
	"os"

	"github.com/spf13/afero"
)

// ErrUnsupportedType is returned for entries that cannot be reproduced at the
// destination (devices, sockets, pipes, or symlinks on a filesystem without
// link support).
var ErrUnsupportedType = errors.New("unsupported file type")

// DirPerm is the mode used for directories created by EnsureDir.
const DirPerm os.FileMode = 0o755

// EnsureDir creates dir and any missing ancestors unless it already exists.
func EnsureDir(fs afero.Fs, dir string) error {
	ok, err := afero.DirExists(fs, dir)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	return fs.MkdirAll(dir, DirPerm)
}

// Lstat describes path without following a final symlink when fs can.
func Lstat(fs afero.Fs, path string) (os.FileInfo, error) {
	return lstat(fs, path)
}

func lstat(fs afero.Fs, path string) (os.FileInfo, error) {
	if l, ok := fs.(afero.Lstater); ok {
		info, _, err := l.LstatIfPossible(path)
		return info, err
	}
	return fs.Stat(path)
}
