package fsutil

import (
	"os"

	"github.com/spf13/afero"
)

// Size returns the byte length of path. For a directory it is the sum of the
// lengths of every regular file beneath it; directory entries and symlinks
// count as zero so that a faithful copy always sizes the same as its source.
func Size(fs afero.Fs, path string) (int64, error) {
	info, err := lstat(fs, path)
	if err != nil {
		return 0, err
	}
	if !info.IsDir() {
		return regularSize(info), nil
	}

	var total int64
	err = afero.Walk(fs, path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		total += regularSize(info)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

func regularSize(info os.FileInfo) int64 {
	if info.Mode().IsRegular() {
		return info.Size()
	}
	return 0
}
