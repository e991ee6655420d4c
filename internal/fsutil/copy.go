package fsutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// TreeCopier copies files and directory trees within one afero.Fs,
// preserving permission bits and modification times.
type TreeCopier struct {
	Fs afero.Fs
}

// NewTreeCopier returns a TreeCopier bound to fs.
func NewTreeCopier(fs afero.Fs) *TreeCopier {
	return &TreeCopier{Fs: fs}
}

// Copy copies src to dst. A directory is copied recursively as dst itself,
// never into it. Existing destination files are overwritten.
func (c *TreeCopier) Copy(src, dst string) error {
	info, err := lstat(c.Fs, src)
	if err != nil {
		return err
	}
	return c.copyEntry(src, dst, info)
}

func (c *TreeCopier) copyEntry(src, dst string, info os.FileInfo) error {
	mode := info.Mode()
	switch {
	case mode.IsDir():
		return c.copyDir(src, dst, info)
	case mode.IsRegular():
		return c.copyFile(src, dst, info)
	case mode&os.ModeSymlink != 0:
		return c.copySymlink(src, dst)
	default:
		return fmt.Errorf("%w: %s (%s)", ErrUnsupportedType, src, mode.Type())
	}
}

func (c *TreeCopier) copyDir(src, dst string, info os.FileInfo) error {
	// Owner write is needed while children are created; final bits are set after.
	if err := c.Fs.MkdirAll(dst, info.Mode().Perm()|0o700); err != nil {
		return err
	}

	entries, err := afero.ReadDir(c.Fs, src)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		name := entry.Name()
		if err := c.copyEntry(filepath.Join(src, name), filepath.Join(dst, name), entry); err != nil {
			return err
		}
	}

	if err := c.Fs.Chmod(dst, info.Mode().Perm()); err != nil {
		return err
	}
	return c.Fs.Chtimes(dst, info.ModTime(), info.ModTime())
}

func (c *TreeCopier) copyFile(src, dst string, info os.FileInfo) error {
	in, err := c.Fs.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := c.Fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	if err := c.Fs.Chmod(dst, info.Mode().Perm()); err != nil {
		return err
	}
	return c.Fs.Chtimes(dst, info.ModTime(), info.ModTime())
}

func (c *TreeCopier) copySymlink(src, dst string) error {
	reader, ok := c.Fs.(afero.LinkReader)
	if !ok {
		return fmt.Errorf("%w: %s (symlink)", ErrUnsupportedType, src)
	}
	linker, ok := c.Fs.(afero.Linker)
	if !ok {
		return fmt.Errorf("%w: %s (symlink)", ErrUnsupportedType, src)
	}

	target, err := reader.ReadlinkIfPossible(src)
	if err != nil {
		return err
	}
	return linker.SymlinkIfPossible(target, dst)
}
