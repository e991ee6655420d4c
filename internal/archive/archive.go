// Package archive copies discovered assets into a date-bucketed output tree
// and verifies every copy by size.
//
// Layout: <output>/<YYYY>/<YYYY>-<MM>-<DD>/<base name of asset>.
//
// Processing is sequential and stops at the first failure. Nothing is
// retried or rolled back: a partial copy of the failing asset stays on disk
// and later assets are left untouched.
package archive

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"photo-archiver/internal/asset"
	"photo-archiver/internal/fsutil"
)

// Copier copies a file or directory tree from src to dst.
type Copier interface {
	Copy(src, dst string) error
}

// Stats summarizes a run.
type Stats struct {
	Assets int   // Assets copied and verified
	Bytes  int64 // Total verified bytes
}

// Archiver places assets under an output root.
type Archiver struct {
	fs     afero.Fs
	out    string
	copier Copier
	log    zerolog.Logger
}

// Option configures an Archiver.
type Option func(*Archiver)

// WithCopier replaces the copy primitive.
func WithCopier(c Copier) Option {
	return func(a *Archiver) { a.copier = c }
}

// WithLogger sets the logger used for per-asset progress.
func WithLogger(log zerolog.Logger) Option {
	return func(a *Archiver) { a.log = log }
}

// New returns an Archiver writing below outRoot on fs.
func New(fs afero.Fs, outRoot string, opts ...Option) *Archiver {
	a := &Archiver{
		fs:     fs,
		out:    outRoot,
		copier: fsutil.NewTreeCopier(fs),
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// BucketDir returns <outRoot>/<YYYY>/<YYYY>-<MM>-<DD> for t.
func BucketDir(outRoot string, t time.Time) string {
	return filepath.Join(outRoot, t.Format("2006"), t.Format("2006-01-02"))
}

// Destination returns where a is copied to.
func (a *Archiver) Destination(as asset.Asset) string {
	return filepath.Join(BucketDir(a.out, as.ModTime), filepath.Base(as.Path))
}

// Run archives assets in order and stops at the first error. The returned
// Stats cover the assets completed before it.
func (a *Archiver) Run(assets []asset.Asset) (Stats, error) {
	var stats Stats
	for _, as := range assets {
		if _, err := a.Archive(as); err != nil {
			return stats, err
		}
		stats.Assets++
		stats.Bytes += as.Size
	}
	return stats, nil
}

// Archive ensures the date bucket exists, copies the asset into it and
// checks the copy has the recorded size. It returns the destination path.
func (a *Archiver) Archive(as asset.Asset) (string, error) {
	dir := BucketDir(a.out, as.ModTime)
	if err := fsutil.EnsureDir(a.fs, dir); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}

	dst := filepath.Join(dir, filepath.Base(as.Path))
	a.log.Info().Object("asset", as).Str("dest", dst).Msg("copy")

	if err := a.copier.Copy(as.Path, dst); err != nil {
		return dst, fmt.Errorf("copy %s to %s: %w", as.Path, dst, err)
	}

	got, err := fsutil.Size(a.fs, dst)
	if err != nil {
		return dst, fmt.Errorf("size %s: %w", dst, err)
	}
	if got != as.Size {
		return dst, &SizeMismatchError{Dest: dst, Want: as.Size, Got: got}
	}

	a.log.Info().Object("asset", as).Str("dest", dst).Msg("ok")
	return dst, nil
}
