// Package discover walks an input tree and turns camera output into a flat,
// traversal-ordered list of assets.
//
// Accepted files are matched on extension (jpg, dng, nef; any case). A file
// whose parent directory is a sidecar directory (by default one named exactly
// "jpg" or "DxO") is represented by that directory, so derived images are
// archived as one unit rather than file by file.
package discover

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"photo-archiver/internal/asset"
	"photo-archiver/internal/exifmeta"
	"photo-archiver/internal/fsutil"
)

// ErrNoParent is returned when an accepted file has no parent component.
var ErrNoParent = errors.New("no parent directory")

// acceptedExts contains supported photo extensions (lowercase, with dot).
var acceptedExts = map[string]bool{
	".jpg": true,
	".dng": true,
	".nef": true,
}

// CollapsePredicate reports whether a directory name marks a sidecar
// directory whose contents are archived as a single asset.
type CollapsePredicate func(name string) bool

// SidecarDirs is the default CollapsePredicate. Names are case-sensitive.
func SidecarDirs(name string) bool {
	return name == "jpg" || name == "DxO"
}

// Accepted reports whether a file name carries a supported photo extension.
// Names that are only an extension (".jpg") have none.
func Accepted(name string) bool {
	ext := filepath.Ext(name)
	if ext == name {
		return false
	}
	return acceptedExts[strings.ToLower(ext)]
}

// Discoverer finds assets on an afero.Fs.
type Discoverer struct {
	fs       afero.Fs
	collapse CollapsePredicate
	camera   func(path string) string
	log      zerolog.Logger
}

// Option configures a Discoverer.
type Option func(*Discoverer)

// WithCollapse replaces the sidecar directory predicate.
func WithCollapse(p CollapsePredicate) Option {
	return func(d *Discoverer) { d.collapse = p }
}

// WithCamera replaces the camera annotator used for file assets.
func WithCamera(fn func(path string) string) Option {
	return func(d *Discoverer) { d.camera = fn }
}

// WithLogger sets the logger; discovered assets are logged at debug level.
func WithLogger(log zerolog.Logger) Option {
	return func(d *Discoverer) { d.log = log }
}

// New returns a Discoverer on fs using SidecarDirs and EXIF camera lookup.
func New(fs afero.Fs, opts ...Option) *Discoverer {
	d := &Discoverer{
		fs:       fs,
		collapse: SidecarDirs,
		camera:   exifmeta.Annotator(fs),
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Discover walks root and returns one asset per representative path in
// traversal order. Any unreadable entry, or any representative path whose
// metadata or size cannot be read, aborts the walk and no assets are
// returned.
func (d *Discoverer) Discover(root string) ([]asset.Asset, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if root, err = resolveRoot(d.fs, root); err != nil {
		return nil, fmt.Errorf("resolve %s: %w", root, err)
	}

	var assets []asset.Asset
	seen := make(map[string]struct{})

	err = afero.Walk(d.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("walk %s: %w", path, err)
		}
		if info.IsDir() || !info.Mode().IsRegular() || !Accepted(info.Name()) {
			return nil
		}

		rep, isDir, err := d.representative(path)
		if err != nil {
			return err
		}
		if _, ok := seen[rep]; ok {
			return nil
		}
		seen[rep] = struct{}{}

		a, err := d.inspect(rep, isDir)
		if err != nil {
			return fmt.Errorf("inspect %s: %w", rep, err)
		}
		d.log.Debug().Object("asset", a).Msg("discovered")
		assets = append(assets, a)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return assets, nil
}

// maxLinkHops bounds symlink resolution of the walk root.
const maxLinkHops = 40

// resolveRoot follows root while it is a symlink, since the walk itself does
// not descend through a linked root.
func resolveRoot(fs afero.Fs, root string) (string, error) {
	reader, ok := fs.(afero.LinkReader)
	if !ok {
		return root, nil
	}
	for i := 0; i < maxLinkHops; i++ {
		info, err := fsutil.Lstat(fs, root)
		if err != nil {
			return root, err
		}
		if info.Mode()&os.ModeSymlink == 0 {
			return root, nil
		}
		target, err := reader.ReadlinkIfPossible(root)
		if err != nil {
			return root, err
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(root), target)
		}
		root = filepath.Clean(target)
	}
	return root, fmt.Errorf("too many levels of symbolic links")
}

// representative returns the path archived for an accepted file: its parent
// when the parent is a sidecar directory, otherwise the file itself.
func (d *Discoverer) representative(path string) (string, bool, error) {
	parent := filepath.Dir(path)
	if parent == path {
		return "", false, fmt.Errorf("%w: %s", ErrNoParent, path)
	}
	if d.collapse(filepath.Base(parent)) {
		return parent, true, nil
	}
	return path, false, nil
}

func (d *Discoverer) inspect(path string, isDir bool) (asset.Asset, error) {
	info, err := d.fs.Stat(path)
	if err != nil {
		return asset.Asset{}, err
	}

	a := asset.Asset{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime().Local(),
		IsDir:   isDir,
	}
	if isDir {
		if a.Size, err = fsutil.Size(d.fs, path); err != nil {
			return asset.Asset{}, err
		}
	} else {
		a.Camera = d.camera(path)
	}
	return a, nil
}
