package discover

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photo-archiver/internal/asset"
)

var (
	march5 = time.Date(2024, 3, 5, 9, 0, 0, 0, time.Local)
	june1  = time.Date(2023, 6, 1, 18, 0, 0, 0, time.Local)
)

func noCamera(string) string { return "" }

func writeFile(t *testing.T, fs afero.Fs, path string, size int, mtime time.Time) {
	t.Helper()
	require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, afero.WriteFile(fs, path, make([]byte, size), 0o644))
	require.NoError(t, fs.Chtimes(path, mtime, mtime))
}

func paths(assets []asset.Asset) []string {
	out := make([]string, 0, len(assets))
	for _, a := range assets {
		out = append(out, a.Path)
	}
	return out
}

func TestDiscoverSidecarScenario(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/in/2024/IMG_001.jpg", 100, march5)
	writeFile(t, fs, "/in/2024/jpg/IMG_001.jpg", 150, march5)
	writeFile(t, fs, "/in/2024/jpg/IMG_002.jpg", 100, march5)
	require.NoError(t, fs.Chtimes("/in/2024/jpg", march5, march5))

	assets, err := New(fs, WithCamera(noCamera)).Discover("/in")
	require.NoError(t, err)
	require.Len(t, assets, 2)

	assert.Equal(t, "/in/2024/IMG_001.jpg", assets[0].Path)
	assert.Equal(t, int64(100), assets[0].Size)
	assert.False(t, assets[0].IsDir)

	assert.Equal(t, "/in/2024/jpg", assets[1].Path)
	assert.Equal(t, int64(250), assets[1].Size)
	assert.True(t, assets[1].IsDir)
	assert.True(t, assets[1].ModTime.Equal(march5))
}

func TestDiscoverExtensions(t *testing.T) {
	fs := afero.NewMemMapFs()
	for _, name := range []string{
		"a.JPG", "b.Nef", "c.DNG", "d.jpg",
		"e.png", "f.jpeg", "README", "g.jpg.xmp", ".jpg",
	} {
		writeFile(t, fs, filepath.Join("/in", name), 10, march5)
	}

	assets, err := New(fs, WithCamera(noCamera)).Discover("/in")
	require.NoError(t, err)
	assert.Equal(t, []string{"/in/a.JPG", "/in/b.Nef", "/in/c.DNG", "/in/d.jpg"}, paths(assets))
	for _, a := range assets {
		assert.Equal(t, int64(10), a.Size)
	}
}

func TestDiscoverCollapseIsCaseSensitive(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/in/DxO/a.jpg", 1, march5)
	writeFile(t, fs, "/in/DxO/b.jpg", 2, march5)
	writeFile(t, fs, "/in/dxo/c.jpg", 3, march5)
	writeFile(t, fs, "/in/JPG/d.jpg", 4, march5)

	assets, err := New(fs, WithCamera(noCamera)).Discover("/in")
	require.NoError(t, err)
	assert.Equal(t, []string{"/in/DxO", "/in/JPG/d.jpg", "/in/dxo/c.jpg"}, paths(assets))
	assert.Equal(t, int64(3), assets[0].Size)
}

func TestDiscoverOneAssetPerSidecarDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	for i, name := range []string{"1.jpg", "2.jpg", "3.nef", "4.dng", "notes.txt"} {
		writeFile(t, fs, filepath.Join("/in/shoot/DxO", name), i+1, march5)
	}

	assets, err := New(fs, WithCamera(noCamera)).Discover("/in")
	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.Equal(t, "/in/shoot/DxO", assets[0].Path)
	assert.Equal(t, int64(1+2+3+4+5), assets[0].Size, "every byte under the directory counts")
}

func TestDiscoverCollapsedUsesDirectoryMtime(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/in/jpg/a.jpg", 5, march5)
	require.NoError(t, fs.Chtimes("/in/jpg", june1, june1))

	assets, err := New(fs, WithCamera(noCamera)).Discover("/in")
	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.True(t, assets[0].ModTime.Equal(june1))
}

func TestDiscoverRootNamedSidecar(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/card/jpg/a.jpg", 5, march5)
	writeFile(t, fs, "/card/jpg/b.jpg", 6, march5)

	assets, err := New(fs, WithCamera(noCamera)).Discover("/card/jpg")
	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.Equal(t, "/card/jpg", assets[0].Path)
	assert.Equal(t, int64(11), assets[0].Size)
}

func TestDiscoverCustomCollapse(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/in/resized/a.jpg", 5, march5)
	writeFile(t, fs, "/in/resized/b.jpg", 5, march5)
	writeFile(t, fs, "/in/jpg/c.jpg", 5, march5)

	d := New(fs,
		WithCamera(noCamera),
		WithCollapse(func(name string) bool { return name == "resized" }),
	)
	assets, err := d.Discover("/in")
	require.NoError(t, err)
	assert.Equal(t, []string{"/in/jpg/c.jpg", "/in/resized"}, paths(assets))
}

func TestDiscoverCameraOnlyForFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/in/a.nef", 5, march5)
	writeFile(t, fs, "/in/DxO/a.jpg", 5, march5)

	var asked []string
	camera := func(path string) string {
		asked = append(asked, path)
		return "NIKON Z 6"
	}

	assets, err := New(fs, WithCamera(camera)).Discover("/in")
	require.NoError(t, err)
	require.Len(t, assets, 2)
	assert.Equal(t, "", assets[0].Camera)
	assert.Equal(t, "NIKON Z 6", assets[1].Camera)
	assert.Equal(t, []string{"/in/a.nef"}, asked)
}

func TestDiscoverDefaultCameraTolerant(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/in/a.jpg", 5, march5)

	assets, err := New(fs).Discover("/in")
	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.Equal(t, "", assets[0].Camera)
}

func TestDiscoverEmpty(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/in/empty", 0o755))
	writeFile(t, fs, "/in/notes.txt", 5, march5)

	assets, err := New(fs).Discover("/in")
	require.NoError(t, err)
	assert.Empty(t, assets)
}

func TestDiscoverMissingRoot(t *testing.T) {
	_, err := New(afero.NewMemMapFs()).Discover("/missing")
	require.ErrorIs(t, err, os.ErrNotExist)
}

// unreadableFs fails to open one directory, as a permission change mid-walk would.
type unreadableFs struct {
	afero.Fs
	dir string
}

func (u unreadableFs) Open(name string) (afero.File, error) {
	if name == u.dir {
		return nil, &os.PathError{Op: "open", Path: name, Err: os.ErrPermission}
	}
	return u.Fs.Open(name)
}

func TestDiscoverTraversalError(t *testing.T) {
	mem := afero.NewMemMapFs()
	writeFile(t, mem, "/in/a/1.jpg", 5, march5)
	writeFile(t, mem, "/in/b/2.jpg", 5, march5)

	assets, err := New(unreadableFs{Fs: mem, dir: "/in/b"}, WithCamera(noCamera)).Discover("/in")
	require.ErrorIs(t, err, os.ErrPermission)
	assert.Contains(t, err.Error(), "/in/b")
	assert.Nil(t, assets, "no partial list is returned")
}

func TestDiscoverSidecarSizeError(t *testing.T) {
	mem := afero.NewMemMapFs()
	writeFile(t, mem, "/in/jpg/a.jpg", 5, march5)
	writeFile(t, mem, "/in/jpg/sub/b.jpg", 5, march5)

	_, err := New(unreadableFs{Fs: mem, dir: "/in/jpg/sub"}, WithCamera(noCamera)).Discover("/in")
	require.ErrorIs(t, err, os.ErrPermission)
	assert.Contains(t, err.Error(), "inspect /in/jpg")
}

func TestRepresentativeNoParent(t *testing.T) {
	d := New(afero.NewMemMapFs())
	_, _, err := d.representative("/")
	require.ErrorIs(t, err, ErrNoParent)
}

func TestAccepted(t *testing.T) {
	testCases := map[string]bool{
		"IMG_0001.jpg": true,
		"IMG_0001.JPG": true,
		"DSC_0001.NEF": true,
		"raw.dng":      true,
		"photo.jpeg":   false,
		"photo.png":    false,
		"jpg":          false,
		".jpg":         false,
		"":             false,
	}
	for name, want := range testCases {
		assert.Equal(t, want, Accepted(name), name)
	}
}

func TestDiscoverSymlinkedRoot(t *testing.T) {
	dir := t.TempDir()
	card := filepath.Join(dir, "card")
	require.NoError(t, os.MkdirAll(filepath.Join(card, "jpg"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(card, "a.jpg"), make([]byte, 7), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(card, "jpg", "b.jpg"), make([]byte, 5), 0o644))
	require.NoError(t, os.Symlink("card", filepath.Join(dir, "in")))
	require.NoError(t, os.Symlink("in", filepath.Join(dir, "latest")))

	for _, root := range []string{"in", "latest"} {
		t.Run(root, func(t *testing.T) {
			assets, err := New(afero.NewOsFs(), WithCamera(noCamera)).Discover(filepath.Join(dir, root))
			require.NoError(t, err)
			assert.Equal(t, []string{filepath.Join(card, "a.jpg"), filepath.Join(card, "jpg")}, paths(assets))
			assert.Equal(t, int64(7), assets[0].Size)
			assert.Equal(t, int64(5), assets[1].Size)
		})
	}
}

func TestDiscoverSymlinkLoop(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Symlink("b", filepath.Join(dir, "a")))
	require.NoError(t, os.Symlink("a", filepath.Join(dir, "b")))

	_, err := New(afero.NewOsFs(), WithCamera(noCamera)).Discover(filepath.Join(dir, "a"))
	require.Error(t, err)
}
