// Package exifmeta reads camera identification from EXIF metadata embedded
// in JPEG files and TIFF-based raw files (DNG, NEF).
package exifmeta

import (
	"io"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/spf13/afero"
)

// MaxHeader is how much of a file is read when looking for EXIF. Make and
// Model live in the first IFD, which cameras write near the start; raw files
// would otherwise be buffered whole by the TIFF decoder.
const MaxHeader = 256 << 10

// Camera returns "<Make> <Model>" for the image at path. Either part may be
// missing; an error is returned when the file has no decodable EXIF block.
func Camera(fs afero.Fs, path string) (string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	x, err := exif.Decode(io.LimitReader(f, MaxHeader))
	if err != nil {
		return "", err
	}

	parts := make([]string, 0, 2)
	for _, name := range []exif.FieldName{exif.Make, exif.Model} {
		if v := field(x, name); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " "), nil
}

func field(x *exif.Exif, name exif.FieldName) string {
	tag, err := x.Get(name)
	if err != nil {
		return ""
	}
	v, err := tag.StringVal()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(strings.TrimRight(v, "\x00"))
}

// Annotator adapts Camera to a best-effort lookup that reports "" on failure.
func Annotator(fs afero.Fs) func(path string) string {
	return func(path string) string {
		camera, err := Camera(fs, path)
		if err != nil {
			return ""
		}
		return camera
	}
}
