// Package asset defines the unit of archival: a single photo file or a
// single collapsed sidecar directory.
package asset

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// TimeLayout is used when an Asset is shown to a human.
const TimeLayout = "2006-01-02 15:04:05 -0700"

// Asset holds what discovery learned about one representative path.
type Asset struct {
	Path    string    // Absolute representative path (file or directory)
	Size    int64     // Byte length, recursive total for directories
	ModTime time.Time // Local modification time of Path
	IsDir   bool      // Path is a collapsed sidecar directory
	Camera  string    // EXIF make and model, empty when unknown
}

// String renders the asset as "<path> <mtime> <size>".
func (a Asset) String() string {
	return fmt.Sprintf("%s %s %d", a.Path, a.ModTime.Format(TimeLayout), a.Size)
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (a Asset) MarshalZerologObject(e *zerolog.Event) {
	e.Str("path", a.Path).
		Int64("size", a.Size).
		Time("mtime", a.ModTime).
		Bool("dir", a.IsDir)
	if a.Camera != "" {
		e.Str("camera", a.Camera)
	}
}
