// Package logging builds the console logger shared by the command and the
// archive pipeline.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// TimeFormat is the timestamp layout of console lines.
const TimeFormat = "2006-01-02 15:04:05"

// New returns a leveled console logger writing to w. Colors are used only
// when w is a terminal and neither NO_COLOR nor TERM=dumb is set. Every line
// carries the run id.
func New(w io.Writer, runID string) zerolog.Logger {
	cw := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: TimeFormat,
		NoColor:    !colorEnabled(w),
	}
	return zerolog.New(cw).With().Timestamp().Str("run", runID).Logger()
}

func colorEnabled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" || strings.ToLower(os.Getenv("TERM")) == "dumb" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isTerminal(f)
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
