package archive

import (
	"errors"
	"fmt"
)

// ErrSizeMismatch is matched by every SizeMismatchError.
var ErrSizeMismatch = errors.New("size mismatch")

// SizeMismatchError reports a copy whose size differs from its source.
type SizeMismatchError struct {
	Dest string // Destination path that was measured
	Want int64  // Size recorded at discovery
	Got  int64  // Size measured after copying
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("size mismatch: source %d bytes, copy %d bytes at %s", e.Want, e.Got, e.Dest)
}

func (e *SizeMismatchError) Unwrap() error {
	return ErrSizeMismatch
}
