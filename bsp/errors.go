// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrMalformedEntity marks entity text or property values that cannot be
// used. It never aborts a load.
var ErrMalformedEntity = errors.New("malformed entity")

// FormatError reports a file that does not follow the BSP30 layout. It is
// always fatal.
type FormatError struct {
	Lump   string // lump name or "header"
	Offset int64  // byte offset into the file, -1 if unknown
	Err    error
}

func formatErrorf(lump string, offset int64, format string, args ...any) *FormatError {
	return &FormatError{Lump: lump, Offset: offset, Err: errors.Errorf(format, args...)}
}

func (e *FormatError) Error() string {
	if e.Offset < 0 {
		return fmt.Sprintf("bad %s: %v", e.Lump, e.Err)
	}
	return fmt.Sprintf("bad %s at offset %d: %v", e.Lump, e.Offset, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// LoadError is the single error a failed Load returns. Phase is the phase
// the loader was trying to reach.
type LoadError struct {
	Phase Phase
	Path  string
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading %s failed in phase %v: %v", e.Path, e.Phase, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
