// SPDX-License-Identifier: MIT
// Package: terranav/navstore
//
// errors.go — sentinel errors for the navstore package.

package navstore

import "errors"

// ErrBadMagic indicates a stream that is not a navstore grid.
var ErrBadMagic = errors.New("navstore: bad magic")

// ErrUnsupportedVersion indicates a format version this build cannot read.
var ErrUnsupportedVersion = errors.New("navstore: unsupported version")

// ErrCorrupt indicates a body that cannot be decoded into a valid grid.
var ErrCorrupt = errors.New("navstore: corrupt grid data")
