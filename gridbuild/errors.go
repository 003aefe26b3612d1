// SPDX-License-Identifier: MIT
// Package: terranav/gridbuild
//
// errors.go — sentinel errors for the gridbuild package.
//
// Callers branch with errors.Is. Context is attached with %w at the
// return site; sentinels never carry formatted parameters.

package gridbuild

import "errors"

// ErrNilQuery indicates that New was given a nil geometry query.
var ErrNilQuery = errors.New("gridbuild: geometry query is nil")

// ErrEmptyArea indicates that the scan area is unset or covers no cell
// centre.
var ErrEmptyArea = errors.New("gridbuild: empty scan area")

// ErrInvalidConfig indicates parameters that cannot drive a build.
var ErrInvalidConfig = errors.New("gridbuild: invalid configuration")
