// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Duco van Buuren

package jetproto

import "errors"

// Error kinds of the protocol engine. All of them except ErrIndexFault are
// recoverable: the controller degrades to Off and installs the fallback
// program. ErrIndexFault means storage was addressed out of bounds and the
// controller must halt.
var (
	ErrCapacityExceeded = errors.New("program capacity exceeded")
	ErrCountMismatch    = errors.New("frame count mismatch")
	ErrUploadTimeout    = errors.New("upload timed out")
	ErrIndexFault       = errors.New("index out of bounds")

	// ErrPointDomain is returned when a coordinate cannot be packed into a
	// signed 4-bit nibble.
	ErrPointDomain = errors.New("coordinate outside PCS domain")
)
