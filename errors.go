// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vbo

import "errors"

// Configuration errors, returned by New.
var (
	// ErrNilDriver is returned when New is called without a driver.
	ErrNilDriver = errors.New("vbo: driver is nil")

	// ErrNoSlots is returned when a primitive is configured without attributes.
	ErrNoSlots = errors.New("vbo: at least one attribute slot is required")

	// ErrInvalidSlot is returned for a slot with an unusable layout.
	ErrInvalidSlot = errors.New("vbo: invalid attribute slot")

	// ErrDuplicateLocation is returned when two slots or constants share a
	// shader location.
	ErrDuplicateLocation = errors.New("vbo: duplicate attribute location")
)

// Precondition errors, returned by Draw before any driver call is made.
var (
	// ErrAttributeCount is returned when the number of attribute buffers
	// does not match the number of configured slots.
	ErrAttributeCount = errors.New("vbo: attribute buffer count does not match slot count")

	// ErrShapeMismatch is returned when attribute or index data is not
	// consistent with the slot layout or with the data already uploaded.
	ErrShapeMismatch = errors.New("vbo: attribute or index data shape mismatch")

	// ErrNoIndices is returned when Draw is called with an empty index sequence.
	ErrNoIndices = errors.New("vbo: index data is empty")

	// ErrReleased is returned when drawing with a released primitive.
	ErrReleased = errors.New("vbo: primitive has been released")

	// ErrConstantsUnsupported is returned when constant attributes are
	// configured but the driver cannot set generic vertex attributes.
	ErrConstantsUnsupported = errors.New("vbo: driver does not support constant attributes")
)

// Fatal resource errors. The primitive does not retry after either.
var (
	// ErrResourceExhausted is returned when the driver cannot provide the
	// requested buffer handles.
	ErrResourceExhausted = errors.New("vbo: buffer handles exhausted")

	// ErrUploadFailed is returned when buffer contents cannot be uploaded.
	ErrUploadFailed = errors.New("vbo: buffer upload failed")
)
