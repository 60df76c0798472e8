// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package backend

import (
	"errors"

	"github.com/gogpu/vbo"
)

// ErrBackendNotAvailable is returned when a requested backend is not
// registered or its factory fails.
var ErrBackendNotAvailable = errors.New("backend: not available")

// Headless is a vbo.Driver that runs without a window or GL context.
type Headless interface {
	vbo.Driver

	// Name returns the driver identifier (e.g. "recorder", "wgpu").
	Name() string

	// Live returns the number of buffer handles the driver still holds.
	Live() int

	// Close releases all driver resources.
	// The driver must not be used after Close is called.
	Close()
}
