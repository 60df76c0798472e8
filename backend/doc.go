// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package backend is a registry of headless vbo drivers.
//
// Driver packages that can run without a window register a factory from an
// init function, and tools pick one by name:
//
//	import _ "github.com/gogpu/vbo/backend/wgpu" // registers "noop"
//
//	d, err := backend.Open("noop")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer d.Close()
//
// # Available Backends
//
//   - "recorder": call recorder from package vbotest
//   - "noop": wgpu HAL driver on a headless noop device (build tag !nogpu)
//
// The OpenGL driver in backend/gl needs a current context and is not
// registered.
package backend
