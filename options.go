// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vbo

import "log/slog"

// Option configures a Primitive during creation.
//
// Example:
//
//	prim, err := vbo.New(drv, prog, slots,
//	    vbo.WithIndexFormat(vbo.IndexUint32),
//	    vbo.WithLabel("terrain"),
//	)
type Option func(*options)

// options holds optional configuration for Primitive creation.
type options struct {
	indexFormat IndexFormat
	constants   []ConstantAttribute
	label       string
	logger      *slog.Logger
}

func defaultOptions() options {
	return options{
		indexFormat: IndexUint16,
	}
}

// WithIndexFormat sets the encoding of the index buffer. The default is
// IndexUint16.
func WithIndexFormat(f IndexFormat) Option {
	return func(o *options) {
		o.indexFormat = f
	}
}

// WithConstant feeds location from a fixed value on every draw. The driver
// must implement ConstantDriver.
func WithConstant(location uint32, value [4]float32) Option {
	return func(o *options) {
		o.constants = append(o.constants, ConstantAttribute{Location: location, Value: value})
	}
}

// WithLabel sets a debug name used in log records.
func WithLabel(label string) Option {
	return func(o *options) {
		o.label = label
	}
}

// WithLogger sets a logger for this primitive instead of the package logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}
