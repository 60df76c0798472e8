// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"fmt"
	"io"

	"github.com/gogpu/vbo"
	"github.com/gogpu/vbo/backend"
	"github.com/gogpu/vbo/internal/scene"
	"github.com/gogpu/vbo/vbotest"
)

// tracedProgram is the program handle passed to the recorder.
const tracedProgram vbo.Program = 1

type recorderFrames struct {
	sc   *scene.Scene
	rec  *vbotest.Recorder
	prim *vbo.Primitive
}

func init() {
	framers = append(framers, func(sc *scene.Scene, d backend.Headless) (frameDriver, bool, error) {
		rec, ok := d.(*vbotest.Recorder)
		if !ok {
			return nil, false, nil
		}
		fd, err := newRecorderFrames(sc, rec)
		if err != nil {
			return nil, true, err
		}
		return fd, true, nil
	})
}

func newRecorderFrames(sc *scene.Scene, rec *vbotest.Recorder) (*recorderFrames, error) {
	slots, err := sc.Slots()
	if err != nil {
		return nil, err
	}
	prim, err := vbo.New(rec, tracedProgram, slots, sc.Options()...)
	if err != nil {
		return nil, err
	}
	return &recorderFrames{sc: sc, rec: rec, prim: prim}, nil
}

func (f *recorderFrames) frame(w io.Writer, _ int) error {
	f.rec.Reset()
	err := f.prim.Draw(f.sc.AttributeData(), f.sc.Indices)
	io.WriteString(w, f.rec.Trace())
	return err
}

func (f *recorderFrames) close(w io.Writer) {
	f.rec.Reset()
	f.prim.Release()
	fmt.Fprintln(w, "-- release")
	io.WriteString(w, f.rec.Trace())
	writeStats(w, f.prim)
	fmt.Fprintf(w, "live buffers: %d\n", f.rec.Live())
	f.rec.Close()
}
