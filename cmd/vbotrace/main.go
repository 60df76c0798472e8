// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command vbotrace draws a scene for a number of frames without a window
// and prints the driver calls each frame issued.
//
// Usage:
//
//	vbotrace [-scene colorful] [-file scene.yaml] [-frames 3] [-driver recorder|noop] [-v]
//
// The recorder driver prints GL-style calls. The noop driver runs the wgpu
// backend on a headless device and prints the render pass commands.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/gogpu/vbo"
	"github.com/gogpu/vbo/backend"
	"github.com/gogpu/vbo/internal/scene"
)

type config struct {
	scene  string
	file   string
	frames int
	driver string
}

func main() {
	var cfg config
	flag.StringVar(&cfg.scene, "scene", "colorful", "built-in scene: "+strings.Join(scene.Names(), ", "))
	flag.StringVar(&cfg.file, "file", "", "scene YAML file (overrides -scene)")
	flag.IntVar(&cfg.frames, "frames", 3, "number of frames to draw")
	flag.StringVar(&cfg.driver, "driver", "recorder", "driver: "+strings.Join(backend.Available(), ", "))
	verbose := flag.Bool("v", false, "log driver activity to stderr")
	flag.Parse()

	if *verbose {
		vbo.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	if err := run(os.Stdout, cfg); err != nil {
		fmt.Fprintln(os.Stderr, "vbotrace:", err)
		os.Exit(1)
	}
}

// frameDriver runs one scene on a particular backend.
type frameDriver interface {
	// frame draws once and writes what the backend did.
	frame(w io.Writer, n int) error
	// close releases the primitive, reports totals and closes the driver.
	close(w io.Writer)
}

func run(w io.Writer, cfg config) error {
	if cfg.frames < 1 {
		return fmt.Errorf("frames must be positive, got %d", cfg.frames)
	}
	sc, err := loadScene(cfg.scene, cfg.file)
	if err != nil {
		return err
	}

	d, err := backend.Open(cfg.driver)
	if err != nil {
		return err
	}
	fd, err := newFrames(sc, d)
	if err != nil {
		d.Close()
		return err
	}

	fmt.Fprintf(w, "scene %s, driver %s, %d frames\n", sc.Name, cfg.driver, cfg.frames)
	for n := 1; n <= cfg.frames; n++ {
		fmt.Fprintf(w, "-- frame %d\n", n)
		if err := fd.frame(w, n); err != nil {
			fd.close(w)
			return fmt.Errorf("frame %d: %w", n, err)
		}
	}
	fd.close(w)
	return nil
}

// framers build frame drivers for the backends this binary can trace. Each
// reports ok=false for drivers it does not handle.
var framers []func(sc *scene.Scene, d backend.Headless) (fd frameDriver, ok bool, err error)

func newFrames(sc *scene.Scene, d backend.Headless) (frameDriver, error) {
	for _, f := range framers {
		if fd, ok, err := f(sc, d); ok {
			return fd, err
		}
	}
	return nil, fmt.Errorf("driver %q cannot trace scenes", d.Name())
}

func loadScene(name, file string) (*scene.Scene, error) {
	if file != "" {
		return scene.Load(file)
	}
	return scene.Builtin(name)
}

func writeStats(w io.Writer, p *vbo.Primitive) {
	st := p.Stats()
	fmt.Fprintf(w, "stats: allocations=%d uploads=%d draws=%d\n", st.Allocations, st.Uploads, st.Draws)
}
