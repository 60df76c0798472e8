// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogl

// Command triangle opens a window and draws a scene with a vbo.Primitive on
// the OpenGL backend.
//
// Usage:
//
//	triangle [-scene colorful] [-file scene.yaml] [-frames 0] [-v]
//
// Buffers are allocated and uploaded on the first frame; later frames only
// rebind and draw.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/gogpu/vbo"
	glbackend "github.com/gogpu/vbo/backend/gl"
	"github.com/gogpu/vbo/internal/scene"
)

func init() {
	// GL contexts are bound to the thread that made them current.
	runtime.LockOSThread()
}

func main() {
	var (
		sceneName = flag.String("scene", "colorful", "built-in scene: "+strings.Join(scene.Names(), ", "))
		file      = flag.String("file", "", "scene YAML file (overrides -scene)")
		frames    = flag.Int("frames", 0, "exit after this many frames (0 runs until the window closes)")
		verbose   = flag.Bool("v", false, "log driver activity")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	vbo.SetLogger(logger)

	if err := run(*sceneName, *file, *frames); err != nil {
		logger.Error("triangle failed", "err", err)
		os.Exit(1)
	}
}

func loadScene(name, file string) (*scene.Scene, error) {
	if file != "" {
		return scene.Load(file)
	}
	return scene.Builtin(name)
}

func run(sceneName, file string, frames int) error {
	sc, err := loadScene(sceneName, file)
	if err != nil {
		return err
	}
	slots, err := sc.Slots()
	if err != nil {
		return err
	}

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw init: %w", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(sc.Width, sc.Height, sc.Title, nil, nil)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	defer window.Destroy()
	window.MakeContextCurrent()
	glfw.SwapInterval(1)

	driver, err := glbackend.New()
	if err != nil {
		return err
	}
	defer driver.Close()

	program, err := driver.LinkProgram(sc.Shaders.GLSL.Vertex, sc.Shaders.GLSL.Fragment)
	if err != nil {
		return fmt.Errorf("scene %q: %w", sc.Name, err)
	}
	defer driver.DeleteProgram(program)

	prim, err := vbo.New(driver, program, slots, sc.Options()...)
	if err != nil {
		return err
	}
	defer prim.Release()

	attrs := sc.AttributeData()
	bg := sc.Clear
	for n := 0; !window.ShouldClose(); n++ {
		if frames > 0 && n >= frames {
			break
		}
		w, h := window.GetFramebufferSize()
		gl.Viewport(0, 0, int32(w), int32(h))
		gl.ClearColor(bg[0], bg[1], bg[2], bg[3])
		gl.Clear(gl.COLOR_BUFFER_BIT)

		if err := prim.Draw(attrs, sc.Indices); err != nil {
			return fmt.Errorf("frame %d: %w", n, err)
		}

		window.SwapBuffers()
		glfw.PollEvents()
		if window.GetKey(glfw.KeyEscape) == glfw.Press {
			window.SetShouldClose(true)
		}
	}

	st := prim.Stats()
	vbo.Logger().Info("triangle: done", "scene", sc.Name, "draws", st.Draws, "uploads", st.Uploads)
	return nil
}
