// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogl

package gl

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/gogpu/vbo"
)

// Shader errors.
var (
	// ErrCompile is returned when a shader fails to compile.
	ErrCompile = errors.New("gl: shader compilation failed")

	// ErrLink is returned when a program fails to link.
	ErrLink = errors.New("gl: program link failed")
)

// LinkProgram compiles a vertex and fragment shader and links them into a
// program. Compile and link diagnostics are included in the returned error.
// Intermediate shader objects are deleted on every path.
func (d *Driver) LinkProgram(vertexSrc, fragmentSrc string) (vbo.Program, error) {
	vs, err := compileShader(gl.VERTEX_SHADER, vertexSrc)
	if err != nil {
		return 0, fmt.Errorf("vertex shader: %w", err)
	}
	defer gl.DeleteShader(vs)

	fs, err := compileShader(gl.FRAGMENT_SHADER, fragmentSrc)
	if err != nil {
		return 0, fmt.Errorf("fragment shader: %w", err)
	}
	defer gl.DeleteShader(fs)

	program := gl.CreateProgram()
	if program == 0 {
		return 0, fmt.Errorf("%w: glCreateProgram returned 0", ErrLink)
	}
	gl.AttachShader(program, vs)
	gl.AttachShader(program, fs)
	gl.LinkProgram(program)

	var linked int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &linked)
	if linked == gl.FALSE {
		var length int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &length)
		log := infoLog(length, func(size int32, buf *uint8) {
			gl.GetProgramInfoLog(program, size, nil, buf)
		})
		gl.DeleteProgram(program)
		vbo.Logger().Warn("gl: link failed", "log", log)
		return 0, fmt.Errorf("%w: %s", ErrLink, log)
	}

	gl.DetachShader(program, vs)
	gl.DetachShader(program, fs)
	vbo.Logger().Debug("gl: program linked", "program", program)
	return vbo.Program(program), nil
}

// DeleteProgram deletes a program returned by LinkProgram.
func (d *Driver) DeleteProgram(p vbo.Program) {
	if p != 0 {
		gl.DeleteProgram(uint32(p))
	}
}

func compileShader(kind uint32, src string) (uint32, error) {
	shader := gl.CreateShader(kind)
	if shader == 0 {
		return 0, fmt.Errorf("%w: glCreateShader returned 0", ErrCompile)
	}

	if !strings.HasSuffix(src, "\x00") {
		src += "\x00"
	}
	csrc, free := gl.Strs(src)
	gl.ShaderSource(shader, 1, csrc, nil)
	free()
	gl.CompileShader(shader)

	var compiled int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &compiled)
	if compiled == gl.FALSE {
		var length int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &length)
		log := infoLog(length, func(size int32, buf *uint8) {
			gl.GetShaderInfoLog(shader, size, nil, buf)
		})
		gl.DeleteShader(shader)
		vbo.Logger().Warn("gl: compile failed", "log", log)
		return 0, fmt.Errorf("%w: %s", ErrCompile, log)
	}
	return shader, nil
}

// infoLog reads a diagnostic log of the given length (including the
// terminating NUL) into a buffer that lives only for this call.
func infoLog(length int32, read func(size int32, buf *uint8)) string {
	if length <= 1 {
		return "(no log)"
	}
	buf := make([]uint8, length)
	read(length, &buf[0])
	return strings.TrimRight(string(buf), "\x00\n")
}
