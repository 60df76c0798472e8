// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package scene loads YAML descriptions of a single indexed draw: window
// settings, attribute slots with their vertex data, constant attributes,
// indices and shader sources for each backend.
package scene

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"golang.org/x/image/math/f32"

	"github.com/gogpu/vbo"
	"github.com/gogpu/vbo/mesh"
)

// Default window size.
const (
	DefaultWidth  = 640
	DefaultHeight = 480
)

// ErrUnknownScene is returned by Builtin for names it does not know.
var ErrUnknownScene = errors.New("scene: unknown built-in scene")

//go:embed scenes/*.yaml
var builtin embed.FS

// Scene is a decoded scene file.
type Scene struct {
	Name        string      `yaml:"name"`
	Title       string      `yaml:"title"`
	Width       int         `yaml:"width"`
	Height      int         `yaml:"height"`
	Clear       [4]float32  `yaml:"clear"`
	IndexFormat string      `yaml:"index_format"`
	Attributes  []Attribute `yaml:"attributes"`
	Constants   []Constant  `yaml:"constants"`
	Indices     []uint32    `yaml:"indices"`
	Mesh        *Mesh       `yaml:"mesh"`
	Shaders     Shaders     `yaml:"shaders"`
}

// Mesh generates a position slot at location 0, a color slot at location 1
// and the indices from a built-in shape. It cannot be combined with
// explicit attributes or indices.
type Mesh struct {
	// Shape is "triangle" or "quad".
	Shape string `yaml:"shape"`
	// Size is the half extent of a quad. Defaults to 0.5.
	Size float32 `yaml:"size"`
	// Color fills every vertex of a quad. Defaults to opaque white.
	Color *[4]float32 `yaml:"color"`
	// Offset translates the shape in clip space.
	Offset [2]float32 `yaml:"offset"`
}

// Attribute is one attribute slot and its vertex data.
type Attribute struct {
	Name       string    `yaml:"name"`
	Location   uint32    `yaml:"location"`
	Components int       `yaml:"components"`
	Type       string    `yaml:"type"`
	Normalized bool      `yaml:"normalized"`
	Stride     int       `yaml:"stride"`
	Data       []float32 `yaml:"data"`
}

// Constant is a generic vertex attribute value held for every vertex.
type Constant struct {
	Location uint32     `yaml:"location"`
	Value    [4]float32 `yaml:"value"`
}

// Shaders holds the per-backend shader sources.
type Shaders struct {
	GLSL GLSL `yaml:"glsl"`
	WGSL WGSL `yaml:"wgsl"`
}

// GLSL is a vertex and fragment shader pair for the GL backend.
type GLSL struct {
	Vertex   string `yaml:"vertex"`
	Fragment string `yaml:"fragment"`
}

// WGSL is a single WGSL module for the wgpu backend.
type WGSL struct {
	Source        string `yaml:"source"`
	VertexEntry   string `yaml:"vs_entry"`
	FragmentEntry string `yaml:"fs_entry"`
}

// Parse decodes and validates a scene. Unknown fields are rejected.
func Parse(data []byte) (*Scene, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Scene
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("scene: decode: %w", err)
	}
	s.applyDefaults()
	if err := s.expandMesh(); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads and parses a scene file.
func Load(filename string) (*Scene, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return s, nil
}

// Builtin returns an embedded scene by name.
func Builtin(name string) (*Scene, error) {
	data, err := builtin.ReadFile(path.Join("scenes", name+".yaml"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q (have %s)", ErrUnknownScene, name, strings.Join(Names(), ", "))
		}
		return nil, fmt.Errorf("scene: %w", err)
	}
	return Parse(data)
}

// Names lists the embedded scenes in sorted order.
func Names() []string {
	entries, _ := builtin.ReadDir("scenes")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	slices.Sort(names)
	return names
}

func (s *Scene) applyDefaults() {
	if s.Width == 0 {
		s.Width = DefaultWidth
	}
	if s.Height == 0 {
		s.Height = DefaultHeight
	}
	if s.Title == "" {
		s.Title = s.Name
	}
}

func (s *Scene) expandMesh() error {
	if s.Mesh == nil {
		return nil
	}
	if len(s.Attributes) > 0 || len(s.Indices) > 0 {
		return fmt.Errorf("scene %q: mesh cannot be combined with attributes or indices", s.Name)
	}

	var m mesh.Mesh
	switch s.Mesh.Shape {
	case "triangle":
		m = mesh.Triangle()
	case "quad":
		size := s.Mesh.Size
		if size == 0 {
			size = 0.5
		}
		color := f32.Vec4{1, 1, 1, 1}
		if s.Mesh.Color != nil {
			color = f32.Vec4(*s.Mesh.Color)
		}
		m = mesh.Quad(size, color)
	default:
		return fmt.Errorf("scene %q: unknown mesh shape %q", s.Name, s.Mesh.Shape)
	}
	if err := m.Validate(); err != nil {
		return fmt.Errorf("scene %q: %w", s.Name, err)
	}
	if off := s.Mesh.Offset; off != [2]float32{} {
		m.Transform(f32.Aff3{1, 0, off[0], 0, 1, off[1]})
	}

	s.Attributes = []Attribute{
		{Name: "position", Location: 0, Components: 3, Data: mesh.Positions(m.Positions)},
		{Name: "color", Location: 1, Components: 4, Data: mesh.Colors(m.Colors)},
	}
	s.Indices = m.Indices
	return nil
}

// Validate checks that the scene describes a drawable primitive. Deeper
// shape checks happen in vbo.Primitive.Draw.
func (s *Scene) Validate() error {
	if s.Width < 0 || s.Height < 0 {
		return fmt.Errorf("scene %q: invalid size %dx%d", s.Name, s.Width, s.Height)
	}
	if len(s.Attributes) == 0 {
		return fmt.Errorf("scene %q: no attributes", s.Name)
	}
	if len(s.Indices) == 0 {
		return fmt.Errorf("scene %q: no indices", s.Name)
	}
	if _, err := s.Slots(); err != nil {
		return fmt.Errorf("scene %q: %w", s.Name, err)
	}
	if _, err := vbo.ParseIndexFormat(s.IndexFormat); err != nil {
		return fmt.Errorf("scene %q: %w", s.Name, err)
	}
	return nil
}

// Slots returns the attribute slots in file order.
func (s *Scene) Slots() ([]vbo.AttributeSlot, error) {
	slots := make([]vbo.AttributeSlot, len(s.Attributes))
	for i, a := range s.Attributes {
		et, err := vbo.ParseElementType(a.Type)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", a.Name, err)
		}
		slots[i] = vbo.AttributeSlot{
			Name:       a.Name,
			Location:   a.Location,
			Components: a.Components,
			Type:       et,
			Normalized: a.Normalized,
			Stride:     a.Stride,
		}
		if err := slots[i].Validate(); err != nil {
			return nil, err
		}
	}
	return slots, nil
}

// AttributeData returns the vertex data of every slot.
func (s *Scene) AttributeData() []vbo.AttributeData {
	attrs := make([]vbo.AttributeData, len(s.Attributes))
	for i, a := range s.Attributes {
		attrs[i] = vbo.AttributeData{Slot: i, Data: a.Data}
	}
	return attrs
}

// Options returns the primitive options the scene implies: index format,
// constant attributes and a label.
func (s *Scene) Options() []vbo.Option {
	// Validate has already accepted the format.
	f, _ := vbo.ParseIndexFormat(s.IndexFormat)
	opts := []vbo.Option{vbo.WithIndexFormat(f), vbo.WithLabel(s.Name)}
	for _, c := range s.Constants {
		opts = append(opts, vbo.WithConstant(c.Location, c.Value))
	}
	return opts
}
