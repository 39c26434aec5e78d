// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package scene is the object graph the demo mutates and the renderer
// draws: one camera, a hemisphere and a directional light, and a handful
// of meshes. It has no rendering code of its own.
package scene

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Renderer draws a scene into some output surface.
type Renderer interface {
	Render(s *Scene) error
	SetSize(width, height int)
}

// Loader loads a mesh from a model file.
type Loader interface {
	LoadMesh(path string) (*Mesh, error)
}

// LoadError reports a model that could not be loaded. The scene keeps
// rendering without it.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load model %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Triangle is three vertex positions in model space.
type Triangle [3]r3.Vec

// Mesh is renderer-independent triangle geometry.
type Mesh struct {
	Name      string
	Triangles []Triangle
}

// Bounds returns the axis-aligned bounding box of the mesh.
func (m *Mesh) Bounds() (min, max r3.Vec) {
	if len(m.Triangles) == 0 {
		return r3.Vec{}, r3.Vec{}
	}
	min = m.Triangles[0][0]
	max = min
	for _, t := range m.Triangles {
		for _, v := range t {
			min = r3.Vec{X: math.Min(min.X, v.X), Y: math.Min(min.Y, v.Y), Z: math.Min(min.Z, v.Z)}
			max = r3.Vec{X: math.Max(max.X, v.X), Y: math.Max(max.Y, v.Y), Z: math.Max(max.Z, v.Z)}
		}
	}
	return min, max
}

// Color is linear RGB in [0, 1].
type Color struct {
	R, G, B float64
}

// Object is a mesh placed in the world.
type Object struct {
	Name        string
	Mesh        *Mesh
	Position    r3.Vec
	Scale       float64
	Orientation quat.Number
	Color       Color
	Shininess   float64
}

// SetRotationFromQuaternion replaces the object's orientation.
func (o *Object) SetRotationFromQuaternion(q quat.Number) {
	o.Orientation = q
}

// Camera is a perspective camera tilted about its X axis.
type Camera struct {
	FOV      float64 // vertical, degrees
	Aspect   float64
	Near     float64
	Far      float64
	Position r3.Vec
	TiltX    float64 // radians
}

// LightKind tells the renderer how to interpret a Light.
type LightKind int

const (
	Hemisphere LightKind = iota
	Directional
)

// Light is either a hemisphere light (sky Color over GroundColor) or a
// directional light shining from Position towards the origin.
type Light struct {
	Kind        LightKind
	Color       Color
	GroundColor Color
	Intensity   float64
	Position    r3.Vec
}

// Scene holds everything that gets drawn.
type Scene struct {
	Camera      *Camera
	Hemisphere  *Light
	Directional *Light
	Objects     []*Object

	Width  int
	Height int
}

// Add puts o into the scene if it is not already there.
func (s *Scene) Add(o *Object) {
	for _, have := range s.Objects {
		if have == o {
			return
		}
	}
	s.Objects = append(s.Objects, o)
}

// Remove takes o out of the scene.
func (s *Scene) Remove(o *Object) {
	for i, have := range s.Objects {
		if have == o {
			s.Objects = append(s.Objects[:i], s.Objects[i+1:]...)
			return
		}
	}
}

// Find returns the object with the given name, or nil.
func (s *Scene) Find(name string) *Object {
	for _, o := range s.Objects {
		if o.Name == name {
			return o
		}
	}
	return nil
}

// Resize updates the output size and the camera aspect ratio. Calling it
// on a nil scene, or with a degenerate size, does nothing.
func (s *Scene) Resize(width, height int) {
	if s == nil || width <= 0 || height <= 0 {
		return
	}
	s.Width, s.Height = width, height
	if s.Camera != nil {
		s.Camera.Aspect = float64(width) / float64(height)
	}
}
