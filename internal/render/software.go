// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package render

import (
	"image"
	"math"
	"sync"
	"time"

	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/relabs-tech/leap_spacecraft/internal/orientation"
	"github.com/relabs-tech/leap_spacecraft/internal/scene"
)

// Supersampling factor; frames are drawn larger and downsampled to
// smooth the edges.
const supersample = 2

var background = fauxgl.HexColor("#05070d")

// Software renders the scene on the CPU with fauxgl and keeps the latest
// frame for readers on other goroutines.
type Software struct {
	// Interval is the minimum time between two rendered frames; ticks in
	// between are skipped. Zero renders every tick.
	Interval time.Duration

	width, height int
	meshes        map[*scene.Mesh]*fauxgl.Mesh
	last          time.Time
	now           func() time.Time

	mu     sync.RWMutex
	frame  image.Image
	frames int64
}

// NewSoftware returns a renderer producing width x height frames.
func NewSoftware(width, height int, interval time.Duration) *Software {
	return &Software{
		Interval: interval,
		width:    width,
		height:   height,
		meshes:   make(map[*scene.Mesh]*fauxgl.Mesh),
		now:      time.Now,
	}
}

// SetSize implements scene.Renderer.
func (r *Software) SetSize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.width, r.height = width, height
}

// Size returns the output size.
func (r *Software) Size() (int, int) {
	return r.width, r.height
}

// Render implements scene.Renderer.
func (r *Software) Render(s *scene.Scene) error {
	now := r.now()
	if r.Interval > 0 && !r.last.IsZero() && now.Sub(r.last) < r.Interval {
		return nil
	}
	r.last = now

	img := r.draw(s)

	r.mu.Lock()
	r.frame = img
	r.frames++
	r.mu.Unlock()
	return nil
}

// Frame returns the latest rendered frame, or nil before the first one.
func (r *Software) Frame() (image.Image, int64) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frame, r.frames
}

func (r *Software) draw(s *scene.Scene) image.Image {
	w, h := r.width*supersample, r.height*supersample
	ctx := fauxgl.NewContext(w, h)
	ctx.ClearColorBufferWith(background)

	cam := s.Camera
	eye := fv(cam.Position)
	look := orientation.Rotate(orientation.AxisAngle(orientation.AxisX, cam.TiltX), r3.Vec{Z: -1})
	up := orientation.Rotate(orientation.AxisAngle(orientation.AxisX, cam.TiltX), r3.Vec{Y: 1})
	aspect := float64(r.width) / float64(r.height)
	matrix := fauxgl.LookAt(eye, fv(r3.Add(cam.Position, look)), fv(up)).Perspective(cam.FOV, aspect, cam.Near, cam.Far)

	light := fauxgl.V(1, 1, 1).Normalize()
	if d := s.Directional; d != nil && r3.Norm(d.Position) > 0 {
		light = fv(r3.Unit(d.Position))
	}

	live := make(map[*scene.Mesh]bool, len(s.Objects))
	for _, o := range s.Objects {
		if o.Mesh == nil || len(o.Mesh.Triangles) == 0 {
			continue
		}
		live[o.Mesh] = true
		shader := fauxgl.NewPhongShader(matrix, light, eye)
		shader.ObjectColor = color(o.Color)
		shader.AmbientColor = ambient(s.Hemisphere)
		shader.DiffuseColor = diffuse(s.Directional)
		shader.SpecularColor = diffuse(s.Directional)
		if o.Shininess > 0 {
			shader.SpecularPower = o.Shininess
		}
		ctx.Shader = shader
		ctx.DrawMesh(r.transformed(o))
	}

	// meshes of removed objects, e.g. a replaced spacecraft model
	for m := range r.meshes {
		if !live[m] {
			delete(r.meshes, m)
		}
	}

	return resize.Resize(uint(r.width), uint(r.height), ctx.Image(), resize.Bilinear)
}

// transformed returns a world-space copy of the object's mesh.
func (r *Software) transformed(o *scene.Object) *fauxgl.Mesh {
	base, ok := r.meshes[o.Mesh]
	if !ok {
		base = toFauxgl(o.Mesh)
		base.SmoothNormalsThreshold(fauxgl.Radians(30))
		r.meshes[o.Mesh] = base
	}

	scale := o.Scale
	if scale == 0 {
		scale = 1
	}
	axis, angle := orientation.ToAxisAngle(o.Orientation)
	model := fauxgl.Identity().
		Scale(fauxgl.V(scale, scale, scale)).
		Rotate(fv(axis), angle).
		Translate(fv(o.Position))

	m := base.Copy()
	m.Transform(model)
	return m
}

func color(c scene.Color) fauxgl.Color {
	return fauxgl.Color{R: c.R, G: c.G, B: c.B, A: 1}
}

// ambient folds the hemisphere light into fauxgl's single ambient term,
// averaging sky and ground.
func ambient(l *scene.Light) fauxgl.Color {
	if l == nil {
		return fauxgl.Black
	}
	k := clamp01(l.Intensity)
	return fauxgl.Color{
		R: (l.Color.R + l.GroundColor.R) / 2 * k,
		G: (l.Color.G + l.GroundColor.G) / 2 * k,
		B: (l.Color.B + l.GroundColor.B) / 2 * k,
		A: 1,
	}
}

func diffuse(l *scene.Light) fauxgl.Color {
	if l == nil {
		return fauxgl.Black
	}
	k := clamp01(l.Intensity)
	return fauxgl.Color{R: l.Color.R * k, G: l.Color.G * k, B: l.Color.B * k, A: 1}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
