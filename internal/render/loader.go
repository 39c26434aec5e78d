package render

import (
	"fmt"

	"github.com/fogleman/fauxgl"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/relabs-tech/leap_spacecraft/internal/scene"
)

// SpacecraftSize is the half-extent, in world units, a loaded model is
// scaled to.
const SpacecraftSize = 120

// MeshLoader loads STL, OBJ, PLY and 3DS models with fauxgl and fits them
// into a cube of side 2*Size centred on the origin.
type MeshLoader struct {
	Size float64
}

// LoadMesh implements scene.Loader.
func (l MeshLoader) LoadMesh(path string) (*scene.Mesh, error) {
	m, err := fauxgl.LoadMesh(path)
	if err != nil {
		return nil, &scene.LoadError{Path: path, Err: err}
	}
	if len(m.Triangles) == 0 {
		return nil, &scene.LoadError{Path: path, Err: fmt.Errorf("model has no triangles")}
	}

	size := l.Size
	if size <= 0 {
		size = SpacecraftSize
	}
	m.BiUnitCube()
	m.Transform(fauxgl.Scale(fauxgl.V(size, size, size)))

	return fromFauxgl(path, m), nil
}

// Planet sphere tessellation, degrees per latitude and longitude step.
const planetStep = 10

// PlanetMesh returns a unit lat/lng sphere for the planet.
func PlanetMesh() *scene.Mesh {
	return fromFauxgl(scene.PlanetName, fauxgl.NewLatLngSphere(planetStep, planetStep))
}

func fromFauxgl(name string, m *fauxgl.Mesh) *scene.Mesh {
	out := &scene.Mesh{Name: name, Triangles: make([]scene.Triangle, 0, len(m.Triangles))}
	for _, t := range m.Triangles {
		out.Triangles = append(out.Triangles, scene.Triangle{
			vec(t.V1.Position), vec(t.V2.Position), vec(t.V3.Position),
		})
	}
	return out
}

func toFauxgl(m *scene.Mesh) *fauxgl.Mesh {
	tris := make([]*fauxgl.Triangle, 0, len(m.Triangles))
	for _, t := range m.Triangles {
		tris = append(tris, fauxgl.NewTriangleForPoints(fv(t[0]), fv(t[1]), fv(t[2])))
	}
	return fauxgl.NewTriangleMesh(tris)
}

func vec(v fauxgl.Vector) r3.Vec {
	return r3.Vec{X: v.X, Y: v.Y, Z: v.Z}
}

func fv(v r3.Vec) fauxgl.Vector {
	return fauxgl.V(v.X, v.Y, v.Z)
}
