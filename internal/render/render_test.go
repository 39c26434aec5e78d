package render

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/relabs-tech/leap_spacecraft/internal/orientation"
	"github.com/relabs-tech/leap_spacecraft/internal/scene"
)

const tetraSTL = `solid tetra
facet normal 0 0 -1
 outer loop
  vertex 0 0 0
  vertex 0 4 0
  vertex 4 0 0
 endloop
endfacet
facet normal 0 -1 0
 outer loop
  vertex 0 0 0
  vertex 4 0 0
  vertex 0 0 4
 endloop
endfacet
facet normal -1 0 0
 outer loop
  vertex 0 0 0
  vertex 0 0 4
  vertex 0 4 0
 endloop
endfacet
facet normal 1 1 1
 outer loop
  vertex 4 0 0
  vertex 0 4 0
  vertex 0 0 4
 endloop
endfacet
endsolid tetra
`

func TestMeshLoader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tetra.stl")
	require.NoError(t, os.WriteFile(path, []byte(tetraSTL), 0o644))

	m, err := MeshLoader{Size: 10}.LoadMesh(path)
	require.NoError(t, err)
	assert.Equal(t, path, m.Name)
	require.Len(t, m.Triangles, 4)

	min, max := m.Bounds()
	extent := math.Max(max.X-min.X, math.Max(max.Y-min.Y, max.Z-min.Z))
	assert.InDelta(t, 20, extent, 1e-6)
	assert.InDelta(t, 0, (max.X+min.X)/2, 1e-6)
}

func TestMeshLoaderMissingFile(t *testing.T) {
	_, err := MeshLoader{}.LoadMesh(filepath.Join(t.TempDir(), "nope.stl"))
	var le *scene.LoadError
	require.True(t, errors.As(err, &le))
	assert.Contains(t, le.Path, "nope.stl")
}

func TestSoftwareRender(t *testing.T) {
	s := scene.New(scene.Options{Width: 64, Height: 48, FOV: 70, WithPlanet: true, PlanetMesh: PlanetMesh()})
	s.Hemisphere.Intensity = 0.6
	s.Directional.Intensity = 1
	craft := scene.NewSpacecraft(PlanetMesh())
	craft.Scale = 100
	craft.SetRotationFromQuaternion(orientation.Compose(orientation.Resting()))
	s.Add(craft)

	r := NewSoftware(64, 48, 0)
	img, n := r.Frame()
	assert.Nil(t, img)
	assert.Zero(t, n)

	require.NoError(t, r.Render(s))
	img, n = r.Frame()
	require.NotNil(t, img)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 48, img.Bounds().Dy())

	r.SetSize(32, 16)
	r.SetSize(0, 10)
	require.NoError(t, r.Render(s))
	img, _ = r.Frame()
	assert.Equal(t, 32, img.Bounds().Dx())
	assert.Equal(t, 16, img.Bounds().Dy())
}

func TestSoftwareInterval(t *testing.T) {
	s := scene.New(scene.Options{Width: 8, Height: 8, FOV: 70})
	r := NewSoftware(8, 8, 100*time.Millisecond)
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return clock }

	require.NoError(t, r.Render(s))
	clock = clock.Add(50 * time.Millisecond)
	require.NoError(t, r.Render(s))
	_, n := r.Frame()
	assert.Equal(t, int64(1), n)

	clock = clock.Add(60 * time.Millisecond)
	require.NoError(t, r.Render(s))
	_, n = r.Frame()
	assert.Equal(t, int64(2), n)
}

func TestPlanetMesh(t *testing.T) {
	m := PlanetMesh()
	assert.Equal(t, scene.PlanetName, m.Name)
	require.NotEmpty(t, m.Triangles)
	for _, tri := range m.Triangles {
		for _, v := range tri {
			assert.InDelta(t, 1, r3.Norm(v), 1e-9)
		}
	}
	min, max := m.Bounds()
	assert.InDelta(t, -1, min.Y, 1e-9)
	assert.InDelta(t, 1, max.Y, 1e-9)
}

func TestSoftwareDropsRemovedMeshes(t *testing.T) {
	s := scene.New(scene.Options{Width: 16, Height: 16, FOV: 70, WithPlanet: true, PlanetMesh: PlanetMesh()})
	r := NewSoftware(16, 16, 0)

	first := scene.NewSpacecraft(PlanetMesh())
	s.Add(first)
	require.NoError(t, r.Render(s))
	assert.Len(t, r.meshes, 2)

	// reload: the old spacecraft mesh is replaced
	s.Remove(first)
	second := scene.NewSpacecraft(PlanetMesh())
	s.Add(second)
	require.NoError(t, r.Render(s))
	assert.Len(t, r.meshes, 2)
	assert.NotContains(t, r.meshes, first.Mesh)
	assert.Contains(t, r.meshes, second.Mesh)

	s.Remove(second)
	require.NoError(t, r.Render(s))
	assert.Len(t, r.meshes, 1)
}
