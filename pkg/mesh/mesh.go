// Package mesh tessellates an assembly into triangle geometry: a sphere
// per ball and a cylinder along each strut body, unioned into one solid
// and rendered by marching cubes. The output feeds the studio viewport
// and the STL exporter.
package mesh

import (
	"math"

	"github.com/cockroachdb/errors"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/calder/trestle/pkg/session"
)

// defaultCells controls marching cubes tessellation resolution.
const defaultCells = 120

// Options tune the tessellation.
type Options struct {
	// Cells is the marching-cubes grid resolution along the longest axis.
	Cells int

	// StrutRadius is the strut body radius. Zero derives it from the ball
	// radius.
	StrutRadius float64
}

// DefaultOptions returns the stock tessellation options.
func DefaultOptions() Options {
	return Options{Cells: defaultCells}
}

// Mesh is a flat triangle mesh suitable for rendering or export.
// Vertices and Normals carry 3 floats per vertex, Indices 3 entries per
// triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty reports whether the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Solid builds the SDF model of a session's assembly: one sphere per ball
// at its current position, one cylinder per strut spanning the placement
// between the ball surfaces.
func Solid(sess *session.Session, opts Options) (sdf.SDF3, error) {
	asm := sess.Assembly()
	if asm.NodeCount() == 0 {
		return nil, errors.New("mesh: empty assembly")
	}

	ballR := sess.Config().NodeRadius
	strutR := opts.StrutRadius
	if strutR <= 0 {
		strutR = ballR * 0.4
	}
	if strutR <= 0 {
		strutR = 1 // radius-zero configs still get visible struts
	}
	if ballR <= 0 {
		ballR = strutR
	}

	var parts []sdf.SDF3
	for _, nid := range asm.Nodes() {
		s, err := sdf.Sphere3D(ballR)
		if err != nil {
			return nil, errors.Wrap(err, "mesh: ball")
		}
		parts = append(parts, sdf.Transform3D(s, sdf.Translate3d(asm.Pos(nid))))
	}

	for _, pl := range sess.Placements() {
		length := pl.End.Sub(pl.Start).Length()
		if length <= 0 {
			continue
		}
		c, err := sdf.Cylinder3D(length, strutR, 0)
		if err != nil {
			return nil, errors.Wrap(err, "mesh: strut")
		}
		// Cylinder3D is centered on the origin along Z; swing it onto the
		// strut axis, then drop it at the midpoint.
		m := sdf.Translate3d(pl.Mid).Mul(rotateZTo(pl.Axis))
		parts = append(parts, sdf.Transform3D(c, m))
	}

	return sdf.Union3D(parts...), nil
}

// rotateZTo builds the rotation taking +Z onto the given unit axis via
// polar and azimuthal angles.
func rotateZTo(axis v3.Vec) sdf.M44 {
	theta := math.Acos(math.Max(-1, math.Min(1, axis.Z)))
	phi := math.Atan2(axis.Y, axis.X)
	return sdf.RotateZ(phi).Mul(sdf.RotateY(theta))
}

// Build tessellates a session's assembly into a triangle mesh.
func Build(sess *session.Session, opts Options) (*Mesh, error) {
	s, err := Solid(sess, opts)
	if err != nil {
		return nil, err
	}
	if opts.Cells <= 0 {
		opts.Cells = defaultCells
	}

	renderer := render.NewMarchingCubesUniform(opts.Cells)
	triangles := render.ToTriangles(s, renderer)

	m := &Mesh{
		Vertices: make([]float32, 0, len(triangles)*9),
		Normals:  make([]float32, 0, len(triangles)*9),
		Indices:  make([]uint32, 0, len(triangles)*3),
	}
	for i, tri := range triangles {
		n := tri.Normal()
		nx, ny, nz := float32(n.X), float32(n.Y), float32(n.Z)
		for j := 0; j < 3; j++ {
			v := tri[j]
			m.Vertices = append(m.Vertices, float32(v.X), float32(v.Y), float32(v.Z))
			m.Normals = append(m.Normals, nx, ny, nz)
			m.Indices = append(m.Indices, uint32(i*3+j))
		}
	}
	return m, nil
}

// ExportSTL tessellates a session's assembly and writes it as an STL file.
func ExportSTL(path string, sess *session.Session, opts Options) error {
	s, err := Solid(sess, opts)
	if err != nil {
		return err
	}
	if opts.Cells <= 0 {
		opts.Cells = defaultCells
	}
	render.ToSTL(s, path, render.NewMarchingCubesUniform(opts.Cells))
	return nil
}
