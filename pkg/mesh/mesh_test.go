package mesh

import (
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/calder/trestle/pkg/assembly"
	"github.com/calder/trestle/pkg/config"
	"github.com/calder/trestle/pkg/session"
)

func testSession(t *testing.T) *session.Session {
	t.Helper()
	asm := assembly.New()
	a := asm.AddNode(v3.Vec{})
	b := asm.AddNode(v3.Vec{X: 51.2}) // 38.2 + two 6.5 radii
	l, err := asm.AddLink(a, 38.2, v3.Vec{X: 1})
	if err != nil {
		t.Fatalf("AddLink: %v", err)
	}
	if err := asm.BindFree(l, b); err != nil {
		t.Fatalf("BindFree: %v", err)
	}
	return session.New(asm, config.Default(), nil)
}

func TestBuildProducesTriangles(t *testing.T) {
	// Coarse grid keeps the test fast; the counts only need to be sane.
	m, err := Build(testSession(t), Options{Cells: 32})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if m.IsEmpty() || m.TriangleCount() == 0 {
		t.Fatal("tessellation produced no geometry")
	}
	if len(m.Vertices) != len(m.Normals) {
		t.Errorf("vertices (%d floats) and normals (%d floats) disagree", len(m.Vertices), len(m.Normals))
	}
	if m.VertexCount() != m.TriangleCount()*3 {
		t.Errorf("vertex count %d, want %d (3 per triangle)", m.VertexCount(), m.TriangleCount()*3)
	}
	if len(m.Indices) != m.VertexCount() {
		t.Errorf("index count %d, want %d", len(m.Indices), m.VertexCount())
	}
}

func TestSolidRejectsEmptyAssembly(t *testing.T) {
	sess := session.New(assembly.New(), config.Default(), nil)
	if _, err := Solid(sess, DefaultOptions()); err == nil {
		t.Fatal("empty assembly accepted")
	}
}

func TestSolidHandlesPendingStruts(t *testing.T) {
	asm := assembly.New()
	a := asm.AddNode(v3.Vec{})
	if _, err := asm.AddLink(a, 38.2, v3.Vec{Z: 1}); err != nil {
		t.Fatalf("AddLink: %v", err)
	}
	sess := session.New(asm, config.Default(), nil)

	// A pending strut renders along its direction hint.
	s, err := Solid(sess, DefaultOptions())
	if err != nil {
		t.Fatalf("Solid: %v", err)
	}
	bb := s.BoundingBox()
	if bb.Max.Z < 38 {
		t.Errorf("bounding box %v does not cover the hinted strut", bb)
	}
}
