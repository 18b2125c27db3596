package session

import (
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/calder/trestle/pkg/assembly"
	"github.com/calder/trestle/pkg/config"
)

func unitRadiusConfig() config.Config {
	cfg := config.Default()
	cfg.NodeRadius = 1
	return cfg
}

func TestPlacementsBoundStrut(t *testing.T) {
	asm := assembly.New()
	a := asm.AddNode(v3.Vec{})
	b := asm.AddNode(v3.Vec{X: 10})
	l, _ := asm.AddLink(a, 8, v3.Vec{X: 1})
	_ = asm.BindFree(l, b)

	sess := New(asm, unitRadiusConfig(), nil)
	ps := sess.Placements()
	if len(ps) != 1 {
		t.Fatalf("placements = %d, want 1", len(ps))
	}

	p := ps[0]
	if !p.Bound {
		t.Error("bound strut reported pending")
	}
	if p.Axis != (v3.Vec{X: 1}) {
		t.Errorf("axis = %v, want {1 0 0}", p.Axis)
	}
	// The strut body spans between the ball surfaces, one radius in from
	// each center.
	if p.Start != (v3.Vec{X: 1}) {
		t.Errorf("start = %v, want {1 0 0}", p.Start)
	}
	if p.End != (v3.Vec{X: 9}) {
		t.Errorf("end = %v, want {9 0 0}", p.End)
	}
	if p.Mid != (v3.Vec{X: 5}) {
		t.Errorf("mid = %v, want {5 0 0}", p.Mid)
	}
}

func TestPlacementsPendingStrutFollowsHint(t *testing.T) {
	asm := assembly.New()
	a := asm.AddNode(v3.Vec{X: 10})
	_, _ = asm.AddLink(a, 4, v3.Vec{Y: 2}) // non-unit hint

	sess := New(asm, unitRadiusConfig(), nil)
	ps := sess.Placements()
	if len(ps) != 1 {
		t.Fatalf("placements = %d, want 1", len(ps))
	}

	p := ps[0]
	if p.Bound {
		t.Error("pending strut reported bound")
	}
	if !p.Axis.Equals(v3.Vec{Y: 1}, 1e-12) {
		t.Errorf("axis = %v, want normalized hint {0 1 0}", p.Axis)
	}
	if !p.Start.Equals(v3.Vec{X: 10, Y: 1}, 1e-12) {
		t.Errorf("start = %v, want {10 1 0}", p.Start)
	}
	if !p.End.Equals(v3.Vec{X: 10, Y: 5}, 1e-12) {
		t.Errorf("end = %v, want {10 5 0}", p.End)
	}
}

func TestRefreshDependentsScopesToTouchedNodes(t *testing.T) {
	asm := assembly.New()
	hub := asm.AddNode(v3.Vec{})
	rim := asm.AddNode(v3.Vec{X: 10})
	far := asm.AddNode(v3.Vec{X: 100})

	l1, _ := asm.AddLink(hub, 8, v3.Vec{X: 1})
	_ = asm.BindFree(l1, rim)
	l2, _ := asm.AddLink(far, 8, v3.Vec{X: 1}) // unrelated pending strut

	sess := New(asm, unitRadiusConfig(), nil)
	ps := sess.RefreshDependents([]assembly.NodeID{hub})
	if len(ps) != 1 || ps[0].Link != l1 {
		t.Fatalf("refresh touched %v, want only link %d (not %d)", ps, l1, l2)
	}

	// Dead nodes in the input are skipped, not fatal.
	ps = sess.RefreshDependents([]assembly.NodeID{assembly.NodeID(99), far})
	if len(ps) != 1 || ps[0].Link != l2 {
		t.Fatalf("refresh = %v, want only link %d", ps, l2)
	}
}

func TestRefreshDependentsOrderIsAscending(t *testing.T) {
	asm := assembly.New()
	hub := asm.AddNode(v3.Vec{})
	for i := 0; i < 4; i++ {
		_, _ = asm.AddLink(hub, 8, v3.Vec{Z: 1})
	}

	sess := New(asm, unitRadiusConfig(), nil)
	ps := sess.RefreshDependents([]assembly.NodeID{hub})
	if len(ps) != 4 {
		t.Fatalf("placements = %d, want 4", len(ps))
	}
	for i := 1; i < len(ps); i++ {
		if ps[i-1].Link >= ps[i].Link {
			t.Fatalf("placements not in ascending link order: %v then %v", ps[i-1].Link, ps[i].Link)
		}
	}
}
