package solver

import (
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/calder/trestle/pkg/assembly"
)

func TestPlanValidate(t *testing.T) {
	a, b := assembly.NodeID(0), assembly.NodeID(1)
	plan := Plan{
		a: {Candidate: v3.Vec{}},
		b: {Candidate: v3.Vec{X: 3}},
	}

	maxErr, ok := plan.Validate([]Constraint{{A: a, B: b, Distance: 3}}, 1e-3)
	if !ok || maxErr > 1e-3 {
		t.Errorf("satisfied constraint rejected: maxErr=%g ok=%v", maxErr, ok)
	}

	maxErr, ok = plan.Validate([]Constraint{{A: a, B: b, Distance: 5}}, 1e-3)
	if ok {
		t.Error("violated constraint accepted")
	}
	if math.Abs(maxErr-2) > 1e-9 {
		t.Errorf("maxErr = %g, want 2", maxErr)
	}

	// A constraint endpoint missing from the plan is an automatic failure.
	_, ok = plan.Validate([]Constraint{{A: a, B: assembly.NodeID(9), Distance: 1}}, 100)
	if ok {
		t.Error("constraint with missing endpoint accepted")
	}
}

func TestPlanApplyWritesOnlyMovedNodes(t *testing.T) {
	asm := assembly.New()
	still := asm.AddNode(v3.Vec{X: 1})
	moved := asm.AddNode(v3.Vec{X: 5})

	plan := Plan{
		still: {Original: v3.Vec{X: 1}, Candidate: v3.Vec{X: 1 + 1e-6}},
		moved: {Original: v3.Vec{X: 5}, Candidate: v3.Vec{X: 7}},
	}

	n := plan.Apply(asm, 1e-3)
	if n != 1 {
		t.Errorf("moved count = %d, want 1", n)
	}
	// Sub-tolerance drift is not written back: the stored position stays
	// bit-identical.
	if got := asm.Pos(still); got != (v3.Vec{X: 1}) {
		t.Errorf("still node = %v, want {1 0 0}", got)
	}
	if got := asm.Pos(moved); got != (v3.Vec{X: 7}) {
		t.Errorf("moved node = %v, want {7 0 0}", got)
	}
}

func TestPlanMovedNodes(t *testing.T) {
	a, b := assembly.NodeID(0), assembly.NodeID(1)
	plan := Plan{
		a: {Original: v3.Vec{}, Candidate: v3.Vec{}},
		b: {Original: v3.Vec{}, Candidate: v3.Vec{Y: 2}},
	}
	got := plan.MovedNodes(1e-3)
	if len(got) != 1 || got[0] != b {
		t.Errorf("MovedNodes = %v, want [%d]", got, b)
	}
}

func TestAuditFindsViolatedLinks(t *testing.T) {
	asm := assembly.New()
	a := asm.AddNode(v3.Vec{})
	b := asm.AddNode(v3.Vec{X: 10})
	c := asm.AddNode(v3.Vec{X: 25})

	good, _ := asm.AddLink(a, 10, v3.Vec{X: 1})
	_ = asm.BindFree(good, b)
	bad, _ := asm.AddLink(b, 10, v3.Vec{X: 1})
	_ = asm.BindFree(bad, c)
	_, _ = asm.AddLink(c, 10, v3.Vec{X: 1}) // pending, never audited

	vs := Audit(asm, 0, 1e-3)
	if len(vs) != 1 {
		t.Fatalf("violations = %d, want 1", len(vs))
	}
	if vs[0].Link != bad {
		t.Errorf("violated link = %d, want %d", vs[0].Link, bad)
	}
	if math.Abs(vs[0].Error()-5) > 1e-9 {
		t.Errorf("violation error = %g, want 5", vs[0].Error())
	}

	// Endpoint offsets shift the required distance.
	if vs := Audit(asm, 2.5, 1e-3); len(vs) != 1 || vs[0].Link != good {
		t.Errorf("with offset 2.5 the 10-apart link should violate: %+v", vs)
	}
}
