package solver

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/calder/trestle/pkg/assembly"
)

// PlanEntry is one node's slice of a solve attempt.
type PlanEntry struct {
	Original  v3.Vec
	Candidate v3.Vec
	Stiffness float64
	Locked    bool
}

// Plan maps each node in a solve to its original and candidate position.
// A plan is committed in full by Apply or discarded in full; it is never
// partially applied.
type Plan map[assembly.NodeID]*PlanEntry

// Validate re-measures every constraint against the candidate positions,
// independently of whatever the solver reported. It returns the largest
// absolute error and whether all errors stay within maxAllowed. This second
// check guards against the degraded-success fallback admitting a structure
// the caller would consider broken.
func (p Plan) Validate(constraints []Constraint, maxAllowed float64) (maxErr float64, ok bool) {
	for _, c := range constraints {
		ea, eb := p[c.A], p[c.B]
		if ea == nil || eb == nil {
			return math.Inf(1), false
		}
		err := math.Abs(eb.Candidate.Sub(ea.Candidate).Length() - c.Distance)
		if err > maxErr {
			maxErr = err
		}
	}
	return maxErr, maxErr <= maxAllowed
}

// Apply writes candidate positions back to the assembly. Only nodes that
// moved by more than tol are touched. Validation must happen before Apply;
// nothing here re-checks constraints.
//
// Returns the number of nodes written.
func (p Plan) Apply(asm *assembly.Assembly, tol float64) int {
	moved := 0
	for id, e := range p {
		if e.Candidate.Sub(e.Original).Length() <= tol {
			continue
		}
		asm.SetPos(id, e.Candidate)
		moved++
	}
	return moved
}

// MovedNodes returns the handles of nodes whose candidate position differs
// from the original by more than tol.
func (p Plan) MovedNodes(tol float64) []assembly.NodeID {
	var out []assembly.NodeID
	for id, e := range p {
		if e.Candidate.Sub(e.Original).Length() > tol {
			out = append(out, id)
		}
	}
	return out
}
