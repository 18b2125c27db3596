package solver

import (
	"math"

	"github.com/calder/trestle/pkg/assembly"
)

// Violation reports a bound link whose endpoints sit outside tolerance of
// its required distance.
type Violation struct {
	Link assembly.LinkID
	Want float64
	Got  float64
}

// Error returns the absolute distance error of the violation.
func (v Violation) Error() float64 {
	return math.Abs(v.Got - v.Want)
}

// Audit measures every bound link in the assembly against its required
// distance and returns the violations, in ascending link-handle order.
// Read-only; used to re-check restored snapshots.
func Audit(asm *assembly.Assembly, endpointOffset, tol float64) []Violation {
	var out []Violation
	for _, lid := range asm.Links() {
		if !asm.Bound(lid) {
			continue
		}
		want := asm.Length(lid) + 2*endpointOffset
		got := asm.Pos(asm.Free(lid)).Sub(asm.Pos(asm.Anchor(lid))).Length()
		if math.Abs(got-want) > tol {
			out = append(out, Violation{Link: lid, Want: want, Got: got})
		}
	}
	return out
}
