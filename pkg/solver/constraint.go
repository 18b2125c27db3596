package solver

import (
	"sort"

	"github.com/calder/trestle/pkg/assembly"
)

// Constraint is an ephemeral equality-distance requirement between two
// nodes. Link names the bound link that produced it, or NoLink for the
// tentative constraint of a proposed connection. Constraints are
// recomputed for every solve attempt and never persisted.
type Constraint struct {
	A, B     assembly.NodeID
	Distance float64
	Link     assembly.LinkID
}

// Tentative reports whether this constraint represents a not-yet-bound link.
func (c Constraint) Tentative() bool {
	return c.Link == assembly.NoLink
}

// Collect enumerates one constraint per fully-bound link whose endpoints
// both lie in nodes, then appends the tentative constraint last. The
// required distance of a link constraint is its length plus endpointOffset
// at each end (the physical node radius). Each link contributes exactly one
// constraint no matter how often its endpoints appear.
//
// Emission order is deterministic: ascending node handle, then ascending
// link handle within a node, tentative last.
func Collect(asm *assembly.Assembly, nodes []assembly.NodeID, tentative Constraint, endpointOffset float64) []Constraint {
	inSet := make(map[assembly.NodeID]bool, len(nodes))
	for _, id := range nodes {
		inSet[id] = true
	}

	ordered := make([]assembly.NodeID, len(nodes))
	copy(ordered, nodes)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })

	seen := make(map[assembly.LinkID]bool)
	var out []Constraint
	for _, nid := range ordered {
		incident := asm.Incident(nid)
		sort.Slice(incident, func(i, j int) bool { return incident[i] < incident[j] })
		for _, lid := range incident {
			if seen[lid] || !asm.ValidLink(lid) || !asm.Bound(lid) {
				continue
			}
			a, b := asm.Anchor(lid), asm.Free(lid)
			if !inSet[a] || !inSet[b] {
				continue
			}
			seen[lid] = true
			out = append(out, Constraint{
				A:        a,
				B:        b,
				Distance: asm.Length(lid) + 2*endpointOffset,
				Link:     lid,
			})
		}
	}

	out = append(out, tentative)
	return out
}
