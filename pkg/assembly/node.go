package assembly

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// NodeID is a stable handle into the assembly's node arena.
type NodeID int

// NoNode is the zero-value-adjacent sentinel for "no node".
const NoNode NodeID = -1

// node is the arena record for a ball. Positions are authoritative here;
// links never cache endpoint positions.
type node struct {
	pos    v3.Vec
	locked bool
	links  []LinkID // incident links, bound or pending
	alive  bool
}

// Pos returns the current position of a node. Panics on a dead handle;
// use Valid to probe.
func (a *Assembly) Pos(id NodeID) v3.Vec {
	return a.node(id).pos
}

// SetPos writes a node position directly, bypassing the solver. This is the
// drag primitive for the presentation layer; it does not re-solve anything.
func (a *Assembly) SetPos(id NodeID, p v3.Vec) {
	a.node(id).pos = p
}

// Locked reports whether the node is pinned against solver displacement.
func (a *Assembly) Locked(id NodeID) bool {
	return a.node(id).locked
}

// SetLocked pins or unpins a node.
func (a *Assembly) SetLocked(id NodeID, locked bool) {
	a.node(id).locked = locked
}

// Incident returns the handles of every link incident to the node, in
// creation order. The returned slice is a copy.
func (a *Assembly) Incident(id NodeID) []LinkID {
	n := a.node(id)
	out := make([]LinkID, len(n.links))
	copy(out, n.links)
	return out
}

// BoundDegree counts the fully-bound links incident to the node. This is
// the connectivity measure the solver turns into stiffness.
func (a *Assembly) BoundDegree(id NodeID) int {
	degree := 0
	for _, lid := range a.node(id).links {
		if a.Bound(lid) {
			degree++
		}
	}
	return degree
}
