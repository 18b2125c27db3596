package assembly

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// LinkID is a stable handle into the assembly's link arena.
type LinkID int

// NoLink marks an absent link reference.
const NoLink LinkID = -1

// link is the arena record for a strut. Length is fixed at creation.
// anchorDir is only meaningful while the free end is unbound; once bound,
// orientation is derived from the two endpoint positions.
type link struct {
	length    float64
	anchor    NodeID
	free      NodeID
	anchorDir v3.Vec
	alive     bool
}

// Length returns the fixed length of the link.
func (a *Assembly) Length(id LinkID) float64 {
	return a.link(id).length
}

// Anchor returns the anchor node handle, or NoNode.
func (a *Assembly) Anchor(id LinkID) NodeID {
	return a.link(id).anchor
}

// Free returns the free-end node handle, or NoNode while pending.
func (a *Assembly) Free(id LinkID) NodeID {
	return a.link(id).free
}

// AnchorDir returns the outward direction hint of a pending link.
func (a *Assembly) AnchorDir(id LinkID) v3.Vec {
	return a.link(id).anchorDir
}

// SetAnchorDir replaces the direction hint of a pending link. The vector is
// normalized; a near-zero vector is ignored.
func (a *Assembly) SetAnchorDir(id LinkID, dir v3.Vec) {
	if dir.Length() < dirEpsilon {
		return
	}
	a.link(id).anchorDir = dir.Normalize()
}

// Bound reports whether both ends of the link are attached.
func (a *Assembly) Bound(id LinkID) bool {
	l := a.link(id)
	return l.anchor != NoNode && l.free != NoNode
}

// Pending reports whether the link has an anchor but no free-end node.
func (a *Assembly) Pending(id LinkID) bool {
	l := a.link(id)
	return l.anchor != NoNode && l.free == NoNode
}
