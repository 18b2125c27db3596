package assembly

import (
	"github.com/cockroachdb/errors"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// dirEpsilon is the threshold below which a direction vector is treated as
// zero and replaced by the default (+Z).
const dirEpsilon = 1e-9

// Sentinel errors for graph edits.
var (
	ErrNoSuchNode  = errors.New("assembly: no such node")
	ErrNoSuchLink  = errors.New("assembly: no such link")
	ErrBadLength   = errors.New("assembly: link length must be positive")
	ErrLinkBound   = errors.New("assembly: link is already bound")
	ErrLinkPending = errors.New("assembly: link is not bound")
	ErrSelfLink    = errors.New("assembly: link cannot join a node to itself")
)

// Assembly owns the node and link arenas. Handles are indices into the
// arenas and stay stable across removals; removed slots are never reused.
type Assembly struct {
	nodes []node
	links []link
}

// New returns an empty assembly.
func New() *Assembly {
	return &Assembly{}
}

// node returns the arena record for a handle, panicking on a dead handle.
// All exported accessors route through here so misuse fails loudly.
func (a *Assembly) node(id NodeID) *node {
	if !a.ValidNode(id) {
		panic(errors.Wrapf(ErrNoSuchNode, "handle %d", int(id)))
	}
	return &a.nodes[id]
}

func (a *Assembly) link(id LinkID) *link {
	if !a.ValidLink(id) {
		panic(errors.Wrapf(ErrNoSuchLink, "handle %d", int(id)))
	}
	return &a.links[id]
}

// ValidNode reports whether the handle names a live node.
func (a *Assembly) ValidNode(id NodeID) bool {
	return id >= 0 && int(id) < len(a.nodes) && a.nodes[id].alive
}

// ValidLink reports whether the handle names a live link.
func (a *Assembly) ValidLink(id LinkID) bool {
	return id >= 0 && int(id) < len(a.links) && a.links[id].alive
}

// NodeCount returns the number of live nodes.
func (a *Assembly) NodeCount() int {
	count := 0
	for i := range a.nodes {
		if a.nodes[i].alive {
			count++
		}
	}
	return count
}

// LinkCount returns the number of live links.
func (a *Assembly) LinkCount() int {
	count := 0
	for i := range a.links {
		if a.links[i].alive {
			count++
		}
	}
	return count
}

// Nodes returns the handles of all live nodes in ascending order.
func (a *Assembly) Nodes() []NodeID {
	out := make([]NodeID, 0, len(a.nodes))
	for i := range a.nodes {
		if a.nodes[i].alive {
			out = append(out, NodeID(i))
		}
	}
	return out
}

// Links returns the handles of all live links in ascending order.
func (a *Assembly) Links() []LinkID {
	out := make([]LinkID, 0, len(a.links))
	for i := range a.links {
		if a.links[i].alive {
			out = append(out, LinkID(i))
		}
	}
	return out
}

// AddNode creates a ball at the given position and returns its handle.
func (a *Assembly) AddNode(pos v3.Vec) NodeID {
	a.nodes = append(a.nodes, node{pos: pos, alive: true})
	return NodeID(len(a.nodes) - 1)
}

// AddLink creates a pending link anchored at the given node. The direction
// hint is normalized; a zero hint defaults to +Z. Links are always created
// anchored: the unanchored state is not reachable through this API.
func (a *Assembly) AddLink(anchor NodeID, length float64, dir v3.Vec) (LinkID, error) {
	if !a.ValidNode(anchor) {
		return NoLink, errors.Wrapf(ErrNoSuchNode, "anchor %d", int(anchor))
	}
	if length <= 0 {
		return NoLink, errors.Wrapf(ErrBadLength, "got %v", length)
	}
	if dir.Length() < dirEpsilon {
		dir = v3.Vec{X: 0, Y: 0, Z: 1}
	}
	a.links = append(a.links, link{
		length:    length,
		anchor:    anchor,
		free:      NoNode,
		anchorDir: dir.Normalize(),
		alive:     true,
	})
	id := LinkID(len(a.links) - 1)
	n := a.node(anchor)
	n.links = append(n.links, id)
	return id, nil
}

// BindFree attaches the free end of a pending link to a node. This is the
// single pending→bound transition; it does not move anything and does not
// check distances — that is the solver's contract, enforced by the session
// before it calls here.
func (a *Assembly) BindFree(id LinkID, target NodeID) error {
	if !a.ValidLink(id) {
		return errors.Wrapf(ErrNoSuchLink, "handle %d", int(id))
	}
	if !a.ValidNode(target) {
		return errors.Wrapf(ErrNoSuchNode, "target %d", int(target))
	}
	l := a.link(id)
	if l.free != NoNode {
		return errors.Wrapf(ErrLinkBound, "link %d", int(id))
	}
	if l.anchor == target {
		return errors.Wrapf(ErrSelfLink, "link %d, node %d", int(id), int(target))
	}
	l.free = target
	n := a.node(target)
	n.links = append(n.links, id)
	return nil
}

// ReleaseFree tears a bound link back down to pending. The direction hint
// is recomputed from the current endpoint positions so the freed strut
// keeps pointing where it was.
func (a *Assembly) ReleaseFree(id LinkID) error {
	if !a.ValidLink(id) {
		return errors.Wrapf(ErrNoSuchLink, "handle %d", int(id))
	}
	l := a.link(id)
	if l.free == NoNode {
		return errors.Wrapf(ErrLinkPending, "link %d", int(id))
	}
	dir := a.Pos(l.free).Sub(a.Pos(l.anchor))
	if dir.Length() >= dirEpsilon {
		l.anchorDir = dir.Normalize()
	}
	a.dropIncident(l.free, id)
	l.free = NoNode
	return nil
}

// RemoveLink detaches a link from both endpoints and kills its slot.
func (a *Assembly) RemoveLink(id LinkID) error {
	if !a.ValidLink(id) {
		return errors.Wrapf(ErrNoSuchLink, "handle %d", int(id))
	}
	l := a.link(id)
	if l.anchor != NoNode {
		a.dropIncident(l.anchor, id)
	}
	if l.free != NoNode {
		a.dropIncident(l.free, id)
	}
	l.anchor = NoNode
	l.free = NoNode
	l.alive = false
	return nil
}

// RemoveNode deletes a node and every link incident to it.
func (a *Assembly) RemoveNode(id NodeID) error {
	if !a.ValidNode(id) {
		return errors.Wrapf(ErrNoSuchNode, "handle %d", int(id))
	}
	n := a.node(id)
	for _, lid := range a.Incident(id) {
		if a.ValidLink(lid) {
			if err := a.RemoveLink(lid); err != nil {
				return err
			}
		}
	}
	n.links = nil
	n.alive = false
	return nil
}

// dropIncident removes one link handle from a node's incident set.
func (a *Assembly) dropIncident(nid NodeID, lid LinkID) {
	n := a.node(nid)
	for i, have := range n.links {
		if have == lid {
			n.links = append(n.links[:i], n.links[i+1:]...)
			return
		}
	}
}

// Other returns the endpoint of a bound link opposite to the given node,
// or NoNode if the link is not bound or does not touch the node.
func (a *Assembly) Other(id LinkID, from NodeID) NodeID {
	l := a.link(id)
	if l.anchor == NoNode || l.free == NoNode {
		return NoNode
	}
	switch from {
	case l.anchor:
		return l.free
	case l.free:
		return l.anchor
	}
	return NoNode
}
