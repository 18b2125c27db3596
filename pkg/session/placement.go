package session

import (
	"sort"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/calder/trestle/pkg/assembly"
)

// Placement is the derived geometric pose of one strut, ready for a
// renderer: the span between the surfaces of its end balls (or, for a
// pending strut, from the anchor surface along the direction hint).
type Placement struct {
	Link  assembly.LinkID
	Start v3.Vec
	End   v3.Vec
	Mid   v3.Vec
	Axis  v3.Vec
	Bound bool
}

// RefreshDependents recomputes the placement of every link incident to the
// given nodes. Pure recomputation, no solving: bound struts derive their
// pose from current endpoint positions, pending struts keep their direction
// hint (renormalized). Used after drags and after a successful connection.
//
// Results come back in ascending link-handle order.
func (s *Session) RefreshDependents(nodes []assembly.NodeID) []Placement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshLocked(nodes)
}

// Placements returns the placement of every live link in the assembly.
func (s *Session) Placements() []Placement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.placeLinks(s.asm.Links())
}

func (s *Session) refreshLocked(nodes []assembly.NodeID) []Placement {
	touched := make(map[assembly.LinkID]bool)
	for _, nid := range nodes {
		if !s.asm.ValidNode(nid) {
			continue
		}
		for _, lid := range s.asm.Incident(nid) {
			touched[lid] = true
		}
	}
	links := make([]assembly.LinkID, 0, len(touched))
	for lid := range touched {
		links = append(links, lid)
	}
	sort.Slice(links, func(i, j int) bool { return links[i] < links[j] })
	return s.placeLinks(links)
}

func (s *Session) placeLinks(links []assembly.LinkID) []Placement {
	radius := s.cfg.NodeRadius
	out := make([]Placement, 0, len(links))
	for _, lid := range links {
		if !s.asm.ValidLink(lid) {
			continue
		}
		anchorPos := s.asm.Pos(s.asm.Anchor(lid))

		var axis v3.Vec
		bound := s.asm.Bound(lid)
		if bound {
			span := s.asm.Pos(s.asm.Free(lid)).Sub(anchorPos)
			if span.Length() > 0 {
				axis = span.Normalize()
			} else {
				axis = s.asm.AnchorDir(lid)
			}
		} else {
			// Renormalize the stored hint so accumulated edits cannot let
			// it drift off unit length.
			s.asm.SetAnchorDir(lid, s.asm.AnchorDir(lid))
			axis = s.asm.AnchorDir(lid)
		}

		start := anchorPos.Add(axis.MulScalar(radius))
		end := start.Add(axis.MulScalar(s.asm.Length(lid)))
		out = append(out, Placement{
			Link:  lid,
			Start: start,
			End:   end,
			Mid:   start.Add(end).MulScalar(0.5),
			Axis:  axis,
			Bound: bound,
		})
	}
	return out
}
