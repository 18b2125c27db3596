package assembly

import "sort"

// ReachableFrom returns the connected component(s) containing the seed
// nodes, traversing only fully-bound links. Pending links do not conduct:
// a node reachable only through an unbound strut is excluded. Dead seeds
// are skipped; an isolated live seed yields itself.
//
// BFS with a visited set; the result is sorted ascending so callers get a
// deterministic iteration order.
func (a *Assembly) ReachableFrom(seeds ...NodeID) []NodeID {
	visited := make(map[NodeID]bool)
	var queue []NodeID

	for _, seed := range seeds {
		if a.ValidNode(seed) && !visited[seed] {
			visited[seed] = true
			queue = append(queue, seed)
		}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, lid := range a.node(current).links {
			if !a.ValidLink(lid) || !a.Bound(lid) {
				continue
			}
			next := a.Other(lid, current)
			if next == NoNode || visited[next] {
				continue
			}
			visited[next] = true
			queue = append(queue, next)
		}
	}

	out := make([]NodeID, 0, len(visited))
	for id := range visited {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Neighbors returns the nodes adjacent to id through bound links, sorted
// ascending, each neighbor listed once.
func (a *Assembly) Neighbors(id NodeID) []NodeID {
	seen := make(map[NodeID]bool)
	for _, lid := range a.node(id).links {
		if !a.ValidLink(lid) || !a.Bound(lid) {
			continue
		}
		if other := a.Other(lid, id); other != NoNode {
			seen[other] = true
		}
	}
	out := make([]NodeID, 0, len(seen))
	for nid := range seen {
		out = append(out, nid)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
