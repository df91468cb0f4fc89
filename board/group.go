package board

// group is the liberty/size bookkeeping for one stone group, keyed by its
// representative (root) point in Board.groupRoot. Invariant: the union
// of points reachable via same-color adjacency from any member equals
// the group, and the liberty count here is always exact.
type group struct {
	size int
	libs map[Vertex]struct{}
}

func newGroup() *group {
	return &group{libs: make(map[Vertex]struct{}, 4)}
}

func (g *group) clone() *group {
	libs := make(map[Vertex]struct{}, len(g.libs))
	for v := range g.libs {
		libs[v] = struct{}{}
	}
	return &group{size: g.size, libs: libs}
}

func (g *group) liberties() int { return len(g.libs) }
