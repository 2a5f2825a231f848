package core

// Clone returns a deep copy of the graph: nodes, edges with all slices
// detached, and the POI registry. Mutating either side never shows through
// to the other, which makes clones safe carriers for what-if planning.
// Complexity: O(V + E + P).
func (g *Graph) Clone() *Graph {
	clone := NewGraph()

	g.muNode.RLock()
	for id, n := range g.nodes {
		stored := *n
		clone.nodes[id] = &stored
	}
	for id, t := range g.pois {
		clone.pois[id] = t
	}
	g.muNode.RUnlock()

	g.muEdge.RLock()
	for from, tos := range g.out {
		for to, e := range tos {
			stored := copyEdge(e)
			if clone.out[from] == nil {
				clone.out[from] = make(map[string]*Edge)
			}
			if clone.in[to] == nil {
				clone.in[to] = make(map[string]*Edge)
			}
			clone.out[from][to] = &stored
			clone.in[to][from] = &stored
		}
	}
	clone.edgeCount = g.edgeCount
	g.muEdge.RUnlock()

	return clone
}
