package mesh

import (
	"github.com/iceisfun/tinmesh/algorithm/robust"
	"github.com/iceisfun/tinmesh/quadedge"
	"github.com/iceisfun/tinmesh/types"
)

// locate implements the stochastic walk of spec component 4: starting
// from seed, repeatedly test the three edges of the current triangle
// and cross to the dual of whichever one the query point lies to the
// right of. For a ghost triangle there is only one edge with two real
// endpoints (the hull edge); if the point is on the interior side of
// that edge we step back across it, otherwise the ghost triangle itself
// is returned, marking p as outside the hull. A step cap guards against
// cycling on degenerate input and falls back to a full linear scan.
func (m *Mesh) locate(seed quadedge.EdgeID, p types.Point) quadedge.EdgeID {
	if seed == quadedge.NilEdge || !m.pool.IsLive(seed) {
		seed = m.anyLiveEdge()
	}
	if seed == quadedge.NilEdge {
		return quadedge.NilEdge
	}

	e := seed
	cap := 2*m.pool.Count() + 16
	thr := m.thresholds.HalfPlaneThreshold

	for step := 0; step < cap; step++ {
		verts := m.pool.TriangleVertices(e)
		edges := m.pool.TriangleEdges(e)

		ghostIdx := -1
		for i, v := range verts {
			if v == types.NilVertex {
				ghostIdx = i
				break
			}
		}

		if ghostIdx == -1 {
			next := quadedge.NilEdge
			pick := m.rng.intn(3)
			for k := 0; k < 3; k++ {
				i := (pick + k) % 3
				a := m.vertexPoint(verts[i])
				b := m.vertexPoint(verts[(i+1)%3])
				if robust.OrientTol(a, b, p, thr) < 0 {
					next = edges[i]
					break
				}
			}
			if next == quadedge.NilEdge {
				return e
			}
			e = m.pool.Dual(next)
			continue
		}

		realEdge := edges[(ghostIdx+1)%3]
		a := m.vertexPoint(verts[(ghostIdx+1)%3])
		b := m.vertexPoint(verts[(ghostIdx+2)%3])
		if robust.OrientTol(a, b, p, thr) < 0 {
			e = m.pool.Dual(realEdge)
			continue
		}
		return e
	}

	return m.linearScan(p)
}

// linearScan is the walker's correctness backstop: examine every live
// non-ghost triangle once and return the first whose interior (or
// boundary) contains p. Used only when the randomized walk detects
// cycling, so its O(n) cost is not on the common path.
func (m *Mesh) linearScan(p types.Point) quadedge.EdgeID {
	thr := m.thresholds.HalfPlaneThreshold
	var best quadedge.EdgeID = quadedge.NilEdge

	m.pool.All(func(e quadedge.EdgeID) {
		if best != quadedge.NilEdge {
			return
		}
		verts := m.pool.TriangleVertices(e)
		if verts[0] == types.NilVertex || verts[1] == types.NilVertex || verts[2] == types.NilVertex {
			return
		}
		inside := true
		for i := 0; i < 3; i++ {
			a := m.vertexPoint(verts[i])
			b := m.vertexPoint(verts[(i+1)%3])
			if robust.OrientTol(a, b, p, thr) < 0 {
				inside = false
				break
			}
		}
		if inside {
			best = e
		}
	})

	if best != quadedge.NilEdge {
		return best
	}
	return m.anyLiveEdge()
}

func (m *Mesh) anyLiveEdge() quadedge.EdgeID {
	var found quadedge.EdgeID = quadedge.NilEdge
	m.pool.All(func(e quadedge.EdgeID) {
		if found == quadedge.NilEdge {
			found = e
		}
	})
	return found
}

func (m *Mesh) vertexPoint(id types.VertexID) types.Point {
	if id == types.NilVertex {
		return types.Point{}
	}
	return m.verts.Point(id)
}
