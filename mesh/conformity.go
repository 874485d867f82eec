package mesh

import (
	"github.com/iceisfun/tinmesh/algorithm/robust"
	"github.com/iceisfun/tinmesh/quadedge"
	"github.com/iceisfun/tinmesh/types"
)

// restoreConformityCapPerEdge bounds the worklist loop in restoreConformity, the
// same "iterate, don't recurse" discipline spec 9's design note asks of
// every cavity-repair routine in this package.
const restoreConformityCapPerEdge = 8

// restoreConformityAll implements spec 4.7's conformity restoration over
// the whole mesh: every live edge is a candidate, constrained edges are
// repaired by splitting rather than flipping, and the worklist it leaves
// behind keeps growing until no edge violates the in-circle criterion.
// AddConstraints calls this once after routing every segment, since a
// segment's cavity fill can leave edges elsewhere non-Delaunay.
func (m *Mesh) restoreConformityAll() {
	var seed []quadedge.EdgeID
	m.pool.All(func(e quadedge.EdgeID) {
		seed = append(seed, e)
	})
	m.restoreConformity(seed)
}

// restoreConformityAround implements the same repair localized to the
// edges touching id, for SplitEdge's restoreConformity=true path: a
// single manual split only needs its immediate neighborhood re-checked,
// not a full-mesh sweep.
func (m *Mesh) restoreConformityAround(id types.VertexID) {
	m.restoreConformity(m.conformityNeighborhood(id))
}

// conformityNeighborhood collects every edge bounding a triangle incident
// to id: id's own spokes, their duals, and the opposite (far) edge of
// each incident triangle.
func (m *Mesh) conformityNeighborhood(id types.VertexID) []quadedge.EdgeID {
	var out []quadedge.EdgeID
	for _, s := range m.spokesAround(id) {
		out = append(out, s, m.pool.Dual(s), m.pool.Forward(s), m.pool.Dual(m.pool.Forward(s)))
	}
	return out
}

// restoreConformity drains a worklist of candidate edges, flipping any
// unconstrained edge that fails the in-circle test and splitting any
// constrained edge that fails it, per spec 4.7: "if non-Delaunay and
// constrained, split the segment at its midpoint and recurse on the
// four outer edges; if non-Delaunay and unconstrained, flip it". Splits
// and flips are both pushed back onto the same stack rather than
// recursing, as spec's design note on iterative worklists asks.
func (m *Mesh) restoreConformity(seed []quadedge.EdgeID) {
	stack := append([]quadedge.EdgeID(nil), seed...)
	thr := m.thresholds
	budget := restoreConformityCapPerEdge*m.pool.Count() + 256

	for len(stack) > 0 && budget > 0 {
		budget--
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !m.pool.IsLive(e) {
			continue
		}
		p := m.pool.Origin(e)
		q := m.pool.Dest(e)
		if p == types.NilVertex || q == types.NilVertex {
			continue
		}
		d := m.pool.Dual(e)
		if !m.pool.IsLive(d) {
			continue
		}

		everts := m.pool.TriangleVertices(e)
		s := everts[2]
		dverts := m.pool.TriangleVertices(d)
		r := dverts[2]
		if s == types.NilVertex || r == types.NilVertex {
			continue
		}

		val := robust.InCircleTol(m.vertexPoint(p), m.vertexPoint(q), m.vertexPoint(s), m.vertexPoint(r), thr.InCircleThreshold)
		if val <= 0 {
			continue
		}

		if m.pool.IsConstrained(e) {
			mid, z := m.midpointOf(p, q)
			id, created := m.splitEdgeInPlace(e, mid, z, true)
			if created {
				stack = append(stack, m.conformityNeighborhood(id)...)
			}
			continue
		}

		pr, rq := m.flip(e, d, p, q, s, r)
		if pr != quadedge.NilEdge {
			stack = append(stack, pr, m.pool.Dual(pr))
		}
		if rq != quadedge.NilEdge {
			stack = append(stack, rq, m.pool.Dual(rq))
		}
	}
}

// midpointOf returns the geometric and linearly-interpolated-Z midpoint
// of p and q's canonical vertices.
func (m *Mesh) midpointOf(p, q types.VertexID) (types.Point, float64) {
	pv := m.verts.Canonical(p)
	qv := m.verts.Canonical(q)
	mid := types.Point{X: (pv.X + qv.X) / 2, Y: (pv.Y + qv.Y) / 2}
	return mid, (pv.Z + qv.Z) / 2
}

// floodFillRegion implements spec 4.7's region flood fill: starting from
// one of constraintIdx's border edges, walk the mesh interior-side only,
// tagging every edge of every visited triangle with the region index and
// stopping at any region border (the constraint's own boundary, or a
// nested region's). A nested linear constraint's line flag and index are
// untouched, so a line running through a region keeps its own identity
// alongside the region tag.
func (m *Mesh) floodFillRegion(constraintIdx int) {
	var start quadedge.EdgeID = quadedge.NilEdge
	m.pool.All(func(e quadedge.EdgeID) {
		if start != quadedge.NilEdge {
			return
		}
		if m.pool.IsRegionBorder(e) && m.pool.RegionIndex(e) == constraintIdx {
			start = e
		}
	})
	if start == quadedge.NilEdge {
		return
	}

	visited := make(map[quadedge.EdgeID]bool)
	queue := []quadedge.EdgeID{start}

	for len(queue) > 0 {
		e := queue[0]
		queue = queue[1:]
		if visited[e] || !m.pool.IsLive(e) {
			continue
		}

		verts := m.pool.TriangleVertices(e)
		if verts[0] == types.NilVertex || verts[1] == types.NilVertex || verts[2] == types.NilVertex {
			continue
		}

		tri := m.pool.TriangleEdges(e)
		for _, te := range tri {
			if visited[te] {
				continue
			}
			visited[te] = true
			m.pool.SetRegionIndex(te, constraintIdx)

			if m.pool.IsRegionBorder(te) {
				continue
			}
			dual := m.pool.Dual(te)
			if m.pool.IsLive(dual) && !visited[dual] {
				queue = append(queue, dual)
			}
		}
	}
}
