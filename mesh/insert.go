package mesh

import (
	"github.com/iceisfun/tinmesh/algorithm/robust"
	"github.com/iceisfun/tinmesh/algorithm/geometry"
	"github.com/iceisfun/tinmesh/quadedge"
	"github.com/iceisfun/tinmesh/types"
)

// insertVertex is the entry point for spec component 6, "Insertion
// core": add(v). It is used both for ordinary vertex()/addMany() calls
// and, with postConstraints set, for the variant that constraint
// routing and refinement use once the mesh carries constrained edges.
//
// Returns the canonical vertex id and whether v became a new, distinct
// vertex (false means it was merged into an existing coincident group,
// or queued pending bootstrap).
func (m *Mesh) insertVertex(v types.Vertex, postConstraints bool) (types.VertexID, bool) {
	if !m.bootstrapped {
		m.pending = append(m.pending, v)
		return types.NilVertex, false
	}

	seed := m.locate(m.anchor, v.Point())

	if postConstraints {
		if e, mid, ok := m.nearbyConstrainedEdge(seed, v.Point()); ok {
			return m.splitEdgeInPlace(e, mid, v.Z, true)
		}
	}

	id, merged := m.verts.Insert(v)
	if merged {
		return id, false
	}

	m.anchor = m.splitTriangleAndLegalize(seed, id, postConstraints)
	m.noteInserted(id)
	return id, true
}

// nearbyConstrainedEdge looks for a constrained edge of the triangle
// located at seed lying within 4*vertexTolerance of p, per spec 4.5's
// post-constraints split-in-place rule. This checks only the immediate
// triangle rather than a full neighborhood scan, trading a (rare) missed
// near-miss for keeping insertion O(1) amortized; a caller that needs
// exhaustive coverage should run conformity restoration afterward, which
// sweeps every edge.
func (m *Mesh) nearbyConstrainedEdge(seed quadedge.EdgeID, p types.Point) (quadedge.EdgeID, types.Point, bool) {
	tol := 4 * m.thresholds.VertexTolerance
	edges := m.pool.TriangleEdges(seed)
	for _, e := range edges {
		if !m.pool.IsConstrained(e) {
			continue
		}
		a := m.vertexPoint(m.pool.Origin(e))
		b := m.vertexPoint(m.pool.Dest(e))
		if geometry.DistancePointSegment(p, a, b) <= tol {
			mid := types.Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
			return e, mid, true
		}
	}
	return quadedge.NilEdge, types.Point{}, false
}

// splitTriangleAndLegalize implements spec 4.5 steps 3-5: split the
// triangle located at seed into three by nv, then flip-legalize outward
// until every affected edge satisfies the Delaunay (or ghost) in-circle
// criterion. Returns an edge anchored at nv, suitable as the mesh's new
// cached anchor.
func (m *Mesh) splitTriangleAndLegalize(seed quadedge.EdgeID, nv types.VertexID, postConstraints bool) quadedge.EdgeID {
	verts := m.pool.TriangleVertices(seed)
	edges := m.pool.TriangleEdges(seed)
	a, b, c := verts[0], verts[1], verts[2]
	ea, eb, ec := edges[0], edges[1], edges[2]

	bv := m.pool.Allocate(b)
	va := m.pool.Allocate(nv)
	m.pool.SetForward(ea, bv)
	m.pool.SetForward(bv, va)
	m.pool.SetForward(va, ea)
	m.pool.SetReverse(ea, va)
	m.pool.SetReverse(bv, ea)
	m.pool.SetReverse(va, bv)

	cv := m.pool.Allocate(c)
	vb := m.pool.Allocate(nv)
	m.pool.SetForward(eb, cv)
	m.pool.SetForward(cv, vb)
	m.pool.SetForward(vb, eb)
	m.pool.SetReverse(eb, vb)
	m.pool.SetReverse(cv, eb)
	m.pool.SetReverse(vb, cv)

	av := m.pool.Allocate(a)
	vc := m.pool.Allocate(nv)
	m.pool.SetForward(ec, av)
	m.pool.SetForward(av, vc)
	m.pool.SetForward(vc, ec)
	m.pool.SetReverse(ec, vc)
	m.pool.SetReverse(av, ec)
	m.pool.SetReverse(vc, av)

	m.pool.LinkDual(va, av)
	m.pool.LinkDual(vb, bv)
	m.pool.LinkDual(vc, cv)

	m.legalize(ea, eb, ec)

	return va
}

// legalize drains a stack of candidate edges, flipping any that fail
// the Delaunay or ghost-in-circle criterion with respect to the vertex
// just inserted. Constrained edges are never flipped, which is what
// makes this one routine serve both the ordinary insertion path and the
// post-constraints variant spec 4.5 describes.
func (m *Mesh) legalize(seed ...quadedge.EdgeID) {
	stack := append([]quadedge.EdgeID(nil), seed...)
	thr := m.thresholds

	for len(stack) > 0 {
		edge := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !m.pool.IsLive(edge) {
			continue
		}
		p := m.pool.Origin(edge)
		q := m.pool.Dest(edge)
		if m.pool.IsConstrained(edge) {
			continue
		}

		neighborEdge := m.pool.Dual(edge)
		if !m.pool.IsLive(neighborEdge) {
			continue
		}
		nvVert := m.pool.Origin(m.pool.Forward(m.pool.Forward(edge)))
		neighVerts := m.pool.TriangleVertices(neighborEdge)
		r := neighVerts[2]

		var flip bool
		if p == types.NilVertex || q == types.NilVertex {
			if r == types.NilVertex {
				continue
			}
			a, b := r, q
			if q == types.NilVertex {
				a, b = p, r
			}
			h := robust.GhostInCircle(m.vertexPoint(a), m.vertexPoint(b), m.vertexPoint(nvVert), thr.HalfPlaneThreshold)
			flip = h < 0
		} else if r == types.NilVertex {
			h := robust.GhostInCircle(m.vertexPoint(q), m.vertexPoint(p), m.vertexPoint(nvVert), thr.HalfPlaneThreshold)
			flip = h < 0
		} else {
			val := robust.InCircleTol(m.vertexPoint(p), m.vertexPoint(q), m.vertexPoint(nvVert), m.vertexPoint(r), thr.InCircleThreshold)
			flip = val > 0
		}
		if !flip {
			continue
		}

		pr, rq := m.flip(edge, neighborEdge, p, q, nvVert, r)
		if pr != quadedge.NilEdge {
			stack = append(stack, pr)
		}
		if rq != quadedge.NilEdge {
			stack = append(stack, rq)
		}
	}
}

// flip rewires the shared edge between triangle (p,q,nv) and triangle
// (q,p,r) into the new diagonal (r,nv), reusing edge's and
// neighborEdge's slots for the two new diagonal directions so a flip
// allocates nothing. Returns the two edges of the new triangles that
// still need legalizing (the ones not touching nv).
func (m *Mesh) flip(edge, neighborEdge quadedge.EdgeID, p, q, nv, r types.VertexID) (quadedge.EdgeID, quadedge.EdgeID) {
	qnv := m.pool.Forward(edge)
	nvP := m.pool.Reverse(edge)
	pr := m.pool.Forward(neighborEdge)
	rq := m.pool.Reverse(neighborEdge)

	rNv := m.pool.Recycle(edge, r)
	nvR := m.pool.Recycle(neighborEdge, nv)
	m.pool.LinkDual(rNv, nvR)

	m.pool.SetForward(nvP, pr)
	m.pool.SetForward(pr, rNv)
	m.pool.SetForward(rNv, nvP)
	m.pool.SetReverse(nvP, rNv)
	m.pool.SetReverse(pr, nvP)
	m.pool.SetReverse(rNv, pr)

	m.pool.SetForward(rq, qnv)
	m.pool.SetForward(qnv, nvR)
	m.pool.SetForward(nvR, rq)
	m.pool.SetReverse(rq, nvR)
	m.pool.SetReverse(qnv, rq)
	m.pool.SetReverse(nvR, qnv)

	return pr, rq
}
