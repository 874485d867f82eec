package mesh

import (
	"math"

	"github.com/iceisfun/tinmesh/algorithm/geometry"
	"github.com/iceisfun/tinmesh/quadedge"
	"github.com/iceisfun/tinmesh/types"
)

// ContainingTriangle implements spec component 11's point-location
// query: the triangle (as a vertex triple) whose interior or boundary
// contains p, reusing the same stochastic walker insertion drives. ok
// is false if p falls outside the convex hull or the mesh is empty.
func (m *Mesh) ContainingTriangle(p types.Point) ([3]types.VertexID, bool) {
	if m.pool == nil || !m.bootstrapped {
		return [3]types.VertexID{}, false
	}
	e := m.locate(m.anchor, p)
	if e == quadedge.NilEdge {
		return [3]types.VertexID{}, false
	}
	verts := m.pool.TriangleVertices(e)
	if verts[0] == types.NilVertex || verts[1] == types.NilVertex || verts[2] == types.NilVertex {
		return [3]types.VertexID{}, false
	}
	return verts, true
}

// IsPointInsideTin reports whether p lies within the triangulation's
// convex hull (on a real, non-ghost triangle).
func (m *Mesh) IsPointInsideTin(p types.Point) bool {
	_, ok := m.ContainingTriangle(p)
	return ok
}

// NearestVertex implements spec component 11's nearest-vertex query,
// grounded on the vertex store's spatial.HashGrid: the search radius
// starts at the nominal point spacing (1 if that is not positive) and
// doubles until a candidate is found, then one final
// query at the best candidate's own distance confirms nothing closer
// was missed in a neighboring cell.
func (m *Mesh) NearestVertex(p types.Point) (types.Vertex, bool) {
	if m.verts == nil || m.verts.Count() == 0 {
		return types.Vertex{}, false
	}

	radius := m.thresholds.NominalPointSpacing
	if radius <= 0 {
		radius = 1
	}

	var bestID types.VertexID = types.NilVertex
	bestDist := math.Inf(1)

	search := func(r float64) {
		for _, id := range m.verts.index.FindVerticesNear(p, r) {
			q := m.verts.Point(id)
			d := math.Hypot(q.X-p.X, q.Y-p.Y)
			if d < bestDist {
				bestDist = d
				bestID = id
			}
		}
	}

	maxRadius := m.boundsDiagonal()
	for r := radius; bestID == types.NilVertex && r <= maxRadius; r *= 2 {
		search(r)
	}
	if bestID == types.NilVertex {
		search(maxRadius + radius)
	}
	if bestID == types.NilVertex {
		return types.Vertex{}, false
	}

	search(bestDist)
	return m.verts.Canonical(bestID), true
}

// boundsDiagonal returns the mesh's bounding box diagonal, the natural
// cap on how far NearestVertex's expanding search needs to grow.
func (m *Mesh) boundsDiagonal() float64 {
	box, ok := m.Bounds()
	if !ok {
		return m.thresholds.NominalPointSpacing
	}
	return math.Hypot(box.Max.X-box.Min.X, box.Max.Y-box.Min.Y) + m.thresholds.NominalPointSpacing
}

// NearestEdge implements spec component 11's nearest-edge query: the
// live undirected edge minimizing point-to-segment distance to p.
func (m *Mesh) NearestEdge(p types.Point) (EdgeHandle, bool) {
	if m.pool == nil {
		return quadedge.NilEdge, false
	}
	var best quadedge.EdgeID = quadedge.NilEdge
	bestDist := math.Inf(1)

	for _, e := range m.Edges() {
		a := m.vertexPoint(m.pool.Origin(e))
		b := m.vertexPoint(m.pool.Dest(e))
		if m.pool.Origin(e) == types.NilVertex || m.pool.Dest(e) == types.NilVertex {
			continue
		}
		d := geometry.DistancePointSegment(p, a, b)
		if d < bestDist {
			bestDist = d
			best = e
		}
	}
	return best, best != quadedge.NilEdge
}

// NeighborEdge returns a directed edge leaving the vertex nearest p,
// the natural starting spoke for a caller that wants to pinwheel
// outward from wherever p landed.
func (m *Mesh) NeighborEdge(p types.Point) (EdgeHandle, bool) {
	v, ok := m.NearestVertex(p)
	if !ok {
		return quadedge.NilEdge, false
	}
	id, found := m.verts.findCoincident(v.Point())
	if !found {
		return quadedge.NilEdge, false
	}
	e := m.findIncidentEdge(id)
	return e, e != quadedge.NilEdge
}
