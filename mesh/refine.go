package mesh

import (
	"math"

	"github.com/iceisfun/tinmesh/algorithm/robust"
	"github.com/iceisfun/tinmesh/quadedge"
	"github.com/iceisfun/tinmesh/types"
)

// Refine implements spec component 10, Ruppert refinement: repeatedly
// split encroached constrained segments and insert skinny triangles'
// circumcenters until every non-ghost triangle meets cfg's minimum angle
// or the iteration cap is reached. A nil cfg uses the mesh's own
// RefinementConfig (set via WithRefinementConfig, default 20 degrees).
//
// Termination is only provable for minAngleDeg up to roughly 20.7
// degrees; a larger bound may run out the iteration cap and return
// ErrNotConverged without panicking or corrupting the mesh, matching
// spec 9's stated tradeoff.
func (m *Mesh) Refine(cfg *RefinementConfig) error {
	if err := m.checkMutable(); err != nil {
		return err
	}
	if !m.bootstrapped {
		return invalidStatef("refine requires a bootstrapped mesh")
	}

	rc := m.cfg.refinement
	if cfg != nil {
		rc = *cfg
	}
	if rc.MaxIterations <= 0 {
		rc.MaxIterations = DefaultMaxIterations
	}
	if rc.MinAngleDeg <= 0 {
		rc.MinAngleDeg = DefaultMinAngleDeg
	}
	tol := rc.Tolerance
	if tol <= 0 {
		tol = m.thresholds.VertexTolerance
	}

	thetaMin := rc.MinAngleDeg * math.Pi / 180
	sinThetaMin := math.Sin(thetaMin)
	skinnyBound := 1 / (2 * sinThetaMin)

	skip := make(map[quadedge.EdgeID]bool)

	for iter := 0; iter < rc.MaxIterations; iter++ {
		if seg, mid, z, ok := m.findEncroachedSegment(rc.MinEdgeLength); ok {
			m.splitEdgeInPlace(seg, mid, z, true)
			skip = make(map[quadedge.EdgeID]bool)
			continue
		}

		key, center, z, ok := m.findSkinnyTriangle(skinnyBound, rc.MinEdgeLength, skip)
		if !ok {
			return nil
		}

		if seg, mid, segZ, encroached := m.encroachedByPoint(center, rc.MinEdgeLength); encroached {
			m.splitEdgeInPlace(seg, mid, segZ, true)
			skip = make(map[quadedge.EdgeID]bool)
			continue
		}

		if m.recentlyInsertedNear(center, tol) {
			skip[key] = true
			continue
		}

		v := types.Vertex{Index: -1, X: center.X, Y: center.Y, Z: z, Status: types.StatusSynthetic}
		m.insertVertex(v, true)
		skip = make(map[quadedge.EdgeID]bool)
	}

	return ErrNotConverged
}

// findEncroachedSegment scans every constrained edge for one whose
// diametral circle (the circle with the segment as diameter) strictly
// contains a third mesh vertex, per the standard Ruppert encroachment
// test. Segments shorter than minEdgeLen are skipped so refinement
// cannot oscillate by halving an already-minimal segment forever.
func (m *Mesh) findEncroachedSegment(minEdgeLen float64) (quadedge.EdgeID, types.Point, float64, bool) {
	var found quadedge.EdgeID = quadedge.NilEdge
	var mid types.Point
	var z float64

	m.pool.All(func(e quadedge.EdgeID) {
		if found != quadedge.NilEdge {
			return
		}
		d := m.pool.Dual(e)
		if e > d {
			return
		}
		if !m.pool.IsConstrained(e) {
			return
		}
		pid, qid := m.pool.Origin(e), m.pool.Dest(e)
		pv, qv := m.verts.Canonical(pid), m.verts.Canonical(qid)
		p, q := pv.Point(), qv.Point()
		length := math.Hypot(q.X-p.X, q.Y-p.Y)
		if length < minEdgeLen {
			return
		}
		center := types.Point{X: (p.X + q.X) / 2, Y: (p.Y + q.Y) / 2}
		radius := length / 2

		encroached := false
		m.verts.All(func(id types.VertexID, v types.Vertex) {
			if encroached || id == pid || id == qid {
				return
			}
			dx, dy := v.X-center.X, v.Y-center.Y
			if math.Hypot(dx, dy) < radius-m.thresholds.VertexTolerance {
				encroached = true
			}
		})
		if encroached {
			found = e
			mid = center
			z = (pv.Z + qv.Z) / 2
		}
	})

	return found, mid, z, found != quadedge.NilEdge
}

// encroachedByPoint reports whether p (a candidate circumcenter) would
// fall inside some constrained segment's diametral circle if inserted,
// per spec's "encroachment deferral": rather than insert the
// circumcenter, the encroached segment is split instead and the skinny
// triangle is revisited on a later iteration.
func (m *Mesh) encroachedByPoint(p types.Point, minEdgeLen float64) (quadedge.EdgeID, types.Point, float64, bool) {
	var found quadedge.EdgeID = quadedge.NilEdge
	var mid types.Point
	var z float64

	m.pool.All(func(e quadedge.EdgeID) {
		if found != quadedge.NilEdge {
			return
		}
		d := m.pool.Dual(e)
		if e > d {
			return
		}
		if !m.pool.IsConstrained(e) {
			return
		}
		pv := m.verts.Canonical(m.pool.Origin(e))
		qv := m.verts.Canonical(m.pool.Dest(e))
		a, b := pv.Point(), qv.Point()
		length := math.Hypot(b.X-a.X, b.Y-a.Y)
		if length < minEdgeLen {
			return
		}
		center := types.Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
		radius := length / 2
		if math.Hypot(p.X-center.X, p.Y-center.Y) < radius-m.thresholds.VertexTolerance {
			found = e
			mid = center
			z = (pv.Z + qv.Z) / 2
		}
	})

	return found, mid, z, found != quadedge.NilEdge
}

// findSkinnyTriangle scans every non-ghost triangle for one whose
// circumradius-to-shortest-edge ratio exceeds skinnyBound (1/(2 sin
// thetaMin), the standard Ruppert quality bound), skipping triangles
// already in skip (this refinement pass's anti-oscillation set) and
// ones whose shortest edge is already at minEdgeLen. The returned key
// is the triangle's canonical edge id (its smallest TriangleEdges
// entry), stable enough within one Refine call to mark as skipped.
func (m *Mesh) findSkinnyTriangle(skinnyBound, minEdgeLen float64, skip map[quadedge.EdgeID]bool) (quadedge.EdgeID, types.Point, float64, bool) {
	seen := make(map[quadedge.EdgeID]bool)
	var foundKey quadedge.EdgeID = quadedge.NilEdge
	var center types.Point
	var z float64

	m.pool.All(func(e quadedge.EdgeID) {
		if foundKey != quadedge.NilEdge || seen[e] {
			return
		}
		edges := m.pool.TriangleEdges(e)
		for _, te := range edges {
			seen[te] = true
		}
		verts := m.pool.TriangleVertices(e)
		if verts[0] == types.NilVertex || verts[1] == types.NilVertex || verts[2] == types.NilVertex {
			return
		}

		key := edges[0]
		for _, te := range edges {
			if te < key {
				key = te
			}
		}
		if skip[key] {
			return
		}

		av := m.verts.Canonical(verts[0])
		bv := m.verts.Canonical(verts[1])
		cv := m.verts.Canonical(verts[2])
		a, b, c := av.Point(), bv.Point(), cv.Point()

		shortest := math.Min(math.Hypot(b.X-a.X, b.Y-a.Y),
			math.Min(math.Hypot(c.X-b.X, c.Y-b.Y), math.Hypot(a.X-c.X, a.Y-c.Y)))
		if shortest < minEdgeLen {
			return
		}

		cx, cy, r, err := robust.Circumcircle(a, b, c, m.thresholds.HalfPlaneThreshold)
		if err != nil {
			return
		}
		if r/shortest <= skinnyBound {
			return
		}

		foundKey = key
		center = types.Point{X: cx, Y: cy}
		z = (av.Z + bv.Z + cv.Z) / 3
	})

	return foundKey, center, z, foundKey != quadedge.NilEdge
}
