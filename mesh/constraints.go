package mesh

import (
	"math"

	"github.com/iceisfun/tinmesh/algorithm/polygon"
	"github.com/iceisfun/tinmesh/algorithm/pslg"
	"github.com/iceisfun/tinmesh/algorithm/robust"
	"github.com/iceisfun/tinmesh/predicates"
	"github.com/iceisfun/tinmesh/quadedge"
	"github.com/iceisfun/tinmesh/types"
)

// AddConstraints implements spec component 8, the constraint engine:
// insert every constraint's vertices, then route each constraint's
// segments through the mesh, carving a cavity on each side of the
// segment's path and re-triangulating both with Devillers' ears.
// Region constraints are routed before linear constraints so that a
// shared edge ends up with the region's border flag (see the
// region-border-vs-line-index precedence decision in DESIGN.md).
//
// AddConstraints locks the mesh against Remove and may only be called
// once per mesh lifetime (call Clear to reset).
func (m *Mesh) AddConstraints(cs []types.Constraint, restoreConformity bool) error {
	if err := m.checkMutable(); err != nil {
		return err
	}
	if m.locked {
		return invalidStatef("addConstraints already called on this mesh")
	}
	if !m.bootstrapped {
		return invalidStatef("addConstraints requires a bootstrapped mesh")
	}
	if len(m.constraints)+len(cs) > m.cfg.maxConstraints {
		return invalidArgf("adding %d constraints would exceed the maximum of %d", len(cs), m.cfg.maxConstraints)
	}
	for i, c := range cs {
		if len(c.Vertices) < 2 {
			return invalidArgf("constraint %d has fewer than 2 vertices", i)
		}
		if c.IsRegion() {
			if len(c.Vertices) < 3 {
				return invalidArgf("region constraint %d has fewer than 3 vertices", i)
			}
			pts := make([]types.Point, len(c.Vertices))
			for j, v := range c.Vertices {
				pts[j] = types.Point{X: v.X, Y: v.Y}
			}
			if err := pslg.LoopSelfIntersections(pts); err != nil {
				return invalidArgf("region constraint %d is self-intersecting: %v", i, err)
			}
		}
	}

	ordered := make([]types.Constraint, len(cs))
	copy(ordered, cs)
	stableSortRegionsFirst(ordered)

	type routed struct {
		c    types.Constraint
		ids  []types.VertexID
		idx  int
	}
	plans := make([]routed, 0, len(ordered))

	for ci, c := range ordered {
		if c.IsRegion() {
			c.Vertices = orientRegionCCW(c.Vertices)
			ordered[ci] = c
		}

		idx := len(m.constraints)
		c.Index = idx
		m.constraints = append(m.constraints, c)

		ids := make([]types.VertexID, len(c.Vertices))
		for i, v := range c.Vertices {
			v = v.WithStatus(types.StatusConstraintOrigin)
			id, _ := m.insertVertex(v, false)
			if !id.IsValid() {
				m.locked = true
				return implementationFailuref("constraint vertex %d of constraint %d failed to insert", i, idx)
			}
			ids[i] = id
		}
		plans = append(plans, routed{c: c, ids: ids, idx: idx})
	}

	for _, pl := range plans {
		n := len(pl.ids)
		limit := n - 1
		if pl.c.IsRegion() {
			limit = n
		}
		for i := 0; i < limit; i++ {
			j := (i + 1) % n
			if err := m.routeConstraintSegment(pl.ids[i], pl.ids[j], pl.idx, pl.c.IsRegion()); err != nil {
				m.locked = true
				return err
			}
		}
	}

	if restoreConformity {
		m.restoreConformityAll()
	}

	for _, pl := range plans {
		if pl.c.IsRegion() {
			m.floodFillRegion(pl.idx)
		}
	}

	m.locked = true
	m.constraintsLocked = true
	return nil
}

// orientRegionCCW reorders a region constraint's vertices to counter-
// clockwise winding if they were not already, so the floodFillRegion
// pass after routing always has its interior on the left regardless of
// how the caller supplied the ring (see NewRegionConstraint's doc
// comment).
func orientRegionCCW(vs []types.Vertex) []types.Vertex {
	pts := make([]types.Point, len(vs))
	for i, v := range vs {
		pts[i] = types.Point{X: v.X, Y: v.Y}
	}
	if polygon.IsCCW(pts) {
		return vs
	}
	out := make([]types.Vertex, len(vs))
	for i := range vs {
		out[i] = vs[len(vs)-1-i]
	}
	return out
}

// stableSortRegionsFirst reorders cs in place so every ConstraintRegion
// entry precedes every ConstraintLinear entry, preserving relative order
// within each kind (a plain partition is enough since the only ordering
// spec 4.7 step 2 requires is "regions before lines").
func stableSortRegionsFirst(cs []types.Constraint) {
	out := make([]types.Constraint, 0, len(cs))
	for _, c := range cs {
		if c.IsRegion() {
			out = append(out, c)
		}
	}
	for _, c := range cs {
		if !c.IsRegion() {
			out = append(out, c)
		}
	}
	copy(cs, out)
}

// routeConstraintSegment implements spec 4.7 steps 1-5 for one constraint
// segment (v0, v1): find it directly if it is already an edge, otherwise
// sweep v0's pinwheel for the sector the segment departs through and
// walk the straddling diagonal forward, carving the two cavities the
// walk leaves behind and filling them with Devillers' ears.
func (m *Mesh) routeConstraintSegment(v0, v1 types.VertexID, constraintIdx int, isRegion bool) error {
	if v0 == v1 {
		return nil
	}
	if direct := m.findSpokeTo(v0, v1); direct != quadedge.NilEdge {
		m.applyConstraintFlags(direct, constraintIdx, isRegion)
		return nil
	}

	p0 := m.vertexPoint(v0)
	p1 := m.vertexPoint(v1)
	thr := m.thresholds.HalfPlaneThreshold

	for _, s := range m.spokesAround(v0) {
		b := m.pool.Dest(s)
		if b != types.NilVertex && robust.OrientTol(p0, p1, m.vertexPoint(b), thr) == 0 && onOpenSegment(m.vertexPoint(b), p0, p1, thr) {
			m.applyConstraintFlags(s, constraintIdx, isRegion)
			return m.routeConstraintSegment(b, v1, constraintIdx, isRegion)
		}
	}

	sector := m.findSector(v0, p1)
	if sector == quadedge.NilEdge {
		return invalidStatef("constraint routing: no sector leaving vertex toward its constraint partner")
	}

	curU := m.pool.Dest(sector)
	cross := m.pool.Forward(sector)
	curW := m.pool.Dest(cross)

	sideOf := func(id types.VertexID) int {
		return robust.OrientTol(p0, p1, m.vertexPoint(id), thr)
	}
	sideUcur := sideOf(curU)
	sideWcur := sideOf(curW)
	if sideUcur == 0 && sideWcur == 0 {
		return invalidStatef("constraint routing: degenerate sector, both apexes collinear with the constraint line")
	}
	if sideUcur == 0 {
		sideUcur = -sideWcur
	}
	if sideWcur == 0 {
		sideWcur = -sideUcur
	}

	var leftChain, rightChain []types.VertexID
	var leftBnd, rightBnd []quadedge.EdgeID
	leftChain = append(leftChain, v0)
	rightChain = append(rightChain, v0)

	// Seed bnd[0] for each side with the retained v0->apex spoke (the
	// two legs of the first swept triangle that never become part of
	// the cross-section walk below).
	initialUEdge := sector
	initialWEdge := m.pool.NextAroundOrigin(sector)
	if sideUcur > 0 {
		leftBnd = append(leftBnd, initialUEdge)
	} else {
		rightBnd = append(rightBnd, initialUEdge)
	}
	if sideWcur > 0 {
		leftBnd = append(leftBnd, initialWEdge)
	} else {
		rightBnd = append(rightBnd, initialWEdge)
	}

	appendSide := func(v types.VertexID, side int, bnd quadedge.EdgeID) {
		if side > 0 {
			leftChain = append(leftChain, v)
			if bnd != quadedge.NilEdge {
				leftBnd = append(leftBnd, bnd)
			}
		} else {
			rightChain = append(rightChain, v)
			if bnd != quadedge.NilEdge {
				rightBnd = append(rightBnd, bnd)
			}
		}
	}

	var toFree []quadedge.EdgeID
	terminal := types.NilVertex

	cap := 4*m.pool.Count() + 64
	for step := 0; ; step++ {
		if step > cap {
			return invalidStatef("constraint routing: exceeded step cap walking toward constraint partner")
		}
		toFree = append(toFree, cross)

		neighborEdge := m.pool.Dual(cross)
		neighVerts := m.pool.TriangleVertices(neighborEdge)
		a := neighVerts[2]
		if a == types.NilVertex {
			return invalidStatef("constraint routing: segment exited the triangulation hull")
		}

		if a == v1 {
			appendSide(curU, sideUcur, m.boundaryLeg(curU, a))
			appendSide(curW, sideWcur, m.boundaryLeg(curW, a))
			terminal = v1
			break
		}

		pa := m.vertexPoint(a)
		sa := sideOf(a)
		if sa == 0 && onOpenSegment(pa, p0, p1, thr) {
			appendSide(curU, sideUcur, m.boundaryLeg(curU, a))
			appendSide(curW, sideWcur, m.boundaryLeg(curW, a))
			terminal = a
			break
		}

		// a shares curW's side: edge (curU,a) straddles and becomes the
		// next cross-section, so curW is finished (append it, connected
		// onward by the retained edge curW->a) and a takes curW's place
		// in the advancing pair. Symmetric for a sharing curU's side.
		edges3 := m.pool.TriangleEdges(neighborEdge)
		if sa == sideWcur {
			appendSide(curW, sideWcur, m.boundaryLeg(curW, a))
			curW, sideWcur = a, sa
			cross = edges3[1]
		} else {
			appendSide(curU, sideUcur, m.boundaryLeg(curU, a))
			curU, sideUcur = a, sa
			cross = edges3[2]
		}
	}

	for _, e := range toFree {
		d := m.pool.Dual(e)
		m.pool.Free(e)
		m.pool.Free(d)
	}

	newEdge := m.pool.Allocate(v0)
	newDual := m.pool.Allocate(terminal)
	m.pool.LinkDual(newEdge, newDual)

	leftChain = append(leftChain, terminal)
	rightChain = append(rightChain, terminal)
	leftBnd = append(leftBnd, newDual)
	rightBnd = append(rightBnd, newEdge)

	rightChain, rightBnd = m.reverseCavityRing(rightChain, rightBnd)

	m.closeConstraintCavity(leftChain, leftBnd)
	m.closeConstraintCavity(rightChain, rightBnd)

	m.applyConstraintFlags(newEdge, constraintIdx, isRegion)
	m.anchor = newEdge

	if terminal != v1 {
		return m.routeConstraintSegment(terminal, v1, constraintIdx, isRegion)
	}
	return nil
}

// boundaryLeg returns the directed edge from->to if it already exists in
// the mesh (the "off-path" leg of a swept triangle that survives the
// cavity walk unchanged), or NilEdge if the two aren't directly joined
// yet (which only happens for the synthetic from==to case at a walk's
// first step and is filtered by the caller).
func (m *Mesh) boundaryLeg(from, to types.VertexID) quadedge.EdgeID {
	return m.findSpokeTo(from, to)
}

// onOpenSegment reports whether p lies strictly between a and b (used to
// detect the "vertex lies on the ray" exit spec 4.7 step 3 names, which
// routeConstraintSegment treats as an intermediate subdivision point).
func onOpenSegment(p, a, b types.Point, tol float64) bool {
	abx, aby := b.X-a.X, b.Y-a.Y
	len2 := abx*abx + aby*aby
	if len2 == 0 {
		return false
	}
	t := ((p.X-a.X)*abx + (p.Y-a.Y)*aby) / len2
	return t > tol && t < 1-tol
}

// reverseCavityRing reverses a cyclic (ring, bnd) pair so that ring[i]
// still denotes the cavity's i-th vertex in the new traversal order and
// bnd[i] is still the live directed edge ring[i]->ring[i+1 mod n]. A
// plain slice reversal is not enough for bnd: reversing the traversal
// direction means every boundary leg must be walked in its dual
// direction too, with the index shifted by n-2 to land on the matching
// pair: newBnd[i] = Dual(bnd[(n-2-i) mod n]).
func (m *Mesh) reverseCavityRing(ring []types.VertexID, bnd []quadedge.EdgeID) ([]types.VertexID, []quadedge.EdgeID) {
	n := len(ring)
	newRing := make([]types.VertexID, n)
	for i, v := range ring {
		newRing[n-1-i] = v
	}
	newBnd := make([]quadedge.EdgeID, n)
	for i := 0; i < n; i++ {
		j := ((n-2-i)%n + n) % n
		newBnd[i] = m.pool.Dual(bnd[j])
	}
	return newRing, newBnd
}

// applyConstraintFlags marks e (and its dual) as belonging to constraint
// constraintIdx. Region constraints mark both directions as a region
// border but only record the region index on e itself, since e runs in
// the constraint's own (CCW, interior-on-left) direction.
func (m *Mesh) applyConstraintFlags(e quadedge.EdgeID, constraintIdx int, isRegion bool) {
	d := m.pool.Dual(e)
	if isRegion {
		m.pool.SetRegionBorder(e, true)
		m.pool.SetRegionBorder(d, true)
		m.pool.SetRegionIndex(e, constraintIdx)
	} else {
		m.pool.SetLineMember(e, true)
		m.pool.SetLineMember(d, true)
		m.pool.SetLineIndex(e, constraintIdx)
		m.pool.SetLineIndex(d, constraintIdx)
	}
}

// closeConstraintCavity implements spec 4.7's "Cavity fill": ring is a
// simple polygon (the constraint edge plus the retained triangulation
// boundary the walk left behind) and bnd[i] is the already-existing
// directed edge ring[i]->ring[i+1 mod n]. Ears are scored by signed area:
// ears with area at or below the half-plane threshold are skipped, and
// among the rest the one with the smallest area is closed first. Any ear
// whose candidate triangle contains another ring vertex is disqualified
// outright.
func (m *Mesh) closeConstraintCavity(ring []types.VertexID, bnd []quadedge.EdgeID) {
	if len(ring) < 3 || len(ring) != len(bnd) {
		return
	}
	thr := m.thresholds.HalfPlaneThreshold

	for len(ring) > 3 {
		n := len(ring)
		bestIdx := -1
		bestScore := math.Inf(1)

		for i := 0; i < n; i++ {
			prevI := (i - 1 + n) % n
			nextI := (i + 1) % n
			a, b, c := ring[prevI], ring[i], ring[nextI]
			pa, pb, pc := m.vertexPoint(a), m.vertexPoint(b), m.vertexPoint(c)
			area := predicates.Area2(pa, pb, pc)
			if area <= thr {
				continue
			}

			contains := false
			for k := 0; k < n; k++ {
				if k == prevI || k == i || k == nextI {
					continue
				}
				if predicates.PointInTriangle(m.vertexPoint(ring[k]), pa, pb, pc, thr) {
					contains = true
					break
				}
			}
			if contains {
				continue
			}
			if area < bestScore {
				bestScore = area
				bestIdx = i
			}
		}
		if bestIdx == -1 {
			bestIdx = 0
		}

		n = len(ring)
		prevI := (bestIdx - 1 + n) % n
		nextI := (bestIdx + 1) % n
		bPrev := bnd[prevI]
		bCur := bnd[bestIdx]

		fwd := m.pool.Allocate(ring[prevI])
		rev := m.pool.Allocate(ring[nextI])
		m.pool.LinkDual(fwd, rev)

		m.pool.SetForward(bPrev, bCur)
		m.pool.SetForward(bCur, rev)
		m.pool.SetForward(rev, bPrev)
		m.pool.SetReverse(bPrev, rev)
		m.pool.SetReverse(bCur, bPrev)
		m.pool.SetReverse(rev, bCur)

		m.legalize(fwd)

		bnd[prevI] = fwd
		ring = append(ring[:bestIdx], ring[bestIdx+1:]...)
		bnd = append(bnd[:bestIdx], bnd[bestIdx+1:]...)
	}

	m.pool.SetForward(bnd[0], bnd[1])
	m.pool.SetForward(bnd[1], bnd[2])
	m.pool.SetForward(bnd[2], bnd[0])
	m.pool.SetReverse(bnd[0], bnd[2])
	m.pool.SetReverse(bnd[1], bnd[0])
	m.pool.SetReverse(bnd[2], bnd[1])
}

// spokesAround enumerates every directed edge leaving v, in pinwheel
// (CCW) order, by finding one incident edge and rotating with
// NextAroundOrigin until the pinwheel closes.
func (m *Mesh) spokesAround(v types.VertexID) []quadedge.EdgeID {
	start := m.findIncidentEdge(v)
	if start == quadedge.NilEdge {
		return nil
	}
	var out []quadedge.EdgeID
	e := start
	for {
		out = append(out, e)
		e = m.pool.NextAroundOrigin(e)
		if e == start || e == quadedge.NilEdge {
			break
		}
	}
	return out
}

// findSpokeTo returns the directed edge v0->v1 if the two are already
// joined, or NilEdge otherwise.
func (m *Mesh) findSpokeTo(v0, v1 types.VertexID) quadedge.EdgeID {
	for _, e := range m.spokesAround(v0) {
		if m.pool.Dest(e) == v1 {
			return e
		}
	}
	return quadedge.NilEdge
}

// findSector returns the spoke e leaving v0 whose triangle (v0, b, c)
// contains the ray toward target in its sector: target must lie to the
// left of (or on) ray v0->b and to the right of (or on) ray v0->c, where
// b, c are e's and its pinwheel successor's destinations.
func (m *Mesh) findSector(v0 types.VertexID, target types.Point) quadedge.EdgeID {
	p0 := m.vertexPoint(v0)
	thr := m.thresholds.HalfPlaneThreshold
	for _, e := range m.spokesAround(v0) {
		b := m.pool.Dest(e)
		c := m.pool.Dest(m.pool.NextAroundOrigin(e))
		if b == types.NilVertex || c == types.NilVertex {
			continue
		}
		sideB := robust.OrientTol(p0, m.vertexPoint(b), target, thr)
		sideC := robust.OrientTol(p0, m.vertexPoint(c), target, thr)
		if sideB >= 0 && sideC <= 0 {
			return e
		}
	}
	return quadedge.NilEdge
}
