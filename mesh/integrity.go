package mesh

import (
	"fmt"
	"math"

	"github.com/iceisfun/tinmesh/algorithm/robust"
	"github.com/iceisfun/tinmesh/formatting"
	"github.com/iceisfun/tinmesh/quadedge"
	"github.com/iceisfun/tinmesh/types"
)

// IntegrityReport is the structured result of CheckIntegrity, spec
// component 9's independent invariant pass. OK reflects only the
// invariants that must always hold (topological closure, non-degenerate
// triangles, unconstrained in-circle compliance); constrained in-circle
// violations are expected in a CDT and are reported but never fail OK.
type IntegrityReport struct {
	TriangleCount       int
	PerimeterEdgeCount  int
	PerimeterArea       float64
	TopologyFailures    int
	DegenerateTriangles int

	InCircleViolations           int
	InCircleViolationsConstrained int
	MaxInCircleViolation         float64
	sumInCircleViolation         float64

	OK           bool
	FirstFailure string
}

// AvgInCircleViolation returns the mean magnitude of every in-circle
// violation CheckIntegrity recorded (constrained and unconstrained
// together), or 0 if none were found.
func (r IntegrityReport) AvgInCircleViolation() float64 {
	if r.InCircleViolations+r.InCircleViolationsConstrained == 0 {
		return 0
	}
	return r.sumInCircleViolation / float64(r.InCircleViolations+r.InCircleViolationsConstrained)
}

// note records msg as the report's first-failure message, if one isn't
// already set, and marks the report as failing.
func (r *IntegrityReport) note(format string, args ...any) {
	r.OK = false
	if r.FirstFailure == "" {
		r.FirstFailure = fmt.Sprintf(format, args...)
	}
}

// CheckIntegrity implements spec component 9: an independent pass over
// the mesh verifying every invariant spec §3 states (forward/reverse/
// dual 3-cycle closure, CCW non-ghost triangle orientation, hull
// perimeter consistency, Delaunay in-circle compliance) and tallying
// in-circle violations, distinguishing constrained from unconstrained.
// Safe to call concurrently with other readers (it mutates nothing),
// but never while a mutating call is in flight, per spec §5's
// single-writer/many-readers contract.
func (m *Mesh) CheckIntegrity() IntegrityReport {
	report := IntegrityReport{OK: true}
	if m.pool == nil {
		return report
	}

	m.checkTopology(&report)
	m.checkTriangles(&report)
	m.checkPerimeter(&report)
	m.checkInCircle(&report)

	return report
}

func (m *Mesh) checkTopology(report *IntegrityReport) {
	m.pool.All(func(e quadedge.EdgeID) {
		if m.pool.Forward(m.pool.Forward(m.pool.Forward(e))) != e {
			report.TopologyFailures++
			report.note("edge %d: forward 3-cycle does not close", e)
		}
		if m.pool.Reverse(m.pool.Reverse(m.pool.Reverse(e))) != e {
			report.TopologyFailures++
			report.note("edge %d: reverse 3-cycle does not close", e)
		}
		d := m.pool.Dual(e)
		if m.pool.Dual(d) != e {
			report.TopologyFailures++
			report.note("edge %d: dual is not involutive", e)
		}
		if d == e {
			report.TopologyFailures++
			report.note("edge %d: dual of an edge must never be itself", e)
		}
	})
}

func (m *Mesh) checkTriangles(report *IntegrityReport) {
	seen := make(map[quadedge.EdgeID]bool)
	m.pool.All(func(e quadedge.EdgeID) {
		if seen[e] {
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
		report.TriangleCount++

		a, b, c := m.vertexPoint(verts[0]), m.vertexPoint(verts[1]), m.vertexPoint(verts[2])
		area := robust.OrientTol(a, b, c, m.thresholds.HalfPlaneThreshold)
		if area <= 0 {
			report.DegenerateTriangles++
			report.note("triangle %s is degenerate or not CCW", formatting.TriangleString(types.Triangle{verts[0], verts[1], verts[2]}))
		}
	})
}

func (m *Mesh) checkPerimeter(report *IntegrityReport) {
	hull := m.Perimeter()
	report.PerimeterEdgeCount = len(hull)
	if len(hull) == 0 {
		return
	}

	byOrigin := make(map[types.VertexID]quadedge.EdgeID, len(hull))
	for _, e := range hull {
		byOrigin[m.pool.Origin(e)] = e
	}

	start := hull[0]
	area := 0.0
	e := start
	steps := 0
	for {
		steps++
		a := m.vertexPoint(m.pool.Origin(e))
		b := m.vertexPoint(m.pool.Dest(e))
		area += a.X*b.Y - b.X*a.Y

		next, ok := byOrigin[m.pool.Dest(e)]
		if !ok {
			report.note("perimeter is not a closed ring at vertex %d", m.pool.Dest(e))
			return
		}
		e = next
		if e == start {
			break
		}
		if steps > len(hull)+1 {
			report.note("perimeter ring did not close within %d edges", len(hull))
			return
		}
	}
	report.PerimeterArea = math.Abs(area) / 2
}

// inCircleDeterminant recomputes the raw in-circle determinant (the same
// formula robust.InCircleTol gates against its threshold) so the report
// can track violation magnitude, not just sign.
func inCircleDeterminant(a, b, c, d types.Point) float64 {
	adx, ady := a.X-d.X, a.Y-d.Y
	bdx, bdy := b.X-d.X, b.Y-d.Y
	cdx, cdy := c.X-d.X, c.Y-d.Y
	ad2 := adx*adx + ady*ady
	bd2 := bdx*bdx + bdy*bdy
	cd2 := cdx*cdx + cdy*cdy
	return ad2*(bdx*cdy-bdy*cdx) - bd2*(adx*cdy-ady*cdx) + cd2*(adx*bdy-ady*bdx)
}

func (m *Mesh) checkInCircle(report *IntegrityReport) {
	m.pool.All(func(e quadedge.EdgeID) {
		d := m.pool.Dual(e)
		if e > d {
			return
		}
		p, q := m.pool.Origin(e), m.pool.Dest(e)
		if p == types.NilVertex || q == types.NilVertex {
			return
		}
		if !m.pool.IsLive(d) {
			return
		}

		everts := m.pool.TriangleVertices(e)
		s := everts[2]
		dverts := m.pool.TriangleVertices(d)
		r := dverts[2]
		if s == types.NilVertex || r == types.NilVertex {
			return
		}

		pp, qp, sp, rp := m.vertexPoint(p), m.vertexPoint(q), m.vertexPoint(s), m.vertexPoint(r)
		val := robust.InCircleTol(pp, qp, sp, rp, m.thresholds.InCircleThreshold)
		if val <= 0 {
			return
		}

		mag := math.Abs(inCircleDeterminant(pp, qp, sp, rp))
		report.sumInCircleViolation += mag
		if mag > report.MaxInCircleViolation {
			report.MaxInCircleViolation = mag
		}

		if m.pool.IsConstrained(e) {
			report.InCircleViolationsConstrained++
			return
		}
		report.InCircleViolations++
		report.note("edge %s violates the in-circle criterion", formatting.EdgeString(types.NewEdge(p, q)))
	})
}
