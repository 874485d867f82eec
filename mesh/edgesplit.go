package mesh

import (
	"github.com/iceisfun/tinmesh/quadedge"
	"github.com/iceisfun/tinmesh/types"
)

// SplitEdge implements spec 6's Mesh.splitEdge: insert a new vertex at
// e's geometric midpoint with the caller-supplied Z, replacing e with
// the two half-edges A->m and m->B. e's constraint flags (if any) are
// copied onto both halves. restoreConformity additionally runs
// conformity restoration around the new vertex; callers that just want
// an ordinary Delaunay-respecting split pass false.
func (m *Mesh) SplitEdge(e EdgeHandle, zSplit float64, restoreConformity bool) (types.Vertex, error) {
	if err := m.checkMutable(); err != nil {
		return types.Vertex{}, err
	}
	if !m.pool.IsLive(e) {
		return types.Vertex{}, invalidArgf("splitEdge: unknown edge handle")
	}
	a := m.vertexPoint(m.pool.Origin(e))
	b := m.vertexPoint(m.pool.Dest(e))
	mid := types.Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}

	id, _ := m.splitEdgeInPlace(e, mid, zSplit, true)
	v := m.verts.Canonical(id)

	if restoreConformity {
		m.restoreConformityAround(id)
	}
	return v, nil
}

// splitEdgeInPlace implements spec 4.2's splitEdge operation: replace
// edge e (A->B) with A->m and m->B, preserving e's constraint flags on
// both halves, and re-triangulate the two triangles e used to border so
// the two apexes (x on e's side, y on its dual's side) each connect to
// m instead. The four edges that used to border those two triangles
// (away from A-B) are returned via legalize so Delaunay compliance is
// restored around the split, exactly as spec's "recurse on the four
// outer edges" describes for conformity restoration.
func (m *Mesh) splitEdgeInPlace(e quadedge.EdgeID, mid types.Point, z float64, synthetic bool) (types.VertexID, bool) {
	a := m.pool.Origin(e)
	b := m.pool.Dest(e)
	d := m.pool.Dual(e)

	everts := m.pool.TriangleVertices(e)
	x := everts[2]
	dverts := m.pool.TriangleVertices(d)
	y := dverts[2]

	wasRegionBorder := m.pool.IsRegionBorder(e)
	wasLineMember := m.pool.IsLineMember(e)
	regionIdx := m.pool.RegionIndex(e)
	lineIdx := m.pool.LineIndex(e)

	status := types.VertexStatus(0)
	if synthetic {
		status = types.StatusSynthetic
	}
	vMid := types.Vertex{Index: -1, X: mid.X, Y: mid.Y, Z: z, Status: status}

	idM, merged := m.verts.Insert(vMid)
	if merged {
		return idM, false
	}

	bx := m.pool.Forward(e)
	xa := m.pool.Forward(bx)
	ay := m.pool.Forward(d)
	yb := m.pool.Forward(ay)

	am := m.pool.Recycle(e, a)
	bm := m.pool.Recycle(d, b)
	ma := m.pool.Allocate(idM)
	mb := m.pool.Allocate(idM)
	mx := m.pool.Allocate(idM)
	xm := m.pool.Allocate(x)
	my := m.pool.Allocate(idM)
	ym := m.pool.Allocate(y)

	m.pool.LinkDual(am, ma)
	m.pool.LinkDual(mb, bm)
	m.pool.LinkDual(mx, xm)
	m.pool.LinkDual(my, ym)

	wire3 := func(e1, e2, e3 quadedge.EdgeID) {
		m.pool.SetForward(e1, e2)
		m.pool.SetForward(e2, e3)
		m.pool.SetForward(e3, e1)
		m.pool.SetReverse(e1, e3)
		m.pool.SetReverse(e2, e1)
		m.pool.SetReverse(e3, e2)
	}

	wire3(am, mx, xa)
	wire3(mb, bx, xm)
	wire3(bm, my, yb)
	wire3(ma, ay, ym)

	if wasRegionBorder || wasLineMember {
		for _, e := range []quadedge.EdgeID{am, ma, mb, bm} {
			m.pool.SetRegionBorder(e, wasRegionBorder)
			m.pool.SetLineMember(e, wasLineMember)
			m.pool.SetRegionIndex(e, regionIdx)
			m.pool.SetLineIndex(e, lineIdx)
		}
	}

	m.anchor = am
	m.noteInserted(idM)
	m.legalize(bx, xa, ay, yb)

	return idM, true
}
