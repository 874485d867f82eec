package mesh

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iceisfun/tinmesh/quadedge"
	"github.com/iceisfun/tinmesh/types"
)

func TestLocateFindsTriangleContainingPoint(t *testing.T) {
	m := newUnitSquareMesh(t)
	e := m.locate(m.anchor, types.Point{X: 0.25, Y: 0.25})
	require.NotEqual(t, quadedge.NilEdge, e)

	verts := m.pool.TriangleVertices(e)
	require.NotEqual(t, types.NilVertex, verts[0])
	require.NotEqual(t, types.NilVertex, verts[1])
	require.NotEqual(t, types.NilVertex, verts[2])
}

func TestLocateFallsBackForPointOutsideHull(t *testing.T) {
	m := newUnitSquareMesh(t)
	e := m.locate(m.anchor, types.Point{X: 100, Y: 100})
	require.NotEqual(t, quadedge.NilEdge, e)
}

func TestLinearScanMatchesLocate(t *testing.T) {
	m := newUnitSquareMesh(t)
	p := types.Point{X: 0.75, Y: 0.25}
	walked := m.locate(m.anchor, p)
	scanned := m.linearScan(p)

	canon := func(tri [3]types.VertexID) [3]types.VertexID {
		for tri[0] > tri[1] || tri[0] > tri[2] {
			tri = [3]types.VertexID{tri[1], tri[2], tri[0]}
		}
		return tri
	}
	require.Equal(t, canon(m.pool.TriangleVertices(walked)), canon(m.pool.TriangleVertices(scanned)))
}
