package mesh

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iceisfun/tinmesh/quadedge"
	"github.com/iceisfun/tinmesh/types"
)

func gridVertices(lo, hi int) []types.Vertex {
	var out []types.Vertex
	for i := lo; i <= hi; i++ {
		for j := lo; j <= hi; j++ {
			out = append(out, v(float64(i), float64(j)))
		}
	}
	return out
}

func TestAddConstraintsRoutesDiagonalThroughInteriorVertices(t *testing.T) {
	m := New(1.0)
	bootstrapped, err := m.AddMany(gridVertices(0, 3), nil)
	require.NoError(t, err)
	require.True(t, bootstrapped)

	c := types.NewLinearConstraint([]types.Vertex{v(0, 0), v(3, 3)})
	require.NoError(t, m.AddConstraints([]types.Constraint{c}, true))

	report := m.CheckIntegrity()
	require.True(t, report.OK, report.FirstFailure)

	chain := []types.Point{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 2}, {X: 3, Y: 3}}
	for i := 0; i < len(chain)-1; i++ {
		a, foundA := m.verts.findCoincident(chain[i])
		b, foundB := m.verts.findCoincident(chain[i+1])
		require.True(t, foundA)
		require.True(t, foundB)

		e := m.findSpokeTo(a, b)
		require.NotEqual(t, quadedge.NilEdge, e, "expected a direct edge %v -> %v", chain[i], chain[i+1])
		require.True(t, m.pool.IsLineMember(e))
		require.Equal(t, 0, m.pool.LineIndex(e))
	}
}

func TestAddConstraintsRegionFloodFillTagsInterior(t *testing.T) {
	m := New(1.0)
	_, err := m.AddMany(gridVertices(0, 4), nil)
	require.NoError(t, err)

	region := types.NewRegionConstraint([]types.Vertex{v(1, 1), v(3, 1), v(3, 3), v(1, 3)})
	require.NoError(t, m.AddConstraints([]types.Constraint{region}, true))

	report := m.CheckIntegrity()
	require.True(t, report.OK, report.FirstFailure)

	center, found := m.verts.findCoincident(types.Point{X: 2, Y: 2})
	require.True(t, found)
	spoke := m.findIncidentEdge(center)
	require.NotEqual(t, quadedge.NilEdge, spoke)
	require.Equal(t, 0, m.pool.RegionIndex(spoke))

	outside, found := m.verts.findCoincident(types.Point{X: 0, Y: 0})
	require.True(t, found)
	outsideSpoke := m.findIncidentEdge(outside)
	require.NotEqual(t, quadedge.NilEdge, outsideSpoke)
	require.Equal(t, types.NilConstraint, m.pool.RegionIndex(outsideSpoke))
}

func TestAddConstraintsDirectEdgeShortcut(t *testing.T) {
	m := newUnitSquareMesh(t)
	c := types.NewLinearConstraint([]types.Vertex{v(0, 0), v(1, 0)})
	require.NoError(t, m.AddConstraints([]types.Constraint{c}, true))

	a, _ := m.verts.findCoincident(types.Point{X: 0, Y: 0})
	b, _ := m.verts.findCoincident(types.Point{X: 1, Y: 0})
	e := m.findSpokeTo(a, b)
	require.NotEqual(t, quadedge.NilEdge, e)
	require.True(t, m.pool.IsLineMember(e))
}

func TestAddConstraintsRejectsShortConstraint(t *testing.T) {
	m := newUnitSquareMesh(t)
	c := types.NewLinearConstraint([]types.Vertex{v(0, 0)})
	err := m.AddConstraints([]types.Constraint{c}, true)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestAddConstraintsOnlyOncePerMesh(t *testing.T) {
	m := newUnitSquareMesh(t)
	c := types.NewLinearConstraint([]types.Vertex{v(0, 0), v(1, 0)})
	require.NoError(t, m.AddConstraints([]types.Constraint{c}, true))

	err := m.AddConstraints([]types.Constraint{c}, true)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestAddConstraintsRequiresBootstrappedMesh(t *testing.T) {
	m := New(1.0)
	c := types.NewLinearConstraint([]types.Vertex{v(0, 0), v(1, 0)})
	err := m.AddConstraints([]types.Constraint{c}, true)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestRemoveForbiddenAfterAddConstraints(t *testing.T) {
	m := newUnitSquareMesh(t)
	c := types.NewLinearConstraint([]types.Vertex{v(0, 0), v(1, 0)})
	require.NoError(t, m.AddConstraints([]types.Constraint{c}, true))

	_, err := m.Remove(v(1, 1))
	require.ErrorIs(t, err, ErrInvalidState)
}
