package mesh

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iceisfun/tinmesh/types"
)

func TestInsertVertexQueuesWhileNotBootstrapped(t *testing.T) {
	m := New(1.0)
	id, isNew := m.insertVertex(v(0, 0), false)
	require.Equal(t, types.NilVertex, id)
	require.False(t, isNew)
	require.Len(t, m.pending, 1)
}

func TestLegalizeProducesDelaunayCompliantMesh(t *testing.T) {
	m := newUnitSquareMesh(t)
	ok, err := m.Add(v(0.5, 0.5))
	require.NoError(t, err)
	require.True(t, ok)

	report := m.CheckIntegrity()
	require.True(t, report.OK, report.FirstFailure)
	require.Equal(t, 0, report.InCircleViolations)
}

func TestInsertingManyVerticesStaysDelaunay(t *testing.T) {
	m := New(1.0)
	pts := []types.Vertex{
		v(0, 0), v(4, 0), v(4, 4), v(0, 4),
		v(1, 1), v(3, 1), v(3, 3), v(1, 3),
		v(2, 2),
	}
	for _, p := range pts {
		_, err := m.Add(p)
		require.NoError(t, err)
	}

	report := m.CheckIntegrity()
	require.True(t, report.OK, report.FirstFailure)
	require.Equal(t, 0, report.TopologyFailures)
	require.Equal(t, 0, report.DegenerateTriangles)
}
