package mesh

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckIntegrityOnFreshSquare(t *testing.T) {
	m := newUnitSquareMesh(t)
	report := m.CheckIntegrity()

	require.True(t, report.OK, report.FirstFailure)
	require.Equal(t, 2, report.TriangleCount)
	require.Equal(t, 4, report.PerimeterEdgeCount)
	require.InDelta(t, 1.0, report.PerimeterArea, 1e-9)
	require.Equal(t, 0, report.TopologyFailures)
	require.Equal(t, 0, report.DegenerateTriangles)
	require.Equal(t, 0, report.InCircleViolations)
}

func TestCheckIntegrityOnEmptyMesh(t *testing.T) {
	m := New(1.0)
	report := m.CheckIntegrity()
	require.True(t, report.OK)
	require.Equal(t, 0, report.TriangleCount)
}

func TestCheckIntegrityAfterRefinementStaysCompliant(t *testing.T) {
	m := New(1.0)
	_, err := m.AddMany(gridVertices(0, 4), nil)
	require.NoError(t, err)
	require.NoError(t, m.Refine(&RefinementConfig{MinAngleDeg: 20, MaxIterations: 500, Tolerance: 1e-9}))

	report := m.CheckIntegrity()
	require.Equal(t, 0, report.TopologyFailures)
	require.Equal(t, 0, report.DegenerateTriangles)
	require.Equal(t, 0, report.InCircleViolations)
}

func TestAvgInCircleViolationIsZeroWhenNoneRecorded(t *testing.T) {
	m := newUnitSquareMesh(t)
	report := m.CheckIntegrity()
	require.Equal(t, 0.0, report.AvgInCircleViolation())
}
