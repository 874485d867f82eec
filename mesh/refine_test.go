package mesh

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iceisfun/tinmesh/types"
)

func TestRefineConvergesImmediatelyOnAlreadyGoodMesh(t *testing.T) {
	m := newUnitSquareMesh(t)
	before := m.CountTriangles()

	err := m.Refine(&RefinementConfig{MinAngleDeg: 20, MaxIterations: 100, Tolerance: 1e-9})
	require.NoError(t, err)
	require.Equal(t, before, m.CountTriangles())
}

// minTriangleAngleDeg scans every non-ghost triangle in m and returns the
// smallest interior angle found, in degrees.
func minTriangleAngleDeg(m *Mesh) float64 {
	min := math.Inf(1)
	for _, tri := range m.Triangles() {
		a := m.vertexPoint(tri[0])
		b := m.vertexPoint(tri[1])
		c := m.vertexPoint(tri[2])
		for _, ang := range []float64{angleDeg(a, b, c), angleDeg(b, c, a), angleDeg(c, a, b)} {
			if ang < min {
				min = ang
			}
		}
	}
	return min
}

// angleDeg returns the interior angle at vertex p of the triangle p-q-r.
func angleDeg(p, q, r types.Point) float64 {
	ux, uy := q.X-p.X, q.Y-p.Y
	vx, vy := r.X-p.X, r.Y-p.Y
	dot := ux*vx + uy*vy
	cross := ux*vy - uy*vx
	return math.Abs(math.Atan2(cross, dot)) * 180 / math.Pi
}

func TestRefineImprovesASkinnyTriangle(t *testing.T) {
	m := New(1.0)
	// A long, thin triangle: the apex sits barely off the base, giving
	// a minimum angle well under 20 degrees.
	pts := []types.Vertex{v(0, 0), v(10, 0), v(5, 0.3)}
	bootstrapped, err := m.AddMany(pts, nil)
	require.NoError(t, err)
	require.True(t, bootstrapped)

	before := m.CountTriangles()
	require.NoError(t, m.Refine(&RefinementConfig{MinAngleDeg: 20, MaxIterations: 2000, Tolerance: 1e-9}))
	require.Greater(t, m.CountTriangles(), before)

	report := m.CheckIntegrity()
	require.Equal(t, 0, report.DegenerateTriangles)
	require.Equal(t, 0, report.TopologyFailures)

	// Spec's S6 scenario: refinement must converge within the iteration
	// cap with every triangle at or above the requested minimum angle.
	require.GreaterOrEqual(t, minTriangleAngleDeg(m), 20.0-1e-6)
}

func TestRefineRequiresBootstrappedMesh(t *testing.T) {
	m := New(1.0)
	err := m.Refine(nil)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestRefineRespectsMinEdgeLengthFloor(t *testing.T) {
	m := New(1.0)
	pts := []types.Vertex{v(0, 0), v(10, 0), v(5, 0.3)}
	_, err := m.AddMany(pts, nil)
	require.NoError(t, err)
	before := m.CountTriangles()

	// A floor larger than every edge in the mesh means the skinny
	// triangle is skipped outright rather than split forever; Refine
	// treats "nothing left eligible to refine" as converged.
	err = m.Refine(&RefinementConfig{MinAngleDeg: 20, MaxIterations: 50, Tolerance: 1e-9, MinEdgeLength: 100})
	require.NoError(t, err)
	require.Equal(t, before, m.CountTriangles())
}
