package quadedge

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iceisfun/tinmesh/types"
)

func TestMakeTriangleCycles(t *testing.T) {
	p := NewPool(8)
	ab, bc, ca := p.MakeTriangle(0, 1, 2)

	require.Equal(t, bc, p.Forward(ab))
	require.Equal(t, ca, p.Forward(bc))
	require.Equal(t, ab, p.Forward(ca))

	require.Equal(t, ca, p.Reverse(ab))
	require.Equal(t, ab, p.Reverse(bc))
	require.Equal(t, bc, p.Reverse(ca))

	require.Equal(t, types.VertexID(0), p.Origin(ab))
	require.Equal(t, types.VertexID(1), p.Origin(bc))
	require.Equal(t, types.VertexID(2), p.Origin(ca))
}

// TestPinwheelAroundSharedVertex builds two triangles sharing edge A-C and
// checks that NextAroundOrigin/PrevAroundOrigin rotate correctly around A.
func TestPinwheelAroundSharedVertex(t *testing.T) {
	p := NewPool(16)

	// Triangle ABC (CCW): A=0, B=1, C=2.
	ab, bc, ca := p.MakeTriangle(0, 1, 2)
	// Triangle ACD (CCW, on the other side of A-C): A=0, C=2, D=3.
	ac, cd, da := p.MakeTriangle(0, 2, 3)

	// ca runs C->A; its dual is ac, which runs A->C.
	p.LinkDual(ca, ac)

	require.True(t, p.IsLive(ab))
	require.Equal(t, types.VertexID(0), p.Origin(ac))
	require.Equal(t, types.VertexID(2), p.Dest(ac))

	// NextAroundOrigin(ab) = Dual(Reverse(ab)) = Dual(ca) = ac, which still
	// has origin A and is the next wedge CCW from A-B.
	next := p.NextAroundOrigin(ab)
	require.Equal(t, ac, next)
	require.Equal(t, types.VertexID(0), p.Origin(next))

	// PrevAroundOrigin(ac) = Forward(Dual(ac)) = Forward(ca) = ab, rotating
	// back to the edge we started from.
	prev := p.PrevAroundOrigin(ac)
	require.Equal(t, ab, prev)

	require.Equal(t, bc, p.Forward(ab))
	require.Equal(t, cd, p.Forward(ac))
	require.Equal(t, da, p.Forward(cd))
}

func TestGhostEdgeHasNilOrigin(t *testing.T) {
	p := NewPool(4)
	g := p.Allocate(types.NilVertex)
	require.True(t, p.IsGhost(g))
}

func TestRecycleReusesSlot(t *testing.T) {
	p := NewPool(2)
	e := p.Allocate(0)
	p.Free(e)
	reused := p.Recycle(e, 1)
	require.Equal(t, e, reused)
	require.Equal(t, types.VertexID(1), p.Origin(reused))
}

func TestConstraintFlagsDefaultToNone(t *testing.T) {
	p := NewPool(1)
	e := p.Allocate(0)
	require.Equal(t, -1, p.RegionIndex(e))
	require.Equal(t, -1, p.LineIndex(e))
	require.False(t, p.IsConstrained(e))

	p.SetRegionIndex(e, 5)
	require.Equal(t, 5, p.RegionIndex(e))
	require.True(t, p.IsRegionBorder(e) == false) // region index alone does not imply a border flag

	p.SetRegionBorder(e, true)
	require.True(t, p.IsConstrained(e))

	p.SetLineIndex(e, 3)
	require.Equal(t, 3, p.LineIndex(e))
	p.SetLineIndex(e, -1)
	require.Equal(t, -1, p.LineIndex(e))
}
