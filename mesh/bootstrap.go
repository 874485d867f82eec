package mesh

import (
	"github.com/iceisfun/tinmesh/algorithm/robust"
	"github.com/iceisfun/tinmesh/types"
)

// bootstrapSampleSize bounds the largest-area sampling step in
// tryBootstrap: with at most this many pending vertices every triple is
// examined; with more, this many random triples are sampled, not an
// exhaustive search.
const bootstrapSampleSize = 12

// tryBootstrap attempts to pick three non-collinear vertices out of
// m.pending and build the initial triangle plus its three-ghost-triangle
// ring. It returns true once the mesh is bootstrapped.
func (m *Mesh) tryBootstrap() bool {
	if len(m.pending) < 3 {
		return false
	}

	bestI, bestJ, bestK := -1, -1, -1
	bestArea := m.thresholds.HalfPlaneThreshold

	n := len(m.pending)
	tries := bootstrapSampleSize
	if n <= bootstrapSampleSize {
		tries = n * n * n
	}
	for t := 0; t < tries; t++ {
		i, j, k := t%n, (t/n)%n, t/(n*n)
		if n > bootstrapSampleSize {
			i, j, k = m.rng.intn(n), m.rng.intn(n), m.rng.intn(n)
		}
		if i == j || j == k || i == k {
			continue
		}
		a := m.pending[i].Point()
		b := m.pending[j].Point()
		c := m.pending[k].Point()
		area := (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
		absArea := area
		if absArea < 0 {
			absArea = -absArea
		}
		if absArea > bestArea {
			bestArea = absArea
			bestI, bestJ, bestK = i, j, k
		}
	}

	if bestI == -1 {
		return false
	}

	va, vb, vc := m.pending[bestI], m.pending[bestJ], m.pending[bestK]
	if robust.Orient2D(va.Point(), vb.Point(), vc.Point()) < 0 {
		va, vb = vb, va
	}

	idA, _ := m.verts.Insert(va)
	idB, _ := m.verts.Insert(vb)
	idC, _ := m.verts.Insert(vc)

	ab, bc, ca := m.pool.MakeTriangle(idA, idB, idC)

	ba := m.pool.Allocate(idB)
	aNull := m.pool.Allocate(idA)
	nullB := m.pool.Allocate(types.NilVertex)
	m.pool.SetForward(ba, aNull)
	m.pool.SetForward(aNull, nullB)
	m.pool.SetForward(nullB, ba)
	m.pool.SetReverse(ba, nullB)
	m.pool.SetReverse(aNull, ba)
	m.pool.SetReverse(nullB, aNull)
	m.pool.LinkDual(ab, ba)

	cb := m.pool.Allocate(idC)
	bNull := m.pool.Allocate(idB)
	nullC := m.pool.Allocate(types.NilVertex)
	m.pool.SetForward(cb, bNull)
	m.pool.SetForward(bNull, nullC)
	m.pool.SetForward(nullC, cb)
	m.pool.SetReverse(cb, nullC)
	m.pool.SetReverse(bNull, cb)
	m.pool.SetReverse(nullC, bNull)
	m.pool.LinkDual(bc, cb)

	ac := m.pool.Allocate(idA)
	cNull := m.pool.Allocate(idC)
	nullA := m.pool.Allocate(types.NilVertex)
	m.pool.SetForward(ac, cNull)
	m.pool.SetForward(cNull, nullA)
	m.pool.SetForward(nullA, ac)
	m.pool.SetReverse(ac, nullA)
	m.pool.SetReverse(cNull, ac)
	m.pool.SetReverse(nullA, cNull)
	m.pool.LinkDual(ca, ac)

	m.pool.LinkDual(aNull, nullA)
	m.pool.LinkDual(nullB, bNull)
	m.pool.LinkDual(nullC, cNull)

	m.anchor = ab
	m.bootstrapped = true

	remaining := make([]types.Vertex, 0, len(m.pending)-3)
	for idx, v := range m.pending {
		if idx == bestI || idx == bestJ || idx == bestK {
			continue
		}
		remaining = append(remaining, v)
	}
	m.pending = nil

	for _, v := range remaining {
		m.insertVertex(v, false)
	}

	return true
}
