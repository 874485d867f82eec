package mesh

import (
	"math"

	"github.com/iceisfun/tinmesh/algorithm/robust"
	"github.com/iceisfun/tinmesh/quadedge"
	"github.com/iceisfun/tinmesh/types"
)

// Remove deletes v from the mesh, re-triangulating the star-shaped
// cavity its incident triangles leave behind with Devillers' ears.
// Forbidden once a constraint has locked the mesh, and a no-op (with ok
// false) if no vertex coincident with v is present. When v's coincident
// group has more than one member, only one member is detached and the
// topology is left unchanged.
func (m *Mesh) Remove(v types.Vertex) (bool, error) {
	if err := m.checkMutable(); err != nil {
		return false, err
	}
	if m.locked {
		return false, invalidStatef("remove is forbidden once the mesh is locked by constraints")
	}
	if !m.bootstrapped {
		return false, nil
	}

	id, found := m.verts.findCoincident(v.Point())
	if !found {
		return false, nil
	}

	if m.verts.GroupSize(id) > 1 {
		m.verts.RemoveMember(id)
		return true, nil
	}

	spoke := m.findIncidentEdge(id)
	if spoke == quadedge.NilEdge {
		return false, nil
	}

	m.removeEars(id, spoke)
	m.anchor = m.anyLiveEdge()
	return true, nil
}

// findIncidentEdge returns a directed edge whose origin is id, or
// NilEdge if id has no live edges (it was never bootstrapped into the
// topology, or the mesh has only one vertex left).
func (m *Mesh) findIncidentEdge(id types.VertexID) quadedge.EdgeID {
	var found quadedge.EdgeID = quadedge.NilEdge
	m.pool.All(func(e quadedge.EdgeID) {
		if found != quadedge.NilEdge {
			return
		}
		if m.pool.Origin(e) == id {
			found = e
		}
	})
	return found
}

// removeEars implements spec 4.6 steps 2-4: collect the ring of
// neighboring vertices around removedID by pinwheeling its spokes, free
// every edge incident to it, then repeatedly close the worst-scoring
// Devillers ear until the star polygon collapses to its final triangle.
func (m *Mesh) removeEars(removedID types.VertexID, spoke0 quadedge.EdgeID) {
	var spokes []quadedge.EdgeID
	e := spoke0
	for {
		spokes = append(spokes, e)
		e = m.pool.NextAroundOrigin(e)
		if e == spoke0 || e == quadedge.NilEdge {
			break
		}
	}
	n := len(spokes)
	if n < 3 {
		return
	}

	ring := make([]types.VertexID, n)
	bnd := make([]quadedge.EdgeID, n)
	for i, s := range spokes {
		ring[i] = m.pool.Dest(s)
		bnd[i] = m.pool.Forward(s)
	}

	for _, s := range spokes {
		m.pool.Free(m.pool.Reverse(s))
		m.pool.Free(s)
	}

	removedPt := m.vertexPoint(removedID)
	thr := m.thresholds.InCircleThreshold

	for len(ring) > 3 {
		n := len(ring)
		bestIdx := -1
		bestScore := math.Inf(1)
		fallbackNullPrev := -1

		for i := 0; i < n; i++ {
			prev := ring[(i-1+n)%n]
			next := ring[(i+1)%n]
			if prev == types.NilVertex {
				fallbackNullPrev = i
			}
			if prev == types.NilVertex || next == types.NilVertex || ring[i] == types.NilVertex {
				continue
			}
			raw := robust.InCircleTol(m.vertexPoint(prev), m.vertexPoint(ring[i]), m.vertexPoint(next), removedPt, thr)
			score := -float64(raw)
			if score < bestScore {
				bestScore = score
				bestIdx = i
			}
		}

		if bestIdx == -1 {
			if fallbackNullPrev >= 0 {
				bestIdx = fallbackNullPrev
			} else {
				bestIdx = 0
			}
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
