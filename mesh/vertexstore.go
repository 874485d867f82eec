package mesh

import (
	"github.com/iceisfun/tinmesh/spatial"
	"github.com/iceisfun/tinmesh/types"
)

// vertexStore is the append-only pool of vertex records a Mesh's
// topology references by types.VertexID. Per spec's tagged-variant
// guidance, a coincident-vertex merger is not a distinct type the rest
// of the mesh branches on: every slot holds a *types.VertexMergerGroup,
// and an ordinary vertex is simply a group of size one.
type vertexStore struct {
	groups     []*types.VertexMergerGroup
	index      *spatial.HashGrid
	mergerRule types.MergerRule
	tolerance  float64
}

func newVertexStore(mergerRule types.MergerRule) *vertexStore {
	return &vertexStore{
		mergerRule: mergerRule,
		tolerance:  1e-9,
	}
}

// setTolerance updates the coincidence radius (vertexTolerance) and the
// spatial index's cell size to match. Called once thresholds are known,
// and again if the nominal point spacing changes.
func (vs *vertexStore) setTolerance(tol float64) {
	vs.tolerance = tol
	if tol <= 0 {
		tol = 1e-9
	}
	rebuilt := spatial.NewHashGrid(tol * 4)
	for i, g := range vs.groups {
		rebuilt.AddVertex(types.VertexID(i), g.Canonical().Point())
	}
	vs.index = rebuilt
}

// Count returns the number of vertex slots (one per merger group,
// including groups of size one).
func (vs *vertexStore) Count() int {
	return len(vs.groups)
}

// Canonical returns the representative Vertex for id's group.
func (vs *vertexStore) Canonical(id types.VertexID) types.Vertex {
	if int(id) < 0 || int(id) >= len(vs.groups) {
		return types.Vertex{}
	}
	return vs.groups[id].Canonical()
}

// Point is a convenience accessor for Canonical(id).Point().
func (vs *vertexStore) Point(id types.VertexID) types.Point {
	return vs.Canonical(id).Point()
}

// GroupSize reports how many vertices have been merged into id's slot.
func (vs *vertexStore) GroupSize(id types.VertexID) int {
	if int(id) < 0 || int(id) >= len(vs.groups) {
		return 0
	}
	return vs.groups[id].Size()
}

// findCoincident returns an existing vertex slot within tolerance of p,
// if any.
func (vs *vertexStore) findCoincident(p types.Point) (types.VertexID, bool) {
	if vs.index == nil {
		return types.NilVertex, false
	}
	candidates := vs.index.FindVerticesNear(p, vs.tolerance)
	best := types.NilVertex
	bestDist := vs.tolerance * vs.tolerance
	for _, id := range candidates {
		q := vs.Point(id)
		dx := q.X - p.X
		dy := q.Y - p.Y
		d2 := dx*dx + dy*dy
		if d2 <= bestDist {
			best = id
			bestDist = d2
		}
	}
	return best, best.IsValid()
}

// Insert adds v to the store, merging it into an existing coincident
// group when one is found within tolerance. merged reports whether v
// was absorbed rather than becoming its own new slot.
func (vs *vertexStore) Insert(v types.Vertex) (id types.VertexID, merged bool) {
	if existing, ok := vs.findCoincident(v.Point()); ok {
		vs.groups[existing].Absorb(v)
		return existing, true
	}

	id = types.VertexID(len(vs.groups))
	vs.groups = append(vs.groups, types.NewVertexMergerGroup(v, vs.mergerRule))
	if vs.index == nil {
		vs.index = spatial.NewHashGrid(4 * vs.tolerance)
	}
	vs.index.AddVertex(id, v.Point())
	return id, false
}

// RemoveMember detaches the most recently merged member from id's group
// when the group has more than one member, per the removal core's "if v
// is a member of a merger group with > 1 member, remove only from the
// group" rule. Returns the remaining group size.
func (vs *vertexStore) RemoveMember(id types.VertexID) int {
	if int(id) < 0 || int(id) >= len(vs.groups) {
		return 0
	}
	g := vs.groups[id]
	if g.Size() > 1 {
		g.Members = g.Members[:len(g.Members)-1]
	}
	return g.Size()
}

// MarkStatus ORs additional status bits onto every member of id's group.
func (vs *vertexStore) MarkStatus(id types.VertexID, add types.VertexStatus) {
	if int(id) < 0 || int(id) >= len(vs.groups) {
		return
	}
	g := vs.groups[id]
	for i := range g.Members {
		g.Members[i].Status |= add
	}
}

// All calls fn for every vertex slot's canonical vertex.
func (vs *vertexStore) All(fn func(types.VertexID, types.Vertex)) {
	for i, g := range vs.groups {
		fn(types.VertexID(i), g.Canonical())
	}
}
