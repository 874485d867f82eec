// Package mesh implements the incremental 2D Delaunay / constrained
// Delaunay / Ruppert refinement engine: a single exported Mesh type
// backed by the quadedge arena, a coincidence-merging vertex store, and
// the stochastic walker, insertion, removal, constraint, refinement, and
// integrity routines built on top of them.
package mesh

import (
	"math"

	"github.com/iceisfun/tinmesh/algorithm/robust"
	"github.com/iceisfun/tinmesh/quadedge"
	"github.com/iceisfun/tinmesh/types"
)

// EdgeHandle identifies a directed edge returned by a Mesh's query
// methods. It is an opaque alias over the quadedge arena's own handle;
// callers should treat it as an identity token, not an index into
// anything they own.
type EdgeHandle = quadedge.EdgeID

// recentRingSize bounds the "recently inserted vertex" set refinement
// consults to avoid re-splitting the same encroached region forever.
// Spec 9's anti-oscillation note asks for a bounded set rather than a
// single last-vertex slot; a ring of 8 is enough to break the cycles a
// single slot misses without costing a real distance query budget.
const recentRingSize = 8

// Mesh is an incremental, constrained Delaunay triangulation. The zero
// value is not usable; construct one with New.
type Mesh struct {
	cfg        config
	thresholds robust.Thresholds

	pool  *quadedge.Pool
	verts *vertexStore
	rng   *counterRNG

	constraints []types.Constraint

	pending      []types.Vertex
	bootstrapped bool

	anchor quadedge.EdgeID

	locked            bool
	constraintsLocked bool
	disposed          bool

	recentRing [recentRingSize]types.Point
	recentLen  int
	recentNext int
}

// New constructs an empty Mesh. nominalPointSpacing is the approximate
// mean distance between neighboring input points and drives every
// numerical tolerance the mesh uses (algorithm/robust.Thresholds);
// values <= 0 fall back to 1.0.
func New(nominalPointSpacing float64, opts ...Option) *Mesh {
	cfg := newDefaultConfig()
	cfg.nominalPointSpacing = nominalPointSpacing
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.nominalPointSpacing <= 0 {
		cfg.nominalPointSpacing = 1.0
	}

	thr := robust.NewThresholds(cfg.nominalPointSpacing)
	verts := newVertexStore(cfg.mergerRule)
	verts.setTolerance(thr.VertexTolerance)

	return &Mesh{
		cfg:        cfg,
		thresholds: thr,
		pool:       quadedge.NewPool(64),
		verts:      verts,
		rng:        newCounterRNG(0x2545F4914F6CDD1D),
		anchor:     quadedge.NilEdge,
	}
}

// checkMutable returns the ErrInvalidState that every mutating method
// must fail with once the mesh is disposed, nil otherwise.
func (m *Mesh) checkMutable() error {
	if m.disposed {
		return invalidStatef("mesh is disposed")
	}
	return nil
}

func validPoint(p types.Point) bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// Add inserts v into the mesh, merging it into an existing coincident
// vertex group when one falls within tolerance. It returns whether the
// mesh is bootstrapped after the call (false while fewer than three
// non-collinear vertices have been supplied).
func (m *Mesh) Add(v types.Vertex) (bool, error) {
	if err := m.checkMutable(); err != nil {
		return false, err
	}
	if !validPoint(v.Point()) {
		return false, invalidArgf("vertex has null or non-finite coordinates")
	}

	m.insertVertex(v, m.constraintsLocked)
	if !m.bootstrapped {
		m.tryBootstrap()
	}
	return m.bootstrapped, nil
}

// AddMany inserts every vertex in vs in order, reporting progress
// through monitor if non-nil and stopping early if the monitor requests
// cancellation. It returns whether the mesh is bootstrapped when it
// returns.
func (m *Mesh) AddMany(vs []types.Vertex, monitor *ProgressMonitor) (bool, error) {
	if err := m.checkMutable(); err != nil {
		return false, err
	}
	for i, v := range vs {
		if monitor != nil && monitor.Cancelled() {
			break
		}
		if !validPoint(v.Point()) {
			return m.bootstrapped, invalidArgf("vertex %d has null or non-finite coordinates", i)
		}
		m.insertVertex(v, m.constraintsLocked)
		if !m.bootstrapped {
			m.tryBootstrap()
		}
		if monitor != nil {
			monitor.report(i+1, len(vs))
		}
	}
	return m.bootstrapped, nil
}

// Clear discards all vertices and topology but keeps the mesh usable:
// a subsequent Add starts a fresh bootstrap. Clear allocates a fresh
// edge pool; the previous pool's memory is not reused.
func (m *Mesh) Clear() {
	m.pool = quadedge.NewPool(64)
	m.verts = newVertexStore(m.cfg.mergerRule)
	m.verts.setTolerance(m.thresholds.VertexTolerance)
	m.constraints = nil
	m.pending = nil
	m.bootstrapped = false
	m.anchor = quadedge.NilEdge
	m.locked = false
	m.constraintsLocked = false
	m.recentLen = 0
	m.recentNext = 0
}

// Dispose terminates the mesh. Every mutating method fails with
// ErrInvalidState afterward; Clear cannot undo it.
func (m *Mesh) Dispose() {
	m.disposed = true
	m.pool = nil
	m.verts = nil
	m.pending = nil
	m.constraints = nil
}

// Bounds returns the axis-aligned bounding box of every vertex currently
// in the mesh, and false if the mesh has no vertices yet.
func (m *Mesh) Bounds() (types.AABB, bool) {
	if m.verts == nil || m.verts.Count() == 0 {
		return types.AABB{}, false
	}
	var box types.AABB
	first := true
	m.verts.All(func(_ types.VertexID, v types.Vertex) {
		p := v.Point()
		if first {
			box = types.AABB{Min: p, Max: p}
			first = false
			return
		}
		if p.X < box.Min.X {
			box.Min.X = p.X
		}
		if p.Y < box.Min.Y {
			box.Min.Y = p.Y
		}
		if p.X > box.Max.X {
			box.Max.X = p.X
		}
		if p.Y > box.Max.Y {
			box.Max.Y = p.Y
		}
	})
	return box, true
}

// Vertices returns a snapshot of every canonical vertex currently in the
// mesh, in VertexID order.
func (m *Mesh) Vertices() []types.Vertex {
	if m.verts == nil {
		return nil
	}
	out := make([]types.Vertex, 0, m.verts.Count())
	m.verts.All(func(_ types.VertexID, v types.Vertex) {
		out = append(out, v)
	})
	return out
}

// Edges returns one handle per undirected real edge currently live in
// the mesh: a live directed edge e is included only if e's own handle is
// the smaller of e and its dual, so every undirected edge is reported
// exactly once. Ghost edges are excluded.
func (m *Mesh) Edges() []EdgeHandle {
	if m.pool == nil {
		return nil
	}
	var out []EdgeHandle
	m.pool.All(func(e quadedge.EdgeID) {
		if m.pool.Origin(e) == types.NilVertex || m.pool.Dest(e) == types.NilVertex {
			return
		}
		if d := m.pool.Dual(e); e <= d {
			out = append(out, e)
		}
	})
	return out
}

// Perimeter returns the real directed edges whose dual lies in a ghost
// triangle, i.e. the boundary of the convex hull, in no particular order.
func (m *Mesh) Perimeter() []EdgeHandle {
	if m.pool == nil {
		return nil
	}
	var out []EdgeHandle
	m.pool.All(func(e quadedge.EdgeID) {
		if m.pool.Origin(e) == types.NilVertex || m.pool.Dest(e) == types.NilVertex {
			return
		}
		if m.pool.TriangleVertices(m.pool.Dual(e))[2] == types.NilVertex {
			out = append(out, e)
		}
	})
	return out
}

// Triangles returns the vertex triple of every live non-ghost triangle,
// one entry per triangle (not per directed edge).
func (m *Mesh) Triangles() [][3]types.VertexID {
	if m.pool == nil {
		return nil
	}
	seen := make(map[quadedge.EdgeID]bool)
	var out [][3]types.VertexID
	m.pool.All(func(e quadedge.EdgeID) {
		if seen[e] {
			return
		}
		edges := m.pool.TriangleEdges(e)
		for _, te := range edges {
			seen[te] = true
		}
		verts := m.pool.TriangleVertices(e)
		if verts[0] == types.NilVertex || verts[1] == types.NilVertex || verts[2] == types.NilVertex {
			return
		}
		out = append(out, verts)
	})
	return out
}

// CountTriangles returns len(m.Triangles()) without building the slice.
func (m *Mesh) CountTriangles() int {
	if m.pool == nil {
		return 0
	}
	seen := make(map[quadedge.EdgeID]bool)
	n := 0
	m.pool.All(func(e quadedge.EdgeID) {
		if seen[e] {
			return
		}
		edges := m.pool.TriangleEdges(e)
		for _, te := range edges {
			seen[te] = true
		}
		verts := m.pool.TriangleVertices(e)
		if verts[0] == types.NilVertex || verts[1] == types.NilVertex || verts[2] == types.NilVertex {
			return
		}
		n++
	})
	return n
}

// noteInserted records id's point in the recently-inserted ring buffer that
// refinement's anti-oscillation check consults.
func (m *Mesh) noteInserted(id types.VertexID) {
	m.recentRing[m.recentNext] = m.verts.Point(id)
	m.recentNext = (m.recentNext + 1) % recentRingSize
	if m.recentLen < recentRingSize {
		m.recentLen++
	}
}

// recentlyInsertedNear reports whether any of the last recentRingSize
// accepted vertices lies within tol of p. Refinement uses this to break
// the cycle where splitting a skinny triangle's circumcenter lands back
// on an already-split point and re-triggers the same split forever.
func (m *Mesh) recentlyInsertedNear(p types.Point, tol float64) bool {
	tol2 := tol * tol
	for i := 0; i < m.recentLen; i++ {
		q := m.recentRing[i]
		dx, dy := p.X-q.X, p.Y-q.Y
		if dx*dx+dy*dy <= tol2 {
			return true
		}
	}
	return false
}
