// Package quadedge implements the edge-based topological structure that
// backs the mesh: an arena of directed edges addressed by stable integer
// handles, with forward/reverse/dual pointers packed alongside each
// record. Every undirected edge is two directed edges, (e, e.dual), and
// every triangle is the 3-cycle (e, e.forward, e.forward.forward).
//
// The package knows nothing about geometry or Delaunay-ness; it only
// maintains the pointer algebra and the constraint metadata carried on
// each directed edge. Algorithms that decide WHICH edges to allocate,
// flip, or free live in the mesh package.
package quadedge

import "github.com/iceisfun/tinmesh/types"

// EdgeID is a stable handle into a Pool's edge arena.
type EdgeID int32

// NilEdge is the sentinel "no edge" handle.
const NilEdge EdgeID = -1

// edgeRecord is one directed edge. A ghost edge has origin == types.NilVertex.
type edgeRecord struct {
	origin  types.VertexID
	forward EdgeID
	reverse EdgeID
	dual    EdgeID
	flags   edgeFlags
	live    bool
}

// Pool is an arena of directed edges addressed by EdgeID. Freed slots are
// recycled through a freelist, and the most recently freed slot is kept
// as a one-edge spare buffer so a flip's free-then-allocate pair can
// reuse a single slot in place without touching the general freelist.
type Pool struct {
	edges []edgeRecord
	free  []EdgeID
	spare EdgeID
}

// NewPool creates an edge pool, preallocating capacity for the given
// number of directed edges to cut down on reallocation during bootstrap.
func NewPool(capacityHint int) *Pool {
	if capacityHint < 0 {
		capacityHint = 0
	}
	return &Pool{
		edges: make([]edgeRecord, 0, capacityHint),
		spare: NilEdge,
	}
}

// Allocate returns a fresh directed edge with the given origin vertex and
// all pointer fields unset (NilEdge). Callers must link forward, reverse,
// and dual before the edge participates in any traversal.
func (p *Pool) Allocate(origin types.VertexID) EdgeID {
	rec := edgeRecord{
		origin:  origin,
		forward: NilEdge,
		reverse: NilEdge,
		dual:    NilEdge,
		flags:   defaultFlags,
		live:    true,
	}

	if p.spare != NilEdge {
		id := p.spare
		p.spare = NilEdge
		p.edges[id] = rec
		return id
	}
	if n := len(p.free); n > 0 {
		id := p.free[n-1]
		p.free = p.free[:n-1]
		p.edges[id] = rec
		return id
	}

	id := EdgeID(len(p.edges))
	p.edges = append(p.edges, rec)
	return id
}

// Free releases a directed edge back to the pool. The caller is
// responsible for unlinking any other edge that still points to e.
func (p *Pool) Free(e EdgeID) {
	if !p.valid(e) || !p.edges[e].live {
		return
	}
	p.edges[e] = edgeRecord{forward: NilEdge, reverse: NilEdge, dual: NilEdge}

	if p.spare == NilEdge {
		p.spare = e
		return
	}
	p.free = append(p.free, e)
}

// Recycle frees e and immediately reallocates its slot for a new edge
// with the given origin, in one step. This is the "one-slot edge buffer"
// a flip uses to replace the old diagonal with the new one without
// the old slot ever passing through the general freelist.
func (p *Pool) Recycle(e EdgeID, origin types.VertexID) EdgeID {
	if !p.valid(e) {
		return p.Allocate(origin)
	}
	p.edges[e] = edgeRecord{
		origin:  origin,
		forward: NilEdge,
		reverse: NilEdge,
		dual:    NilEdge,
		flags:   defaultFlags,
		live:    true,
	}
	return e
}

func (p *Pool) valid(e EdgeID) bool {
	return e >= 0 && int(e) < len(p.edges)
}

// IsLive reports whether e refers to a currently-allocated edge.
func (p *Pool) IsLive(e EdgeID) bool {
	return p.valid(e) && p.edges[e].live
}

// Count returns the number of directed edges ever allocated, including
// freed slots still inside the arena (use IsLive to filter those out
// when iterating with All).
func (p *Pool) Count() int {
	return len(p.edges)
}

// All calls fn for every live directed edge handle.
func (p *Pool) All(fn func(EdgeID)) {
	for i := range p.edges {
		if p.edges[i].live {
			fn(EdgeID(i))
		}
	}
}

// Origin returns e's start vertex, or types.NilVertex if e is a ghost
// edge running into the vertex at infinity.
func (p *Pool) Origin(e EdgeID) types.VertexID {
	if !p.valid(e) {
		return types.NilVertex
	}
	return p.edges[e].origin
}

// SetOrigin rewires e's origin vertex.
func (p *Pool) SetOrigin(e EdgeID, v types.VertexID) {
	if p.valid(e) {
		p.edges[e].origin = v
	}
}

// Dest returns e's end vertex: the origin of e's dual.
func (p *Pool) Dest(e EdgeID) types.VertexID {
	return p.Origin(p.Dual(e))
}

// IsGhost reports whether e or its dual touches the vertex at infinity.
func (p *Pool) IsGhost(e EdgeID) bool {
	return p.Origin(e) == types.NilVertex || p.Dest(e) == types.NilVertex
}

// Forward returns the next directed edge in e's triangle, going CCW: its
// origin is e's destination.
func (p *Pool) Forward(e EdgeID) EdgeID {
	if !p.valid(e) {
		return NilEdge
	}
	return p.edges[e].forward
}

// SetForward rewires e's forward pointer.
func (p *Pool) SetForward(e, f EdgeID) {
	if p.valid(e) {
		p.edges[e].forward = f
	}
}

// Reverse returns the previous directed edge in e's triangle (the other
// direction around the same 3-cycle): forward(forward(e)).
func (p *Pool) Reverse(e EdgeID) EdgeID {
	if !p.valid(e) {
		return NilEdge
	}
	return p.edges[e].reverse
}

// SetReverse rewires e's reverse pointer.
func (p *Pool) SetReverse(e, r EdgeID) {
	if p.valid(e) {
		p.edges[e].reverse = r
	}
}

// Dual returns the oppositely-directed edge sharing e's undirected edge:
// dual(e).origin == e's destination, dual(dual(e)) == e, e != dual(e).
func (p *Pool) Dual(e EdgeID) EdgeID {
	if !p.valid(e) {
		return NilEdge
	}
	return p.edges[e].dual
}

// LinkDual pairs e and d as each other's dual.
func (p *Pool) LinkDual(e, d EdgeID) {
	if p.valid(e) {
		p.edges[e].dual = d
	}
	if p.valid(d) {
		p.edges[d].dual = e
	}
}

// NextAroundOrigin is the pinwheel step that rotates CCW to the next
// directed edge leaving e's origin: dual(reverse(e)).
func (p *Pool) NextAroundOrigin(e EdgeID) EdgeID {
	return p.Dual(p.Reverse(e))
}

// PrevAroundOrigin is the pinwheel step that rotates CW to the previous
// directed edge leaving e's origin: forward(dual(e)).
func (p *Pool) PrevAroundOrigin(e EdgeID) EdgeID {
	return p.Forward(p.Dual(e))
}

// MakeTriangle allocates three directed edges forming one CCW triangle
// a->b->c->a, with forward and reverse wired into the closed 3-cycle.
// Dual pointers are left unset; the caller links them to neighboring
// triangles (or ghost edges) once those exist.
func (p *Pool) MakeTriangle(a, b, c types.VertexID) (ab, bc, ca EdgeID) {
	ab = p.Allocate(a)
	bc = p.Allocate(b)
	ca = p.Allocate(c)

	p.SetForward(ab, bc)
	p.SetForward(bc, ca)
	p.SetForward(ca, ab)

	p.SetReverse(ab, ca)
	p.SetReverse(bc, ab)
	p.SetReverse(ca, bc)

	return ab, bc, ca
}

// TriangleEdges returns the three directed edges of e's triangle, in
// forward order starting from e.
func (p *Pool) TriangleEdges(e EdgeID) [3]EdgeID {
	f := p.Forward(e)
	return [3]EdgeID{e, f, p.Forward(f)}
}

// TriangleVertices returns the three vertices of e's triangle in the
// same order as TriangleEdges; any may be types.NilVertex for a ghost
// triangle.
func (p *Pool) TriangleVertices(e EdgeID) [3]types.VertexID {
	edges := p.TriangleEdges(e)
	return [3]types.VertexID{p.Origin(edges[0]), p.Origin(edges[1]), p.Origin(edges[2])}
}
