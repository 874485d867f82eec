package types

// VertexStatus packs boolean flags describing how a vertex entered the mesh.
//
// A freshly bootstrapped or caller-supplied vertex carries no flags. Flags
// accumulate as the mesh evolves: refinement sets StatusSynthetic on every
// point it inserts (midpoint splits, circumcenters), and the constraint
// engine sets StatusConstraintOrigin on vertices that anchor a constraint
// segment.
type VertexStatus uint8

const (
	// StatusSynthetic marks a vertex created by the engine itself rather
	// than supplied by the caller (Ruppert midpoint splits, circumcenters,
	// conformity-restoration subdivision points).
	StatusSynthetic VertexStatus = 1 << iota

	// StatusConstraintOrigin marks a vertex that is an endpoint of a
	// linear or region constraint.
	StatusConstraintOrigin
)

// Has reports whether all bits in want are set.
func (s VertexStatus) Has(want VertexStatus) bool {
	return s&want == want
}

// Vertex is an immutable (x, y, z, index) record.
//
// Index is a caller-supplied integer used only for identity and labeling;
// it plays no role in topology and is not required to be dense or to match
// the vertex's position in any internal array. Z is carried through the
// mesh but never consulted by any topological predicate (the core
// triangulates in the XY plane only).
type Vertex struct {
	Index  int
	X, Y   float64
	Z      float64
	Status VertexStatus
}

// Point projects the vertex onto its XY coordinates for use with the
// geometry predicate packages, which only ever reason about the plane.
func (v Vertex) Point() Point {
	return Point{X: v.X, Y: v.Y}
}

// WithStatus returns a copy of v with additional status bits set.
func (v Vertex) WithStatus(add VertexStatus) Vertex {
	v.Status |= add
	return v
}
