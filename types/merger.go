package types

import "sort"

// MergerRule selects how a VertexMergerGroup reduces its members' Z values
// to the single Z reported for the group as a whole.
type MergerRule int

const (
	// MergerMean averages the Z values of all members.
	MergerMean MergerRule = iota
	// MergerMin takes the smallest Z value.
	MergerMin
	// MergerMax takes the largest Z value.
	MergerMax
	// MergerFirst takes the Z value of the first vertex merged into the group.
	MergerFirst
	// MergerLast takes the Z value of the most recently merged vertex.
	MergerLast
	// MergerMedianZ takes the median Z value across all members.
	MergerMedianZ
)

// VertexMergerGroup stands in for a set of vertices whose coordinates
// coincide within tolerance. The group is identified by its first member's
// (X, Y); Members accumulates every vertex absorbed into it in insertion
// order, and Rule governs how Z() reduces them to a single value.
//
// A VertexMergerGroup is itself treated as a vertex by the rest of the
// mesh: Canonical() returns the Vertex the topology should reference.
type VertexMergerGroup struct {
	Members []Vertex
	Rule    MergerRule
}

// NewVertexMergerGroup starts a group with its first member.
func NewVertexMergerGroup(first Vertex, rule MergerRule) *VertexMergerGroup {
	return &VertexMergerGroup{
		Members: []Vertex{first},
		Rule:    rule,
	}
}

// Absorb merges another coincident vertex into the group.
func (g *VertexMergerGroup) Absorb(v Vertex) {
	g.Members = append(g.Members, v)
}

// Size reports how many vertices have been merged into this group.
func (g *VertexMergerGroup) Size() int {
	return len(g.Members)
}

// Canonical returns the representative Vertex for the group: the first
// member's (index, X, Y) and the Rule-resolved Z, flagged as a merger
// representative by inheriting the union of all members' status bits.
func (g *VertexMergerGroup) Canonical() Vertex {
	if len(g.Members) == 0 {
		return Vertex{}
	}
	head := g.Members[0]
	head.Z = g.ResolveZ()
	for _, m := range g.Members[1:] {
		head.Status |= m.Status
	}
	return head
}

// ResolveZ applies Rule across the member Z values.
func (g *VertexMergerGroup) ResolveZ() float64 {
	switch len(g.Members) {
	case 0:
		return 0
	case 1:
		return g.Members[0].Z
	}

	switch g.Rule {
	case MergerMin:
		z := g.Members[0].Z
		for _, m := range g.Members[1:] {
			if m.Z < z {
				z = m.Z
			}
		}
		return z
	case MergerMax:
		z := g.Members[0].Z
		for _, m := range g.Members[1:] {
			if m.Z > z {
				z = m.Z
			}
		}
		return z
	case MergerFirst:
		return g.Members[0].Z
	case MergerLast:
		return g.Members[len(g.Members)-1].Z
	case MergerMedianZ:
		zs := make([]float64, len(g.Members))
		for i, m := range g.Members {
			zs[i] = m.Z
		}
		sort.Float64s(zs)
		mid := len(zs) / 2
		if len(zs)%2 == 1 {
			return zs[mid]
		}
		return (zs[mid-1] + zs[mid]) / 2
	case MergerMean:
		fallthrough
	default:
		sum := 0.0
		for _, m := range g.Members {
			sum += m.Z
		}
		return sum / float64(len(g.Members))
	}
}
