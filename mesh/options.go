package mesh

import "github.com/iceisfun/tinmesh/types"

// Option configures a Mesh during construction.
type Option func(*config)

// WithNominalPointSpacing sets the characteristic inter-point distance
// used to derive vertexTolerance, halfPlaneThreshold, inCircleThreshold,
// and delaunayThreshold. Values <= 0 fall back to the default of 1.0.
func WithNominalPointSpacing(spacing float64) Option {
	return func(c *config) {
		if spacing > 0 {
			c.nominalPointSpacing = spacing
		}
	}
}

// WithVertexMergerRule sets how coincident-vertex merger groups resolve
// their Z value.
func WithVertexMergerRule(rule types.MergerRule) Option {
	return func(c *config) {
		c.mergerRule = rule
	}
}

// WithMaxConstraints caps the number of constraints the mesh will accept.
// Values outside (0, types.MaxConstraints] are ignored.
func WithMaxConstraints(max int) Option {
	return func(c *config) {
		if max > 0 && max <= types.MaxConstraints {
			c.maxConstraints = max
		}
	}
}

// WithRefinementConfig overrides the full Ruppert refinement parameter
// set used by Mesh.Refine.
func WithRefinementConfig(rc RefinementConfig) Option {
	return func(c *config) {
		c.refinement = rc
	}
}
