package mesh

import "github.com/iceisfun/tinmesh/types"

// RefinementConfig holds the parameters of a Ruppert refinement pass.
type RefinementConfig struct {
	// MinAngleDeg is theta_min, the minimum interior angle refinement
	// enforces on every non-ghost triangle. Termination is only provable
	// up to roughly 20.7 degrees; larger values may hit MaxIterations.
	MinAngleDeg float64

	// MaxIterations is the hard cap on refinement steps before the call
	// fails with ErrNotConverged.
	MaxIterations int

	// Tolerance is the distance within which a candidate circumcenter
	// counts as near a recently inserted vertex and is skipped. Values
	// <= 0 fall back to the mesh's vertex tolerance.
	Tolerance float64

	// MinEdgeLength skips segments shorter than this from both
	// encroachment splitting and skinny-triangle refinement, so
	// refinement cannot oscillate by repeatedly halving a tiny segment.
	MinEdgeLength float64
}

// DefaultMinAngleDeg is the quality bound used when RefinementConfig
// isn't supplied explicitly.
const DefaultMinAngleDeg = 20.0

// DefaultMaxIterations is the default refinement iteration cap.
const DefaultMaxIterations = 5000

func defaultRefinementConfig() RefinementConfig {
	return RefinementConfig{
		MinAngleDeg:   DefaultMinAngleDeg,
		MaxIterations: DefaultMaxIterations,
		Tolerance:     1e-9,
		MinEdgeLength: 0,
	}
}

type config struct {
	nominalPointSpacing float64
	mergerRule          types.MergerRule
	maxConstraints      int
	refinement          RefinementConfig
}

func newDefaultConfig() config {
	return config{
		nominalPointSpacing: 1.0,
		mergerRule:          types.MergerMean,
		maxConstraints:      types.MaxConstraints,
		refinement:          defaultRefinementConfig(),
	}
}
