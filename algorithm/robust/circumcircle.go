package robust

import (
	"fmt"
	"math"

	"github.com/iceisfun/tinmesh/types"
)

// OrientTol is Orient2D with a caller-supplied half-plane threshold in
// place of the package's small fixed filter. The mesh insertion and
// constraint-routing code uses this so the decision of "near zero enough
// to fall back to exact arithmetic" scales with the nominal point spacing
// instead of a fixed constant, per the thresholds derived in Thresholds.
func OrientTol(a, b, c types.Point, halfPlaneThreshold float64) int {
	ax := b.X - a.X
	ay := b.Y - a.Y
	bx := c.X - a.X
	by := c.Y - a.Y
	det := ax*by - ay*bx

	if det > halfPlaneThreshold {
		return 1
	}
	if det < -halfPlaneThreshold {
		return -1
	}
	return orient2DExact(a, b, c)
}

// InCircleTol is InCircle with a caller-supplied in-circle threshold. Per
// the tie policy, an exact zero returned by the extended predicate is
// reported as zero (on the circle); the caller decides what to do with it.
// The insertion core treats zero as "do not flip".
func InCircleTol(a, b, c, d types.Point, inCircleThreshold float64) int {
	adx := a.X - d.X
	ady := a.Y - d.Y
	bdx := b.X - d.X
	bdy := b.Y - d.Y
	cdx := c.X - d.X
	cdy := c.Y - d.Y

	ad2 := adx*adx + ady*ady
	bd2 := bdx*bdx + bdy*bdy
	cd2 := cdx*cdx + cdy*cdy

	det := ad2*(bdx*cdy-bdy*cdx) -
		bd2*(adx*cdy-ady*cdx) +
		cd2*(adx*bdy-ady*bdx)

	if det > inCircleThreshold {
		return 1
	}
	if det < -inCircleThreshold {
		return -1
	}
	return inCircleExact(a, b, c, d)
}

// GhostInCircle evaluates the in-circle test for a candidate vertex v
// against a "ghost" neighbor triangle — one whose third vertex is the
// sentinel vertex at infinity, representing the exterior of the convex
// hull. There is no real circumcircle to test against; instead the sign
// of h = (v-a) x (b-a) tells us whether v still lies to the correct side
// of the hull edge (a,b):
//
//	h > 0: v is in the local exterior direction from (a,b) — keep the
//	       current hull edge (do not flip).
//	h < 0: v has stepped past (a,b) into land the hull must now cover —
//	       flip to extend the hull.
//	h == 0: v is collinear with (a,b); the tie is broken by whether v's
//	        projection onto (a,b) falls within the segment — inside the
//	        segment means v lies on the hull edge, which is flipped so v
//	        becomes a hull vertex, and outside means the hull edge is
//	        kept.
//
// Returns +1 to keep, -1 to flip, matching the sign convention used by
// InCircleTol/InCircle for the interior case.
func GhostInCircle(a, b, v types.Point, halfPlaneThreshold float64) int {
	h := (v.X-a.X)*(b.Y-a.Y) - (v.Y-a.Y)*(b.X-a.X)
	if h > halfPlaneThreshold {
		return 1
	}
	if h < -halfPlaneThreshold {
		return -1
	}

	abx := b.X - a.X
	aby := b.Y - a.Y
	len2 := abx*abx + aby*aby
	if len2 == 0 {
		return 1
	}
	t := ((v.X-a.X)*abx + (v.Y-a.Y)*aby) / len2
	if t >= 0 && t <= 1 {
		return -1
	}
	return 1
}

// Circumcircle computes the center and radius of the circle through
// (a, b, c). Grounded on the classic perpendicular-bisector-intersection
// formula (see mrsimicsak-sdfx/sdf/delaunay.go's Circumcenter), handling
// the two axis-aligned degeneracies explicitly before falling through to
// the general case, and erroring out on (near-)collinear input since no
// finite circumcircle exists.
func Circumcircle(a, b, c types.Point, collinearThreshold float64) (cx, cy, r float64, err error) {
	fabsY1Y2 := math.Abs(a.Y - b.Y)
	fabsY2Y3 := math.Abs(b.Y - c.Y)

	if fabsY1Y2 < collinearThreshold && fabsY2Y3 < collinearThreshold {
		return 0, 0, 0, fmt.Errorf("robust: circumcircle undefined for collinear points")
	}

	var m1, m2, mx1, mx2, my1, my2 float64

	switch {
	case fabsY1Y2 < collinearThreshold:
		m2 = -(c.X - b.X) / (c.Y - b.Y)
		mx2 = (b.X + c.X) / 2
		my2 = (b.Y + c.Y) / 2
		cx = (b.X + a.X) / 2
		cy = m2*(cx-mx2) + my2
	case fabsY2Y3 < collinearThreshold:
		m1 = -(b.X - a.X) / (b.Y - a.Y)
		mx1 = (a.X + b.X) / 2
		my1 = (a.Y + b.Y) / 2
		cx = (c.X + b.X) / 2
		cy = m1*(cx-mx1) + my1
	default:
		m1 = -(b.X - a.X) / (b.Y - a.Y)
		m2 = -(c.X - b.X) / (c.Y - b.Y)
		mx1 = (a.X + b.X) / 2
		mx2 = (b.X + c.X) / 2
		my1 = (a.Y + b.Y) / 2
		my2 = (b.Y + c.Y) / 2
		cx = (m1*mx1 - m2*mx2 + my2 - my1) / (m1 - m2)
		if fabsY1Y2 > fabsY2Y3 {
			cy = m1*(cx-mx1) + my1
		} else {
			cy = m2*(cx-mx2) + my2
		}
	}

	dx := a.X - cx
	dy := a.Y - cy
	r = math.Hypot(dx, dy)
	return cx, cy, r, nil
}
