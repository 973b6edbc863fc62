package collision

import (
	"math"

	"chosenoffset.com/lumen/internal/core/grid"
)

// castBody finds the nearest edge of b hit by the ray
func castBody(origin, dir grid.Point, maxDist float64, b Body) (Hit, bool) {
	best := Hit{Distance: math.Inf(1)}
	found := false

	for _, e := range b.Edges() {
		normal := e.Normal
		facing := dir.Dot(normal)
		if e.TwoSided {
			// Report the side the ray arrived from
			if facing > 0 {
				normal = normal.Scale(-1)
			}
		} else if facing >= 0 {
			// Back faces never stop a ray; this lets rays leave a box they start in
			continue
		}

		ok, t, p := raySegmentIntersection(origin, dir, e)
		if !ok || t > maxDist || t >= best.Distance {
			continue
		}
		best = Hit{Body: b, Point: p, Normal: normal, Distance: t}
		found = true
	}

	return best, found
}

// raySegmentIntersection checks if a ray intersects a line segment
// Returns: (intersects bool, distance float64, intersection point Point)
func raySegmentIntersection(origin, dir grid.Point, seg Edge) (bool, float64, grid.Point) {
	// Ray: P = origin + t * dir for t > 0
	// Segment: Q = seg.A + u * (seg.B - seg.A) for 0 <= u <= 1
	segDX := seg.B.X - seg.A.X
	segDY := seg.B.Y - seg.A.Y

	denominator := dir.X*segDY - dir.Y*segDX
	if math.Abs(denominator) < 1e-10 {
		// Ray and segment are parallel
		return false, 0, grid.Point{}
	}

	diffX := seg.A.X - origin.X
	diffY := seg.A.Y - origin.Y

	u := (diffX*dir.Y - diffY*dir.X) / denominator
	t := (diffX*segDY - diffY*segDX) / denominator

	if u >= 0 && u <= 1 && t > 1e-9 {
		return true, t, grid.Point{X: origin.X + t*dir.X, Y: origin.Y + t*dir.Y}
	}

	return false, 0, grid.Point{}
}
