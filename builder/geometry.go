// Package builder: planar geometry for corridors and stand poses.
//
// The corridor model is a joined band: the lane path offset by half the
// corridor width to each side, with square caps past both ends. Interior
// vertices use the averaged direction of their two segments, which keeps the
// band connected through corners at the cost of slightly pinching very sharp
// ones.
package builder

import (
	"math"

	"github.com/katalvlaran/fleetpath/source"
)

// pathLength returns the polyline length of pts.
func pathLength(pts []source.Position) float64 {
	var d float64
	for i := 1; i < len(pts); i++ {
		d += pts[i-1].DistanceTo(pts[i])
	}

	return d
}

// heading returns the direction angle of the segment a → b, radians.
func heading(a, b source.Position) float64 {
	return math.Atan2(b.Y-a.Y, b.X-a.X)
}

// vertexDirection is the travel direction at vertex i: the segment angle at
// the ends, the average of both segment angles inside. The average is taken
// over summed unit vectors to stay stable across the atan2 branch cut.
func vertexDirection(pts []source.Position, i int) float64 {
	switch {
	case i == 0:
		return heading(pts[0], pts[1])
	case i == len(pts)-1:
		return heading(pts[len(pts)-2], pts[len(pts)-1])
	default:
		a := heading(pts[i-1], pts[i])
		b := heading(pts[i], pts[i+1])

		return math.Atan2(math.Sin(a)+math.Sin(b), math.Cos(a)+math.Cos(b))
	}
}

// offsetPolyline shifts every vertex of pts by d perpendicular to the local
// travel direction. Positive d is the left-hand side of travel, negative the
// right. pts must hold at least two points.
func offsetPolyline(pts []source.Position, d float64) []source.Position {
	out := make([]source.Position, len(pts))
	for i, p := range pts {
		dir := vertexDirection(pts, i)
		out[i] = source.Position{X: p.X - d*math.Sin(dir), Y: p.Y + d*math.Cos(dir)}
	}

	return out
}

// extendEnds prolongs the first and last segments by pad, producing square
// end caps once the band is offset.
func extendEnds(pts []source.Position, pad float64) []source.Position {
	out := append([]source.Position(nil), pts...)

	first := heading(pts[0], pts[1])
	out[0] = source.Position{X: pts[0].X - pad*math.Cos(first), Y: pts[0].Y - pad*math.Sin(first)}

	n := len(pts) - 1
	last := heading(pts[n-1], pts[n])
	out[n] = source.Position{X: pts[n].X + pad*math.Cos(last), Y: pts[n].Y + pad*math.Sin(last)}

	return out
}

// corridorOutline returns the closed outline of the swept lane: the path
// offset width/2 to both sides with square caps past each end. The outline
// runs up the left side, back down the right, and closes on its first point.
// A path of fewer than two points has no outline.
func corridorOutline(pts []source.Position, width float64) []source.Position {
	if len(pts) < 2 {
		return nil
	}

	half := width / 2
	padded := extendEnds(pts, half)
	left := offsetPolyline(padded, half)
	right := offsetPolyline(padded, -half)

	out := make([]source.Position, 0, 2*len(padded)+1)
	out = append(out, left...)
	for i := len(right) - 1; i >= 0; i-- {
		out = append(out, right[i])
	}
	out = append(out, left[0])

	return out
}

// intersectionStep places a corridor waypoint just outside an intersection
// mouth: half a corridor ahead of the mouth toward the feeding node, shifted
// half a corridor to the travel lane on wide ways (no shift on narrow ones).
// at is the mouth position, toward the next node outward along the feeding
// path; inbound tells which lane side the robot occupies.
func intersectionStep(at, toward source.Position, width float64, narrow, inbound bool) source.Position {
	dir := heading(at, toward)
	forward := width / 2

	var lateral float64
	if !narrow {
		if inbound {
			lateral = width / 2
		} else {
			lateral = -width / 2
		}
	}

	return source.Position{
		X: at.X + forward*math.Cos(dir) - lateral*math.Sin(dir),
		Y: at.Y + forward*math.Sin(dir) + lateral*math.Cos(dir),
	}
}
