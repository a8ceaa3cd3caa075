package geom

import (
	"math"

	"github.com/jakecoffman/cp"
)

// SnapEpsilon is the distance under which a component is snapped to 0 or ±1.
const SnapEpsilon = 0.001

// Cardinal directions in screen space (y grows downward).
var (
	Up    = cp.Vector{X: 0, Y: -1}
	Down  = cp.Vector{X: 0, Y: 1}
	Left  = cp.Vector{X: -1, Y: 0}
	Right = cp.Vector{X: 1, Y: 0}
)

// Reflect mirrors d across the line whose normal is n: d - 2(d·n)n.
// n must be a unit vector.
func Reflect(d, n cp.Vector) cp.Vector {
	return d.Sub(n.Mult(2 * d.Dot(n)))
}

// SignedAngle returns the angle in radians that rotates from onto to, in
// (-π, π]. Positive angles follow Rotate.
func SignedAngle(from, to cp.Vector) float64 {
	angle := math.Atan2(from.Cross(to), from.Dot(to))
	// A negative-zero cross product on opposite vectors yields -π.
	if angle <= -math.Pi {
		return math.Pi
	}
	return angle
}

// Rotate turns v by angle radians using the standard rotation matrix.
func Rotate(v cp.Vector, angle float64) cp.Vector {
	return v.Rotate(cp.ForAngle(angle))
}

// Snap removes float drift: components within SnapEpsilon of 0, 1 or -1
// become exactly that value.
func Snap(v cp.Vector) cp.Vector {
	return cp.Vector{X: snapScalar(v.X), Y: snapScalar(v.Y)}
}

func snapScalar(f float64) float64 {
	switch {
	case math.Abs(f) < SnapEpsilon:
		return 0
	case math.Abs(f-1) < SnapEpsilon:
		return 1
	case math.Abs(f+1) < SnapEpsilon:
		return -1
	}
	return f
}

// IsCardinal reports whether v is exactly one of the four axis unit vectors.
func IsCardinal(v cp.Vector) bool {
	return v == Up || v == Down || v == Left || v == Right
}

// Horizontal reports whether v points along the x axis. A portal with a
// horizontal orientation sits on a vertical wall.
func Horizontal(v cp.Vector) bool {
	return v.Y == 0 && v.X != 0
}

// Tangent returns the unit vector along a portal surface for a cardinal
// orientation.
func Tangent(orientation cp.Vector) cp.Vector {
	return orientation.Perp()
}

// Extent returns the length of a width/height box projected on a cardinal
// axis.
func Extent(bounds, axis cp.Vector) float64 {
	return math.Abs(bounds.X*axis.X) + math.Abs(bounds.Y*axis.Y)
}
