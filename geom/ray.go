package geom

import "github.com/jakecoffman/cp"

// Ray is an origin and a unit direction.
type Ray struct {
	Origin    cp.Vector
	Direction cp.Vector
}

// Frame is the geometric snapshot of one portal used by the pure transforms.
type Frame struct {
	Position    cp.Vector
	Orientation cp.Vector
	Length      float64
}

// ComputeExitRay maps a ray entering in to a ray leaving out, expressed
// relative to out.Position. The direction is reflected across the entry
// orientation and then rotated by the relative angle between the frames;
// the entry offset is rotated by the same angle.
func ComputeExitRay(entry Ray, in, out Frame) Ray {
	angle := SignedAngle(in.Orientation, out.Orientation)
	reflected := Reflect(entry.Direction, in.Orientation)
	offset := entry.Origin.Sub(in.Position)
	return Ray{
		Origin:    Snap(Rotate(offset, angle)),
		Direction: Snap(Rotate(reflected, angle)),
	}
}

// ComputeAbsoluteExit is ComputeExitRay translated into world space.
func ComputeAbsoluteExit(entry Ray, in, out Frame) Ray {
	local := ComputeExitRay(entry, in, out)
	return Ray{
		Origin:    out.Position.Add(local.Origin),
		Direction: local.Direction,
	}
}
