package geom

import (
	"math"

	"github.com/jakecoffman/cp"
)

// Body is the rigid-body surface a teleport writes to. *cp.Body satisfies it.
type Body interface {
	Position() cp.Vector
	SetPosition(cp.Vector)
	Velocity() cp.Vector
	Mass() float64
	ApplyImpulseAtWorldPoint(impulse, point cp.Vector)
}

type ExitTuning struct {
	// Margin keeps the body this far inside the exit portal's span and in
	// front of its surface.
	Margin float64
	// MinExitVelocityUp is the minimum upward speed leaving an Up portal.
	MinExitVelocityUp float64
}

// Exit is where and how fast a body leaves the linked portal.
type Exit struct {
	Position  cp.Vector
	Velocity  cp.Vector
	Direction cp.Vector
}

// ExitPlacement computes the exit state for a body with the given bounds
// (full width and height) and current velocity entering in and leaving out.
func ExitPlacement(entry Ray, in, out Frame, bounds, velocity cp.Vector, tuning ExitTuning) Exit {
	local := ComputeExitRay(entry, in, out)

	tangent := Tangent(out.Orientation)
	lateral := local.Origin.Dot(tangent)
	depth := local.Origin.Dot(out.Orientation)

	if Horizontal(in.Orientation) && Horizontal(out.Orientation) && in.Orientation.Dot(out.Orientation) < 0 {
		lateral = -lateral
	}

	maxLateral := math.Max(0, (out.Length-Extent(bounds, tangent))/2-tuning.Margin)
	lateral = cp.Clamp(lateral, -maxLateral, maxLateral)
	depth = math.Max(depth, Extent(bounds, out.Orientation)/2+tuning.Margin)

	pos := out.Position.Add(tangent.Mult(lateral)).Add(out.Orientation.Mult(depth))
	vel := local.Direction.Mult(velocity.Length())
	if out.Orientation == Up && -vel.Y < tuning.MinExitVelocityUp {
		vel.Y = -tuning.MinExitVelocityUp
	}

	return Exit{Position: pos, Velocity: vel, Direction: local.Direction}
}

// ApplyTeleport moves body to the exit and applies the velocity change as an
// impulse so forces already accumulated this step are preserved.
func ApplyTeleport(entry Ray, body Body, bounds cp.Vector, in, out Frame, tuning ExitTuning) Exit {
	current := body.Velocity()
	exit := ExitPlacement(entry, in, out, bounds, current, tuning)

	body.SetPosition(exit.Position)
	impulse := exit.Velocity.Sub(current).Mult(body.Mass())
	body.ApplyImpulseAtWorldPoint(impulse, exit.Position)
	return exit
}
