package component

import "github.com/jakecoffman/cp"

// PhysicsBody stores Chipmunk2D runtime data and collider configuration.
// Body and Shape are created by the physics system on first sight.
type PhysicsBody struct {
	Body       *cp.Body
	Shape      *cp.Shape
	Width      float64
	Height     float64
	Radius     float64
	Mass       float64
	Friction   float64
	Elasticity float64
	Static     bool
	Sensor     bool
}

// Bounds returns the collider's full width and height.
func (b *PhysicsBody) Bounds() cp.Vector {
	if b.Radius > 0 {
		return cp.Vector{X: 2 * b.Radius, Y: 2 * b.Radius}
	}
	return cp.Vector{X: b.Width, Y: b.Height}
}

var PhysicsBodyComponent = NewComponent[PhysicsBody]()
