package system

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/portalcore/ecs"
	"github.com/milk9111/portalcore/ecs/component"
	"github.com/milk9111/portalcore/portal"
	"github.com/milk9111/portalcore/tilegrid"
)

// PortalOpenedEvent is published after a portal moved onto a new placement
// and collision zones were updated.
type PortalOpenedEvent struct {
	Color       portal.Color
	Position    cp.Vector
	Orientation cp.Vector
	Cells       []tilegrid.Cell
}

type PortalPairClearedEvent struct{}

// PlacementFailedEvent reports a fire request that found no legal placement.
type PlacementFailedEvent struct {
	Color portal.Color
	Aim   cp.Vector
}

// TeleportedEvent is published one physics step after a body was moved.
type TeleportedEvent struct {
	Entity   ecs.Entity
	From     portal.Color
	To       portal.Color
	Position cp.Vector
	Velocity cp.Vector
}

// LaserPolylineEvent carries the per-tick beam snapshot of one emitter.
type LaserPolylineEvent struct {
	Emitter ecs.Entity
	Beam    component.LaserBeam
}

type LaserReceiverChangedEvent struct {
	Receiver ecs.Entity
	Powered  bool
}
