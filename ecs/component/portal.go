package component

import "github.com/milk9111/portalcore/portal"

// Portal attaches one end of the portal pair to an entity. The physics
// system keeps a sensor shape in the wall behind it while the pair is open.
type Portal struct {
	End *portal.Portal
	// SensorDepth is how far the sensor reaches into the wall.
	SensorDepth float64
}

var PortalComponent = NewComponent[Portal]()
