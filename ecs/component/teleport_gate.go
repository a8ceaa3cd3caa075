package component

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/portalcore/portal"
)

type TeleportState uint8

const (
	TeleportOutside TeleportState = iota
	TeleportTransiting
	TeleportCoolingDown
)

func (s TeleportState) String() string {
	switch s {
	case TeleportOutside:
		return "outside"
	case TeleportTransiting:
		return "transiting"
	case TeleportCoolingDown:
		return "cooling_down"
	}
	return "unknown"
}

// TeleportGate makes a dynamic body portal-capable. PrevPosition is the
// body position before the latest physics step. While cooling down the body
// ignores portals of CooldownColor until it has left them.
type TeleportGate struct {
	State         TeleportState
	PrevPosition  cp.Vector
	CooldownColor portal.Color
	Teleports     int
}

var TeleportGateComponent = NewComponent[TeleportGate]()
