package component

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/portalcore/portal"
)

// PortalFireRequest is a one-shot request to open a portal along an aim ray.
// The portal gun system consumes and destroys the carrying entity.
type PortalFireRequest struct {
	Color     portal.Color
	Origin    cp.Vector
	Direction cp.Vector
}

var PortalFireRequestComponent = NewComponent[PortalFireRequest]()

// PortalClearRequest closes the pair.
type PortalClearRequest struct{}

var PortalClearRequestComponent = NewComponent[PortalClearRequest]()
