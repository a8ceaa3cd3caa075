package component

// Capability is a behavior a collider exposes to portals and lasers.
type Capability uint8

const (
	CapPortal Capability = 1 << iota
	CapDamageable
	CapLaserReceiver
	CapCarryable
)

func (c Capability) Has(flag Capability) bool {
	return c&flag != 0
}

// Capabilities lists what an entity exposes. The physics system resolves it
// once when the entity's shape is registered.
type Capabilities struct {
	Set Capability
}

var CapabilitiesComponent = NewComponent[Capabilities]()
