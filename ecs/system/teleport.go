package system

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/portalcore/ecs"
	"github.com/milk9111/portalcore/ecs/component"
	"github.com/milk9111/portalcore/geom"
	log "github.com/sirupsen/logrus"
)

// PortalSensing is the slice of the physics world the teleport gate reads.
type PortalSensing interface {
	DrainPortalContacts() []PortalContact
	PortalsOverlapping(bb cp.BB) []ecs.Entity
}

// TeleportSystem runs the per-body gate: Outside on a portal contact moves
// to Transiting and the body is sent through the pair; one physics step
// later it is CoolingDown; it returns to Outside once it no longer overlaps
// a portal of the color it entered. Schedule it before the physics system.
type TeleportSystem struct {
	sensing PortalSensing
	tuning  geom.ExitTuning
	pending []PortalContact
	log     *log.Entry
}

func NewTeleportSystem(sensing PortalSensing, tuning geom.ExitTuning) *TeleportSystem {
	return &TeleportSystem{
		sensing: sensing,
		tuning:  tuning,
		log:     log.WithField("system", "teleport"),
	}
}

// SetTuning replaces the exit tuning, e.g. after a config reload.
func (ts *TeleportSystem) SetTuning(tuning geom.ExitTuning) {
	if ts == nil {
		return
	}
	ts.tuning = tuning
}

// Enter queues a contact between a body and a portal entity for the next
// update.
func (ts *TeleportSystem) Enter(body, portalEntity ecs.Entity) {
	if ts == nil {
		return
	}
	ts.pending = append(ts.pending, PortalContact{Entity: body, Portal: portalEntity})
}

func (ts *TeleportSystem) Update(w *ecs.World) {
	if ts == nil || w == nil {
		return
	}
	if ts.sensing != nil {
		ts.pending = append(ts.pending, ts.sensing.DrainPortalContacts()...)
	}

	ts.updateCooldowns(w)

	contacts := ts.pending
	ts.pending = nil
	for _, contact := range contacts {
		ts.enter(w, contact)
	}
}

func (ts *TeleportSystem) enter(w *ecs.World, contact PortalContact) {
	gate, ok := ecs.Get(w, contact.Entity, component.TeleportGateComponent.Kind())
	if !ok {
		return
	}
	if gate.State != component.TeleportOutside {
		ts.log.WithFields(log.Fields{"entity": contact.Entity, "state": gate.State}).Debug("ignore portal contact")
		return
	}

	pc, ok := ecs.Get(w, contact.Portal, component.PortalComponent.Kind())
	if !ok || pc.End == nil {
		return
	}
	in := pc.End
	out := in.Linked()
	if out == nil || !in.Active || !out.Active {
		return
	}

	body, ok := ecs.Get(w, contact.Entity, component.PhysicsBodyComponent.Kind())
	if !ok || body.Body == nil || body.Static {
		return
	}

	dir := body.Body.Velocity().Normalize()
	if dir.LengthSq() == 0 {
		dir = in.Orientation.Neg()
	}
	entry := geom.Ray{Origin: gate.PrevPosition, Direction: dir}

	gate.State = component.TeleportTransiting
	exit := geom.ApplyTeleport(entry, body.Body, bodyBounds(body), in.Frame(), out.Frame(), ts.tuning)

	entity := contact.Entity
	from, to := in.Color, out.Color
	ts.log.WithFields(log.Fields{"entity": entity, "from": from, "to": to, "position": exit.Position}).Debug("teleport body")

	w.Deferred().Defer(func(w *ecs.World) {
		g, ok := ecs.Get(w, entity, component.TeleportGateComponent.Kind())
		if !ok || g.State != component.TeleportTransiting {
			return
		}
		g.State = component.TeleportCoolingDown
		g.CooldownColor = from
		g.Teleports++
		ecs.Publish(w.Events(), TeleportedEvent{
			Entity:   entity,
			From:     from,
			To:       to,
			Position: exit.Position,
			Velocity: exit.Velocity,
		})
	})
}

// updateCooldowns releases bodies that left every portal of their cooldown
// color. Touching a portal of the other color releases them at once.
func (ts *TeleportSystem) updateCooldowns(w *ecs.World) {
	ecs.ForEach2(w, component.TeleportGateComponent.Kind(), component.PhysicsBodyComponent.Kind(), func(e ecs.Entity, gate *component.TeleportGate, body *component.PhysicsBody) {
		if gate.State != component.TeleportCoolingDown || body.Body == nil {
			return
		}

		var overlaps []ecs.Entity
		if ts.sensing != nil {
			bounds := bodyBounds(body)
			overlaps = ts.sensing.PortalsOverlapping(cp.NewBBForExtents(body.Body.Position(), bounds.X/2, bounds.Y/2))
		}

		inside := false
		for _, pe := range overlaps {
			pc, ok := ecs.Get(w, pe, component.PortalComponent.Kind())
			if !ok || pc.End == nil {
				continue
			}
			if pc.End.Color != gate.CooldownColor {
				inside = false
				break
			}
			inside = true
		}
		if !inside {
			gate.State = component.TeleportOutside
		}
	})
}

func bodyBounds(body *component.PhysicsBody) cp.Vector {
	b := body.Bounds()
	if b.X <= 0 || b.Y <= 0 {
		return cp.Vector{X: defaultBodySize, Y: defaultBodySize}
	}
	return b
}
