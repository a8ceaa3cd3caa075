package system

import (
	"cmp"
	"math"
	"slices"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/portalcore/ecs"
	"github.com/milk9111/portalcore/ecs/component"
	"github.com/milk9111/portalcore/geom"
	"github.com/milk9111/portalcore/portal"
	log "github.com/sirupsen/logrus"
)

const (
	// anomalyLogInterval is the minimum number of fixed steps between two
	// out-of-range warnings for the same emitter.
	anomalyLogInterval = 60
	// exitNudge moves a continued segment off the exit portal surface.
	exitNudge = 1e-3
)

// LaserSystem traces every firing emitter through the physics space and
// the open portal pair. Each tick it writes a LaserBeam snapshot to the
// emitter and publishes it as a LaserPolylineEvent.
type LaserSystem struct {
	physics *PhysicsSystem
	log     *log.Entry

	lastAnomaly map[ecs.Entity]uint64
	powered     map[ecs.Entity]bool
}

type laserHit struct {
	shape  *cp.Shape
	point  cp.Vector
	alpha  float64
	reg    Registration
	sensor bool
}

func NewLaserSystem(physics *PhysicsSystem) *LaserSystem {
	return &LaserSystem{
		physics:     physics,
		log:         log.WithField("system", "laser"),
		lastAnomaly: make(map[ecs.Entity]uint64),
		powered:     make(map[ecs.Entity]bool),
	}
}

func (ls *LaserSystem) Update(w *ecs.World) {
	if ls == nil || w == nil || ls.physics == nil {
		return
	}

	clear(ls.powered)

	ecs.ForEach2(w, component.LaserEmitterComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, emitter *component.LaserEmitter, transform *component.Transform) {
		beam, ok := ecs.Get(w, e, component.LaserBeamComponent.Kind())
		if !ok {
			beam = &component.LaserBeam{}
			if err := ecs.Add(w, e, component.LaserBeamComponent.Kind(), beam); err != nil {
				panic("laser system: add beam: " + err.Error())
			}
		}

		beam.Reset()
		if emitter.Firing {
			ls.trace(w, e, emitter, cp.Vector{X: transform.X, Y: transform.Y}, beam)
		}
		ecs.Publish(w.Events(), LaserPolylineEvent{Emitter: e, Beam: *beam})
	})

	ecs.ForEach(w, component.LaserReceiverComponent.Kind(), func(e ecs.Entity, receiver *component.LaserReceiver) {
		powered := ls.powered[e]
		if receiver.Powered == powered {
			return
		}
		receiver.Powered = powered
		ecs.Publish(w.Events(), LaserReceiverChangedEvent{Receiver: e, Powered: powered})
	})

	for e := range ls.lastAnomaly {
		if !w.IsAlive(e) {
			delete(ls.lastAnomaly, e)
		}
	}
}

// trace fills beam with at most MaxLaserSegments segments. A portal hit
// continues the beam from the linked portal with the range left over; any
// other hit ends it.
func (ls *LaserSystem) trace(w *ecs.World, emitterEntity ecs.Entity, emitter *component.LaserEmitter, origin cp.Vector, beam *component.LaserBeam) {
	dir := emitter.Direction.Normalize()
	if dir.LengthSq() == 0 || emitter.MaxRange <= 0 {
		return
	}
	filter := queryFilter(emitter.Mask)

	var skip *cp.Shape
	remaining := emitter.MaxRange
	for i := 0; i < component.MaxLaserSegments && remaining > 0; i++ {
		segment := &beam.Segments[i]
		beam.SegmentCount = i + 1
		segment.Append(origin)

		hit, ok := ls.firstHit(emitterEntity, origin, dir, remaining, filter, skip)
		if !ok {
			segment.Append(origin.Add(dir.Mult(remaining)))
			beam.Anomaly = true
			ls.reportAnomaly(w, emitterEntity, origin, dir, remaining)
			return
		}
		segment.Append(hit.point)

		caps := hit.reg.Capabilities
		switch {
		case caps.Has(component.CapPortal):
			pc, ok := ecs.Get(w, hit.reg.Entity, component.PortalComponent.Kind())
			if !ok || pc.End == nil || pc.End.Linked() == nil {
				return
			}
			remaining -= hit.point.Sub(origin).Length()
			entry := geom.Ray{Origin: hit.point, Direction: hit.point.Sub(origin).Normalize()}
			exit := pc.End.ExitRay(entry)
			origin = exit.Origin.Add(exit.Direction.Mult(exitNudge))
			dir = exit.Direction
			skip = nil
			if linked, ok := portalEntity(w, pc.End.Linked()); ok {
				skip, _ = ls.physics.PortalSensor(linked)
			}
		case caps.Has(component.CapDamageable):
			health, ok := ecs.Get(w, hit.reg.Entity, component.HealthComponent.Kind())
			if ok && health.Alive() {
				health.Current = math.Max(0, health.Current-emitter.DamagePerSecond*w.Delta())
				beam.Target = uint64(hit.reg.Entity)
			}
			return
		case caps.Has(component.CapLaserReceiver):
			ls.powered[hit.reg.Entity] = true
			beam.Target = uint64(hit.reg.Entity)
			return
		default:
			return
		}
	}
}

// firstHit returns the nearest shape along the segment, ignoring the
// emitter's own collider, skip, and sensors that are not portals.
func (ls *LaserSystem) firstHit(emitter ecs.Entity, origin, dir cp.Vector, maxRange float64, filter cp.ShapeFilter, skip *cp.Shape) (laserHit, bool) {
	end := origin.Add(dir.Mult(maxRange))
	var hits []laserHit
	ls.physics.Space().SegmentQuery(origin, end, 0, filter, func(shape *cp.Shape, point, _ cp.Vector, alpha float64, _ interface{}) {
		if shape == skip {
			return
		}
		reg, known := ls.physics.Lookup(shape)
		if known && reg.Entity == emitter {
			return
		}
		if shape.Sensor() && !reg.Capabilities.Has(component.CapPortal) {
			return
		}
		hits = append(hits, laserHit{shape: shape, point: point, alpha: alpha, reg: reg, sensor: shape.Sensor()})
	}, nil)

	if len(hits) == 0 {
		return laserHit{}, false
	}
	slices.SortStableFunc(hits, func(a, b laserHit) int {
		if c := cmp.Compare(a.alpha, b.alpha); c != 0 {
			return c
		}
		// A portal sensor wins ties with the wall it sits in.
		switch {
		case a.sensor && !b.sensor:
			return -1
		case b.sensor && !a.sensor:
			return 1
		}
		return 0
	})
	return hits[0], true
}

func (ls *LaserSystem) reportAnomaly(w *ecs.World, e ecs.Entity, origin, dir cp.Vector, maxRange float64) {
	step := w.FixedStepCount()
	if last, ok := ls.lastAnomaly[e]; ok && step-last < anomalyLogInterval {
		return
	}
	ls.lastAnomaly[e] = step
	ls.log.WithFields(log.Fields{
		"emitter":   e,
		"origin":    origin,
		"direction": dir,
		"range":     maxRange,
	}).Warn("laser found no collider in range")
}

// portalEntity finds the entity carrying end.
func portalEntity(w *ecs.World, end *portal.Portal) (ecs.Entity, bool) {
	var found ecs.Entity
	ok := false
	ecs.ForEach(w, component.PortalComponent.Kind(), func(e ecs.Entity, p *component.Portal) {
		if !ok && p.End == end {
			found, ok = e, true
		}
	})
	return found, ok
}
