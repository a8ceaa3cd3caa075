package system

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/portalcore/ecs"
	"github.com/milk9111/portalcore/ecs/component"
	"github.com/milk9111/portalcore/geom"
	"github.com/milk9111/portalcore/tilegrid"
	log "github.com/sirupsen/logrus"
)

const (
	collisionTypeSolid cp.CollisionType = iota + 1
	collisionTypeTraveler
	collisionTypePortal
)

// Collision categories used by shape filters and laser masks.
const (
	CategoryWorld uint32 = 1 << iota
	CategoryBody
	CategoryPortal
)

const (
	defaultBodySize    = 32
	defaultSensorDepth = 8
)

// Registration is what a shape in the space resolves to. Capabilities are
// fixed when the shape is registered and never probed again per contact.
type Registration struct {
	Entity       ecs.Entity
	Capabilities component.Capability
}

// PortalContact is a body shape starting to touch a portal sensor.
type PortalContact struct {
	Entity ecs.Entity
	Portal ecs.Entity
}

type PhysicsConfig struct {
	Gravity    cp.Vector
	Iterations uint
}

type PhysicsSystem struct {
	space         *cp.Space
	grid          *tilegrid.Grid
	log           *log.Entry
	handlersReady bool

	entities map[ecs.Entity]*bodyInfo
	sensors  map[ecs.Entity]*sensorInfo
	shapes   map[*cp.Shape]Registration
	contacts []PortalContact
}

type bodyInfo struct {
	body   *cp.Body
	shape  *cp.Shape
	static bool
}

type sensorInfo struct {
	shape *cp.Shape
	frame geom.Frame
	depth float64
}

// NewPhysicsSystem creates the space and attaches the tile grid's per-cell
// static shapes to it. grid may be nil.
func NewPhysicsSystem(grid *tilegrid.Grid, cfg PhysicsConfig) *PhysicsSystem {
	space := cp.NewSpace()
	space.Iterations = 20
	if cfg.Iterations > 0 {
		space.Iterations = cfg.Iterations
	}
	space.SetGravity(cfg.Gravity)

	if grid != nil {
		grid.Attach(space, filterFor(CategoryWorld, 0), collisionTypeSolid)
	}

	return &PhysicsSystem{
		space:    space,
		grid:     grid,
		log:      log.WithField("system", "physics"),
		entities: make(map[ecs.Entity]*bodyInfo),
		sensors:  make(map[ecs.Entity]*sensorInfo),
		shapes:   make(map[*cp.Shape]Registration),
	}
}

func (ps *PhysicsSystem) Space() *cp.Space {
	if ps == nil {
		return nil
	}
	return ps.space
}

func (ps *PhysicsSystem) Grid() *tilegrid.Grid {
	if ps == nil {
		return nil
	}
	return ps.grid
}

func (ps *PhysicsSystem) Update(w *ecs.World) {
	if ps == nil || w == nil {
		return
	}

	ps.ensureHandlers()
	ps.syncEntities(w)
	ps.syncPortalSensors(w)
	ps.recordPrevPositions(w)

	if dt := w.Delta(); dt > 0 {
		ps.space.Step(dt)
	}

	ps.syncTransforms(w)
}

// Lookup resolves a shape to its entity and capabilities.
func (ps *PhysicsSystem) Lookup(shape *cp.Shape) (Registration, bool) {
	if ps == nil || shape == nil {
		return Registration{}, false
	}
	reg, ok := ps.shapes[shape]
	return reg, ok
}

// DrainPortalContacts returns the contacts recorded since the last call.
func (ps *PhysicsSystem) DrainPortalContacts() []PortalContact {
	if ps == nil || len(ps.contacts) == 0 {
		return nil
	}
	out := ps.contacts
	ps.contacts = nil
	return out
}

// PortalsOverlapping returns the portal entities whose sensor intersects bb.
func (ps *PhysicsSystem) PortalsOverlapping(bb cp.BB) []ecs.Entity {
	if ps == nil {
		return nil
	}
	var out []ecs.Entity
	ps.space.BBQuery(bb, cp.SHAPE_FILTER_ALL, func(shape *cp.Shape, _ interface{}) {
		reg, ok := ps.shapes[shape]
		if !ok || !reg.Capabilities.Has(component.CapPortal) {
			return
		}
		if _, sensor := ps.sensors[reg.Entity]; sensor {
			out = append(out, reg.Entity)
		}
	}, nil)
	return out
}

// PortalSensor returns the sensor shape of an open portal entity.
func (ps *PhysicsSystem) PortalSensor(e ecs.Entity) (*cp.Shape, bool) {
	if ps == nil {
		return nil, false
	}
	info, ok := ps.sensors[e]
	if !ok {
		return nil, false
	}
	return info.shape, true
}

func (ps *PhysicsSystem) ensureHandlers() {
	if ps.handlersReady || ps.space == nil {
		return
	}

	portalHandler := ps.space.NewCollisionHandler(collisionTypeTraveler, collisionTypePortal)
	portalHandler.UserData = ps
	portalHandler.BeginFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
		sys, ok := userData.(*PhysicsSystem)
		if !ok || sys == nil {
			return true
		}
		shapeA, shapeB := arb.Shapes()
		traveler, okA := sys.shapes[shapeA]
		gate, okB := sys.shapes[shapeB]
		if !okA || !okB || !gate.Capabilities.Has(component.CapPortal) {
			return true
		}
		sys.contacts = append(sys.contacts, PortalContact{Entity: traveler.Entity, Portal: gate.Entity})
		return true
	}

	ps.handlersReady = true
}

func (ps *PhysicsSystem) syncEntities(w *ecs.World) {
	ps.cleanupEntities(w)

	entities := w.Query(component.PhysicsBodyComponent.Kind(), component.TransformComponent.Kind())
	for _, e := range entities {
		bodyComp, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())
		if !ok {
			continue
		}
		if info := ps.entities[e]; info != nil {
			if bodyComp.Body == nil || bodyComp.Shape == nil {
				bodyComp.Body = info.body
				bodyComp.Shape = info.shape
			}
			continue
		}
		transform, ok := ecs.Get(w, e, component.TransformComponent.Kind())
		if !ok {
			continue
		}

		var layer component.CollisionLayer
		if l, ok := ecs.Get(w, e, component.CollisionLayerComponent.Kind()); ok {
			layer = *l
		}
		var caps component.Capability
		if c, ok := ecs.Get(w, e, component.CapabilitiesComponent.Kind()); ok {
			caps = c.Set
		}
		traveler := ecs.Has(w, e, component.TeleportGateComponent.Kind())

		info := ps.createBodyInfo(transform, bodyComp, layer, traveler)
		ps.entities[e] = info
		ps.shapes[info.shape] = Registration{Entity: e, Capabilities: caps}

		bodyComp.Body = info.body
		bodyComp.Shape = info.shape
		ps.log.WithFields(log.Fields{"entity": e, "static": info.static}).Debug("register body")
	}
}

func (ps *PhysicsSystem) createBodyInfo(transform *component.Transform, bodyComp *component.PhysicsBody, layer component.CollisionLayer, traveler bool) *bodyInfo {
	width, height, radius := bodyComp.Width, bodyComp.Height, bodyComp.Radius
	if radius <= 0 && (width <= 0 || height <= 0) {
		width = defaultBodySize
		height = defaultBodySize
	}
	center := cp.Vector{X: transform.X, Y: transform.Y}

	category := layer.Category
	if category == 0 {
		category = CategoryBody
	}
	filter := filterFor(category, layer.Mask)

	info := &bodyInfo{static: bodyComp.Static}

	var shape *cp.Shape
	if bodyComp.Static {
		if radius > 0 {
			shape = cp.NewCircle(ps.space.StaticBody, radius, center)
		} else {
			shape = cp.NewBox2(ps.space.StaticBody, cp.NewBBForExtents(center, width/2, height/2), 0)
		}
		info.body = ps.space.StaticBody
	} else {
		mass := bodyComp.Mass
		if mass <= 0 {
			mass = 1
		}
		var moment float64
		if radius > 0 {
			moment = cp.MomentForCircle(mass, 0, radius, cp.Vector{})
		} else {
			moment = cp.MomentForBox(mass, width, height)
		}
		body := cp.NewBody(mass, moment)
		body.SetPosition(center)
		body.SetAngle(transform.Rotation)
		ps.space.AddBody(body)

		if radius > 0 {
			shape = cp.NewCircle(body, radius, cp.Vector{})
		} else {
			shape = cp.NewBox(body, width, height, 0)
		}
		info.body = body
	}

	shape.SetFriction(bodyComp.Friction)
	shape.SetElasticity(bodyComp.Elasticity)
	shape.SetSensor(bodyComp.Sensor)
	shape.Filter = filter
	if traveler {
		shape.SetCollisionType(collisionTypeTraveler)
	} else {
		shape.SetCollisionType(collisionTypeSolid)
	}
	ps.space.AddShape(shape)

	info.shape = shape
	return info
}

// syncPortalSensors keeps one sensor box behind every portal whose pair is
// open. A sensor is rebuilt whenever its portal moves.
func (ps *PhysicsSystem) syncPortalSensors(w *ecs.World) {
	for e := range ps.sensors {
		if !w.IsAlive(e) || !ecs.Has(w, e, component.PortalComponent.Kind()) {
			ps.removeSensor(e)
		}
	}

	ecs.ForEach(w, component.PortalComponent.Kind(), func(e ecs.Entity, p *component.Portal) {
		current := ps.sensors[e]
		end := p.End
		if end == nil || end.Linked() == nil || !end.Active || !end.Linked().Active {
			if current != nil {
				ps.removeSensor(e)
			}
			return
		}

		depth := p.SensorDepth
		if depth <= 0 {
			depth = defaultSensorDepth
		}
		frame := end.Frame()
		if current != nil && current.frame == frame && current.depth == depth {
			return
		}
		if current != nil {
			ps.removeSensor(e)
		}

		shape := cp.NewBox2(ps.space.StaticBody, sensorBB(frame, depth), 0)
		shape.SetSensor(true)
		shape.SetCollisionType(collisionTypePortal)
		shape.Filter = filterFor(CategoryPortal, 0)
		ps.space.AddShape(shape)

		ps.sensors[e] = &sensorInfo{shape: shape, frame: frame, depth: depth}
		ps.shapes[shape] = Registration{Entity: e, Capabilities: component.CapPortal}
		ps.log.WithFields(log.Fields{"entity": e, "color": end.Color, "position": frame.Position}).Debug("place portal sensor")
	})
}

func (ps *PhysicsSystem) removeSensor(e ecs.Entity) {
	info, ok := ps.sensors[e]
	if !ok {
		return
	}
	ps.space.RemoveShape(info.shape)
	delete(ps.shapes, info.shape)
	delete(ps.sensors, e)
}

// sensorBB spans the portal's length along its surface and reaches depth
// into the wall behind it.
func sensorBB(frame geom.Frame, depth float64) cp.BB {
	half := geom.Tangent(frame.Orientation).Mult(frame.Length / 2)
	a := frame.Position.Sub(half)
	b := frame.Position.Add(half).Sub(frame.Orientation.Mult(depth))
	return cp.BB{
		L: math.Min(a.X, b.X),
		B: math.Min(a.Y, b.Y),
		R: math.Max(a.X, b.X),
		T: math.Max(a.Y, b.Y),
	}
}

func (ps *PhysicsSystem) recordPrevPositions(w *ecs.World) {
	ecs.ForEach2(w, component.TeleportGateComponent.Kind(), component.PhysicsBodyComponent.Kind(), func(_ ecs.Entity, gate *component.TeleportGate, body *component.PhysicsBody) {
		if body.Body == nil {
			return
		}
		gate.PrevPosition = body.Body.Position()
	})
}

func (ps *PhysicsSystem) syncTransforms(w *ecs.World) {
	ecs.ForEach2(w, component.PhysicsBodyComponent.Kind(), component.TransformComponent.Kind(), func(_ ecs.Entity, body *component.PhysicsBody, transform *component.Transform) {
		if body.Body == nil || body.Static {
			return
		}
		pos := body.Body.Position()
		transform.X = pos.X
		transform.Y = pos.Y
		transform.Rotation = body.Body.Angle()
	})
}

func (ps *PhysicsSystem) cleanupEntities(w *ecs.World) {
	for e, info := range ps.entities {
		if w.IsAlive(e) && ecs.Has(w, e, component.PhysicsBodyComponent.Kind()) {
			continue
		}
		ps.space.RemoveShape(info.shape)
		delete(ps.shapes, info.shape)
		if !info.static {
			ps.space.RemoveBody(info.body)
		}
		delete(ps.entities, e)
	}
}

func filterFor(category, mask uint32) cp.ShapeFilter {
	return cp.NewShapeFilter(cp.NO_GROUP, uint(category), maskBits(mask))
}

// queryFilter sees every shape whose category is in mask.
func queryFilter(mask uint32) cp.ShapeFilter {
	return cp.NewShapeFilter(cp.NO_GROUP, cp.ALL_CATEGORIES, maskBits(mask))
}

func maskBits(mask uint32) uint {
	if mask == 0 {
		return cp.ALL_CATEGORIES
	}
	return uint(mask)
}
