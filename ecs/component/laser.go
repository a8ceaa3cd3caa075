package component

import "github.com/jakecoffman/cp"

const (
	// MaxLaserSegments is one segment per side of the single portal pair.
	MaxLaserSegments = 2
	// MaxLaserPositions bounds the points stored per segment.
	MaxLaserPositions = 16
)

// LaserEmitter casts a beam along Direction while Firing.
type LaserEmitter struct {
	Direction       cp.Vector
	MaxRange        float64
	DamagePerSecond float64
	// Mask selects the collision categories the beam sees. Zero means all.
	Mask   uint32
	Firing bool
}

var LaserEmitterComponent = NewComponent[LaserEmitter]()

// LaserSegment is a bounded polyline. Points past Count are zero.
type LaserSegment struct {
	Points [MaxLaserPositions]cp.Vector
	Count  int
}

// Append adds p and reports false when the segment is full.
func (s *LaserSegment) Append(p cp.Vector) bool {
	if s.Count >= MaxLaserPositions {
		return false
	}
	s.Points[s.Count] = p
	s.Count++
	return true
}

func (s *LaserSegment) Positions() []cp.Vector {
	return s.Points[:s.Count]
}

// LaserBeam is the per-tick snapshot written by the laser system.
type LaserBeam struct {
	Segments     [MaxLaserSegments]LaserSegment
	SegmentCount int
	// Target is the raw id of the damaged entity, zero when none.
	Target  uint64
	Anomaly bool
}

func (b *LaserBeam) Reset() {
	*b = LaserBeam{}
}

var LaserBeamComponent = NewComponent[LaserBeam]()

// LaserReceiver is powered on every tick a beam terminates on it.
type LaserReceiver struct {
	Powered bool
}

var LaserReceiverComponent = NewComponent[LaserReceiver]()
