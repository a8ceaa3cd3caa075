package prefabs

import (
	"errors"
	"fmt"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/portalcore/ecs/component"
	"github.com/milk9111/portalcore/geom"
	"github.com/milk9111/portalcore/portal"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const TuningFile = "tuning.yaml"

const (
	SearchModeFree = "free"
	SearchModeGrid = "grid"
)

var ErrInvalidTuning = errors.New("prefabs: invalid tuning")

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// Tuning holds every engine constant that is not part of a prefab.
type Tuning struct {
	CellSize float64        `yaml:"cell_size"`
	Portal   PortalTuning   `yaml:"portal"`
	Teleport TeleportTuning `yaml:"teleport"`
	Laser    LaserTuning    `yaml:"laser"`
	Physics  PhysicsTuning  `yaml:"physics"`
	Log      LogTuning      `yaml:"log"`
}

type PortalTuning struct {
	Length         float64 `yaml:"length"`
	SearchMode     string  `yaml:"search_mode"`
	MaxAimDistance float64 `yaml:"max_aim_distance"`
	SensorDepth    float64 `yaml:"sensor_depth"`
}

type TeleportTuning struct {
	OffsetMargin      float64 `yaml:"offset_margin"`
	MinExitVelocityUp float64 `yaml:"min_exit_velocity_up"`
}

type LaserTuning struct {
	MaxRange        float64 `yaml:"max_range"`
	DamagePerSecond float64 `yaml:"damage_per_second"`
	MaxSegments     int     `yaml:"max_segments"`
}

type PhysicsTuning struct {
	FixedStep        float64 `yaml:"fixed_step"`
	MaxStepsPerFrame int     `yaml:"max_steps_per_frame"`
	Gravity          float64 `yaml:"gravity"`
	Iterations       uint    `yaml:"iterations"`
}

type LogTuning struct {
	Level string `yaml:"level"`
}

// LoadTuning reads and validates a tuning file. Invalid tuning is a setup
// error and is never partially applied.
func LoadTuning(filename string) (Tuning, error) {
	t, err := LoadSpec[Tuning](filename)
	if err != nil {
		return Tuning{}, err
	}
	if err := t.Validate(); err != nil {
		return Tuning{}, fmt.Errorf("prefabs: %s: %w", filename, err)
	}
	return t, nil
}

// Validate reports every invalid field at once.
func (t Tuning) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidTuning}, args...)...))
	}

	if t.CellSize <= 0 {
		invalid("cell_size must be positive, got %g", t.CellSize)
	}
	if t.Portal.Length <= 0 {
		invalid("portal.length must be positive, got %g", t.Portal.Length)
	}
	if t.Portal.MaxAimDistance <= 0 {
		invalid("portal.max_aim_distance must be positive, got %g", t.Portal.MaxAimDistance)
	}
	if t.Portal.SensorDepth < 0 {
		invalid("portal.sensor_depth must not be negative, got %g", t.Portal.SensorDepth)
	}
	switch t.Portal.SearchMode {
	case SearchModeFree:
	case SearchModeGrid:
		if t.CellSize > 0 && t.Portal.Length > 0 {
			if _, err := portal.TileCount(t.Portal.Length, t.CellSize); err != nil {
				errs = append(errs, fmt.Errorf("%w: portal.length: %w", ErrInvalidTuning, err))
			}
		}
	default:
		invalid("portal.search_mode must be %q or %q, got %q", SearchModeFree, SearchModeGrid, t.Portal.SearchMode)
	}
	if t.Teleport.OffsetMargin < 0 {
		invalid("teleport.offset_margin must not be negative, got %g", t.Teleport.OffsetMargin)
	}
	if t.Teleport.MinExitVelocityUp < 0 {
		invalid("teleport.min_exit_velocity_up must not be negative, got %g", t.Teleport.MinExitVelocityUp)
	}
	if t.Laser.MaxRange <= 0 {
		invalid("laser.max_range must be positive, got %g", t.Laser.MaxRange)
	}
	if t.Laser.MaxSegments != component.MaxLaserSegments {
		invalid("laser.max_segments must be %d, got %d", component.MaxLaserSegments, t.Laser.MaxSegments)
	}
	if t.Physics.FixedStep <= 0 {
		invalid("physics.fixed_step must be positive, got %g", t.Physics.FixedStep)
	}
	if t.Physics.MaxStepsPerFrame <= 0 {
		invalid("physics.max_steps_per_frame must be positive, got %d", t.Physics.MaxStepsPerFrame)
	}
	if t.Physics.Iterations == 0 {
		invalid("physics.iterations must be positive")
	}
	if t.Log.Level != "" {
		if _, err := log.ParseLevel(t.Log.Level); err != nil {
			invalid("log.level: %v", err)
		}
	}

	return errors.Join(errs...)
}

func (t Tuning) ExitTuning() geom.ExitTuning {
	return geom.ExitTuning{
		Margin:            t.Teleport.OffsetMargin,
		MinExitVelocityUp: t.Teleport.MinExitVelocityUp,
	}
}

func (t Tuning) Gravity() cp.Vector {
	return cp.Vector{X: 0, Y: t.Physics.Gravity}
}

// LogLevel returns the configured level, Info when unset.
func (t Tuning) LogLevel() log.Level {
	if t.Log.Level == "" {
		return log.InfoLevel
	}
	lvl, err := log.ParseLevel(t.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}
