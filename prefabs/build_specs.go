package prefabs

import "gopkg.in/yaml.v3"

type EntityBuildSpec struct {
	Name       string         `yaml:"name"`
	Components map[string]any `yaml:"components"`
}

func LoadEntityBuildSpec(filename string) (EntityBuildSpec, error) {
	return LoadSpec[EntityBuildSpec](filename)
}

// DecodeComponentSpec re-decodes one raw component block into T.
func DecodeComponentSpec[T any](raw any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return zero, err
	}
	var out T
	if err := yaml.Unmarshal(b, &out); err != nil {
		return zero, err
	}
	return out, nil
}

type TransformComponentSpec struct {
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	Rotation float64 `yaml:"rotation"`
}

type PhysicsBodyComponentSpec struct {
	Width      float64 `yaml:"width"`
	Height     float64 `yaml:"height"`
	Radius     float64 `yaml:"radius"`
	Mass       float64 `yaml:"mass"`
	Friction   float64 `yaml:"friction"`
	Elasticity float64 `yaml:"elasticity"`
	Static     bool    `yaml:"static"`
	Sensor     bool    `yaml:"sensor"`
}

type CollisionLayerComponentSpec struct {
	Category uint32 `yaml:"category"`
	Mask     uint32 `yaml:"mask"`
}

type HealthComponentSpec struct {
	Max     float64 `yaml:"max"`
	Current float64 `yaml:"current"`
}

// CapabilitiesComponentSpec lists capability names: portal, damageable,
// laser_receiver, carryable.
type CapabilitiesComponentSpec []string

type TeleportGateComponentSpec struct{}

type LaserEmitterComponentSpec struct {
	DirectionX      float64 `yaml:"direction_x"`
	DirectionY      float64 `yaml:"direction_y"`
	MaxRange        float64 `yaml:"max_range"`
	DamagePerSecond float64 `yaml:"damage_per_second"`
	Mask            uint32  `yaml:"mask"`
	Firing          bool    `yaml:"firing"`
}

type LaserScriptComponentSpec struct {
	Script string `yaml:"script"`
	Phase  string `yaml:"phase"`
}

type LaserReceiverComponentSpec struct{}
