package component

// CollisionLayer declares a collision category and mask so the physics
// system can filter contacts and laser queries between groups of objects.
type CollisionLayer struct {
	// Category is this entity's category bitmask. Zero means category 1.
	Category uint32 `yaml:"category,omitempty"`
	// Mask is the set of categories this entity collides with. Zero means all.
	Mask uint32 `yaml:"mask,omitempty"`
}

var CollisionLayerComponent = NewComponent[CollisionLayer]()
