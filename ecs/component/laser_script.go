package component

// LaserScript drives a LaserEmitter from a tengo script.
type LaserScript struct {
	ScriptPath string
	// Target is the raw id of the entity the script aims at.
	Target uint64
	Phase  string
	Frame  int
}

var LaserScriptComponent = NewComponent[LaserScript]()
