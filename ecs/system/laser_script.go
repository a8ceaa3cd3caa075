package system

import (
	"fmt"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/portalcore/ecs"
	"github.com/milk9111/portalcore/ecs/component"
	"github.com/milk9111/portalcore/prefabs"
	log "github.com/sirupsen/logrus"
)

const defaultLaserPhase = "charge"

const laserScriptDispatch = `
if __run {
	update(__engine, __state, __phase, __frame)
}
`

// LaserScriptSystem drives laser emitters from tengo scripts. A script
// defines update(engine, state, phase, frame) and may set initial_phase.
// The engine exposes set_firing, aim_at_target, aim, get_position,
// get_target_position and transition.
type LaserScriptSystem struct {
	runtimes map[ecs.Entity]*laserScriptRuntime
	log      *log.Entry
}

type laserScriptRuntime struct {
	path     string
	compiled *tengo.Compiled
	state    *tengo.Map
	initial  string
	pending  string
	failed   bool
}

func NewLaserScriptSystem() *LaserScriptSystem {
	return &LaserScriptSystem{
		runtimes: make(map[ecs.Entity]*laserScriptRuntime),
		log:      log.WithField("system", "laser_script"),
	}
}

// Invalidate drops compiled scripts for path so they reload on next use.
func (ls *LaserScriptSystem) Invalidate(path string) {
	if ls == nil {
		return
	}
	for e, rt := range ls.runtimes {
		if path == "" || rt.path == path {
			delete(ls.runtimes, e)
		}
	}
}

func (ls *LaserScriptSystem) Update(w *ecs.World) {
	if ls == nil || w == nil {
		return
	}

	for e := range ls.runtimes {
		if !ecs.Has(w, e, component.LaserScriptComponent.Kind()) {
			delete(ls.runtimes, e)
		}
	}

	ecs.ForEach3(w, component.LaserScriptComponent.Kind(), component.LaserEmitterComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, script *component.LaserScript, emitter *component.LaserEmitter, transform *component.Transform) {
		rt, err := ls.runtime(e, script.ScriptPath)
		if err != nil {
			ls.log.WithError(err).WithField("entity", e).Error("load laser script")
			return
		}
		if rt.failed {
			return
		}

		if script.Phase == "" {
			script.Phase = rt.initial
			script.Frame = 0
		}

		engine := buildLaserScriptEngine(w, rt, script, emitter, transform)
		if err := rt.run(true, script.Phase, script.Frame, engine); err != nil {
			rt.failed = true
			ls.log.WithError(err).WithFields(log.Fields{"entity": e, "phase": script.Phase}).Error("run laser script")
			return
		}

		if rt.pending != "" && rt.pending != script.Phase {
			ls.log.WithFields(log.Fields{"entity": e, "from": script.Phase, "to": rt.pending}).Debug("laser phase")
			script.Phase = rt.pending
			script.Frame = 0
		} else {
			script.Frame++
		}
		rt.pending = ""
	})
}

func (ls *LaserScriptSystem) runtime(e ecs.Entity, path string) (*laserScriptRuntime, error) {
	if rt, ok := ls.runtimes[e]; ok && rt.path == path {
		return rt, nil
	}
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("laser script: empty script path")
	}

	src, err := prefabs.LoadScript(path)
	if err != nil {
		return nil, fmt.Errorf("laser script: load %s: %w", path, err)
	}
	rt, err := compileLaserScript(path, src)
	if err != nil {
		return nil, err
	}
	ls.runtimes[e] = rt
	return rt, nil
}

func compileLaserScript(path string, src []byte) (*laserScriptRuntime, error) {
	script := tengo.NewScript([]byte(string(src) + "\n" + laserScriptDispatch))
	_ = script.Add("__run", false)
	_ = script.Add("__engine", map[string]any{})
	_ = script.Add("__state", map[string]any{})
	_ = script.Add("__phase", "")
	_ = script.Add("__frame", 0)
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("laser script: compile %s: %w", path, err)
	}

	rt := &laserScriptRuntime{
		path:     path,
		compiled: compiled,
		state:    &tengo.Map{Value: map[string]tengo.Object{}},
		initial:  defaultLaserPhase,
	}

	// A dry run evaluates the script's globals without calling update.
	if err := rt.run(false, "", 0, nil); err != nil {
		return nil, fmt.Errorf("laser script: init %s: %w", path, err)
	}
	if compiled.IsDefined("initial_phase") {
		if s := strings.TrimSpace(compiled.Get("initial_phase").String()); s != "" {
			rt.initial = s
		}
	}
	return rt, nil
}

func (rt *laserScriptRuntime) run(call bool, phase string, frame int, engine *tengo.ImmutableMap) error {
	if engine == nil {
		engine = &tengo.ImmutableMap{Value: map[string]tengo.Object{}}
	}
	if err := rt.compiled.Set("__run", call); err != nil {
		return err
	}
	if err := rt.compiled.Set("__engine", engine); err != nil {
		return err
	}
	if err := rt.compiled.Set("__state", rt.state); err != nil {
		return err
	}
	if err := rt.compiled.Set("__phase", phase); err != nil {
		return err
	}
	if err := rt.compiled.Set("__frame", frame); err != nil {
		return err
	}
	return rt.compiled.Run()
}

func buildLaserScriptEngine(w *ecs.World, rt *laserScriptRuntime, script *component.LaserScript, emitter *component.LaserEmitter, transform *component.Transform) *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	targetPosition := func() (cp.Vector, bool) {
		if script.Target == 0 {
			return cp.Vector{}, false
		}
		t, ok := ecs.Get(w, ecs.Entity(script.Target), component.TransformComponent.Kind())
		if !ok {
			return cp.Vector{}, false
		}
		return cp.Vector{X: t.X, Y: t.Y}, true
	}

	values["set_firing"] = &tengo.UserFunction{Name: "set_firing", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		emitter.Firing = !args[0].IsFalsy()
		return tengo.TrueValue, nil
	}}

	values["aim_at_target"] = &tengo.UserFunction{Name: "aim_at_target", Value: func(args ...tengo.Object) (tengo.Object, error) {
		target, ok := targetPosition()
		if !ok {
			return tengo.FalseValue, nil
		}
		dir := target.Sub(cp.Vector{X: transform.X, Y: transform.Y})
		if dir.LengthSq() == 0 {
			return tengo.FalseValue, nil
		}
		emitter.Direction = dir.Normalize()
		return tengo.TrueValue, nil
	}}

	values["aim"] = &tengo.UserFunction{Name: "aim", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 2 {
			return tengo.FalseValue, nil
		}
		x, okX := tengo.ToFloat64(args[0])
		y, okY := tengo.ToFloat64(args[1])
		dir := cp.Vector{X: x, Y: y}
		if !okX || !okY || dir.LengthSq() == 0 {
			return tengo.FalseValue, nil
		}
		emitter.Direction = dir.Normalize()
		return tengo.TrueValue, nil
	}}

	values["get_position"] = &tengo.UserFunction{Name: "get_position", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return vectorObject(cp.Vector{X: transform.X, Y: transform.Y}), nil
	}}

	values["get_target_position"] = &tengo.UserFunction{Name: "get_target_position", Value: func(args ...tengo.Object) (tengo.Object, error) {
		target, ok := targetPosition()
		if !ok {
			return tengo.UndefinedValue, nil
		}
		return vectorObject(target), nil
	}}

	values["target_alive"] = &tengo.UserFunction{Name: "target_alive", Value: func(args ...tengo.Object) (tengo.Object, error) {
		h, ok := ecs.Get(w, ecs.Entity(script.Target), component.HealthComponent.Kind())
		if !ok || !h.Alive() {
			return tengo.FalseValue, nil
		}
		return tengo.TrueValue, nil
	}}

	values["transition"] = &tengo.UserFunction{Name: "transition", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		name, _ := tengo.ToString(args[0])
		name = strings.TrimSpace(name)
		if name == "" {
			return tengo.FalseValue, nil
		}
		rt.pending = name
		return tengo.TrueValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func vectorObject(v cp.Vector) tengo.Object {
	return &tengo.Array{Value: []tengo.Object{&tengo.Float{Value: v.X}, &tengo.Float{Value: v.Y}}}
}
