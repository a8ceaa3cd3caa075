package system

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/portalcore/ecs"
	"github.com/milk9111/portalcore/ecs/entity"
	"github.com/milk9111/portalcore/portal"
)

// InputSystem turns mouse and gamepad presses into portal request entities.
// Left fires purple, right fires teal and C clears the pair. Shots leave
// from the gun origin toward the cursor.
type InputSystem struct {
	origin cp.Vector
	aim    cp.Vector
}

func NewInputSystem(origin cp.Vector) *InputSystem {
	return &InputSystem{origin: origin, aim: cp.Vector{X: 1}}
}

func (i *InputSystem) Origin() cp.Vector {
	return i.origin
}

// Aim is the last normalized aim direction.
func (i *InputSystem) Aim() cp.Vector {
	return i.aim
}

func (i *InputSystem) Update(w *ecs.World) {
	if i == nil || w == nil {
		return
	}

	const stickDeadzone = 0.2

	mx, my := ebiten.CursorPosition()
	if dir := (cp.Vector{X: float64(mx), Y: float64(my)}).Sub(i.origin); dir.LengthSq() > 0 {
		i.aim = dir.Normalize()
	}

	firePurple := inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft)
	fireTeal := inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight)
	clearPair := inpututil.IsKeyJustPressed(ebiten.KeyC)

	if gamepads := ebiten.GamepadIDs(); len(gamepads) > 0 {
		id := gamepads[0]
		rx := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisRightStickHorizontal)
		ry := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisRightStickVertical)
		if math.Hypot(rx, ry) > stickDeadzone {
			i.aim = cp.Vector{X: rx, Y: ry}.Normalize()
		}
		firePurple = firePurple || inpututil.IsStandardGamepadButtonJustPressed(id, ebiten.StandardGamepadButtonFrontBottomLeft)
		fireTeal = fireTeal || inpututil.IsStandardGamepadButtonJustPressed(id, ebiten.StandardGamepadButtonFrontBottomRight)
		clearPair = clearPair || inpututil.IsStandardGamepadButtonJustPressed(id, ebiten.StandardGamepadButtonRightTop)
	}

	if clearPair {
		if _, err := entity.ClearPortals(w); err != nil {
			panic("input system: add clear request: " + err.Error())
		}
	}
	for _, shot := range []struct {
		pressed bool
		color   portal.Color
	}{{firePurple, portal.Purple}, {fireTeal, portal.Teal}} {
		if !shot.pressed {
			continue
		}
		if _, err := entity.FirePortal(w, shot.color, i.origin, i.aim); err != nil {
			panic("input system: add fire request: " + err.Error())
		}
	}
}
