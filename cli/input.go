//go:build !libretro && !ios

package cli

import (
	"github.com/hajimehoshi/ebiten/v2"
	emucore "github.com/user-none/eblitui/api"
	"github.com/user-none/pixelview/emu"
)

// keyBinding maps keyboard keys to a button bit.
type keyBinding struct {
	bit  int
	keys []ebiten.Key
}

// padBinding maps a standard gamepad button to a button bit.
type padBinding struct {
	bit    int
	button ebiten.StandardGamepadButton
}

// Keyboard: WASD or arrows move, J/Z is A, K/X is B, right shift is Select,
// Enter is Start.
var keyBindings = []keyBinding{
	{emucore.ButtonUp, []ebiten.Key{ebiten.KeyW, ebiten.KeyArrowUp}},
	{emucore.ButtonDown, []ebiten.Key{ebiten.KeyS, ebiten.KeyArrowDown}},
	{emucore.ButtonLeft, []ebiten.Key{ebiten.KeyA, ebiten.KeyArrowLeft}},
	{emucore.ButtonRight, []ebiten.Key{ebiten.KeyD, ebiten.KeyArrowRight}},
	{emu.ButtonA, []ebiten.Key{ebiten.KeyJ, ebiten.KeyZ}},
	{emu.ButtonB, []ebiten.Key{ebiten.KeyK, ebiten.KeyX}},
	{emu.ButtonSelect, []ebiten.Key{ebiten.KeyShiftRight}},
	{emu.ButtonStart, []ebiten.Key{ebiten.KeyEnter}},
}

var padBindings = []padBinding{
	{emucore.ButtonUp, ebiten.StandardGamepadButtonLeftTop},
	{emucore.ButtonDown, ebiten.StandardGamepadButtonLeftBottom},
	{emucore.ButtonLeft, ebiten.StandardGamepadButtonLeftLeft},
	{emucore.ButtonRight, ebiten.StandardGamepadButtonLeftRight},
	{emu.ButtonA, ebiten.StandardGamepadButtonRightBottom},
	{emu.ButtonB, ebiten.StandardGamepadButtonRightRight},
	{emu.ButtonSelect, ebiten.StandardGamepadButtonCenterLeft},
	{emu.ButtonStart, ebiten.StandardGamepadButtonCenterRight},
}

const stickDeadzone = 0.5

// keyButtons builds the button bitmask from a key state function.
func keyButtons(isDown func(ebiten.Key) bool) uint32 {
	var buttons uint32
	for _, b := range keyBindings {
		for _, k := range b.keys {
			if isDown(k) {
				buttons |= 1 << b.bit
				break
			}
		}
	}
	return buttons
}

// stickButtons converts left stick axes into d-pad bits.
func stickButtons(x, y float64) uint32 {
	var buttons uint32
	if x < -stickDeadzone {
		buttons |= 1 << emucore.ButtonLeft
	}
	if x > stickDeadzone {
		buttons |= 1 << emucore.ButtonRight
	}
	if y < -stickDeadzone {
		buttons |= 1 << emucore.ButtonUp
	}
	if y > stickDeadzone {
		buttons |= 1 << emucore.ButtonDown
	}
	return buttons
}

// pollButtons reads the keyboard and every connected standard gamepad.
func pollButtons(gamepads []ebiten.GamepadID) (uint32, []ebiten.GamepadID) {
	buttons := keyButtons(ebiten.IsKeyPressed)

	gamepads = ebiten.AppendGamepadIDs(gamepads[:0])
	for _, id := range gamepads {
		if !ebiten.IsStandardGamepadLayoutAvailable(id) {
			continue
		}
		for _, b := range padBindings {
			if ebiten.IsStandardGamepadButtonPressed(id, b.button) {
				buttons |= 1 << b.bit
			}
		}
		buttons |= stickButtons(
			ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal),
			ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickVertical),
		)
	}
	return buttons, gamepads
}
