package main

import (
	libretro "github.com/user-none/eblitui/libretro"
	"github.com/user-none/pixelview/adapter"
	"github.com/user-none/pixelview/emu"
)

func init() {
	libretro.RegisterFactory(&adapter.Factory{}, []libretro.RetropadMapping{
		{RetroID: libretro.JoypadA, BitID: emu.ButtonA},           // Cycle palette
		{RetroID: libretro.JoypadB, BitID: emu.ButtonB},           // Fast scroll
		{RetroID: libretro.JoypadSelect, BitID: emu.ButtonSelect}, // Rotate shades
		{RetroID: libretro.JoypadStart, BitID: emu.ButtonStart},   // Toggle autoscroll
	})
}

func main() {}
