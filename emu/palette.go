package emu

import (
	"fmt"
	"image/color"
	"strings"
)

// Palette maps the four shades to display colors, lightest first.
type Palette struct {
	Name   string
	Colors [4]color.RGBA
}

// GrayPalette is a neutral four-step gray ramp.
var GrayPalette = Palette{
	Name: "gray",
	Colors: [4]color.RGBA{
		{0xFF, 0xFF, 0xFF, 0xFF},
		{0xAA, 0xAA, 0xAA, 0xFF},
		{0x55, 0x55, 0x55, 0xFF},
		{0x00, 0x00, 0x00, 0xFF},
	},
}

// GreenPalette approximates the original handheld's green LCD.
var GreenPalette = Palette{
	Name: "green",
	Colors: [4]color.RGBA{
		{0xE0, 0xF8, 0xD0, 0xFF},
		{0x88, 0xC0, 0x70, 0xFF},
		{0x34, 0x68, 0x56, 0xFF},
		{0x08, 0x18, 0x20, 0xFF},
	},
}

// Palettes lists the selectable palettes in option order.
var Palettes = []Palette{GrayPalette, GreenPalette}

// PaletteNames returns the palette names in option order.
func PaletteNames() []string {
	names := make([]string, len(Palettes))
	for i, p := range Palettes {
		names[i] = p.Name
	}
	return names
}

// PaletteByName looks up a palette (case-insensitive).
func PaletteByName(name string) (Palette, error) {
	for _, p := range Palettes {
		if strings.EqualFold(p.Name, strings.TrimSpace(name)) {
			return p, nil
		}
	}
	return GrayPalette, fmt.Errorf("unknown palette: %q", name)
}

func paletteIndex(name string) int {
	for i, p := range Palettes {
		if p.Name == name {
			return i
		}
	}
	return 0
}
