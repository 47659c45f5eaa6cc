package video

import "image/color"

// DefaultBackground is the neutral letterbox color.
var DefaultBackground = color.RGBA{0, 0, 0, 0xFF}

// ApplyDisplayMode returns the color written for a sampled source color.
// With displayMode set the RGB channels are inverted and alpha is kept, so
// the white-background palettes of handheld systems render light-on-dark.
// The transform is its own inverse: applying it twice returns c.
// Framebuffers are opaque, so straight and premultiplied alpha agree.
func ApplyDisplayMode(c color.RGBA, displayMode bool) color.RGBA {
	if !displayMode {
		return c
	}
	return color.RGBA{R: 0xFF - c.R, G: 0xFF - c.G, B: 0xFF - c.B, A: c.A}
}
