package storage

import (
	"fmt"
	"image/color"
	"strings"
)

// Config represents the application configuration stored in config.json
type Config struct {
	Version    int              `json:"version"`
	Video      VideoConfig      `json:"video"`
	Window     WindowConfig     `json:"window"`
	Emulation  EmulationConfig  `json:"emulation"`
	Screenshot ScreenshotConfig `json:"screenshot"`
}

// VideoConfig contains presentation settings
type VideoConfig struct {
	ScaleMode  string `json:"scaleMode"`  // "fit" or "integer"
	DarkMode   bool   `json:"darkMode"`   // Invert colors
	Background string `json:"background"` // "#RRGGBB" letterbox color
	Shader     bool   `json:"shader"`     // Sample on the GPU with the Kage shader
}

// WindowConfig contains the initial window size
type WindowConfig struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// EmulationConfig contains core settings
type EmulationConfig struct {
	Palette    string `json:"palette"` // "gray" or "green"
	AutoScroll bool   `json:"autoScroll"`
}

// ScreenshotConfig contains capture settings
type ScreenshotConfig struct {
	Format string `json:"format"` // "png" or "bmp"
	Scale  int    `json:"scale"`  // Integer upscale, 1-8
}

// DefaultConfig returns a new Config with default values
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Video: VideoConfig{
			ScaleMode:  "fit",
			DarkMode:   false,
			Background: "#000000",
			Shader:     true,
		},
		Window: WindowConfig{
			Width:  640,
			Height: 576,
		},
		Emulation: EmulationConfig{
			Palette:    "gray",
			AutoScroll: true,
		},
		Screenshot: ScreenshotConfig{
			Format: "png",
			Scale:  1,
		},
	}
}

// ParseHexColor parses "#RRGGBB" or "RRGGBB" into an opaque color.
func ParseHexColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	var c color.RGBA
	if len(hex) != 6 {
		return c, fmt.Errorf("invalid color %q: expected #RRGGBB", s)
	}
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
		return c, fmt.Errorf("invalid color %q: %w", s, err)
	}
	c.A = 0xFF
	return c, nil
}
