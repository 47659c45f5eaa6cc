package storage

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/user-none/pixelview/emu"
	"github.com/user-none/pixelview/screenshot"
	"github.com/user-none/pixelview/video"
)

// Window size limits: at least one unscaled frame, at most 8K.
const (
	minWindowWidth  = emu.ScreenWidth
	minWindowHeight = emu.ScreenHeight
	maxWindowSide   = 8192
)

// detectPresentKeys returns the dotted paths ("video.scaleMode") of every
// key present in the top two levels of a config file.
func detectPresentKeys(jsonBytes []byte) map[string]bool {
	present := make(map[string]bool)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(jsonBytes, &raw); err != nil {
		return present
	}
	for k, v := range raw {
		present[k] = true
		var nested map[string]json.RawMessage
		if json.Unmarshal(v, &nested) != nil {
			continue
		}
		for nk := range nested {
			present[k+"."+nk] = true
		}
	}
	return present
}

// ApplyMissingDefaults sets defaults only for fields absent from the file,
// so explicit false or zero values survive.
func ApplyMissingDefaults(config *Config, presentKeys map[string]bool) {
	defaults := DefaultConfig()

	fields := []struct {
		key   string
		apply func()
	}{
		{"version", func() { config.Version = defaults.Version }},
		{"video.scaleMode", func() { config.Video.ScaleMode = defaults.Video.ScaleMode }},
		{"video.background", func() { config.Video.Background = defaults.Video.Background }},
		{"video.shader", func() { config.Video.Shader = defaults.Video.Shader }},
		{"window.width", func() { config.Window.Width = defaults.Window.Width }},
		{"window.height", func() { config.Window.Height = defaults.Window.Height }},
		{"emulation.palette", func() { config.Emulation.Palette = defaults.Emulation.Palette }},
		{"emulation.autoScroll", func() { config.Emulation.AutoScroll = defaults.Emulation.AutoScroll }},
		{"screenshot.format", func() { config.Screenshot.Format = defaults.Screenshot.Format }},
		{"screenshot.scale", func() { config.Screenshot.Scale = defaults.Screenshot.Scale }},
	}
	for _, f := range fields {
		if !presentKeys[f.key] {
			f.apply()
		}
	}
}

// configRule checks one field and resets it to the default.
type configRule struct {
	check func(c *Config) string // Empty when valid
	reset func(c, defaults *Config)
}

var configRules = []configRule{
	{
		check: func(c *Config) string {
			if c.Version != 1 {
				return fmt.Sprintf("version: %d (valid: 1)", c.Version)
			}
			return ""
		},
		reset: func(c, d *Config) { c.Version = d.Version },
	},
	{
		check: func(c *Config) string {
			if _, err := video.ParseScaleMode(c.Video.ScaleMode); err != nil {
				return fmt.Sprintf("video.scaleMode: %q (valid: \"fit\", \"integer\")", c.Video.ScaleMode)
			}
			return ""
		},
		reset: func(c, d *Config) { c.Video.ScaleMode = d.Video.ScaleMode },
	},
	{
		check: func(c *Config) string {
			if _, err := ParseHexColor(c.Video.Background); err != nil {
				return fmt.Sprintf("video.background: %q (valid: \"#RRGGBB\")", c.Video.Background)
			}
			return ""
		},
		reset: func(c, d *Config) { c.Video.Background = d.Video.Background },
	},
	{
		check: func(c *Config) string {
			if c.Window.Width < minWindowWidth || c.Window.Width > maxWindowSide {
				return fmt.Sprintf("window.width: %d (valid: %d-%d)", c.Window.Width, minWindowWidth, maxWindowSide)
			}
			return ""
		},
		reset: func(c, d *Config) { c.Window.Width = d.Window.Width },
	},
	{
		check: func(c *Config) string {
			if c.Window.Height < minWindowHeight || c.Window.Height > maxWindowSide {
				return fmt.Sprintf("window.height: %d (valid: %d-%d)", c.Window.Height, minWindowHeight, maxWindowSide)
			}
			return ""
		},
		reset: func(c, d *Config) { c.Window.Height = d.Window.Height },
	},
	{
		check: func(c *Config) string {
			if !slices.Contains(emu.PaletteNames(), c.Emulation.Palette) {
				return fmt.Sprintf("emulation.palette: %q (valid: %v)", c.Emulation.Palette, emu.PaletteNames())
			}
			return ""
		},
		reset: func(c, d *Config) { c.Emulation.Palette = d.Emulation.Palette },
	},
	{
		check: func(c *Config) string {
			if _, err := screenshot.ParseFormat(c.Screenshot.Format); err != nil {
				return fmt.Sprintf("screenshot.format: %q (valid: \"png\", \"bmp\")", c.Screenshot.Format)
			}
			return ""
		},
		reset: func(c, d *Config) { c.Screenshot.Format = d.Screenshot.Format },
	},
	{
		check: func(c *Config) string {
			if c.Screenshot.Scale < 1 || c.Screenshot.Scale > screenshot.MaxScale {
				return fmt.Sprintf("screenshot.scale: %d (valid: 1-%d)", c.Screenshot.Scale, screenshot.MaxScale)
			}
			return ""
		},
		reset: func(c, d *Config) { c.Screenshot.Scale = d.Screenshot.Scale },
	},
}

// ValidateConfig checks all config fields against valid ranges and returns
// human-readable error descriptions. An empty slice means the config is valid.
func ValidateConfig(config *Config) []string {
	var errors []string
	for _, r := range configRules {
		if msg := r.check(config); msg != "" {
			errors = append(errors, msg)
		}
	}
	return errors
}

// CorrectConfig resets any invalid fields to their defaults from
// DefaultConfig(). Valid fields are preserved.
func CorrectConfig(config *Config) *Config {
	defaults := DefaultConfig()
	for _, r := range configRules {
		if r.check(config) != "" {
			r.reset(config, defaults)
		}
	}
	return config
}
