package emu

const (
	Name    = "pixelview"
	Version = "0.1.0"
)
