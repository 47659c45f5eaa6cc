package emu

import (
	emucore "github.com/user-none/eblitui/api"
)

// Region is an alias for emucore.Region.
type Region = emucore.Region

const (
	RegionNTSC = emucore.RegionNTSC
	RegionPAL  = emucore.RegionPAL
)

// Timing holds the frame timing of the handheld. There is a single timing
// for every region: the LCD refreshes at about 59.73 Hz with 154 lines.
var Timing = emucore.Timing{
	FPS:       60,
	Scanlines: 154,
}

// DefaultRegion returns the default region (NTSC).
func DefaultRegion() Region {
	return RegionNTSC
}

// DetectRegionFromROM reports NTSC for every image. The bool is true when
// the data carries a cartridge header with a valid checksum.
func DetectRegionFromROM(rom []byte) (Region, bool) {
	h, err := ParseHeader(rom)
	if err != nil {
		return RegionNTSC, false
	}
	return RegionNTSC, h.ChecksumValid
}
