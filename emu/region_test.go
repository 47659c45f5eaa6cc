package emu

import "testing"

// TestRegion_Timing verifies the single frame timing
func TestRegion_Timing(t *testing.T) {
	if Timing.FPS != 60 {
		t.Errorf("FPS: expected 60, got %d", Timing.FPS)
	}
	if Timing.Scanlines != 154 {
		t.Errorf("Scanlines: expected 154, got %d", Timing.Scanlines)
	}
}

// TestRegion_DefaultRegion verifies default is NTSC
func TestRegion_DefaultRegion(t *testing.T) {
	if DefaultRegion() != RegionNTSC {
		t.Errorf("DefaultRegion: expected NTSC, got %v", DefaultRegion())
	}
}

// TestRegion_DetectFromROM verifies detection reports header validity
func TestRegion_DetectFromROM(t *testing.T) {
	rom := createTestROM(0x8000, "TILES")
	region, ok := DetectRegionFromROM(rom)
	if region != RegionNTSC || !ok {
		t.Errorf("valid header: expected (NTSC, true), got (%v, %v)", region, ok)
	}

	rom[headerChecksum]++
	if _, ok := DetectRegionFromROM(rom); ok {
		t.Error("bad checksum should not be detected")
	}

	if _, ok := DetectRegionFromROM(make([]byte, 16)); ok {
		t.Error("short data should not be detected")
	}
}
