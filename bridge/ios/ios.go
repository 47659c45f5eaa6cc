// Package emuios provides a gomobile-compatible interface to the viewer.
// The host owns the Metal pipeline; this package supplies the framebuffer,
// the quad and background vertex data, and the display parameters in the
// layouts the shaders expect.
package emuios

import (
	"fmt"
	"hash/crc32"
	"image/color"
	"os"
	"path/filepath"

	"github.com/user-none/pixelview/emu"
	"github.com/user-none/pixelview/romloader"
	"github.com/user-none/pixelview/video"
)

// ExtractResult contains the result of ROM extraction
type ExtractResult struct {
	Crc32    string // Hex string, e.g., "AABBCCDD"
	Filename string // Name inside the archive, or the file name for raw data
}

// currentEmu holds the viewer state (unexported)
var currentEmu *emulatorState

type emulatorState struct {
	core      *emu.Emulator
	frameData []byte
	stateData []byte

	renderSize video.Size
	darkMode   bool
	scaleMode  video.ScaleMode
	background color.RGBA
	geometry   video.GeometryCache
}

// InitFromPath creates a viewer from a ROM file path.
// Automatically extracts from ZIP/7z/gzip/RAR if needed.
// Returns true on success, false on error.
func InitFromPath(path string) bool {
	rom, err := romloader.Load(path)
	if err != nil {
		return false
	}
	core, err := emu.NewEmulator(rom.Data, emu.DefaultRegion())
	if err != nil {
		return false
	}
	currentEmu = &emulatorState{
		core:       core,
		background: color.RGBA{A: 255},
	}
	currentEmu.cacheFrame()
	return true
}

// Close releases the viewer.
func Close() {
	if currentEmu != nil {
		currentEmu.core.Close()
	}
	currentEmu = nil
}

// RunFrame advances one frame and caches the framebuffer.
func RunFrame() {
	if currentEmu == nil {
		return
	}
	currentEmu.core.RunFrame()
	currentEmu.cacheFrame()
}

func (s *emulatorState) cacheFrame() {
	stride := s.core.GetFramebufferStride()
	n := stride * s.core.GetActiveHeight()
	if cap(s.frameData) < n {
		s.frameData = make([]byte, n)
	}
	s.frameData = s.frameData[:n]
	copy(s.frameData, s.core.GetFramebuffer())
}

// FrameWidth returns the framebuffer width (always 160).
func FrameWidth() int {
	return emu.ScreenWidth
}

// FrameHeight returns the framebuffer height (always 144).
func FrameHeight() int {
	return emu.ScreenHeight
}

// GetFrameData returns the last frame as tightly packed RGBA.
func GetFrameData() []byte {
	if currentEmu == nil {
		return nil
	}
	return currentEmu.frameData
}

// SetInput sets the player 1 button bitmask.
func SetInput(buttons int) {
	if currentEmu != nil {
		currentEmu.core.SetInput(0, uint32(buttons))
	}
}

// SetOption forwards a core option such as "palette" or "autoscroll".
func SetOption(key, value string) {
	if currentEmu != nil {
		currentEmu.core.SetOption(key, value)
	}
}

// Resize sets the drawable size in pixels.
func Resize(width, height int) {
	if currentEmu != nil {
		currentEmu.renderSize = video.SizeOf(width, height)
	}
}

// SetDarkMode toggles the display mode color transform.
func SetDarkMode(on bool) {
	if currentEmu != nil {
		currentEmu.darkMode = on
	}
}

// SetIntegerScale selects integer scaling instead of fit.
func SetIntegerScale(on bool) {
	if currentEmu == nil {
		return
	}
	currentEmu.scaleMode = video.ScaleFit
	if on {
		currentEmu.scaleMode = video.ScaleInteger
	}
}

// SetBackground sets the letterbox color from 0xRRGGBB.
func SetBackground(rgb int) {
	if currentEmu != nil {
		currentEmu.background = color.RGBA{uint8(rgb >> 16), uint8(rgb >> 8), uint8(rgb), 255}
	}
}

func (s *emulatorState) currentGeometry() video.Geometry {
	g, _ := s.geometry.Get(s.renderSize, video.SizeOf(emu.ScreenWidth, emu.ScreenHeight), s.scaleMode)
	return g
}

// Scale returns the current source-to-viewport scale, 0 before Resize.
func Scale() float64 {
	if currentEmu == nil {
		return 0
	}
	return currentEmu.currentGeometry().Scale
}

// VertexData returns the textured quad (4 vertices, 16 bytes each).
// Empty when the viewport has no area.
func VertexData() []byte {
	if currentEmu == nil {
		return nil
	}
	g := currentEmu.currentGeometry()
	if g.Empty() {
		return nil
	}
	return g.Quad.AppendVertexData(make([]byte, 0, len(g.Quad)*video.VertexStride))
}

// ParamsData returns the 24 byte display parameters block.
func ParamsData() []byte {
	if currentEmu == nil {
		return nil
	}
	p := video.NewDisplayParameters(currentEmu.renderSize,
		video.SizeOf(emu.ScreenWidth, emu.ScreenHeight), currentEmu.darkMode)
	data, _ := p.MarshalBinary()
	return data
}

// BarsData returns the letterbox bars as quads of colored vertices
// (4 vertices, 32 bytes each), in the same order as the textured quad.
// The bars keep the background color in dark mode.
func BarsData() []byte {
	if currentEmu == nil {
		return nil
	}
	var b []byte
	for _, bar := range video.BackgroundBars(currentEmu.currentGeometry(), currentEmu.background) {
		for _, v := range bar {
			b = v.AppendVertexData(b)
		}
	}
	return b
}

// SaveState creates a save state. Returns true on success.
func SaveState() bool {
	if currentEmu == nil {
		return false
	}
	data, err := currentEmu.core.Serialize()
	if err != nil {
		currentEmu.stateData = nil
		return false
	}
	currentEmu.stateData = data
	return true
}

// StateLen returns the length of the last saved state.
func StateLen() int {
	if currentEmu == nil {
		return 0
	}
	return len(currentEmu.stateData)
}

// StateData returns the last saved state.
func StateData() []byte {
	if currentEmu == nil {
		return nil
	}
	return currentEmu.stateData
}

// LoadState loads a save state. Returns true on success.
func LoadState(data []byte) bool {
	if currentEmu == nil {
		return false
	}
	if currentEmu.core.Deserialize(data) != nil {
		return false
	}
	currentEmu.cacheFrame()
	return true
}

// GetFPS returns the target frame rate.
func GetFPS() int {
	return int(emu.Timing.FPS)
}

// GetCRC32FromPath calculates the CRC32 checksum of a ROM file.
// Automatically extracts from ZIP/7z/gzip/RAR if needed.
// Returns -1 on error.
func GetCRC32FromPath(path string) int64 {
	rom, err := romloader.Load(path)
	if err != nil {
		return -1
	}
	return int64(crc32.ChecksumIEEE(rom.Data))
}

// ExtractAndStoreROM extracts a ROM from an archive (or copies a raw ROM),
// and stores it as {destDir}/{CRC32}.gb. An existing file with the same
// CRC32 is left untouched.
func ExtractAndStoreROM(srcPath, destDir string) (*ExtractResult, error) {
	rom, err := romloader.Load(srcPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load ROM: %w", err)
	}

	crcHex := fmt.Sprintf("%08X", crc32.ChecksumIEEE(rom.Data))
	destPath := filepath.Join(destDir, crcHex+".gb")
	result := &ExtractResult{Crc32: crcHex, Filename: rom.Name}

	if _, err := os.Stat(destPath); err == nil {
		return result, nil
	}
	if err := os.WriteFile(destPath, rom.Data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write ROM: %w", err)
	}
	return result, nil
}
