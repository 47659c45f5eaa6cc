package emu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"image"

	emucore "github.com/user-none/eblitui/api"
)

// Compile-time interface checks.
var _ emucore.Emulator = (*Emulator)(nil)
var _ emucore.SaveStater = (*Emulator)(nil)

const (
	ScreenWidth     = 160
	ScreenHeight    = 144
	MaxScreenHeight = ScreenHeight

	// MaxDataSize is the largest image accepted, matching the biggest
	// cartridge ROM.
	MaxDataSize = 8 * 1024 * 1024
)

// Button bit positions beyond the d-pad.
const (
	ButtonA      = 4
	ButtonB      = 5
	ButtonSelect = 6
	ButtonStart  = 7
)

// Core option keys.
const (
	OptionPalette    = "palette"
	OptionAutoScroll = "autoscroll"
)

// Save state format constants
const (
	stateVersion    = 1
	stateMagic      = "PXVTileState"
	stateHeaderSize = 22 // magic(12) + version(2) + romCRC(4) + dataCRC(4)
	stateBodySize   = 19 // scroll(4) + palette(1) + bgp(1) + autoScroll(1) + frame(8) + buttons(4)
)

// ErrDataTooLarge is returned for images over MaxDataSize.
var ErrDataTooLarge = errors.New("image exceeds maximum cartridge size")

// Emulator renders cartridge data as a scrolling sheet of 2bpp tiles on a
// 160x144 screen. It stands in for a full system core: it has the same
// frame, input and save state surface, but no CPU.
type Emulator struct {
	romCRC    uint32
	sheet     TileSheet
	header    Header
	hasHeader bool

	framebuffer *image.RGBA

	palette    int
	bgp        uint8
	scroll     int
	autoScroll bool
	frame      uint64

	buttons     uint32
	prevButtons uint32

	region Region
}

// NewEmulator creates a core for rom. Data without a complete tile shows a
// built-in test pattern.
func NewEmulator(rom []byte, region Region) (*Emulator, error) {
	if len(rom) > MaxDataSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrDataTooLarge, len(rom))
	}

	data := rom
	if len(data) < TileBytes {
		data = testPatternTiles()
	}

	e := &Emulator{
		romCRC:      crc32.ChecksumIEEE(rom),
		sheet:       NewTileSheet(data),
		framebuffer: image.NewRGBA(image.Rect(0, 0, ScreenWidth, ScreenHeight)),
		bgp:         DefaultBGP,
		autoScroll:  true,
		region:      region,
	}
	if h, err := ParseHeader(rom); err == nil && h.ChecksumValid {
		e.header = h
		e.hasHeader = true
	}
	e.render()
	return e, nil
}

// Header returns the cartridge header and whether a valid one was found.
func (e *Emulator) Header() (Header, bool) {
	return e.header, e.hasHeader
}

// SetInput sets the button bitmask for a player. Only player 0 is used.
func (e *Emulator) SetInput(player int, buttons uint32) {
	if player == 0 {
		e.buttons = buttons
	}
}

// RunFrame applies input, advances the scroll position and redraws the
// screen.
func (e *Emulator) RunFrame() {
	e.frame++
	pressed := e.buttons &^ e.prevButtons
	held := e.buttons
	e.prevButtons = e.buttons

	if pressed&(1<<ButtonA) != 0 {
		e.palette = (e.palette + 1) % len(Palettes)
	}
	if pressed&(1<<ButtonStart) != 0 {
		e.autoScroll = !e.autoScroll
	}
	if pressed&(1<<ButtonSelect) != 0 {
		// Rotate the palette register so every index takes the next shade.
		e.bgp = e.bgp>>2 | e.bgp<<6
	}

	step := 1
	if held&(1<<ButtonB) != 0 {
		step = 4
	}
	switch {
	case held&(1<<emucore.ButtonUp) != 0:
		e.scrollBy(-step)
	case held&(1<<emucore.ButtonDown) != 0:
		e.scrollBy(step)
	case pressed&(1<<emucore.ButtonLeft) != 0:
		e.scrollBy(-ScreenHeight)
	case pressed&(1<<emucore.ButtonRight) != 0:
		e.scrollBy(ScreenHeight)
	case e.autoScroll:
		e.scrollBy(1)
	}

	e.render()
}

func (e *Emulator) scrollBy(lines int) {
	h := e.sheet.Height()
	if h == 0 {
		return
	}
	e.scroll = ((e.scroll+lines)%h + h) % h
}

func (e *Emulator) render() {
	colors := Palettes[e.palette].Colors
	h := e.sheet.Height()
	pix := e.framebuffer.Pix
	stride := e.framebuffer.Stride

	for y := 0; y < ScreenHeight; y++ {
		sy := e.scroll + y
		if h > 0 {
			sy %= h
		}
		row := pix[y*stride:]
		for x := 0; x < ScreenWidth; x++ {
			c := colors[MapPalette(e.bgp, e.sheet.Pixel(x, sy))]
			i := x * 4
			row[i], row[i+1], row[i+2], row[i+3] = c.R, c.G, c.B, c.A
		}
	}
}

// GetFramebuffer returns raw RGBA pixel data for the current frame.
func (e *Emulator) GetFramebuffer() []byte {
	return e.framebuffer.Pix
}

// GetFramebufferStride returns the stride (bytes per row) of the framebuffer.
func (e *Emulator) GetFramebufferStride() int {
	return e.framebuffer.Stride
}

// GetActiveHeight returns the display height, always 144.
func (e *Emulator) GetActiveHeight() int {
	return ScreenHeight
}

// GetAudioSamples returns nil; the core produces no sound.
func (e *Emulator) GetAudioSamples() []int16 {
	return nil
}

// GetRegion returns the emulator's region setting
func (e *Emulator) GetRegion() Region {
	return e.region
}

// SetRegion records the region. Timing does not depend on it.
func (e *Emulator) SetRegion(region Region) {
	e.region = region
}

// GetTiming returns FPS and line count.
func (e *Emulator) GetTiming() emucore.Timing {
	return Timing
}

// SetOption applies a core option change identified by key.
func (e *Emulator) SetOption(key string, value string) {
	switch key {
	case OptionPalette:
		if p, err := PaletteByName(value); err == nil {
			e.palette = paletteIndex(p.Name)
		}
	case OptionAutoScroll:
		e.autoScroll = value == "true"
	}
	e.render()
}

// PaletteName returns the active palette.
func (e *Emulator) PaletteName() string {
	return Palettes[e.palette].Name
}

// Scroll returns the first sheet line shown at the top of the screen.
func (e *Emulator) Scroll() int {
	return e.scroll
}

// Close releases any resources held by the emulator.
func (e *Emulator) Close() {}

// =============================================================================
// Save State Serialization
// =============================================================================

// SerializeSize returns the total size in bytes needed for a save state.
func SerializeSize() int {
	return stateHeaderSize + stateBodySize
}

// Serialize creates a save state and returns it as a byte slice.
func (e *Emulator) Serialize() ([]byte, error) {
	data := make([]byte, SerializeSize())

	copy(data[0:12], stateMagic)
	binary.LittleEndian.PutUint16(data[12:14], stateVersion)
	binary.LittleEndian.PutUint32(data[14:18], e.romCRC)

	offset := stateHeaderSize
	binary.LittleEndian.PutUint32(data[offset:], uint32(e.scroll))
	offset += 4
	data[offset] = uint8(e.palette)
	offset++
	data[offset] = e.bgp
	offset++
	if e.autoScroll {
		data[offset] = 1
	}
	offset++
	binary.LittleEndian.PutUint64(data[offset:], e.frame)
	offset += 8
	binary.LittleEndian.PutUint32(data[offset:], e.prevButtons)

	binary.LittleEndian.PutUint32(data[18:22], crc32.ChecksumIEEE(data[stateHeaderSize:]))
	return data, nil
}

// Deserialize restores emulator state from a save state byte slice.
func (e *Emulator) Deserialize(data []byte) error {
	if err := e.VerifyState(data); err != nil {
		return err
	}

	offset := stateHeaderSize
	scroll := int(binary.LittleEndian.Uint32(data[offset:]))
	offset += 4
	palette := int(data[offset])
	offset++
	if palette >= len(Palettes) {
		return errors.New("save state has an unknown palette")
	}
	e.palette = palette
	e.bgp = data[offset]
	offset++
	e.autoScroll = data[offset] != 0
	offset++
	e.frame = binary.LittleEndian.Uint64(data[offset:])
	offset += 8
	e.prevButtons = binary.LittleEndian.Uint32(data[offset:])

	e.scroll = 0
	e.scrollBy(scroll)
	e.render()
	return nil
}

// VerifyState checks if a save state is valid without loading it.
func (e *Emulator) VerifyState(data []byte) error {
	if len(data) < SerializeSize() {
		return errors.New("save state too short")
	}
	if string(data[0:12]) != stateMagic {
		return errors.New("invalid save state magic")
	}
	if binary.LittleEndian.Uint16(data[12:14]) != stateVersion {
		return errors.New("unsupported save state version")
	}
	if binary.LittleEndian.Uint32(data[14:18]) != e.romCRC {
		return errors.New("save state is for a different ROM")
	}
	if binary.LittleEndian.Uint32(data[18:22]) != crc32.ChecksumIEEE(data[stateHeaderSize:]) {
		return errors.New("save state data is corrupted")
	}
	return nil
}
