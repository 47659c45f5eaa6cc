package adapter

import (
	emucore "github.com/user-none/eblitui/api"
	"github.com/user-none/pixelview/emu"
)

// Compile-time interface check.
var _ emucore.CoreFactory = (*Factory)(nil)

// Factory implements emucore.CoreFactory for the tile viewer core.
type Factory struct{}

// SystemInfo returns system metadata for UI configuration.
func (f *Factory) SystemInfo() emucore.SystemInfo {
	return emucore.SystemInfo{
		Name:            emu.Name,
		ConsoleName:     "Handheld Tile Viewer",
		Extensions:      []string{".gb", ".gbc", ".bin"},
		ScreenWidth:     emu.ScreenWidth,
		MaxScreenHeight: emu.MaxScreenHeight,
		AspectRatio:     float64(emu.ScreenWidth) / float64(emu.ScreenHeight),
		SampleRate:      48000,
		Buttons: []emucore.Button{
			{Name: "A", ID: emu.ButtonA, DefaultKey: "J", DefaultPad: "A"},
			{Name: "B", ID: emu.ButtonB, DefaultKey: "K", DefaultPad: "B"},
			{Name: "Select", ID: emu.ButtonSelect, DefaultKey: "RShift", DefaultPad: "Back"},
			{Name: "Start", ID: emu.ButtonStart, DefaultKey: "Enter", DefaultPad: "Start"},
		},
		Players: 1,
		CoreOptions: []emucore.CoreOption{
			{
				Key:         emu.OptionPalette,
				Label:       "Palette",
				Description: "Colors used for the four shades",
				Type:        emucore.CoreOptionSelect,
				Default:     emu.GrayPalette.Name,
				Values:      emu.PaletteNames(),
				Category:    emucore.CoreOptionCategoryVideo,
				PerGame:     true,
			},
			{
				Key:         emu.OptionAutoScroll,
				Label:       "Auto Scroll",
				Description: "Advance one line per frame when no direction is held",
				Type:        emucore.CoreOptionBool,
				Default:     "true",
				Category:    emucore.CoreOptionCategoryCore,
			},
		},
		RDBName:       "Nintendo - Game Boy",
		ThumbnailRepo: "Nintendo_-_Game_Boy",
		DataDirName:   emu.Name,
		ConsoleID:     4,
		CoreName:      emu.Name,
		CoreVersion:   emu.Version,
		SerializeSize: emu.SerializeSize(),
	}
}

// CreateEmulator creates a new emulator instance with the given ROM and region.
func (f *Factory) CreateEmulator(rom []byte, region emucore.Region) (emucore.Emulator, error) {
	e, err := emu.NewEmulator(rom, region)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// DetectRegion auto-detects the region from ROM data.
// The bool return indicates whether a valid cartridge header was found.
func (f *Factory) DetectRegion(rom []byte) (emucore.Region, bool) {
	return emu.DetectRegionFromROM(rom)
}
