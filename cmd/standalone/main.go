//go:build !libretro && !ios

package main

import (
	"flag"
	"log"
	"strings"

	"github.com/user-none/eblitui/standalone"
	"github.com/user-none/pixelview/adapter"
	"github.com/user-none/pixelview/emu"
)

func main() {
	romPath := flag.String("rom", "", "path to ROM file (opens UI if not provided)")
	palette := flag.String("palette", "", "palette: "+strings.Join(emu.PaletteNames(), ", "))
	noScroll := flag.Bool("no-autoscroll", false, "start with automatic scrolling off")
	flag.Parse()

	factory := &adapter.Factory{}

	if *romPath != "" {
		options := map[string]string{}
		if *palette != "" {
			options[emu.OptionPalette] = *palette
		}
		if *noScroll {
			options[emu.OptionAutoScroll] = "false"
		}
		if err := standalone.RunDirect(factory, *romPath, "auto", options); err != nil {
			log.Fatal(err)
		}
		return
	}

	if err := standalone.Run(factory); err != nil {
		log.Fatal(err)
	}
}
