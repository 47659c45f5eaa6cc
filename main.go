//go:build !libretro && !ios

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"hash/crc32"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/sqweek/dialog"

	"github.com/user-none/pixelview/adapter"
	"github.com/user-none/pixelview/cli"
	"github.com/user-none/pixelview/emu"
	"github.com/user-none/pixelview/romloader"
	"github.com/user-none/pixelview/screenshot"
	"github.com/user-none/pixelview/storage"
	"github.com/user-none/pixelview/video"
)

func main() {
	romPath := flag.String("rom", "", "path to ROM file (opens a file dialog if not provided)")
	scaleFlag := flag.String("scale", "", "scale mode: fit or integer (default from config)")
	dark := flag.Bool("dark", false, "start in dark mode")
	headless := flag.Bool("headless", false, "render without a window and write frames to -out")
	frames := flag.Int("frames", 60, "number of frames to render in headless mode")
	outDir := flag.String("out", "frames", "output directory for headless frames")
	configPath := flag.String("config", "", "path to config.json (default in the data directory)")
	verbose := flag.Bool("verbose", false, "log pipeline events to stderr")
	flag.Parse()

	if *verbose {
		video.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	config, err := storage.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	scaleMode, err := video.ParseScaleMode(config.Video.ScaleMode)
	if *scaleFlag != "" {
		scaleMode, err = video.ParseScaleMode(*scaleFlag)
	}
	if err != nil {
		log.Fatalf("Invalid scale mode: %v", err)
	}
	background, err := storage.ParseHexColor(config.Video.Background)
	if err != nil {
		log.Fatalf("Invalid background: %v", err)
	}
	format, err := screenshot.ParseFormat(config.Screenshot.Format)
	if err != nil {
		log.Fatalf("Invalid screenshot format: %v", err)
	}

	if *romPath == "" {
		if *headless {
			fmt.Println("Usage: pixelview -headless -rom <romfile> [-frames N] [-out dir]")
			os.Exit(1)
		}
		*romPath, err = dialog.File().
			Title("Open ROM").
			Filter("ROM images and archives", "gb", "gbc", "bin", "zip", "7z", "gz", "rar").
			Load()
		if errors.Is(err, dialog.ErrCancelled) {
			return
		}
		if err != nil {
			log.Fatalf("File dialog failed: %v", err)
		}
	}

	rom, err := romloader.Load(*romPath)
	if err != nil {
		log.Fatalf("Failed to load ROM: %v", err)
	}

	factory := &adapter.Factory{}
	region, _ := factory.DetectRegion(rom.Data)
	core, err := factory.CreateEmulator(rom.Data, region)
	if err != nil {
		log.Fatalf("Failed to create core: %v", err)
	}
	core.SetOption(emu.OptionPalette, config.Emulation.Palette)
	core.SetOption(emu.OptionAutoScroll, strconv.FormatBool(config.Emulation.AutoScroll))

	info := factory.SystemInfo()
	source := adapter.NewSource(core, info.ScreenWidth)
	darkMode := config.Video.DarkMode || *dark

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *headless {
		n, err := runHeadless(ctx, source, headlessOptions{
			Frames:        *frames,
			Width:         config.Window.Width,
			Height:        config.Window.Height,
			TextureWidth:  info.ScreenWidth,
			TextureHeight: info.MaxScreenHeight,
			ScaleMode:     scaleMode,
			DarkMode:      darkMode,
			Background:    background,
			OutDir:        *outDir,
			Format:        format,
			Scale:         config.Screenshot.Scale,
		})
		source.Close()
		if err != nil {
			log.Fatalf("Headless run failed after %d frames: %v", n, err)
		}
		fmt.Printf("Wrote %d frames to %s\n", n, *outDir)
		return
	}

	group := fmt.Sprintf("%08X", crc32.ChecksumIEEE(rom.Data))
	shotDir, err := storage.GetScreenshotDir()
	if err != nil {
		log.Fatalf("Failed to resolve screenshot directory: %v", err)
	}
	saveDir, err := storage.GetGameSaveDir(group)
	if err != nil {
		log.Fatalf("Failed to resolve save directory: %v", err)
	}

	runner, err := cli.NewRunner(source, cli.Options{
		Width:       info.ScreenWidth,
		Height:      info.MaxScreenHeight,
		FPS:         source.FPS(),
		UseShader:   config.Video.Shader,
		ScaleMode:   scaleMode,
		DarkMode:    darkMode,
		Background:  background,
		Screenshots: &screenshot.Saver{Dir: shotDir, Format: format, Scale: config.Screenshot.Scale},
		SaveDir:     saveDir,
		Group:       group,
	})
	if err != nil {
		log.Fatalf("Failed to create runner: %v", err)
	}
	runner.Start(ctx)

	ebiten.SetWindowSize(config.Window.Width, config.Window.Height)
	ebiten.SetWindowTitle("pixelview - " + filepath.Base(rom.Name))
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSizeLimits(info.ScreenWidth, info.MaxScreenHeight, -1, -1)
	ebiten.SetTPS(int(source.FPS()))

	if err := runGame(runner, ebiten.RunGame); err != nil {
		log.Printf("Run failed: %v", err)
		stop()
		os.Exit(1)
	}
	stats := runner.Stats()
	video.Logger().Info("session finished",
		"presented", stats.Presented, "repeated", stats.Repeated,
		"dropped", stats.Dropped, "errors", runner.Errors())
}

// closingGame is a game that owns resources beyond the ebiten loop.
type closingGame interface {
	ebiten.Game
	Close()
}

// runGame runs g with run and closes it whether or not run fails.
func runGame(g closingGame, run func(ebiten.Game) error) error {
	defer g.Close()
	return run(g)
}
