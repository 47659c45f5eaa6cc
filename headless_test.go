//go:build !libretro && !ios

package main

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/user-none/pixelview/adapter"
	"github.com/user-none/pixelview/emu"
	"github.com/user-none/pixelview/screenshot"
	"github.com/user-none/pixelview/video"
)

func newTestSource(t *testing.T) *adapter.Source {
	t.Helper()
	data := make([]byte, 256*16)
	for i := range data {
		data[i] = byte(i*13 + i>>4)
	}
	core, err := emu.NewEmulator(data, emu.RegionNTSC)
	if err != nil {
		t.Fatalf("NewEmulator: %v", err)
	}
	return adapter.NewSource(core, emu.ScreenWidth)
}

func testOptions(dir string) headlessOptions {
	return headlessOptions{
		Frames:        3,
		Width:         320,
		Height:        288,
		TextureWidth:  emu.ScreenWidth,
		TextureHeight: emu.ScreenHeight,
		ScaleMode:     video.ScaleFit,
		Background:    color.RGBA{A: 255},
		OutDir:        dir,
		Format:        screenshot.FormatPNG,
		Scale:         1,
	}
}

func readPNG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return img
}

func TestRunHeadless_WritesFrames(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	n, err := runHeadless(context.Background(), newTestSource(t), testOptions(dir))
	if err != nil {
		t.Fatalf("runHeadless: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 frames, got %d", n)
	}

	for _, name := range []string{"frame-00001.png", "frame-00002.png", "frame-00003.png"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	img := readPNG(t, filepath.Join(dir, "frame-00003.png"))
	if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 288 {
		t.Fatalf("expected 320x288, got %dx%d", b.Dx(), b.Dy())
	}
	// Exact 2x scale: every source pixel becomes a 2x2 block.
	for y := 0; y < 288; y += 2 {
		for x := 0; x < 320; x += 2 {
			c := img.At(x, y)
			if img.At(x+1, y) != c || img.At(x, y+1) != c || img.At(x+1, y+1) != c {
				t.Fatalf("block at (%d,%d) is not uniform", x, y)
			}
		}
	}
}

func TestRunHeadless_Upscale(t *testing.T) {
	dir := t.TempDir()
	opts := testOptions(dir)
	opts.Frames = 1
	opts.Scale = 2
	if _, err := runHeadless(context.Background(), newTestSource(t), opts); err != nil {
		t.Fatalf("runHeadless: %v", err)
	}
	img := readPNG(t, filepath.Join(dir, "frame-00001.png"))
	if b := img.Bounds(); b.Dx() != 640 || b.Dy() != 576 {
		t.Errorf("expected 640x576, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestRunHeadless_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	n, err := runHeadless(ctx, newTestSource(t), testOptions(t.TempDir()))
	if err == nil {
		t.Error("expected error for cancelled context")
	}
	if n != 0 {
		t.Errorf("expected no frames, got %d", n)
	}
}

func TestRunHeadless_TextureMismatch(t *testing.T) {
	opts := testOptions(t.TempDir())
	opts.TextureHeight = 100
	if _, err := runHeadless(context.Background(), newTestSource(t), opts); err == nil {
		t.Error("expected error for mismatched texture")
	}
}
