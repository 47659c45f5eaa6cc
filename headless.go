//go:build !libretro && !ios

package main

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/user-none/pixelview/bridge/software"
	"github.com/user-none/pixelview/screenshot"
	"github.com/user-none/pixelview/storage"
	"github.com/user-none/pixelview/video"
)

type headlessOptions struct {
	Frames        int
	Width, Height int // Viewport size
	TextureWidth  int
	TextureHeight int
	ScaleMode     video.ScaleMode
	DarkMode      bool
	Background    color.RGBA
	OutDir        string
	Format        screenshot.Format
	Scale         int // Integer upscale applied when writing
}

// runHeadless drives source synchronously through the frame scheduler and
// the software backend, writing each presented frame to OutDir as
// frame-NNNNN.<ext>. It returns the number of files written.
func runHeadless(ctx context.Context, source video.Producer, opts headlessOptions) (int, error) {
	tex, err := video.NewSourceTexture(opts.TextureWidth, opts.TextureHeight)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(opts.OutDir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create output directory: %w", err)
	}

	backend := software.NewBackend(software.Config{})
	sched := video.NewFrameScheduler(tex, backend)
	defer sched.Close(context.Background())

	sched.SetScaleMode(opts.ScaleMode)
	sched.SetDisplayMode(opts.DarkMode)
	sched.SetBackground(opts.Background)
	sched.Resize(opts.Width, opts.Height)
	sched.AttachProducer(source)

	var (
		index    int
		written  int
		writeErr error
	)
	backend.OnPresent(func(img *image.RGBA, _ uint64) {
		var buf bytes.Buffer
		if err := screenshot.Encode(&buf, screenshot.Upscale(img, opts.Scale), opts.Format); err != nil {
			writeErr = err
			return
		}
		name := fmt.Sprintf("frame-%05d%s", index, opts.Format.Ext())
		if err := storage.AtomicWriteFile(filepath.Join(opts.OutDir, name), buf.Bytes()); err != nil {
			writeErr = err
			return
		}
		written++
	})

	for index = 1; index <= opts.Frames; index++ {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		if err := sched.Refresh(ctx); err != nil {
			return written, err
		}
		if writeErr != nil {
			return written, writeErr
		}
	}

	stats := sched.Stats()
	video.Logger().Info("headless run finished",
		"presented", stats.Presented, "skipped", stats.Skipped, "written", written)
	return written, nil
}
