//go:build !libretro && !ios

// Package cli runs a core in a window. Frames flow from the core through a
// video.ProducerLoop into a double-buffered texture and are presented by the
// frame scheduler once per Draw.
package cli

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/user-none/pixelview/adapter"
	bebiten "github.com/user-none/pixelview/bridge/ebiten"
	"github.com/user-none/pixelview/screenshot"
	"github.com/user-none/pixelview/storage"
	"github.com/user-none/pixelview/video"
)

const stateFile = "state.bin"

// Options configures a Runner.
type Options struct {
	Width, Height int // Framebuffer size
	FPS           float64
	UseShader     bool
	ScaleMode     video.ScaleMode
	DarkMode      bool
	Background    color.RGBA
	Screenshots   *screenshot.Saver // Nil disables F12
	SaveDir       string            // Save state directory, empty disables F5/F8
	Group         string            // Screenshot subdirectory, normally the ROM CRC
}

// Runner implements ebiten.Game. Keys: Tab toggles dark mode, I toggles
// integer scaling, P pauses, F12 saves a screenshot, F5 and F8 save and load
// state, Escape quits.
type Runner struct {
	source  *adapter.Source
	texture *video.SourceTexture
	loop    *video.ProducerLoop
	sched   *video.FrameScheduler
	backend *bebiten.Backend

	notification *Notification
	raster       video.Rasterizer
	opts         Options

	ctx    context.Context
	cancel context.CancelFunc

	paused   bool
	gamepads []ebiten.GamepadID
	errCount atomic.Uint64
}

// NewRunner wires source into a producer loop and frame scheduler.
func NewRunner(source *adapter.Source, opts Options) (*Runner, error) {
	tex, err := video.NewSourceTexture(opts.Width, opts.Height)
	if err != nil {
		return nil, err
	}

	r := &Runner{
		source:       source,
		texture:      tex,
		loop:         video.NewProducerLoop(source, tex, opts.FPS),
		backend:      bebiten.NewBackend(opts.UseShader),
		notification: NewNotification(),
		opts:         opts,
		ctx:          context.Background(),
	}
	r.sched = video.NewFrameScheduler(tex, r.backend)
	r.sched.SetScaleMode(opts.ScaleMode)
	r.sched.SetDisplayMode(opts.DarkMode)
	r.sched.SetBackground(opts.Background)
	r.sched.OnError(r.reportError)
	r.loop.OnError(r.reportError)
	return r, nil
}

// Start launches the producer. Cancelling ctx stops it.
func (r *Runner) Start(ctx context.Context) {
	r.ctx, r.cancel = context.WithCancel(ctx)
	r.loop.Start(r.ctx)
}

// Close stops the producer and releases the scheduler and GPU resources.
func (r *Runner) Close() {
	if r.cancel != nil {
		r.cancel()
	}
	r.loop.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := r.sched.Close(ctx); err != nil {
		video.Logger().Warn("scheduler close", "err", err)
	}
	r.backend.Dispose()
	r.source.Close()
}

// Stats returns the scheduler counters.
func (r *Runner) Stats() video.Stats {
	return r.sched.Stats()
}

// Errors returns the number of frame errors reported by the producer loop
// and the scheduler.
func (r *Runner) Errors() uint64 {
	return r.errCount.Load()
}

// reportError counts an error; the scheduler and loop have already logged it.
func (r *Runner) reportError(error) {
	r.errCount.Add(1)
}

// Update implements ebiten.Game.
func (r *Runner) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		on := !r.sched.DisplayMode()
		r.sched.SetDisplayMode(on)
		r.notification.Show(onOff("Dark mode", on))
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyI) {
		mode := video.ScaleInteger
		if r.sched.ScaleMode() == video.ScaleInteger {
			mode = video.ScaleFit
		}
		r.sched.SetScaleMode(mode)
		r.notification.Show("Scale: " + mode.String())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		r.togglePause()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		r.takeScreenshot()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		r.saveState()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF8) {
		r.loadState()
	}

	if !ebiten.IsFocused() {
		r.source.SetInput(0)
		return nil
	}
	var buttons uint32
	buttons, r.gamepads = pollButtons(r.gamepads)
	r.source.SetInput(buttons)
	return nil
}

// Draw implements ebiten.Game.
func (r *Runner) Draw(screen *ebiten.Image) {
	b := screen.Bounds()
	r.backend.SetTarget(screen)
	r.sched.Resize(b.Dx(), b.Dy())
	if err := r.sched.Refresh(r.ctx); err != nil && !errors.Is(err, video.ErrClosed) {
		video.Logger().Debug("refresh", "err", err)
	}
	r.notification.Draw(screen)
}

// Layout implements ebiten.Game. The screen matches the window in device
// pixels so the scheduler sees the real render size.
func (r *Runner) Layout(outsideWidth, outsideHeight int) (int, int) {
	scale := ebiten.Monitor().DeviceScaleFactor()
	return int(float64(outsideWidth) * scale), int(float64(outsideHeight) * scale)
}

func (r *Runner) togglePause() {
	r.paused = !r.paused
	if r.paused {
		r.loop.Pause()
		r.notification.Show("Paused")
		return
	}
	r.loop.Resume()
	r.notification.Show("Resumed")
}

// takeScreenshot renders the current frame on the CPU with the on-screen
// geometry and parameters, so the file matches what is displayed.
func (r *Runner) takeScreenshot() {
	if r.opts.Screenshots == nil {
		return
	}
	frame, _ := r.texture.Acquire()
	params := r.sched.Params()
	geom := video.BuildGeometry(params.RenderSize, params.TextureSize, r.sched.ScaleMode())
	if geom.Empty() {
		geom = video.BuildGeometry(params.TextureSize, params.TextureSize, video.ScaleFit)
		params.RenderSize = params.TextureSize
	}

	img := image.NewRGBA(image.Rect(0, 0, int(params.RenderSize.W), int(params.RenderSize.H)))
	if err := r.raster.Render(img, frame, geom, params, r.opts.Background); err != nil {
		r.notification.Show("Screenshot failed")
		video.Logger().Warn("screenshot render", "err", err)
		return
	}
	path, err := r.opts.Screenshots.Save(img, r.opts.Group)
	if err != nil {
		r.notification.Show("Screenshot failed")
		video.Logger().Warn("screenshot save", "err", err)
		return
	}
	r.notification.Show("Saved " + filepath.Base(path))
}

func (r *Runner) saveState() {
	if r.opts.SaveDir == "" {
		return
	}
	data, err := r.source.SaveState()
	if err == nil {
		err = storage.AtomicWriteFile(filepath.Join(r.opts.SaveDir, stateFile), data)
	}
	if err != nil {
		r.notification.Show("Save failed")
		video.Logger().Warn("save state", "err", err)
		return
	}
	r.notification.Show("State saved")
}

func (r *Runner) loadState() {
	if r.opts.SaveDir == "" {
		return
	}
	data, err := os.ReadFile(filepath.Join(r.opts.SaveDir, stateFile))
	if err == nil {
		err = r.source.LoadState(data)
	}
	if err != nil {
		r.notification.Show("Load failed")
		video.Logger().Warn("load state", "err", err)
		return
	}
	r.notification.Show("State loaded")
}

func onOff(label string, on bool) string {
	if on {
		return fmt.Sprintf("%s on", label)
	}
	return fmt.Sprintf("%s off", label)
}
