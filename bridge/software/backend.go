// Package software renders frames on the CPU into image.RGBA buffers. It is
// used for headless runs, screenshots and as the reference output the GPU
// backends are checked against.
package software

import (
	"context"
	"fmt"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"github.com/user-none/pixelview/video"
)

const (
	// DefaultBuffers is the number of render targets cycled by a Backend.
	DefaultBuffers = 2

	// DefaultMaxBufferWait bounds how long Render waits for a free target.
	DefaultMaxBufferWait = 100 * time.Millisecond

	// DefaultMaxPixels caps the render target size (8192x8192).
	DefaultMaxPixels = 8192 * 8192
)

// Config controls buffer allocation. Zero values select the defaults.
type Config struct {
	Buffers       int
	MaxBufferWait time.Duration
	MaxPixels     int
}

type buffer struct {
	img  *image.RGBA
	refs int // Guarded by Backend.mu
	seq  uint64
}

// Backend implements video.Backend with video.Rasterizer. The most recent
// render stays presented until the next one completes; consumers that need
// it for longer take a reference with Hold.
type Backend struct {
	maxWait   time.Duration
	maxPixels int

	free chan *buffer

	raster   video.Rasterizer
	renderMu sync.Mutex // Serializes Render

	mu        sync.Mutex
	front     *buffer
	onPresent func(img *image.RGBA, seq uint64)

	presented atomic.Uint64
}

// NewBackend creates a backend with cfg.Buffers render targets. Targets are
// allocated lazily at the first render size.
func NewBackend(cfg Config) *Backend {
	if cfg.Buffers <= 0 {
		cfg.Buffers = DefaultBuffers
	}
	if cfg.MaxBufferWait <= 0 {
		cfg.MaxBufferWait = DefaultMaxBufferWait
	}
	if cfg.MaxPixels <= 0 {
		cfg.MaxPixels = DefaultMaxPixels
	}

	b := &Backend{
		maxWait:   cfg.MaxBufferWait,
		maxPixels: cfg.MaxPixels,
		free:      make(chan *buffer, cfg.Buffers),
	}
	for i := 0; i < cfg.Buffers; i++ {
		b.free <- &buffer{}
	}
	return b
}

// OnPresent registers a callback run after every completed render. img is
// only valid during the callback.
func (b *Backend) OnPresent(fn func(img *image.RGBA, seq uint64)) {
	b.mu.Lock()
	b.onPresent = fn
	b.mu.Unlock()
}

// Render draws pass into a free target and presents it.
func (b *Backend) Render(ctx context.Context, pass video.RenderPass) error {
	b.renderMu.Lock()
	defer b.renderMu.Unlock()

	size := pass.Params.RenderSize
	if int64(size.W)*int64(size.H) > int64(b.maxPixels) {
		return fmt.Errorf("%w: target %s exceeds %d pixels", video.ErrResourceExhausted, size, b.maxPixels)
	}

	buf, err := b.acquire(ctx)
	if err != nil {
		return err
	}

	w, h := int(size.W), int(size.H)
	if buf.img == nil || buf.img.Rect.Dx() != w || buf.img.Rect.Dy() != h {
		buf.img = image.NewRGBA(image.Rect(0, 0, w, h))
	}

	if err := b.raster.Render(buf.img, pass.Frame, pass.Geometry, pass.Params, pass.Background); err != nil {
		b.release(buf)
		return err
	}
	buf.seq = pass.Frame.Seq

	b.mu.Lock()
	buf.refs = 1
	old := b.front
	b.front = buf
	onPresent := b.onPresent
	b.mu.Unlock()
	if old != nil {
		b.release(old)
	}

	b.presented.Add(1)
	if onPresent != nil {
		onPresent(buf.img, buf.seq)
	}
	return nil
}

// acquire waits for a free target, at most maxWait.
func (b *Backend) acquire(ctx context.Context) (*buffer, error) {
	select {
	case buf := <-b.free:
		return buf, nil
	default:
	}

	timer := time.NewTimer(b.maxWait)
	defer timer.Stop()
	select {
	case buf := <-b.free:
		return buf, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		video.Logger().Warn("no free render target", "waited", b.maxWait)
		return nil, fmt.Errorf("%w: no free render target after %s", video.ErrResourceExhausted, b.maxWait)
	}
}

func (b *Backend) release(buf *buffer) {
	b.mu.Lock()
	if buf.refs > 0 {
		buf.refs--
	}
	done := buf.refs == 0
	b.mu.Unlock()
	if done {
		b.free <- buf
	}
}

// Hold returns the presented image and a release function. The image stays
// valid and unchanged until release is called, even if newer frames are
// rendered. It returns a nil image when nothing has been presented.
func (b *Backend) Hold() (*image.RGBA, uint64, func()) {
	b.mu.Lock()
	buf := b.front
	if buf == nil {
		b.mu.Unlock()
		return nil, 0, func() {}
	}
	buf.refs++
	b.mu.Unlock()

	var once sync.Once
	return buf.img, buf.seq, func() { once.Do(func() { b.release(buf) }) }
}

// Snapshot returns a copy of the presented image, or nil.
func (b *Backend) Snapshot() *image.RGBA {
	img, _, release := b.Hold()
	defer release()
	if img == nil {
		return nil
	}
	out := image.NewRGBA(img.Rect)
	copy(out.Pix, img.Pix)
	return out
}

// Presented returns the number of completed renders.
func (b *Backend) Presented() uint64 {
	return b.presented.Load()
}
