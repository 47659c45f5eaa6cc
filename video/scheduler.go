// Package video maps a framebuffer onto a viewport with nearest-neighbor
// scaling and schedules double-buffered frames onto a backend.
package video

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"sync"
	"sync/atomic"
)

// RenderPass is everything a backend needs to draw one displayed frame.
type RenderPass struct {
	Frame      Frame
	Geometry   Geometry
	Params     DisplayParameters
	Background color.RGBA
	Fresh      bool // False when Frame repeats the previous pass
}

// Backend draws render passes. Render must honor ctx cancellation for any
// wait it performs and must not retain pass.Frame.Pix after returning.
type Backend interface {
	Render(ctx context.Context, pass RenderPass) error
}

// Stats counts refresh outcomes since the scheduler was created.
type Stats struct {
	Presented  uint64 // Passes drawn by the backend
	Repeated   uint64 // Presented passes that reused the previous frame
	Skipped    uint64 // Refreshes that drew nothing
	Dropped    uint64 // Passes the backend failed to draw
	Mismatches uint64 // Frames rejected for a texture size mismatch
}

// FrameScheduler drives the pipeline once per display refresh: it pulls a
// frame from an attached producer, keeps the display parameters and geometry
// current, and issues at most one render pass.
//
// Refresh must be called from a single goroutine. The setters and Close may
// be called from any goroutine.
type FrameScheduler struct {
	backend Backend

	mu          sync.Mutex
	texture     *SourceTexture
	renderSize  Size
	textureSize Size
	displayMode bool
	scaleMode   ScaleMode
	background  color.RGBA
	producer    Producer
	paused      bool
	onError     func(error)
	closed      bool
	paramsDirty bool
	params      DisplayParameters
	geometry    GeometryCache
	lastSeq     uint64 // Sequence of the last presented frame

	baseCtx  context.Context
	cancel   context.CancelFunc
	inflight sync.WaitGroup

	presented  atomic.Uint64
	repeated   atomic.Uint64
	skipped    atomic.Uint64
	dropped    atomic.Uint64
	mismatches atomic.Uint64
}

// NewFrameScheduler creates a scheduler presenting tex through backend. The
// render size starts at zero, so nothing is drawn until Resize is called.
func NewFrameScheduler(tex *SourceTexture, backend Backend) *FrameScheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &FrameScheduler{
		backend:     backend,
		texture:     tex,
		textureSize: tex.Size(),
		background:  DefaultBackground,
		paramsDirty: true,
		baseCtx:     ctx,
		cancel:      cancel,
	}
}

// Resize records a new viewport size in pixels.
func (s *FrameScheduler) Resize(width, height int) {
	size := SizeOf(width, height)
	s.mu.Lock()
	if size != s.renderSize {
		s.renderSize = size
		s.paramsDirty = true
	}
	s.mu.Unlock()
}

// SetDisplayMode toggles the display mode color transform.
func (s *FrameScheduler) SetDisplayMode(on bool) {
	s.mu.Lock()
	if on != s.displayMode {
		s.displayMode = on
		s.paramsDirty = true
	}
	s.mu.Unlock()
}

// DisplayMode reports whether the display mode transform is enabled.
func (s *FrameScheduler) DisplayMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.displayMode
}

// SetScaleMode selects fractional or integer scaling.
func (s *FrameScheduler) SetScaleMode(m ScaleMode) {
	s.mu.Lock()
	s.scaleMode = m
	s.mu.Unlock()
}

// ScaleMode returns the current scale mode.
func (s *FrameScheduler) ScaleMode() ScaleMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scaleMode
}

// SetBackground sets the color drawn outside the framebuffer quad.
func (s *FrameScheduler) SetBackground(c color.RGBA) {
	s.mu.Lock()
	s.background = c
	s.mu.Unlock()
}

// SetTextureSize overrides the texture size written into the display
// parameters. It normally follows the bound texture; a value that disagrees
// with it makes every refresh fail with ErrTextureMismatch.
func (s *FrameScheduler) SetTextureSize(size Size) {
	s.mu.Lock()
	if size != s.textureSize {
		s.textureSize = size
		s.paramsDirty = true
	}
	s.mu.Unlock()
}

// BindTexture replaces the source texture and resets the parameters to its
// size.
func (s *FrameScheduler) BindTexture(tex *SourceTexture) {
	s.mu.Lock()
	s.texture = tex
	s.textureSize = tex.Size()
	s.paramsDirty = true
	s.lastSeq = 0
	s.mu.Unlock()
}

// AttachProducer makes Refresh run p synchronously, one frame per refresh.
// Pass nil when frames are uploaded by a ProducerLoop instead.
func (s *FrameScheduler) AttachProducer(p Producer) {
	s.mu.Lock()
	s.producer = p
	s.mu.Unlock()
}

// SetPaused stops or restarts the attached synchronous producer. The last
// frame keeps being presented while paused.
func (s *FrameScheduler) SetPaused(paused bool) {
	s.mu.Lock()
	s.paused = paused
	s.mu.Unlock()
}

// OnError registers a callback for recoverable errors. It runs on the
// goroutine calling Refresh.
func (s *FrameScheduler) OnError(fn func(error)) {
	s.mu.Lock()
	s.onError = fn
	s.mu.Unlock()
}

// Params returns the display parameters used by the most recent refresh.
func (s *FrameScheduler) Params() DisplayParameters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params
}

// Stats returns a snapshot of the refresh counters.
func (s *FrameScheduler) Stats() Stats {
	return Stats{
		Presented:  s.presented.Load(),
		Repeated:   s.repeated.Load(),
		Skipped:    s.skipped.Load(),
		Dropped:    s.dropped.Load(),
		Mismatches: s.mismatches.Load(),
	}
}

// Refresh performs one display refresh. A zero-size viewport draws nothing
// and returns nil. Size mismatches and backend failures drop the frame,
// are passed to the OnError callback and are returned; the next Refresh
// starts over normally.
func (s *FrameScheduler) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.inflight.Add(1)
	defer s.inflight.Done()

	if s.paramsDirty {
		s.params = NewDisplayParameters(s.renderSize, s.textureSize, s.displayMode)
		s.paramsDirty = false
		Logger().Debug("display parameters rebuilt",
			"render", s.params.RenderSize.String(),
			"texture", s.params.TextureSize.String(),
			"displayMode", s.params.DisplayMode)
	}
	geom, rebuilt := s.geometry.Get(s.params.RenderSize, s.params.TextureSize, s.scaleMode)
	params := s.params
	tex := s.texture
	lastSeq := s.lastSeq
	bg := s.background
	onError := s.onError
	var producer Producer
	if !s.paused {
		producer = s.producer
	}
	s.mu.Unlock()

	if rebuilt {
		Logger().Debug("geometry rebuilt",
			"scale", geom.Scale,
			"x", geom.Rect.X, "y", geom.Rect.Y,
			"w", geom.Rect.W, "h", geom.Rect.H,
			"mode", geom.Mode.String())
	}

	if producer != nil {
		producer.RunFrame()
		pixels, stride, width, height := producer.Frame()
		if err := tex.Upload(pixels, stride, width, height); err != nil {
			return s.rejectFrame(err, onError)
		}
	}

	if geom.Empty() {
		s.skipped.Add(1)
		return nil
	}

	frame, fresh := tex.Acquire()
	if frame.Size() != params.TextureSize {
		return s.rejectFrame(fmt.Errorf("%w: frame %s, parameters %s",
			ErrTextureMismatch, frame.Size(), params.TextureSize), onError)
	}
	if frame.Seq < lastSeq {
		// Never present a frame older than one already shown.
		s.skipped.Add(1)
		return nil
	}

	passCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(s.baseCtx, cancel)
	defer stop()

	err := s.backend.Render(passCtx, RenderPass{
		Frame:      frame,
		Geometry:   geom,
		Params:     params,
		Background: bg,
		Fresh:      fresh,
	})
	if err != nil {
		s.dropped.Add(1)
		rerr := &RenderError{
			Op:      "render",
			Details: fmt.Sprintf("frame %d at %s", frame.Seq, params.RenderSize),
			Err:     err,
		}
		if errors.Is(err, context.Canceled) && s.baseCtx.Err() != nil {
			rerr.Err = errors.Join(ErrClosed, err)
		}
		Logger().Warn("frame dropped", "seq", frame.Seq, "err", err)
		if onError != nil {
			onError(rerr)
		}
		return rerr
	}

	s.mu.Lock()
	if s.texture == tex {
		s.lastSeq = frame.Seq
	}
	s.mu.Unlock()
	s.presented.Add(1)
	if !fresh {
		s.repeated.Add(1)
	}
	return nil
}

func (s *FrameScheduler) rejectFrame(err error, onError func(error)) error {
	s.mismatches.Add(1)
	Logger().Warn("frame skipped", "err", err)
	if onError != nil {
		onError(err)
	}
	return err
}

// Close stops the scheduler. Later refreshes return ErrClosed, in-flight
// passes see their context cancelled, and Close waits for them to return
// or for ctx to expire.
func (s *FrameScheduler) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()

	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
