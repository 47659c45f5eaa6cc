package video

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Producer generates framebuffers, one per RunFrame call.
type Producer interface {
	// RunFrame advances the producer by one frame.
	RunFrame()
	// Frame returns the most recent framebuffer as RGBA8 rows. The slice is
	// only read until the next RunFrame.
	Frame() (pixels []byte, stride, width, height int)
}

// DefaultFPS is used when a ProducerLoop is created with a non-positive rate.
const DefaultFPS = 60

// ProducerLoop runs a Producer on its own goroutine at a fixed frame rate and
// uploads every frame into a SourceTexture. The renderer runs independently
// and re-presents the last frame whenever the producer falls behind.
type ProducerLoop struct {
	producer  Producer
	texture   *SourceTexture
	control   *ProducerControl
	frameTime time.Duration

	onError func(error)

	startOnce sync.Once
	started   atomic.Bool
	done      chan struct{}

	frames atomic.Uint64
	failed atomic.Uint64
}

// NewProducerLoop creates a stopped loop.
func NewProducerLoop(p Producer, tex *SourceTexture, fps float64) *ProducerLoop {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return &ProducerLoop{
		producer:  p,
		texture:   tex,
		control:   NewProducerControl(),
		frameTime: time.Duration(float64(time.Second) / fps),
		done:      make(chan struct{}),
	}
}

// OnError sets a callback for failed uploads. Must be called before Start.
// The callback runs on the producer goroutine.
func (l *ProducerLoop) OnError(fn func(error)) {
	l.onError = fn
}

// Control returns the pause/stop coordination used by the loop.
func (l *ProducerLoop) Control() *ProducerControl {
	return l.control
}

// Frames returns the number of frames uploaded so far.
func (l *ProducerLoop) Frames() uint64 {
	return l.frames.Load()
}

// Failed returns the number of frames whose upload was rejected.
func (l *ProducerLoop) Failed() uint64 {
	return l.failed.Load()
}

// Start launches the producer goroutine. Cancelling ctx stops the loop.
// Calling Start more than once has no effect.
func (l *ProducerLoop) Start(ctx context.Context) {
	l.startOnce.Do(func() {
		l.started.Store(true)
		context.AfterFunc(ctx, l.control.Stop)
		go l.run(ctx)
	})
}

// Stop ends the loop and waits for the goroutine to exit.
func (l *ProducerLoop) Stop() {
	l.control.Stop()
	if l.started.Load() {
		<-l.done
	}
}

// Done is closed when the producer goroutine has exited.
func (l *ProducerLoop) Done() <-chan struct{} {
	return l.done
}

// Pause blocks until the producer is parked between frames. No upload
// happens after Pause returns until Resume is called.
func (l *ProducerLoop) Pause() {
	if !l.started.Load() {
		return
	}
	l.control.RequestPause()
}

// Resume continues a paused loop.
func (l *ProducerLoop) Resume() {
	l.control.RequestResume()
}

func (l *ProducerLoop) run(ctx context.Context) {
	defer close(l.done)

	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C

	last := time.Now()
	for {
		if !l.control.CheckPause() {
			return
		}

		l.producer.RunFrame()
		pixels, stride, width, height := l.producer.Frame()
		if err := l.texture.Upload(pixels, stride, width, height); err != nil {
			l.failed.Add(1)
			Logger().Warn("producer frame rejected", "err", err)
			if l.onError != nil {
				l.onError(err)
			}
		} else {
			l.frames.Add(1)
		}

		sleep := l.frameTime - time.Since(last)
		if sleep > time.Millisecond {
			timer.Reset(sleep)
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}
		} else if ctx.Err() != nil {
			return
		}
		last = time.Now()
	}
}
