package adapter

import (
	"errors"
	"sync"
	"sync/atomic"

	emucore "github.com/user-none/eblitui/api"
	"github.com/user-none/pixelview/video"
)

// Compile-time interface check.
var _ video.Producer = (*Source)(nil)

// ErrNoSaveStates is returned when the wrapped core cannot serialize.
var ErrNoSaveStates = errors.New("core does not support save states")

// Source feeds an emucore.Emulator into the video pipeline. Input may be set
// from any goroutine; it is applied at the start of the next frame.
type Source struct {
	mu    sync.Mutex
	core  emucore.Emulator
	width int
	buf   []byte

	input atomic.Uint32
}

// NewSource wraps core. width is the framebuffer width in pixels, normally
// SystemInfo().ScreenWidth.
func NewSource(core emucore.Emulator, width int) *Source {
	return &Source{core: core, width: width}
}

// SetInput sets the button bitmask for player 0.
func (s *Source) SetInput(buttons uint32) {
	s.input.Store(buttons)
}

// FPS returns the core's frame rate.
func (s *Source) FPS() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return float64(s.core.GetTiming().FPS)
}

// RunFrame applies the latest input and runs one frame of the core.
func (s *Source) RunFrame() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.core.SetInput(0, s.input.Load())
	s.core.RunFrame()
}

// Frame returns a copy of the core's framebuffer, valid until the next
// Frame call.
func (s *Source) Frame() (pixels []byte, stride, width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fb := s.core.GetFramebuffer()
	stride = s.core.GetFramebufferStride()
	height = s.core.GetActiveHeight()
	n := min(len(fb), stride*height)
	s.buf = append(s.buf[:0], fb[:n]...)
	return s.buf, stride, s.width, height
}

// SetOption forwards a core option between frames.
func (s *Source) SetOption(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.core.SetOption(key, value)
}

// SaveState serializes the core between frames.
func (s *Source) SaveState() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ss, ok := s.core.(emucore.SaveStater)
	if !ok {
		return nil, ErrNoSaveStates
	}
	return ss.Serialize()
}

// LoadState restores a state produced by SaveState.
func (s *Source) LoadState(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ss, ok := s.core.(emucore.SaveStater)
	if !ok {
		return ErrNoSaveStates
	}
	return ss.Deserialize(data)
}

// Close releases the core.
func (s *Source) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.core.Close()
}
