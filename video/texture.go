package video

import (
	"fmt"
	"image/color"
	"sync"
)

// BytesPerPixel is the size of one RGBA8 texel.
const BytesPerPixel = 4

// Frame is a read-only view of one completed framebuffer. Pix is tightly
// packed RGBA8 (Stride == Width*4).
type Frame struct {
	Pix    []byte
	Stride int
	Width  int
	Height int
	Seq    uint64 // Upload sequence number, 0 before the first upload
}

// Size returns the frame dimensions.
func (f Frame) Size() Size {
	return SizeOf(f.Width, f.Height)
}

// RGBAAt returns the texel at (x, y). Coordinates must be in range.
func (f Frame) RGBAAt(x, y int) color.RGBA {
	i := y*f.Stride + x*BytesPerPixel
	return color.RGBA{R: f.Pix[i], G: f.Pix[i+1], B: f.Pix[i+2], A: f.Pix[i+3]}
}

// SourceTexture mirrors the emulator framebuffer. It is written by exactly
// one producer and read by one renderer.
//
// Upload fills the back buffer without holding the lock, then swaps it to the
// front under the lock. Acquire copies the front buffer into a buffer owned
// by the renderer, so a frame is never observed mid-write.
type SourceTexture struct {
	width  int
	height int

	mu    sync.Mutex
	front []byte // Last completed upload, guarded by mu
	seq   uint64 // Sequence of front, guarded by mu

	back []byte // Producer only

	read    []byte // Renderer only
	readSeq uint64 // Renderer only
}

// NewSourceTexture creates a texture for a platform with a fixed resolution.
func NewSourceTexture(width, height int) (*SourceTexture, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	n := width * height * BytesPerPixel
	return &SourceTexture{
		width:  width,
		height: height,
		front:  make([]byte, n),
		back:   make([]byte, n),
		read:   make([]byte, n),
	}, nil
}

// Size returns the texture dimensions.
func (t *SourceTexture) Size() Size {
	return SizeOf(t.width, t.height)
}

// Seq returns the sequence number of the most recently completed upload.
func (t *SourceTexture) Seq() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.seq
}

// Upload copies one frame of RGBA8 pixels into the texture. stride is the
// number of bytes per source row and may exceed width*4. Must only be called
// from the producer goroutine.
func (t *SourceTexture) Upload(pixels []byte, stride, width, height int) error {
	if width != t.width || height != t.height {
		return fmt.Errorf("%w: upload %dx%d into %dx%d texture", ErrTextureMismatch, width, height, t.width, t.height)
	}

	rowBytes := t.width * BytesPerPixel
	if stride < rowBytes {
		return fmt.Errorf("%w: stride %d shorter than row %d", ErrTextureMismatch, stride, rowBytes)
	}
	if required := stride*(t.height-1) + rowBytes; len(pixels) < required {
		return fmt.Errorf("%w: buffer has %d bytes, need %d", ErrTextureMismatch, len(pixels), required)
	}

	if stride == rowBytes {
		copy(t.back, pixels[:rowBytes*t.height])
	} else {
		for y := 0; y < t.height; y++ {
			copy(t.back[y*rowBytes:(y+1)*rowBytes], pixels[y*stride:y*stride+rowBytes])
		}
	}

	t.mu.Lock()
	t.front, t.back = t.back, t.front
	t.seq++
	t.mu.Unlock()
	return nil
}

// Acquire returns the newest completed frame and whether it is newer than
// the one returned by the previous call. When nothing new was uploaded the
// previous frame is returned again without copying. The returned Pix stays
// valid until the next Acquire. Must only be called from the renderer.
func (t *SourceTexture) Acquire() (Frame, bool) {
	t.mu.Lock()
	fresh := t.seq != t.readSeq
	if fresh {
		copy(t.read, t.front)
		t.readSeq = t.seq
	}
	t.mu.Unlock()

	return Frame{
		Pix:    t.read,
		Stride: t.width * BytesPerPixel,
		Width:  t.width,
		Height: t.height,
		Seq:    t.readSeq,
	}, fresh
}
