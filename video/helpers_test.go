package video

import (
	"image"
	"image/color"
	"math"
	"testing"
)

const (
	testWidth  = 160
	testHeight = 144
)

// patternColor gives every texel of a 256x256 or smaller frame a unique color.
func patternColor(x, y int) color.RGBA {
	return color.RGBA{R: uint8(x), G: uint8(y), B: uint8(x*7 + y*13), A: 0xFF}
}

func patternPixels(w, h, stride int) []byte {
	pix := make([]byte, stride*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := patternColor(x, y)
			i := y*stride + x*BytesPerPixel
			pix[i], pix[i+1], pix[i+2], pix[i+3] = c.R, c.G, c.B, c.A
		}
	}
	return pix
}

func patternImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	copy(img.Pix, patternPixels(w, h, img.Stride))
	return img
}

func newTestTexture(t *testing.T) *SourceTexture {
	t.Helper()
	tex, err := NewSourceTexture(testWidth, testHeight)
	if err != nil {
		t.Fatalf("NewSourceTexture failed: %v", err)
	}
	return tex
}

func uploadPattern(t *testing.T, tex *SourceTexture) {
	t.Helper()
	w, h := int(tex.Size().W), int(tex.Size().H)
	if err := tex.Upload(patternPixels(w, h, w*BytesPerPixel), w*BytesPerPixel, w, h); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
}

func patternFrame(t *testing.T) Frame {
	t.Helper()
	tex := newTestTexture(t)
	uploadPattern(t, tex)
	frame, _ := tex.Acquire()
	return frame
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func finite32(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
