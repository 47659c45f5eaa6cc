package video

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"golang.org/x/image/draw"
)

func renderPattern(t *testing.T, w, h int, mode ScaleMode, displayMode bool, bg color.RGBA) (*image.RGBA, Geometry) {
	t.Helper()
	frame := patternFrame(t)
	render := SizeOf(w, h)
	geom := BuildGeometry(render, frame.Size(), mode)
	params := NewDisplayParameters(render, frame.Size(), displayMode)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	var r Rasterizer
	if err := r.Render(dst, frame, geom, params, bg); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	return dst, geom
}

func TestRasterizer_ExactDoubleScale(t *testing.T) {
	dst, _ := renderPattern(t, 320, 288, ScaleFit, false, DefaultBackground)

	for y := 0; y < 288; y++ {
		for x := 0; x < 320; x++ {
			if got, want := dst.RGBAAt(x, y), patternColor(x/2, y/2); got != want {
				t.Fatalf("pixel (%d,%d): expected source (%d,%d) %v, got %v", x, y, x/2, y/2, want, got)
			}
		}
	}
}

func TestRasterizer_Letterbox(t *testing.T) {
	bg := color.RGBA{0x20, 0x10, 0x00, 0xFF}
	dst, _ := renderPattern(t, 400, 400, ScaleFit, false, bg)

	for _, y := range []int{0, 10, 19, 380, 390, 399} {
		for x := 0; x < 400; x++ {
			if got := dst.RGBAAt(x, y); got != bg {
				t.Fatalf("margin pixel (%d,%d): expected background, got %v", x, y, got)
			}
		}
	}

	// Rows 20..379 hold the 2.5x image.
	if got, want := dst.RGBAAt(0, 20), patternColor(0, 0); got != want {
		t.Fatalf("first image pixel: expected %v, got %v", want, got)
	}
	if got, want := dst.RGBAAt(399, 379), patternColor(159, 143); got != want {
		t.Fatalf("last image pixel: expected %v, got %v", want, got)
	}
}

func TestRasterizer_MatchesNearestNeighbor(t *testing.T) {
	// Viewports whose image rectangle lands on whole pixels, so coverage
	// matches the destination rectangle handed to x/image/draw.
	sizes := [][2]int{
		{320, 288},
		{400, 400},
		{400, 360},
		{240, 216},
		{360, 400},
		{200, 180},
		{120, 108},
		{480, 432},
	}
	src := patternImage(testWidth, testHeight)

	for _, sz := range sizes {
		dst, geom := renderPattern(t, sz[0], sz[1], ScaleFit, false, DefaultBackground)

		r := geom.Rect
		dr := image.Rect(int(r.X), int(r.Y), int(r.X+r.W), int(r.Y+r.H))
		if float64(dr.Min.X) != r.X || float64(dr.Dx()) != r.W || float64(dr.Min.Y) != r.Y || float64(dr.Dy()) != r.H {
			t.Fatalf("%v: image rectangle %+v is not pixel aligned", sz, r)
		}

		ref := image.NewRGBA(image.Rect(0, 0, sz[0], sz[1]))
		draw.NearestNeighbor.Scale(ref, dr, src, src.Bounds(), draw.Src, nil)

		for y := dr.Min.Y; y < dr.Max.Y; y++ {
			for x := dr.Min.X; x < dr.Max.X; x++ {
				if got, want := dst.RGBAAt(x, y), ref.RGBAAt(x, y); got != want {
					t.Fatalf("%v: pixel (%d,%d): expected %v, got %v", sz, x, y, want, got)
				}
			}
		}
	}
}

func TestRasterizer_NoBlendedColors(t *testing.T) {
	palette := make(map[color.RGBA]bool, testWidth*testHeight)
	for y := 0; y < testHeight; y++ {
		for x := 0; x < testWidth; x++ {
			palette[patternColor(x, y)] = true
		}
	}

	bg := color.RGBA{0x01, 0x02, 0x03, 0xFF}
	for _, sz := range [][2]int{{517, 311}, {173, 999}, {1001, 1001}, {161, 145}} {
		for _, mode := range []ScaleMode{ScaleFit, ScaleInteger} {
			dst, geom := renderPattern(t, sz[0], sz[1], mode, false, bg)
			if geom.Scale < 1 {
				t.Fatalf("%v: expected upscale, got %v", sz, geom.Scale)
			}
			for y := 0; y < sz[1]; y++ {
				for x := 0; x < sz[0]; x++ {
					c := dst.RGBAAt(x, y)
					if c != bg && !palette[c] {
						t.Fatalf("%v %s: pixel (%d,%d) has color %v not present in the source", sz, mode, x, y, c)
					}
				}
			}
		}
	}
}

func TestRasterizer_DisplayMode(t *testing.T) {
	normal, _ := renderPattern(t, 320, 288, ScaleFit, false, DefaultBackground)
	dark, _ := renderPattern(t, 320, 288, ScaleFit, true, DefaultBackground)

	for y := 0; y < 288; y += 7 {
		for x := 0; x < 320; x += 5 {
			n := normal.RGBAAt(x, y)
			if got, want := dark.RGBAAt(x, y), ApplyDisplayMode(n, true); got != want {
				t.Fatalf("pixel (%d,%d): expected %v, got %v", x, y, want, got)
			}
		}
	}

	// Background is not part of the sampled image and stays unchanged.
	bg := color.RGBA{0x11, 0x22, 0x33, 0xFF}
	dst, _ := renderPattern(t, 400, 400, ScaleFit, true, bg)
	if got := dst.RGBAAt(200, 5); got != bg {
		t.Fatalf("expected background %v in dark mode, got %v", bg, got)
	}
}

func TestRasterizer_Errors(t *testing.T) {
	frame := patternFrame(t)
	params := NewDisplayParameters(Size{320, 288}, frame.Size(), false)
	geom := BuildGeometry(params.RenderSize, params.TextureSize, ScaleFit)
	var r Rasterizer

	wrongTarget := image.NewRGBA(image.Rect(0, 0, 100, 100))
	if err := r.Render(wrongTarget, frame, geom, params, DefaultBackground); !errors.Is(err, ErrTargetMismatch) {
		t.Fatalf("expected ErrTargetMismatch, got %v", err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, 320, 288))
	badParams := NewDisplayParameters(Size{320, 288}, Size{256, 192}, false)
	if err := r.Render(dst, frame, geom, badParams, DefaultBackground); !errors.Is(err, ErrTextureMismatch) {
		t.Fatalf("expected ErrTextureMismatch, got %v", err)
	}
}

func TestRasterizer_EmptyGeometryFillsBackground(t *testing.T) {
	frame := patternFrame(t)
	params := NewDisplayParameters(Size{64, 32}, frame.Size(), false)
	bg := color.RGBA{0x40, 0x50, 0x60, 0xFF}

	dst := image.NewRGBA(image.Rect(0, 0, 64, 32))
	var r Rasterizer
	if err := r.Render(dst, frame, Geometry{}, params, bg); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	for y := 0; y < 32; y++ {
		for x := 0; x < 64; x++ {
			if got := dst.RGBAAt(x, y); got != bg {
				t.Fatalf("pixel (%d,%d): expected background, got %v", x, y, got)
			}
		}
	}
}
