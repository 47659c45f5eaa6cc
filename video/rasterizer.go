package video

import (
	"fmt"
	"image"
	"image/color"
	"math"
)

// Rasterizer is the software sampling stage. It fills every destination
// pixel whose center lies inside the quad with the nearest source texel and
// every other pixel with the background color. It never blends texels.
//
// Coverage and interpolation use the pixel rectangle the quad was built
// from rather than the float32 vertex positions, so texel boundaries fall
// where exact arithmetic puts them.
//
// A Rasterizer reuses its lookup tables between calls and must not be
// shared between goroutines.
type Rasterizer struct {
	cols []int // Source column per destination column, -1 outside the quad
	rows []int // Source row per destination row, -1 outside the quad
}

// Render draws frame into dst. dst must match params.RenderSize and frame
// must match params.TextureSize.
func (r *Rasterizer) Render(dst *image.RGBA, frame Frame, geom Geometry, params DisplayParameters, bg color.RGBA) error {
	dw, dh := dst.Rect.Dx(), dst.Rect.Dy()
	if SizeOf(dw, dh) != params.RenderSize {
		return fmt.Errorf("%w: target %dx%d, parameters %s", ErrTargetMismatch, dw, dh, params.RenderSize)
	}
	if frame.Size() != params.TextureSize {
		return fmt.Errorf("%w: frame %s, parameters %s", ErrTextureMismatch, frame.Size(), params.TextureSize)
	}

	if geom.Empty() || geom.RenderSize != params.RenderSize || geom.TextureSize != params.TextureSize {
		fillRGBA(dst, bg)
		return nil
	}

	q := geom.Quad
	u0, u1 := q[CornerTopLeft].TexCoord.X, q[CornerBottomRight].TexCoord.X
	v0, v1 := q[CornerTopLeft].TexCoord.Y, q[CornerBottomRight].TexCoord.Y
	r.cols = texelLookup(r.cols, dw, geom.Rect.X, geom.Rect.W, u0, u1, frame.Width)
	r.rows = texelLookup(r.rows, dh, geom.Rect.Y, geom.Rect.H, v0, v1, frame.Height)

	for y := 0; y < dh; y++ {
		line := dst.Pix[y*dst.Stride : y*dst.Stride+dw*BytesPerPixel]
		sy := r.rows[y]
		if sy < 0 {
			fillLine(line, bg)
			continue
		}
		src := frame.Pix[sy*frame.Stride:]
		for x := 0; x < dw; x++ {
			o := x * BytesPerPixel
			sx := r.cols[x]
			if sx < 0 {
				line[o], line[o+1], line[o+2], line[o+3] = bg.R, bg.G, bg.B, bg.A
				continue
			}
			i := sx * BytesPerPixel
			c := ApplyDisplayMode(color.RGBA{R: src[i], G: src[i+1], B: src[i+2], A: src[i+3]}, params.DisplayMode)
			line[o], line[o+1], line[o+2], line[o+3] = c.R, c.G, c.B, c.A
		}
	}
	return nil
}

// texelLookup maps each destination pixel center along one axis to a texel
// index, or -1 when the center falls outside [start, start+length).
func texelLookup(table []int, n int, start, length float64, t0, t1 float32, texels int) []int {
	if cap(table) < n {
		table = make([]int, n)
	}
	table = table[:n]

	end := start + length
	span := float64(t1 - t0)
	for i := range table {
		center := float64(i) + 0.5
		if center < start || center >= end {
			table[i] = -1
			continue
		}
		// Multiply before dividing so exact scale factors stay exact.
		t := float64(t0)*float64(texels) + (center-start)*span*float64(texels)/length
		table[i] = clampInt(int(math.Floor(t)), 0, texels-1)
	}
	return table
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func fillLine(line []byte, c color.RGBA) {
	for o := 0; o+3 < len(line); o += BytesPerPixel {
		line[o], line[o+1], line[o+2], line[o+3] = c.R, c.G, c.B, c.A
	}
}

func fillRGBA(dst *image.RGBA, c color.RGBA) {
	dw, dh := dst.Rect.Dx(), dst.Rect.Dy()
	for y := 0; y < dh; y++ {
		fillLine(dst.Pix[y*dst.Stride:y*dst.Stride+dw*BytesPerPixel], c)
	}
}
