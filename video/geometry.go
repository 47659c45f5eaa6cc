package video

import (
	"fmt"
	"image/color"
	"math"
	"strings"
)

// Vec2 is a two component float tuple.
type Vec2 struct {
	X, Y float32
}

// Vec4 is a four component float tuple.
type Vec4 struct {
	X, Y, Z, W float32
}

// Size holds pixel dimensions.
type Size struct {
	W, H uint32
}

// SizeOf converts int dimensions to a Size, treating negatives as zero.
func SizeOf(w, h int) Size {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return Size{W: uint32(w), H: uint32(h)}
}

// Empty reports whether either dimension is zero.
func (s Size) Empty() bool {
	return s.W == 0 || s.H == 0
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.W, s.H)
}

// Rect is a rectangle in destination pixels.
type Rect struct {
	X, Y, W, H float64
}

// TexturedVertex is a vertex of the framebuffer quad. Position is in
// normalized device coordinates, TexCoord in normalized texture space.
type TexturedVertex struct {
	Position Vec2
	TexCoord Vec2
}

// ColoredVertex is a vertex of a flat colored primitive, such as the
// letterbox bars around the framebuffer quad.
type ColoredVertex struct {
	Position Vec2
	Color    Vec4
}

// Quad holds the four framebuffer vertices in triangle strip order.
type Quad [4]TexturedVertex

// Quad corner indices.
const (
	CornerTopLeft = iota
	CornerTopRight
	CornerBottomLeft
	CornerBottomRight
)

// QuadIndices turns a Quad into two triangles for indexed drawing.
var QuadIndices = [6]uint16{0, 1, 2, 1, 3, 2}

// The whole source image is always used, so texture coordinates never change.
var quadTexCoords = [4]Vec2{{0, 0}, {1, 0}, {0, 1}, {1, 1}}

// ScaleMode selects how the scale factor is chosen.
type ScaleMode int

const (
	// ScaleFit uses the largest fractional scale that fits the viewport.
	ScaleFit ScaleMode = iota
	// ScaleInteger rounds the fit scale down to a whole number. Viewports
	// smaller than the texture fall back to ScaleFit.
	ScaleInteger
)

func (m ScaleMode) String() string {
	switch m {
	case ScaleFit:
		return "fit"
	case ScaleInteger:
		return "integer"
	default:
		return "unknown"
	}
}

// ParseScaleMode parses "fit" or "integer" (case-insensitive).
func ParseScaleMode(s string) (ScaleMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fit", "":
		return ScaleFit, nil
	case "integer", "int":
		return ScaleInteger, nil
	}
	return ScaleFit, fmt.Errorf("unknown scale mode: %q", s)
}

// Geometry places the source texture inside a viewport.
type Geometry struct {
	Quad        Quad
	Scale       float64
	Rect        Rect // Covered area in destination pixels
	RenderSize  Size
	TextureSize Size
	Mode        ScaleMode
}

// Empty reports whether the geometry covers no pixels.
func (g Geometry) Empty() bool {
	return g.Scale == 0 || g.Rect.W <= 0 || g.Rect.H <= 0
}

// Margins returns the letterbox/pillarbox widths in destination pixels.
func (g Geometry) Margins() (left, top, right, bottom float64) {
	if g.Empty() {
		return 0, 0, 0, 0
	}
	left = g.Rect.X
	top = g.Rect.Y
	right = float64(g.RenderSize.W) - (g.Rect.X + g.Rect.W)
	bottom = float64(g.RenderSize.H) - (g.Rect.Y + g.Rect.H)
	return left, top, right, bottom
}

// BuildGeometry computes the quad that maps the entire texture into the
// viewport, preserving aspect ratio and centering the leftover space.
// A zero dimension in either size yields an empty, zero-area quad.
func BuildGeometry(renderSize, textureSize Size, mode ScaleMode) Geometry {
	g := Geometry{
		RenderSize:  renderSize,
		TextureSize: textureSize,
		Mode:        mode,
	}
	for i := range g.Quad {
		g.Quad[i].TexCoord = quadTexCoords[i]
	}

	if renderSize.Empty() || textureSize.Empty() {
		return g
	}

	rw, rh := float64(renderSize.W), float64(renderSize.H)
	tw, th := float64(textureSize.W), float64(textureSize.H)

	scale := math.Min(rw/tw, rh/th)
	if mode == ScaleInteger && scale >= 1 {
		scale = math.Floor(scale)
	}

	w := tw * scale
	h := th * scale
	x := (rw - w) / 2
	y := (rh - h) / 2

	g.Scale = scale
	g.Rect = Rect{X: x, Y: y, W: w, H: h}

	left, right := ndcX(x, rw), ndcX(x+w, rw)
	top, bottom := ndcY(y, rh), ndcY(y+h, rh)
	g.Quad[CornerTopLeft].Position = Vec2{left, top}
	g.Quad[CornerTopRight].Position = Vec2{right, top}
	g.Quad[CornerBottomLeft].Position = Vec2{left, bottom}
	g.Quad[CornerBottomRight].Position = Vec2{right, bottom}

	return g
}

func ndcX(px, width float64) float32 {
	return float32(2*px/width - 1)
}

func ndcY(py, height float64) float32 {
	return float32(1 - 2*py/height)
}

// PixelX converts an NDC x coordinate to destination pixels.
func PixelX(ndc float32, width uint32) float64 {
	return (float64(ndc) + 1) / 2 * float64(width)
}

// PixelY converts an NDC y coordinate to destination pixels.
func PixelY(ndc float32, height uint32) float64 {
	return (1 - float64(ndc)) / 2 * float64(height)
}

// BackgroundBars returns the colored quads covering the margins around the
// framebuffer quad, in the same strip order as Quad. A quad filling the
// viewport has no bars, letterbox or pillarbox has two, integer scaling can
// have four (corners overlap). An empty geometry returns nil.
func BackgroundBars(g Geometry, bg color.RGBA) [][4]ColoredVertex {
	if g.Empty() {
		return nil
	}
	c := Vec4{
		X: float32(bg.R) / 255,
		Y: float32(bg.G) / 255,
		Z: float32(bg.B) / 255,
		W: float32(bg.A) / 255,
	}
	bar := func(left, top, right, bottom float32) [4]ColoredVertex {
		return [4]ColoredVertex{
			{Position: Vec2{left, top}, Color: c},
			{Position: Vec2{right, top}, Color: c},
			{Position: Vec2{left, bottom}, Color: c},
			{Position: Vec2{right, bottom}, Color: c},
		}
	}

	q := g.Quad
	var bars [][4]ColoredVertex
	left, top, right, bottom := g.Margins()
	if left > 0 || right > 0 {
		bars = append(bars,
			bar(-1, 1, q[CornerTopLeft].Position.X, -1),
			bar(q[CornerTopRight].Position.X, 1, 1, -1))
	}
	if top > 0 || bottom > 0 {
		bars = append(bars,
			bar(-1, 1, 1, q[CornerTopLeft].Position.Y),
			bar(-1, q[CornerBottomLeft].Position.Y, 1, -1))
	}
	return bars
}

// GeometryCache rebuilds geometry only when one of its inputs changes.
type GeometryCache struct {
	valid bool
	geom  Geometry
}

// Get returns the geometry for the inputs and whether it was rebuilt.
func (c *GeometryCache) Get(renderSize, textureSize Size, mode ScaleMode) (Geometry, bool) {
	if c.valid && c.geom.RenderSize == renderSize && c.geom.TextureSize == textureSize && c.geom.Mode == mode {
		return c.geom, false
	}
	c.geom = BuildGeometry(renderSize, textureSize, mode)
	c.valid = true
	return c.geom, true
}

// Invalidate forces the next Get to rebuild.
func (c *GeometryCache) Invalidate() {
	c.valid = false
}
