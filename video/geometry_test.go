package video

import (
	"image/color"
	"math"
	"testing"
)

var gbSize = Size{W: testWidth, H: testHeight}

func assertCorner(t *testing.T, g Geometry, corner int, x, y float32) {
	t.Helper()
	p := g.Quad[corner].Position
	if !approxEqual(float64(p.X), float64(x)) || !approxEqual(float64(p.Y), float64(y)) {
		t.Errorf("corner %d: expected (%v, %v), got (%v, %v)", corner, x, y, p.X, p.Y)
	}
}

func TestBuildGeometry_ExactDoubleScale(t *testing.T) {
	g := BuildGeometry(Size{320, 288}, gbSize, ScaleFit)

	if g.Scale != 2 {
		t.Fatalf("expected scale 2, got %v", g.Scale)
	}
	if g.Rect != (Rect{X: 0, Y: 0, W: 320, H: 288}) {
		t.Fatalf("unexpected rect: %+v", g.Rect)
	}
	assertCorner(t, g, CornerTopLeft, -1, 1)
	assertCorner(t, g, CornerTopRight, 1, 1)
	assertCorner(t, g, CornerBottomLeft, -1, -1)
	assertCorner(t, g, CornerBottomRight, 1, -1)

	left, top, right, bottom := g.Margins()
	if left != 0 || top != 0 || right != 0 || bottom != 0 {
		t.Fatalf("expected no margins, got %v %v %v %v", left, top, right, bottom)
	}
}

func TestBuildGeometry_Letterbox(t *testing.T) {
	g := BuildGeometry(Size{400, 400}, gbSize, ScaleFit)

	if g.Scale != 2.5 {
		t.Fatalf("expected scale 2.5, got %v", g.Scale)
	}
	if g.Rect.W != 400 || g.Rect.H != 360 {
		t.Fatalf("expected 400x360 image, got %vx%v", g.Rect.W, g.Rect.H)
	}
	left, top, right, bottom := g.Margins()
	if left != 0 || right != 0 {
		t.Errorf("expected no side margins, got %v and %v", left, right)
	}
	if top != 20 || bottom != 20 {
		t.Errorf("expected 20px top and bottom margins, got %v and %v", top, bottom)
	}
	assertCorner(t, g, CornerTopLeft, -1, 0.9)
	assertCorner(t, g, CornerBottomRight, 1, -0.9)
}

func TestBuildGeometry_Pillarbox(t *testing.T) {
	g := BuildGeometry(Size{800, 288}, gbSize, ScaleFit)

	if g.Scale != 2 {
		t.Fatalf("expected scale 2, got %v", g.Scale)
	}
	left, _, right, _ := g.Margins()
	if left != 240 || right != 240 {
		t.Fatalf("expected 240px side margins, got %v and %v", left, right)
	}
	assertCorner(t, g, CornerTopLeft, -0.4, 1)
	assertCorner(t, g, CornerBottomRight, 0.4, -1)
}

func TestBuildGeometry_TexCoords(t *testing.T) {
	g := BuildGeometry(Size{1024, 768}, gbSize, ScaleFit)

	expected := [4]Vec2{{0, 0}, {1, 0}, {0, 1}, {1, 1}}
	for i, v := range g.Quad {
		if v.TexCoord != expected[i] {
			t.Errorf("corner %d: expected texcoord %v, got %v", i, expected[i], v.TexCoord)
		}
	}
}

func TestBuildGeometry_FitsAndPreservesAspect(t *testing.T) {
	tw, th := float64(testWidth), float64(testHeight)
	for w := uint32(1); w <= 700; w += 37 {
		for h := uint32(1); h <= 700; h += 41 {
			g := BuildGeometry(Size{w, h}, gbSize, ScaleFit)

			if g.Rect.X < -1e-9 || g.Rect.Y < -1e-9 ||
				g.Rect.X+g.Rect.W > float64(w)+1e-9 || g.Rect.Y+g.Rect.H > float64(h)+1e-9 {
				t.Fatalf("%dx%d: rect %+v escapes viewport", w, h, g.Rect)
			}
			if !approxEqual(g.Rect.W/g.Rect.H, tw/th) {
				t.Fatalf("%dx%d: aspect %v, expected %v", w, h, g.Rect.W/g.Rect.H, tw/th)
			}
			if !approxEqual(g.Rect.W, float64(w)) && !approxEqual(g.Rect.H, float64(h)) {
				t.Fatalf("%dx%d: rect %+v fills neither dimension", w, h, g.Rect)
			}

			left, top, right, bottom := g.Margins()
			if !approxEqual(left, right) || !approxEqual(top, bottom) {
				t.Fatalf("%dx%d: not centered: %v %v %v %v", w, h, left, top, right, bottom)
			}

			for i, v := range g.Quad {
				if v.Position.X < -1 || v.Position.X > 1 || v.Position.Y < -1 || v.Position.Y > 1 {
					t.Fatalf("%dx%d: corner %d outside NDC: %v", w, h, i, v.Position)
				}
			}
		}
	}
}

func TestBuildGeometry_Degenerate(t *testing.T) {
	tests := []struct {
		name    string
		render  Size
		texture Size
	}{
		{"zero width", Size{0, 400}, gbSize},
		{"zero height", Size{400, 0}, gbSize},
		{"zero render", Size{0, 0}, gbSize},
		{"zero texture width", Size{400, 400}, Size{0, 144}},
		{"zero texture height", Size{400, 400}, Size{160, 0}},
		{"all zero", Size{}, Size{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, mode := range []ScaleMode{ScaleFit, ScaleInteger} {
				g := BuildGeometry(tt.render, tt.texture, mode)
				if !g.Empty() {
					t.Fatalf("expected empty geometry, got %+v", g)
				}
				if g.Scale != 0 || math.IsNaN(g.Scale) {
					t.Fatalf("expected zero scale, got %v", g.Scale)
				}
				for i, v := range g.Quad {
					if !finite32(v.Position.X) || !finite32(v.Position.Y) {
						t.Fatalf("corner %d is not finite: %v", i, v.Position)
					}
					if v.Position != (Vec2{}) {
						t.Fatalf("corner %d should be zero, got %v", i, v.Position)
					}
				}
				if bars := BackgroundBars(g, DefaultBackground); bars != nil {
					t.Fatalf("expected no bars, got %d", len(bars))
				}
			}
		})
	}
}

func TestBuildGeometry_Idempotent(t *testing.T) {
	sizes := []Size{{320, 288}, {400, 400}, {1, 1}, {0, 10}, {1919, 1081}}
	for _, s := range sizes {
		for _, mode := range []ScaleMode{ScaleFit, ScaleInteger} {
			a := BuildGeometry(s, gbSize, mode)
			b := BuildGeometry(s, gbSize, mode)
			if a != b {
				t.Fatalf("%s %s: results differ: %+v vs %+v", s, mode, a, b)
			}
		}
	}
}

func TestBuildGeometry_IntegerScale(t *testing.T) {
	tests := []struct {
		render Size
		scale  float64
		rect   Rect
	}{
		{Size{400, 400}, 2, Rect{X: 40, Y: 56, W: 320, H: 288}},
		{Size{320, 288}, 2, Rect{X: 0, Y: 0, W: 320, H: 288}},
		{Size{500, 460}, 3, Rect{X: 10, Y: 14, W: 480, H: 432}},
		{Size{200, 150}, 1, Rect{X: 20, Y: 3, W: 160, H: 144}},
		{Size{80, 72}, 0.5, Rect{X: 0, Y: 0, W: 80, H: 72}},
	}

	for _, tt := range tests {
		g := BuildGeometry(tt.render, gbSize, ScaleInteger)
		if g.Scale != tt.scale {
			t.Errorf("%s: expected scale %v, got %v", tt.render, tt.scale, g.Scale)
		}
		if g.Rect != tt.rect {
			t.Errorf("%s: expected rect %+v, got %+v", tt.render, tt.rect, g.Rect)
		}
	}
}

func TestParseScaleMode(t *testing.T) {
	tests := []struct {
		in      string
		want    ScaleMode
		wantErr bool
	}{
		{"fit", ScaleFit, false},
		{"", ScaleFit, false},
		{"Integer", ScaleInteger, false},
		{" int ", ScaleInteger, false},
		{"stretch", ScaleFit, true},
	}

	for _, tt := range tests {
		got, err := ParseScaleMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseScaleMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseScaleMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if ScaleInteger.String() != "integer" || ScaleFit.String() != "fit" {
		t.Fatal("unexpected scale mode names")
	}
}

func TestBackgroundBars(t *testing.T) {
	bg := color.RGBA{0x10, 0x20, 0x30, 0xFF}

	if bars := BackgroundBars(BuildGeometry(Size{320, 288}, gbSize, ScaleFit), bg); len(bars) != 0 {
		t.Fatalf("expected no bars when the quad fills the viewport, got %d", len(bars))
	}

	g := BuildGeometry(Size{400, 400}, gbSize, ScaleFit)
	bars := BackgroundBars(g, bg)
	if len(bars) != 2 {
		t.Fatalf("expected 2 letterbox bars, got %d", len(bars))
	}
	top := bars[0]
	if top[CornerTopLeft].Position != (Vec2{-1, 1}) {
		t.Errorf("top bar starts at %v", top[CornerTopLeft].Position)
	}
	if top[CornerBottomRight].Position.Y != g.Quad[CornerTopLeft].Position.Y {
		t.Errorf("top bar should end at the quad edge, got %v", top[CornerBottomRight].Position.Y)
	}
	want := Vec4{X: 0x10 / 255.0, Y: 0x20 / 255.0, Z: 0x30 / 255.0, W: 1}
	for _, v := range top {
		if v.Color != want {
			t.Fatalf("expected color %v, got %v", want, v.Color)
		}
	}

	if bars := BackgroundBars(BuildGeometry(Size{400, 400}, gbSize, ScaleInteger), bg); len(bars) != 4 {
		t.Fatalf("expected 4 bars around an integer scaled quad, got %d", len(bars))
	}
}

func TestGeometryCache(t *testing.T) {
	var c GeometryCache

	g1, rebuilt := c.Get(Size{400, 400}, gbSize, ScaleFit)
	if !rebuilt {
		t.Fatal("first Get should build")
	}
	g2, rebuilt := c.Get(Size{400, 400}, gbSize, ScaleFit)
	if rebuilt {
		t.Fatal("unchanged inputs should not rebuild")
	}
	if g1 != g2 {
		t.Fatal("cached geometry differs")
	}

	if _, rebuilt = c.Get(Size{401, 400}, gbSize, ScaleFit); !rebuilt {
		t.Fatal("resize should rebuild")
	}
	if _, rebuilt = c.Get(Size{401, 400}, gbSize, ScaleInteger); !rebuilt {
		t.Fatal("scale mode change should rebuild")
	}
	if _, rebuilt = c.Get(Size{401, 400}, Size{256, 192}, ScaleInteger); !rebuilt {
		t.Fatal("texture change should rebuild")
	}

	c.Invalidate()
	if _, rebuilt = c.Get(Size{401, 400}, Size{256, 192}, ScaleInteger); !rebuilt {
		t.Fatal("Invalidate should force a rebuild")
	}
}

func TestPixelConversion(t *testing.T) {
	g := BuildGeometry(Size{400, 400}, gbSize, ScaleFit)
	tl := g.Quad[CornerTopLeft].Position
	br := g.Quad[CornerBottomRight].Position

	if x := PixelX(tl.X, 400); !approxEqual(x, 0) {
		t.Errorf("left edge at %v", x)
	}
	if y := PixelY(tl.Y, 400); math.Abs(y-20) > 1e-4 {
		t.Errorf("top edge at %v", y)
	}
	if y := PixelY(br.Y, 400); math.Abs(y-380) > 1e-4 {
		t.Errorf("bottom edge at %v", y)
	}
}
