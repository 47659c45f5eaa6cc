package screenshot

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/image/bmp"
)

func checkerImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{uint8(x * 40), uint8(y * 40), uint8(((x + y) & 1) * 255), 255})
		}
	}
	return img
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		ok   bool
	}{
		{"png", FormatPNG, true},
		{"", FormatPNG, true},
		{" BMP ", FormatBMP, true},
		{"jpeg", FormatPNG, false},
	}
	for _, tc := range tests {
		got, err := ParseFormat(tc.in)
		if (err == nil) != tc.ok || got != tc.want {
			t.Errorf("ParseFormat(%q) = %v, %v", tc.in, got, err)
		}
		if !tc.ok && !errors.Is(err, ErrUnknownFormat) {
			t.Errorf("ParseFormat(%q): expected ErrUnknownFormat, got %v", tc.in, err)
		}
	}
	if FormatBMP.Ext() != ".bmp" || FormatPNG.Ext() != ".png" {
		t.Error("unexpected extensions")
	}
}

func TestUpscale(t *testing.T) {
	src := checkerImage(4, 3)
	dst := Upscale(src, 3)

	if dst.Bounds().Dx() != 12 || dst.Bounds().Dy() != 9 {
		t.Fatalf("size: expected 12x9, got %v", dst.Bounds())
	}
	for y := 0; y < 9; y++ {
		for x := 0; x < 12; x++ {
			if dst.RGBAAt(x, y) != src.RGBAAt(x/3, y/3) {
				t.Fatalf("pixel (%d,%d): expected %v, got %v", x, y, src.RGBAAt(x/3, y/3), dst.RGBAAt(x, y))
			}
		}
	}

	if got := Upscale(src, 0).Bounds(); got != src.Bounds() {
		t.Errorf("scale 0: expected original size, got %v", got)
	}
	if got := Upscale(src, 100).Bounds().Dx(); got != 4*MaxScale {
		t.Errorf("scale clamp: expected width %d, got %d", 4*MaxScale, got)
	}
}

func TestEncodeDecode(t *testing.T) {
	src := checkerImage(5, 4)
	for _, f := range []Format{FormatPNG, FormatBMP} {
		var buf bytes.Buffer
		if err := Encode(&buf, src, f); err != nil {
			t.Fatalf("%s: Encode: %v", f, err)
		}
		var img image.Image
		var err error
		if f == FormatPNG {
			img, err = png.Decode(&buf)
		} else {
			img, err = bmp.Decode(&buf)
		}
		if err != nil {
			t.Fatalf("%s: decode: %v", f, err)
		}
		for y := 0; y < 4; y++ {
			for x := 0; x < 5; x++ {
				r, g, b, _ := img.At(x, y).RGBA()
				want := src.RGBAAt(x, y)
				if uint8(r>>8) != want.R || uint8(g>>8) != want.G || uint8(b>>8) != want.B {
					t.Fatalf("%s: pixel (%d,%d) mismatch", f, x, y)
				}
			}
		}
	}
}

func TestSaver(t *testing.T) {
	dir := t.TempDir()
	s := &Saver{
		Dir:    dir,
		Format: FormatPNG,
		Scale:  2,
		now:    func() time.Time { return time.Unix(1700000000, 0) },
	}

	first, err := s.Save(checkerImage(4, 4), "ABCD1234")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if want := filepath.Join(dir, "ABCD1234", "1700000000.png"); first != want {
		t.Errorf("path: expected %s, got %s", want, first)
	}

	second, err := s.Save(checkerImage(4, 4), "ABCD1234")
	if err != nil {
		t.Fatalf("second Save: %v", err)
	}
	if filepath.Base(second) != "1700000000-1.png" {
		t.Errorf("collision suffix: got %s", filepath.Base(second))
	}

	f, err := os.Open(first)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("DecodeConfig: %v", err)
	}
	if cfg.Width != 8 || cfg.Height != 8 {
		t.Errorf("saved size: expected 8x8, got %dx%d", cfg.Width, cfg.Height)
	}
}
