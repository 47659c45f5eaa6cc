// Package screenshot encodes presented frames to image files.
package screenshot

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

// MaxScale bounds the upscale factor.
const MaxScale = 8

// ErrUnknownFormat is returned by ParseFormat.
var ErrUnknownFormat = errors.New("unknown screenshot format")

// Format is an output image encoding.
type Format int

const (
	FormatPNG Format = iota
	FormatBMP
)

// ParseFormat accepts "png" or "bmp" (case-insensitive).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "png", "":
		return FormatPNG, nil
	case "bmp":
		return FormatBMP, nil
	}
	return FormatPNG, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

func (f Format) String() string {
	if f == FormatBMP {
		return "bmp"
	}
	return "png"
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string {
	return "." + f.String()
}

// Encode writes img to w.
func Encode(w io.Writer, img image.Image, f Format) error {
	if f == FormatBMP {
		return bmp.Encode(w, img)
	}
	return png.Encode(w, img)
}

// Upscale enlarges img by an integer factor with nearest-neighbor sampling.
// A scale of 1 or less returns a copy at the original size.
func Upscale(img image.Image, scale int) *image.RGBA {
	scale = max(1, min(scale, MaxScale))
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// Saver writes numbered screenshots into a directory.
type Saver struct {
	Dir    string
	Format Format
	Scale  int

	now func() time.Time
}

// Save writes img under Dir/<group>/ named by the current Unix time, adding
// a suffix when that name is taken. group may be empty. It returns the path
// written.
func (s *Saver) Save(img image.Image, group string) (string, error) {
	dir := s.Dir
	if group != "" {
		dir = filepath.Join(dir, group)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create screenshot directory: %w", err)
	}

	now := time.Now
	if s.now != nil {
		now = s.now
	}
	base := strconv.FormatInt(now().Unix(), 10)

	var f *os.File
	var path string
	for i := 0; ; i++ {
		name := base
		if i > 0 {
			name = fmt.Sprintf("%s-%d", base, i)
		}
		path = filepath.Join(dir, name+s.Format.Ext())
		var err error
		f, err = os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err == nil {
			break
		}
		if !errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("failed to create screenshot file: %w", err)
		}
	}

	if s.Scale > 1 {
		img = Upscale(img, s.Scale)
	}
	if err := Encode(f, img, s.Format); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to encode screenshot: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write screenshot: %w", err)
	}
	return path, nil
}
