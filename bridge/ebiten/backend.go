//go:build !libretro && !ios

// Package ebiten presents frames on an Ebiten image. The framebuffer quad is
// drawn with a nearest-neighbor Kage shader that also applies the display
// mode; if the shader cannot be compiled the texture is inverted on the CPU
// and drawn with FilterNearest instead.
package ebiten

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/user-none/pixelview/video"
)

// Backend implements video.Backend for the Ebiten screen. All methods must
// be called from Ebiten's Draw.
type Backend struct {
	shaders   *ShaderManager
	useShader bool

	target *ebiten.Image

	texture  *ebiten.Image
	texSize  video.Size
	texKey   uploadKey
	texValid bool
	scratch  []byte

	white *ebiten.Image

	quad     [4]ebiten.Vertex
	barVerts []ebiten.Vertex
	barIdx   []uint16

	uniforms   map[string]any
	shaderOpts ebiten.DrawTrianglesShaderOptions
	imageOpts  ebiten.DrawTrianglesOptions
	barOpts    ebiten.DrawTrianglesOptions
}

// NewBackend creates a backend. useShader selects the Kage path.
func NewBackend(useShader bool) *Backend {
	white := ebiten.NewImage(3, 3)
	white.Fill(color.White)

	b := &Backend{
		shaders:   NewShaderManager(),
		useShader: useShader,
		white:     white.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image),
		uniforms:  make(map[string]any, 2),
	}
	b.imageOpts.Filter = ebiten.FilterNearest
	return b
}

// SetTarget sets the image the next render pass draws into, normally the
// screen passed to Draw.
func (b *Backend) SetTarget(img *ebiten.Image) {
	b.target = img
}

// Texture returns the uploaded framebuffer image, or nil before the first
// pass. Its content is inverted when the CPU fallback drew in display mode.
func (b *Backend) Texture() *ebiten.Image {
	return b.texture
}

// Render draws one pass into the target.
func (b *Backend) Render(ctx context.Context, pass video.RenderPass) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b.target == nil {
		return fmt.Errorf("%w: no target set", video.ErrTargetMismatch)
	}
	bounds := b.target.Bounds()
	if video.SizeOf(bounds.Dx(), bounds.Dy()) != pass.Params.RenderSize {
		return fmt.Errorf("%w: target %dx%d, parameters %s",
			video.ErrTargetMismatch, bounds.Dx(), bounds.Dy(), pass.Params.RenderSize)
	}
	if pass.Frame.Size() != pass.Params.TextureSize {
		return fmt.Errorf("%w: frame %s, parameters %s",
			video.ErrTextureMismatch, pass.Frame.Size(), pass.Params.TextureSize)
	}

	if pass.Geometry.Empty() {
		b.target.Fill(pass.Background)
		return nil
	}

	shader := b.shader()
	cpuInvert := shader == nil && pass.Params.DisplayMode
	b.upload(pass.Frame, cpuInvert)

	b.drawBars(pass.Geometry, pass.Background, pass.Params.RenderSize)

	fillQuadVertices(&b.quad, pass.Geometry, pass.Params.RenderSize, pass.Params.TextureSize)
	if shader != nil {
		b.uniforms["TextureSize"] = []float32{float32(pass.Params.TextureSize.W), float32(pass.Params.TextureSize.H)}
		b.uniforms["DisplayMode"] = displayModeUniform(pass.Params.DisplayMode)
		b.shaderOpts.Uniforms = b.uniforms
		b.shaderOpts.Images[0] = b.texture
		b.target.DrawTrianglesShader(b.quad[:], video.QuadIndices[:], shader, &b.shaderOpts)
	} else {
		b.target.DrawTriangles(b.quad[:], video.QuadIndices[:], b.texture, &b.imageOpts)
	}
	return nil
}

func (b *Backend) shader() *ebiten.Shader {
	if !b.useShader {
		return nil
	}
	s, err := b.shaders.Shader(ScreenShader)
	if err != nil {
		b.useShader = false
		return nil
	}
	return s
}

// upload copies the frame into the texture when it changed since the last
// upload.
func (b *Backend) upload(frame video.Frame, invert bool) {
	size := frame.Size()
	if b.texture == nil || b.texSize != size {
		if b.texture != nil {
			b.texture.Deallocate()
		}
		b.texture = ebiten.NewImage(frame.Width, frame.Height)
		b.texSize = size
		b.texValid = false
	}
	key := frameKey(frame, invert)
	if b.texValid && b.texKey == key {
		return
	}

	pix := frame.Pix[:frame.Height*frame.Stride]
	if invert {
		if cap(b.scratch) < len(pix) {
			b.scratch = make([]byte, len(pix))
		}
		b.scratch = b.scratch[:len(pix)]
		invertPixels(b.scratch, pix)
		pix = b.scratch
	}
	b.texture.WritePixels(pix)

	b.texKey = key
	b.texValid = true
}

// uploadKey identifies the texture content. Sequence numbers are per
// SourceTexture, so the pixel buffer is part of the key: a rebound texture
// can repeat a sequence number.
type uploadKey struct {
	pix      *byte
	seq      uint64
	inverted bool // Content was inverted on the CPU
}

func frameKey(frame video.Frame, invert bool) uploadKey {
	k := uploadKey{seq: frame.Seq, inverted: invert}
	if len(frame.Pix) > 0 {
		k.pix = &frame.Pix[0]
	}
	return k
}

func (b *Backend) drawBars(geom video.Geometry, bg color.RGBA, render video.Size) {
	bars := video.BackgroundBars(geom, bg)
	if len(bars) == 0 {
		return
	}
	b.barVerts = b.barVerts[:0]
	b.barIdx = b.barIdx[:0]
	for i, bar := range bars {
		base := uint16(i * 4)
		for _, v := range bar {
			b.barVerts = append(b.barVerts, ebiten.Vertex{
				DstX:   float32(video.PixelX(v.Position.X, render.W)),
				DstY:   float32(video.PixelY(v.Position.Y, render.H)),
				SrcX:   1.5,
				SrcY:   1.5,
				ColorR: v.Color.X,
				ColorG: v.Color.Y,
				ColorB: v.Color.Z,
				ColorA: v.Color.W,
			})
		}
		for _, idx := range video.QuadIndices {
			b.barIdx = append(b.barIdx, base+idx)
		}
	}
	b.target.DrawTriangles(b.barVerts, b.barIdx, b.white, &b.barOpts)
}

// Dispose releases GPU resources.
func (b *Backend) Dispose() {
	if b.texture != nil {
		b.texture.Deallocate()
		b.texture = nil
	}
	b.texValid = false
	b.shaders.Dispose()
}

// fillQuadVertices converts the NDC quad into Ebiten vertices. Ebiten uses
// destination pixels with y down and source texels.
func fillQuadVertices(dst *[4]ebiten.Vertex, geom video.Geometry, render, texture video.Size) {
	for i, v := range geom.Quad {
		dst[i] = ebiten.Vertex{
			DstX:   float32(video.PixelX(v.Position.X, render.W)),
			DstY:   float32(video.PixelY(v.Position.Y, render.H)),
			SrcX:   v.TexCoord.X * float32(texture.W),
			SrcY:   v.TexCoord.Y * float32(texture.H),
			ColorR: 1,
			ColorG: 1,
			ColorB: 1,
			ColorA: 1,
		}
	}
}

func displayModeUniform(on bool) float32 {
	if on {
		return 1
	}
	return 0
}

func invertPixels(dst, src []byte) {
	for i := 0; i+3 < len(src); i += video.BytesPerPixel {
		c := video.ApplyDisplayMode(color.RGBA{R: src[i], G: src[i+1], B: src[i+2], A: src[i+3]}, true)
		dst[i], dst[i+1], dst[i+2], dst[i+3] = c.R, c.G, c.B, c.A
	}
}
