package video

import (
	"encoding/binary"
	"fmt"
	"math"
)

// DisplayParameters are the per-frame shading inputs of the sampler.
type DisplayParameters struct {
	RenderSize  Size // Destination viewport in pixels
	TextureSize Size // Source framebuffer in pixels
	DisplayMode bool // Apply the display mode color transform
}

// NewDisplayParameters aggregates the current viewport size, source size and
// display mode flag.
func NewDisplayParameters(renderSize, textureSize Size, displayMode bool) DisplayParameters {
	return DisplayParameters{
		RenderSize:  renderSize,
		TextureSize: textureSize,
		DisplayMode: displayMode,
	}
}

// Binary layout sizes shared with shading backends. Multi-byte fields are
// little endian.
const (
	// ParamsSize is renderSize (2 x uint32), textureSize (2 x uint32) and
	// displayMode (1 byte), padded to the 8 byte alignment of a uint2 member.
	ParamsSize = 24

	// VertexStride is position (2 x float32) followed by texCoord (2 x float32).
	VertexStride = 16

	// ColoredVertexStride is position (2 x float32), 8 bytes of padding to
	// align the float4, then color (4 x float32).
	ColoredVertexStride = 32

	coloredVertexColorOffset = 16
)

// MarshalBinary encodes the parameters in the ParamsSize layout.
func (p DisplayParameters) MarshalBinary() ([]byte, error) {
	return p.AppendBinary(make([]byte, 0, ParamsSize))
}

// AppendBinary appends the ParamsSize layout to b.
func (p DisplayParameters) AppendBinary(b []byte) ([]byte, error) {
	b = binary.LittleEndian.AppendUint32(b, p.RenderSize.W)
	b = binary.LittleEndian.AppendUint32(b, p.RenderSize.H)
	b = binary.LittleEndian.AppendUint32(b, p.TextureSize.W)
	b = binary.LittleEndian.AppendUint32(b, p.TextureSize.H)
	var mode byte
	if p.DisplayMode {
		mode = 1
	}
	b = append(b, mode)
	var pad [ParamsSize - 17]byte
	return append(b, pad[:]...), nil
}

// UnmarshalBinary decodes the ParamsSize layout.
func (p *DisplayParameters) UnmarshalBinary(data []byte) error {
	if len(data) < ParamsSize {
		return fmt.Errorf("display parameters: need %d bytes, got %d", ParamsSize, len(data))
	}
	p.RenderSize.W = binary.LittleEndian.Uint32(data[0:])
	p.RenderSize.H = binary.LittleEndian.Uint32(data[4:])
	p.TextureSize.W = binary.LittleEndian.Uint32(data[8:])
	p.TextureSize.H = binary.LittleEndian.Uint32(data[12:])
	p.DisplayMode = data[16] != 0
	return nil
}

// AppendVertexData appends the four vertices in the VertexStride layout.
func (q Quad) AppendVertexData(b []byte) []byte {
	for _, v := range q {
		b = appendFloat32(b, v.Position.X)
		b = appendFloat32(b, v.Position.Y)
		b = appendFloat32(b, v.TexCoord.X)
		b = appendFloat32(b, v.TexCoord.Y)
	}
	return b
}

// DecodeQuad reads four vertices written by Quad.AppendVertexData.
func DecodeQuad(data []byte) (Quad, error) {
	var q Quad
	if len(data) < len(q)*VertexStride {
		return q, fmt.Errorf("quad: need %d bytes, got %d", len(q)*VertexStride, len(data))
	}
	for i := range q {
		off := i * VertexStride
		q[i].Position = Vec2{readFloat32(data[off:]), readFloat32(data[off+4:])}
		q[i].TexCoord = Vec2{readFloat32(data[off+8:]), readFloat32(data[off+12:])}
	}
	return q, nil
}

// AppendVertexData appends the vertex in the ColoredVertexStride layout.
func (v ColoredVertex) AppendVertexData(b []byte) []byte {
	b = appendFloat32(b, v.Position.X)
	b = appendFloat32(b, v.Position.Y)
	var pad [coloredVertexColorOffset - 8]byte
	b = append(b, pad[:]...)
	b = appendFloat32(b, v.Color.X)
	b = appendFloat32(b, v.Color.Y)
	b = appendFloat32(b, v.Color.Z)
	return appendFloat32(b, v.Color.W)
}

func appendFloat32(b []byte, f float32) []byte {
	return binary.LittleEndian.AppendUint32(b, math.Float32bits(f))
}

func readFloat32(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}
