//go:build !libretro && !ios

package ebiten

import (
	_ "embed"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/user-none/pixelview/video"
)

//go:embed shaders/screen.kage
var screenShaderSrc []byte

// ScreenShader is the ID of the nearest-neighbor sampling shader.
const ScreenShader = "screen"

// shaderSources maps shader IDs to their Kage source code
var shaderSources = map[string][]byte{
	ScreenShader: screenShaderSrc,
}

// ShaderManager compiles shaders on first use and caches the result,
// including failures, so a broken shader is only reported once.
type ShaderManager struct {
	shaders map[string]*ebiten.Shader
	failed  map[string]error
}

// NewShaderManager creates an empty manager.
func NewShaderManager() *ShaderManager {
	return &ShaderManager{
		shaders: make(map[string]*ebiten.Shader),
		failed:  make(map[string]error),
	}
}

// Shader returns the compiled shader for id.
func (m *ShaderManager) Shader(id string) (*ebiten.Shader, error) {
	if s, ok := m.shaders[id]; ok {
		return s, nil
	}
	if err, ok := m.failed[id]; ok {
		return nil, err
	}

	src, ok := shaderSources[id]
	if !ok {
		return nil, fmt.Errorf("unknown shader: %s", id)
	}

	s, err := ebiten.NewShader(src)
	if err != nil {
		err = fmt.Errorf("failed to compile shader %s: %w", id, err)
		m.failed[id] = err
		video.Logger().Warn("shader unavailable, using CPU display mode", "shader", id, "err", err)
		return nil, err
	}
	m.shaders[id] = s
	return s, nil
}

// Dispose releases every compiled shader.
func (m *ShaderManager) Dispose() {
	for id, s := range m.shaders {
		s.Deallocate()
		delete(m.shaders, id)
	}
}
