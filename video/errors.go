package video

import (
	"errors"
	"fmt"
)

var (
	// ErrTextureMismatch is returned when a frame, an upload or the display
	// parameters disagree with the dimensions of the bound source texture.
	ErrTextureMismatch = errors.New("texture size mismatch")

	// ErrTargetMismatch is returned when a render target does not match the
	// render size of the display parameters.
	ErrTargetMismatch = errors.New("render target size mismatch")

	// ErrResourceExhausted is returned by backends that could not obtain a
	// buffer for the render pass. The frame is dropped and the next refresh
	// retries normally.
	ErrResourceExhausted = errors.New("render resources exhausted")

	// ErrClosed is returned once the scheduler has been torn down.
	ErrClosed = errors.New("frame scheduler closed")

	// ErrInvalidSize is returned when a texture is created with a zero or
	// negative dimension.
	ErrInvalidSize = errors.New("invalid texture size")
)

// RenderError provides context for a failed render operation.
type RenderError struct {
	Op      string // What was being attempted
	Details string // Additional context
	Err     error  // Underlying error if any
}

func (e *RenderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("video %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("video %s failed: %s", e.Op, e.Details)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}
