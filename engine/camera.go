// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gviegas/hybrid/linear"
)

// Camera describes a perspective camera.
type Camera struct {
	Eye, At, Up linear.V3

	// Vertical field of view in degrees.
	FovY float32

	Near, Far float32
}

// DefaultCamera returns a camera at (0, 3, -6) looking at
// the origin.
func DefaultCamera() Camera {
	return Camera{
		Eye:  linear.V3{0, 3, -6},
		At:   linear.V3{},
		Up:   linear.V3{0, 1, 0},
		FovY: 45,
		Near: 0.01,
		Far:  100,
	}
}

// View returns the view matrix.
func (c *Camera) View() linear.M4 { return mgl32.LookAtV(c.Eye, c.At, c.Up) }

// Proj returns the projection matrix for the given
// aspect ratio (width/height).
func (c *Camera) Proj(aspect float32) linear.M4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FovY), aspect, c.Near, c.Far)
}
