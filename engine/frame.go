// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"time"

	"github.com/gviegas/hybrid/driver"
	"github.com/gviegas/hybrid/linear"
)

// Frame is the per-frame data shared by every Actor.
// The Renderer fills it at the start of each frame and
// passes it to the update and render steps.
type Frame struct {
	// Index counts frames, starting at 0.
	Index uint64

	// Elapsed is the monotonic time since the first
	// frame.
	Elapsed time.Duration

	// Delta is the time since the previous frame.
	// It is zero on the first frame.
	Delta time.Duration

	// Light is the scene's light position.
	Light linear.V3

	// View and Proj are the camera matrices.
	View, Proj linear.M4

	// PS is the main pixel shader and Depth is the
	// default depth/stencil state. Actors that replace
	// either must restore them.
	PS    driver.Shader
	Depth driver.DepthStencilState
}

// clock measures frame times.
type clock struct {
	now   func() time.Time
	start time.Time
	last  time.Time
	n     uint64
}

// tick advances the clock and updates f.
func (c *clock) tick(f *Frame) {
	if c.now == nil {
		c.now = time.Now
	}
	t := c.now()
	if c.n == 0 {
		c.start, c.last = t, t
	}
	f.Index = c.n
	f.Elapsed = t.Sub(c.start)
	f.Delta = t.Sub(c.last)
	c.last = t
	c.n++
}
