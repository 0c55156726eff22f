// Copyright 2023 Gustavo C. Viegas. All rights reserved.

// Package engine implements the scene model and the
// per-frame render orchestration.
// A Scene owns Actors; a Renderer updates and draws them
// once per frame through a driver.Context.
package engine

import (
	"errors"

	"github.com/gviegas/hybrid/internal/shader"
	"github.com/gviegas/hybrid/linear"
)

const (
	dflWidth  = 1280
	dflHeight = 720
)

// Tints written to the model color of main and shadow
// draws.
var (
	DefaultTint = linear.V4{1, 1, 1, 1}
	ShadowTint  = linear.V4{0, 0, 0, 0.5}
)

// Config is used to configure a Renderer.
type Config struct {
	// Size of the back buffer.
	//
	// Default is 1280x720.
	Width, Height int

	// Color used to clear the back buffer.
	//
	// Default (used when all components are zero) is
	// {0, 0.125, 0.3, 1}.
	ClearColor [4]float32

	// Path of the effect that provides the VS, PS and
	// PSShadow entry points.
	//
	// Default is "HybridEngine.fx".
	Effect string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Width:      dflWidth,
		Height:     dflHeight,
		ClearColor: [4]float32{0, 0.125, 0.3, 1},
		Effect:     shader.DefaultEffect,
	}
}

func (c *Config) setDefaults() {
	d := DefaultConfig()
	if c.Width <= 0 {
		c.Width = d.Width
	}
	if c.Height <= 0 {
		c.Height = d.Height
	}
	if c.ClearColor == [4]float32{} {
		c.ClearColor = d.ClearColor
	}
	if c.Effect == "" {
		c.Effect = d.Effect
	}
}

// ErrDestroyed means that an object was used after its
// Destroy method was called.
var ErrDestroyed = errors.New("engine: object destroyed")
