// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package ecs

import (
	"time"

	"github.com/gviegas/hybrid/driver"
	"github.com/gviegas/hybrid/linear"
)

// Transform is a Component that places an Entity in the
// world.
// Rotation is given as Euler angles in radians: roll
// about Z is applied first, then pitch about X, then yaw
// about Y.
// The world matrix is recomputed by Update and is not
// affected by setters until then.
type Transform struct {
	pos    linear.V3
	rot    linear.V3
	scale  linear.V3
	matrix linear.M4
}

// NewTransform creates an identity Transform.
func NewTransform() *Transform {
	t := new(Transform)
	t.reset()
	return t
}

func (t *Transform) reset() {
	t.pos = linear.V3{}
	t.rot = linear.V3{}
	t.scale = linear.V3{1, 1, 1}
	t.matrix = linear.I()
}

// Kind implements Component.
func (t *Transform) Kind() Kind { return KindTransform }

// Init implements Component.
// A zero Transform is made an identity transform.
func (t *Transform) Init() error {
	if t.scale == (linear.V3{}) && t.matrix == (linear.M4{}) {
		t.reset()
	}
	return nil
}

// Update implements Component.
// The matrix depends only on the current position,
// rotation and scale, so delta is not used.
func (t *Transform) Update(time.Duration) {
	t.matrix = linear.Compose(t.pos, t.rot, t.scale)
}

// Render implements Component.
func (t *Transform) Render(driver.Context) {}

// Destroy implements Component.
func (t *Transform) Destroy() {}

// Position returns the position.
func (t *Transform) Position() linear.V3 { return t.pos }

// SetPosition sets the position.
func (t *Transform) SetPosition(p linear.V3) { t.pos = p }

// Rotation returns the rotation in radians.
func (t *Transform) Rotation() linear.V3 { return t.rot }

// SetRotation sets the rotation in radians.
func (t *Transform) SetRotation(r linear.V3) { t.rot = r }

// Scale returns the scale.
func (t *Transform) Scale() linear.V3 { return t.scale }

// SetScale sets the scale.
func (t *Transform) SetScale(s linear.V3) { t.scale = s }

// SetTransform sets position, rotation and scale at once.
func (t *Transform) SetTransform(pos, rot, scale linear.V3) {
	t.pos = pos
	t.rot = rot
	t.scale = scale
}

// Translate adds delta to the position.
func (t *Transform) Translate(delta linear.V3) { t.pos = t.pos.Add(delta) }

// Matrix returns the world matrix computed by the last
// call to Update.
// It is stored in column-major order, as the GPU
// expects.
func (t *Transform) Matrix() linear.M4 { return t.matrix }
