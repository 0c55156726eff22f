// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package editor implements scene editing.
//
// Editor holds the editing state (the selected actor and
// the pending exit confirmation) and exposes the edits
// as methods. TUI drives an Editor from a terminal.
package editor

import (
	"errors"
	"fmt"

	"github.com/gviegas/hybrid/engine"
	"github.com/gviegas/hybrid/internal/log"
	"github.com/gviegas/hybrid/linear"
)

// ErrNoSelection means that the scene has no actors.
var ErrNoSelection = errors.New("editor: no actor selected")

// ErrNoHandler means that the callback for an operation
// was not set.
var ErrNoHandler = errors.New("editor: operation not available")

// Field identifies an editable transform field.
type Field int

// Transform fields.
const (
	Position Field = iota
	Rotation
	Scale
	fieldN
)

func (f Field) String() string {
	switch f {
	case Position:
		return "Position"
	case Rotation:
		return "Rotation"
	case Scale:
		return "Scale"
	}
	return fmt.Sprintf("Field(%d)", int(f))
}

// resetValue is the value a component of f is reset to.
func (f Field) resetValue() float32 {
	if f == Scale {
		return 1
	}
	return 0
}

// Step returns the amount f changes by per nudge.
// Rotation steps are in degrees.
func (f Field) Step() float32 {
	if f == Rotation {
		return 5
	}
	return 0.1
}

// Editor edits the actors of a scene.
// Rotations are presented in degrees.
type Editor struct {
	scene   *engine.Scene
	sel     engine.ActorID
	uniform float32
	exiting bool
	done    bool
	status  string

	// OnImportModel imports a model file, and optionally
	// a texture file, as a new actor.
	OnImportModel func(modelPath, texturePath string) (engine.ActorID, error)

	// OnRemove removes an actor from the scene.
	OnRemove func(id engine.ActorID) error

	// OnSave saves the scene.
	OnSave func() error

	// OnExit is called once exit is confirmed.
	OnExit func()
}

// New creates an Editor for s.
func New(s *engine.Scene) *Editor {
	return &Editor{scene: s, uniform: 1}
}

// Scene returns the scene being edited.
func (e *Editor) Scene() *engine.Scene { return e.scene }

// Status returns the message left by the last operation.
func (e *Editor) Status() string { return e.status }

func (e *Editor) setStatus(format string, args ...any) {
	e.status = fmt.Sprintf(format, args...)
}

// Selected returns the selected actor.
// If the selection is no longer in the scene, the first
// actor is selected instead.
func (e *Editor) Selected() (engine.ActorID, *engine.Actor, bool) {
	if x, ok := e.scene.Actor(e.sel); ok {
		return e.sel, x, true
	}
	for id, x := range e.scene.All() {
		e.sel = id
		return id, x, true
	}
	e.sel = engine.ActorID{}
	return e.sel, nil, false
}

// Select selects the actor identified by id.
func (e *Editor) Select(id engine.ActorID) bool {
	if _, ok := e.scene.Actor(id); !ok {
		return false
	}
	e.sel = id
	return true
}

// Next selects the actor after the selected one, in
// scene order. It wraps around.
func (e *Editor) Next() { e.step(1) }

// Prev selects the actor before the selected one, in
// scene order. It wraps around.
func (e *Editor) Prev() { e.step(-1) }

func (e *Editor) step(d int) {
	cur, _, ok := e.Selected()
	if !ok {
		return
	}
	ids := e.scene.IDs()
	for i, id := range ids {
		if id == cur {
			e.sel = ids[(i+d+len(ids))%len(ids)]
			return
		}
	}
}

func (e *Editor) transform() (*engine.Actor, error) {
	_, x, ok := e.Selected()
	if !ok {
		return nil, ErrNoSelection
	}
	return x, nil
}

// Value returns the value of the selected actor's field.
func (e *Editor) Value(f Field) (linear.V3, bool) {
	x, err := e.transform()
	if err != nil {
		return linear.V3{}, false
	}
	t := x.Transform()
	switch f {
	case Position:
		return t.Position(), true
	case Rotation:
		return linear.Deg(t.Rotation()), true
	case Scale:
		return t.Scale(), true
	}
	return linear.V3{}, false
}

// SetValue sets the selected actor's field to v.
func (e *Editor) SetValue(f Field, v linear.V3) error {
	x, err := e.transform()
	if err != nil {
		return err
	}
	t := x.Transform()
	switch f {
	case Position:
		t.SetPosition(v)
	case Rotation:
		t.SetRotation(linear.Rad(v))
	case Scale:
		t.SetScale(v)
	default:
		return fmt.Errorf("editor: invalid field %v", f)
	}
	return nil
}

// SetAxis sets one component of the selected actor's
// field.
func (e *Editor) SetAxis(f Field, axis int, value float32) error {
	if axis < 0 || axis > 2 {
		return fmt.Errorf("editor: invalid axis %d", axis)
	}
	v, ok := e.Value(f)
	if !ok {
		return ErrNoSelection
	}
	v[axis] = value
	return e.SetValue(f, v)
}

// Nudge adds delta to one component of the selected
// actor's field.
func (e *Editor) Nudge(f Field, axis int, delta float32) error {
	v, ok := e.Value(f)
	if !ok {
		return ErrNoSelection
	}
	if axis < 0 || axis > 2 {
		return fmt.Errorf("editor: invalid axis %d", axis)
	}
	return e.SetAxis(f, axis, v[axis]+delta)
}

// ResetAxis resets one component of the selected actor's
// field. Position and rotation reset to 0, scale to 1.
func (e *Editor) ResetAxis(f Field, axis int) error {
	return e.SetAxis(f, axis, f.resetValue())
}

// ResetTransform resets the selected actor to the origin,
// with no rotation and unit scale.
func (e *Editor) ResetTransform() error {
	x, err := e.transform()
	if err != nil {
		return err
	}
	x.Transform().SetTransform(linear.V3{}, linear.V3{}, linear.V3{1, 1, 1})
	e.setStatus("%s: transform reset", x.Name())
	return nil
}

// Rotate90 rotates the selected actor by 90 degrees
// around axis.
func (e *Editor) Rotate90(axis int) error {
	return e.Nudge(Rotation, axis, 90)
}

// Uniform returns the uniform scale value.
func (e *Editor) Uniform() float32 { return e.uniform }

// SetUniform sets the uniform scale value.
// It does not change the selected actor.
func (e *Editor) SetUniform(s float32) { e.uniform = s }

// ApplyUniform scales the selected actor by the uniform
// scale value on every axis.
func (e *Editor) ApplyUniform() error {
	s := e.uniform
	return e.SetValue(Scale, linear.V3{s, s, s})
}

// ToggleShadow toggles whether the selected actor casts
// a shadow.
func (e *Editor) ToggleShadow() error {
	x, err := e.transform()
	if err != nil {
		return err
	}
	x.SetCastShadow(!x.CastShadow())
	return nil
}

// Import imports the model file at modelPath, with the
// texture file at texturePath if not empty, and selects
// the new actor.
func (e *Editor) Import(modelPath, texturePath string) error {
	if e.OnImportModel == nil {
		return ErrNoHandler
	}
	id, err := e.OnImportModel(modelPath, texturePath)
	if err != nil {
		e.setStatus("import failed: %v", err)
		return err
	}
	e.Select(id)
	e.setStatus("imported %s", modelPath)
	return nil
}

// Remove removes the selected actor.
func (e *Editor) Remove() error {
	if e.OnRemove == nil {
		return ErrNoHandler
	}
	id, x, ok := e.Selected()
	if !ok {
		return ErrNoSelection
	}
	name := x.Name()
	if err := e.OnRemove(id); err != nil {
		return err
	}
	e.setStatus("removed %s", name)
	return nil
}

// Save saves the scene.
func (e *Editor) Save() error {
	if e.OnSave == nil {
		return ErrNoHandler
	}
	if err := e.OnSave(); err != nil {
		e.setStatus("save failed: %v", err)
		return err
	}
	e.setStatus("saved")
	return nil
}

// RequestExit asks for exit confirmation.
func (e *Editor) RequestExit() { e.exiting = true }

// Exiting returns whether exit is waiting for
// confirmation.
func (e *Editor) Exiting() bool { return e.exiting }

// Confirm answers the exit confirmation.
// It does nothing if exit was not requested.
func (e *Editor) Confirm(yes bool) {
	if !e.exiting {
		return
	}
	e.exiting = false
	if !yes {
		return
	}
	e.done = true
	log.L().Info("editor exit")
	if e.OnExit != nil {
		e.OnExit()
	}
}

// Done returns whether exit was confirmed.
func (e *Editor) Done() bool { return e.done }
