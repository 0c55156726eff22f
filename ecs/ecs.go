// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package ecs implements entities as fixed tables of
// typed component slots.
package ecs

import (
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/gviegas/hybrid/driver"
)

// Kind identifies the slot a Component occupies in an
// Entity.
type Kind int

// Component kinds.
const (
	KindTransform Kind = iota
	KindMesh
	// KindUser is available to application-defined
	// components.
	KindUser
	MaxKind
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindTransform:
		return "transform"
	case KindMesh:
		return "mesh"
	case KindUser:
		return "user"
	default:
		return "!ecs.Kind"
	}
}

// Component is the interface that entity components
// implement.
// A Component belongs to at most one Entity and never
// outlives it.
type Component interface {
	// Kind returns the slot the component occupies.
	Kind() Kind

	// Init is called when the component is added to
	// an Entity.
	Init() error

	// Update is called once per frame with the time
	// elapsed since the previous frame.
	Update(delta time.Duration)

	// Render is called once per frame after Update.
	Render(ctx driver.Context)

	// Destroy releases the component's resources.
	Destroy()
}

// ErrDuplicate means that an Entity already has a
// component of the given Kind.
var ErrDuplicate = errors.New("ecs: duplicate component kind")

// ErrKind means that a component's Kind is out of range.
var ErrKind = errors.New("ecs: invalid component kind")

// Entity is a container of components.
// It holds at most one component of each Kind.
// The zero value is an inactive Entity with id 0 and no
// components.
type Entity struct {
	id     int
	active bool
	slots  [MaxKind]Component
}

// Init sets the id of e and activates it.
func (e *Entity) Init(id int) {
	e.id = id
	e.active = true
}

// ID returns the id of e.
func (e *Entity) ID() int { return e.id }

// Active returns whether e is active.
func (e *Entity) Active() bool { return e.active }

// SetActive sets whether e is active.
func (e *Entity) SetActive(active bool) { e.active = active }

// Add initializes c and stores it in the slot for
// c.Kind().
// It fails if the slot is taken or if c.Init fails,
// in which case c is not added.
func (e *Entity) Add(c Component) error {
	if c == nil {
		return fmt.Errorf("%w: nil component", ErrKind)
	}
	k := c.Kind()
	switch {
	case k < 0 || k >= MaxKind:
		return fmt.Errorf("%w: %d", ErrKind, k)
	case e.slots[k] != nil:
		return fmt.Errorf("%w: %s", ErrDuplicate, k)
	}
	if err := c.Init(); err != nil {
		return err
	}
	e.slots[k] = c
	return nil
}

// Remove removes the component of the given Kind from e
// and returns it, or nil if there is none.
// The component is not destroyed.
func (e *Entity) Remove(k Kind) Component {
	if k < 0 || k >= MaxKind {
		return nil
	}
	c := e.slots[k]
	e.slots[k] = nil
	return c
}

// Component returns the component of the given Kind, or
// nil if there is none.
func (e *Entity) Component(k Kind) Component {
	if k < 0 || k >= MaxKind {
		return nil
	}
	return e.slots[k]
}

// Get returns the first component of e that is a T.
// Slots are scanned in Kind order; MaxKind is small
// enough that the scan is cheaper than a type-keyed map.
func Get[T any](e *Entity) (T, bool) {
	for _, c := range e.slots {
		if c == nil {
			continue
		}
		if t, ok := c.(T); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}

// All iterates over the components of e in Kind order.
func (e *Entity) All() iter.Seq[Component] {
	return func(yield func(Component) bool) {
		for _, c := range e.slots {
			if c != nil && !yield(c) {
				return
			}
		}
	}
}

// Update calls Update on every component.
func (e *Entity) Update(delta time.Duration) {
	for c := range e.All() {
		c.Update(delta)
	}
}

// Render calls Render on every component.
func (e *Entity) Render(ctx driver.Context) {
	for c := range e.All() {
		c.Render(ctx)
	}
}

// Destroy destroys and removes every component.
// Components are destroyed in reverse Kind order.
func (e *Entity) Destroy() {
	for k := MaxKind - 1; k >= 0; k-- {
		if c := e.slots[k]; c != nil {
			e.slots[k] = nil
			c.Destroy()
		}
	}
	e.active = false
}
