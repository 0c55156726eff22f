// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"errors"
	"iter"
	"slices"

	"github.com/gviegas/hybrid/linear"
)

// ActorID identifies an Actor in a Scene.
// IDs of removed Actors are never valid again, even if
// their storage is reused.
type ActorID struct {
	index int
	gen   uint32
}

// Valid reports whether id can refer to an Actor.
// The zero ActorID is never valid.
func (id ActorID) Valid() bool { return id.gen != 0 }

// ErrNotFound means that an ActorID does not refer to an
// Actor of the Scene.
var ErrNotFound = errors.New("engine: actor not found")

type slot struct {
	actor *Actor
	gen   uint32
}

// DefaultLight is the initial light position of a Scene.
var DefaultLight = linear.V3{2, 4, -2}

// Scene owns a set of Actors along with the camera and
// light used to render them.
// Actors are updated and rendered in the order they were
// added.
type Scene struct {
	slots []slot
	free  []int
	order []ActorID

	light  linear.V3
	camera Camera
}

// NewScene creates an empty Scene with the default light
// and camera.
func NewScene() *Scene {
	return &Scene{
		light:  DefaultLight,
		camera: DefaultCamera(),
	}
}

// Add adds a to s and returns its ID.
// s takes ownership of a.
func (s *Scene) Add(a *Actor) ActorID {
	var i int
	if n := len(s.free); n > 0 {
		i = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		i = len(s.slots)
		s.slots = append(s.slots, slot{})
	}
	sl := &s.slots[i]
	sl.gen++
	if sl.gen == 0 {
		sl.gen = 1
	}
	sl.actor = a
	id := ActorID{index: i, gen: sl.gen}
	s.order = append(s.order, id)
	return id
}

func (s *Scene) slot(id ActorID) *slot {
	if !id.Valid() || id.index < 0 || id.index >= len(s.slots) {
		return nil
	}
	sl := &s.slots[id.index]
	if sl.gen != id.gen || sl.actor == nil {
		return nil
	}
	return sl
}

// Actor returns the Actor identified by id.
func (s *Scene) Actor(id ActorID) (*Actor, bool) {
	if sl := s.slot(id); sl != nil {
		return sl.actor, true
	}
	return nil, false
}

// Remove removes the Actor identified by id from s and
// returns it. The Actor is not destroyed.
func (s *Scene) Remove(id ActorID) (*Actor, error) {
	sl := s.slot(id)
	if sl == nil {
		return nil, ErrNotFound
	}
	a := sl.actor
	sl.actor = nil
	s.free = append(s.free, id.index)
	s.order = slices.DeleteFunc(s.order, func(x ActorID) bool { return x == id })
	return a, nil
}

// Destroy removes and destroys the Actor identified by id.
func (s *Scene) Destroy(id ActorID) error {
	a, err := s.Remove(id)
	if err != nil {
		return err
	}
	a.Destroy()
	return nil
}

// Len returns the number of Actors in s.
func (s *Scene) Len() int { return len(s.order) }

// IDs returns the IDs of s's Actors in draw order.
func (s *Scene) IDs() []ActorID { return slices.Clone(s.order) }

// All iterates over s's Actors in draw order.
func (s *Scene) All() iter.Seq2[ActorID, *Actor] {
	return func(yield func(ActorID, *Actor) bool) {
		for _, id := range s.order {
			if !yield(id, s.slots[id.index].actor) {
				return
			}
		}
	}
}

// Find returns the first Actor, in draw order, whose
// name is name.
func (s *Scene) Find(name string) (ActorID, *Actor, bool) {
	for id, a := range s.All() {
		if a.Name() == name {
			return id, a, true
		}
	}
	return ActorID{}, nil, false
}

// Light returns the light position.
func (s *Scene) Light() linear.V3 { return s.light }

// SetLight sets the light position.
// A light whose height is too close to zero is accepted,
// but no shadows are drawn while it is in use.
func (s *Scene) SetLight(l linear.V3) { s.light = l }

// Camera returns the camera of s.
// Changes made through the returned pointer take effect
// on the next frame.
func (s *Scene) Camera() *Camera { return &s.camera }

// Clear destroys every Actor of s.
// Actors are destroyed in reverse draw order.
func (s *Scene) Clear() {
	for i := len(s.order) - 1; i >= 0; i-- {
		id := s.order[i]
		if a := s.slots[id.index].actor; a != nil {
			a.Destroy()
		}
		s.slots[id.index].actor = nil
		s.free = append(s.free, id.index)
	}
	s.order = s.order[:0]
}
