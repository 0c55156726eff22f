// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gviegas/hybrid/driver/soft"
	"github.com/gviegas/hybrid/linear"
)

func names(s *Scene) []string {
	var n []string
	for _, a := range s.All() {
		n = append(n, a.Name())
	}
	return n
}

func TestScene(t *testing.T) {
	dev := soft.New()
	s := NewScene()
	assert.Equal(t, DefaultLight, s.Light())
	assert.Equal(t, DefaultCamera(), *s.Camera())
	assert.False(t, ActorID{}.Valid())

	ids := make(map[string]ActorID)
	for _, name := range []string{"a", "b", "c"} {
		a, err := NewActor(dev, name)
		require.NoError(t, err)
		ids[name] = s.Add(a)
		assert.True(t, ids[name].Valid())
	}
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []string{"a", "b", "c"}, names(s))

	a, ok := s.Actor(ids["b"])
	require.True(t, ok)
	assert.Equal(t, "b", a.Name())
	id, a, ok := s.Find("c")
	require.True(t, ok)
	assert.Equal(t, ids["c"], id)
	assert.Equal(t, "c", a.Name())
	_, _, ok = s.Find("z")
	assert.False(t, ok)

	removed, err := s.Remove(ids["b"])
	require.NoError(t, err)
	assert.Equal(t, "b", removed.Name())
	assert.Equal(t, []string{"a", "c"}, names(s))
	_, ok = s.Actor(ids["b"])
	assert.False(t, ok)
	_, err = s.Remove(ids["b"])
	assert.ErrorIs(t, err, ErrNotFound)

	// The freed slot is reused, but the stale ID stays
	// invalid and the new Actor goes last.
	d, err := NewActor(dev, "d")
	require.NoError(t, err)
	idD := s.Add(d)
	assert.Equal(t, ids["b"].index, idD.index)
	assert.NotEqual(t, ids["b"], idD)
	_, ok = s.Actor(ids["b"])
	assert.False(t, ok)
	assert.Equal(t, []string{"a", "c", "d"}, names(s))
	assert.Equal(t, []ActorID{ids["a"], ids["c"], idD}, s.IDs())

	live := dev.Live()
	require.NoError(t, s.Destroy(ids["a"]))
	assert.Equal(t, live-actorObjects, dev.Live())
	assert.ErrorIs(t, s.Destroy(ids["a"]), ErrNotFound)

	s.Clear()
	assert.Equal(t, 0, s.Len())
	removed.Destroy()
	assert.Equal(t, 0, dev.Live())
}

func TestSceneLight(t *testing.T) {
	s := NewScene()
	l := linear.V3{1, 0, 1}
	s.SetLight(l)
	assert.Equal(t, l, s.Light())

	s.Camera().FovY = 60
	assert.Equal(t, float32(60), s.Camera().FovY)
}
