// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package editor

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gviegas/hybrid/driver/soft"
	"github.com/gviegas/hybrid/engine"
	"github.com/gviegas/hybrid/linear"
)

// newScene creates a scene with one actor per name.
func newScene(t *testing.T, names ...string) (*engine.Scene, []engine.ActorID) {
	t.Helper()
	dev := soft.New()
	s := engine.NewScene()
	ids := make([]engine.ActorID, 0, len(names))
	for _, n := range names {
		x, err := engine.NewActor(dev, n)
		require.NoError(t, err)
		ids = append(ids, s.Add(x))
	}
	t.Cleanup(func() {
		s.Clear()
		assert.Equal(t, 0, dev.Live())
	})
	return s, ids
}

func TestSelection(t *testing.T) {
	s, ids := newScene(t, "a", "b", "c")
	e := New(s)
	id, x, ok := e.Selected()
	require.True(t, ok)
	assert.Equal(t, ids[0], id)
	assert.Equal(t, "a", x.Name())

	e.Next()
	e.Next()
	id, _, _ = e.Selected()
	assert.Equal(t, ids[2], id)
	e.Next()
	id, _, _ = e.Selected()
	assert.Equal(t, ids[0], id)
	e.Prev()
	id, _, _ = e.Selected()
	assert.Equal(t, ids[2], id)

	assert.True(t, e.Select(ids[1]))
	require.NoError(t, s.Destroy(ids[1]))
	// A stale selection falls back to the first actor.
	id, _, ok = e.Selected()
	require.True(t, ok)
	assert.Equal(t, ids[0], id)
	assert.False(t, e.Select(ids[1]))

	s.Clear()
	_, _, ok = e.Selected()
	assert.False(t, ok)
	e.Next()
	assert.ErrorIs(t, e.ResetTransform(), ErrNoSelection)
	assert.ErrorIs(t, e.Nudge(Position, 0, 1), ErrNoSelection)
	_, ok = e.Value(Scale)
	assert.False(t, ok)
}

func TestEdit(t *testing.T) {
	s, _ := newScene(t, "a")
	e := New(s)
	_, x, _ := e.Selected()
	tf := x.Transform()

	require.NoError(t, e.SetValue(Position, linear.V3{1, 2, 3}))
	assert.Equal(t, linear.V3{1, 2, 3}, tf.Position())
	require.NoError(t, e.SetAxis(Rotation, 1, 180))
	assert.InDelta(t, 3.14159265, tf.Rotation()[1], 1e-5)
	v, ok := e.Value(Rotation)
	require.True(t, ok)
	assert.InDelta(t, 180, v[1], 1e-3)

	require.NoError(t, e.Nudge(Scale, 2, Scale.Step()))
	assert.InDelta(t, 1.1, tf.Scale()[2], 1e-6)
	assert.Error(t, e.Nudge(Scale, 3, 1))
	assert.Error(t, e.SetAxis(Scale, -1, 1))

	require.NoError(t, e.ResetAxis(Scale, 2))
	assert.Equal(t, linear.V3{1, 1, 1}, tf.Scale())
	require.NoError(t, e.ResetAxis(Position, 0))
	assert.Equal(t, linear.V3{0, 2, 3}, tf.Position())

	require.NoError(t, e.Rotate90(0))
	require.NoError(t, e.Rotate90(0))
	v, _ = e.Value(Rotation)
	assert.InDelta(t, 180, v[0], 1e-3)
	assert.InDelta(t, 180, v[1], 1e-3)

	e.SetUniform(2.5)
	require.NoError(t, e.ApplyUniform())
	assert.Equal(t, linear.V3{2.5, 2.5, 2.5}, tf.Scale())

	require.NoError(t, e.ResetTransform())
	assert.Equal(t, linear.V3{}, tf.Position())
	assert.Equal(t, linear.V3{}, tf.Rotation())
	assert.Equal(t, linear.V3{1, 1, 1}, tf.Scale())
	assert.Contains(t, e.Status(), "reset")

	require.NoError(t, e.ToggleShadow())
	assert.True(t, x.CastShadow())
}

func TestCallbacks(t *testing.T) {
	s, ids := newScene(t, "a", "b")
	e := New(s)
	assert.ErrorIs(t, e.Import("m.obj", ""), ErrNoHandler)
	assert.ErrorIs(t, e.Remove(), ErrNoHandler)
	assert.ErrorIs(t, e.Save(), ErrNoHandler)

	var model, tex string
	e.OnImportModel = func(m, tx string) (engine.ActorID, error) {
		model, tex = m, tx
		return ids[1], nil
	}
	require.NoError(t, e.Import("m.obj", "t.png"))
	assert.Equal(t, "m.obj", model)
	assert.Equal(t, "t.png", tex)
	id, _, _ := e.Selected()
	assert.Equal(t, ids[1], id)

	errImport := errors.New("bad model")
	e.OnImportModel = func(string, string) (engine.ActorID, error) { return engine.ActorID{}, errImport }
	assert.ErrorIs(t, e.Import("m.obj", ""), errImport)
	assert.Contains(t, e.Status(), "bad model")

	e.OnRemove = s.Destroy
	require.NoError(t, e.Remove())
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, "removed b", e.Status())

	saved := 0
	e.OnSave = func() error { saved++; return nil }
	require.NoError(t, e.Save())
	assert.Equal(t, 1, saved)
}

func TestExit(t *testing.T) {
	s, _ := newScene(t)
	e := New(s)
	exited := 0
	e.OnExit = func() { exited++ }

	e.Confirm(true)
	assert.False(t, e.Done())
	e.RequestExit()
	assert.True(t, e.Exiting())
	e.Confirm(false)
	assert.False(t, e.Exiting())
	assert.False(t, e.Done())
	e.RequestExit()
	e.Confirm(true)
	assert.True(t, e.Done())
	assert.Equal(t, 1, exited)
}

func newTUI(t *testing.T, e *Editor) (*TUI, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	tui, err := NewTUI(screen, e)
	require.NoError(t, err)
	screen.SetSize(100, 20)
	t.Cleanup(tui.Close)
	return tui, screen
}

func press(tui *TUI, keys ...any) {
	for _, k := range keys {
		switch k := k.(type) {
		case tcell.Key:
			tui.handle(tcell.NewEventKey(k, 0, tcell.ModNone))
		case string:
			for _, r := range k {
				tui.handle(tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
			}
		}
	}
}

func row(screen tcell.SimulationScreen, y int) string {
	w, _ := screen.Size()
	var b strings.Builder
	for x := range w {
		r, _, _, _ := screen.GetContent(x, y)
		b.WriteRune(r)
	}
	return strings.TrimRight(b.String(), " \x00")
}

func TestTUIKeys(t *testing.T) {
	s, ids := newScene(t, "a", "b")
	e := New(s)
	tui, _ := newTUI(t, e)
	_, b, _ := s.Find("b")

	press(tui, "j")
	id, _, _ := e.Selected()
	assert.Equal(t, ids[1], id)

	press(tui, "y+++")
	f, axis := tui.Cursor()
	assert.Equal(t, Position, f)
	assert.Equal(t, 1, axis)
	assert.InDelta(t, 0.3, b.Transform().Position()[1], 1e-5)
	press(tui, "r")
	assert.Equal(t, float32(0), b.Transform().Position()[1])

	press(tui, tcell.KeyTab, "z-")
	assert.InDelta(t, -5, linear.Deg(b.Transform().Rotation())[2], 1e-3)
	press(tui, "Y")
	assert.InDelta(t, 90, linear.Deg(b.Transform().Rotation())[1], 1e-3)

	press(tui, "e", "12.5", tcell.KeyEnter)
	assert.InDelta(t, 12.5, linear.Deg(b.Transform().Rotation())[2], 1e-3)
	press(tui, "e", "abc", tcell.KeyEnter)
	assert.Contains(t, e.Status(), "not a number")
	press(tui, "e", "9", tcell.KeyEscape)
	assert.InDelta(t, 12.5, linear.Deg(b.Transform().Rotation())[2], 1e-3)

	press(tui, "u", "3", tcell.KeyEnter)
	assert.Equal(t, linear.V3{3, 3, 3}, b.Transform().Scale())
	press(tui, "R")
	assert.Equal(t, linear.V3{1, 1, 1}, b.Transform().Scale())
	press(tui, "s")
	assert.True(t, b.CastShadow())

	press(tui, tcell.KeyUp)
	id, _, _ = e.Selected()
	assert.Equal(t, ids[0], id)
}

func TestTUIImport(t *testing.T) {
	s, ids := newScene(t, "a", "b")
	e := New(s)
	tui, _ := newTUI(t, e)
	var got []string
	e.OnImportModel = func(m, tex string) (engine.ActorID, error) {
		got = append(got, m, tex)
		return ids[1], nil
	}
	press(tui, "i", "cube.objx", tcell.KeyBackspace2, tcell.KeyEnter, "cube.png", tcell.KeyEnter)
	assert.Equal(t, []string{"cube.obj", "cube.png"}, got)
	id, _, _ := e.Selected()
	assert.Equal(t, ids[1], id)

	press(tui, "i", "m.obj", tcell.KeyEnter, tcell.KeyEnter)
	assert.Equal(t, []string{"cube.obj", "cube.png", "m.obj", ""}, got)

	// An empty model path cancels the import.
	press(tui, "i", tcell.KeyEnter)
	assert.Len(t, got, 4)
	assert.Nil(t, tui.prompt)
}

func TestTUIExit(t *testing.T) {
	s, _ := newScene(t, "a")
	e := New(s)
	tui, _ := newTUI(t, e)
	press(tui, "q", "n")
	assert.False(t, tui.Done())
	press(tui, tcell.KeyEscape)
	assert.True(t, e.Exiting())
	press(tui, "y")
	assert.True(t, tui.Done())
}

func TestTUIDraw(t *testing.T) {
	s, _ := newScene(t, "ground", "teapot")
	_, teapot, _ := s.Find("teapot")
	teapot.SetCastShadow(true)
	teapot.Transform().SetPosition(linear.V3{1.5, 0, 0})
	e := New(s)
	tui, screen := newTUI(t, e)

	press(tui, "j")
	tui.Update(&engine.Frame{Index: 7}, s)
	assert.Contains(t, row(screen, 0), "frame 7")
	assert.Equal(t, " ground", row(screen, 3)[:7])
	assert.Contains(t, row(screen, 4), "teapot *")
	assert.Contains(t, row(screen, 3), "Name: teapot")
	assert.Contains(t, row(screen, 6), "X     1.50")
	_, h := screen.Size()
	assert.True(t, strings.HasPrefix(row(screen, h-1), "j/k select"))

	press(tui, "q")
	tui.Update(nil, s)
	assert.Contains(t, row(screen, h-1), "Exit the editor?")
}

func TestTUIPoll(t *testing.T) {
	s, ids := newScene(t, "a", "b")
	e := New(s)
	tui, screen := newTUI(t, e)
	screen.InjectKey(tcell.KeyRune, 'j', tcell.ModNone)
	require.Eventually(t, func() bool {
		tui.Update(nil, s)
		id, _, _ := e.Selected()
		return id == ids[1]
	}, 5*time.Second, 5*time.Millisecond)

	tui.Close()
	tui.Close()
}
