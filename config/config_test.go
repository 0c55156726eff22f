// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sceneYAML = `
window:
  width: 320
  height: 240
light:
  position: [1, 8, 1]
actors:
  - name: Ground
    shape: plane
    size: 10
    position: [0, -0.01, 0]
  - name: Box
    shape: cube
    position: [0, 1, 0]
    rotation: [0, 45, 0]
    cast_shadow: true
  - name: Teapot
    model: models/teapot.obj
    normalize: true
`

const sceneTOML = `
[window]
width = 320
height = 240

[[actors]]
name = "Box"
shape = "cube"
scale = [2, 2, 2]
cast_shadow = true
`

func TestDefault(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, Vec3{2, 4, -2}, c.Light.Position)
	assert.Equal(t, Vec3{0, 3, -6}, c.Camera.Eye)
	assert.Equal(t, float32(2), c.Import.TargetSize)
	require.Len(t, c.Actors, 1)
	assert.Equal(t, ShapePlane, c.Actors[0].Shape)
	assert.False(t, c.Actors[0].CastShadow)
}

func TestDecodeYAML(t *testing.T) {
	c, err := Decode("scene.yaml", []byte(sceneYAML))
	require.NoError(t, err)
	require.NoError(t, c.Validate())
	assert.Equal(t, Window{320, 240}, c.Window)
	assert.Equal(t, Vec3{1, 8, 1}, c.Light.Position)
	// Omitted sections keep their defaults.
	assert.Equal(t, Default().Camera, c.Camera)
	require.Len(t, c.Actors, 3)

	box := c.Actors[1]
	assert.Equal(t, Vec3{0, 45, 0}, box.Rotation)
	assert.Equal(t, Vec3{1, 1, 1}, box.Scale)
	assert.Equal(t, float32(1), box.Size)
	assert.True(t, box.CastShadow)
	assert.Equal(t, float32(1), c.Actors[0].Tile)
	assert.True(t, c.Actors[2].Normalize)
}

func TestDecodeTOML(t *testing.T) {
	c, err := Decode("scene.toml", []byte(sceneTOML))
	require.NoError(t, err)
	require.NoError(t, c.Validate())
	assert.Equal(t, 320, c.Window.Width)
	require.Len(t, c.Actors, 1)
	assert.Equal(t, Vec3{2, 2, 2}, c.Actors[0].Scale)

	c, err = Decode("scene.toml", []byte("[window]\nwidth = 64\n"))
	require.NoError(t, err)
	assert.Equal(t, Default().Actors, c.Actors)
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode("scene.json", []byte("{}"))
	assert.ErrorIs(t, err, ErrFormat)
	_, err = Decode("scene.yaml", []byte("window:\n  depth: 3\n"))
	assert.Error(t, err)
	_, err = Decode("scene.toml", []byte("[window]\ndepth = 3\n"))
	assert.Error(t, err)
	_, err = Decode("scene.yml", []byte("window: [\n"))
	assert.Error(t, err)

	c, err := Decode("scene.yaml", nil)
	require.NoError(t, err)
	assert.NotZero(t, c.Sum())
	c.sum = 0
	assert.Equal(t, Default(), c)
}

func TestValidate(t *testing.T) {
	c := Default()
	c.Window.Width = 0
	c.Camera.Near = 0
	c.Log.Level = "loud"
	c.Actors = append(c.Actors,
		Actor{Name: "a"},
		Actor{Name: "b", Shape: "sphere"},
		Actor{Shape: ShapeCube},
		Actor{Name: "c", Model: "c.obj", Shape: ShapeCube},
		Actor{Name: "d", Model: "d.obj", GUID: "nope"},
	)
	err := c.Validate()
	require.ErrorIs(t, err, ErrInvalid)
	for _, s := range []string{"window size", "near/far", "log.level", `"a"`, "sphere", "actors[3]", `"c"`, `"d": guid`} {
		assert.Contains(t, err.Error(), s)
	}

	id := uuid.NewString()
	c = Default()
	c.Actors = append(c.Actors,
		Actor{Name: "a", Model: "a.obj", GUID: id},
		Actor{Name: "b", Model: "b.obj", GUID: id},
	)
	assert.ErrorContains(t, c.Validate(), "duplicate guid")
}

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"scene.yaml", "scene.toml"} {
		c, err := Decode("scene.yaml", []byte(sceneYAML))
		require.NoError(t, err)
		c.Actors[1].GUID = uuid.NewString()
		c.Actors[1].Scale = Vec3{}
		c.Render.Output = "out.png"

		path := filepath.Join(dir, name)
		require.NoError(t, c.Save(path))
		have, err := Load(path)
		require.NoError(t, err, name)
		assert.Equal(t, dir, have.Dir)
		have.Dir = ""
		assert.Equal(t, c, have, name)
		assert.Equal(t, Vec3{}, have.Actors[1].Scale, name)
		assert.Equal(t, Vec3{1, 1, 1}, have.Actors[2].Scale, name)
	}
	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.ErrorIs(t, Default().Save(filepath.Join(dir, "scene.ini")), ErrFormat)
}

func TestResolve(t *testing.T) {
	c := Default()
	assert.Equal(t, "a.obj", c.Resolve("a.obj"))
	c.Dir = filepath.Join("scenes", "demo")
	assert.Equal(t, filepath.Join("scenes", "demo", "a.obj"), c.Resolve("a.obj"))
	abs, err := filepath.Abs("a.obj")
	require.NoError(t, err)
	assert.Equal(t, abs, c.Resolve(abs))
	assert.Empty(t, c.Resolve(""))
}

func TestWatch(t *testing.T) {
	prev := Debounce
	Debounce = 50 * time.Millisecond
	t.Cleanup(func() { Debounce = prev })

	path := filepath.Join(t.TempDir(), "scene.yaml")
	require.NoError(t, Default().Save(path))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := Watch(ctx, path)
	require.NoError(t, err)

	c := Default()
	c.Light.Position = Vec3{0, 9, 0}
	require.NoError(t, c.Save(path))
	select {
	case r := <-ch:
		require.NoError(t, r.Err)
		assert.Equal(t, Vec3{0, 9, 0}, r.Config.Light.Position)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch: no reload")
	}

	require.NoError(t, os.WriteFile(path, []byte("window: {width: -1}\n"), 0o644))
	timeout := time.After(5 * time.Second)
wait:
	for {
		select {
		case r := <-ch:
			if r.Err == nil {
				// Late event from the previous save.
				continue
			}
			assert.ErrorIs(t, r.Err, ErrInvalid)
			assert.Nil(t, r.Config)
			break wait
		case <-timeout:
			t.Fatal("Watch: no reload")
		}
	}

	cancel()
	for range ch {
	}
}
