// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package main

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/gviegas/hybrid/internal/log"
)

const sceneYAML = `
window: {width: 16, height: 16}
render: {frames: 2}
actors:
  - name: Ground
    shape: plane
    size: 10
    position: [0, -0.01, 0]
  - name: Box
    shape: cube
    cast_shadow: true
  - name: Tri
    model: tri.obj
`

const triOBJ = `v 0 0 0
v 1 0 0
v 0 1 0
f 1 2 3
`

func scene(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tri.obj"), []byte(triOBJ), 0o644))
	path := filepath.Join(dir, "scene.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sceneYAML), 0o644))
	t.Cleanup(func() { log.Set(nil) })
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(append(args, "--log-level", "error"))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.Execute()
	return out.String(), err
}

func TestRender(t *testing.T) {
	path := scene(t)
	output := filepath.Join(filepath.Dir(path), "out.png")
	_, err := execute(t, "render", "-c", path, "-o", output)
	require.NoError(t, err)
	f, err := os.Open(output)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 16, img.Bounds().Dx())

	_, err = execute(t, "render", "-c", filepath.Join(filepath.Dir(path), "missing.yaml"))
	assert.Error(t, err)
}

func TestTrace(t *testing.T) {
	path := scene(t)
	out, err := execute(t, "trace", "-c", path)
	require.NoError(t, err)
	var entries []struct {
		Op    string `yaml:"op"`
		Event string `yaml:"event"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &entries))
	draws := map[string]int{}
	for _, e := range entries {
		if e.Op == "DrawIndexed" {
			draws[e.Event]++
		}
	}
	// The box draws its shadow and itself.
	assert.Equal(t, map[string]int{"frame/Ground": 1, "frame/Box": 2, "frame/Tri": 1}, draws)
}

func TestInspect(t *testing.T) {
	path := scene(t)
	out, err := execute(t, "inspect", "-c", path)
	require.NoError(t, err)
	assert.Contains(t, out, "WINDOW: 16x16")
	assert.Contains(t, out, "ACTORS (3):")
	assert.Contains(t, out, "Box: cube(1)")
	assert.Contains(t, out, "1 sub-meshes, 3 vertices, 1 triangles")

	out, err = execute(t, "inspect", filepath.Join(filepath.Dir(path), "tri.obj"))
	require.NoError(t, err)
	assert.NotContains(t, out, "WINDOW")
	assert.Contains(t, out, "tri.obj")

	_, err = execute(t, "inspect", filepath.Join(filepath.Dir(path), "tri.fbx"))
	assert.Error(t, err)
}
