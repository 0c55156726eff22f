// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package config describes an application session: the
// window, the renderer, the camera and light, and the
// actors that make up the scene.
// Configurations are stored as YAML or TOML files; the
// format is chosen by the file extension.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/gviegas/hybrid/internal/log"
)

// ErrFormat means that a file extension names no
// supported format.
var ErrFormat = errors.New("config: unsupported file format")

// ErrInvalid means that a configuration failed
// validation.
var ErrInvalid = errors.New("config: invalid configuration")

// Vec3 is a 3-component vector.
type Vec3 [3]float32

// Config is the root of a configuration.
type Config struct {
	Window Window     `yaml:"window" toml:"window"`
	Render Render     `yaml:"render" toml:"render"`
	Camera Camera     `yaml:"camera" toml:"camera"`
	Light  Light      `yaml:"light" toml:"light"`
	Import Import     `yaml:"import" toml:"import"`
	Log    log.Config `yaml:"log" toml:"log"`

	// Actors listed in a file replace the default ones.
	Actors []Actor `yaml:"actors" toml:"actors"`

	// Dir is the directory relative paths are resolved
	// against. Load sets it to the directory of the file.
	Dir string `yaml:"-" toml:"-"`

	sum uint64
}

// Sum returns the digest of the data that c was last
// decoded from or saved as, or 0 if there is none.
func (c *Config) Sum() uint64 { return c.sum }

// Window describes the back buffer.
type Window struct {
	Width  int `yaml:"width" toml:"width"`
	Height int `yaml:"height" toml:"height"`
}

// Render configures the renderer.
type Render struct {
	// Name of the driver to open.
	//
	// Default is "soft".
	Driver string `yaml:"driver" toml:"driver"`

	ClearColor [4]float32 `yaml:"clear_color" toml:"clear_color"`

	// Number of frames to render when not interactive.
	//
	// Default is 1.
	Frames int `yaml:"frames" toml:"frames"`

	// Path of the PNG file written with the last frame.
	Output string `yaml:"output,omitempty" toml:"output,omitempty"`
}

// Camera describes the camera.
// Fov is the vertical field of view in degrees.
type Camera struct {
	Eye  Vec3    `yaml:"eye" toml:"eye"`
	At   Vec3    `yaml:"at" toml:"at"`
	Up   Vec3    `yaml:"up" toml:"up"`
	Fov  float32 `yaml:"fov" toml:"fov"`
	Near float32 `yaml:"near" toml:"near"`
	Far  float32 `yaml:"far" toml:"far"`
}

// Light describes the light that casts shadows.
type Light struct {
	Position Vec3 `yaml:"position" toml:"position"`
}

// Import configures model import.
type Import struct {
	// Imported geometry is scaled so that its largest
	// extent is TargetSize.
	//
	// Default is 2.
	TargetSize float32 `yaml:"target_size" toml:"target_size"`
}

// Shapes that an Actor can be made of instead of a
// model file.
const (
	ShapePlane = "plane"
	ShapeCube  = "cube"
	ShapeQuad  = "quad"
)

// Actor describes an actor of the scene.
// Exactly one of Model and Shape must be set.
// Rotation is given in degrees.
type Actor struct {
	Name  string `yaml:"name" toml:"name"`
	GUID  string `yaml:"guid,omitempty" toml:"guid,omitempty"`
	Model string `yaml:"model,omitempty" toml:"model,omitempty"`
	Shape string `yaml:"shape,omitempty" toml:"shape,omitempty"`

	// Size of the shape.
	// Tile is the number of texture repeats of a plane.
	Size float32 `yaml:"size,omitempty" toml:"size,omitempty"`
	Tile float32 `yaml:"tile,omitempty" toml:"tile,omitempty"`

	// Texture overrides the model's own texture.
	Texture string `yaml:"texture,omitempty" toml:"texture,omitempty"`

	Position   Vec3 `yaml:"position" toml:"position"`
	Rotation   Vec3 `yaml:"rotation" toml:"rotation"`
	Scale      Vec3 `yaml:"scale" toml:"scale"`
	CastShadow bool `yaml:"cast_shadow" toml:"cast_shadow"`

	// Normalize centers the model and scales it to the
	// import target size.
	Normalize bool `yaml:"normalize" toml:"normalize"`
}

// Default returns the default configuration.
// The scene is made of a textureless ground plane.
func Default() *Config {
	return &Config{
		Window: Window{Width: 1280, Height: 720},
		Render: Render{
			Driver:     "soft",
			ClearColor: [4]float32{0, 0.125, 0.3, 1},
			Frames:     1,
		},
		Camera: Camera{
			Eye:  Vec3{0, 3, -6},
			Up:   Vec3{0, 1, 0},
			Fov:  45,
			Near: 0.01,
			Far:  100,
		},
		Light:  Light{Position: Vec3{2, 4, -2}},
		Import: Import{TargetSize: 2},
		Log:    log.Config{Level: "info", Encoding: "console"},
		Actors: []Actor{{
			Name:     "Ground",
			Shape:    ShapePlane,
			Size:     10,
			Tile:     4,
			Position: Vec3{0, -0.01, 0},
			Scale:    Vec3{1, 1, 1},
		}},
	}
}

// Resolve returns path relative to c.Dir, unless path is
// absolute or empty.
func (c *Config) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || c.Dir == "" {
		return path
	}
	return filepath.Join(c.Dir, path)
}

// actorKeys holds the keys that each actor of a file
// sets.
type actorKeys struct {
	Actors []map[string]any `yaml:"actors" toml:"actors"`
}

func (k *actorKeys) has(i int, key string) bool {
	if i >= len(k.Actors) {
		return false
	}
	_, ok := k.Actors[i][key]
	return ok
}

// setDefaults fills the fields that a file may omit.
func (c *Config) setDefaults(keys *actorKeys) {
	for i := range c.Actors {
		a := &c.Actors[i]
		if !keys.has(i, "scale") && a.Scale == (Vec3{}) {
			a.Scale = Vec3{1, 1, 1}
		}
		if a.Shape != "" && a.Size == 0 {
			a.Size = 1
		}
		if a.Shape == ShapePlane && a.Tile == 0 {
			a.Tile = 1
		}
	}
}

// Validate checks c.
// Every problem found is reported in the returned error,
// which wraps ErrInvalid.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		bad("window size %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Render.Frames < 0 {
		bad("render.frames %d", c.Render.Frames)
	}
	cam := &c.Camera
	switch {
	case cam.Fov <= 0 || cam.Fov >= 180:
		bad("camera.fov %v", cam.Fov)
	case cam.Near <= 0 || cam.Far <= cam.Near:
		bad("camera near/far %v/%v", cam.Near, cam.Far)
	case cam.Eye == cam.At:
		bad("camera eye equals at")
	}
	if c.Import.TargetSize <= 0 {
		bad("import.target_size %v", c.Import.TargetSize)
	}
	if c.Log.Level != "" {
		if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
			bad("log.level: %v", err)
		}
	}
	switch c.Log.Encoding {
	case "", "json", "console":
	default:
		bad("log.encoding %q", c.Log.Encoding)
	}
	guids := make(map[uuid.UUID]bool)
	for i := range c.Actors {
		a := &c.Actors[i]
		switch {
		case a.Name == "":
			bad("actors[%d]: no name", i)
		case (a.Model == "") == (a.Shape == ""):
			bad("actor %q: exactly one of model and shape must be set", a.Name)
		}
		switch a.Shape {
		case "", ShapePlane, ShapeCube, ShapeQuad:
		default:
			bad("actor %q: unknown shape %q", a.Name, a.Shape)
		}
		if a.GUID != "" {
			id, err := uuid.Parse(a.GUID)
			switch {
			case err != nil:
				bad("actor %q: guid: %v", a.Name, err)
			case guids[id]:
				bad("actor %q: duplicate guid %s", a.Name, id)
			default:
				guids[id] = true
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

type format int

const (
	formatYAML format = iota
	formatTOML
)

func formatOf(path string) (format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML, nil
	case ".toml":
		return formatTOML, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrFormat, filepath.Ext(path))
}

// Decode decodes data, in the format named by path's
// extension, over the defaults.
// Actors are only replaced if data lists them.
// The result is not validated.
func Decode(path string, data []byte) (*Config, error) {
	f, err := formatOf(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	dfl := c.Actors
	c.Actors = nil
	var keys actorKeys
	switch f {
	case formatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err = dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("config: parsing %s: %w", path, err)
		}
		err = yaml.Unmarshal(data, &keys)
	case formatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err = dec.Decode(c); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", path, err)
		}
		err = toml.Unmarshal(data, &keys)
	}
	if err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if c.Actors == nil {
		c.Actors = dfl
	}
	c.setDefaults(&keys)
	c.sum = xxhash.Sum64(data)
	return c, nil
}

// Load reads and validates the configuration file at
// path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	c, err := Decode(path, data)
	if err != nil {
		return nil, err
	}
	c.Dir = filepath.Dir(path)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	log.L().Debug("config loaded",
		log.String("path", path),
		log.Int("actors", len(c.Actors)))
	return c, nil
}

// Encode encodes c in the format named by path's
// extension.
func (c *Config) Encode(path string) ([]byte, error) {
	f, err := formatOf(path)
	if err != nil {
		return nil, err
	}
	var b bytes.Buffer
	switch f {
	case formatYAML:
		enc := yaml.NewEncoder(&b)
		enc.SetIndent(2)
		if err = enc.Encode(c); err == nil {
			err = enc.Close()
		}
	case formatTOML:
		err = toml.NewEncoder(&b).Encode(c)
	}
	if err != nil {
		return nil, fmt.Errorf("config: encoding %s: %w", path, err)
	}
	return b.Bytes(), nil
}

// Save writes c to path.
func (c *Config) Save(path string) error {
	data, err := c.Encode(path)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	c.sum = xxhash.Sum64(data)
	return nil
}
