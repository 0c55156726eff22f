// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package importer loads model and texture files.
// Model formats are selected by file extension; OBJ and
// glTF (.gltf/.glb) are registered by default.
package importer

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gviegas/hybrid/internal/log"
	"github.com/gviegas/hybrid/mesh"
)

// ErrUnsupported means that a file format is not
// supported.
var ErrUnsupported = errors.New("importer: unsupported file format")

// Model is the result of decoding a model file.
type Model struct {
	// Meshes are the sub-meshes found in the file, in
	// file order.
	Meshes []mesh.Data

	// Texture is the first base color texture embedded
	// in or referenced by the file, if any.
	Texture image.Image
}

// Decoder is the interface that model formats implement.
type Decoder interface {
	// Decode decodes a model from r.
	// dir is the directory of the file, used to resolve
	// external references.
	Decode(r io.Reader, dir string) (*Model, error)
}

var (
	mu       sync.RWMutex
	decoders = make(map[string]Decoder)
)

// Register registers a Decoder for the given file
// extension (e.g. ".obj").
// It replaces any previous registration.
func Register(ext string, dec Decoder) {
	mu.Lock()
	defer mu.Unlock()
	decoders[strings.ToLower(ext)] = dec
}

// Supported returns whether path has a registered
// extension.
func Supported(path string) bool { return decoderFor(path) != nil }

func decoderFor(path string) Decoder {
	mu.RLock()
	defer mu.RUnlock()
	return decoders[strings.ToLower(filepath.Ext(path))]
}

// Decode decodes data as the format registered for
// path's extension.
// Meshes are returned as decoded, not merged.
func Decode(path string, data []byte) (*Model, error) {
	dec := decoderFor(path)
	if dec == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, filepath.Ext(path))
	}
	m, err := dec.Decode(bytes.NewReader(data), filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("importer: %s: %w", filepath.Base(path), err)
	}
	return m, nil
}

// LoadModel reads and decodes the model file at path.
// Every sub-mesh is merged into a single mesh, which is
// then centered on the origin.
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := Decode(path, data)
	if err != nil {
		return nil, err
	}
	merge(m, path)
	if err := m.Meshes[0].Validate(); err != nil {
		return nil, fmt.Errorf("importer: %s: %w", filepath.Base(path), err)
	}
	log.L().Debug("model loaded",
		log.String("path", path),
		log.Int("vertices", len(m.Meshes[0].Vertices)),
		log.Int("indices", len(m.Meshes[0].Indices)))
	return m, nil
}

func merge(m *Model, path string) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	m.Meshes = []mesh.Data{mesh.Merge(name, m.Meshes)}
	mesh.Center(m.Meshes)
}

// Load is like LoadModel but only returns the geometry.
// On failure the result is empty.
func Load(path string) ([]mesh.Data, error) {
	m, err := LoadModel(path)
	if err != nil {
		return nil, err
	}
	return m.Meshes, nil
}

func init() {
	Register(".obj", OBJ{})
	Register(".gltf", GLTF{})
	Register(".glb", GLTF{})
}
