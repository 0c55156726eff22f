// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package importer

import (
	"context"
	"os"
	"slices"
	"sync"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	"github.com/gviegas/hybrid/internal/log"
	"github.com/gviegas/hybrid/mesh"
)

// Cache memoizes decoded models by file content, so that
// loading the same model twice (or two copies of it)
// decodes it once.
// It is safe for concurrent use.
type Cache struct {
	mu     sync.Mutex
	models map[uint64]*Model
	hits   int
}

// NewCache creates an empty Cache.
func NewCache() *Cache { return &Cache{models: make(map[uint64]*Model)} }

// Load is like LoadModel but consults c first.
// The returned Model is a copy that the caller may
// modify.
func (c *Cache) Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	key := xxhash.Sum64(data)
	c.mu.Lock()
	m, ok := c.models[key]
	if ok {
		c.hits++
	}
	c.mu.Unlock()
	if ok {
		log.L().Debug("model cache hit", log.String("path", path))
		return m.clone(), nil
	}
	if m, err = Decode(path, data); err != nil {
		return nil, err
	}
	merge(m, path)
	if err := m.Meshes[0].Validate(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.models[key] = m
	c.mu.Unlock()
	return m.clone(), nil
}

// Hits returns the number of loads served from c.
func (c *Cache) Hits() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits
}

// Len returns the number of cached models.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.models)
}

func (m *Model) clone() *Model {
	n := &Model{Meshes: make([]mesh.Data, len(m.Meshes)), Texture: m.Texture}
	for i, d := range m.Meshes {
		n.Meshes[i] = mesh.Data{
			Name:     d.Name,
			Vertices: slices.Clone(d.Vertices),
			Indices:  slices.Clone(d.Indices),
		}
	}
	return n
}

// LoadAll loads every path concurrently, using c if it
// is not nil.
// Results are in the order of paths. The first error
// cancels the remaining loads.
func LoadAll(ctx context.Context, c *Cache, paths []string) ([]*Model, error) {
	models := make([]*Model, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var err error
			if c != nil {
				models[i], err = c.Load(p)
			} else {
				models[i], err = LoadModel(p)
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return models, nil
}
