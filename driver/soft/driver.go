// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package soft implements the driver interfaces on the CPU.
// It rasterizes triangles into an in-memory back buffer,
// honoring depth, blend, rasterizer and sampler state, and
// executes the entry points of the default effect as Go
// functions. Importing the package registers the driver
// under the name "soft".
package soft

import (
	"sync"

	"github.com/gviegas/hybrid/driver"
)

const driverName = "soft"

// Driver implements driver.Driver.
type Driver struct {
	mu  sync.Mutex
	dev *Device
}

func init() { driver.Register(new(Driver)) }

// Open implements driver.Driver.
func (d *Driver) Open() (driver.Device, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dev == nil {
		d.dev = newDevice(d)
	}
	return d.dev, nil
}

// Name implements driver.Driver.
func (d *Driver) Name() string { return driverName }

// Close implements driver.Driver.
func (d *Driver) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dev != nil {
		d.dev.closed = true
		d.dev = nil
	}
}

// Device implements driver.Device.
type Device struct {
	drv    *Driver
	ctx    *Context
	live   int
	closed bool
}

// New creates a Device that is not owned by the
// registered driver.
func New() *Device { return newDevice(nil) }

func newDevice(drv *Driver) *Device {
	d := &Device{drv: drv}
	d.ctx = newContext(d)
	return d
}

// Driver implements driver.Device.
func (d *Device) Driver() driver.Driver {
	if d.drv == nil {
		return nil
	}
	return d.drv
}

// Context implements driver.Device.
func (d *Device) Context() driver.Context { return d.ctx }

// Immediate returns the immediate context as a *Context.
func (d *Device) Immediate() *Context { return d.ctx }

// Live returns the number of objects created from d that
// have not been destroyed yet.
func (d *Device) Live() int { return d.live }

func check[T any](d *Device, desc *T) error {
	switch {
	case d.closed:
		return driver.ErrClosed
	case desc == nil:
		return driver.ErrInvalidDesc
	}
	return nil
}
