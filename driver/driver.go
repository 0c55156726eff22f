// Copyright 2022 Gustavo C. Viegas. All rights reserved.

// Package driver defines a set of interfaces encompassing
// the GPU functionality that the engine relies on.
// It models an immediate-mode API: resources and state
// objects are created through a Device and bound/drawn
// through the Device's Context.
package driver

import (
	"errors"
	"strings"
	"sync"

	"github.com/gviegas/hybrid/internal/log"
)

// Driver is the interface that provides methods for
// loading and unloading an underlying implementation.
type Driver interface {
	// Open initializes the driver.
	// If it succeeds, further calls with the same receiver
	// have no effect and must return the same Device.
	// Callers should assume that Open is not safe for
	// parallel execution.
	Open() (Device, error)

	// Name returns the name of the driver.
	// It must not cause the driver to be opened.
	Name() string

	// Close deinitializes the driver.
	// Every object created from the Device must have been
	// destroyed before Close is called.
	// Closing a driver that is not open has no effect.
	Close()
}

// ErrNoDriver means that no registered driver could be
// opened.
var ErrNoDriver = errors.New("driver: driver not found")

// ErrInvalidDesc means that a resource description is
// not valid for creation.
var ErrInvalidDesc = errors.New("driver: invalid description")

// ErrUnknownShader means that a shader entry point could
// not be found.
var ErrUnknownShader = errors.New("driver: unknown shader entry point")

// ErrNoDeviceMemory means that device memory could not
// be allocated.
var ErrNoDeviceMemory = errors.New("driver: out of device memory")

// ErrClosed means that the Device was used after its
// driver was closed.
var ErrClosed = errors.New("driver: device closed")

// Drivers returns the registered Drivers.
// Client code imports specific driver packages, and then
// call this function. Drivers that do not register
// themselves on init will not be considered for selection.
func Drivers() []Driver {
	mu.Lock()
	defer mu.Unlock()
	drv := make([]Driver, len(drivers))
	copy(drv, drivers)
	return drv
}

// Register registers a Driver.
// Driver implementations are expected to call Register
// exactly once, from an init function.
// If a driver with the same name has already been
// registered, it will be replaced by drv.
func Register(drv Driver) {
	mu.Lock()
	defer mu.Unlock()
	for i := range drivers {
		if drivers[i].Name() == drv.Name() {
			drivers[i] = drv
			log.L().Warn("driver replaced", log.String("driver", drv.Name()))
			return
		}
	}
	drivers = append(drivers, drv)
}

// Open opens the first registered driver whose name
// contains name (case insensitive).
// If name is the empty string, all drivers are
// considered.
func Open(name string) (Driver, Device, error) {
	name = strings.ToLower(name)
	err := ErrNoDriver
	for _, drv := range Drivers() {
		if !strings.Contains(strings.ToLower(drv.Name()), name) {
			continue
		}
		var dev Device
		if dev, err = drv.Open(); err != nil {
			log.L().Warn("driver failed to open",
				log.String("driver", drv.Name()), log.Err(err))
			continue
		}
		return drv, dev, nil
	}
	return nil, nil, err
}

// Invalid logs a call that was ignored because of an
// invalid argument or state.
// Context implementations use it so that a bad call
// degrades the frame rather than aborting it.
func Invalid(component, method, reason string) {
	log.L().Error("invalid argument",
		log.String("component", component),
		log.String("method", method),
		log.String("reason", reason))
}

var (
	mu      sync.Mutex
	drivers = make([]Driver, 0, 2)
)
