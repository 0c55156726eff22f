// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package drivertest provides driver.Device wrappers for
// exercising failure paths.
package drivertest

import (
	"github.com/gviegas/hybrid/driver"
)

// Failing wraps a driver.Device so that object creation
// fails once a budget is exhausted.
type Failing struct {
	driver.Device
	left int
}

// FailAfter returns a Device that creates n objects
// successfully and then fails every creation with
// driver.ErrNoDeviceMemory.
func FailAfter(dev driver.Device, n int) *Failing { return &Failing{Device: dev, left: n} }

func (d *Failing) take() bool {
	if d.left <= 0 {
		return false
	}
	d.left--
	return true
}

// NewBuffer implements driver.Device.
func (d *Failing) NewBuffer(desc *driver.BufferDesc) (driver.Buffer, error) {
	if !d.take() {
		return nil, driver.ErrNoDeviceMemory
	}
	return d.Device.NewBuffer(desc)
}

// NewTexture implements driver.Device.
func (d *Failing) NewTexture(desc *driver.TextureDesc) (driver.Texture, error) {
	if !d.take() {
		return nil, driver.ErrNoDeviceMemory
	}
	return d.Device.NewTexture(desc)
}

// NewShader implements driver.Device.
func (d *Failing) NewShader(desc *driver.ShaderDesc) (driver.Shader, error) {
	if !d.take() {
		return nil, driver.ErrNoDeviceMemory
	}
	return d.Device.NewShader(desc)
}

// NewBlendState implements driver.Device.
func (d *Failing) NewBlendState(desc *driver.BlendDesc) (driver.BlendState, error) {
	if !d.take() {
		return nil, driver.ErrNoDeviceMemory
	}
	return d.Device.NewBlendState(desc)
}

// NewDepthStencilState implements driver.Device.
func (d *Failing) NewDepthStencilState(desc *driver.DepthStencilDesc) (driver.DepthStencilState, error) {
	if !d.take() {
		return nil, driver.ErrNoDeviceMemory
	}
	return d.Device.NewDepthStencilState(desc)
}

// NewRasterizerState implements driver.Device.
func (d *Failing) NewRasterizerState(desc *driver.RasterizerDesc) (driver.RasterizerState, error) {
	if !d.take() {
		return nil, driver.ErrNoDeviceMemory
	}
	return d.Device.NewRasterizerState(desc)
}

// NewSamplerState implements driver.Device.
func (d *Failing) NewSamplerState(desc *driver.SamplerDesc) (driver.SamplerState, error) {
	if !d.take() {
		return nil, driver.ErrNoDeviceMemory
	}
	return d.Device.NewSamplerState(desc)
}

// NewSwapchain implements driver.Device.
func (d *Failing) NewSwapchain(width, height int) (driver.Swapchain, error) {
	if !d.take() {
		return nil, driver.ErrNoDeviceMemory
	}
	return d.Device.NewSwapchain(width, height)
}
