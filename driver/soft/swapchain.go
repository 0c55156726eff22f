// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package soft

import (
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/gviegas/hybrid/driver"
)

// Swapchain implements driver.Swapchain.
// It holds a single back buffer and a depth buffer.
// Presenting hands the back buffer to the function set
// through OnPresent, if any.
type Swapchain struct {
	resource
	back    *image.RGBA
	depth   []float32
	frames  int
	present func(*image.RGBA) error
}

// NewSwapchain implements driver.Device.
func (d *Device) NewSwapchain(width, height int) (driver.Swapchain, error) {
	if d.closed {
		return nil, driver.ErrClosed
	}
	sc := new(Swapchain)
	if err := sc.alloc(width, height); err != nil {
		return nil, err
	}
	sc.init(d)
	return sc, nil
}

func (s *Swapchain) alloc(width, height int) error {
	switch {
	case width <= 0 || height <= 0:
		return fmt.Errorf("%w: swapchain size %dx%d", driver.ErrInvalidDesc, width, height)
	case width*height*8 > maxAlloc:
		return driver.ErrNoDeviceMemory
	}
	s.back = image.NewRGBA(image.Rect(0, 0, width, height))
	s.depth = make([]float32, width*height)
	for i := range s.depth {
		s.depth[i] = 1
	}
	return nil
}

// Destroy implements driver.Destroyer.
func (s *Swapchain) Destroy() {
	if s.release() {
		s.back = nil
		s.depth = nil
		s.present = nil
	}
}

// Width implements driver.Swapchain.
func (s *Swapchain) Width() int { return s.back.Rect.Dx() }

// Height implements driver.Swapchain.
func (s *Swapchain) Height() int { return s.back.Rect.Dy() }

// Resize implements driver.Swapchain.
// The contents of the back and depth buffers are lost.
func (s *Swapchain) Resize(width, height int) error {
	if s.dead {
		return driver.ErrClosed
	}
	return s.alloc(width, height)
}

// Present implements driver.Swapchain.
func (s *Swapchain) Present() error {
	if s.dead {
		return driver.ErrClosed
	}
	s.frames++
	if s.present != nil {
		return s.present(s.back)
	}
	return nil
}

// OnPresent sets a function to be called with the back
// buffer on every Present.
// The image must not be retained after fn returns.
func (s *Swapchain) OnPresent(fn func(*image.RGBA) error) { s.present = fn }

// Frames returns how many times s was presented.
func (s *Swapchain) Frames() int { return s.frames }

// Image returns the back buffer.
func (s *Swapchain) Image() *image.RGBA { return s.back }

// Snapshot returns a copy of the back buffer.
func (s *Swapchain) Snapshot() *image.RGBA {
	img := image.NewRGBA(s.back.Rect)
	copy(img.Pix, s.back.Pix)
	return img
}

// Depth returns the depth value stored for pixel (x, y).
func (s *Swapchain) Depth(x, y int) float32 {
	if x < 0 || y < 0 || x >= s.Width() || y >= s.Height() {
		return 1
	}
	return s.depth[y*s.Width()+x]
}

// WritePNG encodes the back buffer into w as PNG.
func (s *Swapchain) WritePNG(w io.Writer) error {
	if s.dead {
		return driver.ErrClosed
	}
	return png.Encode(w, s.back)
}
