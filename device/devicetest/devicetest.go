// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package devicetest provides a scriptable in-memory device.Backend.
package devicetest

import (
	"errors"
	"fmt"

	"github.com/devblok/hellosurface/device"
	glm "github.com/go-gl/mathgl/mgl32"
)

// ErrFailed is the generic failure of a scripted attempt
var ErrFailed = errors.New("devicetest: creation failed")

// Call is one recorded CreateDeviceAndSwapChain call
type Call struct {
	Driver device.DriverType
	Levels []device.FeatureLevel
	Desc   device.SwapChainDesc
}

// Backend is a device.Backend driven by its fields.
type Backend struct {
	// Reject holds levels the runtime does not recognize. A request
	// containing any of them fails with device.ErrLevelsRejected.
	Reject []device.FeatureLevel

	// Fail makes every attempt on a driver fail with the error
	Fail map[device.DriverType]error

	// Max caps the level a driver can grant. The granted level is the
	// first requested level not above it. Drivers without a cap grant
	// the first requested level.
	Max map[device.DriverType]device.FeatureLevel

	// Partial returns half-created objects along with failures,
	// including FailGetBuffer and FailView
	Partial bool

	// NoBackBuffers gives swapchains zero back buffers
	NoBackBuffers bool

	// FailGetBuffer, FailView and FailPresent inject errors
	FailGetBuffer error
	FailView      error
	FailPresent   error

	Calls []Call
	Live  int
}

// CreateDeviceAndSwapChain implements device.Backend
func (b *Backend) CreateDeviceAndSwapChain(driver device.DriverType, levels []device.FeatureLevel, desc device.SwapChainDesc) (device.Created, error) {
	b.Calls = append(b.Calls, Call{
		Driver: driver,
		Levels: append([]device.FeatureLevel(nil), levels...),
		Desc:   desc,
	})

	var partial device.Created
	if b.Partial {
		partial.Device = b.newDevice()
	}

	for _, l := range levels {
		for _, r := range b.Reject {
			if l == r {
				return partial, fmt.Errorf("devicetest: %s: %w", l, device.ErrLevelsRejected)
			}
		}
	}
	if err, ok := b.Fail[driver]; ok {
		return partial, err
	}

	granted, ok := b.grant(driver, levels)
	if !ok {
		return partial, ErrFailed
	}
	if partial.Device != nil {
		partial.Device.Release()
	}

	dev := b.newDevice()
	b.Live += 2
	return device.Created{
		Device:    dev,
		Context:   &Context{backend: b},
		SwapChain: &SwapChain{backend: b, desc: desc},
		Level:     granted,
	}, nil
}

func (b *Backend) grant(driver device.DriverType, levels []device.FeatureLevel) (device.FeatureLevel, bool) {
	if len(levels) == 0 {
		return 0, false
	}
	max, capped := b.Max[driver]
	if !capped {
		return levels[0], true
	}
	for _, l := range levels {
		if l <= max {
			return l, true
		}
	}
	return 0, false
}

func (b *Backend) newDevice() *Device {
	b.Live++
	return &Device{backend: b}
}

// Device is a fake device.Device
type Device struct {
	backend  *Backend
	released bool
}

// CreateRenderTargetView implements device.Device
func (d *Device) CreateRenderTargetView(t device.Texture) (device.RenderTargetView, error) {
	tex, ok := t.(*Texture)
	if !ok {
		return nil, errors.New("devicetest: foreign texture")
	}
	if d.backend.FailView != nil {
		if d.backend.Partial {
			d.backend.Live++
			return &View{backend: d.backend, Buffer: tex.Index}, d.backend.FailView
		}
		return nil, d.backend.FailView
	}
	d.backend.Live++
	return &View{backend: d.backend, Buffer: tex.Index}, nil
}

// Release implements device.Device
func (d *Device) Release() {
	release(d.backend, &d.released)
}

// Context is a fake device.Context recording the bound state
type Context struct {
	backend  *Backend
	released bool

	Targets   []device.RenderTargetView
	Viewports []device.Viewport
	Clears    []glm.Vec4
	Cleared   device.RenderTargetView
}

// OMSetRenderTargets implements device.Context
func (c *Context) OMSetRenderTargets(views []device.RenderTargetView) {
	c.Targets = append([]device.RenderTargetView(nil), views...)
}

// RSSetViewports implements device.Context
func (c *Context) RSSetViewports(viewports []device.Viewport) {
	c.Viewports = append([]device.Viewport(nil), viewports...)
}

// ClearRenderTargetView implements device.Context
func (c *Context) ClearRenderTargetView(view device.RenderTargetView, color glm.Vec4) {
	c.Clears = append(c.Clears, color)
	c.Cleared = view
}

// Release implements device.Context
func (c *Context) Release() {
	release(c.backend, &c.released)
}

// Present is one recorded present call
type Present struct {
	SyncInterval, Flags uint32
}

// SwapChain is a fake device.SwapChain
type SwapChain struct {
	backend  *Backend
	desc     device.SwapChainDesc
	released bool

	Presents []Present
}

// Desc returns the description the swapchain was created with
func (s *SwapChain) Desc() device.SwapChainDesc {
	return s.desc
}

// GetBuffer implements device.SwapChain
func (s *SwapChain) GetBuffer(index int) (device.Texture, error) {
	if s.backend.FailGetBuffer != nil {
		if s.backend.Partial {
			s.backend.Live++
			return &Texture{backend: s.backend, Index: index}, s.backend.FailGetBuffer
		}
		return nil, s.backend.FailGetBuffer
	}
	if s.backend.NoBackBuffers || index < 0 || uint32(index) >= s.desc.BufferCount {
		return nil, fmt.Errorf("devicetest: no back buffer %d", index)
	}
	s.backend.Live++
	return &Texture{backend: s.backend, Index: index}, nil
}

// Present implements device.SwapChain
func (s *SwapChain) Present(syncInterval, flags uint32) error {
	s.Presents = append(s.Presents, Present{SyncInterval: syncInterval, Flags: flags})
	return s.backend.FailPresent
}

// Release implements device.SwapChain
func (s *SwapChain) Release() {
	release(s.backend, &s.released)
}

// Texture is a fake back buffer
type Texture struct {
	backend  *Backend
	released bool
	Index    int
}

// Release implements device.Texture
func (t *Texture) Release() {
	release(t.backend, &t.released)
}

// View is a fake render target view of back buffer Buffer
type View struct {
	backend  *Backend
	released bool
	Buffer   int
}

// Release implements device.RenderTargetView
func (v *View) Release() {
	release(v.backend, &v.released)
}

func release(b *Backend, released *bool) {
	if *released {
		panic("devicetest: double release")
	}
	*released = true
	b.Live--
}
