// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package device negotiates a rendering device and swapchain for a window
// and binds its back buffer as the render target. Concrete backends live in
// sub-packages and implement Backend.
package device

import (
	"errors"
	"fmt"
	"strings"

	"github.com/devblok/hellosurface/core"
	"github.com/devblok/hellosurface/window"
	glm "github.com/go-gl/mathgl/mgl32"
)

// DriverType selects the execution backend that renders a frame.
// Values match D3D_DRIVER_TYPE.
type DriverType int

// Driver types
const (
	DriverUnknown DriverType = iota
	Hardware
	Reference
	Null
	Software
	Warp
)

var driverNames = map[DriverType]string{
	DriverUnknown: "unknown",
	Hardware:      "hardware",
	Reference:     "reference",
	Null:          "null",
	Software:      "software",
	Warp:          "warp",
}

func (d DriverType) String() string {
	if name, ok := driverNames[d]; ok {
		return name
	}
	return fmt.Sprintf("driver(%d)", int(d))
}

// ParseDriverType parses a driver type name
func ParseDriverType(name string) (DriverType, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for d, n := range driverNames {
		if n == name && d != DriverUnknown {
			return d, nil
		}
	}
	return DriverUnknown, fmt.Errorf("device: unknown driver type %q", name)
}

// FeatureLevel is a capability tier a device guarantees. Direct3D levels
// use the D3D_FEATURE_LEVEL values, Vulkan levels are packed API versions;
// the two ranges do not overlap.
type FeatureLevel uint32

// Direct3D feature levels
const (
	Level9_1  FeatureLevel = 0x9100
	Level9_2  FeatureLevel = 0x9200
	Level9_3  FeatureLevel = 0x9300
	Level10_0 FeatureLevel = 0xa000
	Level10_1 FeatureLevel = 0xa100
	Level11_0 FeatureLevel = 0xb000
	Level11_1 FeatureLevel = 0xb100
)

// Vulkan API versions as feature levels
const (
	VulkanLevel1_0 FeatureLevel = 1<<22 | 0<<12
	VulkanLevel1_1 FeatureLevel = 1<<22 | 1<<12
	VulkanLevel1_2 FeatureLevel = 1<<22 | 2<<12
	VulkanLevel1_3 FeatureLevel = 1<<22 | 3<<12
)

var levelNames = map[FeatureLevel]string{
	Level9_1:       "9_1",
	Level9_2:       "9_2",
	Level9_3:       "9_3",
	Level10_0:      "10_0",
	Level10_1:      "10_1",
	Level11_0:      "11_0",
	Level11_1:      "11_1",
	VulkanLevel1_0: "vk1.0",
	VulkanLevel1_1: "vk1.1",
	VulkanLevel1_2: "vk1.2",
	VulkanLevel1_3: "vk1.3",
}

func (l FeatureLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("level(%#x)", uint32(l))
}

// Direct3D reports whether the level is a Direct3D feature level
func (l FeatureLevel) Direct3D() bool {
	return l >= Level9_1 && l <= Level11_1
}

// Vulkan reports whether the level is a Vulkan API version
func (l FeatureLevel) Vulkan() bool {
	return l >= VulkanLevel1_0 && l < 2<<22
}

// ParseFeatureLevel parses a feature level name, e.g. "11_0" or "vk1.1"
func ParseFeatureLevel(name string) (FeatureLevel, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for l, n := range levelNames {
		if n == name {
			return l, nil
		}
	}
	return 0, fmt.Errorf("device: unknown feature level %q", name)
}

// Default priority lists
var (
	DefaultDrivers = []DriverType{Hardware}
	DefaultLevels  = []FeatureLevel{Level11_1, Level11_0, Level10_1, Level10_0}
)

// Format is a DXGI_FORMAT value
type Format uint32

// FormatB8G8R8A8Unorm is 32-bit BGRA, 8 bits per channel
const FormatB8G8R8A8Unorm Format = 87

// Usage is a DXGI_USAGE bit set
type Usage uint32

// UsageRenderTargetOutput marks buffers used as render target output
const UsageRenderTargetOutput Usage = 0x20

// Rational is a refresh rate
type Rational struct {
	Numerator   uint32
	Denominator uint32
}

// SwapChainDesc describes the swapchain to create
type SwapChainDesc struct {
	Width, Height uint32
	Format        Format
	RefreshRate   Rational
	BufferCount   uint32
	Usage         Usage
	Window        window.Handle
	Windowed      bool
	SampleCount   uint32
	SampleQuality uint32
}

// NewSwapChainDesc returns the swapchain description for a client area:
// one back buffer, BGRA, 60/1, render target usage, windowed, no multisampling.
func NewSwapChainDesc(h window.Handle, width, height int) SwapChainDesc {
	return SwapChainDesc{
		Width:       uint32(width),
		Height:      uint32(height),
		Format:      FormatB8G8R8A8Unorm,
		RefreshRate: Rational{Numerator: 60, Denominator: 1},
		BufferCount: 1,
		Usage:       UsageRenderTargetOutput,
		Window:      h,
		Windowed:    true,
		SampleCount: 1,
	}
}

// Viewport is the drawn region and depth range, laid out as D3D11_VIEWPORT
type Viewport struct {
	TopLeftX, TopLeftY float32
	Width, Height      float32
	MinDepth, MaxDepth float32
}

// FullViewport covers the whole client area with depth range [0, 1]
func FullViewport(width, height int) Viewport {
	return Viewport{
		Width:    float32(width),
		Height:   float32(height),
		MinDepth: 0,
		MaxDepth: 1,
	}
}

// Texture is a GPU texture, e.g. a swapchain back buffer
type Texture interface {
	core.Releasable
}

// RenderTargetView describes how a buffer is written to as render output
type RenderTargetView interface {
	core.Releasable
}

// Device creates GPU resources. It exclusively owns what it allocates.
type Device interface {
	core.Releasable

	// CreateRenderTargetView derives a view with default parameters
	CreateRenderTargetView(Texture) (RenderTargetView, error)
}

// Context records rendering commands, owned jointly with its Device.
type Context interface {
	core.Releasable

	// OMSetRenderTargets binds the color outputs, without depth-stencil
	OMSetRenderTargets(views []RenderTargetView)

	// RSSetViewports binds the viewports
	RSSetViewports(viewports []Viewport)

	// ClearRenderTargetView fills the view with a normalized RGBA color
	ClearRenderTargetView(view RenderTargetView, color glm.Vec4)
}

// SwapChain owns the back buffer chain and the presentation surface.
type SwapChain interface {
	core.Releasable

	// GetBuffer returns a new reference to back buffer index
	GetBuffer(index int) (Texture, error)

	// Present shows the back buffer
	Present(syncInterval, flags uint32) error
}

// ErrLevelsRejected is the distinct failure of a runtime that does not
// recognize an entry of the requested feature level list. Backends wrap it.
var ErrLevelsRejected = errors.New("feature level list not recognized")

// Created is what one creation attempt produced. On failure any non-nil
// field is a partial object the negotiator releases.
type Created struct {
	Device    Device
	Context   Context
	SwapChain SwapChain

	// Level is the level the runtime granted
	Level FeatureLevel
}

func (c Created) release() {
	core.ReleaseAll(c.SwapChain, c.Context, c.Device)
}

// Backend creates a device, immediate context and swapchain in one call.
type Backend interface {
	// CreateDeviceAndSwapChain tries the levels in order, highest first,
	// and reports the one granted. It returns an error wrapping
	// ErrLevelsRejected when the list itself is not recognized.
	CreateDeviceAndSwapChain(driver DriverType, levels []FeatureLevel, desc SwapChainDesc) (Created, error)
}
