// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package d3d11

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/devblok/hellosurface/device"
	glm "github.com/go-gl/mathgl/mgl32"
	log "github.com/sirupsen/logrus"
)

const (
	sdkVersion = 7

	createDeviceDebug = 0x2

	swapEffectDiscard = 0
)

// ID3D11Device, ID3D11DeviceContext and IDXGISwapChain vtable indices
const (
	deviceCreateRenderTargetView = 9

	contextOMSetRenderTargets    = 33
	contextRSSetViewports        = 44
	contextClearRenderTargetView = 50

	swapChainPresent   = 8
	swapChainGetBuffer = 9
)

type rational struct {
	Numerator   uint32
	Denominator uint32
}

type modeDesc struct {
	Width            uint32
	Height           uint32
	RefreshRate      rational
	Format           uint32
	ScanlineOrdering uint32
	Scaling          uint32
}

type sampleDesc struct {
	Count   uint32
	Quality uint32
}

// DXGI_SWAP_CHAIN_DESC
type swapChainDesc struct {
	BufferDesc   modeDesc
	SampleDesc   sampleDesc
	BufferUsage  uint32
	BufferCount  uint32
	OutputWindow uintptr
	Windowed     int32
	SwapEffect   uint32
	Flags        uint32
}

func nativeDesc(d device.SwapChainDesc) swapChainDesc {
	var windowed int32
	if d.Windowed {
		windowed = 1
	}
	return swapChainDesc{
		BufferDesc: modeDesc{
			Width:  d.Width,
			Height: d.Height,
			RefreshRate: rational{
				Numerator:   d.RefreshRate.Numerator,
				Denominator: d.RefreshRate.Denominator,
			},
			Format: uint32(d.Format),
		},
		SampleDesc: sampleDesc{
			Count:   d.SampleCount,
			Quality: d.SampleQuality,
		},
		BufferUsage:  uint32(d.Usage),
		BufferCount:  d.BufferCount,
		OutputWindow: uintptr(d.Window),
		Windowed:     windowed,
		SwapEffect:   swapEffectDiscard,
	}
}

// DefaultLevels is the Direct3D feature level ladder
var DefaultLevels = device.DefaultLevels

// New creates a backend. With debug set, devices are created with the
// debug layer, which needs the SDK layers installed.
func New(debug bool) *Backend {
	return &Backend{debug: debug}
}

// Backend creates Direct3D 11 devices
type Backend struct {
	debug bool
}

// CreateDeviceAndSwapChain implements device.Backend by calling
// D3D11CreateDeviceAndSwapChain on the default adapter.
func (b *Backend) CreateDeviceAndSwapChain(driver device.DriverType, levels []device.FeatureLevel, desc device.SwapChainDesc) (device.Created, error) {
	if len(levels) == 0 {
		return device.Created{}, fmt.Errorf("d3d11: empty feature level list: %w", device.ErrLevelsRejected)
	}
	native := make([]uint32, len(levels))
	for i, l := range levels {
		if !l.Direct3D() {
			return device.Created{}, fmt.Errorf("d3d11: %s: %w", l, device.ErrLevelsRejected)
		}
		native[i] = uint32(l)
	}

	if err := procD3D11CreateDeviceAndSwapChain.Find(); err != nil {
		return device.Created{}, err
	}

	var flags uintptr
	if b.debug {
		flags |= createDeviceDebug
	}

	var (
		scDesc  = nativeDesc(desc)
		swap    uintptr
		dev     uintptr
		granted uint32
		ctx     uintptr
	)
	hr, _, _ := procD3D11CreateDeviceAndSwapChain.Call(
		0, // default adapter
		uintptr(driver),
		0, // no software rasterizer module
		flags,
		uintptr(unsafe.Pointer(&native[0])),
		uintptr(len(native)),
		sdkVersion,
		uintptr(unsafe.Pointer(&scDesc)),
		uintptr(unsafe.Pointer(&swap)),
		uintptr(unsafe.Pointer(&dev)),
		uintptr(unsafe.Pointer(&granted)),
		uintptr(unsafe.Pointer(&ctx)),
	)

	created := device.Created{Level: device.FeatureLevel(granted)}
	if dev != 0 {
		created.Device = &Device{object{dev}}
	}
	if ctx != 0 {
		created.Context = &Context{object{ctx}}
	}
	if swap != 0 {
		created.SwapChain = &SwapChain{object{swap}}
	}

	if failed(hr) {
		err := error(ErrorCode{Name: "D3D11CreateDeviceAndSwapChain", Code: uint32(hr)})
		if uint32(hr) == hrInvalidArg {
			err = fmt.Errorf("%w: %v", device.ErrLevelsRejected, err)
		}
		return created, err
	}

	log.WithFields(log.Fields{
		"driver": driver,
		"level":  created.Level,
		"debug":  b.debug,
	}).Debug("Direct3D 11 device created")

	return created, nil
}

// Device is an ID3D11Device
type Device struct{ object }

// CreateRenderTargetView implements device.Device
func (d *Device) CreateRenderTargetView(t device.Texture) (device.RenderTargetView, error) {
	tex, ok := t.(*Texture)
	if !ok || tex.ptr == 0 {
		return nil, errors.New("d3d11: not a Direct3D 11 texture")
	}
	var view uintptr
	hr := comCall(d.ptr, deviceCreateRenderTargetView,
		tex.ptr,
		0, // default view description
		uintptr(unsafe.Pointer(&view)),
	)
	if failed(hr) {
		return nil, ErrorCode{Name: "ID3D11Device::CreateRenderTargetView", Code: uint32(hr)}
	}
	if view == 0 {
		return nil, ErrorCode{Name: "ID3D11Device::CreateRenderTargetView", Code: hrNullPointer}
	}
	return &RenderTargetView{object{view}}, nil
}

// Context is an ID3D11DeviceContext
type Context struct{ object }

// OMSetRenderTargets implements device.Context
func (c *Context) OMSetRenderTargets(views []device.RenderTargetView) {
	ptrs := make([]uintptr, 0, len(views))
	for _, v := range views {
		if rtv, ok := v.(*RenderTargetView); ok {
			ptrs = append(ptrs, rtv.ptr)
		}
	}
	var first uintptr
	if len(ptrs) > 0 {
		first = uintptr(unsafe.Pointer(&ptrs[0]))
	}
	comCall(c.ptr, contextOMSetRenderTargets, uintptr(len(ptrs)), first, 0)
}

// RSSetViewports implements device.Context. device.Viewport has the
// D3D11_VIEWPORT layout.
func (c *Context) RSSetViewports(viewports []device.Viewport) {
	if len(viewports) == 0 {
		comCall(c.ptr, contextRSSetViewports, 0, 0)
		return
	}
	comCall(c.ptr, contextRSSetViewports, uintptr(len(viewports)), uintptr(unsafe.Pointer(&viewports[0])))
}

// ClearRenderTargetView implements device.Context
func (c *Context) ClearRenderTargetView(view device.RenderTargetView, color glm.Vec4) {
	rtv, ok := view.(*RenderTargetView)
	if !ok || rtv.ptr == 0 {
		return
	}
	comCall(c.ptr, contextClearRenderTargetView, rtv.ptr, uintptr(unsafe.Pointer(&color[0])))
}

// SwapChain is an IDXGISwapChain
type SwapChain struct{ object }

// GetBuffer implements device.SwapChain
func (s *SwapChain) GetBuffer(index int) (device.Texture, error) {
	var tex uintptr
	hr := comCall(s.ptr, swapChainGetBuffer,
		uintptr(index),
		uintptr(unsafe.Pointer(&iidID3D11Texture2D)),
		uintptr(unsafe.Pointer(&tex)),
	)
	if failed(hr) {
		return nil, ErrorCode{Name: "IDXGISwapChain::GetBuffer", Code: uint32(hr)}
	}
	if tex == 0 {
		return nil, ErrorCode{Name: "IDXGISwapChain::GetBuffer", Code: hrNullPointer}
	}
	return &Texture{object{tex}}, nil
}

// Present implements device.SwapChain. Status codes such as
// DXGI_STATUS_OCCLUDED are not errors.
func (s *SwapChain) Present(syncInterval, flags uint32) error {
	hr := comCall(s.ptr, swapChainPresent, uintptr(syncInterval), uintptr(flags))
	if failed(hr) {
		return ErrorCode{Name: "IDXGISwapChain::Present", Code: uint32(hr)}
	}
	return nil
}

// Texture is an ID3D11Texture2D
type Texture struct{ object }

// RenderTargetView is an ID3D11RenderTargetView
type RenderTargetView struct{ object }
