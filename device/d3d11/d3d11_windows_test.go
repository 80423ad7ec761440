// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package d3d11

import (
	"errors"
	"runtime"
	"syscall"
	"testing"
	"unsafe"

	qt "github.com/frankban/quicktest"

	"github.com/devblok/hellosurface/device"
	"github.com/devblok/hellosurface/window"
)

func TestNativeDesc(t *testing.T) {
	c := qt.New(t)
	native := nativeDesc(device.NewSwapChainDesc(window.Handle(0x42), 784, 561))

	c.Assert(native.BufferDesc.Width, qt.Equals, uint32(784))
	c.Assert(native.BufferDesc.Height, qt.Equals, uint32(561))
	c.Assert(native.BufferDesc.Format, qt.Equals, uint32(87))
	c.Assert(native.BufferDesc.RefreshRate, qt.Equals, rational{60, 1})
	c.Assert(native.SampleDesc, qt.Equals, sampleDesc{Count: 1})
	c.Assert(native.BufferUsage, qt.Equals, uint32(0x20))
	c.Assert(native.BufferCount, qt.Equals, uint32(1))
	c.Assert(native.OutputWindow, qt.Equals, uintptr(0x42))
	c.Assert(native.Windowed, qt.Equals, int32(1))
	c.Assert(native.SwapEffect, qt.Equals, uint32(swapEffectDiscard))
}

func TestNativeLayout(t *testing.T) {
	c := qt.New(t)
	c.Assert(unsafe.Sizeof(device.Viewport{}), qt.Equals, uintptr(24))
	c.Assert(unsafe.Offsetof(swapChainDesc{}.OutputWindow)%unsafe.Sizeof(uintptr(0)), qt.Equals, uintptr(0))
	if unsafe.Sizeof(uintptr(0)) == 8 {
		c.Assert(unsafe.Sizeof(swapChainDesc{}), qt.Equals, uintptr(72))
	}
}

func TestForeignLevelsRejected(t *testing.T) {
	c := qt.New(t)
	_, err := New(false).CreateDeviceAndSwapChain(device.Hardware,
		[]device.FeatureLevel{device.Level11_0, device.VulkanLevel1_0},
		device.NewSwapChainDesc(0, 1, 1))
	c.Assert(errors.Is(err, device.ErrLevelsRejected), qt.IsTrue)

	_, err = New(false).CreateDeviceAndSwapChain(device.Hardware, nil, device.NewSwapChainDesc(0, 1, 1))
	c.Assert(errors.Is(err, device.ErrLevelsRejected), qt.IsTrue)
}

func TestInterfaceConstants(t *testing.T) {
	c := qt.New(t)
	c.Assert(iidID3D11Texture2D.String(), qt.Equals, "6f15aaf2-d208-4e89-9ab4-489535d34f9c")
	c.Assert(unsafe.Sizeof(guid{}), qt.Equals, uintptr(16))

	c.Assert(vtblRelease, qt.Equals, 2)
	c.Assert(deviceCreateRenderTargetView, qt.Equals, 9)
	c.Assert(contextOMSetRenderTargets, qt.Equals, 33)
	c.Assert(contextRSSetViewports, qt.Equals, 44)
	c.Assert(contextClearRenderTargetView, qt.Equals, 50)
	c.Assert(swapChainPresent, qt.Equals, 8)
	c.Assert(swapChainGetBuffer, qt.Equals, 9)

	c.Assert(uint32(hrInvalidArg), qt.Equals, uint32(0x80070057))
	c.Assert(uint32(hrNullPointer), qt.Equals, uint32(0x80004003))
	c.Assert(failed(hrInvalidArg), qt.IsTrue)
	c.Assert(failed(0), qt.IsFalse)
	c.Assert(failed(1), qt.IsFalse) // S_FALSE
	c.Assert(sdkVersion, qt.Equals, 7)
}

// fakeObject is a COM object whose three argument methods succeed
// without writing their out parameter.
type fakeObject struct {
	vtbl uintptr
	fns  [64]uintptr
}

var succeed = syscall.NewCallback(func(this, a, b, out uintptr) uintptr { return 0 })

func newFakeObject() *fakeObject {
	o := &fakeObject{}
	for i := range o.fns {
		o.fns[i] = succeed
	}
	o.vtbl = uintptr(unsafe.Pointer(&o.fns[0]))
	return o
}

func (o *fakeObject) ptr() uintptr {
	return uintptr(unsafe.Pointer(o))
}

func TestGetBufferNullTexture(t *testing.T) {
	c := qt.New(t)
	fake := newFakeObject()
	s := &SwapChain{object{fake.ptr()}}

	tex, err := s.GetBuffer(0)
	runtime.KeepAlive(fake)
	c.Assert(tex, qt.IsNil)
	c.Assert(err, qt.Equals, error(ErrorCode{Name: "IDXGISwapChain::GetBuffer", Code: hrNullPointer}))
}

func TestCreateRenderTargetViewNullView(t *testing.T) {
	c := qt.New(t)
	fake := newFakeObject()
	d := &Device{object{fake.ptr()}}

	view, err := d.CreateRenderTargetView(&Texture{object{fake.ptr()}})
	runtime.KeepAlive(fake)
	c.Assert(view, qt.IsNil)
	c.Assert(err, qt.Equals, error(ErrorCode{Name: "ID3D11Device::CreateRenderTargetView", Code: hrNullPointer}))
}
