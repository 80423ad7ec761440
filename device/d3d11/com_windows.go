// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package d3d11

import (
	"fmt"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	d3d11DLL = windows.NewLazySystemDLL("d3d11.dll")

	procD3D11CreateDeviceAndSwapChain = d3d11DLL.NewProc("D3D11CreateDeviceAndSwapChain")
)

// IUnknown
const vtblRelease = 2

// HRESULT values
const (
	hrInvalidArg  = 0x80070057 // E_INVALIDARG
	hrNullPointer = 0x80004003 // E_POINTER
)

// ErrorCode is a failed HRESULT
type ErrorCode struct {
	Name string
	Code uint32
}

func (e ErrorCode) Error() string {
	return fmt.Sprintf("%s: %#08x", e.Name, e.Code)
}

func failed(hr uintptr) bool {
	return int32(uint32(hr)) < 0
}

type guid struct {
	Data1 uint32
	Data2 uint16
	Data3 uint16
	Data4 [8]byte
}

func (g guid) String() string {
	return fmt.Sprintf("%08x-%04x-%04x-%02x%02x-%x", g.Data1, g.Data2, g.Data3, g.Data4[0], g.Data4[1], g.Data4[2:])
}

var iidID3D11Texture2D = guid{0x6f15aaf2, 0xd208, 0x4e89, [8]byte{0x9a, 0xb4, 0x48, 0x95, 0x35, 0xd3, 0x4f, 0x9c}}

// vtblFn resolves a COM vtable function pointer by index
func vtblFn(obj uintptr, idx int) uintptr {
	vtbl := *(*uintptr)(unsafe.Pointer(obj))
	return *(*uintptr)(unsafe.Pointer(vtbl + uintptr(idx)*unsafe.Sizeof(uintptr(0))))
}

func comCall(obj uintptr, idx int, args ...uintptr) uintptr {
	r, _, _ := syscall.SyscallN(vtblFn(obj, idx), append([]uintptr{obj}, args...)...)
	return r
}

// object is a COM interface pointer released at most once
type object struct {
	ptr uintptr
}

func (o *object) Release() {
	if o.ptr == 0 {
		return
	}
	comCall(o.ptr, vtblRelease)
	o.ptr = 0
}
