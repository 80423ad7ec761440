// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package window

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/devblok/hellosurface/core"
	"golang.org/x/sys/windows"
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")

	procRegisterClassExW = user32.NewProc("RegisterClassExW")
	procCreateWindowExW  = user32.NewProc("CreateWindowExW")
	procDestroyWindow    = user32.NewProc("DestroyWindow")
	procDefWindowProcW   = user32.NewProc("DefWindowProcW")
	procShowWindow       = user32.NewProc("ShowWindow")
	procUpdateWindow     = user32.NewProc("UpdateWindow")
	procGetClientRect    = user32.NewProc("GetClientRect")
	procLoadCursorW      = user32.NewProc("LoadCursorW")
	procLoadIconW        = user32.NewProc("LoadIconW")
	procPostQuitMessage  = user32.NewProc("PostQuitMessage")
)

const (
	csVRedraw = 0x0001
	csHRedraw = 0x0002

	colorWindow = 5

	idcArrow       = 32512
	idiApplication = 32512

	wmDestroy = 0x0002
)

// wndClassEx matches WNDCLASSEXW
type wndClassEx struct {
	Size       uint32
	Style      uint32
	WndProc    uintptr
	ClsExtra   int32
	WndExtra   int32
	Instance   windows.Handle
	Icon       windows.Handle
	Cursor     windows.Handle
	Background windows.Handle
	MenuName   *uint16
	ClassName  *uint16
	IconSm     windows.Handle
}

// Only the first window procedure callback is ever created,
// callbacks are a limited resource.
var (
	wndProcOnce     sync.Once
	wndProcCallback uintptr
	quitOnClose     bool
)

func wndProc(hwnd, msg, wParam, lParam uintptr) uintptr {
	if msg == wmDestroy && quitOnClose {
		procPostQuitMessage.Call(0)
		return 0
	}
	r, _, _ := procDefWindowProcW.Call(hwnd, msg, wParam, lParam)
	return r
}

// Win32 creates windows through user32.
type Win32 struct{}

// NewWin32 returns the Win32 platform
func NewWin32() *Win32 {
	return &Win32{}
}

// RegisterClass implements Platform
func (Win32) RegisterClass(instance uintptr, class Class) (Registration, error) {
	name, err := windows.UTF16PtrFromString(class.Name)
	if err != nil {
		return Registration{}, err
	}

	wc := wndClassEx{
		Style:      csHRedraw | csVRedraw,
		Instance:   windows.Handle(instance),
		Background: windows.Handle(colorWindow),
		ClassName:  name,
	}
	wc.Size = uint32(unsafe.Sizeof(wc))

	icon, _, _ := procLoadIconW.Call(0, idiApplication)
	cursor, _, _ := procLoadCursorW.Call(0, idcArrow)
	wc.Icon = windows.Handle(icon)
	wc.Cursor = windows.Handle(cursor)

	if class.Procedure {
		wndProcOnce.Do(func() {
			wndProcCallback = windows.NewCallback(wndProc)
		})
		quitOnClose = class.QuitOnClose
		wc.WndProc = wndProcCallback
	}

	atom, _, callErr := procRegisterClassExW.Call(uintptr(unsafe.Pointer(&wc)))
	if atom == 0 {
		return Registration{}, fmt.Errorf("RegisterClassExW(%q): %s", class.Name, callErr)
	}
	return Registration{Class: class, Atom: uint16(atom)}, nil
}

// CreateWindow implements Platform
func (Win32) CreateWindow(instance uintptr, reg Registration, title string, rect core.Rect, style Style) (Handle, error) {
	className, err := windows.UTF16PtrFromString(reg.Class.Name)
	if err != nil {
		return 0, err
	}
	windowName, err := windows.UTF16PtrFromString(title)
	if err != nil {
		return 0, err
	}

	hwnd, _, callErr := procCreateWindowExW.Call(
		0,
		uintptr(unsafe.Pointer(className)),
		uintptr(unsafe.Pointer(windowName)),
		uintptr(style),
		uintptr(rect.Left),
		uintptr(rect.Top),
		uintptr(rect.Width()),
		uintptr(rect.Height()),
		0, // parent
		0, // menu
		instance,
		0,
	)
	if hwnd == 0 {
		return 0, fmt.Errorf("CreateWindowExW(): %s", callErr)
	}
	return Handle(hwnd), nil
}

// Show implements Platform
func (Win32) Show(h Handle, showFlags int) {
	procShowWindow.Call(uintptr(h), uintptr(showFlags))
}

// Update implements Platform
func (Win32) Update(h Handle) {
	procUpdateWindow.Call(uintptr(h))
}

// ClientSize implements Platform
func (Win32) ClientSize(h Handle) (int, int, error) {
	var r windows.Rect
	if ok, _, callErr := procGetClientRect.Call(uintptr(h), uintptr(unsafe.Pointer(&r))); ok == 0 {
		return 0, 0, fmt.Errorf("GetClientRect(): %s", callErr)
	}
	return int(r.Right - r.Left), int(r.Bottom - r.Top), nil
}

// Destroy implements Platform
func (Win32) Destroy(h Handle) {
	procDestroyWindow.Call(uintptr(h))
}
