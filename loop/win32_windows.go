// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package loop

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")

	procPeekMessageW     = user32.NewProc("PeekMessageW")
	procTranslateMessage = user32.NewProc("TranslateMessage")
	procDispatchMessageW = user32.NewProc("DispatchMessageW")
)

const (
	pmRemove = 0x0001
	wmQuit   = 0x0012
)

type point struct {
	X, Y int32
}

// MSG
type msg struct {
	HWnd    uintptr
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      point
}

// Win32 pumps the message queue of the calling thread
type Win32 struct{}

// NewWin32 returns a pump for the thread that created the window
func NewWin32() *Win32 {
	return &Win32{}
}

// Peek implements Pump with PeekMessageW and PM_REMOVE
func (Win32) Peek() (Message, bool) {
	m := &msg{}
	r, _, _ := procPeekMessageW.Call(uintptr(unsafe.Pointer(m)), 0, 0, 0, pmRemove)
	if r == 0 {
		return Message{}, false
	}
	if m.Message == wmQuit {
		return Message{Quit: true, Code: int(int32(m.WParam)), Native: m}, true
	}
	return Message{Native: m}, true
}

// Dispatch implements Pump
func (Win32) Dispatch(message Message) {
	m, ok := message.Native.(*msg)
	if !ok {
		return
	}
	procTranslateMessage.Call(uintptr(unsafe.Pointer(m)))
	procDispatchMessageW.Call(uintptr(unsafe.Pointer(m)))
}
