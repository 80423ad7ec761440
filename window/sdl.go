// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package window

import (
	"fmt"

	"github.com/devblok/hellosurface/core"
	"github.com/veandco/go-sdl2/sdl"
)

// SDL creates windows through SDL2. SDL has no window classes, the
// registry is kept here so duplicate class names still fail.
type SDL struct {
	flags   sdl.WindowFlags
	classes map[string]struct{}
	windows map[Handle]*sdl.Window
}

// NewSDL returns the SDL platform, flags are added to every created
// window, e.g. sdl.WINDOW_VULKAN.
func NewSDL(flags sdl.WindowFlags) *SDL {
	return &SDL{
		flags:   flags,
		classes: make(map[string]struct{}),
		windows: make(map[Handle]*sdl.Window),
	}
}

// RegisterClass implements Platform
func (s *SDL) RegisterClass(instance uintptr, class Class) (Registration, error) {
	if _, ok := s.classes[class.Name]; ok {
		return Registration{}, fmt.Errorf("window class %q already registered", class.Name)
	}
	if err := sdl.InitSubSystem(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return Registration{}, fmt.Errorf("sdl.InitSubSystem(): %s", err)
	}
	s.classes[class.Name] = struct{}{}
	return Registration{Class: class, Atom: uint16(len(s.classes))}, nil
}

// CreateWindow implements Platform
func (s *SDL) CreateWindow(instance uintptr, reg Registration, title string, rect core.Rect, style Style) (Handle, error) {
	flags := s.flags | sdl.WINDOW_HIDDEN
	if style&StyleSizeBox != 0 {
		flags |= sdl.WINDOW_RESIZABLE
	}

	win, err := sdl.CreateWindow(title, rect.Left, rect.Top, rect.Width(), rect.Height(), flags)
	if err != nil {
		return 0, fmt.Errorf("sdl.CreateWindow(): %s", err)
	}
	id, err := win.GetID()
	if err != nil {
		win.Destroy()
		return 0, fmt.Errorf("sdl.Window.GetID(): %s", err)
	}

	h := Handle(id)
	s.windows[h] = win
	return h, nil
}

// Show implements Platform, a zero showFlags keeps the window hidden.
func (s *SDL) Show(h Handle, showFlags int) {
	if win, ok := s.windows[h]; ok {
		if showFlags == 0 {
			win.Hide()
		} else {
			win.Show()
		}
	}
}

// Update implements Platform
func (s *SDL) Update(h Handle) {
	if win, ok := s.windows[h]; ok {
		win.Raise()
	}
}

// ClientSize implements Platform
func (s *SDL) ClientSize(h Handle) (int, int, error) {
	win, ok := s.windows[h]
	if !ok {
		return 0, 0, fmt.Errorf("unknown window %d", h)
	}
	var w, ht int32
	if s.flags&sdl.WINDOW_VULKAN != 0 {
		w, ht = win.VulkanGetDrawableSize()
	} else {
		w, ht = win.GetSize()
	}
	return int(w), int(ht), nil
}

// Destroy implements Platform
func (s *SDL) Destroy(h Handle) {
	if win, ok := s.windows[h]; ok {
		win.Destroy()
		delete(s.windows, h)
	}
}

// Window returns the SDL window behind a handle
func (s *SDL) Window(h Handle) (*sdl.Window, bool) {
	win, ok := s.windows[h]
	return win, ok
}

// Release destroys every created window
func (s *SDL) Release() {
	for h, win := range s.windows {
		win.Destroy()
		delete(s.windows, h)
	}
}
