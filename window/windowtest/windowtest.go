// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package windowtest provides an in-memory window platform for tests.
package windowtest

import (
	"errors"
	"fmt"

	"github.com/devblok/hellosurface/core"
	"github.com/devblok/hellosurface/window"
)

// Errors the platform returns when told to fail
var (
	ErrRegister = errors.New("windowtest: class registration rejected")
	ErrCreate   = errors.New("windowtest: no window created")
)

// Window records what happened to one created window
type Window struct {
	Class     window.Registration
	Title     string
	Rect      core.Rect
	Style     window.Style
	ShowFlags int
	Shown     bool
	Updates   int
}

// Platform is a window.Platform that keeps everything in memory.
// Client size equals the rect size unless ClientWidth/ClientHeight are set.
type Platform struct {
	// FailRegister rejects every class registration
	FailRegister bool

	// FailCreate makes window creation return no handle
	FailCreate bool

	// FailClientSize makes the client area query fail
	FailClientSize bool

	// ClientWidth and ClientHeight override the client size
	ClientWidth, ClientHeight int

	Classes map[string]window.Registration
	Windows map[window.Handle]*Window
	Calls   []string

	next window.Handle
}

// New returns an empty platform
func New() *Platform {
	return &Platform{
		Classes: make(map[string]window.Registration),
		Windows: make(map[window.Handle]*Window),
	}
}

// RegisterClass implements window.Platform
func (p *Platform) RegisterClass(instance uintptr, class window.Class) (window.Registration, error) {
	p.Calls = append(p.Calls, "RegisterClass")
	if p.FailRegister {
		return window.Registration{}, ErrRegister
	}
	if _, ok := p.Classes[class.Name]; ok {
		return window.Registration{}, fmt.Errorf("windowtest: class %q already exists", class.Name)
	}
	reg := window.Registration{Class: class, Atom: uint16(len(p.Classes) + 1)}
	p.Classes[class.Name] = reg
	return reg, nil
}

// CreateWindow implements window.Platform
func (p *Platform) CreateWindow(instance uintptr, reg window.Registration, title string, rect core.Rect, style window.Style) (window.Handle, error) {
	p.Calls = append(p.Calls, "CreateWindow")
	if p.FailCreate {
		return 0, nil
	}
	p.next++
	p.Windows[p.next] = &Window{Class: reg, Title: title, Rect: rect, Style: style}
	return p.next, nil
}

// Show implements window.Platform
func (p *Platform) Show(h window.Handle, showFlags int) {
	p.Calls = append(p.Calls, "Show")
	if w, ok := p.Windows[h]; ok {
		w.Shown = true
		w.ShowFlags = showFlags
	}
}

// Update implements window.Platform
func (p *Platform) Update(h window.Handle) {
	p.Calls = append(p.Calls, "Update")
	if w, ok := p.Windows[h]; ok {
		w.Updates++
	}
}

// ClientSize implements window.Platform
func (p *Platform) ClientSize(h window.Handle) (int, int, error) {
	w, ok := p.Windows[h]
	if !ok || p.FailClientSize {
		return 0, 0, ErrCreate
	}
	if p.ClientWidth != 0 || p.ClientHeight != 0 {
		return p.ClientWidth, p.ClientHeight, nil
	}
	return int(w.Rect.Width()), int(w.Rect.Height()), nil
}

// Destroy implements window.Platform
func (p *Platform) Destroy(h window.Handle) {
	p.Calls = append(p.Calls, "Destroy")
	delete(p.Windows, h)
}
