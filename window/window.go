// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package window owns the lifecycle of the single top-level window:
// class registration, instance creation and showing it.
package window

import (
	"github.com/devblok/hellosurface/core"
	log "github.com/sirupsen/logrus"
)

// Handle is an opaque OS window handle. The OS owns it,
// it is released when the window is destroyed.
type Handle uintptr

// Descriptor describes the created window. Immutable once created.
type Descriptor struct {
	Handle       Handle
	ClientWidth  int
	ClientHeight int
}

// Style is a set of window style bits
type Style uint32

// Window styles used by the surface
const (
	StyleSysMenu Style = 0x00080000
	StyleSizeBox Style = 0x00040000

	// DefaultStyle is a system menu with a sizing border
	// and no minimize or maximize boxes.
	DefaultStyle = StyleSysMenu | StyleSizeBox
)

// Class describes the window class to register
type Class struct {
	Name string

	// Procedure wires the window procedure, otherwise a null
	// procedure is registered.
	Procedure bool

	// QuitOnClose posts a quit message with payload 0 when the window
	// is destroyed.
	QuitOnClose bool
}

// Registration is the handle of a registered window class. Registrations are
// process-wide and live until the process exits; a second registration under
// the same name fails.
type Registration struct {
	Class Class
	Atom  uint16
}

// Platform is the OS window facility the surface drives.
type Platform interface {
	// RegisterClass registers the class for the given application instance.
	RegisterClass(instance uintptr, class Class) (Registration, error)

	// CreateWindow creates one window of the registered class.
	CreateWindow(instance uintptr, reg Registration, title string, rect core.Rect, style Style) (Handle, error)

	// Show changes the show state of the window.
	Show(h Handle, showFlags int)

	// Update forces an immediate redraw.
	Update(h Handle)

	// ClientSize returns the client area size in pixels.
	ClientSize(h Handle) (int, int, error)

	// Destroy destroys a created window.
	Destroy(h Handle)
}

// NewSurface creates a window surface on the platform.
func NewSurface(platform Platform, cfg core.WindowConfiguration) *Surface {
	return &Surface{
		platform: platform,
		class: Class{
			Name:        cfg.ClassName,
			Procedure:   cfg.Procedure,
			QuitOnClose: cfg.QuitOnClose,
		},
	}
}

// Surface creates and shows the application window.
type Surface struct {
	platform Platform
	class    Class

	registration *Registration
}

// Registration returns the class registration, if one was made.
func (s *Surface) Registration() (Registration, bool) {
	if s.registration == nil {
		return Registration{}, false
	}
	return *s.registration, true
}

// RegisterAndCreate registers the window class, creates the window within
// rect, shows it with showFlags and forces a redraw. Both failures are
// terminal, the caller must not go on to device negotiation.
func (s *Surface) RegisterAndCreate(instance uintptr, title string, rect core.Rect, showFlags int) (Descriptor, error) {
	reg, err := s.platform.RegisterClass(instance, s.class)
	if err != nil {
		log.WithField("class", s.class.Name).WithError(err).Error("Window class registration failed")
		return Descriptor{}, &Error{Kind: RegisterClassFailed, Err: err}
	}
	s.registration = &reg

	handle, err := s.platform.CreateWindow(instance, reg, title, rect, DefaultStyle)
	if err == nil && handle == 0 {
		err = errNoHandle
	}
	if err != nil {
		log.WithField("rect", rect).WithError(err).Error("Window creation failed")
		return Descriptor{}, &Error{Kind: CreateInstanceFailed, Err: err}
	}

	s.platform.Show(handle, showFlags)
	s.platform.Update(handle)

	width, height, err := s.platform.ClientSize(handle)
	if err != nil {
		log.WithError(err).Error("Window client area unavailable")
		s.platform.Destroy(handle)
		return Descriptor{}, &Error{Kind: CreateInstanceFailed, Err: err}
	}

	log.WithFields(log.Fields{
		"class":  s.class.Name,
		"width":  width,
		"height": height,
	}).Debug("Window created")

	return Descriptor{
		Handle:       handle,
		ClientWidth:  width,
		ClientHeight: height,
	}, nil
}
