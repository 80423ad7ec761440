// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package app runs the startup sequence: window, device, render target and
// then the event loop.
package app

import (
	"errors"

	"github.com/devblok/hellosurface/core"
	"github.com/devblok/hellosurface/device"
	"github.com/devblok/hellosurface/loop"
	"github.com/devblok/hellosurface/window"
	log "github.com/sirupsen/logrus"
)

// Caption of the startup error dialog
const Caption = "error!"

// ExitFailure is the exit code of a failed startup
const ExitFailure = 1

const unknownError = "Unknown error!"

// Startup holds the stages of the startup sequence
type Startup struct {
	Config     core.Configuration
	Surface    *window.Surface
	Negotiator *device.Negotiator
	Pump       loop.Pump
	Idle       loop.IdlePolicy

	// Presenter shows startup errors when the configuration asks for it
	Presenter Presenter
}

// Run creates the window, negotiates the device, binds the back buffer and
// pumps messages until quit. It returns the quit payload, or ExitFailure
// when a stage fails before the loop starts.
func (s *Startup) Run(instance uintptr, showFlags int) int {
	desc, err := s.Surface.RegisterAndCreate(instance, s.Config.Window.Title, s.Config.Window.Rect, showFlags)
	if err != nil {
		return s.fail("window", err)
	}

	bundle, err := s.Negotiator.Negotiate(desc.Handle, desc.ClientWidth, desc.ClientHeight)
	if err != nil {
		return s.fail("device", err)
	}

	bound, err := device.Bind(bundle, desc.ClientWidth, desc.ClientHeight)
	if err != nil {
		bundle.Release()
		return s.fail("render target", err)
	}
	// bound shares the device with bundle and releases it
	defer bound.Release()

	log.WithFields(log.Fields{
		"driver": bound.Driver,
		"level":  bound.Level,
	}).Info("Startup complete")

	return loop.Run(s.Pump, s.Idle)
}

func (s *Startup) fail(stage string, err error) int {
	entry := log.WithField("stage", stage).WithError(err)
	var derr *device.Error
	if errors.As(err, &derr) {
		for _, a := range derr.Attempts {
			entry.Debug("Attempt " + a.String())
		}
	}
	entry.Error("Startup failed")

	if s.Config.Startup.ShowDialogOnError && s.Presenter != nil {
		s.Presenter.Present(Caption, ErrorText(err))
	}
	return ExitFailure
}

// ErrorText maps a startup error to the text shown to the user
func ErrorText(err error) string {
	var werr *window.Error
	if errors.As(err, &werr) {
		return werr.Kind.Message()
	}
	var derr *device.Error
	if errors.As(err, &derr) {
		return derr.Kind.Message()
	}
	return unknownError
}
