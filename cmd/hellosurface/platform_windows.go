// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"github.com/devblok/hellosurface/app"
	"github.com/devblok/hellosurface/core"
	"github.com/devblok/hellosurface/device/d3d11"
	"github.com/devblok/hellosurface/loop"
	"github.com/devblok/hellosurface/window"
	"golang.org/x/sys/windows"
)

// SW_SHOWDEFAULT
const swShowDefault = 10

func newPlatform(cfg core.Configuration) (*platform, error) {
	var instance windows.Handle
	if err := windows.GetModuleHandleEx(0, nil, &instance); err != nil {
		return nil, err
	}

	return &platform{
		instance:  uintptr(instance),
		showFlags: swShowDefault,
		windows:   window.NewWin32(),
		backend:   d3d11.New(cfg.Device.Debug),
		levels:    d3d11.DefaultLevels,
		pump:      loop.NewWin32(),
		presenter: app.MessageBox{},
		release:   func() {},
	}, nil
}
