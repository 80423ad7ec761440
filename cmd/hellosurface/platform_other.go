// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

//go:build !windows

package main

import (
	"github.com/devblok/hellosurface/app"
	"github.com/devblok/hellosurface/core"
	"github.com/devblok/hellosurface/device/vkr"
	"github.com/devblok/hellosurface/loop"
	"github.com/devblok/hellosurface/window"
	"github.com/veandco/go-sdl2/sdl"
)

// showFlags other than zero show the window
const showNormal = 1

func newPlatform(cfg core.Configuration) (*platform, error) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, err
	}
	if err := sdl.VulkanLoadLibrary(""); err != nil {
		sdl.Quit()
		return nil, err
	}

	windows := window.NewSDL(sdl.WINDOW_VULKAN)
	return &platform{
		showFlags: showNormal,
		windows:   windows,
		backend:   vkr.NewBackend(windows, cfg.Device.Debug),
		levels:    vkr.DefaultLevels,
		pump:      loop.NewSDL(nil),
		presenter: app.SDLMessageBox{},
		release: func() {
			windows.Release()
			sdl.VulkanUnloadLibrary()
			sdl.Quit()
		},
	}, nil
}
