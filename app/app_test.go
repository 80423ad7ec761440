// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package app_test

import (
	"errors"
	"fmt"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/devblok/hellosurface/app"
	"github.com/devblok/hellosurface/core"
	"github.com/devblok/hellosurface/device"
	"github.com/devblok/hellosurface/device/devicetest"
	"github.com/devblok/hellosurface/loop"
	"github.com/devblok/hellosurface/window"
	"github.com/devblok/hellosurface/window/windowtest"
)

type shown struct {
	Caption, Text string
}

type recorder struct {
	shown []shown
}

func (r *recorder) Present(caption, text string) {
	r.shown = append(r.shown, shown{caption, text})
}

// quitPump delivers one paint message, then quits with code
type quitPump struct {
	code       int
	polls      int
	dispatched int
}

func (p *quitPump) Peek() (loop.Message, bool) {
	p.polls++
	switch p.polls {
	case 1:
		return loop.Message{Native: "paint"}, true
	case 2:
		return loop.Message{}, false
	}
	return loop.Message{Quit: true, Code: p.code}, true
}

func (p *quitPump) Dispatch(loop.Message) {
	p.dispatched++
}

func testConfig() core.Configuration {
	return core.Configuration{
		Window: core.WindowConfiguration{
			ClassName:   "DX Windowd Class",
			Title:       "DX11 Hello!",
			Rect:        core.Rect{Right: 800, Bottom: 600},
			Procedure:   true,
			QuitOnClose: true,
		},
		Startup: core.StartupConfiguration{ShowDialogOnError: true},
	}
}

type fixture struct {
	platform  *windowtest.Platform
	backend   *devicetest.Backend
	presenter *recorder
	pump      *quitPump
	startup   *app.Startup
}

func newFixture(cfg core.Configuration, drivers ...device.DriverType) *fixture {
	f := &fixture{
		platform:  windowtest.New(),
		backend:   &devicetest.Backend{},
		presenter: &recorder{},
		pump:      &quitPump{code: 42},
	}
	f.startup = &app.Startup{
		Config:     cfg,
		Surface:    window.NewSurface(f.platform, cfg.Window),
		Negotiator: device.NewNegotiator(f.backend, drivers, nil),
		Pump:       f.pump,
		Idle:       loop.Spin,
		Presenter:  f.presenter,
	}
	return f
}

func TestStartupSucceeds(t *testing.T) {
	c := qt.New(t)
	f := newFixture(testConfig())

	code := f.startup.Run(0x400000, 10)
	c.Assert(code, qt.Equals, 42)
	c.Assert(f.presenter.shown, qt.HasLen, 0)
	c.Assert(f.pump.dispatched, qt.Equals, 1)

	c.Assert(f.platform.Windows, qt.HasLen, 1)
	w := f.platform.Windows[1]
	c.Assert(w.Title, qt.Equals, "DX11 Hello!")
	c.Assert(w.Rect, qt.Equals, core.Rect{Right: 800, Bottom: 600})
	c.Assert(w.Style, qt.Equals, window.StyleSysMenu|window.StyleSizeBox)
	c.Assert(w.ShowFlags, qt.Equals, 10)
	c.Assert(w.Updates, qt.Equals, 1)

	c.Assert(f.backend.Calls, qt.HasLen, 1)
	call := f.backend.Calls[0]
	c.Assert(call.Driver, qt.Equals, device.Hardware)
	c.Assert(call.Levels, qt.DeepEquals, device.DefaultLevels)
	c.Assert(call.Desc.Window, qt.Equals, window.Handle(1))
	c.Assert(call.Desc.Width, qt.Equals, uint32(800))
	c.Assert(call.Desc.Height, qt.Equals, uint32(600))

	// everything is released once the loop is done
	c.Assert(f.backend.Live, qt.Equals, 0)
}

func TestStartupRegistrationFails(t *testing.T) {
	c := qt.New(t)
	cfg := testConfig()
	f := newFixture(cfg)
	_, err := f.platform.RegisterClass(0x400000, window.Class{Name: cfg.Window.ClassName})
	c.Assert(err, qt.IsNil)

	code := f.startup.Run(0x400000, 10)
	c.Assert(code, qt.Equals, app.ExitFailure)
	c.Assert(f.presenter.shown, qt.DeepEquals, []shown{{"error!", "Failed registering window class!"}})
	c.Assert(f.backend.Calls, qt.HasLen, 0)
	c.Assert(f.pump.polls, qt.Equals, 0)
}

func TestStartupNarrowedRetry(t *testing.T) {
	c := qt.New(t)
	f := newFixture(testConfig(), device.Hardware, device.Warp)
	f.backend.Reject = []device.FeatureLevel{device.Level11_1}

	code := f.startup.Run(0x400000, 10)
	c.Assert(code, qt.Equals, 42)
	c.Assert(f.presenter.shown, qt.HasLen, 0)

	c.Assert(f.backend.Calls, qt.HasLen, 2)
	retry := f.backend.Calls[1]
	c.Assert(retry.Driver, qt.Equals, device.Hardware)
	c.Assert(retry.Levels, qt.DeepEquals, []device.FeatureLevel{device.Level11_0, device.Level10_1, device.Level10_0})
}

func TestStartupAllDevicesFail(t *testing.T) {
	c := qt.New(t)
	f := newFixture(testConfig(), device.Hardware, device.Warp, device.Reference)
	f.backend.Fail = map[device.DriverType]error{
		device.Hardware:  devicetest.ErrFailed,
		device.Warp:      devicetest.ErrFailed,
		device.Reference: devicetest.ErrFailed,
	}

	code := f.startup.Run(0x400000, 10)
	c.Assert(code, qt.Equals, app.ExitFailure)
	c.Assert(f.presenter.shown, qt.DeepEquals, []shown{{"error!", "Failed creation D3D device and swapchain!"}})
	c.Assert(f.backend.Calls, qt.HasLen, 3)
	c.Assert(f.pump.polls, qt.Equals, 0)
	c.Assert(f.backend.Live, qt.Equals, 0)
}

func TestStartupBackBufferFails(t *testing.T) {
	c := qt.New(t)
	f := newFixture(testConfig())
	f.backend.NoBackBuffers = true

	code := f.startup.Run(0x400000, 10)
	c.Assert(code, qt.Equals, app.ExitFailure)
	c.Assert(f.presenter.shown, qt.DeepEquals, []shown{{"error!", "D3D backBuffer error!"}})
	c.Assert(f.backend.Live, qt.Equals, 0)
}

func TestStartupCreateWindowFails(t *testing.T) {
	c := qt.New(t)
	f := newFixture(testConfig())
	f.platform.FailCreate = true

	c.Assert(f.startup.Run(0x400000, 10), qt.Equals, app.ExitFailure)
	c.Assert(f.presenter.shown, qt.DeepEquals, []shown{{"error!", "Failed creation window instance!"}})
	c.Assert(f.backend.Calls, qt.HasLen, 0)
}

func TestStartupEmptyClientArea(t *testing.T) {
	c := qt.New(t)
	f := newFixture(testConfig())
	f.platform.ClientWidth = 0
	f.platform.ClientHeight = 1

	c.Assert(f.startup.Run(0x400000, 10), qt.Equals, app.ExitFailure)
	c.Assert(f.presenter.shown, qt.DeepEquals, []shown{{"error!", "Invalid window client area!"}})
	c.Assert(f.backend.Calls, qt.HasLen, 0)
}

func TestStartupWithoutDialog(t *testing.T) {
	c := qt.New(t)
	cfg := testConfig()
	cfg.Startup.ShowDialogOnError = false
	f := newFixture(cfg)
	f.platform.FailRegister = true

	c.Assert(f.startup.Run(0x400000, 10), qt.Equals, app.ExitFailure)
	c.Assert(f.presenter.shown, qt.HasLen, 0)
}

func TestErrorText(t *testing.T) {
	c := qt.New(t)
	tests := []struct {
		err  error
		text string
	}{
		{&window.Error{Kind: window.OK}, "OK"},
		{&window.Error{Kind: window.RegisterClassFailed}, "Failed registering window class!"},
		{&window.Error{Kind: window.CreateInstanceFailed}, "Failed creation window instance!"},
		{&window.Error{Kind: window.Kind(99)}, "Unknown error!"},
		{&device.Error{Kind: device.OK}, "OK"},
		{&device.Error{Kind: device.CreateDeviceAndSwapChainFailed}, "Failed creation D3D device and swapchain!"},
		{&device.Error{Kind: device.BackBufferError}, "D3D backBuffer error!"},
		{&device.Error{Kind: device.InvalidClientArea}, "Invalid window client area!"},
		{&device.Error{Kind: device.Kind(99)}, "Unknown error!"},
		{fmt.Errorf("startup: %w", &device.Error{Kind: device.BackBufferError}), "D3D backBuffer error!"},
		{errors.New("boom"), "Unknown error!"},
	}
	for _, test := range tests {
		c.Assert(app.ErrorText(test.err), qt.Equals, test.text, qt.Commentf("%v", test.err))
	}
}

func TestSilentPresenter(t *testing.T) {
	var p app.Presenter = app.Silent{}
	p.Present(app.Caption, "nothing to see")
}

func TestNewPresenter(t *testing.T) {
	c := qt.New(t)
	fallback := &recorder{}

	p, err := app.NewPresenter("", fallback)
	c.Assert(err, qt.IsNil)
	c.Assert(p, qt.Equals, app.Presenter(fallback))

	p, err = app.NewPresenter("native", fallback)
	c.Assert(err, qt.IsNil)
	c.Assert(p, qt.Equals, app.Presenter(app.NativeDialog{}))

	p, err = app.NewPresenter("silent", fallback)
	c.Assert(err, qt.IsNil)
	c.Assert(p, qt.Equals, app.Presenter(app.Silent{}))

	_, err = app.NewPresenter("toast", fallback)
	c.Assert(err, qt.ErrorMatches, `app: unknown presenter "toast"`)
}
