// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/gobuffalo/envy"

	"github.com/devblok/hellosurface/core"
)

func TestLoadConfigurationDefaults(t *testing.T) {
	c := qt.New(t)

	cfg, err := core.LoadConfiguration()
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Window.ClassName, qt.Equals, "DX Windowd Class")
	c.Assert(cfg.Window.Title, qt.Equals, "DX11 Hello!")
	c.Assert(cfg.Window.Rect, qt.Equals, core.Rect{Left: 0, Top: 0, Right: 800, Bottom: 600})
	c.Assert(cfg.Window.Procedure, qt.IsTrue)
	c.Assert(cfg.Device.Drivers, qt.DeepEquals, []string{"hardware"})
	c.Assert(cfg.Device.Levels, qt.HasLen, 0)
	c.Assert(cfg.Startup.ShowDialogOnError, qt.IsTrue)
	c.Assert(cfg.Startup.Presenter, qt.Equals, "")
	c.Assert(cfg.Loop.Idle, qt.Equals, "yield")
	c.Assert(cfg.Time.FramesPerSecond, qt.Equals, 60)
}

func TestLoadConfigurationOverlay(t *testing.T) {
	c := qt.New(t)

	dir, err := ioutil.TempDir("", "hellosurface")
	c.Assert(err, qt.IsNil)
	defer os.RemoveAll(dir)

	file := filepath.Join(dir, "small.env")
	c.Assert(ioutil.WriteFile(file, []byte(`
WINDOW_RECT=0,0,640,480
DEVICE_DRIVERS=hardware, warp ,reference
DEVICE_LEVELS=11_0,10_1
STARTUP_SHOW_DIALOG=false
`), 0644), qt.IsNil)

	cfg, err := core.LoadConfiguration(file)
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Window.Rect, qt.Equals, core.Rect{Right: 640, Bottom: 480})
	c.Assert(cfg.Window.Rect.Width(), qt.Equals, int32(640))
	c.Assert(cfg.Window.Rect.Height(), qt.Equals, int32(480))
	c.Assert(cfg.Device.Drivers, qt.DeepEquals, []string{"hardware", "warp", "reference"})
	c.Assert(cfg.Device.Levels, qt.DeepEquals, []string{"11_0", "10_1"})
	c.Assert(cfg.Startup.ShowDialogOnError, qt.IsFalse)
}

func TestLoadConfigurationEnvironmentWins(t *testing.T) {
	c := qt.New(t)

	envy.Temp(func() {
		envy.Set("WINDOW_TITLE", "from env")
		envy.Set("LOOP_IDLE", " Sleep ")
		envy.Set("STARTUP_PRESENTER", "SDL")
		cfg, err := core.LoadConfiguration()
		c.Assert(err, qt.IsNil)
		c.Assert(cfg.Window.Title, qt.Equals, "from env")
		c.Assert(cfg.Loop.Idle, qt.Equals, "sleep")
		c.Assert(cfg.Startup.Presenter, qt.Equals, "sdl")
	})
}

func TestLoadConfigurationErrors(t *testing.T) {
	for name, env := range map[string]map[string]string{
		"short rect":  {"WINDOW_RECT": "0,0,800"},
		"bad coord":   {"WINDOW_RECT": "0,0,wide,600"},
		"empty rect":  {"WINDOW_RECT": "10,10,10,600"},
		"bad bool":    {"WINDOW_PROC": "maybe"},
		"bad number":  {"TIME_FPS": "sixty"},
		"empty class": {"WINDOW_CLASS": " "},
	} {
		env := env
		t.Run(name, func(t *testing.T) {
			c := qt.New(t)
			envy.Temp(func() {
				for k, v := range env {
					envy.Set(k, v)
				}
				_, err := core.LoadConfiguration()
				c.Assert(err, qt.ErrorMatches, "core: .*")
			})
		})
	}
}

func TestLoadConfigurationMissingFile(t *testing.T) {
	c := qt.New(t)
	_, err := core.LoadConfiguration(filepath.Join(os.TempDir(), "hellosurface-missing.env"))
	c.Assert(err, qt.ErrorMatches, "core: .*hellosurface-missing.env: .*")
}
