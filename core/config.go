// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gobuffalo/envy"
	"github.com/gobuffalo/packr"
	"github.com/joho/godotenv"
)

const defaultsFile = "defaults.env"

// StaticResources holds the built-in configuration defaults.
var StaticResources = packr.NewBox("./resources")

// Configuration defines a global application configuration setting
type Configuration struct {
	Window  WindowConfiguration
	Device  DeviceConfiguration
	Loop    LoopConfiguration
	Time    TimeConfiguration
	Startup StartupConfiguration

	// LogLevel is a logrus level name
	LogLevel string
}

// Rect is a rectangle in screen pixels, right and bottom exclusive.
type Rect struct {
	Left, Top, Right, Bottom int32
}

// Width of the rectangle
func (r Rect) Width() int32 {
	return r.Right - r.Left
}

// Height of the rectangle
func (r Rect) Height() int32 {
	return r.Bottom - r.Top
}

func (r Rect) String() string {
	return fmt.Sprintf("{%d,%d,%d,%d}", r.Left, r.Top, r.Right, r.Bottom)
}

// WindowConfiguration is used to configure the window surface
type WindowConfiguration struct {
	// ClassName identifies the window class. Registering
	// the same name twice in one process fails.
	ClassName string
	Title     string
	Rect      Rect

	// Procedure wires the window procedure. When false the class
	// is registered with a null procedure.
	Procedure bool

	// QuitOnClose posts a quit message when the window is destroyed.
	// Has no effect without Procedure.
	QuitOnClose bool
}

// DeviceConfiguration is used to configure device negotiation
type DeviceConfiguration struct {
	// Drivers in priority order, by name
	Drivers []string

	// Levels in priority order, highest first, by name.
	// Empty means the backend default ladder.
	Levels []string

	// Debug requests debug layers from the backend
	Debug bool
}

// LoopConfiguration is used to configure the event loop
type LoopConfiguration struct {
	// Idle names the idle policy: spin, yield, sleep or ticker
	Idle string

	// IdleDelay is the sleep policy delay in milliseconds
	IdleDelay int
}

// TimeConfiguration is used to configure time services
type TimeConfiguration struct {
	// FramesPerSecond caps frames per second that is put out
	// To unlimit, set to 0
	FramesPerSecond int

	// EventPollDelay is the event ticker interval in milliseconds
	EventPollDelay int
}

// StartupConfiguration is used to configure the startup sequence
type StartupConfiguration struct {
	// ShowDialogOnError shows a modal error dialog before exiting
	// on a startup failure. When false the process exits silently.
	ShowDialogOnError bool

	// Presenter names the dialog used: native, sdl or win32.
	// Empty selects the platform default.
	Presenter string
}

// LoadConfiguration builds the configuration from the built-in defaults,
// then every given .env file in order, then the process environment.
func LoadConfiguration(files ...string) (Configuration, error) {
	defaults, err := StaticResources.FindString(defaultsFile)
	if err != nil {
		return Configuration{}, fmt.Errorf("core: defaults: %s", err)
	}

	values, err := godotenv.Unmarshal(defaults)
	if err != nil {
		return Configuration{}, fmt.Errorf("core: defaults: %s", err)
	}

	for _, file := range files {
		overlay, err := godotenv.Read(file)
		if err != nil {
			return Configuration{}, fmt.Errorf("core: %s: %s", file, err)
		}
		for k, v := range overlay {
			values[k] = v
		}
	}

	return parseConfiguration(func(key string) string {
		return envy.Get(key, values[key])
	})
}

func parseConfiguration(get func(string) string) (Configuration, error) {
	p := parser{get: get}

	cfg := Configuration{
		Window: WindowConfiguration{
			ClassName:   get("WINDOW_CLASS"),
			Title:       get("WINDOW_TITLE"),
			Rect:        p.rect("WINDOW_RECT"),
			Procedure:   p.bool("WINDOW_PROC"),
			QuitOnClose: p.bool("WINDOW_QUIT_ON_CLOSE"),
		},
		Device: DeviceConfiguration{
			Drivers: p.list("DEVICE_DRIVERS"),
			Levels:  p.list("DEVICE_LEVELS"),
			Debug:   p.bool("DEVICE_DEBUG"),
		},
		Loop: LoopConfiguration{
			Idle:      strings.ToLower(strings.TrimSpace(get("LOOP_IDLE"))),
			IdleDelay: p.int("LOOP_IDLE_DELAY"),
		},
		Time: TimeConfiguration{
			FramesPerSecond: p.int("TIME_FPS"),
			EventPollDelay:  p.int("TIME_EVENT_POLL_DELAY"),
		},
		Startup: StartupConfiguration{
			ShowDialogOnError: p.bool("STARTUP_SHOW_DIALOG"),
			Presenter:         strings.ToLower(strings.TrimSpace(get("STARTUP_PRESENTER"))),
		},
		LogLevel: get("LOG_LEVEL"),
	}
	if p.err != nil {
		return Configuration{}, p.err
	}

	if strings.TrimSpace(cfg.Window.ClassName) == "" {
		return Configuration{}, fmt.Errorf("core: WINDOW_CLASS must not be empty")
	}
	if cfg.Window.Rect.Width() < 1 || cfg.Window.Rect.Height() < 1 {
		return Configuration{}, fmt.Errorf("core: WINDOW_RECT %s is empty", cfg.Window.Rect)
	}
	return cfg, nil
}

// parser keeps the first conversion error
type parser struct {
	get func(string) string
	err error
}

func (p *parser) fail(key, value string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("core: %s=%q: %s", key, value, err)
	}
}

func (p *parser) bool(key string) bool {
	value := strings.TrimSpace(p.get(key))
	if value == "" {
		return false
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		p.fail(key, value, err)
	}
	return b
}

func (p *parser) int(key string) int {
	value := strings.TrimSpace(p.get(key))
	if value == "" {
		return 0
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		p.fail(key, value, err)
	}
	return i
}

func (p *parser) list(key string) []string {
	var items []string
	for _, item := range strings.Split(p.get(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func (p *parser) rect(key string) Rect {
	value := p.get(key)
	parts := strings.Split(value, ",")
	if len(parts) != 4 {
		p.fail(key, value, fmt.Errorf("want left,top,right,bottom"))
		return Rect{}
	}

	var coords [4]int32
	for i, part := range parts {
		n, err := strconv.ParseInt(strings.TrimSpace(part), 10, 32)
		if err != nil {
			p.fail(key, value, err)
			return Rect{}
		}
		coords[i] = int32(n)
	}
	return Rect{Left: coords[0], Top: coords[1], Right: coords[2], Bottom: coords[3]}
}
