// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import (
	"fmt"
	"strings"
)

// Kind classifies device failures
type Kind int

// Device failure kinds
const (
	OK Kind = iota
	CreateDeviceAndSwapChainFailed
	BackBufferError
	InvalidClientArea
)

// Message is the user facing text for the kind.
func (k Kind) Message() string {
	switch k {
	case OK:
		return "OK"
	case BackBufferError:
		return "D3D backBuffer error!"
	case CreateDeviceAndSwapChainFailed:
		return "Failed creation D3D device and swapchain!"
	case InvalidClientArea:
		return "Invalid window client area!"
	}
	return "Unknown error!"
}

// AttemptRecord is one device creation call made during negotiation
type AttemptRecord struct {
	Driver DriverType
	Levels []FeatureLevel
	Err    error
}

func (a AttemptRecord) String() string {
	levels := make([]string, len(a.Levels))
	for i, l := range a.Levels {
		levels[i] = l.String()
	}
	if a.Err == nil {
		return fmt.Sprintf("%s [%s]: ok", a.Driver, strings.Join(levels, " "))
	}
	return fmt.Sprintf("%s [%s]: %s", a.Driver, strings.Join(levels, " "), a.Err)
}

// Error is a device stage failure. Driver is the last driver type
// attempted, for diagnostics only.
type Error struct {
	Kind     Kind
	Driver   DriverType
	Attempts []AttemptRecord
	Err      error
}

func (e *Error) Error() string {
	msg := "device: " + e.Kind.Message()
	if e.Err != nil {
		msg += " " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the last backend cause
func (e *Error) Unwrap() error {
	return e.Err
}
