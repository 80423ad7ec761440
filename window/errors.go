// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package window

import "errors"

// Kind classifies window failures
type Kind int

// Window failure kinds
const (
	OK Kind = iota
	RegisterClassFailed
	CreateInstanceFailed
)

var errNoHandle = errors.New("window: no handle returned")

// Message is the user facing text for the kind.
func (k Kind) Message() string {
	switch k {
	case OK:
		return "OK"
	case RegisterClassFailed:
		return "Failed registering window class!"
	case CreateInstanceFailed:
		return "Failed creation window instance!"
	}
	return "Unknown error!"
}

// Error is a window stage failure
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return "window: " + e.Kind.Message()
	}
	return "window: " + e.Kind.Message() + " " + e.Err.Error()
}

// Unwrap returns the platform cause
func (e *Error) Unwrap() error {
	return e.Err
}
