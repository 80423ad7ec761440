// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package loop

import (
	"github.com/veandco/go-sdl2/sdl"
)

// SDL pumps the SDL event queue. A quit event ends the loop with code 0.
type SDL struct {
	handler func(sdl.Event)
}

// NewSDL creates a pump. handler receives every other event, it may be nil.
func NewSDL(handler func(sdl.Event)) *SDL {
	return &SDL{handler: handler}
}

// Peek implements Pump with sdl.PollEvent
func (s *SDL) Peek() (Message, bool) {
	event := sdl.PollEvent()
	if event == nil {
		return Message{}, false
	}
	if _, ok := event.(*sdl.QuitEvent); ok {
		return Message{Quit: true, Code: 0, Native: event}, true
	}
	return Message{Native: event}, true
}

// Dispatch implements Pump
func (s *SDL) Dispatch(message Message) {
	event, ok := message.Native.(sdl.Event)
	if !ok || s.handler == nil {
		return
	}
	s.handler(event)
}
