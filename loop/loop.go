// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package loop runs the non-blocking message loop of a window.
package loop

import (
	log "github.com/sirupsen/logrus"
)

// Message is one message taken from a queue. Native holds the
// platform message, if any.
type Message struct {
	Quit   bool
	Code   int
	Native interface{}
}

// Pump is a platform message queue
type Pump interface {
	// Peek removes the next pending message without blocking
	Peek() (Message, bool)

	// Dispatch routes a non-quit message to its window
	Dispatch(Message)
}

// Run pumps messages until a quit message arrives and returns its code.
// idle is called whenever no message is pending.
func Run(p Pump, idle IdlePolicy) int {
	if idle == nil {
		idle = Spin
	}
	for {
		msg, ok := p.Peek()
		if !ok {
			idle.Idle()
			continue
		}
		if msg.Quit {
			log.WithField("code", msg.Code).Info("Event loop exited")
			return msg.Code
		}
		p.Dispatch(msg)
	}
}
