// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package loop

import (
	"fmt"
	"runtime"
	"time"

	"github.com/devblok/hellosurface/core"
)

// IdlePolicy decides what the loop does while the queue is empty
type IdlePolicy interface {
	Idle()
}

type spin struct{}

func (spin) Idle() {}

type yield struct{}

func (yield) Idle() {
	runtime.Gosched()
}

// Idle policies without state
var (
	// Spin returns at once and polls again
	Spin IdlePolicy = spin{}

	// Yield lets other goroutines run before polling again
	Yield IdlePolicy = yield{}
)

// Sleep waits a fixed delay before polling again
type Sleep time.Duration

// Idle implements IdlePolicy
func (s Sleep) Idle() {
	time.Sleep(time.Duration(s))
}

// NewTicker waits for the next frame tick of t
func NewTicker(t *core.Time) *Ticker {
	return &Ticker{time: t}
}

// Ticker paces polling to the frame rate of a time service
type Ticker struct {
	time *core.Time
}

// Idle implements IdlePolicy
func (t *Ticker) Idle() {
	<-t.time.FpsTicker().C
}

// Release stops the time service
func (t *Ticker) Release() {
	t.time.Release()
}

// NewIdlePolicy builds the configured policy. A ticker policy holds a
// time service, release it once the loop is done.
func NewIdlePolicy(cfg core.LoopConfiguration, tc core.TimeConfiguration) (IdlePolicy, error) {
	switch cfg.Idle {
	case "", "yield":
		return Yield, nil
	case "spin":
		return Spin, nil
	case "sleep":
		delay := time.Duration(cfg.IdleDelay) * time.Millisecond
		if delay <= 0 {
			delay = time.Millisecond
		}
		return Sleep(delay), nil
	case "ticker":
		return NewTicker(core.NewTime(tc)), nil
	}
	return nil, fmt.Errorf("loop: unknown idle policy %q", cfg.Idle)
}
