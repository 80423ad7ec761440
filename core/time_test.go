// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core_test

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/devblok/hellosurface/core"
)

func TestTimeTicks(t *testing.T) {
	c := qt.New(t)
	ts := core.NewTime(core.TimeConfiguration{FramesPerSecond: 500, EventPollDelay: 2})
	defer ts.Release()

	c.Assert(ts.Fps(), qt.Equals, 500)
	select {
	case <-ts.FpsTicker().C:
	case <-time.After(time.Second):
		c.Fatal("fps ticker did not tick")
	}
	select {
	case <-ts.EventTicker().C:
	case <-time.After(time.Second):
		c.Fatal("event ticker did not tick")
	}
}

func TestTimeUnlimited(t *testing.T) {
	c := qt.New(t)
	ts := core.NewTime(core.TimeConfiguration{})
	defer ts.Release()

	c.Assert(ts.Fps(), qt.Equals, 0)
	<-ts.FpsTicker().C
	<-ts.EventTicker().C
}

type counted struct {
	released *int
}

func (c counted) Release() {
	*c.released++
}

func TestReleaseAll(t *testing.T) {
	c := qt.New(t)
	var n int
	core.ReleaseAll(counted{&n}, nil, counted{&n})
	c.Assert(n, qt.Equals, 2)
}
