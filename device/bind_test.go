// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device_test

import (
	"errors"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/devblok/hellosurface/device"
	"github.com/devblok/hellosurface/device/devicetest"
	glm "github.com/go-gl/mathgl/mgl32"
)

func negotiated(c *qt.C, b *devicetest.Backend, width, height int) *device.Bundle {
	bundle, err := device.NewNegotiator(b, nil, nil).Negotiate(testHandle, width, height)
	c.Assert(err, qt.IsNil)
	return bundle
}

func TestBind(t *testing.T) {
	c := qt.New(t)
	b := &devicetest.Backend{}
	bundle := negotiated(c, b, 800, 600)

	bound, err := device.Bind(bundle, 800, 600)
	c.Assert(err, qt.IsNil)
	c.Assert(bound.RenderTarget, qt.Not(qt.IsNil))
	c.Assert(bundle.RenderTarget, qt.IsNil)
	c.Assert(bound.Viewport, qt.Equals, device.Viewport{Width: 800, Height: 600, MaxDepth: 1})

	ctx := bound.Context.(*devicetest.Context)
	c.Assert(ctx.Targets, qt.HasLen, 1)
	c.Assert(ctx.Targets[0], qt.Equals, bound.RenderTarget)
	c.Assert(ctx.Viewports, qt.DeepEquals, []device.Viewport{bound.Viewport})
	c.Assert(ctx.Clears, qt.DeepEquals, []glm.Vec4{{0.3, 0.5, 0.6, 0.0}})
	c.Assert(ctx.Cleared, qt.Equals, bound.RenderTarget)
	c.Assert(bound.RenderTarget.(*devicetest.View).Buffer, qt.Equals, 0)

	sc := bound.SwapChain.(*devicetest.SwapChain)
	c.Assert(sc.Presents, qt.DeepEquals, []devicetest.Present{{SyncInterval: 0, Flags: 0}})

	// device, context, swapchain and the view; the back buffer is released
	c.Assert(b.Live, qt.Equals, 4)
	bound.Release()
	c.Assert(b.Live, qt.Equals, 0)
}

func TestBindViewportMatchesClientArea(t *testing.T) {
	c := qt.New(t)
	for _, size := range [][2]int{{1, 1}, {784, 561}, {1920, 1080}} {
		b := &devicetest.Backend{}
		bound, err := device.Bind(negotiated(c, b, size[0], size[1]), size[0], size[1])
		c.Assert(err, qt.IsNil)
		c.Assert(bound.Viewport.TopLeftX, qt.Equals, float32(0))
		c.Assert(bound.Viewport.TopLeftY, qt.Equals, float32(0))
		c.Assert(bound.Viewport.Width, qt.Equals, float32(size[0]))
		c.Assert(bound.Viewport.Height, qt.Equals, float32(size[1]))
		c.Assert(bound.Viewport.MinDepth, qt.Equals, float32(0))
		c.Assert(bound.Viewport.MaxDepth, qt.Equals, float32(1))
		bound.Release()
	}
}

func TestBindTwice(t *testing.T) {
	c := qt.New(t)
	b := &devicetest.Backend{}
	bundle := negotiated(c, b, 800, 600)

	first, err := device.Bind(bundle, 800, 600)
	c.Assert(err, qt.IsNil)
	second, err := device.Bind(bundle, 800, 600)
	c.Assert(err, qt.IsNil)

	c.Assert(second.Viewport, qt.Equals, first.Viewport)
	ctx := bundle.Context.(*devicetest.Context)
	c.Assert(ctx.Clears, qt.HasLen, 2)
	c.Assert(ctx.Clears[0], qt.Equals, ctx.Clears[1])
	c.Assert(ctx.Targets, qt.HasLen, 1)
	c.Assert(ctx.Targets[0], qt.Equals, second.RenderTarget)

	first.ReleaseTarget()
	second.ReleaseTarget()
	bundle.Release()
	c.Assert(b.Live, qt.Equals, 0)
}

func TestBindBackBufferFailures(t *testing.T) {
	tests := []struct {
		name    string
		backend *devicetest.Backend
	}{
		{"NoBackBuffers", &devicetest.Backend{NoBackBuffers: true}},
		{"GetBuffer", &devicetest.Backend{FailGetBuffer: devicetest.ErrFailed}},
		{"RenderTargetView", &devicetest.Backend{FailView: devicetest.ErrFailed}},
		{"GetBufferWithTexture", &devicetest.Backend{FailGetBuffer: devicetest.ErrFailed, Partial: true}},
		{"RenderTargetViewWithView", &devicetest.Backend{FailView: devicetest.ErrFailed, Partial: true}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := qt.New(t)
			bundle := negotiated(c, test.backend, 800, 600)

			bound, err := device.Bind(bundle, 800, 600)
			c.Assert(bound, qt.IsNil)

			var derr *device.Error
			c.Assert(errors.As(err, &derr), qt.IsTrue)
			c.Assert(derr.Kind, qt.Equals, device.BackBufferError)
			c.Assert(derr.Kind.Message(), qt.Equals, "D3D backBuffer error!")

			ctx := bundle.Context.(*devicetest.Context)
			c.Assert(ctx.Clears, qt.HasLen, 0)
			c.Assert(test.backend.Live, qt.Equals, 3)

			bundle.Release()
			c.Assert(test.backend.Live, qt.Equals, 0)
		})
	}
}

func TestBindPresentFailureKeepsTarget(t *testing.T) {
	c := qt.New(t)
	b := &devicetest.Backend{FailPresent: devicetest.ErrFailed}

	bound, err := device.Bind(negotiated(c, b, 800, 600), 800, 600)
	c.Assert(err, qt.IsNil)
	c.Assert(bound.RenderTarget, qt.Not(qt.IsNil))
	bound.Release()
}

func TestBindInvalidBundle(t *testing.T) {
	c := qt.New(t)

	_, err := device.Bind(nil, 800, 600)
	var derr *device.Error
	c.Assert(errors.As(err, &derr), qt.IsTrue)
	c.Assert(derr.Kind, qt.Equals, device.BackBufferError)

	b := &devicetest.Backend{}
	bundle := negotiated(c, b, 800, 600)
	_, err = device.Bind(bundle, 0, 600)
	c.Assert(errors.As(err, &derr), qt.IsTrue)
	c.Assert(derr.Kind, qt.Equals, device.InvalidClientArea)
	bundle.Release()
}

func TestBundleReleaseTwice(t *testing.T) {
	c := qt.New(t)
	b := &devicetest.Backend{}
	bundle := negotiated(c, b, 800, 600)

	bundle.Release()
	bundle.Release()
	c.Assert(b.Live, qt.Equals, 0)
	c.Assert(bundle.Valid(), qt.IsFalse)
}
