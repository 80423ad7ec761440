// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import "github.com/devblok/hellosurface/core"

// Bundle is a negotiated device with its context and swapchain, and
// once bound, the back buffer render target and viewport.
type Bundle struct {
	Driver DriverType

	// Level is the granted level, possibly lower than requested
	Level FeatureLevel

	Device    Device
	Context   Context
	SwapChain SwapChain

	// RenderTarget is set only after the back buffer was retrieved
	RenderTarget RenderTargetView
	Viewport     Viewport
}

// Valid reports whether device, context and swapchain are all present
func (b *Bundle) Valid() bool {
	return b != nil && b.Device != nil && b.Context != nil && b.SwapChain != nil
}

// Release releases everything the bundle owns, in reverse creation order
func (b *Bundle) Release() {
	if b == nil {
		return
	}
	core.ReleaseAll(b.RenderTarget, b.SwapChain, b.Context, b.Device)
	*b = Bundle{}
}

// ReleaseTarget releases only the render target, for bundles returned by
// Bind that share their device with another bundle.
func (b *Bundle) ReleaseTarget() {
	if b == nil {
		return
	}
	core.ReleaseAll(b.RenderTarget)
	b.RenderTarget = nil
}
