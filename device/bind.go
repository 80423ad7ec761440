// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import (
	"errors"
	"fmt"

	glm "github.com/go-gl/mathgl/mgl32"
	log "github.com/sirupsen/logrus"
)

// ClearColor is the color the back buffer is cleared to once bound.
// Alpha is ignored by opaque back buffers.
var ClearColor = glm.Vec4{0.3, 0.5, 0.6, 0.0}

var errInvalidBundle = errors.New("bundle has no device, context or swapchain")

// Bind retrieves back buffer 0, derives a render target view from it, binds
// the view and a full client area viewport as the only outputs, clears the
// target to ClearColor and presents once without waiting for vertical sync.
//
// The returned bundle is a copy of b carrying its own render target view;
// b is left untouched. Binding the same bundle again yields the same
// visible state. A failure leaves nothing new allocated.
func Bind(b *Bundle, width, height int) (*Bundle, error) {
	if !b.Valid() {
		return nil, &Error{Kind: BackBufferError, Err: errInvalidBundle}
	}
	if width < 1 || height < 1 {
		return nil, &Error{
			Kind:   InvalidClientArea,
			Driver: b.Driver,
			Err:    fmt.Errorf("client area %dx%d", width, height),
		}
	}

	backBuffer, err := b.SwapChain.GetBuffer(0)
	if err == nil && backBuffer == nil {
		err = errors.New("swapchain returned no back buffer")
	}
	if err != nil {
		if backBuffer != nil {
			backBuffer.Release()
		}
		return nil, &Error{Kind: BackBufferError, Driver: b.Driver, Err: err}
	}

	view, err := b.Device.CreateRenderTargetView(backBuffer)
	backBuffer.Release()
	if err == nil && view == nil {
		err = errors.New("device returned no render target view")
	}
	if err != nil {
		if view != nil {
			view.Release()
		}
		return nil, &Error{Kind: BackBufferError, Driver: b.Driver, Err: err}
	}

	bound := *b
	bound.RenderTarget = view
	bound.Viewport = FullViewport(width, height)

	bound.Context.OMSetRenderTargets([]RenderTargetView{view})
	bound.Context.RSSetViewports([]Viewport{bound.Viewport})
	bound.Context.ClearRenderTargetView(view, ClearColor)

	if err := bound.SwapChain.Present(0, 0); err != nil {
		// The target stays bound, only this frame is lost.
		log.WithError(err).Warn("Initial present failed")
	}

	log.WithFields(log.Fields{
		"width":  width,
		"height": height,
	}).Debug("Render target bound")

	return &bound, nil
}
