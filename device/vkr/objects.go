// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"errors"
	"fmt"
	"math"

	"github.com/devblok/hellosurface/device"
	vk "github.com/devblok/vulkan"
	glm "github.com/go-gl/mathgl/mgl32"
)

// Device owns the instance, surface and logical device
type Device struct {
	s        *shared
	released bool
}

// CreateRenderTargetView implements device.Device. The view comes with a
// render pass that clears the image and leaves it ready for presentation.
func (d *Device) CreateRenderTargetView(t device.Texture) (device.RenderTargetView, error) {
	tex, ok := t.(*Texture)
	if !ok || tex.image == nil {
		return nil, errors.New("vkr: not a swapchain image")
	}
	s := d.s
	rtv := &RenderTargetView{s: s, index: tex.index}

	ivci := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    tex.image,
		ViewType: vk.ImageViewType2d,
		Format:   s.format,
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleIdentity,
			G: vk.ComponentSwizzleIdentity,
			B: vk.ComponentSwizzleIdentity,
			A: vk.ComponentSwizzleIdentity,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LevelCount: 1,
			LayerCount: 1,
		},
	}
	if err := vk.Error(vk.CreateImageView(s.device, &ivci, nil, &rtv.view)); err != nil {
		return nil, errors.New("vk.CreateImageView(): " + err.Error())
	}

	attachments := []vk.AttachmentDescription{{
		Format:         s.format,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutPresentSrc,
	}}
	colorAttachmentRef := []vk.AttachmentReference{{
		Attachment: 0,
		Layout:     vk.ImageLayoutColorAttachmentOptimal,
	}}
	subpassDependency := vk.SubpassDependency{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentWriteBit),
	}
	rpci := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    1,
		PSubpasses: []vk.SubpassDescription{{
			PipelineBindPoint:    vk.PipelineBindPointGraphics,
			ColorAttachmentCount: uint32(len(colorAttachmentRef)),
			PColorAttachments:    colorAttachmentRef,
		}},
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{subpassDependency},
	}
	if err := vk.Error(vk.CreateRenderPass(s.device, &rpci, nil, &rtv.renderPass)); err != nil {
		rtv.Release()
		return nil, errors.New("vk.CreateRenderPass(): " + err.Error())
	}

	fci := vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      rtv.renderPass,
		AttachmentCount: 1,
		PAttachments:    []vk.ImageView{rtv.view},
		Width:           s.extent.Width,
		Height:          s.extent.Height,
		Layers:          1,
	}
	if err := vk.Error(vk.CreateFramebuffer(s.device, &fci, nil, &rtv.framebuffer)); err != nil {
		rtv.Release()
		return nil, errors.New("vk.CreateFramebuffer(): " + err.Error())
	}
	return rtv, nil
}

// Release implements device.Device
func (d *Device) Release() {
	if d.released {
		return
	}
	d.released = true
	d.s.destroy()
}

func newContext(s *shared) (*Context, error) {
	cpci := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: s.queueFamily,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}
	c := &Context{s: s}
	if err := vk.Error(vk.CreateCommandPool(s.device, &cpci, nil, &c.pool)); err != nil {
		return nil, errors.New("vk.CreateCommandPool(): " + err.Error())
	}

	cbai := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        c.pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}
	commandBuffers := make([]vk.CommandBuffer, 1)
	if err := vk.Error(vk.AllocateCommandBuffers(s.device, &cbai, commandBuffers)); err != nil {
		vk.DestroyCommandPool(s.device, c.pool, nil)
		return nil, errors.New("vk.AllocateCommandBuffers(): " + err.Error())
	}
	c.commandBuffer = commandBuffers[0]
	return c, nil
}

// Context records into a single primary command buffer
type Context struct {
	s             *shared
	pool          vk.CommandPool
	commandBuffer vk.CommandBuffer
	released      bool

	targets  []*RenderTargetView
	viewport vk.Viewport
}

// OMSetRenderTargets implements device.Context
func (c *Context) OMSetRenderTargets(views []device.RenderTargetView) {
	c.targets = c.targets[:0]
	for _, v := range views {
		if rtv, ok := v.(*RenderTargetView); ok {
			c.targets = append(c.targets, rtv)
		}
	}
}

// RSSetViewports implements device.Context. Only the first viewport is kept.
func (c *Context) RSSetViewports(viewports []device.Viewport) {
	if len(viewports) == 0 {
		return
	}
	v := viewports[0]
	c.viewport = vk.Viewport{
		X:        v.TopLeftX,
		Y:        v.TopLeftY,
		Width:    v.Width,
		Height:   v.Height,
		MinDepth: v.MinDepth,
		MaxDepth: v.MaxDepth,
	}
}

// ClearRenderTargetView implements device.Context by running the view's
// render pass with the color as its clear value.
func (c *Context) ClearRenderTargetView(view device.RenderTargetView, color glm.Vec4) {
	rtv, ok := view.(*RenderTargetView)
	if !ok || rtv.framebuffer == nil {
		return
	}
	s := c.s

	vk.WaitForFences(s.device, 1, []vk.Fence{s.fence}, vk.True, math.MaxUint64)
	vk.ResetFences(s.device, 1, []vk.Fence{s.fence})

	vk.ResetCommandBuffer(c.commandBuffer, 0)
	cbbi := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	}
	if err := vk.Error(vk.BeginCommandBuffer(c.commandBuffer, &cbbi)); err != nil {
		return
	}

	clearValues := make([]vk.ClearValue, 1)
	clearValues[0].SetColor([]float32{color[0], color[1], color[2], color[3]})

	rpbi := vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  rtv.renderPass,
		Framebuffer: rtv.framebuffer,
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: s.extent,
		},
		ClearValueCount: 1,
		PClearValues:    clearValues,
	}
	vk.CmdBeginRenderPass(c.commandBuffer, &rpbi, vk.SubpassContentsInline)
	vk.CmdEndRenderPass(c.commandBuffer)

	if err := vk.Error(vk.EndCommandBuffer(c.commandBuffer)); err != nil {
		return
	}

	submit := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{c.commandBuffer},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{s.renderFinished},
	}
	if s.acquired {
		submit.WaitSemaphoreCount = 1
		submit.PWaitSemaphores = []vk.Semaphore{s.imageAvailable}
		submit.PWaitDstStageMask = []vk.PipelineStageFlags{
			vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		}
	}
	if err := vk.Error(vk.QueueSubmit(s.queue, 1, []vk.SubmitInfo{submit}, s.fence)); err == nil {
		s.submitted = true
	}
}

// Release implements device.Context
func (c *Context) Release() {
	if c.released {
		return
	}
	c.released = true
	c.s.waitIdle()
	vk.FreeCommandBuffers(c.s.device, c.pool, 1, []vk.CommandBuffer{c.commandBuffer})
	vk.DestroyCommandPool(c.s.device, c.pool, nil)
	c.targets = nil
}

func newSwapChain(s *shared, desc device.SwapChainDesc) (*SwapChain, error) {
	var surfaceCapabilities vk.SurfaceCapabilities
	if err := vk.Error(vk.GetPhysicalDeviceSurfaceCapabilities(s.gpu, s.surface, &surfaceCapabilities)); err != nil {
		return nil, errors.New("vk.GetPhysicalDeviceSurfaceCapabilities(): " + err.Error())
	}
	surfaceCapabilities.Deref()
	surfaceCapabilities.CurrentExtent.Deref()

	var formatCount uint32
	if err := vk.Error(vk.GetPhysicalDeviceSurfaceFormats(s.gpu, s.surface, &formatCount, nil)); err != nil {
		return nil, errors.New("vk.GetPhysicalDeviceSurfaceFormats(): " + err.Error())
	}
	formats := make([]vk.SurfaceFormat, formatCount)
	if err := vk.Error(vk.GetPhysicalDeviceSurfaceFormats(s.gpu, s.surface, &formatCount, formats)); err != nil {
		return nil, errors.New("vk.GetPhysicalDeviceSurfaceFormats(): " + err.Error())
	}
	for i := range formats {
		formats[i].Deref()
	}
	format, ok := pickFormat(formats, nativeFormat(desc.Format))
	if !ok {
		return nil, errors.New("vkr: surface offers no formats")
	}

	compositeAlpha := vk.CompositeAlphaOpaqueBit
	for _, flag := range []vk.CompositeAlphaFlagBits{
		vk.CompositeAlphaOpaqueBit,
		vk.CompositeAlphaPreMultipliedBit,
		vk.CompositeAlphaPostMultipliedBit,
		vk.CompositeAlphaInheritBit,
	} {
		if surfaceCapabilities.SupportedCompositeAlpha&vk.CompositeAlphaFlags(flag) != 0 {
			compositeAlpha = flag
			break
		}
	}

	s.format = format.Format
	s.extent = swapchainExtent(surfaceCapabilities.CurrentExtent, desc)

	scci := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          s.surface,
		MinImageCount:    imageCount(desc.BufferCount, surfaceCapabilities.MinImageCount, surfaceCapabilities.MaxImageCount),
		ImageFormat:      format.Format,
		ImageColorSpace:  format.ColorSpace,
		ImageExtent:      s.extent,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		PreTransform:     vk.SurfaceTransformIdentityBit,
		CompositeAlpha:   compositeAlpha,
		PresentMode:      vk.PresentModeFifo,
		Clipped:          vk.True,
		ImageArrayLayers: 1,
		ImageSharingMode: vk.SharingModeExclusive,
	}

	sc := &SwapChain{s: s}
	if err := vk.Error(vk.CreateSwapchain(s.device, &scci, nil, &sc.swapchain)); err != nil {
		return nil, errors.New("vk.CreateSwapchain(): " + err.Error())
	}

	var numImages uint32
	if err := vk.Error(vk.GetSwapchainImages(s.device, sc.swapchain, &numImages, nil)); err != nil {
		sc.Release()
		return nil, errors.New("vk.GetSwapchainImages(num): " + err.Error())
	}
	sc.images = make([]vk.Image, numImages)
	if err := vk.Error(vk.GetSwapchainImages(s.device, sc.swapchain, &numImages, sc.images)); err != nil {
		sc.Release()
		return nil, errors.New("vk.GetSwapchainImages(images): " + err.Error())
	}
	return sc, nil
}

// SwapChain is a VkSwapchainKHR. Buffer 0 is always the image acquired
// for the frame being drawn.
type SwapChain struct {
	s         *shared
	swapchain vk.Swapchain
	images    []vk.Image
	released  bool
}

// GetBuffer implements device.SwapChain
func (sc *SwapChain) GetBuffer(index int) (device.Texture, error) {
	if index != 0 {
		return nil, fmt.Errorf("vkr: only the current back buffer can be accessed, not %d", index)
	}
	s := sc.s
	if !s.acquired {
		var imageIndex uint32
		result := vk.AcquireNextImage(s.device, sc.swapchain, math.MaxUint64, s.imageAvailable, nil, &imageIndex)
		if err := vk.Error(result); err != nil {
			return nil, errors.New("vk.AcquireNextImage(): " + err.Error())
		}
		s.imageIndex = imageIndex
		s.acquired = true
	}
	if int(s.imageIndex) >= len(sc.images) {
		return nil, fmt.Errorf("vkr: acquired image %d out of %d", s.imageIndex, len(sc.images))
	}
	return &Texture{image: sc.images[s.imageIndex], index: s.imageIndex}, nil
}

// Present implements device.SwapChain. The swapchain presents in FIFO
// mode, syncInterval and flags are not used.
func (sc *SwapChain) Present(syncInterval, flags uint32) error {
	s := sc.s
	if !s.acquired {
		return errors.New("vkr: no image acquired")
	}
	presentInfo := vk.PresentInfo{
		SType:          vk.StructureTypePresentInfo,
		SwapchainCount: 1,
		PSwapchains:    []vk.Swapchain{sc.swapchain},
		PImageIndices:  []uint32{s.imageIndex},
	}
	if s.submitted {
		presentInfo.WaitSemaphoreCount = 1
		presentInfo.PWaitSemaphores = []vk.Semaphore{s.renderFinished}
	}

	s.acquired = false
	s.submitted = false
	if err := vk.Error(vk.QueuePresent(s.queue, &presentInfo)); err != nil {
		return errors.New("vk.QueuePresent(): " + err.Error())
	}
	return nil
}

// Release implements device.SwapChain
func (sc *SwapChain) Release() {
	if sc.released {
		return
	}
	sc.released = true
	sc.s.waitIdle()
	vk.DestroySwapchain(sc.s.device, sc.swapchain, nil)
	sc.images = nil
}

// Texture is a swapchain image, owned by the swapchain
type Texture struct {
	image vk.Image
	index uint32
}

// Release implements device.Texture
func (t *Texture) Release() {
	t.image = nil
}

// RenderTargetView is an image view with its render pass and framebuffer
type RenderTargetView struct {
	s           *shared
	index       uint32
	view        vk.ImageView
	renderPass  vk.RenderPass
	framebuffer vk.Framebuffer
}

// Release implements device.RenderTargetView
func (r *RenderTargetView) Release() {
	s := r.s
	if s == nil {
		return
	}
	s.waitIdle()
	if r.framebuffer != nil {
		vk.DestroyFramebuffer(s.device, r.framebuffer, nil)
	}
	if r.renderPass != nil {
		vk.DestroyRenderPass(s.device, r.renderPass, nil)
	}
	if r.view != nil {
		vk.DestroyImageView(s.device, r.view, nil)
	}
	r.s = nil
}
