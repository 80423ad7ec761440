// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package vkr implements device.Backend with Vulkan on an SDL window.
//
// A feature level is the Vulkan API version requested from the instance.
// A loader that does not know the version answers VK_ERROR_INCOMPATIBLE_DRIVER,
// which is reported as device.ErrLevelsRejected. The granted level is the
// first requested one the selected physical device supports.
package vkr

import (
	"errors"
	"fmt"
	"sync"

	"github.com/devblok/hellosurface/device"
	"github.com/devblok/hellosurface/window"
	vk "github.com/devblok/vulkan"
	log "github.com/sirupsen/logrus"
	"github.com/veandco/go-sdl2/sdl"
)

// DefaultLevels is the Vulkan API version ladder
var DefaultLevels = []device.FeatureLevel{device.VulkanLevel1_1, device.VulkanLevel1_0}

// Debug layers and extensions
var (
	debugLayers     = []string{"VK_LAYER_KHRONOS_validation"}
	debugExtensions = []string{"VK_EXT_debug_report"}
)

var deviceExtensions = []string{vk.KhrSwapchainExtensionName}

// WindowSource resolves window handles to SDL windows, e.g. window.SDL
type WindowSource interface {
	Window(window.Handle) (*sdl.Window, bool)
}

// NewBackend creates a Vulkan backend. SDL must have loaded the Vulkan
// library before the first device is created.
func NewBackend(windows WindowSource, debug bool) *Backend {
	return &Backend{
		windows: windows,
		debug:   debug,
	}
}

// Backend creates Vulkan devices presenting to SDL windows
type Backend struct {
	windows WindowSource
	debug   bool

	initOnce sync.Once
	initErr  error
}

func (b *Backend) init() error {
	b.initOnce.Do(func() {
		vk.SetGetInstanceProcAddr(sdl.VulkanGetVkGetInstanceProcAddr())
		if err := vk.Init(); err != nil {
			b.initErr = errors.New("vk.Init(): " + err.Error())
		}
	})
	return b.initErr
}

// CreateDeviceAndSwapChain implements device.Backend
func (b *Backend) CreateDeviceAndSwapChain(driver device.DriverType, levels []device.FeatureLevel, desc device.SwapChainDesc) (device.Created, error) {
	if len(levels) == 0 {
		return device.Created{}, fmt.Errorf("vkr: empty feature level list: %w", device.ErrLevelsRejected)
	}
	for _, l := range levels {
		if !l.Vulkan() {
			return device.Created{}, fmt.Errorf("vkr: %s: %w", l, device.ErrLevelsRejected)
		}
	}
	types := deviceTypes(driver)
	if len(types) == 0 {
		return device.Created{}, fmt.Errorf("vkr: driver type %s has no Vulkan equivalent", driver)
	}

	win, ok := b.windows.Window(desc.Window)
	if !ok {
		return device.Created{}, fmt.Errorf("vkr: no window for handle %#x", uintptr(desc.Window))
	}
	if err := b.init(); err != nil {
		return device.Created{}, err
	}

	s := &shared{}
	dev := &Device{s: s}
	var created device.Created

	if err := s.createInstance(levels[0], win.VulkanGetInstanceExtensions(), b.debug); err != nil {
		return created, err
	}
	created.Device = dev

	surface, err := win.VulkanCreateSurface(s.instance)
	if err != nil {
		return created, errors.New("sdl.VulkanCreateSurface(): " + err.Error())
	}
	s.surface = vk.SurfaceFromPointer(uintptr(surface))

	gpu, apiVersion, err := s.selectPhysicalDevice(types)
	if err != nil {
		return created, err
	}
	granted, ok := grantLevel(levels, apiVersion)
	if !ok {
		return created, fmt.Errorf("vkr: device supports Vulkan %s only", versionString(apiVersion))
	}
	s.gpu = gpu

	if err := s.createLogicalDevice(); err != nil {
		return created, err
	}
	if err := s.createSynchronization(); err != nil {
		return created, err
	}

	swapchain, err := newSwapChain(s, desc)
	if err != nil {
		return created, err
	}
	created.SwapChain = swapchain

	ctx, err := newContext(s)
	if err != nil {
		return created, err
	}
	created.Context = ctx
	created.Level = granted

	log.WithFields(log.Fields{
		"driver": driver,
		"level":  granted,
		"device": s.gpuName,
	}).Debug("Vulkan device created")

	return created, nil
}

// shared is the device state the device, context and swapchain refer to
type shared struct {
	instance    vk.Instance
	surface     vk.Surface
	gpu         vk.PhysicalDevice
	gpuName     string
	device      vk.Device
	queue       vk.Queue
	queueFamily uint32

	format vk.Format
	extent vk.Extent2D

	imageAvailable vk.Semaphore
	renderFinished vk.Semaphore
	fence          vk.Fence

	imageIndex uint32
	acquired   bool
	submitted  bool
}

func (s *shared) createInstance(level device.FeatureLevel, extensions []string, debug bool) error {
	layers := []string{}
	if debug {
		layers = append(layers, debugLayers...)
		extensions = append(extensions, debugExtensions...)
	}

	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(level),
		ApplicationVersion: vk.MakeVersion(1, 0, 0),
		PApplicationName:   safeString("HelloSurface"),
		PEngineName:        safeString("HelloSurface"),
	}

	instanceInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        appInfo,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: safeStrings(extensions),
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     safeStrings(layers),
	}

	var instance vk.Instance
	result := vk.CreateInstance(&instanceInfo, nil, &instance)
	if result == vk.ErrorIncompatibleDriver {
		return fmt.Errorf("vk.CreateInstance(): Vulkan %s: %w", level, device.ErrLevelsRejected)
	}
	if err := vk.Error(result); err != nil {
		return errors.New("vk.CreateInstance(): " + err.Error())
	}
	vk.InitInstance(instance)
	s.instance = instance
	return nil
}

func (s *shared) selectPhysicalDevice(types []vk.PhysicalDeviceType) (vk.PhysicalDevice, uint32, error) {
	devices, err := enumerateDevices(s.instance)
	if err != nil {
		return nil, 0, err
	}

	for _, t := range types {
		for _, gpu := range devices {
			var props vk.PhysicalDeviceProperties
			vk.GetPhysicalDeviceProperties(gpu, &props)
			props.Deref()
			if props.DeviceType != t {
				continue
			}
			if _, ok := s.presentQueueFamily(gpu); !ok {
				continue
			}
			s.gpuName = vk.ToString(props.DeviceName[:])
			return gpu, props.ApiVersion, nil
		}
	}
	return nil, 0, fmt.Errorf("vkr: no %s device can present to the window", typeName(types[0]))
}

func enumerateDevices(instance vk.Instance) ([]vk.PhysicalDevice, error) {
	var deviceCount uint32
	if err := vk.Error(vk.EnumeratePhysicalDevices(instance, &deviceCount, nil)); err != nil {
		return nil, fmt.Errorf("vulkan physical device enumeration failed: %s", err)
	}
	availableDevices := make([]vk.PhysicalDevice, deviceCount)
	if err := vk.Error(vk.EnumeratePhysicalDevices(instance, &deviceCount, availableDevices)); err != nil {
		return nil, fmt.Errorf("vulkan physical device enumeration failed: %s", err)
	}
	return availableDevices, nil
}

// presentQueueFamily finds a graphics queue family that can present to the surface
func (s *shared) presentQueueFamily(gpu vk.PhysicalDevice) (uint32, bool) {
	var queueFamilyCount uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &queueFamilyCount, nil)
	queueFamilies := make([]vk.QueueFamilyProperties, queueFamilyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &queueFamilyCount, queueFamilies)

	for i := uint32(0); i < queueFamilyCount; i++ {
		queueFamilies[i].Deref()
		if queueFamilies[i].QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) == 0 {
			continue
		}
		var supportsPresent vk.Bool32
		vk.GetPhysicalDeviceSurfaceSupport(gpu, i, s.surface, &supportsPresent)
		if supportsPresent.B() {
			return i, true
		}
	}
	return 0, false
}

func (s *shared) createLogicalDevice() error {
	family, ok := s.presentQueueFamily(s.gpu)
	if !ok {
		return errors.New("vulkan error: could not find a queue family with present capabilities")
	}

	queueInfos := []vk.DeviceQueueCreateInfo{{
		SType:            vk.StructureTypeDeviceQueueCreateInfo,
		QueueFamilyIndex: family,
		QueueCount:       1,
		PQueuePriorities: []float32{1},
	}}

	dci := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(deviceExtensions)),
		PpEnabledExtensionNames: safeStrings(deviceExtensions),
	}

	var vkDevice vk.Device
	if err := vk.Error(vk.CreateDevice(s.gpu, &dci, nil, &vkDevice)); err != nil {
		return errors.New("vk.CreateDevice(): " + err.Error())
	}

	var queue vk.Queue
	vk.GetDeviceQueue(vkDevice, family, 0, &queue)

	s.device = vkDevice
	s.queue = queue
	s.queueFamily = family
	return nil
}

func (s *shared) createSynchronization() error {
	sci := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}
	fci := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
		Flags: vk.FenceCreateFlags(vk.FenceCreateSignaledBit),
	}

	if err := vk.Error(vk.CreateSemaphore(s.device, &sci, nil, &s.imageAvailable)); err != nil {
		return errors.New("vk.CreateSemaphore(): " + err.Error())
	}
	if err := vk.Error(vk.CreateSemaphore(s.device, &sci, nil, &s.renderFinished)); err != nil {
		return errors.New("vk.CreateSemaphore(): " + err.Error())
	}
	if err := vk.Error(vk.CreateFence(s.device, &fci, nil, &s.fence)); err != nil {
		return errors.New("vk.CreateFence(): " + err.Error())
	}
	return nil
}

func (s *shared) waitIdle() {
	if s.device != nil {
		vk.DeviceWaitIdle(s.device)
	}
}

func (s *shared) destroy() {
	s.waitIdle()
	if s.device != nil {
		if s.imageAvailable != nil {
			vk.DestroySemaphore(s.device, s.imageAvailable, nil)
		}
		if s.renderFinished != nil {
			vk.DestroySemaphore(s.device, s.renderFinished, nil)
		}
		if s.fence != nil {
			vk.DestroyFence(s.device, s.fence, nil)
		}
		vk.DestroyDevice(s.device, nil)
		s.device = nil
	}
	if s.surface != vk.NullSurface {
		vk.DestroySurface(s.instance, s.surface, nil)
		s.surface = vk.NullSurface
	}
	if s.instance != nil {
		vk.DestroyInstance(s.instance, nil)
		s.instance = nil
	}
}
