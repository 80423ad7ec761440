// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"fmt"
	"math"

	"github.com/devblok/hellosurface/device"
	vk "github.com/devblok/vulkan"
)

func safeString(s string) string {
	return fmt.Sprintf("%s\x00", s)
}

func safeStrings(sgs []string) []string {
	safe := []string{}
	for _, s := range sgs {
		safe = append(safe, safeString(s))
	}
	return safe
}

// deviceTypes maps a driver type to the physical device types that can
// serve it, in preference order.
func deviceTypes(driver device.DriverType) []vk.PhysicalDeviceType {
	switch driver {
	case device.Hardware:
		return []vk.PhysicalDeviceType{vk.PhysicalDeviceTypeDiscreteGpu, vk.PhysicalDeviceTypeIntegratedGpu}
	case device.Warp, device.Software:
		return []vk.PhysicalDeviceType{vk.PhysicalDeviceTypeCpu}
	case device.Reference:
		return []vk.PhysicalDeviceType{vk.PhysicalDeviceTypeVirtualGpu}
	}
	return nil
}

// grantLevel picks the first requested level the device API version covers
func grantLevel(levels []device.FeatureLevel, apiVersion uint32) (device.FeatureLevel, bool) {
	for _, l := range levels {
		if versionCovers(apiVersion, l) {
			return l, true
		}
	}
	return 0, false
}

// versionCovers compares major and minor only, patch releases do not matter
func versionCovers(apiVersion uint32, l device.FeatureLevel) bool {
	const mask = ^uint32(0xfff)
	return apiVersion&mask >= uint32(l)&mask
}

func typeName(t vk.PhysicalDeviceType) string {
	switch t {
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return "discrete"
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return "integrated"
	case vk.PhysicalDeviceTypeVirtualGpu:
		return "virtual"
	case vk.PhysicalDeviceTypeCpu:
		return "cpu"
	}
	return "other"
}

func versionString(v uint32) string {
	return fmt.Sprintf("%d.%d.%d", v>>22, (v>>12)&0x3ff, v&0xfff)
}

// nativeFormat maps a swapchain format onto its Vulkan equivalent
func nativeFormat(f device.Format) vk.Format {
	if f == device.FormatB8G8R8A8Unorm {
		return vk.FormatB8g8r8a8Unorm
	}
	return vk.FormatUndefined
}

// pickFormat prefers the wanted format, otherwise the first one offered
func pickFormat(formats []vk.SurfaceFormat, want vk.Format) (vk.SurfaceFormat, bool) {
	if len(formats) == 0 {
		return vk.SurfaceFormat{}, false
	}
	for _, f := range formats {
		if f.Format == want {
			return f, true
		}
	}
	// A single undefined entry means any format is accepted
	if len(formats) == 1 && formats[0].Format == vk.FormatUndefined {
		return vk.SurfaceFormat{Format: want, ColorSpace: vk.ColorSpaceSrgbNonlinear}, true
	}
	return formats[0], true
}

// swapchainExtent follows the surface size unless the surface lets the
// swapchain decide
func swapchainExtent(current vk.Extent2D, desc device.SwapChainDesc) vk.Extent2D {
	if current.Width != math.MaxUint32 {
		return current
	}
	return vk.Extent2D{Width: desc.Width, Height: desc.Height}
}

func imageCount(requested, min, max uint32) uint32 {
	n := requested
	if n < min {
		n = min
	}
	if max > 0 && n > max {
		n = max
	}
	return n
}
