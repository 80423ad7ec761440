// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"errors"

	"github.com/devblok/hellosurface/device"
	vk "github.com/devblok/vulkan"
)

// PhysicalDeviceInfo describes a physical device and the driver types it
// can serve during negotiation.
type PhysicalDeviceInfo struct {
	ID            int
	VendorID      int
	DriverVersion int
	Name          string
	Type          string
	APIVersion    string
	Drivers       []string
	Invalid       bool
	Extensions    []string
	Layers        []string
	Memory        uint64
}

// PhysicalDevicesInfo lists the physical devices visible to a headless
// instance created through the system Vulkan loader.
func PhysicalDevicesInfo(debug bool) ([]PhysicalDeviceInfo, error) {
	if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
		return nil, errors.New("vk.InstanceProcAddr(): " + err.Error())
	}
	if err := vk.Init(); err != nil {
		return nil, errors.New("vk.Init(): " + err.Error())
	}

	s := &shared{}
	if err := s.createInstance(device.VulkanLevel1_0, []string{}, debug); err != nil {
		return nil, err
	}
	defer s.destroy()

	devices, err := enumerateDevices(s.instance)
	if err != nil {
		return nil, errors.New("vkr.enumerateDevices(): " + err.Error())
	}

	pdi := make([]PhysicalDeviceInfo, len(devices))
	for i, gpu := range devices {
		// Get extension info
		var numDeviceExtensions uint32
		if err := vk.Error(vk.EnumerateDeviceExtensionProperties(gpu, "", &numDeviceExtensions, nil)); err != nil {
			pdi[i].Invalid = true
		}
		deviceExt := make([]vk.ExtensionProperties, numDeviceExtensions)
		if err := vk.Error(vk.EnumerateDeviceExtensionProperties(gpu, "", &numDeviceExtensions, deviceExt)); err != nil {
			pdi[i].Invalid = true
		}
		for _, ext := range deviceExt {
			ext.Deref()
			pdi[i].Extensions = append(pdi[i].Extensions, vk.ToString(ext.ExtensionName[:]))
		}

		// Get layers info
		var numDeviceLayers uint32
		if err := vk.Error(vk.EnumerateDeviceLayerProperties(gpu, &numDeviceLayers, nil)); err != nil {
			pdi[i].Invalid = true
		}
		deviceLayers := make([]vk.LayerProperties, numDeviceLayers)
		if err := vk.Error(vk.EnumerateDeviceLayerProperties(gpu, &numDeviceLayers, deviceLayers)); err != nil {
			pdi[i].Invalid = true
		}
		for _, layer := range deviceLayers {
			layer.Deref()
			pdi[i].Layers = append(pdi[i].Layers, vk.ToString(layer.LayerName[:]))
		}

		// Get memory info
		var memoryProperties vk.PhysicalDeviceMemoryProperties
		vk.GetPhysicalDeviceMemoryProperties(gpu, &memoryProperties)
		memoryProperties.Deref()
		for iMem := uint32(0); iMem < memoryProperties.MemoryHeapCount; iMem++ {
			memoryProperties.MemoryHeaps[iMem].Deref()
			pdi[i].Memory += uint64(memoryProperties.MemoryHeaps[iMem].Size)
		}

		// Get general device info
		var props vk.PhysicalDeviceProperties
		vk.GetPhysicalDeviceProperties(gpu, &props)
		props.Deref()
		pdi[i].ID = int(props.DeviceID)
		pdi[i].VendorID = int(props.VendorID)
		pdi[i].Name = vk.ToString(props.DeviceName[:])
		pdi[i].DriverVersion = int(props.DriverVersion)
		pdi[i].Type = typeName(props.DeviceType)
		pdi[i].APIVersion = versionString(props.ApiVersion)
		pdi[i].Drivers = servedDrivers(props.DeviceType)
	}
	return pdi, nil
}

func servedDrivers(t vk.PhysicalDeviceType) []string {
	var drivers []string
	for _, d := range []device.DriverType{device.Hardware, device.Reference, device.Software, device.Warp} {
		for _, served := range deviceTypes(d) {
			if served == t {
				drivers = append(drivers, d.String())
			}
		}
	}
	return drivers
}
