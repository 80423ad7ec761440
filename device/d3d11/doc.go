// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package d3d11 implements device.Backend with Direct3D 11 and DXGI through
// raw COM vtable calls. It is only functional on Windows.
package d3d11
