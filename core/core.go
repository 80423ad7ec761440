// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package core holds what every other package of hellosurface shares:
// configuration, time services and the ownership contract for
// backend objects.
package core

// Releasable defines any memory-occupying item that can be freed.
type Releasable interface {

	// Release releases memory occupied by the implementing structure.
	Release()
}

// ReleaseAll releases items in the given order, skipping nil ones.
// Pass owners after the things they own.
func ReleaseAll(items ...Releasable) {
	for _, item := range items {
		if item != nil {
			item.Release()
		}
	}
}
