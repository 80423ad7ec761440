// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import (
	"errors"
	"fmt"

	"github.com/devblok/hellosurface/core"
	"github.com/devblok/hellosurface/window"
	log "github.com/sirupsen/logrus"
)

// NewNegotiator creates a negotiator that tries drivers and levels in the
// given priority order. Empty lists fall back to DefaultDrivers and
// DefaultLevels.
func NewNegotiator(backend Backend, drivers []DriverType, levels []FeatureLevel) *Negotiator {
	if len(drivers) == 0 {
		drivers = DefaultDrivers
	}
	if len(levels) == 0 {
		levels = DefaultLevels
	}
	return &Negotiator{
		backend: backend,
		drivers: append([]DriverType(nil), drivers...),
		levels:  append([]FeatureLevel(nil), levels...),
	}
}

// NewNegotiatorFromConfig parses the configured driver and level names.
// defaultLevels is the backend's ladder, used when none are configured.
func NewNegotiatorFromConfig(backend Backend, cfg core.DeviceConfiguration, defaultLevels []FeatureLevel) (*Negotiator, error) {
	var drivers []DriverType
	for _, name := range cfg.Drivers {
		d, err := ParseDriverType(name)
		if err != nil {
			return nil, err
		}
		drivers = append(drivers, d)
	}

	levels := defaultLevels
	if len(cfg.Levels) > 0 {
		levels = nil
		for _, name := range cfg.Levels {
			l, err := ParseFeatureLevel(name)
			if err != nil {
				return nil, err
			}
			levels = append(levels, l)
		}
	}
	return NewNegotiator(backend, drivers, levels), nil
}

// Negotiator selects a driver type and feature level for a window.
type Negotiator struct {
	backend Backend
	drivers []DriverType
	levels  []FeatureLevel
}

// Drivers returns the driver priority list
func (n *Negotiator) Drivers() []DriverType {
	return append([]DriverType(nil), n.drivers...)
}

// Levels returns the feature level priority list
func (n *Negotiator) Levels() []FeatureLevel {
	return append([]FeatureLevel(nil), n.levels...)
}

// Negotiate creates a device, immediate context and swapchain for the window.
//
// Drivers are tried in order and the first success wins, even if a later
// driver would grant a higher level. When a driver rejects the level list as
// unrecognized, it is retried exactly once without the highest level. Any
// other failure, or a failed retry, moves on to the next driver.
func (n *Negotiator) Negotiate(h window.Handle, width, height int) (*Bundle, error) {
	if width < 1 || height < 1 {
		return nil, &Error{
			Kind: InvalidClientArea,
			Err:  fmt.Errorf("client area %dx%d", width, height),
		}
	}

	desc := NewSwapChainDesc(h, width, height)

	var (
		attempts []AttemptRecord
		lastErr  error
		driver   DriverType
	)
	for _, driver = range n.drivers {
		created, record := n.attempt(driver, n.levels, desc, 1)
		attempts = append(attempts, record)

		if errors.Is(record.Err, ErrLevelsRejected) && len(n.levels) > 1 {
			created, record = n.attempt(driver, n.levels[1:], desc, 2)
			attempts = append(attempts, record)
		}

		if record.Err == nil {
			log.WithFields(log.Fields{
				"driver": driver,
				"level":  created.Level,
			}).Info("Device negotiated")

			return &Bundle{
				Driver:    driver,
				Level:     created.Level,
				Device:    created.Device,
				Context:   created.Context,
				SwapChain: created.SwapChain,
			}, nil
		}
		lastErr = record.Err
	}

	return nil, &Error{
		Kind:     CreateDeviceAndSwapChainFailed,
		Driver:   driver,
		Attempts: attempts,
		Err:      lastErr,
	}
}

func (n *Negotiator) attempt(driver DriverType, levels []FeatureLevel, desc SwapChainDesc, try int) (Created, AttemptRecord) {
	record := AttemptRecord{
		Driver: driver,
		Levels: levels,
	}

	entry := log.WithFields(log.Fields{
		"driver":  driver,
		"levels":  levels,
		"attempt": try,
	})

	created, err := n.backend.CreateDeviceAndSwapChain(driver, levels, desc)
	if err == nil && (created.Device == nil || created.Context == nil || created.SwapChain == nil) {
		err = errors.New("backend returned an incomplete device")
	}
	if err != nil {
		created.release()
		record.Err = err
		entry.WithError(err).Warn("Device creation failed")
		return Created{}, record
	}

	entry.WithField("level", created.Level).Debug("Device created")
	return created, record
}
