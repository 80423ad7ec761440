// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"flag"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"

	"github.com/devblok/hellosurface/app"
	"github.com/devblok/hellosurface/core"
	"github.com/devblok/hellosurface/device"
	"github.com/devblok/hellosurface/loop"
	"github.com/devblok/hellosurface/window"
	log "github.com/sirupsen/logrus"
)

func init() {
	runtime.LockOSThread()
}

// Profiling
var (
	cpuProfile   = flag.String("cpuprof", "", "Profile CPU usage to file")
	traceProfile = flag.String("trace", "", "Trace output for profiling")
	debug        = flag.Bool("vkdbg", false, "Load validation layers")
	configFile   = flag.String("config", "", "Load an additional .env configuration file")
)

// platform is what the host OS contributes to the startup sequence
type platform struct {
	instance  uintptr
	showFlags int

	windows   window.Platform
	backend   device.Backend
	levels    []device.FeatureLevel
	pump      loop.Pump
	presenter app.Presenter

	release func()
}

func main() {
	os.Exit(run())
}

func run() int {
	flag.Parse()

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			log.Fatal(err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal(err)
		}
		defer pprof.StopCPUProfile()
	}

	if *traceProfile != "" {
		f, err := os.Create(*traceProfile)
		if err != nil {
			log.Fatal(err)
		}
		if err := trace.Start(f); err != nil {
			log.Fatal(err)
		}
		defer trace.Stop()
	}

	var files []string
	if *configFile != "" {
		files = append(files, *configFile)
	}
	cfg, err := core.LoadConfiguration(files...)
	if err != nil {
		log.WithError(err).Error("Configuration failed")
		return app.ExitFailure
	}
	if *debug {
		cfg.Device.Debug = true
	}

	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.WithError(err).Warn("Keeping default log level")
	}

	idle, err := loop.NewIdlePolicy(cfg.Loop, cfg.Time)
	if err != nil {
		log.WithError(err).Error("Configuration failed")
		return app.ExitFailure
	}
	if r, ok := idle.(core.Releasable); ok {
		defer r.Release()
	}

	p, err := newPlatform(cfg)
	if err != nil {
		log.WithError(err).Error("Platform initialisation failed")
		return app.ExitFailure
	}
	defer p.release()

	negotiator, err := device.NewNegotiatorFromConfig(p.backend, cfg.Device, p.levels)
	if err != nil {
		log.WithError(err).Error("Configuration failed")
		return app.ExitFailure
	}

	presenter, err := app.NewPresenter(cfg.Startup.Presenter, p.presenter)
	if err != nil {
		log.WithError(err).Error("Configuration failed")
		return app.ExitFailure
	}

	log.WithFields(log.Fields{
		"drivers": negotiator.Drivers(),
		"levels":  negotiator.Levels(),
	}).Info("Application starting")

	startup := &app.Startup{
		Config:     cfg,
		Surface:    window.NewSurface(p.windows, cfg.Window),
		Negotiator: negotiator,
		Pump:       p.pump,
		Idle:       idle,
		Presenter:  presenter,
	}
	return startup.Run(p.instance, p.showFlags)
}
