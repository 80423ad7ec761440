// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"encoding/json"
	"flag"
	"fmt"

	"github.com/devblok/hellosurface/device/vkr"
	log "github.com/sirupsen/logrus"
)

var (
	debug  = flag.Bool("vkdbg", false, "Load Vulkan validation layers")
	indent = flag.Bool("indent", false, "Indent the JSON output")
)

func main() {
	flag.Parse()

	info, err := vkr.PhysicalDevicesInfo(*debug)
	if err != nil {
		log.Fatal(err)
	}

	var bytes []byte
	if *indent {
		bytes, err = json.MarshalIndent(info, "", "  ")
	} else {
		bytes, err = json.Marshal(info)
	}
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%s\n", bytes)
}
