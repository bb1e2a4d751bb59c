// go-pn53x
// Copyright (c) 2025 The go-pn53x Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// nfcprobe lists every connection string the registered drivers can
// currently claim, the way the teacher's cmd/nfctest discovery mode
// enumerates candidate devices before connecting to one.
package main

import (
	"flag"
	"fmt"
	"os"

	pn53x "github.com/nxp-rdlib/go-pn53x"

	_ "github.com/nxp-rdlib/go-pn53x/transport/acr122"
	_ "github.com/nxp-rdlib/go-pn53x/transport/arygon"
	_ "github.com/nxp-rdlib/go-pn53x/transport/pn532uart"
	_ "github.com/nxp-rdlib/go-pn53x/transport/pn53xusb"
)

func main() {
	max := flag.Int("max", 16, "maximum number of devices to list")
	flag.Parse()

	if err := pn53x.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "init: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = pn53x.Exit() }()

	devices, err := pn53x.ListDevices(*max)
	if err != nil {
		fmt.Fprintf(os.Stderr, "list devices: %v\n", err)
		os.Exit(1)
	}

	if len(devices) == 0 {
		fmt.Println("no devices found")
		return
	}
	for _, d := range devices {
		fmt.Println(d)
	}
}
