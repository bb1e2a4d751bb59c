// go-pn53x
// Copyright (c) 2025 The go-pn53x Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later

package pn53xusb

import (
	"fmt"
	"strconv"
	"strings"

	pn53x "github.com/nxp-rdlib/go-pn53x"
	"github.com/nxp-rdlib/go-pn53x/transport/usb"
)

func init() {
	pn53x.RegisterDriver(pn53x.DriverDescriptor{
		Name:  driverName,
		Probe: probe,
		Open:  openConnString,
	})
}

// probe enumerates attached devices matching knownDevices, naming each by
// its USB bus index (spec.md §6: "for USB, transport_specific = bus_index").
func probe() ([]string, error) {
	candidates, err := usb.Enumerate(knownDevices)
	if err != nil {
		return nil, fmt.Errorf("pn53xusb: probe: %w", err)
	}
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, fmt.Sprintf("%s:%d", driverName, c.Bus))
	}
	return out, nil
}

// openConnString implements pn53x.DriverFactory for "pn53x_usb:bus_index".
// The bus index selects among knownDevices currently attached; any
// malformed or unmatched index falls back to claiming the first device
// that answers to any known VID/PID.
func openConnString(connString string) (pn53x.Driver, error) {
	_, busStr, ok := strings.Cut(connString, ":")
	if !ok {
		return nil, fmt.Errorf("pn53xusb: malformed connection string %q", connString)
	}
	bus, err := strconv.Atoi(busStr)
	if err != nil {
		return Open()
	}

	candidates, err := usb.Enumerate(knownDevices)
	if err != nil {
		return nil, fmt.Errorf("pn53xusb: %w", err)
	}
	for _, c := range candidates {
		if c.Bus == bus {
			return OpenVIDPID(usb.VIDPID{VID: c.VID, PID: c.PID})
		}
	}
	return Open()
}
