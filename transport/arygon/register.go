// go-pn53x
// Copyright (c) 2025 The go-pn53x Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later

package arygon

import (
	"fmt"
	"strconv"
	"strings"

	pn53x "github.com/nxp-rdlib/go-pn53x"
	goserial "go.bug.st/serial"
)

func init() {
	pn53x.RegisterDriver(pn53x.DriverDescriptor{
		Name:  driverName,
		Probe: probe,
		Open:  openConnString,
	})
}

// probe lists serial ports as candidate arygon connection strings. Like
// pn532uart's probe, it cannot distinguish an ARYGON reader from any other
// serial device without opening it.
func probe() ([]string, error) {
	ports, err := goserial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("arygon: probe: %w", err)
	}
	out := make([]string, 0, len(ports))
	for _, p := range ports {
		out = append(out, driverName+":"+p)
	}
	return out, nil
}

// openConnString implements pn53x.DriverFactory for
// "arygon:device_path[:baud]".
func openConnString(connString string) (pn53x.Driver, error) {
	_, rest, ok := strings.Cut(connString, ":")
	if !ok || rest == "" {
		return nil, fmt.Errorf("arygon: malformed connection string %q", connString)
	}

	portName, baudStr, hasBaud := strings.Cut(rest, ":")
	drv, err := Open(portName)
	if err != nil || !hasBaud {
		return drv, err
	}

	baud, convErr := strconv.Atoi(baudStr)
	if convErr != nil {
		_ = drv.Close()
		return nil, fmt.Errorf("arygon: invalid baud %q: %w", baudStr, convErr)
	}
	if err := drv.port.SetSpeed(baud); err != nil {
		_ = drv.Close()
		return nil, fmt.Errorf("arygon: set baud: %w", err)
	}
	return drv, nil
}
