// go-pn53x
// Copyright (c) 2025 The go-pn53x Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// Registers the pn532_uart driver with the process-wide registry.
// Grounded in the teacher's detection/uart.detector, reduced from a
// VID/PID-filtering device scan to the plain port enumeration this
// family's connection-string grammar needs (spec.md §6: "pn532_uart:PORT").
package pn532uart

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

// probe lists serial ports as candidate pn532_uart connection strings.
// It cannot tell a PN532 from any other device on the port; callers that
// care should fall back to attempting GetFirmwareVersion after Open.
func probe() ([]string, error) {
	ports, err := goserial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("pn532uart: probe: %w", err)
	}
	out := make([]string, 0, len(ports))
	for _, p := range ports {
		out = append(out, driverName+":"+p)
	}
	return out, nil
}

// openConnString implements pn53x.DriverFactory for
// "pn532_uart:device_path[:baud]" (spec.md §6).
func openConnString(connString string) (pn53x.Driver, error) {
	_, rest, ok := strings.Cut(connString, ":")
	if !ok || rest == "" {
		return nil, fmt.Errorf("pn532uart: malformed connection string %q", connString)
	}

	portName, baudStr, hasBaud := strings.Cut(rest, ":")
	drv, err := Open(portName)
	if err != nil || !hasBaud {
		return drv, err
	}

	baud, convErr := strconv.Atoi(baudStr)
	if convErr != nil {
		_ = drv.Close()
		return nil, fmt.Errorf("pn532uart: invalid baud %q: %w", baudStr, convErr)
	}
	if err := drv.port.SetSpeed(baud); err != nil {
		_ = drv.Close()
		return nil, fmt.Errorf("pn532uart: set baud: %w", err)
	}
	return drv, nil
}
