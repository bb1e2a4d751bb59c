// go-pn53x
// Copyright (c) 2025 The go-pn53x Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// Process-wide driver registry (spec §4.6.1, §9): a static, ordered list
// of registered transports, traversed by connection-string name-prefix
// match. Generalized from the teacher's TransportFactory/
// createAutoDetectedTransport machinery. The list is filled at package-init
// time: each transport package calls RegisterDriver from its init()
// function, so it holds the transports the program imports.

package pn53x

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
)

const maxConnStringLen = 1024

// EnvDefaultDevice is the environment variable consulted by Open(nil) /
// Open("") when no connection string is supplied.
const EnvDefaultDevice = "LIBNFC_DEFAULT_DEVICE"

var (
	registryMu sync.Mutex
	registry   []DriverDescriptor
)

// RegisterDriver adds a driver to the process-wide registry. Transport
// packages call this from an init() function; registration order becomes
// the prefix-match search order, so the four canonical transports
// (pn53x_usb, acr122, pn532_uart, arygon) should register in that
// preference order when more than one could claim the same hardware.
//
// RegisterDriver is not safe to call concurrently with Open/ListDevices
// after process startup; it is intended for package-init time only.
func RegisterDriver(d DriverDescriptor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	for _, existing := range registry {
		if existing.Name == d.Name {
			return
		}
	}
	registry = append(registry, d)
}

// registeredDrivers returns a snapshot of the registry, preserving
// registration order.
func registeredDrivers() []DriverDescriptor {
	registryMu.Lock()
	defer registryMu.Unlock()
	out := make([]DriverDescriptor, len(registry))
	copy(out, registry)
	return out
}

// ListDevices enumerates every registered driver's Probe and returns up to
// cap connection strings. It never returns more than cap entries and is
// idempotent within one OS snapshot (spec §8 invariant 7).
func ListDevices(capHint int) ([]string, error) {
	var found []string
	for _, d := range registeredDrivers() {
		if capHint > 0 && len(found) >= capHint {
			break
		}
		conns, err := d.Probe()
		if err != nil {
			logger.Debug().Str("driver", d.Name).Err(err).Msg("probe failed")
			continue
		}
		for _, c := range conns {
			if capHint > 0 && len(found) >= capHint {
				break
			}
			found = append(found, c)
		}
	}
	return found, nil
}

// driverForConnString returns the registered driver whose name is the
// prefix of connString up to the first ':', per the connection-string
// grammar (spec §6).
func driverForConnString(connString string) (DriverDescriptor, string, error) {
	if len(connString) > maxConnStringLen {
		return DriverDescriptor{}, "", fmt.Errorf("%w: connection string exceeds %d bytes",
			ErrInvalidParameter, maxConnStringLen)
	}

	name, rest, ok := strings.Cut(connString, ":")
	if !ok {
		return DriverDescriptor{}, "", fmt.Errorf("%w: %q is not driver_name:transport_param",
			ErrInvalidParameter, connString)
	}

	for _, d := range registeredDrivers() {
		if d.Name == name {
			return d, rest, nil
		}
	}
	return DriverDescriptor{}, "", fmt.Errorf("%w: no registered driver named %q", ErrDeviceNotFound, name)
}

// Open claims the device named by connString. If connString is empty, it
// consults LIBNFC_DEFAULT_DEVICE, then falls back to the first entry
// ListDevices returns (spec §4.6.1).
func Open(connString string) (*Device, error) {
	if connString == "" {
		connString = os.Getenv(EnvDefaultDevice)
	}
	if connString == "" {
		found, err := ListDevices(1)
		if err != nil {
			return nil, err
		}
		if len(found) == 0 {
			return nil, fmt.Errorf("%w: no devices found and %s is unset", ErrDeviceNotFound, EnvDefaultDevice)
		}
		connString = found[0]
	}

	desc, _, err := driverForConnString(connString)
	if err != nil {
		return nil, err
	}

	driver, err := desc.Open(connString)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", connString, err)
	}

	return newDevice(connString, driver), nil
}

// OpenWithRetry is Open wrapped in RetryWithConfig: USB enumeration and
// PC/SC service startup can both transiently fail for a moment right after
// a reader is plugged in, so callers that connect during that race can
// retry instead of failing outright. config nil uses DefaultRetryConfig.
func OpenWithRetry(ctx context.Context, connString string, config *RetryConfig) (*Device, error) {
	var dev *Device
	err := RetryWithConfig(ctx, config, func() error {
		d, err := Open(connString)
		if err != nil {
			return err
		}
		dev = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dev, nil
}
