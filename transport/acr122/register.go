// go-pn53x
// Copyright (c) 2025 The go-pn53x Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later

package acr122

import (
	"fmt"
	"strings"

	pn53x "github.com/nxp-rdlib/go-pn53x"
	"github.com/ebfe/scard"
)

func init() {
	pn53x.RegisterDriver(pn53x.DriverDescriptor{
		Name:  driverName,
		Probe: probe,
		Open:  openConnString,
	})
}

// probe lists attached PC/SC readers, falling back to silence (not an
// error) if no PC/SC service is reachable; ListDevices treats a probe
// error as "this driver found nothing" anyway.
func probe() ([]string, error) {
	ctx, err := scard.EstablishContext()
	if err != nil {
		return nil, nil
	}
	defer func() { _ = ctx.Release() }()

	readers, err := ctx.ListReaders()
	if err != nil {
		return nil, nil
	}
	out := make([]string, 0, len(readers))
	for range readers {
		out = append(out, driverName+":auto")
	}
	return out, nil
}

// openConnString implements pn53x.DriverFactory for "acr122:MODE", where
// MODE is one of "pcsc", "usb", or "auto" (spec.md §9's
// WithACR122Transport selection, expressed via the connection string).
func openConnString(connString string) (pn53x.Driver, error) {
	_, mode, ok := strings.Cut(connString, ":")
	if !ok {
		return nil, fmt.Errorf("acr122: malformed connection string %q", connString)
	}

	switch mode {
	case "pcsc":
		return Open(PCSC)
	case "usb":
		return Open(RawUSB)
	default:
		return Open(Auto)
	}
}
