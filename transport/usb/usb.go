// go-pn53x
// Copyright (c) 2025 The go-pn53x Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// Package usb wraps github.com/google/gousb with the enumerate/claim/
// bulk-I/O shape spec.md §4.2 calls for. Grounded in the pack's gousb
// consumer file (guiperry-HASHER's usb_device.go):
// gousb.NewContext/OpenDeviceWithVIDPID/Config/Interface/
// OutEndpoint/InEndpoint/epIn.ReadContext.
package usb

import (
	"context"
	"fmt"
	"time"

	"github.com/google/gousb"
)

// VIDPID names one candidate USB identity a driver is willing to claim.
type VIDPID struct {
	VID gousb.ID
	PID gousb.ID
}

// Candidate is a USB device gousb found matching one of Enumerate's
// VIDPID entries, not yet claimed.
type Candidate struct {
	VID, PID gousb.ID
	Bus, Addr int
}

// Endpoints is a claimed device's bulk IN/OUT pair, ready for Transceive.
type Endpoints struct {
	ctx    *gousb.Context
	device *gousb.Device
	config *gousb.Config
	intf   *gousb.Interface
	out    *gousb.OutEndpoint
	in     *gousb.InEndpoint
}

// Enumerate lists currently attached devices matching any of candidates,
// without claiming them.
func Enumerate(candidates []VIDPID) ([]Candidate, error) {
	ctx := gousb.NewContext()
	defer ctx.Close()

	wanted := make(map[VIDPID]bool, len(candidates))
	for _, c := range candidates {
		wanted[c] = true
	}

	var found []Candidate
	devices, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		if wanted[VIDPID{VID: desc.Vendor, PID: desc.Product}] {
			found = append(found, Candidate{
				VID: desc.Vendor, PID: desc.Product,
				Bus: desc.Bus, Addr: desc.Address,
			})
		}
		return false // never actually open here, just inspect descriptors
	})
	for _, d := range devices {
		d.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("usb: enumerate: %w", err)
	}
	return found, nil
}

// Claim opens and claims the first attached device matching candidate,
// claiming configuration 1, interface 0, alt-setting 0, and the given
// bulk endpoint addresses.
func Claim(candidate VIDPID, outAddr, inAddr gousb.EndpointAddress) (*Endpoints, error) {
	ctx := gousb.NewContext()

	device, err := ctx.OpenDeviceWithVIDPID(candidate.VID, candidate.PID)
	if err != nil {
		ctx.Close()
		return nil, fmt.Errorf("usb: open %04x:%04x: %w", candidate.VID, candidate.PID, err)
	}
	if device == nil {
		ctx.Close()
		return nil, fmt.Errorf("usb: device not found (VID:%04x PID:%04x)", candidate.VID, candidate.PID)
	}

	config, err := device.Config(1)
	if err != nil {
		device.Close()
		ctx.Close()
		return nil, fmt.Errorf("usb: set config: %w", err)
	}

	intf, err := config.Interface(0, 0)
	if err != nil {
		config.Close()
		device.Close()
		ctx.Close()
		return nil, fmt.Errorf("usb: claim interface: %w", err)
	}

	out, err := intf.OutEndpoint(int(outAddr))
	if err != nil {
		intf.Close()
		config.Close()
		device.Close()
		ctx.Close()
		return nil, fmt.Errorf("usb: open OUT endpoint: %w", err)
	}

	in, err := intf.InEndpoint(int(inAddr))
	if err != nil {
		intf.Close()
		config.Close()
		device.Close()
		ctx.Close()
		return nil, fmt.Errorf("usb: open IN endpoint: %w", err)
	}

	return &Endpoints{ctx: ctx, device: device, config: config, intf: intf, out: out, in: in}, nil
}

// BulkWrite sends data over the claimed OUT endpoint.
func (e *Endpoints) BulkWrite(data []byte) error {
	if _, err := e.out.Write(data); err != nil {
		return fmt.Errorf("usb: bulk write: %w", err)
	}
	return nil
}

// BulkRead reads up to len(buf) bytes from the claimed IN endpoint,
// bounded by timeout (spec.md §6.2 default 30s).
func (e *Endpoints) BulkRead(buf []byte, timeout time.Duration) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	n, err := e.in.ReadContext(ctx, buf)
	if err != nil {
		return 0, fmt.Errorf("usb: bulk read: %w", err)
	}
	return n, nil
}

// Close releases the interface, configuration, device, and context.
func (e *Endpoints) Close() error {
	e.intf.Close()
	e.config.Close()
	e.device.Close()
	e.ctx.Close()
	return nil
}
