// go-pn53x
// Copyright (c) 2025 The go-pn53x Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// Package pn53xusb is the pn53x.Driver for PN53x chips exposed directly
// over USB bulk endpoints (the "pn53x_usb" connection-string family,
// spec.md §6): the ASK LoGO reader, the Philips/NXP PN531/PN532 demo
// boards, and the SCM SCL3711. Grounded in transport/usb (itself grounded
// in the pack's gousb consumer) for enumerate/claim/bulk I/O, and in the
// teacher's transport/i2c.Transport send/waitAck/receiveFrame shape for
// the ACK/NACK handshake riding on top of it.
package pn53xusb

import (
	"errors"
	"fmt"
	"sync"
	"time"

	pn53x "github.com/nxp-rdlib/go-pn53x"
	"github.com/nxp-rdlib/go-pn53x/internal/frame"
	"github.com/nxp-rdlib/go-pn53x/transport/usb"

	"github.com/google/gousb"
)

const driverName = "pn53x_usb"

// knownDevices is the historically documented libnfc VID/PID table for
// PN53x devices exposing raw USB bulk endpoints (spec.md §6 names the
// vendors, not numeric IDs; these are the values libnfc itself shipped).
var knownDevices = []usb.VIDPID{
	{VID: 0x0ACA, PID: 0x0102}, // ASK LoGO
	{VID: 0x04CC, PID: 0x2533}, // Philips/NXP PN531/PN532 demo board
	{VID: 0x04E6, PID: 0x5591}, // SCM Microsystems SCL3711
}

const (
	bulkOutAddr = gousb.EndpointAddress(0x02)
	bulkInAddr  = gousb.EndpointAddress(0x82)
)

// Driver talks standard PN53x information-frame protocol over a claimed
// USB bulk pipe.
type Driver struct {
	ep *usb.Endpoints

	mu      sync.Mutex
	lastErr error
}

// Open claims the first attached device matching one of knownDevices.
func Open() (*Driver, error) {
	var lastErr error
	for _, candidate := range knownDevices {
		ep, err := usb.Claim(candidate, bulkOutAddr, bulkInAddr)
		if err == nil {
			return &Driver{ep: ep}, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("pn53xusb: %w", pn53x.ErrDeviceNotFound)
	}
	return nil, fmt.Errorf("pn53xusb: no known device found: %w", lastErr)
}

// OpenVIDPID claims a specific VID/PID, for callers that already know
// which board is attached (e.g. a connection string naming a bus index
// resolved against Enumerate's output).
func OpenVIDPID(candidate usb.VIDPID) (*Driver, error) {
	ep, err := usb.Claim(candidate, bulkOutAddr, bulkInAddr)
	if err != nil {
		return nil, fmt.Errorf("pn53xusb: %w", err)
	}
	return &Driver{ep: ep}, nil
}

// Transceive implements pn53x.Driver.
func (d *Driver) Transceive(tx []byte, timeout time.Duration) ([]byte, error) {
	wrapped, err := frame.Wrap(tx)
	if err != nil {
		return nil, d.fail(fmt.Errorf("pn53xusb: wrap: %w", err))
	}
	if err := d.ep.BulkWrite(wrapped); err != nil {
		return nil, d.fail(fmt.Errorf("pn53xusb: send: %w", err))
	}

	if err := d.readAck(wrapped, timeout); err != nil {
		return nil, d.fail(err)
	}

	payload, err := frame.ReceiveWithRetry(func() ([]byte, bool, error) {
		return d.receiveOnce(timeout)
	}, func() error {
		return d.ep.BulkWrite(frame.NackFrame)
	})
	if err != nil {
		return nil, d.fail(fmt.Errorf("pn53xusb: receive: %w", err))
	}
	return payload, nil
}

// readAck waits for the chip's ACK, resending wrapped (the command already
// written once by Transceive) up to frame.MaxReceiveAttempts times when a
// NACK arrives in its place (spec §4.4/§7, scenario S7). An unrecognized
// frame in the ACK slot is ack-mismatch and fatal for the in-flight
// command: it is not retried.
func (d *Driver) readAck(wrapped []byte, timeout time.Duration) error {
	_, err := frame.ReceiveWithRetry(func() ([]byte, bool, error) {
		buf := make([]byte, len(frame.AckFrame))
		n, rerr := d.ep.BulkRead(buf, timeout)
		if rerr != nil {
			return nil, false, fmt.Errorf("pn53xusb: ack: %w", rerr)
		}
		switch {
		case frame.IsAck(buf[:n]):
			return buf[:n], false, nil
		case frame.IsNack(buf[:n]):
			return nil, true, fmt.Errorf("pn53xusb: %w", pn53x.ErrNack)
		default:
			return nil, false, fmt.Errorf("pn53xusb: %w", pn53x.ErrAckMismatch)
		}
	}, func() error {
		return d.ep.BulkWrite(wrapped)
	})
	return err
}

func (d *Driver) receiveOnce(timeout time.Duration) (data []byte, shouldRetry bool, err error) {
	buf := frame.GetBuffer()
	defer frame.PutBuffer(buf)
	n, err := d.ep.BulkRead(buf, timeout)
	if err != nil {
		return nil, false, err
	}

	payload, _, err := frame.Unwrap(buf[:n])
	if err == nil {
		return payload, false, nil
	}
	if errors.Is(err, frame.ErrTruncated) || errors.Is(err, frame.ErrChecksumMismatch) || errors.Is(err, frame.ErrBadPreamble) {
		return nil, true, err
	}
	return nil, false, err
}

func (d *Driver) fail(err error) error {
	d.mu.Lock()
	d.lastErr = err
	d.mu.Unlock()
	return err
}

// SetPropertyBool is a no-op: it writes no chip register and keeps no
// transport-local state.
func (d *Driver) SetPropertyBool(pn53x.Property, bool) error { return nil }

// SetPropertyInt is a no-op; USB bulk transfers have no link-level
// timeout to configure beyond the per-call timeout already threaded
// through Transceive.
func (d *Driver) SetPropertyInt(pn53x.Property, int) error { return nil }

// Abort sends a NACK, the documented way to interrupt a pending PN53x
// USB command.
func (d *Driver) Abort() error {
	return d.ep.BulkWrite(frame.NackFrame)
}

// Idle is a no-op; USB needs no link-level quiescing beyond Close.
func (d *Driver) Idle() error { return nil }

// Close releases the claimed USB interface, configuration, device, and
// context.
func (d *Driver) Close() error {
	return d.ep.Close()
}

// StrError renders the most recently observed transport error.
func (d *Driver) StrError() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.lastErr == nil {
		return ""
	}
	return d.lastErr.Error()
}

// HasCapability reports CapabilityExtendedFrames for every device this
// driver opens; Unwrap recognizes the extended frame on receive.
func (d *Driver) HasCapability(capability pn53x.TransportCapability) bool {
	return capability == pn53x.CapabilityExtendedFrames
}

var _ pn53x.Driver = (*Driver)(nil)
var _ pn53x.CapabilityChecker = (*Driver)(nil)
