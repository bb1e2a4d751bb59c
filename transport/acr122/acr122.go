// go-pn53x
// Copyright (c) 2025 The go-pn53x Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// Package acr122 is the pn53x.Driver for the ACS ACR122U, a PC/SC reader
// that also hosts a PN532 behind a vendor pseudo-APDU (spec.md §6, §9).
// The primary path goes through github.com/ebfe/scard, the system PC/SC
// client; a raw-USB fallback via transport/usb covers hosts with no PC/SC
// service running. Both paths yield the same chip-level bytes, so Device
// never needs to know which one it is talking to.
//
// The source this spec was distilled from parsed the PC/SC response by
// indexing a hardcoded offset of 13 bytes into the vendor header, correct
// only when the reader's header matches the documented shape exactly.
// This driver instead scans for the frame.Preamble/StartCode sequence and
// requires the five bytes before it to start with the D5 direction byte,
// so a response with a short header or no D5 byte fails loudly instead of
// returning garbage. The other four header bytes are not checked.
package acr122

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ebfe/scard"
	pn53x "github.com/nxp-rdlib/go-pn53x"
	"github.com/nxp-rdlib/go-pn53x/internal/frame"
	"github.com/nxp-rdlib/go-pn53x/transport/usb"
)

const driverName = "acr122"

// ConnectMode selects which physical path an acr122 connection string
// uses.
type ConnectMode int

const (
	// Auto tries PC/SC first and falls back to raw USB (spec.md §9:
	// "SHOULD treat PC/SC as its transport but MAY fall back").
	Auto ConnectMode = iota
	PCSC
	RawUSB
)

// rawUSBVIDPID is the ACR122U's USB identity for the raw-USB fallback
// path (spec.md §6).
var rawUSBVIDPID = usb.VIDPID{VID: 0x072F, PID: 0x2200}

const (
	rawOutAddr = 0x02
	rawInAddr  = 0x82
)

var vendorTXHeader = []byte{0xD4, 0x42, 0x00, 0x00, 0x00}

// ErrUnexpectedVendorHeader is returned when a PC/SC response does not
// contain the ACR122 vendor header this driver expects before the inner
// PN53x frame.
var ErrUnexpectedVendorHeader = errors.New("acr122: unexpected vendor header in response")

// ErrCardTransmitFailed is returned when the reader's status word pair
// does not indicate success (0x90 0x00).
var ErrCardTransmitFailed = errors.New("acr122: card transmit returned non-success status")

// Driver talks PN53x over an ACR122U, via PC/SC or raw USB.
type Driver struct {
	ctx  *scard.Context
	card *scard.Card
	raw  *usb.Endpoints

	mu      sync.Mutex
	lastErr error
}

// Open claims an ACR122U reader per mode.
func Open(mode ConnectMode) (*Driver, error) {
	switch mode {
	case PCSC:
		return openPCSC()
	case RawUSB:
		return openRawUSB()
	default:
		if drv, err := openPCSC(); err == nil {
			return drv, nil
		}
		return openRawUSB()
	}
}

func openPCSC() (*Driver, error) {
	ctx, err := scard.EstablishContext()
	if err != nil {
		return nil, fmt.Errorf("acr122: establish context: %w", err)
	}

	readers, err := ctx.ListReaders()
	if err != nil {
		_ = ctx.Release()
		return nil, fmt.Errorf("acr122: list readers: %w", err)
	}
	if len(readers) == 0 {
		_ = ctx.Release()
		return nil, fmt.Errorf("acr122: %w: no PC/SC readers attached", pn53x.ErrDeviceNotFound)
	}

	card, err := ctx.Connect(readers[0], scard.ShareShared, scard.ProtocolAny)
	if err != nil {
		_ = ctx.Release()
		return nil, fmt.Errorf("acr122: connect %s: %w", readers[0], err)
	}

	return &Driver{ctx: ctx, card: card}, nil
}

func openRawUSB() (*Driver, error) {
	ep, err := usb.Claim(rawUSBVIDPID, rawOutAddr, rawInAddr)
	if err != nil {
		return nil, fmt.Errorf("acr122: raw USB: %w", err)
	}
	return &Driver{raw: ep}, nil
}

// Transceive implements pn53x.Driver. The chip-level bytes tx already
// begin with the D4 direction byte; this method is responsible for the
// PN53x information-frame wrap and whichever physical envelope (PC/SC
// APDU or raw USB bulk) the Driver was opened with.
func (d *Driver) Transceive(tx []byte, timeout time.Duration) ([]byte, error) {
	wrapped, err := frame.Wrap(tx)
	if err != nil {
		return nil, d.fail(fmt.Errorf("acr122: wrap: %w", err))
	}

	var raw []byte
	if d.card != nil {
		raw, err = d.transmitPCSC(wrapped)
	} else {
		raw, err = d.transmitRawUSB(wrapped, timeout)
	}
	if err != nil {
		return nil, d.fail(err)
	}

	payload, err := extractFrame(raw)
	if err != nil {
		return nil, d.fail(fmt.Errorf("acr122: %w", err))
	}
	return payload, nil
}

func (d *Driver) transmitPCSC(wrapped []byte) ([]byte, error) {
	apdu := make([]byte, 0, 5+len(vendorTXHeader)+len(wrapped))
	apdu = append(apdu, 0xFF, 0x00, 0x00, 0x00, byte(len(vendorTXHeader)+len(wrapped)))
	apdu = append(apdu, vendorTXHeader...)
	apdu = append(apdu, wrapped...)

	resp, err := d.card.Transmit(apdu)
	if err != nil {
		return nil, fmt.Errorf("acr122: transmit: %w", err)
	}
	if len(resp) < 2 {
		return nil, fmt.Errorf("acr122: %w: response too short", ErrCardTransmitFailed)
	}
	sw1, sw2 := resp[len(resp)-2], resp[len(resp)-1]
	if sw1 != 0x90 || sw2 != 0x00 {
		return nil, fmt.Errorf("acr122: %w (SW=%02X%02X)", ErrCardTransmitFailed, sw1, sw2)
	}
	return resp[:len(resp)-2], nil
}

func (d *Driver) transmitRawUSB(wrapped []byte, timeout time.Duration) ([]byte, error) {
	out := make([]byte, 0, len(vendorTXHeader)+len(wrapped))
	out = append(out, vendorTXHeader...)
	out = append(out, wrapped...)
	if err := d.raw.BulkWrite(out); err != nil {
		return nil, fmt.Errorf("acr122: bulk write: %w", err)
	}

	buf := frame.GetBuffer()
	defer frame.PutBuffer(buf)
	n, err := d.raw.BulkRead(buf, timeout)
	if err != nil {
		return nil, fmt.Errorf("acr122: bulk read: %w", err)
	}
	out := make([]byte, n)
	copy(out, buf[:n])
	return out, nil
}

// extractFrame validates the ACR122 vendor header and returns the inner
// PN53x frame's unwrapped payload. It scans for the preamble/start-code
// sequence rather than trusting a fixed offset, and checks that at least
// five header bytes precede it and that the first of them is the D5
// direction byte.
func extractFrame(raw []byte) ([]byte, error) {
	idx := bytes.Index(raw, []byte{frame.Preamble, frame.StartCode1, frame.StartCode2})
	if idx < 0 {
		return nil, fmt.Errorf("%w: no frame preamble found", ErrUnexpectedVendorHeader)
	}
	if idx < len(vendorRXHeaderLen) {
		return nil, fmt.Errorf("%w: header shorter than expected", ErrUnexpectedVendorHeader)
	}

	header := raw[idx-len(vendorRXHeaderLen):idx]
	if header[0] != 0xD5 {
		return nil, fmt.Errorf("%w: got %02X, want D5-prefixed vendor header", ErrUnexpectedVendorHeader, header[0])
	}

	payload, _, err := frame.Unwrap(raw[idx:])
	if err != nil {
		return nil, fmt.Errorf("unwrap inner frame: %w", err)
	}
	return payload, nil
}

// vendorRXHeaderLen's length (5) mirrors the TX vendor header; only its
// length is used here, and the content check above covers the first byte.
var vendorRXHeaderLen = vendorTXHeader

func (d *Driver) fail(err error) error {
	d.mu.Lock()
	d.lastErr = err
	d.mu.Unlock()
	return err
}

// SetPropertyBool is a no-op: it writes no chip register and keeps no
// transport-local state.
func (d *Driver) SetPropertyBool(pn53x.Property, bool) error { return nil }

// SetPropertyInt is a no-op for the same reason.
func (d *Driver) SetPropertyInt(pn53x.Property, int) error { return nil }

// Abort sends a NACK over raw USB. On the PC/SC path it does nothing and
// returns nil; the ACR122's PC/SC path has no in-band abort.
func (d *Driver) Abort() error {
	if d.raw != nil {
		return d.raw.BulkWrite(frame.NackFrame)
	}
	return nil
}

// Idle is a no-op.
func (d *Driver) Idle() error { return nil }

// Close releases the PC/SC card and context, or the raw USB endpoints.
func (d *Driver) Close() error {
	if d.card != nil {
		_ = d.card.Disconnect(scard.LeaveCard)
		return d.ctx.Release()
	}
	return d.raw.Close()
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

// HasCapability reports CapabilityPCSCFallback for every ACR122 Driver,
// whichever path (PC/SC or raw USB) it was opened on.
func (d *Driver) HasCapability(capability pn53x.TransportCapability) bool {
	return capability == pn53x.CapabilityPCSCFallback
}

var _ pn53x.Driver = (*Driver)(nil)
var _ pn53x.CapabilityChecker = (*Driver)(nil)
