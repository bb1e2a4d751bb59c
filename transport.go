// go-pn53x
// Copyright (c) 2025 The go-pn53x Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// Driver trait (spec §4.3): the polymorphic transport every physical
// backend (pn53x_usb, acr122, pn532_uart, arygon) implements. Generalizes
// the teacher's Transport interface (SendCommand/Close/SetTimeout/
// IsConnected/Type) to the full probe/open/transceive/property/abort/idle/
// strerror vtable the protocol engine needs.

package pn53x

import "time"

// TransportType names a physical transport family.
type TransportType string

const (
	TransportUSB     TransportType = "usb"
	TransportSerial  TransportType = "serial"
	TransportPCSC    TransportType = "pcsc"
	TransportVirtual TransportType = "virtual"
)

// Driver is a claimed connection to one physical device. A Device wraps a
// Driver and drives it through the PN53x protocol engine; the Driver
// itself only knows how to move chip-level bytes (beginning with the D4
// host-to-chip direction byte) across its physical transport.
//
// Driver is not safe for concurrent use: every command issued on a handle
// completes before the next is submitted (spec §5).
type Driver interface {
	// Transceive sends a chip-level payload (D4 + opcode + args) and
	// returns the chip-level response (D5 + opcode+1 + data), having
	// handled the physical envelope and the ACK/NACK handshake
	// internally. timeout bounds the whole round trip.
	Transceive(tx []byte, timeout time.Duration) ([]byte, error)

	// SetPropertyBool and SetPropertyInt hand a Property write to the
	// driver's transport-local state (e.g. the serial drivers' inter-frame
	// delay); they send no chip command.
	SetPropertyBool(p Property, v bool) error
	SetPropertyInt(p Property, v int) error

	// Abort best-effort interrupts an in-flight Transceive. It is safe
	// to call from a different goroutine than the one blocked in
	// Transceive.
	Abort() error

	// Idle quiesces the device without closing the connection; called by
	// Close before the underlying transport is released. The four
	// transport drivers in this module implement it as a no-op: they do
	// not switch the field off or clear the FIFO.
	Idle() error

	// Close releases the underlying physical resource. The Driver must
	// not be used afterward.
	Close() error

	// StrError renders the most recent error this Driver observed, for
	// the strerror-style convenience spec §7 describes.
	StrError() string
}

// DriverFactory opens a connection string's transport-specific suffix and
// returns a claimed Driver.
type DriverFactory func(connString string) (Driver, error)

// ProberFunc enumerates connection strings this driver can currently open,
// for ListDevices.
type ProberFunc func() ([]string, error)

// DriverDescriptor is the immutable, process-lifetime record a transport
// registers under (spec §3 "Driver descriptor").
type DriverDescriptor struct {
	Name  string
	Probe ProberFunc
	Open  DriverFactory
}

// TransportCapability names an optional behavior a Driver may advertise
// beyond the base interface, mirroring the teacher's
// TransportCapabilityChecker pattern.
type TransportCapability string

const (
	// CapabilityExtendedFrames marks a Driver able to parse the
	// 2-byte-length extended information frame on receive (PN533 only);
	// frame.Wrap always emits the standard frame.
	CapabilityExtendedFrames TransportCapability = "extended_frames"
	// CapabilityPCSCFallback marks ACR122 drivers that can fall back to
	// raw USB when no PC/SC service is available.
	CapabilityPCSCFallback TransportCapability = "pcsc_fallback"
)

// CapabilityChecker is implemented by drivers that advertise optional
// TransportCapability values.
type CapabilityChecker interface {
	HasCapability(capability TransportCapability) bool
}

// HasCapability reports whether d advertises capability, false if d does
// not implement CapabilityChecker.
func HasCapability(d Driver, capability TransportCapability) bool {
	if checker, ok := d.(CapabilityChecker); ok {
		return checker.HasCapability(capability)
	}
	return false
}
