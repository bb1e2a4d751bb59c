// go-pn53x
// Copyright (c) 2025 The go-pn53x Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// Package arygon is the pn53x.Driver for ARYGON's PN531/PN532 serial
// readers, which wrap the standard PN53x frame in a one-byte protocol
// selector (spec.md §6, §9): '2' selects "PN53x frame follows" on every
// write, and the reader echoes it back on every read. Grounded in the
// same teacher transport/i2c.Transport send/waitAck/receiveFrame shape as
// transport/pn532uart, with the selector byte as this family's only
// physical-envelope difference.
package arygon

import (
	"errors"
	"fmt"
	"sync"
	"time"

	pn53x "github.com/nxp-rdlib/go-pn53x"
	"github.com/nxp-rdlib/go-pn53x/internal/frame"
	"github.com/nxp-rdlib/go-pn53x/transport/serial"
)

const driverName = "arygon"

// protocolSelector prefixes every TX and leads every RX; ARYGON readers
// support other selectors (RS232-direct, APDU) this driver never emits.
const protocolSelector = '2'

// defaultInterFramePacing matches the teacher's observed minimum between
// ACK and information-frame reads; ARYGON's lowest supported baud (9600)
// needs the full 50ms, faster links tolerate it without issue.
const defaultInterFramePacing = 50 * time.Millisecond

// Option configures a Driver at construction time.
type Option func(*Driver)

// WithInterFramePacing overrides the pause between the ACK read and the
// information-frame read.
func WithInterFramePacing(d time.Duration) Option {
	return func(drv *Driver) { drv.pacing = d }
}

// Driver talks the ARYGON protocol-selector framing over transport/serial.
type Driver struct {
	port   *serial.Port
	pacing time.Duration

	mu      sync.Mutex
	lastErr error
}

// Open claims portName at the ARYGON default of 9600 8N1 (a connection
// string's optional baud suffix reconfigures it afterward via SetSpeed).
func Open(portName string) (*Driver, error) {
	cfg := serial.DefaultConfig()
	cfg.BaudRate = 9600
	port, err := serial.Open(portName, cfg)
	if err != nil {
		return nil, fmt.Errorf("arygon: %w", err)
	}
	return &Driver{port: port, pacing: defaultInterFramePacing}, nil
}

// Transceive implements pn53x.Driver.
func (d *Driver) Transceive(tx []byte, timeout time.Duration) ([]byte, error) {
	wrapped, err := frame.Wrap(tx)
	if err != nil {
		return nil, d.fail(fmt.Errorf("arygon: wrap: %w", err))
	}

	out := make([]byte, 0, len(wrapped)+1)
	out = append(out, protocolSelector)
	out = append(out, wrapped...)
	if err := d.port.Send(out); err != nil {
		return nil, d.fail(fmt.Errorf("arygon: send: %w", err))
	}

	if err := d.readAck(out, timeout); err != nil {
		return nil, d.fail(err)
	}

	time.Sleep(d.pacing)

	payload, err := frame.ReceiveWithRetry(func() ([]byte, bool, error) {
		return d.receiveOnce(timeout)
	}, func() error {
		return d.sendSelected(frame.NackFrame)
	})
	if err != nil {
		return nil, d.fail(fmt.Errorf("arygon: receive: %w", err))
	}
	return payload, nil
}

func (d *Driver) sendSelected(raw []byte) error {
	out := make([]byte, 0, len(raw)+1)
	out = append(out, protocolSelector)
	out = append(out, raw...)
	return d.port.Send(out)
}

// readAck waits for the chip's ACK, resending selected (the
// selector-prefixed command already written once by Transceive) up to
// frame.MaxReceiveAttempts times when a NACK arrives in its place (spec
// §4.4/§7, scenario S7). An unrecognized frame in the ACK slot is
// ack-mismatch and fatal for the in-flight command: it is not retried.
func (d *Driver) readAck(selected []byte, timeout time.Duration) error {
	_, err := frame.ReceiveWithRetry(func() ([]byte, bool, error) {
		buf := make([]byte, 1+len(frame.AckFrame))
		n, rerr := d.port.Receive(buf, timeout)
		if rerr != nil {
			return nil, false, fmt.Errorf("arygon: ack: %w", rerr)
		}
		body, serr := stripSelector(buf[:n])
		if serr != nil {
			return nil, false, serr
		}
		switch {
		case frame.IsAck(body):
			return body, false, nil
		case frame.IsNack(body):
			return nil, true, fmt.Errorf("arygon: %w", pn53x.ErrNack)
		default:
			return nil, false, fmt.Errorf("arygon: %w", pn53x.ErrAckMismatch)
		}
	}, func() error {
		return d.port.Send(selected)
	})
	return err
}

func (d *Driver) receiveOnce(timeout time.Duration) (data []byte, shouldRetry bool, err error) {
	buf := frame.GetBuffer()
	defer frame.PutBuffer(buf)
	n, err := d.port.Receive(buf, timeout)
	if err != nil {
		return nil, false, err
	}

	body, err := stripSelector(buf[:n])
	if err != nil {
		return nil, true, err
	}

	payload, _, err := frame.Unwrap(body)
	if err == nil {
		return payload, false, nil
	}
	if errors.Is(err, frame.ErrTruncated) || errors.Is(err, frame.ErrChecksumMismatch) || errors.Is(err, frame.ErrBadPreamble) {
		return nil, true, err
	}
	return nil, false, err
}

// stripSelector removes the leading protocol-selector byte every ARYGON
// response echoes back.
func stripSelector(buf []byte) ([]byte, error) {
	if len(buf) == 0 {
		return nil, fmt.Errorf("arygon: %w", frame.ErrTruncated)
	}
	if buf[0] != protocolSelector {
		return nil, fmt.Errorf("arygon: unexpected protocol selector 0x%02x", buf[0])
	}
	return buf[1:], nil
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

// SetPropertyInt stores timeout properties as the inter-frame pacing.
func (d *Driver) SetPropertyInt(p pn53x.Property, v int) error {
	switch p {
	case pn53x.PropertyTimeoutCommand, pn53x.PropertyTimeoutATR, pn53x.PropertyTimeoutCom:
		d.mu.Lock()
		d.pacing = time.Duration(v) * time.Millisecond
		d.mu.Unlock()
	}
	return nil
}

// Abort sends a selector-prefixed NACK.
func (d *Driver) Abort() error {
	return d.sendSelected(frame.NackFrame)
}

// Idle is a no-op; ARYGON needs no link-level quiescing beyond Close.
func (d *Driver) Idle() error { return nil }

// Close releases the serial port.
func (d *Driver) Close() error {
	return d.port.Close()
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

var _ pn53x.Driver = (*Driver)(nil)
