// go-pn53x
// Copyright (c) 2025 The go-pn53x Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// Package serial wraps go.bug.st/serial with the open/configure/send/
// receive/close shape spec.md §4.2 calls for, plus an OS-level advisory
// lock so two processes can't both claim the same port. Grounded in the
// pack's go.bug.st/serial consumer files (EdgxCloud-EdgeFlow's
// network/serial_in.go, gpio/modbus.go): serial.Open/serial.Mode/
// port.SetReadTimeout.
package serial

import (
	"fmt"
	"io"
	"sync"
	"time"

	"go.bug.st/serial"
)

// Config describes how to open a serial port.
type Config struct {
	BaudRate int
	DataBits int
	StopBits serial.StopBits
	Parity   serial.Parity
}

// DefaultConfig is 115200 8N1, the PN532-UART default (arygon.Open
// overrides the baud to 9600).
func DefaultConfig() Config {
	return Config{
		BaudRate: 115200,
		DataBits: 8,
		StopBits: serial.OneStopBit,
		Parity:   serial.NoParity,
	}
}

// Port is a claimed, advisory-locked serial connection.
type Port struct {
	name string
	port serial.Port

	mu   sync.Mutex
	lock *portLock
}

// Open claims name at the given configuration. It fails with
// ErrPortBusy if an advisory lock already claims the same port (spec.md
// §9 Open Question 3, resolved via an OS advisory lock rather than the
// original termios sentinel file).
func Open(name string, cfg Config) (*Port, error) {
	lock, err := acquireLock(name)
	if err != nil {
		return nil, err
	}

	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: cfg.DataBits,
		StopBits: cfg.StopBits,
		Parity:   cfg.Parity,
	}
	sp, err := serial.Open(name, mode)
	if err != nil {
		lock.release()
		return nil, fmt.Errorf("serial: open %s: %w", name, err)
	}

	return &Port{name: name, port: sp, lock: lock}, nil
}

// Name returns the OS device path this Port was opened against.
func (p *Port) Name() string {
	return p.name
}

// SetSpeed reconfigures the port's baud rate without closing it. Only
// 9600, 19200, 38400, 57600, 115200, 230400 and 460800 are accepted; any
// other rate returns an error and leaves the port unchanged.
func (p *Port) SetSpeed(baud int) error {
	switch baud {
	case 9600, 19200, 38400, 57600, 115200, 230400, 460800:
	default:
		return fmt.Errorf("serial: unsupported baud rate %d", baud)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.port.SetMode(&serial.Mode{BaudRate: baud})
}

// Send writes data to the port.
func (p *Port) Send(data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := p.port.Write(data)
	if err != nil {
		return fmt.Errorf("serial: write %s: %w", p.name, err)
	}
	return nil
}

// Receive reads up to len(buf) bytes, waiting at most timeout for the
// first byte to arrive. A timeout with no bytes read returns
// io.ErrNoProgress-wrapped context so callers can distinguish "nothing
// arrived" from a hard I/O failure.
func (p *Port) Receive(buf []byte, timeout time.Duration) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.port.SetReadTimeout(timeout); err != nil {
		return 0, fmt.Errorf("serial: set read timeout: %w", err)
	}
	n, err := p.port.Read(buf)
	if err != nil {
		return 0, fmt.Errorf("serial: read %s: %w", p.name, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("serial: read %s: %w", p.name, io.ErrNoProgress)
	}
	return n, nil
}

// Close releases the port and its advisory lock.
func (p *Port) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	err := p.port.Close()
	p.lock.release()
	return err
}
