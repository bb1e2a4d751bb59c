// go-pn53x
// Copyright (c) 2025 The go-pn53x Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// Package virtualdriver implements a fixture-backed pn53x.Driver with no
// physical transport, registered under the "virtual" connection-string
// prefix (spec.md's TransportVirtual). Generalized from the teacher's
// internal/testing.VirtualTag (a simulated NTAG/MIFARE memory image) into a
// simulated PN53x chip: a fixed firmware response and a configurable
// passive-target fixture, so the registry, Device, and initiator layers can
// be driven end to end without hardware.
package virtualdriver

import (
	"sync"
	"time"

	pn53x "github.com/nxp-rdlib/go-pn53x"
)

// Fixture describes the canned target InListPassiveTarget/InAutoPoll
// should report. A Fixture with Present false makes both commands report
// no target.
type Fixture struct {
	// Present, when false, makes polling commands behave as if no target
	// is in the field.
	Present bool
	// ATQA, SAK, UID are an ISO14443-A target's InListPassiveTarget
	// record fields (spec §3).
	ATQA [2]byte
	SAK  byte
	UID  []byte
}

// DefaultFixture is a plausible NTAG-class target, present by default.
func DefaultFixture() *Fixture {
	return &Fixture{
		Present: true,
		ATQA:    [2]byte{0x00, 0x04},
		SAK:     0x08,
		UID:     []byte{0x04, 0x5A, 0x6B, 0x31, 0xC2, 0x85},
	}
}

// Driver is a virtual PN53x chip: no bytes leave the process.
type Driver struct {
	mu      sync.Mutex
	fixture *Fixture
	chip    pn53x.ChipVariant
	lastErr error
}

// New returns a Driver reporting as a PN532 with fixture as its polling
// response. A nil fixture is equivalent to DefaultFixture.
func New(fixture *Fixture) *Driver {
	if fixture == nil {
		fixture = DefaultFixture()
	}
	return &Driver{fixture: fixture, chip: pn53x.ChipPN532}
}

// SetPresent toggles whether a poll/select finds the fixture target,
// simulating a tag being placed on or removed from the reader.
func (d *Driver) SetPresent(present bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fixture.Present = present
}

func (d *Driver) Transceive(tx []byte, _ time.Duration) ([]byte, error) {
	if len(tx) < 2 {
		return nil, pn53x.ErrFrameCorrupted
	}
	opcode := tx[1]
	data, err := d.handle(opcode, tx[2:])
	if err != nil {
		d.mu.Lock()
		d.lastErr = err
		d.mu.Unlock()
		return nil, err
	}
	resp := make([]byte, 0, 2+len(data))
	resp = append(resp, 0xD5, opcode+1)
	resp = append(resp, data...)
	return resp, nil
}

func (d *Driver) handle(opcode byte, args []byte) ([]byte, error) {
	switch opcode {
	case 0x02: // GetFirmwareVersion
		return []byte{0x32, 0x01, 0x06, 0x07}, nil
	case 0x4A: // InListPassiveTarget
		return d.listPassiveTarget(), nil
	case 0x60: // InAutoPoll
		return d.autoPoll(), nil
	case 0x44, 0x52: // InDeselect, InRelease
		return []byte{0x00}, nil
	case 0x14: // SAMConfiguration
		return []byte{}, nil
	case 0x12: // SetParameters
		return []byte{}, nil
	default:
		return nil, pn53x.ErrNotImplemented
	}
}

func (d *Driver) listPassiveTarget() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.fixture.Present {
		return []byte{0x00}
	}
	rec := make([]byte, 0, 5+len(d.fixture.UID))
	rec = append(rec, 0x01, d.fixture.ATQA[0], d.fixture.ATQA[1], d.fixture.SAK, byte(len(d.fixture.UID)))
	rec = append(rec, d.fixture.UID...)
	return append([]byte{0x01}, rec...)
}

func (d *Driver) autoPoll() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.fixture.Present {
		return []byte{0x00}
	}
	tg := append([]byte{0x01, d.fixture.ATQA[0], d.fixture.ATQA[1], d.fixture.SAK, byte(len(d.fixture.UID))}, d.fixture.UID...)
	out := []byte{0x01, 0x00, byte(len(tg))}
	return append(out, tg...)
}

func (d *Driver) SetPropertyBool(pn53x.Property, bool) error { return nil }
func (d *Driver) SetPropertyInt(pn53x.Property, int) error   { return nil }
func (d *Driver) Abort() error                               { return nil }
func (d *Driver) Idle() error                                { return nil }
func (d *Driver) Close() error                                { return nil }

var _ pn53x.Driver = (*Driver)(nil)

func (d *Driver) StrError() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.lastErr == nil {
		return ""
	}
	return d.lastErr.Error()
}

// Register installs the "virtual" driver under pn53x's registry so
// Open("virtual:anything") returns a fresh fixture-backed Driver.
func Register() {
	pn53x.RegisterDriver(pn53x.DriverDescriptor{
		Name: "virtual",
		Probe: func() ([]string, error) {
			return []string{"virtual:0"}, nil
		},
		Open: func(string) (pn53x.Driver, error) {
			return New(nil), nil
		},
	})
}
