// go-pn53x
// Copyright (c) 2025 The go-pn53x Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// Device-level property configuration (spec §3 Properties table). A
// DeviceFlags bit changes only after the Driver accepts the write; no
// SetParameters or RFConfiguration command is sent from here.

package pn53x

import (
	"context"
	"fmt"
)

// SetPropertyBool passes a boolean property to the driver and, only on
// success, updates the cached DeviceFlags. It sends no chip command.
func (d *Device) SetPropertyBool(p Property, v bool) error {
	if err := d.checkUsable(); err != nil {
		return err
	}
	if err := d.driver.SetPropertyBool(p, v); err != nil {
		return d.recordError(fmt.Errorf("set property %v: %w", p, err))
	}

	switch p {
	case PropertyHandleCRC:
		d.flags.HandleCRC = v
	case PropertyHandleParity:
		d.flags.HandleParity = v
	case PropertyActivateField:
		d.flags.ActiveField = v
	case PropertyActivateCrypto1:
		d.flags.Crypto1Active = v
	case PropertyInfiniteSelect:
		d.flags.InfiniteSelect = v
	case PropertyAcceptInvalidFrames:
		d.flags.AcceptInvalidFrames = v
	case PropertyAcceptMultipleFrames:
		d.flags.AcceptMultipleFrames = v
	case PropertyAutoISO14443_4:
		d.flags.AutoISO14443_4 = v
	case PropertyEasyFraming:
		d.flags.EasyFraming = v
	}
	return nil
}

// SetPropertyInt pushes an integer-valued property (timeouts) to the
// driver.
func (d *Device) SetPropertyInt(p Property, v int) error {
	if err := d.checkUsable(); err != nil {
		return err
	}
	if err := d.driver.SetPropertyInt(p, v); err != nil {
		return d.recordError(fmt.Errorf("set property %v: %w", p, err))
	}
	return nil
}

// setParameters issues SetParameters (opcode 0x12) directly, for the
// properties the chip tracks in its PARAM register rather than through a
// transport-local flag (fODD/EVEN parity, NAD, DEP-only flags). flags is
// the raw PARAM byte per the PN53x user manual.
func (d *Device) setParameters(ctx context.Context, flags byte) error {
	_, err := d.command(ctx, cmdSetParameters, []byte{flags}, defaultCommandTimeout)
	return err
}
