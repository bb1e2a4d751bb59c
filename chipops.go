// go-pn53x
// Copyright (c) 2025 The go-pn53x Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// Chip-identification, register-access, and DEP-negotiation operations
// (spec §4.4's minimum command set) that neither the initiator nor target
// role files cover: GetFirmwareVersion, ReadRegister, WriteRegister,
// RFConfiguration, PowerDown, InATR, InPSL, InJumpForDEP, InJumpForPSL.
// Grounded in the same command/commandAbortable request-response shape as
// initiator.go and target_ops.go.

package pn53x

import (
	"context"
	"fmt"
)

// FirmwareVersion is the decoded GetFirmwareVersion response.
type FirmwareVersion struct {
	IC       byte
	Version  byte
	Revision byte
	Support  byte
}

// chipFromIC maps the GetFirmwareVersion IC byte to a ChipVariant.
func chipFromIC(ic byte) ChipVariant {
	switch ic {
	case 0x31:
		return ChipPN531
	case 0x32:
		return ChipPN532
	case 0x33:
		return ChipPN533
	default:
		return ChipUnknown
	}
}

// GetFirmwareVersion reads the chip's IC/version/revision/support byte and
// caches the detected ChipVariant on the handle (Chip returns it
// afterward).
func (d *Device) GetFirmwareVersion(ctx context.Context) (FirmwareVersion, error) {
	data, err := d.command(ctx, cmdGetFirmwareVersion, nil, defaultCommandTimeout)
	if err != nil {
		return FirmwareVersion{}, err
	}
	if len(data) < 4 {
		return FirmwareVersion{}, d.recordError(fmt.Errorf("%w: truncated GetFirmwareVersion response", ErrFrameCorrupted))
	}

	fv := FirmwareVersion{IC: data[0], Version: data[1], Revision: data[2], Support: data[3]}
	d.chip = chipFromIC(fv.IC)
	return fv, nil
}

// ReadRegister reads one byte per given SFR address, in order.
func (d *Device) ReadRegister(ctx context.Context, addrs ...uint16) ([]byte, error) {
	if len(addrs) == 0 {
		return nil, fmt.Errorf("%w: at least one register address required", ErrInvalidParameter)
	}

	args := make([]byte, 0, 2*len(addrs))
	for _, a := range addrs {
		args = append(args, byte(a>>8), byte(a))
	}

	data, err := d.command(ctx, cmdReadRegister, args, defaultCommandTimeout)
	if err != nil {
		return nil, err
	}
	if len(data) < len(addrs) {
		return nil, d.recordError(fmt.Errorf("%w: truncated ReadRegister response", ErrFrameCorrupted))
	}
	return data[:len(addrs)], nil
}

// RegisterWrite pairs one SFR address with the value to store there.
type RegisterWrite struct {
	Addr  uint16
	Value byte
}

// WriteRegister writes one or more SFR registers in a single command.
func (d *Device) WriteRegister(ctx context.Context, writes ...RegisterWrite) error {
	if len(writes) == 0 {
		return fmt.Errorf("%w: at least one register write required", ErrInvalidParameter)
	}

	args := make([]byte, 0, 3*len(writes))
	for _, w := range writes {
		args = append(args, byte(w.Addr>>8), byte(w.Addr), w.Value)
	}

	_, err := d.command(ctx, cmdWriteRegister, args, defaultCommandTimeout)
	return err
}

// RFConfiguration pushes a raw RFConfiguration item (PN53x user manual
// §7.3.1's CfgItem-tagged config blocks: RF field timing, ISO14443-A/B
// parameters, MIFARE parameters, and so on). cfgItem and data are passed
// through uninterpreted; callers needing a specific item build data per
// the chip's documented layout for that item.
func (d *Device) RFConfiguration(ctx context.Context, cfgItem byte, data []byte) error {
	args := make([]byte, 0, 1+len(data))
	args = append(args, cfgItem)
	args = append(args, data...)

	_, err := d.command(ctx, cmdRFConfiguration, args, defaultCommandTimeout)
	return err
}

// PowerDown puts the chip into low-power mode until one of the given
// wakeup sources fires (wakeupHSU/SPI/I2C/GPIOP32/GPIOP34/RF/INT1, or a
// combination ORed together).
func (d *Device) PowerDown(ctx context.Context, wakeupSources byte) error {
	_, err := d.command(ctx, cmdPowerDown, []byte{wakeupSources}, defaultCommandTimeout)
	return err
}

// InATR requests Answer-To-Request from a DEP target already selected via
// InJumpForDEP/InJumpForPSL, returning its ATR_RES general bytes.
func (d *Device) InATR(ctx context.Context, tg byte, nfcid3 []byte, generalBytes []byte) ([]byte, error) {
	args := make([]byte, 0, 2+len(nfcid3)+len(generalBytes))
	args = append(args, tg)
	if len(nfcid3) > 0 {
		args = append(args, 0x01)
		args = append(args, nfcid3...)
	} else {
		args = append(args, 0x00)
	}
	args = append(args, generalBytes...)

	data, err := d.commandAbortable(ctx, cmdInATR, args, defaultATRTimeout)
	if err != nil {
		return nil, err
	}
	if len(data) < 1 {
		return nil, d.recordError(fmt.Errorf("%w: empty InATR response", ErrFrameCorrupted))
	}
	return data[1:], nil // data[0] is the status byte, already classified
}

// InPSL renegotiates the baud rate and frame size of an already-activated
// DEP target (Parameter Selection request).
func (d *Device) InPSL(ctx context.Context, tg byte, brIn, brOut, fsl byte) error {
	_, err := d.commandAbortable(ctx, cmdInPSL, []byte{tg, brIn, brOut, fsl}, defaultCommandTimeout)
	return err
}

// InJumpForDEP activates a DEP target in a single command, combining
// InListPassiveTarget-style target discovery with ATR negotiation. active
// selects active (true) vs. passive (false) initialization mode; baud is
// the initial communication speed.
func (d *Device) InJumpForDEP(ctx context.Context, active bool, baud Baud, initData, nfcid3, generalBytes []byte) ([]byte, error) {
	var brTy byte
	switch baud {
	case Baud106:
		brTy = 0x00
	case Baud212:
		brTy = 0x01
	case Baud424:
		brTy = 0x02
	default:
		return nil, fmt.Errorf("%w: DEP activation does not support %d kbps", ErrUnsupportedModulation, baud)
	}

	var actPass byte
	if active {
		actPass = 0x01
	}

	next := byte(0)
	if len(initData) > 0 {
		next |= 0x01
	}
	if len(nfcid3) > 0 {
		next |= 0x02
	}
	if len(generalBytes) > 0 {
		next |= 0x04
	}

	args := make([]byte, 0, 3+len(initData)+len(nfcid3)+len(generalBytes))
	args = append(args, actPass, brTy, next)
	args = append(args, initData...)
	args = append(args, nfcid3...)
	args = append(args, generalBytes...)

	data, err := d.commandAbortable(ctx, cmdInJumpForDEP, args, defaultATRTimeout)
	if err != nil {
		return nil, err
	}
	if len(data) < 1 {
		return nil, d.recordError(fmt.Errorf("%w: empty InJumpForDEP response", ErrFrameCorrupted))
	}
	return data[1:], nil // data[0] is the status byte, already classified
}

// InJumpForPSL is InJumpForDEP plus an immediate Parameter Selection step,
// so the target ends activation already running at the requested speed.
func (d *Device) InJumpForPSL(ctx context.Context, active bool, baud Baud, initData, nfcid3, generalBytes []byte) ([]byte, error) {
	var brTy byte
	switch baud {
	case Baud106:
		brTy = 0x00
	case Baud212:
		brTy = 0x01
	case Baud424:
		brTy = 0x02
	default:
		return nil, fmt.Errorf("%w: DEP activation does not support %d kbps", ErrUnsupportedModulation, baud)
	}

	var actPass byte
	if active {
		actPass = 0x01
	}

	next := byte(0)
	if len(initData) > 0 {
		next |= 0x01
	}
	if len(nfcid3) > 0 {
		next |= 0x02
	}
	if len(generalBytes) > 0 {
		next |= 0x04
	}

	args := make([]byte, 0, 3+len(initData)+len(nfcid3)+len(generalBytes))
	args = append(args, actPass, brTy, next)
	args = append(args, initData...)
	args = append(args, nfcid3...)
	args = append(args, generalBytes...)

	data, err := d.commandAbortable(ctx, cmdInJumpForPSL, args, defaultATRTimeout)
	if err != nil {
		return nil, err
	}
	if len(data) < 1 {
		return nil, d.recordError(fmt.Errorf("%w: empty InJumpForPSL response", ErrFrameCorrupted))
	}
	return data[1:], nil // data[0] is the status byte, already classified
}
