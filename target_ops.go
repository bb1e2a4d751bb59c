// go-pn53x
// Copyright (c) 2025 The go-pn53x Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// Target-role (tag emulation) operations (spec §4.6.2). The teacher never
// emulates a tag; this is built fresh, in the same request/response,
// context-forwarding style as the initiator methods, using the TgXxx
// opcode family.

package pn53x

import (
	"context"
	"fmt"
	"time"
)

// TargetModeConfig describes the modulation(s) a TargetInit call should
// advertise, mirroring the PN53x user manual's TgInitAsTarget mode byte
// and per-modulation parameter blocks.
type TargetModeConfig struct {
	// PICC, when true, advertises passive ISO14443-A/FeliCa emulation.
	PICC bool
	// DEP, when true, advertises NFCIP-1 peer-to-peer emulation.
	DEP bool
	// MifareParams is the 6-byte SENS_RES/NFCID1/SEL_RES block for PICC
	// emulation (optional; zero value lets the chip pick defaults).
	MifareParams [6]byte
	// FeliCaParams is the 18-byte FeliCa IDm/PMm/SystemCode block
	// (optional).
	FeliCaParams [18]byte
	// NFCID3 is the 10-byte identifier advertised during DEP activation.
	NFCID3 [10]byte
	// GeneralBytes are the ATR_RES general bytes sent to the initiator
	// during DEP activation.
	GeneralBytes []byte
}

// TargetInit puts the chip into target (card emulation) mode and blocks
// until an initiator activates it, returning the activation mode byte the
// chip reports. Cancellable via ctx or AbortCommand, since it can block
// indefinitely waiting for RF activity.
func (d *Device) TargetInit(ctx context.Context, cfg TargetModeConfig, timeout time.Duration) (byte, error) {
	var mode byte
	if cfg.PICC {
		mode |= 0x01
	}
	if cfg.DEP {
		mode |= 0x02
	}

	args := make([]byte, 0, 1+6+18+10+2+len(cfg.GeneralBytes))
	args = append(args, mode)
	args = append(args, cfg.MifareParams[:]...)
	args = append(args, cfg.FeliCaParams[:]...)
	args = append(args, cfg.NFCID3[:]...)
	args = append(args, byte(len(cfg.GeneralBytes)))
	args = append(args, cfg.GeneralBytes...)
	args = append(args, 0x00) // HistoricalLength, unused

	data, err := d.commandAbortable(ctx, cmdTgInitAsTarget, args, timeout)
	if err != nil {
		return 0, err
	}
	if len(data) < 1 {
		return 0, d.recordError(fmt.Errorf("%w: empty TgInitAsTarget response", ErrFrameCorrupted))
	}
	return data[0], nil
}

// TargetReceiveBytes waits for the next command frame an initiator sends
// while this device is in target mode (TgGetInitiatorCommand for the
// first frame after TargetInit, or after a prior TargetSendBytes for
// subsequent ones would be TgGetData; both return the raw APDU bytes).
func (d *Device) TargetReceiveBytes(ctx context.Context, timeout time.Duration) ([]byte, error) {
	data, err := d.commandAbortable(ctx, cmdTgGetInitiatorCommand, nil, timeout)
	if err != nil || len(data) == 0 {
		return nil, err
	}
	return data[1:], nil // data[0] is the status byte, already classified
}

// TargetSendBytes sends a response APDU back to the initiator while in
// target mode (TgResponseToInitiator).
func (d *Device) TargetSendBytes(ctx context.Context, data []byte, timeout time.Duration) error {
	_, err := d.commandAbortable(ctx, cmdTgResponseToInitiator, data, timeout)
	return err
}

// TargetGetData reads application-layer data sent by the initiator after
// activation (TgGetData), distinct from TargetReceiveBytes's initial
// command frame.
func (d *Device) TargetGetData(ctx context.Context, timeout time.Duration) ([]byte, error) {
	data, err := d.commandAbortable(ctx, cmdTgGetData, nil, timeout)
	if err != nil || len(data) == 0 {
		return nil, err
	}
	return data[1:], nil // data[0] is the status byte, already classified
}

// TargetSetData writes application-layer data for the initiator to read
// (TgSetData), distinct from TargetSendBytes's protocol-level response.
func (d *Device) TargetSetData(ctx context.Context, data []byte, timeout time.Duration) error {
	_, err := d.commandAbortable(ctx, cmdTgSetData, data, timeout)
	return err
}

// TargetSetGeneralBytes updates the ATR_RES general bytes advertised
// during DEP activation, without calling TargetInit again.
func (d *Device) TargetSetGeneralBytes(ctx context.Context, generalBytes []byte) error {
	_, err := d.command(ctx, cmdTgSetGeneralBytes, generalBytes, defaultCommandTimeout)
	return err
}

// TargetStatus is the decoded TgGetTargetStatus response.
type TargetStatus struct {
	// State is the chip's target-activation state byte (PN53x user manual
	// §7.4.9): 0 = not initialized, 1 = PICC activated, 2 = active mode
	// activated, 3 = DEP activated.
	State byte
	// Baud is the communication speed decoded from the BRit bits whatever
	// State says (Baud106 when they are 0); zero if they name no speed.
	Baud Baud
}

// TargetGetStatus reports whether this device, in target mode, is
// currently activated by an initiator and at what speed.
func (d *Device) TargetGetStatus(ctx context.Context) (TargetStatus, error) {
	data, err := d.command(ctx, cmdTgGetTargetStatus, nil, defaultCommandTimeout)
	if err != nil {
		return TargetStatus{}, err
	}
	if len(data) < 2 {
		return TargetStatus{}, d.recordError(fmt.Errorf("%w: truncated TgGetTargetStatus response", ErrFrameCorrupted))
	}

	var baud Baud
	switch data[1] & 0x70 >> 4 {
	case 0:
		baud = Baud106
	case 1:
		baud = Baud212
	case 2:
		baud = Baud424
	}
	return TargetStatus{State: data[0], Baud: baud}, nil
}

// TargetSetMetaData sends a response frame whose more-data bit asks the
// initiator to keep chaining (TgSetMetaData), for protocols that split a
// response across multiple frames.
func (d *Device) TargetSetMetaData(ctx context.Context, data []byte, timeout time.Duration) error {
	_, err := d.commandAbortable(ctx, cmdTgSetMetaData, data, timeout)
	return err
}
