// go-pn53x
// Copyright (c) 2025 The go-pn53x Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// Initiator-role operations (spec §4.6.2): select, poll, and exchange data
// with a passive target. Generalized from the teacher's
// InListPassiveTargetContext/InAutoPollContext/SendDataExchangeContext/
// InSelectContext/InReleaseContext family, kept in the same request/response
// shape but widened from the teacher's ISO14443-A-only scope to every
// modulation family spec §3 names.

package pn53x

import (
	"context"
	"fmt"
	"time"

	"github.com/nxp-rdlib/go-pn53x/internal/bitutil"
	"github.com/nxp-rdlib/go-pn53x/target"
)

// brTyFor maps a Modulation to the InListPassiveTarget/InAutoPoll BrTy
// byte the PN53x user manual defines.
func brTyFor(m Modulation) (byte, error) {
	switch m.Type {
	case ModISO14443A:
		switch m.Baud {
		case Baud106:
			return 0x00, nil
		}
	case ModFeliCa:
		switch m.Baud {
		case Baud212:
			return 0x01, nil
		case Baud424:
			return 0x02, nil
		}
	case ModISO14443B, ModISO14443BPrime:
		if m.Baud == Baud106 {
			return 0x03, nil
		}
	case ModJewel:
		if m.Baud == Baud106 {
			return 0x04, nil
		}
	}
	return 0, fmt.Errorf("%w: %v at %d kbps", ErrUnsupportedModulation, m.Type, m.Baud)
}

func kindFor(t ModulationType) target.Kind {
	switch t {
	case ModISO14443A:
		return target.KindISO14443A
	case ModISO14443B, ModISO14443BPrime, ModISO14443B2SR, ModISO14443B2CT:
		return target.KindISO14443B
	case ModFeliCa:
		return target.KindFeliCa
	case ModJewel:
		return target.KindJewel
	case ModDEP:
		return target.KindDEP
	default:
		return target.Kind(-1)
	}
}

// InitiatorInit activates the chip's initiator role and energizes the RF
// field (SAMConfiguration in normal mode). Must be called once before any
// other initiator operation.
func (d *Device) InitiatorInit(ctx context.Context) error {
	_, err := d.command(ctx, cmdSAMConfiguration, []byte{0x01, 0x14, 0x01}, defaultCommandTimeout)
	return err
}

// SelectPassiveTarget activates RF and selects a single target of the
// given modulation, or ErrNoTagDetected if none responds before timeout.
// initData carries modulation-specific initiator data (e.g. a FeliCa
// polling system code); it may be nil.
func (d *Device) SelectPassiveTarget(ctx context.Context, m Modulation, initData []byte) (*target.Target, error) {
	targets, err := d.ListPassiveTargets(ctx, m, 1, initData)
	if err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		return nil, d.recordError(ErrNoTagDetected)
	}
	return targets[0], nil
}

// ListPassiveTargets activates RF and selects up to maxTargets targets of
// the given modulation in a single InListPassiveTarget command. Only
// ISO14443-A supports more than one simultaneous target.
func (d *Device) ListPassiveTargets(ctx context.Context, m Modulation, maxTargets int, initData []byte) ([]*target.Target, error) {
	if maxTargets < 1 {
		return nil, fmt.Errorf("%w: maxTargets must be >= 1", ErrInvalidParameter)
	}
	brTy, err := brTyFor(m)
	if err != nil {
		return nil, d.recordError(err)
	}

	args := make([]byte, 0, 2+len(initData))
	args = append(args, byte(maxTargets), brTy)
	args = append(args, initData...)

	data, err := d.commandAbortable(ctx, cmdInListPassiveTarget, args, defaultCommandTimeout)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 || data[0] == 0 {
		return nil, nil
	}

	targets, err := parseListPassiveTargetResponse(data, kindFor(m.Type), d.chip)
	if err != nil {
		return nil, d.recordError(err)
	}
	return targets, nil
}

// PollTarget runs InAutoPoll across the given modulations for pollNr
// rounds (0 means poll indefinitely, bounded only by ctx or AbortCommand)
// with the given inter-round period, returning the first target found.
func (d *Device) PollTarget(ctx context.Context, modulations []ModulationType, pollNr int, period time.Duration) (*target.Target, error) {
	if len(modulations) == 0 {
		return nil, fmt.Errorf("%w: at least one modulation required", ErrInvalidParameter)
	}

	periodUnits := byte(period / (150 * time.Millisecond))
	args := make([]byte, 0, 2+len(modulations))
	args = append(args, byte(pollNr), periodUnits)
	for _, mt := range modulations {
		pt, err := autoPollType(mt)
		if err != nil {
			return nil, d.recordError(err)
		}
		args = append(args, pt)
	}

	timeout := defaultCommandTimeout
	if pollNr == 0 {
		timeout = 0 // poll forever; caller relies on ctx/AbortCommand
	}

	data, err := d.commandAbortable(ctx, cmdInAutoPoll, args, timeout)
	if err != nil {
		return nil, err
	}
	if len(data) < 1 || data[0] == 0 {
		return nil, d.recordError(ErrNoTagDetected)
	}

	// data: NbTg, then per target: Type(1) TgLen(1) TgData...
	if len(data) < 3 {
		return nil, d.recordError(fmt.Errorf("%w: truncated InAutoPoll result", ErrFrameCorrupted))
	}
	typ := data[1]
	tgLen := int(data[2])
	if len(data) < 3+tgLen {
		return nil, d.recordError(fmt.Errorf("%w: truncated InAutoPoll result", ErrFrameCorrupted))
	}
	payload := data[3 : 3+tgLen]
	if len(payload) < 1 {
		return nil, d.recordError(fmt.Errorf("%w: empty InAutoPoll target record", ErrFrameCorrupted))
	}

	kind, err := autoPollKind(typ)
	if err != nil {
		return nil, d.recordError(err)
	}
	return target.Decode(kind, payload[0], payload[1:], target.Chip(d.chip))
}

// autoPollType maps a ModulationType to the InAutoPoll Type byte, which
// differs from the InListPassiveTarget BrTy byte (the PN53x user manual
// defines a separate encoding for automatic polling).
func autoPollType(t ModulationType) (byte, error) {
	switch t {
	case ModISO14443A:
		return 0x00, nil
	case ModFeliCa:
		return 0x01, nil // matches both 212 and 424; chip tries both
	case ModISO14443B:
		return 0x03, nil
	case ModJewel:
		return 0x04, nil
	case ModDEP:
		return 0x05, nil
	default:
		return 0, fmt.Errorf("%w: %v not pollable", ErrUnsupportedModulation, t)
	}
}

func autoPollKind(typ byte) (target.Kind, error) {
	switch typ {
	case 0x00, 0x10:
		return target.KindISO14443A, nil
	case 0x01, 0x02:
		return target.KindFeliCa, nil
	case 0x03, 0x13:
		return target.KindISO14443B, nil
	case 0x04:
		return target.KindJewel, nil
	case 0x05:
		return target.KindDEP, nil
	default:
		return 0, fmt.Errorf("%w: unrecognized InAutoPoll type byte 0x%02X", ErrFrameCorrupted, typ)
	}
}

// parseListPassiveTargetResponse splits an InListPassiveTarget response
// (NbTg, then one variable-length record per target) into decoded
// Targets. ATS/INF trailing data is only present when exactly one target
// was requested, per the PN53x user manual.
func parseListPassiveTargetResponse(data []byte, kind target.Kind, chip ChipVariant) ([]*target.Target, error) {
	n := int(data[0])
	offset := 1
	targets := make([]*target.Target, 0, n)

	for i := 0; i < n; i++ {
		if offset >= len(data) {
			return nil, fmt.Errorf("%w: truncated target record", ErrFrameCorrupted)
		}
		tg := data[offset]
		offset++

		recLen, err := targetRecordLength(kind, data[offset:], n)
		if err != nil {
			return nil, err
		}
		if offset+recLen > len(data) {
			return nil, fmt.Errorf("%w: truncated target record", ErrFrameCorrupted)
		}

		tgt, err := target.Decode(kind, tg, data[offset:offset+recLen], target.Chip(chip))
		if err != nil {
			return nil, err
		}
		targets = append(targets, tgt)
		offset += recLen
	}
	return targets, nil
}

func targetRecordLength(kind target.Kind, buf []byte, nbTargets int) (int, error) {
	switch kind {
	case target.KindISO14443A:
		if len(buf) < 4 {
			return 0, fmt.Errorf("%w: truncated ISO14443A record", ErrFrameCorrupted)
		}
		recLen := 4 + int(buf[3])
		if nbTargets == 1 && len(buf) > recLen {
			recLen += 1 + int(buf[recLen])
		}
		return recLen, nil
	case target.KindISO14443B:
		const base = 12
		recLen := base
		if nbTargets == 1 && len(buf) > recLen {
			recLen += 1 + int(buf[base])
		}
		return recLen, nil
	case target.KindFeliCa:
		if len(buf) < 1 {
			return 0, fmt.Errorf("%w: truncated FeliCa record", ErrFrameCorrupted)
		}
		return int(buf[0]), nil
	case target.KindJewel:
		return 6, nil
	default:
		return 0, fmt.Errorf("%w: unsupported modulation for ListPassiveTargets", ErrUnsupportedModulation)
	}
}

// TransceiveBytes exchanges a byte-aligned APDU with the currently
// selected target via InDataExchange.
func (d *Device) TransceiveBytes(ctx context.Context, tg byte, tx []byte, timeout time.Duration) ([]byte, error) {
	rx, _, err := d.TransceiveBytesTimed(ctx, tg, tx, timeout)
	return rx, err
}

// TransceiveBytesTimed is TransceiveBytes plus the chip's 16-bit command
// cycle counter (spec §4.6.2), read back via GetGeneralStatus after the
// exchange.
func (d *Device) TransceiveBytesTimed(ctx context.Context, tg byte, tx []byte, timeout time.Duration) ([]byte, uint16, error) {
	args := make([]byte, 0, 1+len(tx))
	args = append(args, tg)
	args = append(args, tx...)

	data, err := d.commandAbortable(ctx, cmdInDataExchange, args, timeout)
	if err != nil {
		return nil, 0, err
	}
	if len(data) < 1 {
		return nil, 0, d.recordError(fmt.Errorf("%w: empty InDataExchange response", ErrFrameCorrupted))
	}
	cycles, err := d.readCycleCounter(ctx)
	if err != nil {
		cycles = 0
	}
	return data[1:], cycles, nil
}

// TransceiveBits exchanges a non-byte-aligned bitstream (raw mode, with
// HandleCRC/HandleParity disabled) via InCommunicateThru. bitCount gives
// the number of meaningful data bits in tx, so short frames like the 7-bit
// REQA (spec scenario S5) go out verbatim instead of padded to a byte.
// When HandleCRC is off, a CRC_A is appended to byte-aligned requests
// before the parity bits are interleaved, since the chip is not computing
// one on the host's behalf in this mode.
func (d *Device) TransceiveBits(ctx context.Context, tx []byte, bitCount int, timeout time.Duration) ([]byte, error) {
	rx, _, err := d.TransceiveBitsTimed(ctx, tx, bitCount, timeout)
	return rx, err
}

// TransceiveBitsTimed is TransceiveBits plus the chip's cycle counter.
func (d *Device) TransceiveBitsTimed(ctx context.Context, tx []byte, bitCount int, timeout time.Duration) ([]byte, uint16, error) {
	var wire []byte
	if bitCount < 8 {
		// Short frames (REQA/WUPA) carry no parity and go out verbatim.
		wire = bitutil.WrapBits(tx, nil)
	} else {
		if !d.flags.HandleCRC {
			tx = bitutil.AppendCRCA(tx)
		}
		parity := make([]bool, len(tx))
		for i, b := range tx {
			parity[i] = bitutil.OddParityBit(b)
		}
		wire = bitutil.WrapBits(tx, parity)
	}

	data, err := d.commandAbortable(ctx, cmdInCommunicateThru, wire, timeout)
	if err != nil {
		return nil, 0, err
	}
	if len(data) < 1 {
		return nil, 0, d.recordError(fmt.Errorf("%w: empty InCommunicateThru response", ErrFrameCorrupted))
	}
	payload := data[1:] // data[0] is the status byte, already classified

	// Responses after the initial short frame are byte-aligned and
	// parity-wrapped (9 wire bits per data byte); recover the data-byte
	// count from the wrapped wire length before stripping the parity
	// back out.
	rxData := payload
	if n := (len(payload) * 8) / 9; n > 0 {
		rxData, _ = bitutil.UnwrapBits(payload, n)
	}

	cycles, err := d.readCycleCounter(ctx)
	if err != nil {
		cycles = 0
	}
	return rxData, cycles, nil
}

func (d *Device) readCycleCounter(ctx context.Context) (uint16, error) {
	data, err := d.command(ctx, cmdGetGeneralStatus, nil, defaultCommandTimeout)
	if err != nil || len(data) < 2 {
		return 0, err
	}
	return uint16(data[0])<<8 | uint16(data[1]), nil
}

// DeselectTarget puts the given target back into the halt state without
// releasing the RF field, so a later SelectPassiveTarget can reselect it.
func (d *Device) DeselectTarget(ctx context.Context, tg byte) error {
	_, err := d.command(ctx, cmdInDeselect, []byte{tg}, defaultCommandTimeout)
	return err
}

// ReleaseTarget releases the given target and powers down the RF field.
func (d *Device) ReleaseTarget(ctx context.Context, tg byte) error {
	_, err := d.command(ctx, cmdInRelease, []byte{tg}, defaultCommandTimeout)
	return err
}
