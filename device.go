// go-pn53x
// Copyright (c) 2025 The go-pn53x Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// Device handle (spec §3): one claimed reader, exclusively owned by its
// caller until Close. Generalized from the teacher's Device/ConnectDevice
// pair, trimmed of the NTAG/MIFARE-application-layer config the teacher
// carries (DeviceConfig.RetryConfig tied to tag polling) since that layer
// is out of scope here (spec Non-goal (c)).

package pn53x

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Device represents one claimed PN53x reader/emulator.
//
// Thread safety: a Device is not safe for concurrent use from multiple
// goroutines (spec §5) except for AbortCommand, which is explicitly
// designed to be called from a different goroutine than the one blocked
// in a Transceive-driven operation.
type Device struct {
	driver     Driver
	connString string
	chip       ChipVariant
	flags      DeviceFlags

	mu       sync.Mutex
	poisoned bool
	lastErr  error

	abortCh chan struct{}
}

func newDevice(connString string, driver Driver) *Device {
	return &Device{
		driver:     driver,
		connString: connString,
		chip:       ChipUnknown,
		abortCh:    make(chan struct{}, 1),
	}
}

// ConnString returns the connection string Open was given.
func (d *Device) ConnString() string {
	return d.connString
}

// Chip returns the detected chip variant, or ChipUnknown before the first
// successful GetFirmwareVersion.
func (d *Device) Chip() ChipVariant {
	return d.chip
}

// Flags returns a copy of the device's cached operational flags.
func (d *Device) Flags() DeviceFlags {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.flags
}

// StrError renders the most recent error observed on this handle, per the
// strerror-style convenience spec §7 describes.
func (d *Device) StrError() string {
	d.mu.Lock()
	err := d.lastErr
	d.mu.Unlock()
	if err == nil {
		return d.driver.StrError()
	}
	return err.Error()
}

// Close idles the device and releases its driver. The handle must not be
// used afterward.
func (d *Device) Close() error {
	if err := d.driver.Idle(); err != nil {
		logger.Debug().Err(err).Msg("idle before close failed")
	}
	return d.driver.Close()
}

// poison marks the handle unusable after an I/O error, per spec §5/§7: on
// I/O error the handle is poisoned and every subsequent call returns
// ErrHandlePoisoned until Close.
func (d *Device) poison(err error) error {
	d.mu.Lock()
	d.poisoned = true
	d.lastErr = err
	d.mu.Unlock()
	return err
}

func (d *Device) recordError(err error) error {
	d.mu.Lock()
	d.lastErr = err
	d.mu.Unlock()
	return err
}

// checkUsable returns ErrHandlePoisoned if a prior I/O error poisoned this
// handle.
func (d *Device) checkUsable() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.poisoned {
		return ErrHandlePoisoned
	}
	return nil
}

// transceive is the single choke point every command-issuing method calls
// through: it checks the poison flag, forwards to the driver, and
// classifies the result (I/O error -> poison; everything else -> cached
// last-error only) per spec §7's taxonomy.
func (d *Device) transceive(tx []byte, timeout time.Duration) ([]byte, error) {
	if err := d.checkUsable(); err != nil {
		return nil, err
	}

	rx, err := d.driver.Transceive(tx, timeout)
	if err == nil {
		d.recordError(nil)
		return rx, nil
	}

	switch GetErrorType(err) {
	case ErrorTypeTimeout, ErrorTypeTransient:
		return nil, d.recordError(err)
	default:
		return nil, d.poison(err)
	}
}

// command builds a chip-level frame (D4 + opcode + args), transceives it,
// and strips the D5 response direction byte and opcode+1 echo, returning
// the remaining response data. If opcode is one of statusByteOpcodes, a
// non-zero status byte is classified per Table E.1 and returned as an
// error instead of data.
func (d *Device) command(ctx context.Context, opcode byte, args []byte, timeout time.Duration) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled before command 0x%02X: %w", opcode, err)
	}

	rx, err := d.transceive(buildCommandFrame(opcode, args), timeout)
	if err != nil {
		return nil, err
	}
	return d.parseCommandResponse(rx, opcode)
}

// commandAbortable is command's counterpart for operations that may block
// on RF activity long enough to need AbortCommand to interrupt them
// (PollTarget, TransceiveBytes/Bits, ListPassiveTargets/SelectPassiveTarget's
// target search).
func (d *Device) commandAbortable(ctx context.Context, opcode byte, args []byte, timeout time.Duration) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled before command 0x%02X: %w", opcode, err)
	}

	rx, err := d.transceiveAbortable(ctx, buildCommandFrame(opcode, args), timeout)
	if err != nil {
		return nil, err
	}
	return d.parseCommandResponse(rx, opcode)
}

func buildCommandFrame(opcode byte, args []byte) []byte {
	tx := make([]byte, 0, 2+len(args))
	tx = append(tx, hostToPN53x, opcode)
	tx = append(tx, args...)
	return tx
}

func (d *Device) parseCommandResponse(rx []byte, opcode byte) ([]byte, error) {
	if len(rx) < 2 {
		return nil, d.recordError(fmt.Errorf("%w: response too short for opcode 0x%02X", ErrFrameCorrupted, opcode))
	}
	if rx[0] != pn53xToHost {
		return nil, d.recordError(fmt.Errorf("%w: unexpected response direction byte 0x%02X", ErrFrameCorrupted, rx[0]))
	}
	if rx[1] != opcode+1 {
		return nil, d.recordError(fmt.Errorf("%w: response opcode 0x%02X does not echo request 0x%02X",
			ErrFrameCorrupted, rx[1], opcode))
	}

	data := rx[2:]
	if statusByteOpcodes[opcode] && len(data) > 0 {
		if statusErr := ClassifyChipStatus(data[0]); statusErr != nil {
			d.flags.LastErrorCode = int(data[0] & 0x3F)
			return data, d.recordError(statusErr)
		}
		d.flags.LastErrorCode = 0
	}

	return data, nil
}

// transceiveAbortable runs transceive on a background goroutine so that
// either ctx's cancellation or a concurrent AbortCommand call can
// interrupt it; both paths call the driver's best-effort Abort and then
// wait for the goroutine to unwind before returning, per spec §5's
// cancellation model.
func (d *Device) transceiveAbortable(ctx context.Context, tx []byte, timeout time.Duration) ([]byte, error) {
	type result struct {
		rx  []byte
		err error
	}
	// Discard an AbortCommand request left over from a moment when no
	// command was in flight, so it cannot abort this one.
	select {
	case <-d.abortCh:
	default:
	}

	resCh := make(chan result, 1)
	go func() {
		rx, err := d.transceive(tx, timeout)
		resCh <- result{rx, err}
	}()

	select {
	case res := <-resCh:
		return res.rx, res.err
	case <-ctx.Done():
		if err := d.driver.Abort(); err != nil {
			logger.Debug().Err(err).Msg("abort on context cancellation failed")
		}
		<-resCh
		return nil, d.recordError(ctx.Err())
	case <-d.abortCh:
		if err := d.driver.Abort(); err != nil {
			logger.Debug().Err(err).Msg("abort on AbortCommand failed")
		}
		<-resCh
		return nil, d.recordError(ErrAborted)
	}
}

// AbortCommand best-effort interrupts the command currently blocked in a
// commandAbortable call on this handle. Safe to call from a different
// goroutine than the one that issued the command (spec §5). A no-op if no
// command is in flight.
func (d *Device) AbortCommand() {
	select {
	case d.abortCh <- struct{}{}:
	default:
	}
}
