// go-pn53x
// Copyright (c) 2025 The go-pn53x Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later

package pn53x

import (
	"context"
	"testing"
	"time"

	"github.com/nxp-rdlib/go-pn53x/target"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectPassiveTarget_ISO14443A(t *testing.T) {
	drv := newFakeDriver()
	drv.respond[cmdInListPassiveTarget] = func(args []byte) ([]byte, error) {
		require.Equal(t, byte(1), args[0]) // MaxTg
		require.Equal(t, byte(0x00), args[1])
		return []byte{
			0x01,                   // NbTg
			0x01,                   // Tg
			0x00, 0x04,             // ATQA
			0x08,                   // SAK
			0x04,                   // UIDLen
			0x11, 0x22, 0x33, 0x44, // UID
		}, nil
	}
	d := newDevice("test:0", drv)
	d.chip = ChipPN532

	tgt, err := d.SelectPassiveTarget(context.Background(), Modulation{Type: ModISO14443A, Baud: Baud106}, nil)
	require.NoError(t, err)
	require.NotNil(t, tgt.ISO14443A)
	assert.Equal(t, []byte{0x11, 0x22, 0x33, 0x44}, tgt.ISO14443A.UID)
}

func TestSelectPassiveTarget_NoTag(t *testing.T) {
	drv := newFakeDriver()
	drv.respond[cmdInListPassiveTarget] = func([]byte) ([]byte, error) {
		return []byte{0x00}, nil
	}
	d := newDevice("test:0", drv)

	_, err := d.SelectPassiveTarget(context.Background(), Modulation{Type: ModISO14443A, Baud: Baud106}, nil)
	assert.ErrorIs(t, err, ErrNoTagDetected)
}

func TestListPassiveTargets_TwoTargets(t *testing.T) {
	drv := newFakeDriver()
	drv.respond[cmdInListPassiveTarget] = func(args []byte) ([]byte, error) {
		require.Equal(t, byte(2), args[0])
		return []byte{
			0x02,
			0x01, 0x00, 0x04, 0x08, 0x04, 0x11, 0x22, 0x33, 0x44,
			0x02, 0x00, 0x04, 0x08, 0x04, 0x55, 0x66, 0x77, 0x88,
		}, nil
	}
	d := newDevice("test:0", drv)

	targets, err := d.ListPassiveTargets(context.Background(), Modulation{Type: ModISO14443A, Baud: Baud106}, 2, nil)
	require.NoError(t, err)
	require.Len(t, targets, 2)
	assert.Equal(t, []byte{0x11, 0x22, 0x33, 0x44}, targets[0].ISO14443A.UID)
	assert.Equal(t, []byte{0x55, 0x66, 0x77, 0x88}, targets[1].ISO14443A.UID)
}

func TestPollTarget_FindsISO14443A(t *testing.T) {
	drv := newFakeDriver()
	drv.respond[cmdInAutoPoll] = func(args []byte) ([]byte, error) {
		return []byte{
			0x01,                   // NbTg
			0x00,                   // Type: ISO14443A
			0x09,                   // TgLen (Tg + ATQA + SAK + UIDLen + 4-byte UID)
			0x01,                   // Tg
			0x00, 0x04, 0x08, 0x04, // ATQA, SAK, UIDLen
			0xAA, 0xBB, 0xCC, 0xDD, // UID
		}, nil
	}
	d := newDevice("test:0", drv)

	tgt, err := d.PollTarget(context.Background(), []ModulationType{ModISO14443A}, 1, 150*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, target.KindISO14443A, tgt.Kind)
}

func TestTransceiveBytes(t *testing.T) {
	drv := newFakeDriver()
	drv.respond[cmdInDataExchange] = func(args []byte) ([]byte, error) {
		require.Equal(t, byte(0x01), args[0])
		return []byte{0x00, 0xCA, 0xFE}, nil // status + data
	}
	drv.respond[cmdGetGeneralStatus] = func([]byte) ([]byte, error) {
		return []byte{0x01, 0x02}, nil
	}
	d := newDevice("test:0", drv)

	rx, cycles, err := d.TransceiveBytesTimed(context.Background(), 1, []byte{0x30, 0x04}, time.Second)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xCA, 0xFE}, rx)
	assert.Equal(t, uint16(0x0102), cycles)
}

// TestTransceiveBits_REQA covers scenario S5: a 7-bit REQA short frame
// goes out verbatim (no padding, no parity) and a byte-aligned ATQA
// response comes back mirrored+parity-packed per spec §4.4, unwrapped
// back to the two plain ATQA bytes.
func TestTransceiveBits_REQA(t *testing.T) {
	drv := newFakeDriver()
	drv.respond[cmdInCommunicateThru] = func(args []byte) ([]byte, error) {
		require.Equal(t, []byte{0x26}, args) // 7-bit REQA, verbatim
		return []byte{0x00, 0x04, 0x88, 0x02}, nil // status + ATQA wire, mirrored+parity-packed
	}
	drv.respond[cmdGetGeneralStatus] = func([]byte) ([]byte, error) {
		return []byte{0x00, 0x00}, nil
	}
	d := newDevice("test:0", drv)
	d.flags.HandleCRC = true // REQA never carries a CRC_A

	rx, err := d.TransceiveBits(context.Background(), []byte{0x26}, 7, time.Second)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x04, 0x44}, rx)
}

func TestDeselectAndReleaseTarget(t *testing.T) {
	drv := newFakeDriver()
	drv.respond[cmdInDeselect] = func([]byte) ([]byte, error) { return []byte{0x00}, nil }
	drv.respond[cmdInRelease] = func([]byte) ([]byte, error) { return []byte{0x00}, nil }
	d := newDevice("test:0", drv)

	assert.NoError(t, d.DeselectTarget(context.Background(), 1))
	assert.NoError(t, d.ReleaseTarget(context.Background(), 1))
}
