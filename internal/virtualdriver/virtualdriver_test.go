// go-pn53x
// Copyright (c) 2025 The go-pn53x Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later

package virtualdriver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriver_FirmwareVersion(t *testing.T) {
	d := New(nil)
	rx, err := d.Transceive([]byte{0xD4, 0x02}, time.Second)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xD5, 0x03, 0x32, 0x01, 0x06, 0x07}, rx)
}

func TestDriver_ListPassiveTargetPresentAndAbsent(t *testing.T) {
	d := New(nil)
	rx, err := d.Transceive([]byte{0xD4, 0x4A, 0x01, 0x00}, time.Second)
	require.NoError(t, err)
	assert.Equal(t, byte(0xD5), rx[0])
	assert.Equal(t, byte(0x4B), rx[1])
	assert.Equal(t, byte(0x01), rx[2]) // NbTg

	d.SetPresent(false)
	rx, err = d.Transceive([]byte{0xD4, 0x4A, 0x01, 0x00}, time.Second)
	require.NoError(t, err)
	assert.Equal(t, byte(0x00), rx[2])
}

func TestDriver_UnknownOpcode(t *testing.T) {
	d := New(nil)
	_, err := d.Transceive([]byte{0xD4, 0xFF}, time.Second)
	assert.Error(t, err)
	assert.NotEmpty(t, d.StrError())
}
