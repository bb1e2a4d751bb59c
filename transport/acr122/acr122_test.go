// go-pn53x
// Copyright (c) 2025 The go-pn53x Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later

package acr122

import (
	"testing"

	"github.com/nxp-rdlib/go-pn53x/internal/frame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractFrame_ValidVendorHeader(t *testing.T) {
	inner, err := frame.Wrap([]byte{0xD5, 0x03, 0x01, 0x02})
	require.NoError(t, err)

	raw := append([]byte{0xD5, 0x42, 0x00, 0x00, 0x00}, inner...)
	payload, err := extractFrame(raw)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xD5, 0x03, 0x01, 0x02}, payload)
}

func TestExtractFrame_WrongVendorByte(t *testing.T) {
	inner, err := frame.Wrap([]byte{0xD5, 0x03})
	require.NoError(t, err)

	raw := append([]byte{0x00, 0x42, 0x00, 0x00, 0x00}, inner...)
	_, err = extractFrame(raw)
	assert.ErrorIs(t, err, ErrUnexpectedVendorHeader)
}

func TestExtractFrame_NoPreamble(t *testing.T) {
	_, err := extractFrame([]byte{0xD5, 0x42, 0x00, 0x00, 0x00, 0x01, 0x02, 0x03})
	assert.ErrorIs(t, err, ErrUnexpectedVendorHeader)
}

func TestExtractFrame_HeaderTooShort(t *testing.T) {
	inner, err := frame.Wrap([]byte{0xD5, 0x03})
	require.NoError(t, err)
	raw := append([]byte{0xD5}, inner...)
	_, err = extractFrame(raw)
	assert.ErrorIs(t, err, ErrUnexpectedVendorHeader)
}

func TestConnectMode_Values(t *testing.T) {
	assert.NotEqual(t, PCSC, RawUSB)
	assert.NotEqual(t, Auto, PCSC)
}
