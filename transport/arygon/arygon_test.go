// go-pn53x
// Copyright (c) 2025 The go-pn53x Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later

package arygon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripSelector_Valid(t *testing.T) {
	body, err := stripSelector([]byte{'2', 0x00, 0x00, 0xFF, 0x00, 0xFF, 0x00})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x00, 0xFF, 0x00, 0xFF, 0x00}, body)
}

func TestStripSelector_WrongByte(t *testing.T) {
	_, err := stripSelector([]byte{'9', 0x00})
	assert.Error(t, err)
}

func TestStripSelector_Empty(t *testing.T) {
	_, err := stripSelector(nil)
	assert.Error(t, err)
}

func TestDriver_SetPropertyInt_IgnoresNonTimeoutProperty(t *testing.T) {
	drv := &Driver{pacing: defaultInterFramePacing}
	require.NoError(t, drv.SetPropertyInt(-1, 5))
	assert.Equal(t, defaultInterFramePacing, drv.pacing)
}
