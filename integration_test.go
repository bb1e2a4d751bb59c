// go-pn53x
// Copyright (c) 2025 The go-pn53x Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later

package pn53x_test

import (
	"context"
	"testing"

	pn53x "github.com/nxp-rdlib/go-pn53x"
	"github.com/nxp-rdlib/go-pn53x/internal/virtualdriver"
	"github.com/nxp-rdlib/go-pn53x/target"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestVirtualDriver_EndToEnd drives the registry, Device, and initiator
// layers through the fixture-backed Driver with no physical transport
// involved, exactly what virtualdriver was built for.
func TestVirtualDriver_EndToEnd(t *testing.T) {
	virtualdriver.Register()

	dev, err := pn53x.Open("virtual:0")
	require.NoError(t, err)
	defer dev.Close()

	_, err = dev.GetFirmwareVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, pn53x.ChipPN532, dev.Chip())

	tgt, err := dev.SelectPassiveTarget(context.Background(),
		pn53x.Modulation{Type: pn53x.ModISO14443A, Baud: pn53x.Baud106}, nil)
	require.NoError(t, err)
	require.NotNil(t, tgt.ISO14443A)
	assert.Equal(t, target.KindISO14443A, tgt.Kind)
}
