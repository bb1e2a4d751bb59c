// go-pn53x
// Copyright (c) 2025 The go-pn53x Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later

package pn53xusb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKnownDevices_NotEmpty(t *testing.T) {
	assert.Len(t, knownDevices, 3)
	for _, d := range knownDevices {
		assert.NotZero(t, d.VID)
		assert.NotZero(t, d.PID)
	}
}

func TestDriver_ImplementsCapabilityChecker(t *testing.T) {
	var d *Driver
	assert.False(t, d.HasCapability("nonsense"))
}
