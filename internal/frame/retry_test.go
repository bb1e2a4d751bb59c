// go-pn53x
// Copyright (c) 2025 The go-pn53x Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later

package frame

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestReceiveWithRetry_S7 covers scenario S7: the device NACKs or sends a
// corrupted frame twice, then succeeds on the third attempt.
func TestReceiveWithRetry_S7(t *testing.T) {
	calls := 0
	nacks := 0
	attempt := func() ([]byte, bool, error) {
		calls++
		if calls < 3 {
			return nil, true, ErrChecksumMismatch
		}
		return []byte{0xAA}, false, nil
	}
	sendNack := func() error {
		nacks++
		return nil
	}

	data, err := ReceiveWithRetry(attempt, sendNack)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAA}, data)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 2, nacks)
}

func TestReceiveWithRetry_ExhaustsAttempts(t *testing.T) {
	attempt := func() ([]byte, bool, error) {
		return nil, true, ErrChecksumMismatch
	}
	_, err := ReceiveWithRetry(attempt, func() error { return nil })
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestReceiveWithRetry_NonRetryableStopsImmediately(t *testing.T) {
	calls := 0
	attempt := func() ([]byte, bool, error) {
		calls++
		return nil, false, errors.New("hard I/O error")
	}
	_, err := ReceiveWithRetry(attempt, func() error {
		t.Fatal("sendNack should not be called for a non-retryable error")
		return nil
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}
