// go-pn53x
// Copyright (c) 2025 The go-pn53x Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later

//go:build !windows

package serial

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireLock_SecondClaimFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake-port")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	lock1, err := acquireLock(path)
	require.NoError(t, err)
	defer lock1.release()

	_, err = acquireLock(path)
	assert.ErrorIs(t, err, ErrPortBusy)
}

func TestAcquireLock_ReleaseAllowsReacquire(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake-port")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	lock1, err := acquireLock(path)
	require.NoError(t, err)
	lock1.release()

	lock2, err := acquireLock(path)
	require.NoError(t, err)
	lock2.release()
}
