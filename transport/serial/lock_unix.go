// go-pn53x
// Copyright (c) 2025 The go-pn53x Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// OS advisory lock on POSIX (spec.md §9 Open Question 3): an exclusive,
// non-blocking flock on the device node itself, replacing the original
// termios sentinel-file approach.

//go:build !windows

package serial

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// ErrPortBusy is returned by Open when another process already holds the
// advisory lock on the same port.
var ErrPortBusy = fmt.Errorf("serial: port already claimed")

type portLock struct {
	file *os.File
}

func acquireLock(name string) (*portLock, error) {
	f, err := os.OpenFile(name, os.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("serial: open %s for locking: %w", name, err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		if err == unix.EWOULDBLOCK {
			return nil, ErrPortBusy
		}
		return nil, fmt.Errorf("serial: flock %s: %w", name, err)
	}

	return &portLock{file: f}, nil
}

func (l *portLock) release() {
	if l == nil || l.file == nil {
		return
	}
	unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
	l.file.Close()
}
