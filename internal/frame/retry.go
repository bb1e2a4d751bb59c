// go-pn53x
// Copyright (c) 2025 The go-pn53x Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// Transport-agnostic ACK/NACK retry, generalized from the teacher's
// transport/i2c/i2c.go receiveFrame/waitAck retry loop (maxTries = 3) so
// the byte-stream drivers (pn532uart, arygon, pn53xusb) share one retry
// policy instead of re-implementing it. acr122 does not use it: its
// PC/SC and raw-USB paths do a single request/response exchange.

package frame

// MaxReceiveAttempts bounds how many times ReceiveWithRetry re-tries a
// single frame receive before giving up (spec §4.4/§7, scenario S7).
const MaxReceiveAttempts = 3

// ReceiveAttempt performs one attempt at reading a single frame (ACK/NACK
// or information frame) from the transport. shouldRetry distinguishes a
// corrupted/truncated frame or a NACK, worth another try, from a hard I/O
// error or frame-protocol violation that should propagate immediately.
type ReceiveAttempt func() (data []byte, shouldRetry bool, err error)

// ReceiveWithRetry calls attempt up to MaxReceiveAttempts times, invoking
// onRetry between a retryable failure and the next attempt. onRetry is
// what the protocol requires to provoke a fresh response: sending a NACK
// for the post-ACK information-frame read, or resending the original
// command for the ACK-slot handshake itself (spec §4.4/§7, scenario S7).
// It returns the first successful read, or the last error once attempts
// are exhausted.
func ReceiveWithRetry(attempt ReceiveAttempt, onRetry func() error) ([]byte, error) {
	var lastErr error
	for tries := 0; tries < MaxReceiveAttempts; tries++ {
		data, shouldRetry, err := attempt()
		if err == nil {
			return data, nil
		}
		lastErr = err
		if !shouldRetry {
			return nil, err
		}
		if tries < MaxReceiveAttempts-1 {
			if retryErr := onRetry(); retryErr != nil {
				return nil, retryErr
			}
		}
	}
	return nil, lastErr
}
