// go-pn53x
// Copyright (c) 2025 The go-pn53x Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-pn53x.
//
// go-pn53x is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-pn53x is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-pn53x; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

package frame

import "errors"

// ErrShortBuffer is returned by ValidateFrameLength when the supplied
// buffer does not contain enough bytes for the length and length-checksum
// fields. The root package wraps this in a *TransportError so callers get
// the Op/Port context; internal/frame itself stays free of a dependency on
// the root package to avoid an import cycle (the root package imports
// internal/frame for the wire codec).
var ErrShortBuffer = errors.New("frame: buffer too short for length fields")

// ValidateFrameLength validates the frame length field and length checksum
// Returns the validated frame length and whether a retry is needed (NACK should be sent)
// This consolidates the validateFrameLength logic from UART and I2C transports
func ValidateFrameLength(
	buf []byte, off, totalLen int, operation, port string,
) (frameLen int, shouldRetry bool, err error) {
	// Increment offset to point to length byte (matching original behavior)
	off++

	// Check we have enough bytes for length and length checksum
	if off+1 >= totalLen {
		return 0, false, ErrShortBuffer
	}

	frameLen = int(buf[off])
	lengthChecksum := buf[off+1]

	// Validate length checksum (LEN + LCS should equal 0)
	if ((frameLen + int(lengthChecksum)) & 0xFF) != 0 {
		return 0, true, nil
	}

	return frameLen, false, nil
}

// ValidateFrameChecksum validates the frame data checksum
// Returns true if checksum is invalid (requiring NACK), false if valid
// This consolidates the validateFrameChecksum logic from UART and I2C transports
func ValidateFrameChecksum(buf []byte, start, end int) bool {
	if end > len(buf) {
		return true
	}

	chk := byte(0)
	for _, b := range buf[start:end] {
		chk += b
	}

	return chk != 0
}

// FindFrameStart locates the start of a PN532 frame in the buffer
// Returns the offset where the frame starts, or -1 if not found
// shouldRetry indicates if more data should be read
func FindFrameStart(buf []byte, totalLen int, startMarker byte) (offset int, shouldRetry bool) {
	for i := 0; i < totalLen-1; i++ {
		if buf[i] == Preamble && buf[i+1] == startMarker {
			return i, false
		}
	}

	// If we didn't find a complete start sequence, we might need more data
	if totalLen > 0 && buf[totalLen-1] == Preamble {
		return -1, true
	}

	return -1, false
}
