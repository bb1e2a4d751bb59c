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

// CalculateLengthChecksum computes the length checksum (LCS)
// The LCS is the two's complement of the length
func CalculateLengthChecksum(length byte) byte {
	return (^length) + 1
}

// CalculateChecksum returns the modulo-256 sum of data.
func CalculateChecksum(data []byte) byte { return sumBytes(data) }

// ValidateChecksum reports whether data fails the zero-sum check (its
// modulo-256 sum is non-zero), i.e. whether the frame should be NACKed.
func ValidateChecksum(data []byte) bool { return sumBytes(data) != 0 }

// CalculateDataChecksum computes the data checksum (DCS): the two's
// complement of tfi plus the sum of data.
func CalculateDataChecksum(tfi byte, data []byte) byte { return twosComplement(tfi + sumBytes(data)) }
