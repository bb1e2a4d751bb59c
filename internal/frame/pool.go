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

import "sync"

// Transports read frames into a pooled buffer rather than allocating per
// call; every command/response round-trip on a polling loop would otherwise
// churn the GC with MaxFrameDataLength-sized slices.

const smallBufferSize = 64

var bufferPool = sync.Pool{
	New: func() any {
		buf := make([]byte, MaxFrameDataLength+MinFrameLength)
		return &buf
	},
}

var smallBufferPool = sync.Pool{
	New: func() any {
		buf := make([]byte, smallBufferSize)
		return &buf
	},
}

// GetBuffer returns a full-sized buffer (large enough for any legal frame)
// from the pool. Callers must return it with PutBuffer.
func GetBuffer() []byte {
	return *(bufferPool.Get().(*[]byte))
}

// GetSmallBuffer returns a smallBufferSize buffer suitable for ACK/NACK
// frames and other short reads. Callers must return it with PutBuffer.
func GetSmallBuffer() []byte {
	return *(smallBufferPool.Get().(*[]byte))
}

// PutBuffer returns buf to the pool it was allocated from. Passing a slice
// not obtained from GetBuffer/GetSmallBuffer is a no-op.
func PutBuffer(buf []byte) {
	switch cap(buf) {
	case MaxFrameDataLength + MinFrameLength:
		buf = buf[:cap(buf)]
		bufferPool.Put(&buf)
	case smallBufferSize:
		buf = buf[:cap(buf)]
		smallBufferPool.Put(&buf)
	}
}

// ExtractFrameData copies out the TFI+data portion of a located information
// frame (buf[off+2:off+2+dataLen], clipped to len(buf)) so the caller can
// release the pooled read buffer before decoding. off is the offset of the
// LEN byte within buf (3 past the preamble offset FindFrameStart returns),
// and dataLen is the validated LEN field.
func ExtractFrameData(buf []byte, off, dataLen int) []byte {
	start := off + 2 // skip LEN, LCS
	end := start + dataLen
	if end > len(buf) {
		end = len(buf)
	}
	out := make([]byte, end-start)
	copy(out, buf[start:end])
	return out
}
