// Package pn53x drives NFC reader/emulator hardware built around the NXP
// PN53x family (PN531, PN532, PN533).
//
// It implements the chip's command/response protocol — frame wrap/unwrap,
// checksums, the ACK/NACK handshake, register and parameter access, and
// raw bit-level framing for ISO/IEC 14443-A anti-collision — over a set of
// pluggable transports: USB bulk endpoints to a PN53x-USB dongle, a PC/SC
// or raw-USB path to an ACR122U reader, and serial connections to a
// PN532-UART board or an ARYGON-wrapped PN532.
//
// A Device acts either as an initiator (reader) against passive targets
// (ISO14443-A/B, FeliCa, Jewel/Topaz, MIFARE) or as a target, including the
// NFCIP-1 peer-to-peer Data Exchange Protocol.
//
// This package does not emulate a PN53x chip in software, does not support
// non-PN53x chips, and does not implement a tag filesystem or an
// application-layer stack such as NDEF — see the tagdata subpackage for an
// optional, non-core NDEF helper built on top of the public Device API.
package pn53x
