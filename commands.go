// go-pn53x
// Copyright (c) 2025 The go-pn53x Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// Command opcode table, expanded from the subset the teacher library used
// (GetFirmwareVersion, SAMConfiguration, InListPassiveTarget, InDataExchange,
// InRelease, InSelect, InAutoPoll, PowerDown, InCommunicateThru,
// RFConfiguration) to the full set named in the protocol-engine component
// design: registers, parameters, ATR/PSL/DEP opcodes, and the Tg* target
// emulation opcodes the teacher never needed.

package pn53x

// Direction bytes prefix every chip-level frame payload.
const (
	hostToPN53x byte = 0xD4
	pn53xToHost byte = 0xD5
)

// Command opcodes, PN53x user manual section 7.
const (
	cmdDiagnose              byte = 0x00
	cmdGetFirmwareVersion    byte = 0x02
	cmdGetGeneralStatus      byte = 0x04
	cmdReadRegister          byte = 0x06
	cmdWriteRegister         byte = 0x08
	cmdSetParameters         byte = 0x12
	cmdSAMConfiguration      byte = 0x14
	cmdPowerDown             byte = 0x16
	cmdRFConfiguration       byte = 0x32
	cmdInJumpForPSL          byte = 0x46
	cmdInJumpForDEP          byte = 0x56
	cmdInATR                 byte = 0x50
	cmdInPSL                 byte = 0x4E
	cmdInDataExchange        byte = 0x40
	cmdInCommunicateThru     byte = 0x42
	cmdInDeselect            byte = 0x44
	cmdInSelect              byte = 0x54
	cmdInRelease             byte = 0x52
	cmdInListPassiveTarget   byte = 0x4A
	cmdInAutoPoll            byte = 0x60
	cmdTgInitAsTarget        byte = 0x8C
	cmdTgGetInitiatorCommand byte = 0x88
	cmdTgGetData             byte = 0x86
	cmdTgSetData             byte = 0x8E
	cmdTgResponseToInitiator byte = 0x90
	cmdTgSetGeneralBytes     byte = 0x92
	cmdTgGetTargetStatus     byte = 0x8A
	cmdTgSetMetaData         byte = 0x94
)

// Wakeup-source bits for PowerDown's WakeUpEnable argument.
const (
	wakeupHSU     byte = 0x01
	wakeupSPI     byte = 0x02
	wakeupI2C     byte = 0x04
	wakeupGPIOP32 byte = 0x08
	wakeupGPIOP34 byte = 0x10
	wakeupRF      byte = 0x20
	wakeupINT1    byte = 0x80
)

// pn532WakeSequence is sent once before first use on PN532-UART transports;
// the chip otherwise remains in low-power state and ignores commands.
var pn532WakeSequence = []byte{
	0x55, 0x55, 0x00, 0x00, 0x00, 0x00, 0x00, 0xFF,
	0x03, 0xFD, hostToPN53x, 0x14, 0x01, 0x17, 0x00,
}

// statusByteOpcodes is the set of command opcodes whose first response byte
// is a chip status code rather than raw data.
var statusByteOpcodes = map[byte]bool{
	cmdInDataExchange:        true,
	cmdInCommunicateThru:     true,
	cmdInDeselect:            true,
	cmdInJumpForPSL:          true,
	cmdInPSL:                 true,
	cmdInATR:                 true,
	cmdInSelect:              true,
	cmdInJumpForDEP:          true,
	cmdTgGetData:             true,
	cmdTgGetInitiatorCommand: true,
	cmdTgSetData:             true,
	cmdTgResponseToInitiator: true,
	cmdTgSetGeneralBytes:     true,
	cmdTgSetMetaData:         true,
	cmdPowerDown:             true,
}
