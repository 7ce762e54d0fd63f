// go-joycon-relay
// Copyright (c) 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-joycon-relay.
//
// go-joycon-relay is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-joycon-relay is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-joycon-relay; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

package testing

// Canned interrupt-channel reports modeled on captures of a Joy-Con (R)
// pairing session. Byte 0 is the HID transaction header (0xA1 input,
// 0xA2 output); semantic offsets start at byte 1.

// EmptyReport is the 0x3F input report the Joy-Con sends right after the
// interrupt channel opens.
func EmptyReport() []byte {
	return []byte{0xA1, 0x3F, 0x00, 0x00, 0x08, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
}

// DeviceInfoReply is a 0x21 subcommand reply carrying device info, the
// frame the handshake waits for before entering the main loop.
func DeviceInfoReply() []byte {
	r := make([]byte, 50)
	r[0] = 0xA1
	r[1] = 0x21
	r[2] = 0x05
	r[13] = 0x82 // ack
	r[14] = 0x02 // device info subcommand
	r[15] = 0x03
	r[16] = 0x48
	return r
}

// StandardInput is a 0x30 full input report with the given timer byte.
func StandardInput(timer byte) []byte {
	r := make([]byte, 50)
	r[0] = 0xA1
	r[1] = 0x30
	r[2] = timer
	r[3] = 0x8E // battery + connection info
	return r
}

// NFCModeInput is a 0x31 report as sent by a real Joy-Con, telemetry in
// the head and a recognizable pattern in the MCU payload area.
func NFCModeInput(timer byte) []byte {
	r := make([]byte, 363)
	r[0] = 0xA1
	r[1] = 0x31
	r[2] = timer
	r[3] = 0x8E
	for i := 50; i < len(r); i++ {
		r[i] = byte(i)
	}
	return r
}

// MCUConfigReply is the Joy-Con's genuine ack to a Set MCU configuration
// subcommand, carrying the 0xA0/0x21 markers the classifier keys on.
func MCUConfigReply(timer byte) []byte {
	r := make([]byte, 50)
	r[0] = 0xA1
	r[1] = 0x21
	r[2] = timer
	r[3] = 0x8E
	r[14] = 0xA0
	r[15] = 0x21
	return r
}

// MCUStateReply is the Joy-Con's genuine ack to a Set MCU state
// subcommand, carrying the 0x80/0x22 markers.
func MCUStateReply(timer byte) []byte {
	r := make([]byte, 50)
	r[0] = 0xA1
	r[1] = 0x21
	r[2] = timer
	r[3] = 0x8E
	r[14] = 0x80
	r[15] = 0x22
	return r
}

// HostSetMCUConfig is a Switch 0x01 output report selecting an MCU
// operating mode; arg (0, 0) is stand-by, (0, 4) is NFC.
func HostSetMCUConfig(arg1, arg2 byte) []byte {
	r := make([]byte, 50)
	r[0] = 0xA2
	r[1] = 0x01
	r[11] = 0x21
	r[13] = arg1
	r[14] = arg2
	return r
}

// HostSetMCUState is a Switch 0x01 output report suspending (0x00) or
// resuming (0x01) the MCU; other ids are unimplemented on the real device.
func HostSetMCUState(arg byte) []byte {
	r := make([]byte, 50)
	r[0] = 0xA2
	r[1] = 0x01
	r[11] = 0x22
	r[12] = arg
	return r
}

// HostMCUData is a Switch 0x11 output report polling the MCU, with the
// given subcommand id and arguments.
func HostMCUData(subcommand byte, args ...byte) []byte {
	r := make([]byte, 50)
	r[0] = 0xA2
	r[1] = 0x11
	r[11] = subcommand
	copy(r[12:], args)
	return r
}

// HostAck is a generic Switch output report with no MCU relevance.
func HostAck() []byte {
	r := make([]byte, 12)
	r[0] = 0xA2
	r[1] = 0x01
	return r
}
