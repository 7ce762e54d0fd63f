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

// Package joycon implements the protocol core of a Joy-Con (R) relay: report
// classification, the emulated NFC/IR microcontroller, and the timer tracking
// used for session diagnostics. The relay forwards interrupt-channel traffic
// between a Joy-Con and a Nintendo Switch unchanged, except for the NFC side
// of the MCU protocol, where replies are synthesized from a locally loaded
// tag image so the Switch believes a physical tag is on the reader.
//
// Report offsets and marker bytes follow the reverse-engineered Joy-Con HID
// report format. They must be reproduced exactly: the Switch silently drops
// spoofed frames that deviate from it.
package joycon

// Report is one fixed-format frame exchanged on the interrupt channel, in
// either direction. Reports are immutable once received; synthesis always
// produces a new buffer.
type Report []byte

// MaxReportSize is the receive bound for a single interrupt-channel report.
const MaxReportSize = 350

// Interrupt channel report layout. Offsets are shared by both directions
// unless noted.
const (
	offReportType = 1  // input/output report id
	offTimer      = 2  // Joy-Con frames: wrapping 8-bit timer
	offAckMarker  = 3  // subcommand replies: 0x8E ack marker
	offSubcommand = 11 // Switch frames: subcommand id
	offSubArgs    = 12 // Switch frames: first subcommand argument
	offMCUMarker0 = 14 // Joy-Con subcommand replies: MCU report type
	offMCUMarker1 = 15
	offMCUStatus  = 16 // Joy-Con subcommand replies: MCU status block
	offNFCPayload = 50 // 0x31 reports: MCU payload start
)

// Report type ids.
const (
	reportSubcommandReply = 0x21 // Joy-Con -> Switch, subcommand ack
	reportNFCMode         = 0x31 // Joy-Con -> Switch, full/NFC-IR mode
	reportRumbleSubcmd    = 0x01 // Switch -> Joy-Con, rumble + subcommand
	reportMCUData         = 0x11 // Switch -> Joy-Con, request MCU data
)

// Subcommand ids carried by 0x01 output reports.
const (
	subcmdSetMCUConfig = 0x21
	subcmdSetMCUState  = 0x22
)

// MCU report type markers found at offsets 14/15 of subcommand replies.
const (
	mcuMarkerConfig0 = 0xA0
	mcuMarkerConfig1 = 0x21
	mcuMarkerState0  = 0x80
	mcuMarkerState1  = 0x22
)

// PeripheralReportKind is the semantic category of a Joy-Con originated
// report, derived purely from fixed byte markers.
type PeripheralReportKind int

const (
	// PeripheralPassThrough reports are forwarded verbatim.
	PeripheralPassThrough PeripheralReportKind = iota
	// PeripheralMCUConfigReply is the ack to a Set MCU configuration
	// subcommand; its MCU status block gets replaced during spoofing.
	PeripheralMCUConfigReply
	// PeripheralMCUStateReply is the ack to a Set MCU state subcommand.
	PeripheralMCUStateReply
	// PeripheralNFCModeReport is a 0x31 full report whose trailing MCU
	// payload gets replaced during spoofing.
	PeripheralNFCModeReport
)

func (k PeripheralReportKind) String() string {
	switch k {
	case PeripheralPassThrough:
		return "pass-through"
	case PeripheralMCUConfigReply:
		return "mcu-config-reply"
	case PeripheralMCUStateReply:
		return "mcu-state-reply"
	case PeripheralNFCModeReport:
		return "nfc-mode-report"
	default:
		return "unknown"
	}
}

// HostReportKind is the semantic category of a Switch originated report.
type HostReportKind int

const (
	// HostPassThrough reports are forwarded verbatim with no other effect.
	HostPassThrough HostReportKind = iota
	// HostMCUCommand is a 0x01 output report carrying a Set MCU
	// configuration or Set MCU state subcommand. The relay remembers the
	// most recent one; reply synthesis reads its arguments.
	HostMCUCommand
	// HostMCUData is a 0x11 output report polling the MCU for data. Its
	// subcommand drives the emulated MCU's action transitions.
	HostMCUData
)

func (k HostReportKind) String() string {
	switch k {
	case HostPassThrough:
		return "pass-through"
	case HostMCUCommand:
		return "mcu-command"
	case HostMCUData:
		return "mcu-data"
	default:
		return "unknown"
	}
}

// ClassifyPeripheral maps a Joy-Con report to its semantic category. Frames
// too short to carry the markers are pass-through.
func ClassifyPeripheral(r Report) PeripheralReportKind {
	if len(r) > offMCUMarker1 &&
		r[offMCUMarker0] == mcuMarkerConfig0 && r[offMCUMarker1] == mcuMarkerConfig1 {
		return PeripheralMCUConfigReply
	}
	if len(r) > offMCUMarker1 &&
		r[offMCUMarker0] == mcuMarkerState0 && r[offMCUMarker1] == mcuMarkerState1 {
		return PeripheralMCUStateReply
	}
	if len(r) > offReportType && r[offReportType] == reportNFCMode {
		return PeripheralNFCModeReport
	}
	return PeripheralPassThrough
}

// ClassifyHost maps a Switch report to its semantic category.
func ClassifyHost(r Report) HostReportKind {
	if len(r) <= offReportType {
		return HostPassThrough
	}
	switch r[offReportType] {
	case reportRumbleSubcmd:
		if len(r) > offSubcommand &&
			(r[offSubcommand] == subcmdSetMCUConfig || r[offSubcommand] == subcmdSetMCUState) {
			return HostMCUCommand
		}
	case reportMCUData:
		if len(r) > offSubcommand {
			return HostMCUData
		}
	}
	return HostPassThrough
}

// Timer returns the wrapping 8-bit timer byte of a Joy-Con report.
func (r Report) Timer() byte {
	if len(r) <= offTimer {
		return 0
	}
	return r[offTimer]
}

// SubcommandID returns the subcommand id of a Switch report.
func (r Report) SubcommandID() byte {
	if len(r) <= offSubcommand {
		return 0
	}
	return r[offSubcommand]
}

// SubcommandArgs returns the subcommand argument bytes of a Switch report.
// The slice aliases the report; callers must not modify it.
func (r Report) SubcommandArgs() []byte {
	if len(r) <= offSubArgs {
		return nil
	}
	return r[offSubArgs:]
}
