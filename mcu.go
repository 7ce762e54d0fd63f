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

package joycon

import (
	"encoding/hex"
	"fmt"

	"github.com/ZaparooProject/go-joycon-relay/internal/frame"
)

// OperatingState is the NFC/IR MCU operating state. The relay only ever
// commands StateStandBy and StateNFC; the remaining values exist because the
// status block's state byte encodes them.
type OperatingState int

const (
	// StateNotInitialized is the power-on state.
	StateNotInitialized OperatingState = iota
	// StateIR is infrared camera mode (never entered by the relay).
	StateIR
	// StateNFC is contactless tag mode.
	StateNFC
	// StateStandBy is the idle state.
	StateStandBy
	// StateBusy reports the MCU as busy.
	StateBusy
)

func (s OperatingState) String() string {
	switch s {
	case StateNotInitialized:
		return "not-initialized"
	case StateIR:
		return "ir"
	case StateNFC:
		return "nfc"
	case StateStandBy:
		return "stand-by"
	case StateBusy:
		return "busy"
	default:
		return "unknown"
	}
}

// statusByte is the state encoding used inside the MCU status block.
func (s OperatingState) statusByte() byte {
	switch s {
	case StateNFC:
		return 4
	case StateBusy:
		return 6
	case StateNotInitialized, StateStandBy:
		return 1
	default:
		return 0
	}
}

// Action is the MCU's current NFC action, selected by Switch 0x11 reports.
type Action int

const (
	// ActionNone means no NFC operation is pending.
	ActionNone Action = iota
	// ActionRequestStatus answers the next poll with the status block.
	ActionRequestStatus
	// ActionStartTagPolling reports the tag on the reader.
	ActionStartTagPolling
	// ActionStartTagDiscovery reports the reader as searching.
	ActionStartTagDiscovery
	// ActionReadTag emits the first chunk of the tag image.
	ActionReadTag
	// ActionReadTag2 emits the remainder of the tag image.
	ActionReadTag2
	// ActionReadFinished emits the read completion summary.
	ActionReadFinished
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionRequestStatus:
		return "request-status"
	case ActionStartTagPolling:
		return "start-tag-polling"
	case ActionStartTagDiscovery:
		return "start-tag-discovery"
	case ActionReadTag:
		return "read-tag"
	case ActionReadTag2:
		return "read-tag-2"
	case ActionReadFinished:
		return "read-finished"
	default:
		return "unknown"
	}
}

// readInProgress reports whether the action is part of the tag read
// sequence, during which Switch commands are ignored.
func (a Action) readInProgress() bool {
	return a == ActionReadTag || a == ActionReadTag2 || a == ActionReadFinished
}

// MCU data request subcommand ids and NFC control arguments (0x11 reports).
const (
	mcuCmdRequestStatus = 0x01
	mcuCmdNFCControl    = 0x02

	nfcArgStartPolling   = 0x01
	nfcArgStopPolling    = 0x02
	nfcArgStartDiscovery = 0x04
	nfcArgStartRead      = 0x06
)

// Set MCU state subcommand arguments (0x01/0x22 reports).
const (
	mcuStateSuspend = 0x00
	mcuStateResume  = 0x01
)

const (
	// mcuPayloadSize is the MCU payload appended to a 0x31 report. The
	// final byte is always the CRC over the preceding bytes.
	mcuPayloadSize = 313
	// statusBlockSize is the MCU status block embedded in subcommand
	// replies, trailing CRC included.
	statusBlockSize = 34
	// firstChunkSize is the tag image capacity of the first read frame;
	// secondChunkSize the capacity of the follow-up frame.
	firstChunkSize  = 245
	secondChunkSize = 295
)

// Fixed payload fragments captured from a genuine Joy-Con. The long filler
// in the first read frame is opaque must-preserve data; the Switch rejects
// reads without it.
var (
	readTagHeader  = mustHex("010001310200000001020007")
	readTagFiller  = mustHex("000000007DFDF0793651ABD7466E39C191BABEB856CEEDF1CE44CC75EAFB27094D087AE803003B3C7778860000")
	readTag2Header = mustHex("02000927")
	readDoneHeader = mustHex("0931040000000101020007")
	pollingHeader  = mustHex("0931090000000101020007")
)

func mustHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic("joycon: bad hex literal: " + err.Error())
	}
	return b
}

// MCU emulates the Joy-Con's NFC/IR microcontroller. It owns the operating
// state, the current action and the synthesized payload buffer. State
// changes only happen through ApplyDataCommand, BuildConfigReply and
// BuildStateReply; the relay session is the sole caller, so no locking.
type MCU struct {
	tagImage   []byte
	fwMajor    [2]byte
	fwMinor    [2]byte
	payload    [mcuPayloadSize]byte
	state      OperatingState
	action     Action
	readOffset int
	statusSeq  byte
}

// NewMCU returns an MCU in the power-on state. tagImage is the raw tag
// payload presented to the Switch; it may be nil, in which case callers
// should run fully transparent and never ask the MCU for replies.
func NewMCU(tagImage []byte) *MCU {
	return &MCU{
		fwMajor:  [2]byte{0x00, 0x06},
		fwMinor:  [2]byte{0x00, 0x1A},
		state:    StateNotInitialized,
		action:   ActionNone,
		tagImage: tagImage,
	}
}

// State returns the current operating state.
func (m *MCU) State() OperatingState { return m.state }

// Action returns the current NFC action.
func (m *MCU) Action() Action { return m.action }

// HasTagImage reports whether a tag image was configured.
func (m *MCU) HasTagImage() bool { return m.tagImage != nil }

// ApplyDataCommand applies the MCU transition selected by a Switch 0x11
// report. It returns a human-readable note for the trace when a transition
// happened, or "" otherwise. Commands arriving while a tag read is in
// progress are ignored: an in-progress read cannot be interrupted. Unknown
// subcommands and arguments are diagnostic only, never fatal.
func (m *MCU) ApplyDataCommand(subcommand byte, args []byte) string {
	if m.action.readInProgress() {
		Debugf("MCU command 0x%02X ignored, read in progress (%s)", subcommand, m.action)
		return ""
	}
	switch subcommand {
	case mcuCmdRequestStatus:
		m.action = ActionRequestStatus
		return "MCU status requested"
	case mcuCmdNFCControl:
		if len(args) == 0 {
			Debugf("NFC control command without arguments")
			return ""
		}
		switch args[0] {
		case nfcArgStartDiscovery:
			m.action = ActionStartTagDiscovery
			return "Tag discovery started"
		case nfcArgStartPolling:
			m.action = ActionStartTagPolling
			return "Started polling"
		case nfcArgStopPolling:
			m.action = ActionNone
			return "Stopped polling"
		case nfcArgStartRead:
			m.action = ActionReadTag
			m.readOffset = 0
			return "Tag read started"
		default:
			Debugf("unknown NFC control argument 0x%02X", args[0])
		}
	default:
		Debugf("unknown MCU subcommand 0x%02X", subcommand)
	}
	return ""
}

// BuildConfigReply synthesizes the reply to a Set MCU configuration
// exchange: the original Joy-Con reply with the fixed markers and a fresh
// status block, plus the operating state change the remembered Switch
// command asked for. command may be nil when no MCU command was seen yet;
// the fixed-shape reply is still emitted, only the state change is skipped.
func (m *MCU) BuildConfigReply(original, command Report) (Report, string) {
	out := cloneReport(original, offMCUStatus+statusBlockSize)
	out[offReportType] = reportSubcommandReply
	out[offAckMarker] = 0x8E
	out[offMCUMarker0] = mcuMarkerConfig0
	out[offMCUMarker1] = mcuMarkerConfig1

	m.updateStatus()
	copy(out[offMCUStatus:], m.payload[:statusBlockSize-1])
	out[offMCUStatus+statusBlockSize-1] = frame.Checksum(out[offMCUStatus : offMCUStatus+statusBlockSize-1])

	if len(command) < offSubArgs+3 {
		Debugf("MCU config reply without a remembered command, state unchanged")
		return out, ""
	}
	args := command.SubcommandArgs()
	switch {
	case args[1] == 0 && args[2] == 0:
		m.state = StateStandBy
		return out, "Changed MCU state to stand by"
	case args[1] == 0 && args[2] == 4:
		m.state = StateNFC
		return out, "Changed MCU state to NFC"
	default:
		Debugf("unknown MCU config argument % X", args[1:3])
	}
	return out, ""
}

// BuildStateReply synthesizes the reply to a Set MCU state exchange.
// Subcommand ids beyond Suspend and Resume are the fatal
// ErrUnsupportedOperation: this corner of the protocol is only partially
// reverse engineered, and guessing a reply would corrupt Switch state
// silently instead of failing here.
func (m *MCU) BuildStateReply(original, command Report) (Report, error) {
	out := cloneReport(original, offMCUMarker1+1)
	out[offReportType] = reportSubcommandReply
	out[offAckMarker] = 0x8E
	out[offMCUMarker0] = mcuMarkerState0
	out[offMCUMarker1] = mcuMarkerState1

	if len(command) <= offSubArgs {
		Debugf("MCU state reply without a remembered command, state unchanged")
		return out, nil
	}
	switch command[offSubArgs] {
	case mcuStateResume:
		m.action = ActionNone
		m.state = StateStandBy
	case mcuStateSuspend:
		m.state = StateStandBy
	default:
		return nil, fmt.Errorf("%w: set MCU state argument 0x%02X",
			ErrUnsupportedOperation, command[offSubArgs])
	}
	return out, nil
}

// BuildNFCReport synthesizes a 0x31 report: the first 50 bytes of the
// original (controller telemetry, preserved verbatim) followed by the MCU
// payload for the current action. Each call with a read action in progress
// advances the read sequence.
func (m *MCU) BuildNFCReport(original Report) Report {
	m.updateNFCPayload()
	out := make(Report, offNFCPayload+mcuPayloadSize)
	copy(out, original[:min(len(original), offNFCPayload)])
	copy(out[offNFCPayload:], m.payload[:])
	return out
}

// updateStatus fills the status block head of the payload buffer. Bytes not
// listed here are must-preserve zeros from observed captures.
func (m *MCU) updateStatus() {
	m.payload[0] = 1
	m.payload[1] = 0
	m.payload[2] = m.statusSeq
	m.payload[3] = m.fwMajor[0]
	m.payload[4] = m.fwMajor[1]
	m.payload[5] = m.fwMinor[0]
	m.payload[6] = m.fwMinor[1]
	m.payload[7] = m.state.statusByte()
	m.statusSeq++
}

// updateNFCPayload rebuilds the payload buffer for the current action and
// seals it with the CRC. Layouts are byte-exact captures from a genuine
// Joy-Con; the tag UID appears as image bytes [0:3]+[4:8] throughout.
func (m *MCU) updateNFCPayload() {
	for i := range m.payload {
		m.payload[i] = 0
	}
	switch m.action {
	case ActionRequestStatus:
		m.updateStatus()
	case ActionNone:
		m.payload[0] = 0xFF
	case ActionStartTagDiscovery:
		m.payload[0] = 0x2A
		m.payload[2] = 5
		m.payload[5] = 9
		m.payload[6] = 0x31
	case ActionStartTagPolling:
		m.payload[0] = 0x2A
		m.payload[2] = 5
		if m.tagImage != nil {
			n := copy(m.payload[5:], pollingHeader)
			m.writeTagUID(5 + n)
		} else {
			m.payload[5] = 9
			m.payload[6] = 0x31
		}
	case ActionReadTag:
		m.payload[0] = 0x3A
		m.payload[2] = 7
		off := 3 + copy(m.payload[3:], readTagHeader)
		off = m.writeTagUID(off)
		off += copy(m.payload[off:], readTagFiller)
		chunk := m.tagImage[:min(len(m.tagImage), firstChunkSize)]
		copy(m.payload[off:], chunk)
		m.readOffset = len(chunk)
		if m.readOffset >= len(m.tagImage) {
			m.action = ActionReadFinished
		} else {
			m.action = ActionReadTag2
		}
	case ActionReadTag2:
		m.payload[0] = 0x3A
		m.payload[2] = 7
		off := 3 + copy(m.payload[3:], readTag2Header)
		rest := m.tagImage[m.readOffset:min(len(m.tagImage), firstChunkSize+secondChunkSize)]
		copy(m.payload[off:], rest)
		m.readOffset += len(rest)
		m.action = ActionReadFinished
	case ActionReadFinished:
		m.payload[0] = 0x2A
		m.payload[2] = 5
		off := 5 + copy(m.payload[5:], readDoneHeader)
		m.writeTagUID(off)
		m.action = ActionNone
	}
	m.payload[mcuPayloadSize-1] = frame.Checksum(m.payload[:mcuPayloadSize-1])
}

// writeTagUID writes the 7-byte tag UID (image bytes [0:3] and [4:8], the
// check byte at 3 skipped) at off and returns the offset past it. Images
// shorter than the UID area contribute what they have.
func (m *MCU) writeTagUID(off int) int {
	n := copy(m.payload[off:], m.tagImage[:min(len(m.tagImage), 3)])
	if len(m.tagImage) > 4 {
		n += copy(m.payload[off+3:], m.tagImage[4:min(len(m.tagImage), 8)])
	}
	return off + 7
}

// cloneReport copies r into a fresh buffer of at least minLen bytes,
// zero-padding when the original is shorter.
func cloneReport(r Report, minLen int) Report {
	out := make(Report, max(len(r), minLen))
	copy(out, r)
	return out
}
