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
	"testing"

	"github.com/stretchr/testify/assert"
)

// buildFrame returns a 50-byte frame with the given offset/value pairs set.
func buildFrame(set map[int]byte) Report {
	r := make(Report, 50)
	r[0] = 0xA1
	for off, v := range set {
		r[off] = v
	}
	return r
}

func TestClassifyPeripheral(t *testing.T) {
	t.Parallel()
	tests := []struct {
		set  map[int]byte
		name string
		want PeripheralReportKind
	}{
		{
			name: "standard input report",
			set:  map[int]byte{1: 0x30},
			want: PeripheralPassThrough,
		},
		{
			name: "mcu config reply",
			set:  map[int]byte{1: 0x21, 14: 0xA0, 15: 0x21},
			want: PeripheralMCUConfigReply,
		},
		{
			name: "mcu state reply",
			set:  map[int]byte{1: 0x21, 14: 0x80, 15: 0x22},
			want: PeripheralMCUStateReply,
		},
		{
			name: "nfc mode report",
			set:  map[int]byte{1: 0x31},
			want: PeripheralNFCModeReport,
		},
		{
			name: "config marker needs both bytes",
			set:  map[int]byte{1: 0x21, 14: 0xA0, 15: 0x22},
			want: PeripheralPassThrough,
		},
		{
			name: "state marker needs both bytes",
			set:  map[int]byte{1: 0x21, 14: 0x80, 15: 0x21},
			want: PeripheralPassThrough,
		},
		{
			name: "subcommand reply without mcu markers",
			set:  map[int]byte{1: 0x21, 14: 0x02},
			want: PeripheralPassThrough,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ClassifyPeripheral(buildFrame(tt.set)))
		})
	}
}

// Classification must depend only on the marker offsets: frames that differ
// everywhere else classify identically.
func TestClassifyPeripheralIgnoresOtherBytes(t *testing.T) {
	t.Parallel()
	base := buildFrame(map[int]byte{1: 0x21, 14: 0xA0, 15: 0x21})
	noisy := make(Report, len(base))
	copy(noisy, base)
	for i := range noisy {
		if i == 1 || i == 14 || i == 15 {
			continue
		}
		noisy[i] = byte(0xC3 ^ i)
	}
	assert.Equal(t, ClassifyPeripheral(base), ClassifyPeripheral(noisy))
}

func TestClassifyPeripheralShortFrame(t *testing.T) {
	t.Parallel()
	assert.Equal(t, PeripheralPassThrough, ClassifyPeripheral(Report{0xA1}))
	assert.Equal(t, PeripheralPassThrough, ClassifyPeripheral(nil))
	// Long enough for the report type but not the MCU markers.
	assert.Equal(t, PeripheralNFCModeReport, ClassifyPeripheral(Report{0xA1, 0x31, 0x00}))
}

func TestClassifyHost(t *testing.T) {
	t.Parallel()
	tests := []struct {
		set  map[int]byte
		name string
		want HostReportKind
	}{
		{
			name: "rumble only",
			set:  map[int]byte{1: 0x01, 11: 0x00},
			want: HostPassThrough,
		},
		{
			name: "set mcu config subcommand",
			set:  map[int]byte{1: 0x01, 11: 0x21},
			want: HostMCUCommand,
		},
		{
			name: "set mcu state subcommand",
			set:  map[int]byte{1: 0x01, 11: 0x22},
			want: HostMCUCommand,
		},
		{
			name: "unrelated subcommand",
			set:  map[int]byte{1: 0x01, 11: 0x30},
			want: HostPassThrough,
		},
		{
			name: "mcu data request",
			set:  map[int]byte{1: 0x11, 11: 0x02},
			want: HostMCUData,
		},
		{
			name: "other output report",
			set:  map[int]byte{1: 0x10},
			want: HostPassThrough,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ClassifyHost(buildFrame(tt.set)))
		})
	}
}

func TestReportAccessors(t *testing.T) {
	t.Parallel()
	r := buildFrame(map[int]byte{2: 0x7F, 11: 0x02, 12: 0x06, 13: 0x01})
	assert.Equal(t, byte(0x7F), r.Timer())
	assert.Equal(t, byte(0x02), r.SubcommandID())
	assert.Equal(t, byte(0x06), r.SubcommandArgs()[0])
	assert.Equal(t, byte(0x01), r.SubcommandArgs()[1])

	var short Report
	assert.Equal(t, byte(0), short.Timer())
	assert.Equal(t, byte(0), short.SubcommandID())
	assert.Nil(t, short.SubcommandArgs())
}
