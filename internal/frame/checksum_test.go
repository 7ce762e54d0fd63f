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

package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChecksum(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		data []byte
		want byte
	}{
		{
			name: "empty data",
			data: []byte{},
			want: 0x00,
		},
		{
			name: "single zero byte",
			data: []byte{0x00},
			want: 0x00,
		},
		{
			name: "single byte 0x01",
			data: []byte{0x01},
			want: 0x07,
		},
		{
			name: "single byte 0xFF",
			data: []byte{0xFF},
			want: 0xF3,
		},
		{
			name: "standard check input",
			data: []byte("123456789"),
			want: 0xF4, // CRC-8 check value for polynomial 0x07
		},
		{
			name: "zero status block",
			data: make([]byte, 33),
			want: 0x00,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Checksum(tt.data); got != tt.want {
				t.Errorf("Checksum() = 0x%02X, want 0x%02X", got, tt.want)
			}
		})
	}
}

func TestChecksumDeterministic(t *testing.T) {
	t.Parallel()
	data := make([]byte, 33)
	for i := range data {
		data[i] = byte(i * 7)
	}
	first := Checksum(data)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Checksum(data))
	}
}
