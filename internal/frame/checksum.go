// Copyright 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package frame computes the NFC/IR MCU payload checksum.
package frame

// The MCU seals every status block and NFC payload with CRC-8, polynomial
// 0x07, init 0x00, unreflected, no final xor. The Switch verifies it and
// silently drops frames that fail, so the algorithm must match the vendor
// microcontroller bit for bit.
const crcPoly = 0x07

var crcTable = buildTable()

func buildTable() [256]byte {
	var table [256]byte
	for i := range table {
		crc := byte(i)
		for bit := 0; bit < 8; bit++ {
			if crc&0x80 != 0 {
				crc = crc<<1 ^ crcPoly
			} else {
				crc <<= 1
			}
		}
		table[i] = crc
	}
	return table
}

// Checksum computes the MCU CRC-8 over data.
func Checksum(data []byte) byte {
	crc := byte(0)
	for _, b := range data {
		crc = crcTable[crc^b]
	}
	return crc
}
