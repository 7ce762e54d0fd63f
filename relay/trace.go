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

package relay

import (
	"fmt"
	"os"
	"strings"

	"github.com/ZaparooProject/go-joycon-relay/internal/syncutil"
)

// Hex dump split points: the column where the fixed payload ends and the
// subcommand section begins, per direction.
const (
	switchSplit     = 10
	controllerSplit = 13
)

// TraceSink accumulates one formatted entry per directional frame, plus
// commentary markers, and writes them to disk exactly once at teardown.
// Owned by the relay session; the mutex only guards against a late signal
// handler racing the final flush.
type TraceSink struct {
	path    string
	entries []string
	mu      syncutil.Mutex
	flushed bool
}

// NewTraceSink creates a trace sink that flushes to path.
func NewTraceSink(path string) *TraceSink {
	return &TraceSink{path: path}
}

// RecordHost appends a Switch originated frame.
func (t *TraceSink) RecordHost(report []byte) {
	t.append(formatReport(report, switchSplit, "Switch"))
}

// RecordPeripheral appends a Joy-Con originated frame.
func (t *TraceSink) RecordPeripheral(report []byte) {
	t.append(formatReport(report, controllerSplit, "Controller"))
}

// Comment appends a commentary marker.
func (t *TraceSink) Comment(message string) {
	t.append("### " + message + " ###")
}

// Len returns the number of recorded entries.
func (t *TraceSink) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

func (t *TraceSink) append(entry string) {
	t.mu.Lock()
	t.entries = append(t.entries, entry)
	t.mu.Unlock()
}

// Flush writes the accumulated entries newline-joined to the sink's path,
// overwriting any previous run. Only the first call writes; teardown may be
// reached from more than one failure path.
func (t *TraceSink) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.flushed {
		return nil
	}
	t.flushed = true
	if err := os.WriteFile(t.path, []byte(strings.Join(t.entries, "\n")), 0o644); err != nil {
		return fmt.Errorf("failed to write trace file: %w", err)
	}
	return nil
}

// formatReport renders a frame in hex, split into payload and subcommand
// sections at the given column. Long frames get a line break in the
// subcommand section after byte 49 so NFC payloads stay readable.
func formatReport(data []byte, split int, name string) string {
	var payload, subcommand strings.Builder
	for i, b := range data {
		if i <= split {
			fmt.Fprintf(&payload, "%02X ", b)
		} else {
			fmt.Fprintf(&subcommand, "%02X ", b)
			if i == 49 && len(data) > 50 {
				subcommand.WriteByte('\n')
			}
		}
	}
	return fmt.Sprintf("--- %s Msg ---\nPayload:    %s\nSubcommand: %s",
		name, payload.String(), subcommand.String())
}
