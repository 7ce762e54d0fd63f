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

// TimerTracker accumulates the Joy-Con's wrapping 8-bit input report timer
// into a monotonic counter. Diagnostic only: the count is reported at
// teardown so dropped frames show up as gaps.
type TimerTracker struct {
	last  byte
	count int
}

// Update folds the timer byte of the next Joy-Con report into the counter.
func (t *TimerTracker) Update(tick byte) {
	if tick < t.last {
		t.count += int(tick) - (int(t.last) - 255)
	} else {
		t.count += int(tick) - int(t.last)
	}
	t.last = tick
}

// Count returns the accumulated tick count.
func (t *TimerTracker) Count() int { return t.count }
