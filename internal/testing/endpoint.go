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

// Package testing provides scripted relay endpoints and canned Joy-Con and
// Switch reports for exercising the session state machine without hardware.
package testing

import (
	joycon "github.com/ZaparooProject/go-joycon-relay"
	"github.com/ZaparooProject/go-joycon-relay/internal/syncutil"
)

// ScriptedEndpoint implements joycon.Endpoint from pre-queued reports.
// Blocking receives pop from the main queue; an exhausted queue behaves as a
// peer close, which is how scripted sessions terminate. Non-blocking
// receives pop from a separate pending queue so tests control exactly which
// loop iteration sees Switch traffic.
type ScriptedEndpoint struct {
	sendHook  func([]byte)
	name      string
	queue     [][]byte
	pending   [][]byte
	sent      [][]byte
	mu        syncutil.Mutex
	connected bool
}

// NewScriptedEndpoint creates a connected scripted endpoint.
func NewScriptedEndpoint(name string) *ScriptedEndpoint {
	return &ScriptedEndpoint{
		name:      name,
		connected: true,
	}
}

// QueueReport appends a report for blocking Receive calls.
func (e *ScriptedEndpoint) QueueReport(report []byte) {
	e.mu.Lock()
	e.queue = append(e.queue, report)
	e.mu.Unlock()
}

// QueuePending appends a report for ReceivePending calls.
func (e *ScriptedEndpoint) QueuePending(report []byte) {
	e.mu.Lock()
	e.pending = append(e.pending, report)
	e.mu.Unlock()
}

// Sent returns every report sent through the endpoint, in order.
func (e *ScriptedEndpoint) Sent() [][]byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([][]byte, len(e.sent))
	copy(out, e.sent)
	return out
}

// SetSendHook installs a hook invoked on every Send, for cross-endpoint
// ordering assertions.
func (e *ScriptedEndpoint) SetSendHook(hook func([]byte)) {
	e.mu.Lock()
	e.sendHook = hook
	e.mu.Unlock()
}

// Send implements joycon.Endpoint.
func (e *ScriptedEndpoint) Send(report []byte) error {
	e.mu.Lock()
	if !e.connected {
		e.mu.Unlock()
		return &joycon.EndpointError{Op: "Send", Name: e.name, Err: joycon.ErrEndpointClosed}
	}
	buf := make([]byte, len(report))
	copy(buf, report)
	e.sent = append(e.sent, buf)
	hook := e.sendHook
	e.mu.Unlock()
	if hook != nil {
		hook(buf)
	}
	return nil
}

// Receive implements joycon.Endpoint. An empty queue reads as a peer close.
func (e *ScriptedEndpoint) Receive(maxSize int) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.connected {
		return nil, &joycon.EndpointError{Op: "Receive", Name: e.name, Err: joycon.ErrEndpointClosed}
	}
	if len(e.queue) == 0 {
		e.connected = false
		return nil, &joycon.EndpointError{Op: "Receive", Name: e.name, Err: joycon.ErrEndpointRead}
	}
	report := e.queue[0]
	e.queue = e.queue[1:]
	return clip(report, maxSize), nil
}

// ReceivePending implements joycon.Endpoint.
func (e *ScriptedEndpoint) ReceivePending(maxSize int) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.connected {
		return nil, &joycon.EndpointError{Op: "ReceivePending", Name: e.name, Err: joycon.ErrEndpointClosed}
	}
	if len(e.pending) == 0 {
		return nil, nil
	}
	report := e.pending[0]
	e.pending = e.pending[1:]
	return clip(report, maxSize), nil
}

// Close implements joycon.Endpoint.
func (e *ScriptedEndpoint) Close() error {
	e.mu.Lock()
	e.connected = false
	e.mu.Unlock()
	return nil
}

// IsConnected implements joycon.Endpoint.
func (e *ScriptedEndpoint) IsConnected() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.connected
}

// Type implements joycon.Endpoint.
func (*ScriptedEndpoint) Type() joycon.EndpointType {
	return joycon.EndpointMock
}

func clip(report []byte, maxSize int) []byte {
	if maxSize > 0 && len(report) > maxSize {
		return report[:maxSize]
	}
	return report
}
