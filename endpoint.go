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

// Endpoint is one side of the relay: an ordered, message-boundary-preserving
// channel to either the Joy-Con or the Switch. Backends live under
// transport/.
type Endpoint interface {
	// Send transmits one report, all or nothing.
	Send(report []byte) error

	// Receive blocks until one report of at most maxSize bytes arrives.
	// The Joy-Con side's Receive paces the relay loop.
	Receive(maxSize int) ([]byte, error)

	// ReceivePending returns one report if immediately available, or
	// (nil, nil) when the channel has nothing queued. The Switch side is
	// only ever polled this way so its silence never stalls the loop.
	ReceivePending(maxSize int) ([]byte, error)

	// Close closes the endpoint. Closing unblocks a pending Receive.
	Close() error

	// IsConnected returns true if the endpoint is connected
	IsConnected() bool

	// Type returns the endpoint type
	Type() EndpointType
}

// EndpointType represents the type of endpoint
type EndpointType string

const (
	// EndpointL2CAP represents a Bluetooth L2CAP SEQPACKET endpoint.
	EndpointL2CAP EndpointType = "l2cap"
	// EndpointSerial represents a rail UART endpoint for bench rigs.
	EndpointSerial EndpointType = "serial"
	// EndpointMock represents a scripted endpoint for testing
	EndpointMock EndpointType = "mock"
)
