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

// Package serial implements the joycon.Endpoint interface over a serial
// port, for bench rigs where the Joy-Con is wired through its rail UART
// instead of connected over the radio. The UART is a byte stream, so each
// report is framed with a 2-byte big-endian length prefix; this framing is
// specific to the rig and never appears on the radio path.
package serial

import (
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	joycon "github.com/ZaparooProject/go-joycon-relay"
	"go.bug.st/serial"
)

// lengthPrefixSize is the report framing header on the wire.
const lengthPrefixSize = 2

// pollTimeout is the per-read timeout used to emulate a non-blocking poll
// on top of the stream.
const pollTimeout = 5 * time.Millisecond

// Endpoint is a framed serial connection to a rail-wired Joy-Con.
type Endpoint struct {
	port     serial.Port
	portName string
	rxBuf    []byte
	mu       sync.Mutex
	closed   bool
}

// New opens the serial port at the Joy-Con rail baud rate.
func New(portName string) (*Endpoint, error) {
	port, err := serial.Open(portName, &serial.Mode{
		BaudRate: 1000000,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", portName, err)
	}
	return &Endpoint{port: port, portName: portName}, nil
}

// Send implements joycon.Endpoint, writing the length prefix and the
// report, looping until the stream accepted everything.
func (e *Endpoint) Send(report []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return &joycon.EndpointError{Op: "Send", Name: e.portName, Err: joycon.ErrEndpointClosed}
	}
	buf := make([]byte, lengthPrefixSize+len(report))
	binary.BigEndian.PutUint16(buf, uint16(len(report)))
	copy(buf[lengthPrefixSize:], report)
	for len(buf) > 0 {
		n, err := e.port.Write(buf)
		if err != nil {
			return &joycon.EndpointError{Op: "Send", Name: e.portName, Err: err}
		}
		buf = buf[n:]
	}
	return nil
}

// Receive implements joycon.Endpoint, blocking until a whole frame has
// been assembled from the stream.
func (e *Endpoint) Receive(maxSize int) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for {
		if report, ok := e.takeFrame(maxSize); ok {
			return report, nil
		}
		if err := e.fill(pollTimeout); err != nil {
			return nil, err
		}
	}
}

// ReceivePending implements joycon.Endpoint: a single short read pass, one
// frame if it completed one, (nil, nil) otherwise.
func (e *Endpoint) ReceivePending(maxSize int) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if report, ok := e.takeFrame(maxSize); ok {
		return report, nil
	}
	if err := e.fill(pollTimeout); err != nil {
		return nil, err
	}
	if report, ok := e.takeFrame(maxSize); ok {
		return report, nil
	}
	return nil, nil
}

// fill reads whatever the port has within timeout into the frame buffer.
func (e *Endpoint) fill(timeout time.Duration) error {
	if e.closed {
		return &joycon.EndpointError{Op: "Receive", Name: e.portName, Err: joycon.ErrEndpointClosed}
	}
	if err := e.port.SetReadTimeout(timeout); err != nil {
		return &joycon.EndpointError{Op: "Receive", Name: e.portName, Err: err}
	}
	chunk := make([]byte, 512)
	n, err := e.port.Read(chunk)
	if err != nil {
		return &joycon.EndpointError{Op: "Receive", Name: e.portName, Err: err}
	}
	e.rxBuf = append(e.rxBuf, chunk[:n]...)
	return nil
}

// takeFrame pops one complete frame from the buffer if present, clipped to
// maxSize.
func (e *Endpoint) takeFrame(maxSize int) ([]byte, bool) {
	if len(e.rxBuf) < lengthPrefixSize {
		return nil, false
	}
	frameLen := int(binary.BigEndian.Uint16(e.rxBuf))
	if len(e.rxBuf) < lengthPrefixSize+frameLen {
		return nil, false
	}
	report := make([]byte, frameLen)
	copy(report, e.rxBuf[lengthPrefixSize:lengthPrefixSize+frameLen])
	e.rxBuf = e.rxBuf[lengthPrefixSize+frameLen:]
	if maxSize > 0 && len(report) > maxSize {
		report = report[:maxSize]
	}
	return report, true
}

// Close implements joycon.Endpoint.
func (e *Endpoint) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	if err := e.port.Close(); err != nil {
		return &joycon.EndpointError{Op: "Close", Name: e.portName, Err: err}
	}
	return nil
}

// IsConnected implements joycon.Endpoint.
func (e *Endpoint) IsConnected() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.closed
}

// Type implements joycon.Endpoint.
func (*Endpoint) Type() joycon.EndpointType {
	return joycon.EndpointSerial
}
