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

// Package l2cap implements the joycon.Endpoint interface over Bluetooth
// L2CAP SEQPACKET sockets, the channel type HID devices use on the
// interrupt and control PSMs. SEQPACKET preserves message boundaries, so
// one read is always one report.
package l2cap

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync/atomic"

	joycon "github.com/ZaparooProject/go-joycon-relay"
	"golang.org/x/sys/unix"
)

// HID over L2CAP channel identifiers.
const (
	// PSMControl is the HID control channel.
	PSMControl = 17
	// PSMInterrupt is the HID interrupt channel carrying input reports.
	PSMInterrupt = 19
)

// Endpoint is a connected L2CAP SEQPACKET channel.
type Endpoint struct {
	peer   string
	fd     int
	closed atomic.Bool
}

// Connect opens an L2CAP channel to the device at addr
// ("AA:BB:CC:DD:EE:FF") on the given PSM.
func Connect(addr string, psm uint16) (*Endpoint, error) {
	bdaddr, err := parseBDAddr(addr)
	if err != nil {
		return nil, err
	}
	fd, err := newSocket()
	if err != nil {
		return nil, err
	}
	sa := &unix.SockaddrL2{
		PSM:      psm,
		Addr:     bdaddr,
		AddrType: unix.BDADDR_BREDR,
	}
	if err := unix.Connect(fd, sa); err != nil {
		_ = unix.Close(fd)
		return nil, &joycon.EndpointError{Op: "Connect", Name: peerName(addr, psm), Err: err}
	}
	return &Endpoint{fd: fd, peer: peerName(addr, psm)}, nil
}

// Listener accepts one incoming L2CAP connection on a local adapter
// address and PSM.
type Listener struct {
	name   string
	fd     int
	closed atomic.Bool
}

// Listen binds the local adapter address and listens on the given PSM.
func Listen(addr string, psm uint16) (*Listener, error) {
	bdaddr, err := parseBDAddr(addr)
	if err != nil {
		return nil, err
	}
	fd, err := newSocket()
	if err != nil {
		return nil, err
	}
	sa := &unix.SockaddrL2{
		PSM:      psm,
		Addr:     bdaddr,
		AddrType: unix.BDADDR_BREDR,
	}
	name := peerName(addr, psm)
	if err := unix.Bind(fd, sa); err != nil {
		_ = unix.Close(fd)
		return nil, &joycon.EndpointError{Op: "Bind", Name: name, Err: err}
	}
	if err := unix.Listen(fd, 1); err != nil {
		_ = unix.Close(fd)
		return nil, &joycon.EndpointError{Op: "Listen", Name: name, Err: err}
	}
	return &Listener{fd: fd, name: name}, nil
}

// Accept blocks until a peer connects and returns its endpoint.
func (l *Listener) Accept() (*Endpoint, error) {
	for {
		fd, sa, err := unix.Accept(l.fd)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return nil, &joycon.EndpointError{Op: "Accept", Name: l.name, Err: err}
		}
		peer := l.name
		if l2, ok := sa.(*unix.SockaddrL2); ok {
			peer = peerName(formatBDAddr(l2.Addr), l2.PSM)
		}
		return &Endpoint{fd: fd, peer: peer}, nil
	}
}

// Close closes the listening socket.
func (l *Listener) Close() error {
	if l.closed.Swap(true) {
		return nil
	}
	if err := unix.Close(l.fd); err != nil {
		return &joycon.EndpointError{Op: "Close", Name: l.name, Err: err}
	}
	return nil
}

// Send implements joycon.Endpoint. SEQPACKET writes are atomic; a short
// write is a failure, never a partial delivery.
func (e *Endpoint) Send(report []byte) error {
	if e.closed.Load() {
		return &joycon.EndpointError{Op: "Send", Name: e.peer, Err: joycon.ErrEndpointClosed}
	}
	n, err := unix.Write(e.fd, report)
	if err != nil {
		return &joycon.EndpointError{Op: "Send", Name: e.peer, Err: err}
	}
	if n != len(report) {
		return &joycon.EndpointError{Op: "Send", Name: e.peer, Err: io.ErrShortWrite}
	}
	return nil
}

// Receive implements joycon.Endpoint, blocking until one report arrives.
func (e *Endpoint) Receive(maxSize int) ([]byte, error) {
	buf := make([]byte, maxSize)
	for {
		n, err := unix.Read(e.fd, buf)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return nil, e.readError(err)
		}
		if n == 0 {
			e.closed.Store(true)
			return nil, &joycon.EndpointError{Op: "Receive", Name: e.peer, Err: joycon.ErrEndpointClosed}
		}
		return buf[:n], nil
	}
}

// ReceivePending implements joycon.Endpoint: one report if the socket has
// one queued, (nil, nil) otherwise. MSG_DONTWAIT keeps the socket itself
// blocking for Receive.
func (e *Endpoint) ReceivePending(maxSize int) ([]byte, error) {
	buf := make([]byte, maxSize)
	for {
		n, _, err := unix.Recvfrom(e.fd, buf, unix.MSG_DONTWAIT)
		if err == unix.EINTR {
			continue
		}
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return nil, nil
		}
		if err != nil {
			return nil, e.readError(err)
		}
		if n == 0 {
			e.closed.Store(true)
			return nil, &joycon.EndpointError{Op: "ReceivePending", Name: e.peer, Err: joycon.ErrEndpointClosed}
		}
		return buf[:n], nil
	}
}

func (e *Endpoint) readError(err error) error {
	if e.closed.Load() {
		return &joycon.EndpointError{Op: "Receive", Name: e.peer, Err: joycon.ErrEndpointClosed}
	}
	return &joycon.EndpointError{Op: "Receive", Name: e.peer, Err: err}
}

// Close implements joycon.Endpoint. Closing unblocks a pending Receive.
func (e *Endpoint) Close() error {
	if e.closed.Swap(true) {
		return nil
	}
	if err := unix.Close(e.fd); err != nil {
		return &joycon.EndpointError{Op: "Close", Name: e.peer, Err: err}
	}
	return nil
}

// IsConnected implements joycon.Endpoint.
func (e *Endpoint) IsConnected() bool {
	return !e.closed.Load()
}

// Type implements joycon.Endpoint.
func (*Endpoint) Type() joycon.EndpointType {
	return joycon.EndpointL2CAP
}

func newSocket() (int, error) {
	fd, err := unix.Socket(unix.AF_BLUETOOTH, unix.SOCK_SEQPACKET, unix.BTPROTO_L2CAP)
	if err != nil {
		return -1, &joycon.EndpointError{Op: "Socket", Err: err}
	}
	return fd, nil
}

// parseBDAddr converts "AA:BB:CC:DD:EE:FF" into the kernel's byte order
// (least significant byte first).
func parseBDAddr(addr string) ([6]byte, error) {
	var out [6]byte
	parts := strings.Split(addr, ":")
	if len(parts) != 6 {
		return out, fmt.Errorf("%w: %q", joycon.ErrInvalidAddress, addr)
	}
	for i, p := range parts {
		v, err := strconv.ParseUint(p, 16, 8)
		if err != nil {
			return out, fmt.Errorf("%w: %q", joycon.ErrInvalidAddress, addr)
		}
		out[5-i] = byte(v)
	}
	return out, nil
}

// formatBDAddr is the inverse of parseBDAddr.
func formatBDAddr(addr [6]byte) string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X",
		addr[5], addr[4], addr[3], addr[2], addr[1], addr[0])
}

func peerName(addr string, psm uint16) string {
	return fmt.Sprintf("%s/psm%d", addr, psm)
}
