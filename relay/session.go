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

// Package relay runs the proxy session between a Joy-Con and a Switch:
// handshake, the interleaved main loop, and guaranteed teardown.
package relay

import (
	"context"
	"fmt"
	"time"

	joycon "github.com/ZaparooProject/go-joycon-relay"
)

// Session owns both peer endpoints, the emulated MCU, the timer tracker and
// the trace sink for one program run. It is strictly single threaded: the
// Joy-Con's blocking read paces the loop, the Switch side is only ever
// polled, and all state is mutated inside one loop iteration.
type Session struct {
	peripheral  joycon.Endpoint
	host        joycon.Endpoint
	config      *Config
	mcu         *joycon.MCU
	trace       *TraceSink
	lastCommand joycon.Report
	timer       joycon.TimerTracker
	started     time.Time
}

// NewSession creates a relay session over the given endpoints. peripheral is
// the Joy-Con side, host the Switch side.
func NewSession(peripheral, host joycon.Endpoint, config *Config) *Session {
	if config == nil {
		config = DefaultConfig()
	}
	return &Session{
		peripheral: peripheral,
		host:       host,
		config:     config,
		mcu:        joycon.NewMCU(config.TagImage),
		trace:      NewTraceSink(config.TracePath),
	}
}

// Trace returns the session's trace sink.
func (s *Session) Trace() *TraceSink { return s.trace }

// TimerCount returns the accumulated Joy-Con timer ticks, for teardown
// diagnostics.
func (s *Session) TimerCount() int { return s.timer.Count() }

// Elapsed returns how long the main loop has been running.
func (s *Session) Elapsed() time.Duration {
	if s.started.IsZero() {
		return 0
	}
	return time.Since(s.started)
}

// Run drives the session through handshake, main loop and teardown. It only
// returns on context cancellation or a failure; teardown (trace flushed,
// both endpoints closed) runs on every path out. The main loop has no
// termination condition of its own: a stalled Joy-Con blocks indefinitely,
// an accepted limitation of the synchronous point-to-point design.
func (s *Session) Run(ctx context.Context) error {
	// Closing the endpoints is what unblocks a pending receive when the
	// operator interrupts the session.
	stop := context.AfterFunc(ctx, func() {
		_ = s.peripheral.Close()
		_ = s.host.Close()
	})
	defer stop()
	defer s.teardown()

	if err := s.handshake(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %w", joycon.ErrHandshakeFailed, err)
	}

	s.trace.Comment("Entering Main Loop")
	s.started = time.Now()
	for {
		if err := s.step(); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
	}
}

// teardown funnels every exit path through the same cleanup: trace flushed,
// both endpoints closed.
func (s *Session) teardown() {
	if err := s.trace.Flush(); err != nil {
		joycon.Debugf("trace flush failed: %v", err)
	}
	_ = s.peripheral.Close()
	_ = s.host.Close()
}

// handshake replays the pairing choreography the Switch expects: take the
// Joy-Con's initial report, present it a few times with fixed spacing, relay
// the Switch's reply back, then busy-poll the Joy-Con until its device info
// reply arrives and forward it once.
func (s *Session) handshake() error {
	initial, err := s.peripheral.Receive(s.config.MaxReportSize)
	if err != nil {
		return err
	}
	s.trace.Comment("Joy-Con Empty Report")
	s.trace.RecordPeripheral(initial)

	for i := 0; i < s.config.HandshakeRepeats; i++ {
		joycon.Debugf("sending input report %d", i)
		if err := s.host.Send(initial); err != nil {
			return err
		}
		time.Sleep(s.config.HandshakeSpacing)
	}

	reply, err := s.host.Receive(s.config.MaxReportSize)
	if err != nil {
		return err
	}
	s.trace.Comment("Switch Input Report Reply")
	s.trace.RecordHost(reply)
	if err := s.peripheral.Send(reply); err != nil {
		return err
	}

	// Waste cycles here until the device info reply shows up.
	for {
		data, err := s.peripheral.Receive(s.config.MaxReportSize)
		if err != nil {
			return err
		}
		if len(data) > 1 && data[1] == 0x21 {
			joycon.Debugf("got device info, %d bytes", len(data))
			s.trace.Comment("Joy-Con Device Info")
			s.trace.RecordPeripheral(data)
			return s.host.Send(data)
		}
	}
}

// step is one main loop iteration. A Switch frame received here is forwarded
// to the Joy-Con, and drives any MCU transition, before the Joy-Con's frame
// for this iteration is read and answered; the Switch's protocol assumes
// that request/response ordering.
func (s *Session) step() error {
	reply, err := s.host.ReceivePending(s.config.MaxReportSize)
	if err != nil {
		return err
	}
	if reply != nil {
		s.trace.RecordHost(reply)
		if joycon.ClassifyHost(reply) == joycon.HostMCUCommand {
			s.lastCommand = reply
		}
		if err := s.peripheral.Send(reply); err != nil {
			return err
		}
	}

	data, err := s.peripheral.Receive(s.config.MaxReportSize)
	if err != nil {
		return err
	}
	in := joycon.Report(data)
	s.timer.Update(in.Timer())

	out := in
	if s.mcu.HasTagImage() {
		out, err = s.spoof(in)
		if err != nil {
			return err
		}
		if reply != nil && joycon.ClassifyHost(reply) == joycon.HostMCUData {
			r := joycon.Report(reply)
			if note := s.mcu.ApplyDataCommand(r.SubcommandID(), r.SubcommandArgs()); note != "" {
				s.trace.Comment(note)
			}
		}
	} else {
		s.trace.RecordPeripheral(in)
	}

	return s.host.Send(out)
}

// spoof substitutes NFC-related Joy-Con frames with MCU-synthesized ones,
// recording both the original and the replacement. Everything else passes
// through.
func (s *Session) spoof(in joycon.Report) (joycon.Report, error) {
	switch joycon.ClassifyPeripheral(in) {
	case joycon.PeripheralMCUConfigReply:
		s.trace.Comment("SET_NFC_IR_CONFIG(original)")
		s.trace.RecordPeripheral(in)
		out, note := s.mcu.BuildConfigReply(in, s.lastCommand)
		if note != "" {
			s.trace.Comment(note)
		}
		s.trace.Comment("SET_NFC_IR_CONFIG(spoofed)")
		s.trace.RecordPeripheral(out)
		return out, nil
	case joycon.PeripheralMCUStateReply:
		s.trace.Comment("SET_NFC_IR_STATE(original)")
		s.trace.RecordPeripheral(in)
		out, err := s.mcu.BuildStateReply(in, s.lastCommand)
		if err != nil {
			// Partially reverse-engineered surface: abort instead of
			// answering with a guess.
			return nil, err
		}
		s.trace.Comment("SET_NFC_IR_STATE(spoofed)")
		s.trace.RecordPeripheral(out)
		return out, nil
	case joycon.PeripheralNFCModeReport:
		s.trace.Comment("NFC/IR mode report(original)")
		s.trace.RecordPeripheral(in)
		out := s.mcu.BuildNFCReport(in)
		s.trace.Comment("NFC/IR mode report(spoofed)")
		s.trace.RecordPeripheral(out)
		return out, nil
	default:
		s.trace.RecordPeripheral(in)
		return in, nil
	}
}
