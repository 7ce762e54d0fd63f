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

package relay_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	joycon "github.com/ZaparooProject/go-joycon-relay"
	"github.com/ZaparooProject/go-joycon-relay/internal/frame"
	jctest "github.com/ZaparooProject/go-joycon-relay/internal/testing"
	"github.com/ZaparooProject/go-joycon-relay/relay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestConfig returns a session config without the handshake pacing that
// real hardware needs, tracing into the test's temp dir.
func newTestConfig(t *testing.T, tagImage []byte) *relay.Config {
	t.Helper()
	cfg := relay.DefaultConfig()
	cfg.TagImage = tagImage
	cfg.TracePath = filepath.Join(t.TempDir(), "messages.txt")
	cfg.HandshakeRepeats = 1
	cfg.HandshakeSpacing = 0
	return cfg
}

// queueHandshake loads the frames both sides exchange before the main loop.
func queueHandshake(jc, sw *jctest.ScriptedEndpoint) {
	jc.QueueReport(jctest.EmptyReport())
	jc.QueueReport(jctest.DeviceInfoReply())
	sw.QueueReport(jctest.HostAck())
}

func testImage(size int) []byte {
	img := make([]byte, size)
	for i := range img {
		img[i] = byte(i + 1)
	}
	return img
}

func TestSessionPassThrough(t *testing.T) {
	t.Parallel()
	jc := jctest.NewScriptedEndpoint("joycon")
	sw := jctest.NewScriptedEndpoint("switch")
	queueHandshake(jc, sw)
	for i := 1; i <= 20; i++ {
		jc.QueueReport(jctest.StandardInput(byte(i)))
	}

	cfg := newTestConfig(t, nil)
	session := relay.NewSession(jc, sw, cfg)
	err := session.Run(context.Background())

	// The scripted Joy-Con running dry reads as a peer close, which is how
	// a real session ends too.
	require.Error(t, err)
	assert.ErrorIs(t, err, joycon.ErrEndpointRead)

	sent := sw.Sent()
	require.Len(t, sent, 2+20)
	assert.Equal(t, jctest.EmptyReport(), sent[0])
	assert.Equal(t, jctest.DeviceInfoReply(), sent[1])
	for i := 1; i <= 20; i++ {
		assert.Equal(t, jctest.StandardInput(byte(i)), sent[1+i], "frame %d", i)
	}

	jcSent := jc.Sent()
	require.Len(t, jcSent, 1)
	assert.Equal(t, jctest.HostAck(), jcSent[0])

	assert.Equal(t, 20, session.TimerCount())
	assert.False(t, jc.IsConnected())
	assert.False(t, sw.IsConnected())

	content, readErr := os.ReadFile(cfg.TracePath)
	require.NoError(t, readErr)
	assert.Contains(t, string(content), "### Entering Main Loop ###")
	assert.Contains(t, string(content), "--- Controller Msg ---")
}

func TestSessionForwardsHostBeforePeripheral(t *testing.T) {
	t.Parallel()
	jc := jctest.NewScriptedEndpoint("joycon")
	sw := jctest.NewScriptedEndpoint("switch")
	queueHandshake(jc, sw)
	jc.QueueReport(jctest.StandardInput(1))
	sw.QueuePending(jctest.HostAck())

	var order []string
	jc.SetSendHook(func([]byte) { order = append(order, "joycon") })
	sw.SetSendHook(func([]byte) { order = append(order, "switch") })

	session := relay.NewSession(jc, sw, newTestConfig(t, nil))
	err := session.Run(context.Background())
	require.Error(t, err)

	// Handshake: initial to the Switch, its reply to the Joy-Con, device
	// info to the Switch. Main loop: the pending Switch frame goes out
	// before the Joy-Con's frame for the iteration is answered.
	assert.Equal(t, []string{"switch", "joycon", "switch", "joycon", "switch"}, order)
}

func TestSessionSpoofsNFC(t *testing.T) {
	t.Parallel()
	img := testImage(100)
	jc := jctest.NewScriptedEndpoint("joycon")
	sw := jctest.NewScriptedEndpoint("switch")
	queueHandshake(jc, sw)

	// One Switch frame per loop iteration, matched below against the frame
	// the Joy-Con produces in the same iteration. MCU transitions apply
	// after the iteration's reply is synthesized, so each command's effect
	// shows up one frame later.
	sw.QueuePending(jctest.HostSetMCUConfig(0, 4))
	sw.QueuePending(jctest.HostMCUData(0x01))       // request status
	sw.QueuePending(jctest.HostMCUData(0x02, 0x01)) // start polling
	sw.QueuePending(jctest.HostMCUData(0x02, 0x06)) // start read

	jc.QueueReport(jctest.MCUConfigReply(1))
	jc.QueueReport(jctest.NFCModeInput(2))
	jc.QueueReport(jctest.NFCModeInput(3))
	jc.QueueReport(jctest.NFCModeInput(4))
	jc.QueueReport(jctest.NFCModeInput(5))
	jc.QueueReport(jctest.NFCModeInput(6))

	cfg := newTestConfig(t, img)
	session := relay.NewSession(jc, sw, cfg)
	err := session.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, joycon.ErrEndpointRead)

	sent := sw.Sent()
	require.Len(t, sent, 2+6)

	// Iteration 1: spoofed MCU config reply with a sealed status block.
	cfgReply := sent[2]
	assert.Equal(t, byte(0x21), cfgReply[1])
	assert.Equal(t, byte(0x8E), cfgReply[3])
	assert.Equal(t, byte(0xA0), cfgReply[14])
	assert.Equal(t, byte(0x21), cfgReply[15])
	assert.Equal(t, frame.Checksum(cfgReply[16:49]), cfgReply[49])

	// Iteration 2: no action pending yet, the payload is the idle marker.
	idle := sent[3]
	require.Len(t, idle, 363)
	assert.Equal(t, byte(0xFF), idle[50])
	assert.Equal(t, jctest.NFCModeInput(2)[:50], idle[:50],
		"controller telemetry must survive spoofing")
	assert.Equal(t, frame.Checksum(idle[50:362]), idle[362])

	// Iteration 3: the status request from the previous iteration answers.
	status := sent[4]
	assert.Equal(t, byte(0x01), status[50])

	// Iteration 4: polling reports the tag, UID from the image.
	polling := sent[5]
	assert.Equal(t, byte(0x2A), polling[50])
	assert.Equal(t, img[0:3], polling[50+16:50+19])
	assert.Equal(t, img[4:8], polling[50+19:50+23])

	// Iteration 5: the read frame carries the whole image in one chunk.
	read := sent[6]
	assert.Equal(t, byte(0x3A), read[50])
	assert.Equal(t, img, read[50+67:50+67+len(img)])
	assert.Equal(t, frame.Checksum(read[50:362]), read[362])

	// Iteration 6: read completion summary.
	done := sent[7]
	assert.Equal(t, byte(0x2A), done[50])

	content, readErr := os.ReadFile(cfg.TracePath)
	require.NoError(t, readErr)
	assert.Contains(t, string(content), "### Changed MCU state to NFC ###")
	assert.Contains(t, string(content), "### Tag read started ###")
	assert.Contains(t, string(content), "### NFC/IR mode report(spoofed) ###")
}

func TestSessionSpoofsStateReply(t *testing.T) {
	t.Parallel()
	jc := jctest.NewScriptedEndpoint("joycon")
	sw := jctest.NewScriptedEndpoint("switch")
	queueHandshake(jc, sw)
	sw.QueuePending(jctest.HostSetMCUState(0x01)) // resume
	jc.QueueReport(jctest.MCUStateReply(1))

	session := relay.NewSession(jc, sw, newTestConfig(t, testImage(16)))
	err := session.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, joycon.ErrEndpointRead)

	sent := sw.Sent()
	require.Len(t, sent, 3)
	reply := sent[2]
	assert.Equal(t, byte(0x21), reply[1])
	assert.Equal(t, byte(0x8E), reply[3])
	assert.Equal(t, byte(0x80), reply[14])
	assert.Equal(t, byte(0x22), reply[15])
}

func TestSessionUnsupportedStateAborts(t *testing.T) {
	t.Parallel()
	jc := jctest.NewScriptedEndpoint("joycon")
	sw := jctest.NewScriptedEndpoint("switch")
	queueHandshake(jc, sw)
	sw.QueuePending(jctest.HostSetMCUState(0x02))
	jc.QueueReport(jctest.MCUStateReply(1))
	jc.QueueReport(jctest.MCUStateReply(2))

	cfg := newTestConfig(t, testImage(16))
	session := relay.NewSession(jc, sw, cfg)
	err := session.Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, joycon.ErrUnsupportedOperation)

	// No guessed reply went out; the handshake frames are the last thing
	// the Switch saw.
	assert.Len(t, sw.Sent(), 2)

	// Teardown still ran: both endpoints closed, trace on disk.
	assert.False(t, jc.IsConnected())
	assert.False(t, sw.IsConnected())
	_, statErr := os.Stat(cfg.TracePath)
	assert.NoError(t, statErr)
}

func TestSessionHandshakeFailure(t *testing.T) {
	t.Parallel()
	jc := jctest.NewScriptedEndpoint("joycon")
	sw := jctest.NewScriptedEndpoint("switch")
	// Nothing queued: the Joy-Con disappears before its first report.

	session := relay.NewSession(jc, sw, newTestConfig(t, nil))
	err := session.Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, joycon.ErrHandshakeFailed)
	assert.ErrorIs(t, err, joycon.ErrEndpointRead)
	assert.Empty(t, sw.Sent())
}

func TestSessionCancelledContext(t *testing.T) {
	t.Parallel()
	jc := jctest.NewScriptedEndpoint("joycon")
	sw := jctest.NewScriptedEndpoint("switch")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	session := relay.NewSession(jc, sw, newTestConfig(t, nil))
	err := session.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSessionNilConfig(t *testing.T) {
	t.Parallel()
	jc := jctest.NewScriptedEndpoint("joycon")
	sw := jctest.NewScriptedEndpoint("switch")
	session := relay.NewSession(jc, sw, nil)
	assert.NotNil(t, session.Trace())
	assert.Equal(t, 0, session.TimerCount())
	assert.Equal(t, int64(0), int64(session.Elapsed()))
}
