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

package bluetooth

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// BlueZ's input plugin grabs HID devices as soon as they connect, which
// steals the Joy-Con from the relay's own L2CAP sockets. The plugin is a
// compile-time feature of bluetoothd, so the only way to turn it off is to
// restart the daemon with --noplugin=input.

const bluetoothServicePath = "/lib/systemd/system/bluetooth.service"

const noInputPluginFlag = " --noplugin=input"

// InputPluginToggle disables the BlueZ input plugin for the duration of a
// session and restores the previous service unit afterwards. The toggle is
// the session's one global resource: Restore must run on every exit path.
type InputPluginToggle struct {
	servicePath string
	original    []byte
	modified    bool
}

// NewInputPluginToggle creates a toggle over the default bluetooth service
// unit.
func NewInputPluginToggle() *InputPluginToggle {
	return &InputPluginToggle{servicePath: bluetoothServicePath}
}

// Disable rewrites the service unit to start bluetoothd without the input
// plugin and restarts the daemon.
func (t *InputPluginToggle) Disable() error {
	original, err := os.ReadFile(t.servicePath)
	if err != nil {
		return fmt.Errorf("failed to read bluetooth service unit: %w", err)
	}
	if strings.Contains(string(original), noInputPluginFlag) {
		// Already disabled; nothing to restore later.
		return nil
	}
	t.original = original

	lines := strings.Split(string(original), "\n")
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "ExecStart=") {
			lines[i] = line + noInputPluginFlag
		}
	}
	if err := os.WriteFile(t.servicePath, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		return fmt.Errorf("failed to rewrite bluetooth service unit: %w", err)
	}
	t.modified = true
	return t.restartDaemon()
}

// Restore puts the original service unit back and restarts the daemon.
// Safe to call when Disable never ran or failed early.
func (t *InputPluginToggle) Restore() error {
	if !t.modified {
		return nil
	}
	if err := os.WriteFile(t.servicePath, t.original, 0o644); err != nil {
		return fmt.Errorf("failed to restore bluetooth service unit: %w", err)
	}
	t.modified = false
	return t.restartDaemon()
}

func (*InputPluginToggle) restartDaemon() error {
	for _, args := range [][]string{
		{"systemctl", "daemon-reload"},
		{"systemctl", "restart", "bluetooth"},
	} {
		cmd := exec.Command(args[0], args[1:]...) //nolint:gosec // fixed argv
		if out, err := cmd.CombinedOutput(); err != nil {
			return fmt.Errorf("%s failed: %w: %s", strings.Join(args, " "), err, out)
		}
	}
	return nil
}
