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

// Package bluetooth wraps the BlueZ D-Bus services the relay needs around
// the handshake: device lookup and pairing, adapter aliasing and
// discoverability. Nothing here is touched once the main loop runs.
package bluetooth

import (
	"fmt"
	"strings"
	"time"

	joycon "github.com/ZaparooProject/go-joycon-relay"
	"github.com/muka/go-bluetooth/api"
	"github.com/muka/go-bluetooth/bluez/profile/adapter"
	"github.com/muka/go-bluetooth/bluez/profile/device"
)

// Adapter wraps a BlueZ adapter (hci0 and friends).
type Adapter struct {
	a  *adapter.Adapter1
	id string
}

// NewAdapter opens the BlueZ adapter with the given id, e.g. "hci0".
func NewAdapter(adapterID string) (*Adapter, error) {
	a, err := adapter.GetAdapter(adapterID)
	if err != nil {
		return nil, fmt.Errorf("failed to get adapter %s: %w", adapterID, err)
	}
	if err := a.SetPowered(true); err != nil {
		return nil, fmt.Errorf("failed to power adapter %s: %w", adapterID, err)
	}
	return &Adapter{a: a, id: adapterID}, nil
}

// Address returns the adapter's own Bluetooth address.
func (ad *Adapter) Address() (string, error) {
	addr, err := ad.a.GetAddress()
	if err != nil {
		return "", fmt.Errorf("failed to read adapter address: %w", err)
	}
	return addr, nil
}

// SetAlias changes the name the adapter presents to peers. The relay
// presents as the Switch while connecting to the Joy-Con and as the
// Joy-Con while the Switch connects.
func (ad *Adapter) SetAlias(alias string) error {
	if err := ad.a.SetAlias(alias); err != nil {
		return fmt.Errorf("failed to set adapter alias: %w", err)
	}
	return nil
}

// SetDiscoverable toggles inquiry-scan visibility.
func (ad *Adapter) SetDiscoverable(discoverable bool) error {
	if err := ad.a.SetDiscoverable(discoverable); err != nil {
		return fmt.Errorf("failed to set discoverable: %w", err)
	}
	if discoverable {
		// No timeout: stay visible until the Switch connects.
		if err := ad.a.SetDiscoverableTimeout(0); err != nil {
			return fmt.Errorf("failed to set discoverable timeout: %w", err)
		}
	}
	return nil
}

// FindDevice returns the known (paired or cached) device with the given
// address, or joycon.ErrDeviceNotFound.
func (ad *Adapter) FindDevice(address string) (*device.Device1, error) {
	devices, err := ad.a.GetDevices()
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	for _, dev := range devices {
		devAddr, err := dev.GetAddress()
		if err != nil {
			continue
		}
		if strings.EqualFold(devAddr, address) {
			return dev, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", joycon.ErrDeviceNotFound, address)
}

// Pair discovers the device with the given address and alias and pairs
// with it. Used when the Joy-Con is not already known to BlueZ.
func (ad *Adapter) Pair(address, alias string, timeout time.Duration) error {
	discovered, cancel, err := api.Discover(ad.a, nil)
	if err != nil {
		return fmt.Errorf("failed to start discovery: %w", err)
	}
	defer cancel()

	deadline := time.After(timeout)
	for {
		select {
		case ev, ok := <-discovered:
			if !ok {
				return fmt.Errorf("%w: discovery ended before %s appeared",
					joycon.ErrDeviceNotFound, address)
			}
			dev, err := device.NewDevice1(ev.Path)
			if err != nil {
				continue
			}
			devAddr, err := dev.GetAddress()
			if err != nil || !strings.EqualFold(devAddr, address) {
				continue
			}
			if alias != "" {
				if devAlias, err := dev.GetAlias(); err == nil && devAlias != alias {
					joycon.Debugf("pairing %s despite alias %q", address, devAlias)
				}
			}
			if err := dev.Pair(); err != nil {
				return fmt.Errorf("failed to pair with %s: %w", address, err)
			}
			return nil
		case <-deadline:
			return fmt.Errorf("%w: %s not seen within %s",
				joycon.ErrDeviceNotFound, address, timeout)
		}
	}
}

// Close releases the D-Bus resources held by the adapter wrapper.
func (*Adapter) Close() {
	api.Exit()
}
