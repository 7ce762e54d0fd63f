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

// Command relay proxies Joy-Con (R) traffic to a Nintendo Switch, spoofing
// NFC communication from a tag image file when one is given. Without a tag
// image it is a fully transparent proxy that dumps the exchanged reports to
// messages.txt on exit.
//
// The process always exits non-zero, including on a clean Ctrl-C, so
// operators notice every session end.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	joycon "github.com/ZaparooProject/go-joycon-relay"
	"github.com/ZaparooProject/go-joycon-relay/bluetooth"
	"github.com/ZaparooProject/go-joycon-relay/relay"
	"github.com/ZaparooProject/go-joycon-relay/transport/l2cap"
)

type config struct {
	mac        string
	tagPath    string
	adapterID  string
	tracePath  string
	debug      bool
	keepPlugin bool
}

// Package-level flag variables
var (
	flagMac        string
	flagTagPath    string
	flagAdapterID  string
	flagTracePath  string
	flagDebug      bool
	flagKeepPlugin bool
)

func init() {
	flag.StringVar(&flagMac, "mac", "", "Bluetooth address of the paired Joy-Con (R) (required)")
	flag.StringVar(&flagTagPath, "nfc-data", "", "Path to a raw tag image; omit for a fully transparent proxy")
	flag.StringVar(&flagAdapterID, "adapter", "hci0", "BlueZ adapter id")
	flag.StringVar(&flagTracePath, "trace", "messages.txt", "Trace dump path, overwritten each run")
	flag.BoolVar(&flagDebug, "debug", false, "Enable debug output")
	flag.BoolVar(&flagKeepPlugin, "keep-input-plugin", false, "Do not toggle the BlueZ input plugin")
}

func parseConfig() (*config, error) {
	cfg := &config{
		mac:        flagMac,
		tagPath:    flagTagPath,
		adapterID:  flagAdapterID,
		tracePath:  flagTracePath,
		debug:      flagDebug,
		keepPlugin: flagKeepPlugin,
	}
	if cfg.mac == "" {
		return nil, errors.New("-mac is required")
	}
	if cfg.debug {
		joycon.SetDebugEnabled(true)
	}
	return cfg, nil
}

func main() {
	flag.Parse()
	cfg, err := parseConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		flag.Usage()
		os.Exit(2)
	}

	if err := run(cfg); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	// Non-zero on every path, clean interrupt included: the proxy session
	// ending is always worth noticing.
	os.Exit(1)
}

func run(cfg *config) error {
	var tagImage []byte
	if cfg.tagPath != "" {
		// Raw bytes, no parsing; the MCU emulation slices it as-is.
		data, err := os.ReadFile(cfg.tagPath)
		if err != nil {
			return fmt.Errorf("failed to load tag image: %w", err)
		}
		tagImage = data
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if !cfg.keepPlugin {
		toggle := bluetooth.NewInputPluginToggle()
		if err := toggle.Disable(); err != nil {
			return err
		}
		defer func() {
			if err := toggle.Restore(); err != nil {
				fmt.Fprintf(os.Stderr, "Error restoring input plugin: %v\n", err)
			}
		}()
	}

	adapter, err := bluetooth.NewAdapter(cfg.adapterID)
	if err != nil {
		return err
	}
	defer adapter.Close()

	if _, err := adapter.FindDevice(cfg.mac); err != nil {
		if !errors.Is(err, joycon.ErrDeviceNotFound) {
			return err
		}
		fmt.Println("Device not paired. Pairing...")
		if err := adapter.Pair(cfg.mac, "Joy-Con (R)", 8*time.Second); err != nil {
			return err
		}
		fmt.Println("Paired Joy-Con")
	}

	// Present as the console while connecting out to the Joy-Con.
	if err := adapter.SetAlias("Nintendo Switch"); err != nil {
		return err
	}
	fmt.Println("Connecting to Joy-Con:", cfg.mac)
	jcCtrl, jcItr, err := connectJoyCon(ctx, cfg.mac)
	if err != nil {
		return err
	}
	defer func() {
		_ = jcCtrl.Close()
		_ = jcItr.Close()
	}()
	fmt.Println("Got connection.")

	localAddr, err := adapter.Address()
	if err != nil {
		return err
	}
	ctrlListener, err := l2cap.Listen(localAddr, l2cap.PSMControl)
	if err != nil {
		return err
	}
	defer ctrlListener.Close()
	itrListener, err := l2cap.Listen(localAddr, l2cap.PSMInterrupt)
	if err != nil {
		return err
	}
	defer itrListener.Close()

	// Now present as the Joy-Con so the Switch connects to us.
	if err := adapter.SetAlias("Joy-Con (R)"); err != nil {
		return err
	}
	if err := adapter.SetDiscoverable(true); err != nil {
		return err
	}

	// Accept blocks on raw sockets; close the listeners on interrupt so a
	// Ctrl-C while waiting for the Switch still exits.
	stopAccept := context.AfterFunc(ctx, func() {
		_ = ctrlListener.Close()
		_ = itrListener.Close()
	})
	defer stopAccept()

	fmt.Println("Waiting for Switch to connect...")
	swCtrl, err := ctrlListener.Accept()
	if err != nil {
		return err
	}
	defer func() { _ = swCtrl.Close() }()
	fmt.Println("Got Switch Control Client Connection")
	swItr, err := itrListener.Accept()
	if err != nil {
		return err
	}
	fmt.Println("Got Switch Interrupt Client Connection")

	relayConfig := relay.DefaultConfig()
	relayConfig.TagImage = tagImage
	relayConfig.TracePath = cfg.tracePath

	fmt.Println("Entering main proxy loop")
	session := relay.NewSession(jcItr, swItr, relayConfig)
	runErr := session.Run(ctx)

	fmt.Printf("Total Delta: %v\n", session.Elapsed())
	fmt.Printf("Timer Counter: %d\n", session.TimerCount())
	return runErr
}

// connectJoyCon opens the HID control and interrupt channels to the
// Joy-Con. A freshly paired Joy-Con sometimes refuses the first connect,
// so both channels go through the retry helper.
func connectJoyCon(ctx context.Context, mac string) (ctrl, itr *l2cap.Endpoint, err error) {
	err = joycon.Retry(ctx, nil, func() error {
		var connErr error
		ctrl, connErr = l2cap.Connect(mac, l2cap.PSMControl)
		if connErr != nil {
			return connErr
		}
		itr, connErr = l2cap.Connect(mac, l2cap.PSMInterrupt)
		if connErr != nil {
			_ = ctrl.Close()
			return connErr
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return ctrl, itr, nil
}
