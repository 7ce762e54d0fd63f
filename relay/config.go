// Copyright 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package relay

import (
	"time"

	joycon "github.com/ZaparooProject/go-joycon-relay"
)

// Config holds relay session configuration options
type Config struct {
	// TagImage is the raw tag payload presented to the Switch, loaded as-is
	// with no parsing. nil makes the session a fully transparent proxy.
	TagImage []byte

	// TracePath is where the trace sink is written at teardown,
	// overwritten each run.
	TracePath string

	// MaxReportSize bounds a single interrupt-channel receive.
	MaxReportSize int

	// HandshakeRepeats is how often the Joy-Con's initial report is
	// forwarded to the Switch before waiting for its reply.
	HandshakeRepeats int

	// HandshakeSpacing is the fixed delay between those repeats. The
	// Switch needs the spacing to register the controller.
	HandshakeSpacing time.Duration
}

// DefaultConfig returns the default relay session configuration
func DefaultConfig() *Config {
	return &Config{
		TracePath:        "messages.txt",
		MaxReportSize:    joycon.MaxReportSize,
		HandshakeRepeats: 3,
		HandshakeSpacing: time.Second,
	}
}
