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

package joycon

import (
	"errors"
	"fmt"
)

// Error categories for relay failure handling.
var (
	// Endpoint errors - transport level, end the session
	ErrEndpointClosed   = errors.New("endpoint is closed")
	ErrEndpointRead     = errors.New("endpoint read failed")
	ErrEndpointWrite    = errors.New("endpoint write failed")
	ErrEndpointNotReady = errors.New("endpoint not ready")

	// Protocol errors
	// ErrUnsupportedOperation is fatal: the Set MCU state surface is only
	// partially reverse engineered, and the session must abort rather than
	// answer with a guessed reply.
	ErrUnsupportedOperation = errors.New("unsupported MCU operation")

	// Setup errors
	ErrDeviceNotFound  = errors.New("device not found")
	ErrInvalidAddress  = errors.New("invalid bluetooth address")
	ErrHandshakeFailed = errors.New("handshake failed")
)

// EndpointError wraps endpoint-level failures with the operation and peer
// that produced them.
type EndpointError struct {
	Err  error  // Underlying error
	Op   string // Operation that failed
	Name string // Peer or device identifier
}

func (e *EndpointError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Name, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *EndpointError) Unwrap() error {
	return e.Err
}
