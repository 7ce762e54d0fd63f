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
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEndpointError(t *testing.T) {
	t.Parallel()

	err := &EndpointError{Op: "Receive", Name: "AA:BB:CC:DD:EE:FF/psm19", Err: ErrEndpointRead}
	assert.Equal(t, "Receive AA:BB:CC:DD:EE:FF/psm19: endpoint read failed", err.Error())
	assert.ErrorIs(t, err, ErrEndpointRead)

	bare := &EndpointError{Op: "Socket", Err: ErrEndpointNotReady}
	assert.Equal(t, "Socket: endpoint not ready", bare.Error())
}

func TestEndpointErrorWrapping(t *testing.T) {
	t.Parallel()

	inner := &EndpointError{Op: "Send", Name: "switch", Err: ErrEndpointClosed}
	outer := fmt.Errorf("session: %w", inner)

	var epErr *EndpointError
	assert.ErrorAs(t, outer, &epErr)
	assert.Equal(t, "Send", epErr.Op)
	assert.ErrorIs(t, outer, ErrEndpointClosed)
}
