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
	"context"
	"time"
)

// RetryConfig controls connection establishment retries. A freshly paired
// Joy-Con intermittently refuses the first L2CAP connect; a short retry
// window covers that. The relay loop itself never retries.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts, the first included.
	MaxAttempts int
	// Backoff is the fixed delay between attempts.
	Backoff time.Duration
}

// DefaultRetryConfig returns the default connection retry configuration.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts: 3,
		Backoff:     500 * time.Millisecond,
	}
}

// Retry runs fn until it succeeds, attempts are exhausted, or ctx is done.
// The last error is returned on exhaustion.
func Retry(ctx context.Context, config *RetryConfig, fn func() error) error {
	if config == nil {
		config = DefaultRetryConfig()
	}
	var err error
	for attempt := 0; attempt < config.MaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(config.Backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err = fn(); err == nil {
			return nil
		}
		Debugf("attempt %d/%d failed: %v", attempt+1, config.MaxAttempts, err)
	}
	return err
}
