// Copyright 2025 Poiesic Systems
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


package indexing

import (
	"context"
	"log/slog"
	"time"
)

// Backoff retries embedding requests, doubling the pause after every
// failed attempt up to Max.
type Backoff struct {
	Attempts int
	Base     time.Duration
	Max      time.Duration // Zero means uncapped
}

// delay returns the pause after the given failed attempt (1-based).
func (b Backoff) delay(attempt int) time.Duration {
	d := b.Base << min(attempt-1, 30)
	if d < b.Base || (b.Max > 0 && d > b.Max) {
		return b.Max
	}
	return d
}

// Do runs op until it succeeds, the attempts are spent or ctx is done.
// It returns the last error from op, or the context's error.
func (b Backoff) Do(ctx context.Context, logger *slog.Logger, op func() error) error {
	if b.Attempts <= 0 {
		return ErrInvalidMaxAttempts
	}
	if logger == nil {
		logger = slog.Default()
	}

	var err error
	for attempt := 1; ; attempt++ {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if err = op(); err == nil {
			if attempt > 1 {
				logger.Debug("embedding batch succeeded after retry", "attempt", attempt)
			}
			return nil
		}
		if attempt == b.Attempts {
			return err
		}

		pause := b.delay(attempt)
		logger.Debug("embedding batch failed", "attempt", attempt, "attempts", b.Attempts, "retryIn", pause, "err", err)
		timer := time.NewTimer(pause)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
