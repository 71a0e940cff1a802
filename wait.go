// Copyright 2025 Waitready Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package waitready

import (
	"context"
	"fmt"
	"time"

	"github.com/waitready/waitready/internal"
	"golang.org/x/sync/errgroup"
)

// Wait probes every target until the config's strategy decides the
// operation: with WaitForAll it succeeds once every target is ready and
// fails fast on the first target to exhaust its budget; with WaitForAny it
// succeeds on the first ready target. In both cases the losing loops are
// cancelled, every loop is joined before Wait returns, and the result
// carries one terminal record per input target, in input order.
//
// Each target runs its own retry loop: one connection attempt, bounded by
// the connect timeout (clamped to the remaining overall budget), then an
// exponentially growing delay, until success, the overall timeout, the
// attempt ceiling, or cancellation. Cancelling ctx stops the operation
// promptly at either suspension point; the affected targets report a
// cancelled terminal state rather than an error.
//
// A nil config waits with the defaults. The only error conditions are a
// ctx that is already cancelled on entry and an invalid default config;
// exhaustion of any or all targets is reported as data in the Result.
func Wait(ctx context.Context, targets []Target, config *Config) (*Result, error) {
	if config == nil {
		var err error
		if config, err = NewConfig(); err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("wait not started: %w", err)
	}
	start := config.clock.Now()
	result := &Result{Targets: make([]TargetResult, len(targets))}
	if len(targets) == 0 {
		result.Success = true
		result.Elapsed = config.clock.Since(start)
		return result, nil
	}

	opCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var group errgroup.Group
	for i, target := range targets {
		i, target := i, target
		group.Go(func() error {
			targetResult := waitTarget(opCtx, target, config)
			result.Targets[i] = targetResult
			if config.listener != nil {
				notify(func() { config.listener.TargetFinished(targetResult) })
			}
			switch config.strategy {
			case WaitForAll:
				// Fail fast: once one target exhausts, no sibling can
				// change the overall outcome.
				if !targetResult.Success {
					cancel()
				}
			case WaitForAny:
				// First success decides the operation.
				if targetResult.Success {
					cancel()
				}
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	allReady, anyReady := true, false
	for _, targetResult := range result.Targets {
		result.Attempts += targetResult.Attempts
		allReady = allReady && targetResult.Success
		anyReady = anyReady || targetResult.Success
	}
	if config.strategy == WaitForAny {
		result.Success = anyReady
	} else {
		result.Success = allReady
	}
	result.Elapsed = config.clock.Since(start)
	return result, nil
}

// waitTarget runs one target's retry loop to its terminal state. Attempts
// are strictly sequential; the loop suspends only inside a checker call or
// the backoff sleep, and both observe ctx.
func waitTarget(ctx context.Context, target Target, config *Config) TargetResult {
	clock := config.clock
	start := clock.Now()
	deadline := start.Add(config.timeout)
	delays := newBackoff(config.interval, config.maxInterval)
	result := TargetResult{Target: target}

	for {
		if ctx.Err() != nil {
			result.Reason = ReasonCancelled
			break
		}
		now := clock.Now()
		if !now.Before(deadline) {
			result.Reason = ReasonTimeout
			break
		}

		result.Attempts++
		if config.listener != nil {
			attempt := result.Attempts
			notify(func() { config.listener.AttemptStarted(target, attempt) })
		}

		// An attempt never outlives the overall budget.
		attemptBudget := config.connectTimeout
		if remaining := deadline.Sub(now); remaining < attemptBudget {
			attemptBudget = remaining
		}
		attemptStart := clock.Now()
		attemptCtx, cancelAttempt := context.WithTimeout(ctx, attemptBudget)
		outcome := config.checker.Check(attemptCtx, target)
		cancelAttempt()
		if config.listener != nil {
			attempt, elapsed := result.Attempts, clock.Since(attemptStart)
			notify(func() { config.listener.AttemptFinished(target, attempt, outcome, elapsed) })
		}

		if outcome.Success() {
			result.Success = true
			result.Reason = ReasonNone
			result.Err = nil
			break
		}
		result.Err = outcome.Err
		if ctx.Err() != nil {
			result.Reason = ReasonCancelled
			break
		}
		if config.maxAttempts > 0 && result.Attempts >= config.maxAttempts {
			result.Reason = ReasonRetryLimit
			break
		}

		sleep := delays.Next()
		if remaining := deadline.Sub(clock.Now()); remaining < sleep {
			sleep = remaining
		}
		if sleep > 0 && !sleepFor(ctx, clock, sleep) {
			result.Reason = ReasonCancelled
			break
		}
	}
	result.Elapsed = clock.Since(start)
	return result
}

// sleepFor blocks for d or until ctx is cancelled, reporting whether the
// full delay elapsed.
func sleepFor(ctx context.Context, clock internal.Clock, d time.Duration) bool {
	timer := clock.NewTimer(d)
	select {
	case <-timer.Chan():
		return true
	case <-ctx.Done():
		timer.Stop()
		return false
	}
}
