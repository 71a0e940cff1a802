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
	"fmt"
	"time"

	"github.com/waitready/waitready/internal"
)

// Defaults applied by NewConfig when the corresponding option is absent.
const (
	DefaultTimeout        = 30 * time.Second
	DefaultInterval       = 1 * time.Second
	DefaultMaxInterval    = 30 * time.Second
	DefaultConnectTimeout = 10 * time.Second
)

// Strategy selects how per-target outcomes aggregate into an overall
// result.
type Strategy int

const (
	// WaitForAll succeeds only if every target becomes ready.
	WaitForAll = Strategy(iota)
	// WaitForAny succeeds as soon as the first target becomes ready.
	WaitForAny
)

func (s Strategy) String() string {
	switch s {
	case WaitForAll:
		return "all"
	case WaitForAny:
		return "any"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// A Config holds the resolved, validated settings for one wait operation.
// Build it with NewConfig; it is read-only afterwards and is safely shared
// across all of the operation's concurrent retry loops.
type Config struct {
	timeout        time.Duration
	interval       time.Duration
	maxInterval    time.Duration
	connectTimeout time.Duration
	maxAttempts    int
	strategy       Strategy
	checker        Checker
	listener       ProgressListener
	clock          internal.Clock
}

// NewConfig builds a Config from the given options, applying defaults for
// anything not specified, and validates it. An invalid combination (a
// negative duration, or a maximum interval below the initial interval)
// returns an error rather than a partially valid config.
func NewConfig(opts ...ConfigOption) (*Config, error) {
	config := &Config{
		timeout:        DefaultTimeout,
		interval:       DefaultInterval,
		maxInterval:    DefaultMaxInterval,
		connectTimeout: DefaultConnectTimeout,
		clock:          internal.NewRealClock(),
	}
	for _, opt := range opts {
		opt.apply(config)
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	if config.checker == nil {
		config.checker = NewChecker()
	}
	return config, nil
}

func (c *Config) validate() error {
	switch {
	case c.timeout < 0:
		return fmt.Errorf("timeout cannot be negative: %v", c.timeout)
	case c.interval < 0:
		return fmt.Errorf("interval cannot be negative: %v", c.interval)
	case c.maxInterval < c.interval:
		return fmt.Errorf("max interval (%v) cannot be less than interval (%v)", c.maxInterval, c.interval)
	case c.connectTimeout < 0:
		return fmt.Errorf("connect timeout cannot be negative: %v", c.connectTimeout)
	case c.maxAttempts < 0:
		return fmt.Errorf("max attempts cannot be negative: %d", c.maxAttempts)
	case c.strategy != WaitForAll && c.strategy != WaitForAny:
		return fmt.Errorf("unknown strategy: %v", c.strategy)
	}
	return nil
}

// Timeout returns the overall wall-clock budget for the operation.
func (c *Config) Timeout() time.Duration { return c.timeout }

// Interval returns the delay before the first retry.
func (c *Config) Interval() time.Duration { return c.interval }

// MaxInterval returns the backoff ceiling.
func (c *Config) MaxInterval() time.Duration { return c.maxInterval }

// ConnectTimeout returns the per-attempt time budget.
func (c *Config) ConnectTimeout() time.Duration { return c.connectTimeout }

// MaxAttempts returns the per-target attempt ceiling, or zero if attempts
// are bounded only by the overall timeout.
func (c *Config) MaxAttempts() int { return c.maxAttempts }

// Strategy returns how per-target outcomes aggregate.
func (c *Config) Strategy() Strategy { return c.strategy }

// ConfigOption is an option used to customize a wait operation.
type ConfigOption interface {
	apply(*Config)
}

type configOptionFunc func(*Config)

func (f configOptionFunc) apply(config *Config) {
	f(config)
}

// WithTimeout configures the overall wall-clock budget for the operation.
// If not specified, 30 seconds is used.
func WithTimeout(timeout time.Duration) ConfigOption {
	return configOptionFunc(func(config *Config) {
		config.timeout = timeout
	})
}

// WithInterval configures the delay before the first retry. Each
// subsequent delay doubles, up to the maximum interval. If not specified,
// one second is used.
func WithInterval(interval time.Duration) ConfigOption {
	return configOptionFunc(func(config *Config) {
		config.interval = interval
	})
}

// WithMaxInterval configures the backoff ceiling. It must not be less than
// the initial interval. If not specified, 30 seconds is used.
func WithMaxInterval(maxInterval time.Duration) ConfigOption {
	return configOptionFunc(func(config *Config) {
		config.maxInterval = maxInterval
	})
}

// WithConnectTimeout configures the time budget of a single connection
// attempt. An attempt's budget is additionally clamped so that it never
// outlives the operation's remaining overall budget. If not specified,
// 10 seconds is used.
func WithConnectTimeout(connectTimeout time.Duration) ConfigOption {
	return configOptionFunc(func(config *Config) {
		config.connectTimeout = connectTimeout
	})
}

// WithMaxAttempts configures a per-target ceiling on connection attempts.
// Zero, the default, means attempts are bounded only by the overall
// timeout.
func WithMaxAttempts(maxAttempts int) ConfigOption {
	return configOptionFunc(func(config *Config) {
		config.maxAttempts = maxAttempts
	})
}

// WithStrategy configures whether the operation waits for all targets or
// for any single one. If not specified, WaitForAll is used.
func WithStrategy(strategy Strategy) ConfigOption {
	return configOptionFunc(func(config *Config) {
		config.strategy = strategy
	})
}

// WithChecker configures the checker used for connection attempts. If not
// specified, the default network checker is used. This is mainly useful
// for testing wait behavior without real network activity.
func WithChecker(checker Checker) ConfigOption {
	return configOptionFunc(func(config *Config) {
		config.checker = checker
	})
}

// WithProgress configures an optional listener notified as attempts start
// and finish and as targets reach their terminal state. Listener panics
// are swallowed; a failing listener never fails the operation.
func WithProgress(listener ProgressListener) ConfigOption {
	return configOptionFunc(func(config *Config) {
		config.listener = listener
	})
}
