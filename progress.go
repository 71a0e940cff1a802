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
	"log/slog"
	"time"
)

// A ProgressListener observes a wait operation as it runs. Callbacks are
// invoked from whichever per-target goroutine produced the event, so
// implementations must be safe for concurrent use. A slow listener only
// delays the loop that called it; a panicking listener is ignored.
type ProgressListener interface {
	// AttemptStarted is called before each connection attempt.
	AttemptStarted(target Target, attempt int)
	// AttemptFinished is called with the classified outcome of each
	// attempt and the time the attempt took.
	AttemptFinished(target Target, attempt int, outcome Outcome, elapsed time.Duration)
	// TargetFinished is called once per target with its terminal record.
	TargetFinished(result TargetResult)
}

// notify runs one listener callback, swallowing any panic so that a
// misbehaving listener cannot fail the operation.
func notify(callback func()) {
	defer func() {
		_ = recover()
	}()
	callback()
}

// LogProgress returns a ProgressListener that reports attempt results and
// target outcomes through the given logger. Attempt starts are logged at
// debug level, failed attempts at debug, and terminal states at info or
// warn. A nil logger uses [slog.Default].
func LogProgress(logger *slog.Logger) ProgressListener {
	if logger == nil {
		logger = slog.Default()
	}
	return &logListener{logger: logger}
}

type logListener struct {
	logger *slog.Logger
}

func (l *logListener) AttemptStarted(target Target, attempt int) {
	l.logger.Debug("attempt started",
		slog.String("target", target.String()),
		slog.Int("attempt", attempt))
}

func (l *logListener) AttemptFinished(target Target, attempt int, outcome Outcome, elapsed time.Duration) {
	if outcome.Success() {
		l.logger.Debug("attempt succeeded",
			slog.String("target", target.String()),
			slog.Int("attempt", attempt),
			slog.Duration("elapsed", elapsed))
		return
	}
	l.logger.Debug("attempt failed",
		slog.String("target", target.String()),
		slog.Int("attempt", attempt),
		slog.String("kind", outcome.Kind.String()),
		slog.Any("error", outcome.Err),
		slog.Duration("elapsed", elapsed))
}

func (l *logListener) TargetFinished(result TargetResult) {
	if result.Success {
		l.logger.Info("target ready",
			slog.String("target", result.Target.String()),
			slog.Int("attempts", result.Attempts),
			slog.Duration("elapsed", result.Elapsed))
		return
	}
	l.logger.Warn("target not ready",
		slog.String("target", result.Target.String()),
		slog.String("reason", result.Reason.String()),
		slog.Int("attempts", result.Attempts),
		slog.Duration("elapsed", result.Elapsed),
		slog.Any("error", result.Err))
}
