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
	"encoding/json"
	"fmt"
	"time"
)

// ExhaustReason records why a target stopped retrying without success.
type ExhaustReason int

const (
	// ReasonNone means the target succeeded.
	ReasonNone = ExhaustReason(iota)
	// ReasonTimeout means the operation's overall budget ran out.
	ReasonTimeout
	// ReasonRetryLimit means the per-target attempt ceiling was reached.
	ReasonRetryLimit
	// ReasonCancelled means the operation was cancelled, either externally
	// or by the strategy after another target decided the outcome.
	ReasonCancelled
)

func (r ExhaustReason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonTimeout:
		return "timeout"
	case ReasonRetryLimit:
		return "retry-limit"
	case ReasonCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("ExhaustReason(%d)", int(r))
	}
}

// A TargetResult is the terminal record for one target within one wait
// operation. Exactly one is produced per target, and it is immutable once
// produced.
type TargetResult struct {
	// Target identifies the probed endpoint.
	Target Target
	// Success reports whether the target became ready.
	Success bool
	// Reason records why retrying stopped, when Success is false.
	Reason ExhaustReason
	// Elapsed is the time this target's loop ran.
	Elapsed time.Duration
	// Attempts is the number of connection attempts made.
	Attempts int
	// Err is the last attempt failure, if any.
	Err error
}

// A Result aggregates one wait operation. Targets holds one entry per
// input target, in input order, regardless of completion order or
// strategy.
type Result struct {
	Success  bool
	Elapsed  time.Duration
	Attempts int
	Targets  []TargetResult
}

type targetResultJSON struct {
	Target    string  `json:"target"`
	Success   bool    `json:"success"`
	ElapsedMS int64   `json:"elapsed_ms"`
	Attempts  int     `json:"attempts"`
	Reason    string  `json:"reason,omitempty"`
	Error     *string `json:"error"`
}

type resultJSON struct {
	Success       bool               `json:"success"`
	ElapsedMS     int64              `json:"elapsed_ms"`
	TotalAttempts int                `json:"total_attempts"`
	Targets       []targetResultJSON `json:"targets"`
}

func (r TargetResult) toJSON() targetResultJSON {
	out := targetResultJSON{
		Target:    r.Target.String(),
		Success:   r.Success,
		ElapsedMS: r.Elapsed.Milliseconds(),
		Attempts:  r.Attempts,
	}
	if !r.Success {
		out.Reason = r.Reason.String()
	}
	if r.Err != nil {
		message := r.Err.Error()
		out.Error = &message
	}
	return out
}

// MarshalJSON renders the machine-readable per-target report.
func (r TargetResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.toJSON())
}

// MarshalJSON renders the machine-readable summary report.
func (r Result) MarshalJSON() ([]byte, error) {
	targets := make([]targetResultJSON, len(r.Targets))
	for i, targetResult := range r.Targets {
		targets[i] = targetResult.toJSON()
	}
	return json.Marshal(resultJSON{
		Success:       r.Success,
		ElapsedMS:     r.Elapsed.Milliseconds(),
		TotalAttempts: r.Attempts,
		Targets:       targets,
	})
}
