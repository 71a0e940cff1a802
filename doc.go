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

// Package waitready blocks until network dependencies are reachable. It is
// a startup gate for container and orchestration pipelines: given a set of
// targets, raw TCP endpoints or HTTP(S) endpoints with an expected status
// code, it retries connections with exponential backoff until every target
// (or, optionally, any single target) is ready, a timeout elapses, a retry
// budget runs out, or the operation is cancelled.
//
// The entry point is [Wait]. Targets are built with [NewTCPTarget],
// [NewHTTPTarget], or [ParseTarget]; settings are built with [NewConfig]
// and its options, or from a preset bundle like [PresetContainer]:
//
//	targets := []waitready.Target{db, api}
//	config, err := waitready.NewConfig(
//	    waitready.WithTimeout(time.Minute),
//	    waitready.WithInterval(200*time.Millisecond),
//	)
//	if err != nil {
//	    return err
//	}
//	result, err := waitready.Wait(ctx, targets, config)
//
// Every target gets its own concurrent retry loop; all loops share one
// deadline and one cancellation signal, and Wait joins them all before
// returning, so no goroutine outlives the call. The returned [Result]
// records a terminal state for every target, in input order, and marshals
// to JSON for machine-readable reports. Readiness failures (timeouts,
// refused connections, wrong status codes, cancellation) are data in the
// Result, not errors from Wait.
//
// One wait operation owns no state beyond the call: rerunning Wait with
// the same targets and config is a fresh operation.
//
// In addition to "http" and "https" URL schemes, HTTP targets support
// "h2c" to probe HTTP/2 over plain text.
package waitready
