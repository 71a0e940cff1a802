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
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Drain at most this much of a response body before closing it, so the
// pooled connection stays reusable without reading unbounded data.
const maxDrainBytes = 64 * 1024

// A Checker performs a single connection attempt against one target and
// classifies the result. Checkers perform no retries: exactly one attempt
// per call, bounded by the deadline on the given context. Implementations
// must be safe for concurrent use.
type Checker interface {
	Check(ctx context.Context, target Target) Outcome
}

// CheckerFunc adapts a function to the Checker interface.
type CheckerFunc func(ctx context.Context, target Target) Outcome

func (f CheckerFunc) Check(ctx context.Context, target Target) Outcome {
	return f(ctx, target)
}

// NewChecker returns the default network checker.
//
// TCP targets are checked by resolving the host and dialing each resolved
// address in turn until one connects or the attempt deadline expires. HTTP
// targets are checked with a GET request carrying the target's headers; the
// response status must equal the expected status exactly, and redirects are
// not followed (a redirect response is compared as-is). Certificate
// verification failures on HTTPS are reported as TLS failures. The "h2c"
// scheme checks HTTP/2 over clear text.
//
// The returned checker shares one pooled HTTP client across all targets;
// pooling never carries one attempt's failure into another.
func NewChecker() Checker {
	dialer := &net.Dialer{}
	return &netChecker{
		dialer:   dialer,
		resolver: net.DefaultResolver,
		httpClient: &http.Client{
			Transport: &http.Transport{
				DialContext:         dialer.DialContext,
				MaxIdleConnsPerHost: 1,
				IdleConnTimeout:     30 * time.Second,
			},
			CheckRedirect: noRedirects,
		},
		h2cClient: &http.Client{
			Transport:     newH2CTransport(dialer),
			CheckRedirect: noRedirects,
		},
	}
}

func noRedirects(*http.Request, []*http.Request) error {
	return http.ErrUseLastResponse
}

type netChecker struct {
	dialer     *net.Dialer
	resolver   *net.Resolver
	httpClient *http.Client
	h2cClient  *http.Client
}

func (c *netChecker) Check(ctx context.Context, target Target) Outcome {
	if target.Kind() == TargetHTTP {
		return c.checkHTTP(ctx, target)
	}
	return c.checkTCP(ctx, target)
}

func (c *netChecker) checkTCP(ctx context.Context, target Target) Outcome {
	addrs, err := c.resolver.LookupIPAddr(ctx, target.Host())
	if err != nil {
		return classifyAttemptError(ctx, err)
	}
	port := strconv.Itoa(target.Port())
	var lastErr error
	for _, addr := range addrs {
		conn, dialErr := c.dialer.DialContext(ctx, "tcp", net.JoinHostPort(addr.IP.String(), port))
		if dialErr == nil {
			_ = conn.Close()
			return success()
		}
		lastErr = dialErr
		if ctx.Err() != nil {
			break
		}
	}
	if lastErr == nil {
		return failure(FailureDNS, &net.DNSError{Err: "no addresses found", Name: target.Host(), IsNotFound: true})
	}
	return classifyAttemptError(ctx, lastErr)
}

func (c *netChecker) checkHTTP(ctx context.Context, target Target) Outcome {
	checkURL := target.URL()
	client := c.httpClient
	if checkURL.Scheme == "h2c" {
		checkURL.Scheme = "http"
		client = c.h2cClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, checkURL.String(), http.NoBody)
	if err != nil {
		return failure(FailureOther, err)
	}
	for _, header := range target.Headers() {
		if strings.EqualFold(header.Name, "Host") {
			req.Host = header.Value
			continue
		}
		req.Header.Set(header.Name, header.Value)
	}
	resp, err := client.Do(req)
	if err != nil {
		return classifyAttemptError(ctx, err)
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))
	_ = resp.Body.Close()
	if resp.StatusCode != target.ExpectedStatus() {
		statusErr := &StatusError{Expected: target.ExpectedStatus(), Actual: resp.StatusCode}
		return failure(FailureStatus, statusErr)
	}
	return success()
}

// classifyAttemptError classifies err, preferring the context's own state:
// a DNS lookup or dial abandoned by cancellation reports cancellation (or
// the attempt deadline), not the wrapped network error it surfaced as.
func classifyAttemptError(ctx context.Context, err error) Outcome {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return failure(classify(ctxErr), err)
	}
	return failure(classify(err), err)
}
