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
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"syscall"
)

// FailureKind classifies why a single connection attempt failed.
type FailureKind int

const (
	// FailureNone means the attempt succeeded.
	FailureNone = FailureKind(iota)
	// FailureDNS means the target's hostname could not be resolved.
	FailureDNS
	// FailureRefused means the connection was actively refused.
	FailureRefused
	// FailureConnectTimeout means the attempt exceeded its time budget.
	FailureConnectTimeout
	// FailureTLS means the TLS handshake or certificate verification failed.
	FailureTLS
	// FailureStatus means an HTTP response arrived with the wrong status.
	FailureStatus
	// FailureCancelled means the attempt was abandoned due to cancellation.
	FailureCancelled
	// FailureOther covers failures that fit no other kind.
	FailureOther
)

func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case FailureDNS:
		return "dns"
	case FailureRefused:
		return "refused"
	case FailureConnectTimeout:
		return "connect-timeout"
	case FailureTLS:
		return "tls"
	case FailureStatus:
		return "unexpected-status"
	case FailureCancelled:
		return "cancelled"
	case FailureOther:
		return "other"
	default:
		return fmt.Sprintf("FailureKind(%d)", int(k))
	}
}

// An Outcome is the classified result of one connection attempt. The zero
// Outcome is success.
type Outcome struct {
	Kind FailureKind
	Err  error
}

// Success reports whether the attempt succeeded.
func (o Outcome) Success() bool {
	return o.Kind == FailureNone
}

func (o Outcome) String() string {
	if o.Success() {
		return "success"
	}
	return fmt.Sprintf("%s: %v", o.Kind, o.Err)
}

// success is the zero Outcome.
func success() Outcome {
	return Outcome{}
}

func failure(kind FailureKind, err error) Outcome {
	return Outcome{Kind: kind, Err: err}
}

// A StatusError reports an HTTP response whose status code did not match
// the target's expectation.
type StatusError struct {
	Expected int
	Actual   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: expected %d, got %d", e.Expected, e.Actual)
}

// classify maps a connection error to a FailureKind. It unwraps through
// url.Error and net.OpError layers via errors.Is/As.
func classify(err error) FailureKind {
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, context.Canceled):
		return FailureCancelled
	case errors.Is(err, context.DeadlineExceeded):
		return FailureConnectTimeout
	case errors.Is(err, syscall.ECONNREFUSED):
		return FailureRefused
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return FailureDNS
	}
	if isTLSError(err) {
		return FailureTLS
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return FailureStatus
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FailureConnectTimeout
	}
	return FailureOther
}

func isTLSError(err error) bool {
	var (
		verifyErr    *tls.CertificateVerificationError
		recordErr    tls.RecordHeaderError
		hostnameErr  x509.HostnameError
		unknownCAErr x509.UnknownAuthorityError
		invalidErr   x509.CertificateInvalidError
	)
	return errors.As(err, &verifyErr) ||
		errors.As(err, &recordErr) ||
		errors.As(err, &hostnameErr) ||
		errors.As(err, &unknownCAErr) ||
		errors.As(err, &invalidErr)
}
