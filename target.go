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
	"encoding/base64"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// TargetKind identifies which kind of endpoint a Target describes.
type TargetKind int

const (
	// TargetTCP is a raw TCP endpoint, identified by host and port.
	TargetTCP = TargetKind(iota)
	// TargetHTTP is an HTTP(S) endpoint, identified by URL and an
	// expected response status code.
	TargetHTTP
)

func (k TargetKind) String() string {
	switch k {
	case TargetTCP:
		return "tcp"
	case TargetHTTP:
		return "http"
	default:
		return fmt.Sprintf("TargetKind(%d)", int(k))
	}
}

// A Header is a single HTTP header sent with each check of an HTTP target.
// Headers keep the order in which they were supplied.
type Header struct {
	Name  string
	Value string
}

// A Target describes one network endpoint to probe. Targets are immutable
// after construction: the validating constructors either return a fully
// valid value or an error, never a partial one. A zero Target is a TCP
// target with no host and is not valid; always use a constructor.
//
// Targets are safely shared across concurrent wait loops.
type Target struct {
	kind TargetKind

	// TCP targets
	host string
	port int

	// HTTP targets
	url          *url.URL
	expectStatus int
	headers      []Header
}

// NewTCPTarget creates a target that is ready when a TCP connection to
// host:port can be established. The host must be a hostname or IP literal
// and the port must be in [1,65535].
func NewTCPTarget(host string, port int) (Target, error) {
	if err := validateHost(host); err != nil {
		return Target{}, err
	}
	if port < 1 || port > 65535 {
		return Target{}, fmt.Errorf("invalid port %d: must be in range 1-65535", port)
	}
	return Target{kind: TargetTCP, host: host, port: port}, nil
}

// TCPTargets creates one TCP target per port, all on the same host. This
// covers the common case of a service cluster exposing several ports.
func TCPTargets(host string, ports ...int) ([]Target, error) {
	targets := make([]Target, 0, len(ports))
	for _, port := range ports {
		target, err := NewTCPTarget(host, port)
		if err != nil {
			return nil, err
		}
		targets = append(targets, target)
	}
	return targets, nil
}

// LocalhostTarget creates a TCP target on localhost, the common case for
// checking a sidecar or a port-forwarded service.
func LocalhostTarget(port int) (Target, error) {
	return NewTCPTarget("localhost", port)
}

// NewHTTPTarget creates a target that is ready when a GET of the given URL
// returns the expected status code (200 unless changed with
// WithExpectedStatus). The URL scheme must be "http", "https", or "h2c"
// (HTTP/2 over clear text).
func NewHTTPTarget(rawURL string, opts ...TargetOption) (Target, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return Target{}, fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	target := Target{
		kind:         TargetHTTP,
		url:          parsed,
		expectStatus: 200,
	}
	for _, opt := range opts {
		opt.apply(&target)
	}
	if err := target.validateHTTP(); err != nil {
		return Target{}, err
	}
	return target, nil
}

// ParseTarget parses a target from its command-line form: "host:port" for
// TCP targets, or an "http://", "https://", or "h2c://" URL for HTTP
// targets. HTTP targets parsed this way expect defaultStatus.
func ParseTarget(s string, defaultStatus int) (Target, error) {
	if strings.Contains(s, "://") {
		return NewHTTPTarget(s, WithExpectedStatus(defaultStatus))
	}
	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		return Target{}, fmt.Errorf("invalid target %q: expected host:port or URL", s)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return Target{}, fmt.Errorf("invalid port %q in target %q", portStr, s)
	}
	return NewTCPTarget(host, port)
}

// Kind reports which kind of endpoint this target describes.
func (t Target) Kind() TargetKind {
	return t.kind
}

// Host returns the hostname being probed. For HTTP targets this is the
// URL's host without the port.
func (t Target) Host() string {
	if t.kind == TargetHTTP {
		return t.url.Hostname()
	}
	return t.host
}

// Port returns the port being probed, or zero if an HTTP target's URL does
// not name one explicitly.
func (t Target) Port() int {
	if t.kind == TargetHTTP {
		port, err := strconv.Atoi(t.url.Port())
		if err != nil {
			return 0
		}
		return port
	}
	return t.port
}

// URL returns a copy of an HTTP target's URL, or nil for TCP targets.
func (t Target) URL() *url.URL {
	if t.url == nil {
		return nil
	}
	clone := *t.url
	return &clone
}

// ExpectedStatus returns the status code an HTTP target expects, or zero
// for TCP targets.
func (t Target) ExpectedStatus() int {
	return t.expectStatus
}

// Headers returns a copy of the headers sent with each check of an HTTP
// target, in the order they were supplied.
func (t Target) Headers() []Header {
	if len(t.headers) == 0 {
		return nil
	}
	headers := make([]Header, len(t.headers))
	copy(headers, t.headers)
	return headers
}

// String returns the display form of the target: "host:port" for TCP
// targets and the URL for HTTP targets.
func (t Target) String() string {
	if t.kind == TargetHTTP {
		return t.url.String()
	}
	return net.JoinHostPort(t.host, strconv.Itoa(t.port))
}

func (t Target) validateHTTP() error {
	switch t.url.Scheme {
	case "http", "https", "h2c":
	default:
		return fmt.Errorf("unsupported URL scheme %q: must be http, https, or h2c", t.url.Scheme)
	}
	if t.url.Host == "" {
		return fmt.Errorf("invalid URL %q: missing host", t.url)
	}
	if t.expectStatus < 100 || t.expectStatus > 599 {
		return fmt.Errorf("invalid expected status %d: must be in range 100-599", t.expectStatus)
	}
	seen := make(map[string]struct{}, len(t.headers))
	for _, header := range t.headers {
		if err := validateHeaderName(header.Name); err != nil {
			return err
		}
		if header.Value == "" {
			return fmt.Errorf("header %q has an empty value", header.Name)
		}
		lower := strings.ToLower(header.Name)
		if _, dup := seen[lower]; dup {
			return fmt.Errorf("duplicate header %q", header.Name)
		}
		seen[lower] = struct{}{}
	}
	return nil
}

// validateHost accepts IP literals and RFC 1123 hostnames.
func validateHost(host string) error {
	if host == "" {
		return fmt.Errorf("hostname cannot be empty")
	}
	if net.ParseIP(host) != nil {
		return nil
	}
	if len(host) > 253 {
		return fmt.Errorf("invalid hostname %q: longer than 253 characters", host)
	}
	for _, label := range strings.Split(strings.TrimSuffix(host, "."), ".") {
		if label == "" {
			return fmt.Errorf("invalid hostname %q: empty label", host)
		}
		if len(label) > 63 {
			return fmt.Errorf("invalid hostname %q: label longer than 63 characters", host)
		}
		if label[0] == '-' || label[len(label)-1] == '-' {
			return fmt.Errorf("invalid hostname %q: label begins or ends with a hyphen", host)
		}
		for _, char := range label {
			if char != '-' && !isAlphanumeric(char) {
				return fmt.Errorf("invalid hostname %q: character %q not allowed", host, char)
			}
		}
	}
	return nil
}

// validateHeaderName enforces the RFC 7230 token form, restricted to the
// characters header names use in practice.
func validateHeaderName(name string) error {
	if name == "" {
		return fmt.Errorf("header name cannot be empty")
	}
	for _, char := range name {
		if char != '-' && char != '_' && !isAlphanumeric(char) {
			return fmt.Errorf("invalid header name %q", name)
		}
	}
	return nil
}

func isAlphanumeric(char rune) bool {
	return (char >= 'a' && char <= 'z') ||
		(char >= 'A' && char <= 'Z') ||
		(char >= '0' && char <= '9')
}

// TargetOption is an option used to customize an HTTP target.
type TargetOption interface {
	apply(*Target)
}

type targetOptionFunc func(*Target)

func (f targetOptionFunc) apply(target *Target) {
	f(target)
}

// WithExpectedStatus configures the exact status code that marks the
// target ready. If not specified, 200 is expected.
func WithExpectedStatus(status int) TargetOption {
	return targetOptionFunc(func(target *Target) {
		target.expectStatus = status
	})
}

// WithHeader adds a header to send with each check. Headers are sent in
// the order supplied; names must be unique (case-insensitive).
func WithHeader(name, value string) TargetOption {
	return targetOptionFunc(func(target *Target) {
		target.headers = append(target.headers, Header{Name: name, Value: value})
	})
}

// WithBearerToken adds an Authorization header carrying the given bearer
// token.
func WithBearerToken(token string) TargetOption {
	return WithHeader("Authorization", "Bearer "+token)
}

// WithBasicAuth adds an Authorization header carrying HTTP basic
// credentials.
func WithBasicAuth(username, password string) TargetOption {
	credentials := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
	return WithHeader("Authorization", "Basic "+credentials)
}
