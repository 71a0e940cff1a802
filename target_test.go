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

package waitready_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waitready/waitready"
)

func TestNewTCPTarget(t *testing.T) {
	t.Parallel()

	target, err := waitready.NewTCPTarget("db.example.com", 5432)
	require.NoError(t, err)
	assert.Equal(t, waitready.TargetTCP, target.Kind())
	assert.Equal(t, "db.example.com", target.Host())
	assert.Equal(t, 5432, target.Port())
	assert.Equal(t, "db.example.com:5432", target.String())
	assert.Nil(t, target.URL())

	for _, host := range []string{"localhost", "127.0.0.1", "::1", "a.b-c.d", "trailing.dot."} {
		_, err := waitready.NewTCPTarget(host, 80)
		assert.NoError(t, err, "host %q", host)
	}
}

func TestNewTCPTargetRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		host string
		port int
	}{
		{"empty host", "", 80},
		{"port zero", "localhost", 0},
		{"port too large", "localhost", 65536},
		{"negative port", "localhost", -1},
		{"empty label", "a..b", 80},
		{"leading hyphen", "-example.com", 80},
		{"trailing hyphen in label", "foo-.example.com", 80},
		{"bad character", "exa_mple.com", 80},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			_, err := waitready.NewTCPTarget(testCase.host, testCase.port)
			assert.Error(t, err)
		})
	}
}

func TestTCPTargets(t *testing.T) {
	t.Parallel()

	targets, err := waitready.TCPTargets("api", 8080, 8081, 8082)
	require.NoError(t, err)
	require.Len(t, targets, 3)
	assert.Equal(t, "api:8081", targets[1].String())

	_, err = waitready.TCPTargets("api", 8080, 0)
	assert.Error(t, err)
}

func TestLocalhostTarget(t *testing.T) {
	t.Parallel()

	target, err := waitready.LocalhostTarget(6379)
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", target.String())

	_, err = waitready.LocalhostTarget(0)
	assert.Error(t, err)
}

func TestNewHTTPTarget(t *testing.T) {
	t.Parallel()

	target, err := waitready.NewHTTPTarget("https://api.example.com:8443/health",
		waitready.WithExpectedStatus(204),
		waitready.WithHeader("Accept", "application/json"),
		waitready.WithBearerToken("sesame"),
	)
	require.NoError(t, err)
	assert.Equal(t, waitready.TargetHTTP, target.Kind())
	assert.Equal(t, "api.example.com", target.Host())
	assert.Equal(t, 8443, target.Port())
	assert.Equal(t, 204, target.ExpectedStatus())
	assert.Equal(t, "https://api.example.com:8443/health", target.String())
	require.NotNil(t, target.URL())
	assert.Equal(t, "/health", target.URL().Path)
	assert.Equal(t, []waitready.Header{
		{Name: "Accept", Value: "application/json"},
		{Name: "Authorization", Value: "Bearer sesame"},
	}, target.Headers())
}

func TestNewHTTPTargetDefaultsTo200(t *testing.T) {
	t.Parallel()

	target, err := waitready.NewHTTPTarget("http://localhost:8080/")
	require.NoError(t, err)
	assert.Equal(t, 200, target.ExpectedStatus())
	assert.Nil(t, target.Headers())
}

func TestNewHTTPTargetRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		url  string
		opts []waitready.TargetOption
	}{
		{"bad scheme", "ftp://example.com/", nil},
		{"no host", "http:///health", nil},
		{"status too low", "http://example.com/", []waitready.TargetOption{waitready.WithExpectedStatus(99)}},
		{"status too high", "http://example.com/", []waitready.TargetOption{waitready.WithExpectedStatus(600)}},
		{"empty header name", "http://example.com/", []waitready.TargetOption{waitready.WithHeader("", "v")}},
		{"empty header value", "http://example.com/", []waitready.TargetOption{waitready.WithHeader("X-Token", "")}},
		{"bad header name", "http://example.com/", []waitready.TargetOption{waitready.WithHeader("X Token", "v")}},
		{
			"duplicate header",
			"http://example.com/",
			[]waitready.TargetOption{waitready.WithHeader("X-Token", "a"), waitready.WithHeader("x-token", "b")},
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			_, err := waitready.NewHTTPTarget(testCase.url, testCase.opts...)
			assert.Error(t, err)
		})
	}
}

func TestWithBasicAuth(t *testing.T) {
	t.Parallel()

	target, err := waitready.NewHTTPTarget("http://example.com/", waitready.WithBasicAuth("user", "password"))
	require.NoError(t, err)
	headers := target.Headers()
	require.Len(t, headers, 1)
	assert.Equal(t, "Authorization", headers[0].Name)
	assert.Equal(t, "Basic dXNlcjpwYXNzd29yZA==", headers[0].Value)
}

func TestTargetImmutability(t *testing.T) {
	t.Parallel()

	target, err := waitready.NewHTTPTarget("http://example.com/health", waitready.WithHeader("X-Token", "a"))
	require.NoError(t, err)

	target.Headers()[0].Value = "changed"
	assert.Equal(t, "a", target.Headers()[0].Value)

	target.URL().Path = "/other"
	assert.Equal(t, "/health", target.URL().Path)
}

func TestParseTarget(t *testing.T) {
	t.Parallel()

	target, err := waitready.ParseTarget("db:5432", 200)
	require.NoError(t, err)
	assert.Equal(t, waitready.TargetTCP, target.Kind())
	assert.Equal(t, "db:5432", target.String())

	target, err = waitready.ParseTarget("[::1]:6379", 200)
	require.NoError(t, err)
	assert.Equal(t, "::1", target.Host())
	assert.Equal(t, 6379, target.Port())

	target, err = waitready.ParseTarget("https://api.example.com/health", 204)
	require.NoError(t, err)
	assert.Equal(t, waitready.TargetHTTP, target.Kind())
	assert.Equal(t, 204, target.ExpectedStatus())

	for _, raw := range []string{"no-port", "db:notaport", "db:0", "ftp://example.com/"} {
		_, err := waitready.ParseTarget(raw, 200)
		assert.Error(t, err, "input %q", raw)
	}
}
