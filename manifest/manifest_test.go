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

package manifest_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waitready/waitready"
	"github.com/waitready/waitready/manifest"
)

func TestParse(t *testing.T) {
	t.Parallel()

	source := `
wait {
  timeout      = "2m"
  interval     = "500ms"
  max_interval = "10s"
  any          = true
  max_attempts = 5
}

target "tcp" "db" {
  address = "db:5432"
}

target "http" "api" {
  url    = "http://api:8080/healthz"
  status = 204
}
`
	parsed, err := manifest.Parse([]byte(source), "waitfile.hcl")
	require.NoError(t, err)

	require.Len(t, parsed.Targets, 2)
	db, api := parsed.Targets[0], parsed.Targets[1]
	assert.Equal(t, waitready.TargetTCP, db.Kind())
	assert.Equal(t, "db:5432", db.String())
	assert.Equal(t, waitready.TargetHTTP, api.Kind())
	assert.Equal(t, "http://api:8080/healthz", api.String())
	assert.Equal(t, 204, api.ExpectedStatus())

	config, err := waitready.NewConfig(parsed.Options...)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, config.Timeout())
	assert.Equal(t, 500*time.Millisecond, config.Interval())
	assert.Equal(t, 10*time.Second, config.MaxInterval())
	assert.Equal(t, 5, config.MaxAttempts())
	assert.Equal(t, waitready.WaitForAny, config.Strategy())
}

func TestParseWithoutWaitBlock(t *testing.T) {
	t.Parallel()

	parsed, err := manifest.Parse([]byte(`
target "tcp" "cache" {
  address = "localhost:6379"
}
`), "waitfile.hcl")
	require.NoError(t, err)
	assert.Empty(t, parsed.Options)
	require.Len(t, parsed.Targets, 1)
}

func TestParseEnvInterpolation(t *testing.T) {
	t.Setenv("WAITFILE_TEST_TOKEN", "sesame")

	parsed, err := manifest.Parse([]byte(`
target "http" "api" {
  url = "http://api:8080/healthz"
  headers = {
    Authorization = "Bearer ${env.WAITFILE_TEST_TOKEN}"
  }
}
`), "waitfile.hcl")
	require.NoError(t, err)
	require.Len(t, parsed.Targets, 1)
	headers := parsed.Targets[0].Headers()
	require.Len(t, headers, 1)
	assert.Equal(t, waitready.Header{Name: "Authorization", Value: "Bearer sesame"}, headers[0])
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		source  string
		message string
	}{
		{
			name:    "no targets",
			source:  `wait {}`,
			message: "declares no targets",
		},
		{
			name:    "malformed HCL",
			source:  `target "tcp" {`,
			message: "failed to parse waitfile",
		},
		{
			name: "unknown kind",
			source: `
target "udp" "dns" {
  address = "dns:53"
}
`,
			message: `unknown target kind "udp"`,
		},
		{
			name: "tcp without address",
			source: `
target "tcp" "db" {
}
`,
			message: "tcp target requires an address",
		},
		{
			name: "tcp with URL form address",
			source: `
target "tcp" "db" {
  address = "http://db:5432"
}
`,
			message: "must be host:port, not a URL",
		},
		{
			name: "tcp with http attributes",
			source: `
target "tcp" "db" {
  address = "db:5432"
  status  = 200
}
`,
			message: "supports only the address attribute",
		},
		{
			name: "http without url",
			source: `
target "http" "api" {
  status = 200
}
`,
			message: "http target requires a url",
		},
		{
			name: "bad duration",
			source: `
wait {
  timeout = "soon"
}

target "tcp" "db" {
  address = "db:5432"
}
`,
			message: "invalid timeout",
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			_, err := manifest.Parse([]byte(testCase.source), "waitfile.hcl")
			require.Error(t, err)
			assert.ErrorContains(t, err, testCase.message)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "waitfile.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
target "tcp" "db" {
  address = "db:5432"
}
`), 0o600))

	parsed, err := manifest.Load(path)
	require.NoError(t, err)
	require.Len(t, parsed.Targets, 1)
	assert.Equal(t, "db:5432", parsed.Targets[0].String())

	_, err = manifest.Load(filepath.Join(t.TempDir(), "missing.hcl"))
	assert.ErrorContains(t, err, "failed to read waitfile")
}
