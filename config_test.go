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
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waitready/waitready"
)

func TestNewConfigDefaults(t *testing.T) {
	t.Parallel()

	config, err := waitready.NewConfig()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, config.Timeout())
	assert.Equal(t, time.Second, config.Interval())
	assert.Equal(t, 30*time.Second, config.MaxInterval())
	assert.Equal(t, 10*time.Second, config.ConnectTimeout())
	assert.Equal(t, 0, config.MaxAttempts())
	assert.Equal(t, waitready.WaitForAll, config.Strategy())
}

func TestNewConfigOptions(t *testing.T) {
	t.Parallel()

	config, err := waitready.NewConfig(
		waitready.WithTimeout(2*time.Minute),
		waitready.WithInterval(50*time.Millisecond),
		waitready.WithMaxInterval(10*time.Second),
		waitready.WithConnectTimeout(5*time.Second),
		waitready.WithMaxAttempts(12),
		waitready.WithStrategy(waitready.WaitForAny),
	)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, config.Timeout())
	assert.Equal(t, 50*time.Millisecond, config.Interval())
	assert.Equal(t, 10*time.Second, config.MaxInterval())
	assert.Equal(t, 5*time.Second, config.ConnectTimeout())
	assert.Equal(t, 12, config.MaxAttempts())
	assert.Equal(t, waitready.WaitForAny, config.Strategy())
}

func TestNewConfigRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		opts []waitready.ConfigOption
	}{
		{"negative timeout", []waitready.ConfigOption{waitready.WithTimeout(-time.Second)}},
		{"negative interval", []waitready.ConfigOption{waitready.WithInterval(-time.Second)}},
		{"negative connect timeout", []waitready.ConfigOption{waitready.WithConnectTimeout(-time.Second)}},
		{"negative attempts", []waitready.ConfigOption{waitready.WithMaxAttempts(-1)}},
		{
			"max interval below interval",
			[]waitready.ConfigOption{
				waitready.WithInterval(10 * time.Second),
				waitready.WithMaxInterval(time.Second),
			},
		},
		{"unknown strategy", []waitready.ConfigOption{waitready.WithStrategy(waitready.Strategy(42))}},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			_, err := waitready.NewConfig(testCase.opts...)
			assert.Error(t, err)
		})
	}
}

func TestPresets(t *testing.T) {
	t.Parallel()

	for name, preset := range map[string][]waitready.ConfigOption{
		"local dev":  waitready.PresetLocalDev(),
		"ci":         waitready.PresetCI(),
		"container":  waitready.PresetContainer(),
		"production": waitready.PresetProduction(),
	} {
		config, err := waitready.NewConfig(preset...)
		require.NoError(t, err, "preset %s", name)
		assert.Positive(t, config.Timeout(), "preset %s", name)
		assert.GreaterOrEqual(t, config.MaxInterval(), config.Interval(), "preset %s", name)
	}
}

func TestPresetsAcceptOverrides(t *testing.T) {
	t.Parallel()

	config, err := waitready.NewConfig(append(
		waitready.PresetContainer(),
		waitready.WithStrategy(waitready.WaitForAny),
		waitready.WithTimeout(time.Minute),
	)...)
	require.NoError(t, err)
	assert.Equal(t, waitready.WaitForAny, config.Strategy())
	assert.Equal(t, time.Minute, config.Timeout())
	assert.Equal(t, 2*time.Second, config.Interval())
}
