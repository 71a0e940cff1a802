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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoffDoublesUpToMax(t *testing.T) {
	t.Parallel()

	delays := newBackoff(100*time.Millisecond, time.Second)
	expected := []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		800 * time.Millisecond,
		time.Second,
		time.Second,
	}
	for i, want := range expected {
		assert.Equal(t, want, delays.Next(), "delay %d", i)
	}
}

func TestBackoffMonotonic(t *testing.T) {
	t.Parallel()

	initial := 7 * time.Millisecond
	maximum := 5 * time.Second
	delays := newBackoff(initial, maximum)

	previous := delays.Next()
	assert.Equal(t, initial, previous, "first delay is the initial interval")
	for i := 0; i < 20; i++ {
		next := delays.Next()
		assert.GreaterOrEqual(t, next, previous)
		assert.LessOrEqual(t, next, maximum)
		previous = next
	}
}

func TestBackoffEqualBounds(t *testing.T) {
	t.Parallel()

	delays := newBackoff(time.Second, time.Second)
	assert.Equal(t, time.Second, delays.Next())
	assert.Equal(t, time.Second, delays.Next())
}
