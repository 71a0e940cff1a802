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

import "time"

// backoff produces the delays between a target's attempts: the first delay
// is the initial interval, each later delay doubles, and no delay exceeds
// the maximum interval. No jitter is applied, so the schedule is exact.
type backoff struct {
	next time.Duration
	max  time.Duration
}

func newBackoff(initial, maximum time.Duration) *backoff {
	return &backoff{next: initial, max: maximum}
}

// Next returns the delay to sleep before the next attempt and advances the
// schedule.
func (b *backoff) Next() time.Duration {
	delay := b.next
	doubled := b.next * 2
	if doubled > b.max || doubled < b.next {
		doubled = b.max
	}
	b.next = doubled
	return delay
}
