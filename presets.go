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

// Presets bundle options for common environments. Append further options
// to override individual settings:
//
//	config, err := waitready.NewConfig(append(
//		waitready.PresetContainer(),
//		waitready.WithStrategy(waitready.WaitForAny),
//	)...)

// PresetLocalDev suits local development: short budgets and quick polling.
func PresetLocalDev() []ConfigOption {
	return []ConfigOption{
		WithTimeout(10 * time.Second),
		WithInterval(100 * time.Millisecond),
		WithMaxInterval(1 * time.Second),
		WithConnectTimeout(2 * time.Second),
		WithMaxAttempts(50),
	}
}

// PresetCI suits CI pipelines: moderate budgets with a retry ceiling so a
// dead dependency fails the job promptly.
func PresetCI() []ConfigOption {
	return []ConfigOption{
		WithTimeout(60 * time.Second),
		WithInterval(500 * time.Millisecond),
		WithMaxInterval(5 * time.Second),
		WithConnectTimeout(10 * time.Second),
		WithMaxAttempts(30),
	}
}

// PresetContainer suits container startup gates, where dependencies may
// take minutes to come up: a long budget and no retry ceiling.
func PresetContainer() []ConfigOption {
	return []ConfigOption{
		WithTimeout(5 * time.Minute),
		WithInterval(2 * time.Second),
		WithMaxInterval(30 * time.Second),
		WithConnectTimeout(15 * time.Second),
	}
}

// PresetProduction suits production readiness checks: conservative budgets
// and a bounded number of attempts.
func PresetProduction() []ConfigOption {
	return []ConfigOption{
		WithTimeout(2 * time.Minute),
		WithInterval(1 * time.Second),
		WithMaxInterval(30 * time.Second),
		WithConnectTimeout(30 * time.Second),
		WithMaxAttempts(20),
	}
}
