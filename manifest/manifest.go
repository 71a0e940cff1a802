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

// Package manifest loads declarative waitfiles: HCL documents naming the
// targets to probe and the wait settings to probe them with, so a
// deployment can check in its readiness gate next to its compose file.
//
// A waitfile looks like:
//
//	wait {
//	  timeout      = "2m"
//	  interval     = "500ms"
//	  max_interval = "10s"
//	  any          = false
//	}
//
//	target "tcp" "db" {
//	  address = "db:5432"
//	}
//
//	target "http" "api" {
//	  url    = "http://api:8080/healthz"
//	  status = 200
//	  headers = {
//	    Authorization = "Bearer ${env.API_TOKEN}"
//	  }
//	}
//
// Expressions may reference process environment variables through the
// `env` object, as shown above.
package manifest

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/waitready/waitready"
	"github.com/zclconf/go-cty/cty"
)

// A Manifest is a decoded waitfile: the targets to probe, in file order,
// and the config options the wait block asked for.
type Manifest struct {
	Targets []waitready.Target
	Options []waitready.ConfigOption
}

type waitfile struct {
	Wait    *waitBlock    `hcl:"wait,block"`
	Targets []targetBlock `hcl:"target,block"`
}

type waitBlock struct {
	Timeout        *string `hcl:"timeout,optional"`
	Interval       *string `hcl:"interval,optional"`
	MaxInterval    *string `hcl:"max_interval,optional"`
	ConnectTimeout *string `hcl:"connect_timeout,optional"`
	MaxAttempts    *int    `hcl:"max_attempts,optional"`
	Any            *bool   `hcl:"any,optional"`
}

type targetBlock struct {
	Kind    string            `hcl:"kind,label"`
	Name    string            `hcl:"name,label"`
	Address *string           `hcl:"address,optional"`
	URL     *string           `hcl:"url,optional"`
	Status  *int              `hcl:"status,optional"`
	Headers map[string]string `hcl:"headers,optional"`
}

// Load parses and validates the waitfile at path.
func Load(path string) (*Manifest, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read waitfile: %w", err)
	}
	return Parse(source, path)
}

// Parse decodes waitfile source. The filename is used in diagnostics only.
func Parse(source []byte, filename string) (*Manifest, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(source, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse waitfile %s: %w", filename, diags)
	}
	var decoded waitfile
	diags = gohcl.DecodeBody(file.Body, evalContext(os.Environ()), &decoded)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode waitfile %s: %w", filename, diags)
	}

	manifest := &Manifest{}
	if decoded.Wait != nil {
		options, err := decoded.Wait.options()
		if err != nil {
			return nil, fmt.Errorf("invalid wait block in %s: %w", filename, err)
		}
		manifest.Options = options
	}
	for _, block := range decoded.Targets {
		target, err := block.target()
		if err != nil {
			return nil, fmt.Errorf("invalid target %q in %s: %w", block.Name, filename, err)
		}
		manifest.Targets = append(manifest.Targets, target)
	}
	if len(manifest.Targets) == 0 {
		return nil, fmt.Errorf("waitfile %s declares no targets", filename)
	}
	return manifest, nil
}

// evalContext exposes the process environment to waitfile expressions as
// an object named env.
func evalContext(environ []string) *hcl.EvalContext {
	values := make(map[string]cty.Value, len(environ))
	for _, entry := range environ {
		name, value, ok := strings.Cut(entry, "=")
		if ok && name != "" {
			values[name] = cty.StringVal(value)
		}
	}
	env := cty.EmptyObjectVal
	if len(values) > 0 {
		env = cty.ObjectVal(values)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"env": env},
	}
}

func (b *waitBlock) options() ([]waitready.ConfigOption, error) {
	var options []waitready.ConfigOption
	durations := []struct {
		name  string
		value *string
		opt   func(time.Duration) waitready.ConfigOption
	}{
		{"timeout", b.Timeout, waitready.WithTimeout},
		{"interval", b.Interval, waitready.WithInterval},
		{"max_interval", b.MaxInterval, waitready.WithMaxInterval},
		{"connect_timeout", b.ConnectTimeout, waitready.WithConnectTimeout},
	}
	for _, attr := range durations {
		if attr.value == nil {
			continue
		}
		duration, err := time.ParseDuration(*attr.value)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", attr.name, err)
		}
		options = append(options, attr.opt(duration))
	}
	if b.MaxAttempts != nil {
		options = append(options, waitready.WithMaxAttempts(*b.MaxAttempts))
	}
	if b.Any != nil && *b.Any {
		options = append(options, waitready.WithStrategy(waitready.WaitForAny))
	}
	return options, nil
}

func (b *targetBlock) target() (waitready.Target, error) {
	switch b.Kind {
	case "tcp":
		if b.Address == nil {
			return waitready.Target{}, fmt.Errorf("tcp target requires an address")
		}
		if b.URL != nil || b.Status != nil || len(b.Headers) > 0 {
			return waitready.Target{}, fmt.Errorf("tcp target supports only the address attribute")
		}
		if strings.Contains(*b.Address, "://") {
			return waitready.Target{}, fmt.Errorf("tcp target address must be host:port, not a URL")
		}
		return waitready.ParseTarget(*b.Address, 0)
	case "http":
		if b.URL == nil {
			return waitready.Target{}, fmt.Errorf("http target requires a url")
		}
		if b.Address != nil {
			return waitready.Target{}, fmt.Errorf("http target does not take an address")
		}
		var opts []waitready.TargetOption
		if b.Status != nil {
			opts = append(opts, waitready.WithExpectedStatus(*b.Status))
		}
		// HCL maps are unordered; sort names so header order is stable.
		names := make([]string, 0, len(b.Headers))
		for name := range b.Headers {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			opts = append(opts, waitready.WithHeader(name, b.Headers[name]))
		}
		return waitready.NewHTTPTarget(*b.URL, opts...)
	default:
		return waitready.Target{}, fmt.Errorf("unknown target kind %q: must be tcp or http", b.Kind)
	}
}
