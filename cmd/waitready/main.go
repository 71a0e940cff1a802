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

// Command waitready blocks until its target endpoints are reachable, then
// exits zero (or runs a follow-up command). It is meant to gate container
// entrypoints and CI steps on their dependencies:
//
//	waitready -timeout 2m db:5432 http://api:8080/healthz
//	waitready -any cache-a:6379 cache-b:6379
//	waitready db:5432 -- ./run-migrations.sh
//	waitready -f waitfile.hcl -json
//
// Exit codes: 0 when all required targets became ready (or the follow-up
// command's own exit code), 1 when waiting failed, 2 on usage errors.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/waitready/waitready"
	"github.com/waitready/waitready/manifest"
)

const defaultStatus = 200

type cliConfig struct {
	timeout        time.Duration
	interval       time.Duration
	maxInterval    time.Duration
	connectTimeout time.Duration
	attempts       int
	any            bool
	status         int
	waitfile       string
	jsonOutput     bool
	quiet          bool
	logLevel       string
	targets        []string
	command        []string
}

// exitError carries a specific process exit code out of run.
type exitError struct {
	code    int
	message string
}

func (e *exitError) Error() string {
	return e.message
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code, err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "waitready:", err)
	}
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) (int, error) {
	config, err := parseArgs(args, os.LookupEnv, stderr)
	if err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			if exitErr.message == "" {
				return exitErr.code, nil
			}
			return exitErr.code, errors.New(exitErr.message)
		}
		return 2, err
	}

	logger := newLogger(config, stderr)
	targets, options, err := resolveTargets(config)
	if err != nil {
		return 2, err
	}
	options = append(options, waitready.WithProgress(waitready.LogProgress(logger)))

	waitConfig, err := waitready.NewConfig(options...)
	if err != nil {
		return 2, err
	}

	result, err := waitready.Wait(ctx, targets, waitConfig)
	if err != nil {
		return 1, err
	}
	if config.jsonOutput {
		encoder := json.NewEncoder(stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(result); err != nil {
			return 1, err
		}
	}
	if !result.Success {
		logger.Error("dependencies not ready",
			slog.Duration("elapsed", result.Elapsed),
			slog.Int("total_attempts", result.Attempts))
		return 1, nil
	}
	logger.Info("dependencies ready",
		slog.Duration("elapsed", result.Elapsed),
		slog.Int("total_attempts", result.Attempts))

	if len(config.command) > 0 {
		return runCommand(ctx, config.command, stdout, stderr)
	}
	return 0, nil
}

// parseArgs processes command-line arguments, with environment variables
// supplying defaults for the duration and attempt flags. Arguments after
// "--" are the follow-up command.
func parseArgs(args []string, lookupEnv func(string) (string, bool), stderr io.Writer) (*cliConfig, error) {
	ownArgs, command := splitCommand(args)

	config := &cliConfig{command: command}
	flagSet := flag.NewFlagSet("waitready", flag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.Usage = func() {
		fmt.Fprint(stderr, `waitready - block until network dependencies are reachable.

Usage:
  waitready [options] TARGET... [-- COMMAND [ARGS...]]
  waitready [options] -f WAITFILE [-- COMMAND [ARGS...]]

Targets:
  host:port for TCP, or an http://, https://, or h2c:// URL.

Options:
`)
		flagSet.PrintDefaults()
	}

	flagSet.DurationVar(&config.timeout, "timeout",
		envDuration(lookupEnv, "WAITREADY_TIMEOUT", waitready.DefaultTimeout),
		"overall budget for the wait")
	flagSet.DurationVar(&config.interval, "interval",
		envDuration(lookupEnv, "WAITREADY_INTERVAL", waitready.DefaultInterval),
		"delay before the first retry; later delays double")
	flagSet.DurationVar(&config.maxInterval, "max-interval",
		envDuration(lookupEnv, "WAITREADY_MAX_INTERVAL", waitready.DefaultMaxInterval),
		"ceiling on the retry delay")
	flagSet.DurationVar(&config.connectTimeout, "connect-timeout",
		envDuration(lookupEnv, "WAITREADY_CONNECT_TIMEOUT", waitready.DefaultConnectTimeout),
		"budget for a single connection attempt")
	flagSet.IntVar(&config.attempts, "attempts",
		envInt(lookupEnv, "WAITREADY_ATTEMPTS", 0),
		"per-target attempt ceiling (0 = unbounded)")
	flagSet.BoolVar(&config.any, "any", false,
		"succeed when any one target is ready, instead of all")
	flagSet.IntVar(&config.status, "status", defaultStatus,
		"expected status for HTTP targets given on the command line")
	flagSet.StringVar(&config.waitfile, "f", "",
		"read targets and settings from an HCL waitfile")
	flagSet.BoolVar(&config.jsonOutput, "json", false,
		"write a JSON report to stdout")
	flagSet.BoolVar(&config.quiet, "quiet", false,
		"log errors only")
	flagSet.StringVar(&config.logLevel, "log-level", "info",
		"log level: debug, info, warn, or error")

	if err := flagSet.Parse(ownArgs); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, &exitError{code: 0}
		}
		return nil, &exitError{code: 2}
	}
	config.targets = flagSet.Args()

	if len(config.targets) == 0 && config.waitfile == "" {
		flagSet.Usage()
		return nil, &exitError{code: 2, message: "no targets given"}
	}
	if len(config.targets) > 0 && config.waitfile != "" {
		return nil, &exitError{code: 2, message: "targets must come from the command line or the waitfile, not both"}
	}
	return config, nil
}

// splitCommand separates the tool's own arguments from the follow-up
// command after the first "--".
func splitCommand(args []string) (own, command []string) {
	for i, arg := range args {
		if arg == "--" {
			return args[:i], args[i+1:]
		}
	}
	return args, nil
}

// resolveTargets builds the target list and config options from either the
// command line or the waitfile.
func resolveTargets(config *cliConfig) ([]waitready.Target, []waitready.ConfigOption, error) {
	options := []waitready.ConfigOption{
		waitready.WithTimeout(config.timeout),
		waitready.WithInterval(config.interval),
		waitready.WithMaxInterval(config.maxInterval),
		waitready.WithConnectTimeout(config.connectTimeout),
		waitready.WithMaxAttempts(config.attempts),
	}
	if config.any {
		options = append(options, waitready.WithStrategy(waitready.WaitForAny))
	}

	if config.waitfile != "" {
		loaded, err := manifest.Load(config.waitfile)
		if err != nil {
			return nil, nil, err
		}
		// Waitfile settings take precedence over flag and env defaults.
		return loaded.Targets, append(options, loaded.Options...), nil
	}

	targets := make([]waitready.Target, 0, len(config.targets))
	for _, raw := range config.targets {
		target, err := waitready.ParseTarget(raw, config.status)
		if err != nil {
			return nil, nil, err
		}
		targets = append(targets, target)
	}
	return targets, options, nil
}

func runCommand(ctx context.Context, command []string, stdout, stderr io.Writer) (int, error) {
	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return 1, err
	}
	return 0, nil
}

func newLogger(config *cliConfig, stderr io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch config.logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if config.quiet {
		level = slog.LevelError
	}
	var handler slog.Handler
	if config.jsonOutput {
		handler = slog.NewJSONHandler(stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})
	}
	return slog.New(handler)
}

func envDuration(lookupEnv func(string) (string, bool), name string, fallback time.Duration) time.Duration {
	if value, ok := lookupEnv(name); ok {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func envInt(lookupEnv func(string) (string, bool), name string, fallback int) int {
	if value, ok := lookupEnv(name); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}
