// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/matt-FFFFFF/posterbatch/internal/ctxlog"
	"github.com/matt-FFFFFF/posterbatch/internal/signalbroker"
	"github.com/matt-FFFFFF/posterbatch/internal/teereader"
)

const (
	maxTailSize    = 64 * 1024        // 64KB of each stream is kept in the result
	maxErrorLine   = 200              // Runes of the last stderr line quoted in a failure
	tickerInterval = 30 * time.Second // Interval for the process watchdog heartbeat
)

var (
	_ Runnable     = (*OSCommand)(nil)
	_ OutputSink   = (*OSCommand)(nil)
	_ CommandLiner = (*OSCommand)(nil)
)

var (
	// ErrNonZeroExit is returned when the process exits with a non-zero code.
	ErrNonZeroExit = errors.New("process exited with non-zero status")
	// ErrCouldNotStartProcess is returned when the process could not be started.
	ErrCouldNotStartProcess = errors.New("could not start process")
	// ErrTimeoutExceeded is returned when the command exceeds the context deadline.
	ErrTimeoutExceeded = errors.New("timeout exceeded")
	// ErrFailedToCreatePipe is returned when the operating system pipe could not be created.
	ErrFailedToCreatePipe = errors.New("failed to create pipe")
	// ErrFailedToReadBuffer is returned when the operating system pipe could not be read.
	ErrFailedToReadBuffer = errors.New("failed to read buffer")
	// ErrSignalReceived is returned when an operating system signal was forwarded to the child process.
	ErrSignalReceived = errors.New("signal received")
	// ErrDuplicateSignalReceived is returned when a duplicate signal is received, forcing process termination.
	ErrDuplicateSignalReceived = errors.New("duplicate signal received, process forcefully terminated")
)

// OSCommand is one execution of an external program.
type OSCommand struct {
	Label string            // Description used in logs
	Path  string            // The command to run (e.g. executable full path)
	Args  []string          // Arguments to the command, do not include the executable name itself
	Cwd   string            // Working directory, empty for the current one
	Env   map[string]string // Added to the inherited environment

	// Live copies of the output streams, may be nil.
	stdout io.Writer
	stderr io.Writer
	// Called for every complete output line.
	onLine func(line string, isStderr bool)
	// Channel to receive signals, allows mocking in test.
	sigCh chan os.Signal
}

// SetOutput implements OutputSink.
func (c *OSCommand) SetOutput(stdout, stderr io.Writer, onLine func(line string, isStderr bool)) {
	c.stdout = stdout
	c.stderr = stderr
	c.onLine = onLine
}

// CommandLine implements CommandLiner. Arguments containing spaces or quotes are quoted.
func (c *OSCommand) CommandLine() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, shellQuote(c.Path))

	for _, a := range c.Args {
		parts = append(parts, shellQuote(a))
	}

	return strings.Join(parts, " ")
}

// mergeEnv returns base with overrides applied. A key set in overrides replaces every
// entry of base with that key, so the child sees exactly one value.
func mergeEnv(base []string, overrides map[string]string) []string {
	env := make([]string, 0, len(base)+len(overrides))

	for _, kv := range base {
		k, _, _ := strings.Cut(kv, "=")
		if _, ok := overrides[k]; ok {
			continue
		}

		env = append(env, kv)
	}

	for _, k := range slices.Sorted(maps.Keys(overrides)) {
		env = append(env, k+"="+overrides[k])
	}

	return env
}

func shellQuote(s string) string {
	if s == "" {
		return `""`
	}

	if strings.ContainsAny(s, " \t\"'$\\`") {
		return strconv.Quote(s)
	}

	return s
}

// Run implements the Runnable interface for OSCommand.
func (c *OSCommand) Run(ctx context.Context) Results {
	logger := ctxlog.Logger(ctx).
		With("runnableType", "OSCommand").
		With("label", c.Label)

	logger.Debug("command info", "path", c.Path, "cwd", c.Cwd, "args", c.Args)

	if c.sigCh == nil {
		c.sigCh = signalbroker.New(ctx)
		defer func() {
			signalbroker.Stop(c.sigCh)
			c.sigCh = nil
		}()
	}

	res := &Result{
		Label:   c.Label,
		Command: c.CommandLine(),
	}

	for _, k := range slices.Sorted(maps.Keys(c.Env)) {
		logger.Debug("adding environment variable", "key", k)
	}

	env := mergeEnv(os.Environ(), c.Env)

	rOut, wOut, err := os.Pipe()
	if err != nil {
		return failed(res, errors.Join(ErrFailedToCreatePipe, err))
	}

	rErr, wErr, err := os.Pipe()
	if err != nil {
		_ = rOut.Close()
		_ = wOut.Close()

		return failed(res, errors.Join(ErrFailedToCreatePipe, err))
	}

	defer rOut.Close() //nolint:errcheck
	defer rErr.Close() //nolint:errcheck

	execName := filepath.Base(c.Path)
	args := slices.Concat([]string{execName}, c.Args)

	logger.Debug("starting process")

	res.Started = time.Now()

	ps, err := os.StartProcess(c.Path, args, &os.ProcAttr{
		Dir:   c.Cwd,
		Env:   env,
		Files: []*os.File{os.Stdin, wOut, wErr},
	})

	// The child holds its own copies; closing ours lets the readers see EOF when it exits.
	_ = wOut.Close()
	_ = wErr.Close()

	if err != nil {
		res.Finished = time.Now()
		return failed(res, errors.Join(ErrCouldNotStartProcess, err))
	}

	logger.Debug("process started", "pid", ps.Pid)

	outTee := teereader.New(rOut, maxTailSize, c.lineFunc(false))
	errTee := teereader.New(rErr, maxTailSize, c.lineFunc(true))

	var (
		pumps   sync.WaitGroup
		readErr error
		readMu  sync.Mutex
	)

	pump := func(dst io.Writer, src io.Reader) {
		defer pumps.Done()

		if dst == nil {
			dst = io.Discard
		}

		if _, err := io.Copy(dst, src); err != nil && !errors.Is(err, os.ErrClosed) {
			readMu.Lock()
			readErr = errors.Join(readErr, ErrFailedToReadBuffer, err)
			readMu.Unlock()
		}
	}

	pumps.Add(2) //nolint:mnd
	go pump(c.stdout, outTee)
	go pump(c.stderr, errTee)

	done := make(chan struct{})
	// Buffered so the watchdog never blocks; only the first reason is kept.
	wasKilled := make(chan error, 1)

	var watchdog sync.WaitGroup

	watchdog.Add(1)

	go func() {
		defer watchdog.Done()

		signalCount := make(map[os.Signal]struct{})

		ticker := time.NewTicker(tickerInterval)
		defer ticker.Stop()

		report := func(e error) {
			select {
			case wasKilled <- e:
			default:
			}
		}

		for {
			select {
			case <-ticker.C:
				logger.Info("still running", "elapsed", time.Since(res.Started).Round(time.Second))

			case s := <-c.sigCh:
				if _, ok := signalCount[s]; ok {
					logger.Info("received duplicate signal, killing process", "signal", s.String())
					killPs(ctx, ps)
					report(ErrDuplicateSignalReceived)

					return
				}

				signalCount[s] = struct{}{}

				logger.Info("received signal", "signal", s.String())

				if err := ps.Signal(s); err != nil {
					logger.Info("failed to send signal", "signal", s.String(), "error", err)
				}

				report(ErrSignalReceived)

			case <-ctx.Done():
				logger.Info("context done, killing process")
				killPs(ctx, ps)
				report(errors.Join(ErrTimeoutExceeded, ctx.Err()))

				return

			case <-done:
				return
			}
		}
	}()

	logger.Debug("waiting for process to finish")

	state, psErr := ps.Wait()

	close(done)
	watchdog.Wait()
	pumps.Wait()

	res.Finished = time.Now()
	res.ExitCode = state.ExitCode()
	res.Error = psErr
	res.StdOut = outTee.Tail()
	res.StdErr = errTee.Tail()

	logger.Debug("process finished", "exitCode", res.ExitCode, "duration", res.Duration())

	if outTee.Truncated() || errTee.Truncated() {
		logger.Debug("output longer than the retained tail", "tailBytes", maxTailSize)
	}

	select {
	case e := <-wasKilled:
		res.Error = errors.Join(res.Error, e)
		if res.ExitCode == 0 {
			res.ExitCode = -1
		}
	default:
	}

	if readErr != nil {
		res.Error = errors.Join(res.Error, readErr)
	}

	switch {
	case res.ExitCode == 0 && res.Error == nil:
		res.Status = ResultStatusSuccess
	default:
		logger.Debug("process error", "error", res.Error, "exitCode", res.ExitCode)

		if res.ExitCode == 0 {
			res.ExitCode = -1
		}

		if res.Error == nil {
			res.Error = ErrNonZeroExit

			if last := errTee.LastLine(maxErrorLine); last != "" {
				res.Error = fmt.Errorf("%w: %s", ErrNonZeroExit, last)
			}
		}

		res.Status = ResultStatusError
	}

	return Results{res}
}

func (c *OSCommand) lineFunc(isStderr bool) func(string) {
	if c.onLine == nil {
		return nil
	}

	return func(line string) {
		c.onLine(line, isStderr)
	}
}

func failed(res *Result, err error) Results {
	res.Error = err
	res.ExitCode = -1
	res.Status = ResultStatusError

	return Results{res}
}

// killPs kills the process.
func killPs(ctx context.Context, ps *os.Process) {
	if err := ps.Kill(); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			ctxlog.Debug(ctx, "process already done", "pid", ps.Pid)
			return
		}

		ctxlog.Error(ctx, "process kill error", "pid", ps.Pid, "error", err)

		return
	}

	ctxlog.Info(ctx, "process killed", "pid", ps.Pid)
}
