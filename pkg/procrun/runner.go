// Package procrun runs child processes with pumped standard streams, an idle
// timeout and context cancellation.
package procrun

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
)

// DefaultProbeTimeout is the idle timeout used for short verification runs.
const DefaultProbeTimeout = 30 * time.Second

// pollInterval is how often the supervisor checks the idle timer.
const pollInterval = time.Millisecond

// drainGrace bounds how long output is drained after the child exits while
// a descendant still holds the pipes open.
const drainGrace = 2 * time.Second

// ErrEmptyCommand is returned for a Spec without a command.
var ErrEmptyCommand = errors.New("empty command")

// Outcome classifies how a run ended.
type Outcome int

const (
	// Completed means the child exited on its own.
	Completed Outcome = iota
	// TimedOut means no byte moved for longer than the timeout and the child
	// was killed.
	TimedOut
	// SpawnFailed means the child could not be started.
	SpawnFailed
	// Cancelled means the context ended and the child was killed.
	Cancelled
)

func (o Outcome) String() string {
	switch o {
	case Completed:
		return "completed"
	case TimedOut:
		return "timed out"
	case SpawnFailed:
		return "spawn failed"
	case Cancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Priority is the scheduling class requested for the child.
type Priority int

const (
	PriorityNormal Priority = iota
	PriorityLow
	PriorityHigh
)

// Spec describes one child process.
type Spec struct {
	// Command is the executable followed by its arguments.
	Command []string
	Dir     string
	// Env replaces the environment when non-nil.
	Env []string
	// Timeout is the idle timeout. Zero means unbounded.
	Timeout time.Duration
	// Stdin, Stdout and Stderr are optional. Output without a sink is
	// discarded.
	Stdin    io.Reader
	Stdout   io.Writer
	Stderr   io.Writer
	Priority Priority
	// Group starts the child in its own process group so that a kill also
	// reaches its descendants. Interactive children should leave it unset:
	// a background group loses the terminal.
	Group bool
}

// Result reports the end of a run.
type Result struct {
	Outcome  Outcome
	ExitCode int
	// Pid is the child's process id; zero when it never started.
	Pid int
	// Err carries the spawn failure or wait error, if any.
	Err error
}

// OK reports whether the child completed with exit code zero.
func (r Result) OK() bool {
	return r.Outcome == Completed && r.ExitCode == 0
}

// Runner starts and supervises child processes.
type Runner struct {
	logger hclog.Logger
}

// NewRunner returns a Runner logging to logger.
func NewRunner(logger hclog.Logger) *Runner {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Runner{logger: logger}
}

// Capture runs spec and returns everything the child wrote to stdout.
// spec.Stdout is replaced.
func (r *Runner) Capture(ctx context.Context, spec Spec) (string, Result) {
	var out bytes.Buffer
	spec.Stdout = &out
	res := r.Run(ctx, spec)
	return out.String(), res
}

// Run starts the child described by spec and blocks until it exits, times
// out or ctx ends. All pipes are closed and the child is reaped before Run
// returns.
func (r *Runner) Run(ctx context.Context, spec Spec) Result {
	if len(spec.Command) == 0 {
		return Result{Outcome: SpawnFailed, ExitCode: -1, Err: ErrEmptyCommand}
	}
	if err := ctx.Err(); err != nil {
		return Result{Outcome: Cancelled, ExitCode: -1, Err: err}
	}

	cmd := exec.Command(spec.Command[0], spec.Command[1:]...)
	cmd.Dir = spec.Dir
	cmd.Env = spec.Env
	prepareCommand(cmd, spec)

	s := &session{activity: make(chan struct{}, 1)}

	outR, outW, err := os.Pipe()
	if err != nil {
		return spawnFailed(err)
	}
	errR, errW, err := os.Pipe()
	if err != nil {
		outR.Close()
		outW.Close()
		return spawnFailed(err)
	}
	cmd.Stdout = outW
	cmd.Stderr = errW

	var inR, inW *os.File
	if spec.Stdin != nil {
		if inR, inW, err = os.Pipe(); err != nil {
			outR.Close()
			outW.Close()
			errR.Close()
			errW.Close()
			return spawnFailed(err)
		}
		cmd.Stdin = inR
	}

	r.logger.Debug("🚀 Starting process", "command", CommandLine(spec.Command), "timeout", spec.Timeout)
	startErr := cmd.Start()

	// The child holds its own copies now.
	outW.Close()
	errW.Close()
	if inR != nil {
		inR.Close()
	}

	if startErr != nil {
		outR.Close()
		errR.Close()
		if inW != nil {
			inW.Close()
		}
		r.logger.Debug("❌ Failed to start process", "command", spec.Command[0], "error", startErr)
		return spawnFailed(startErr)
	}

	if err := afterStart(cmd.Process.Pid, spec.Priority); err != nil {
		r.logger.Debug("⚠️ Could not set process priority", "pid", cmd.Process.Pid, "error", err)
	}

	var pumps sync.WaitGroup
	pumps.Add(2)
	go s.pump(&pumps, spec.Stdout, outR)
	go s.pump(&pumps, spec.Stderr, errR)

	var closeStdin sync.Once
	stopStdin := func() {
		if inW != nil {
			closeStdin.Do(func() { inW.Close() })
		}
	}
	if inW != nil {
		// Not waited for: a blocked read on spec.Stdin cannot be interrupted.
		go func() {
			s.feed(inW, spec.Stdin)
			stopStdin()
		}()
	}

	exited := make(chan error, 1)
	go func() { exited <- cmd.Wait() }()

	var tick <-chan time.Time
	if spec.Timeout > 0 {
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	finish := func(res Result, killed bool) Result {
		res.Pid = cmd.Process.Pid
		stopStdin()
		if killed {
			// Descendants may still hold the pipes.
			outR.Close()
			errR.Close()
		} else {
			drained := make(chan struct{})
			go func() { pumps.Wait(); close(drained) }()
			select {
			case <-drained:
			case <-time.After(drainGrace):
				outR.Close()
				errR.Close()
			}
		}
		pumps.Wait()
		outR.Close()
		errR.Close()
		return res
	}

	kill := func() error {
		if err := killProcess(cmd, spec.Group); err != nil && !errors.Is(err, os.ErrProcessDone) {
			r.logger.Debug("⚠️ Failed to kill process", "pid", cmd.Process.Pid, "error", err)
		}
		return <-exited
	}

	last := time.Now()
	for {
		select {
		case <-s.activity:
			last = time.Now()

		case waitErr := <-exited:
			code := cmd.ProcessState.ExitCode()
			var exitErr *exec.ExitError
			if waitErr != nil && !errors.As(waitErr, &exitErr) {
				r.logger.Debug("⚠️ Wait failed", "error", waitErr)
				return finish(Result{Outcome: Completed, ExitCode: code, Err: waitErr}, false)
			}
			r.logger.Debug("⏹️ Process exited", "pid", cmd.Process.Pid, "code", code)
			return finish(Result{Outcome: Completed, ExitCode: code}, false)

		case <-ctx.Done():
			r.logger.Debug("⏹️ Cancelling process", "pid", cmd.Process.Pid)
			kill()
			return finish(Result{Outcome: Cancelled, ExitCode: -1, Err: ctx.Err()}, true)

		case <-tick:
			if time.Since(last) > spec.Timeout {
				r.logger.Debug("⏰ Process idle timeout, killing", "pid", cmd.Process.Pid, "timeout", spec.Timeout)
				kill()
				return finish(Result{Outcome: TimedOut, ExitCode: -1}, true)
			}
		}
	}
}

func spawnFailed(err error) Result {
	return Result{Outcome: SpawnFailed, ExitCode: -1, Err: err}
}

// session carries the state shared by the pumping goroutines.
type session struct {
	activity chan struct{}
	// sinkMu serializes writes to the sinks, which may be the same writer.
	sinkMu sync.Mutex
}

func (s *session) touch() {
	select {
	case s.activity <- struct{}{}:
	default:
	}
}

// pump copies src to dst until EOF or until src is closed.
func (s *session) pump(wg *sync.WaitGroup, dst io.Writer, src io.Reader) {
	defer wg.Done()
	buf := make([]byte, 32*1024)
	for {
		n, err := src.Read(buf)
		if n > 0 {
			s.touch()
			if dst != nil {
				s.sinkMu.Lock()
				_, werr := dst.Write(buf[:n])
				s.sinkMu.Unlock()
				if werr != nil {
					dst = nil
				}
			}
		}
		if err != nil {
			return
		}
	}
}

// feed copies src into the child's stdin.
func (s *session) feed(dst io.Writer, src io.Reader) {
	buf := make([]byte, 32*1024)
	for {
		n, err := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return
			}
			s.touch()
		}
		if err != nil {
			return
		}
	}
}
