package fontgen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/mrithyunjay/write-hand/internal/domain"
)

// DefaultTimeout is the wall-clock limit for one handwrite invocation.
const DefaultTimeout = 120 * time.Second

// Params carries the sanitized text arguments for one tool invocation.
// Values must already have passed sanitize.Text; the runner does not
// sanitize again.
type Params struct {
	Family   string
	Style    string
	Filename string
}

// Result captures what the tool reported for one invocation.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Diagnostic returns the text to show a user when the tool fails,
// preferring stderr and falling back to stdout.
func (r Result) Diagnostic() string {
	if s := strings.TrimSpace(r.Stderr); s != "" {
		return s
	}
	return strings.TrimSpace(r.Stdout)
}

// Runner abstracts the handwrite invocation so the lifecycle can be
// exercised in tests without spawning a real process.
type Runner interface {
	Run(ctx context.Context, imagePath, outputDir string, p Params) (Result, error)
}

// ExecRunner invokes the real handwrite binary as a child process: no
// shell, fixed argument shape, hard timeout. On timeout the whole process
// group is killed so no descendant keeps running after the request worker
// gives up.
type ExecRunner struct {
	Bin     string
	Timeout time.Duration
}

func (e *ExecRunner) Run(ctx context.Context, imagePath, outputDir string, p Params) (Result, error) {
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, e.Bin,
		imagePath,
		outputDir,
		"--family", p.Family,
		"--style", p.Style,
		"--filename", p.Filename,
	)
	// Own process group, killed as a group on cancellation. A plain
	// single-PID kill would orphan anything handwrite spawned.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = 5 * time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return res, fmt.Errorf("%w after %s", domain.ErrToolTimeout, timeout)
	}
	if err != nil {
		// A bare binary name fails LookPath with exec.ErrNotFound; an
		// explicit path fails fork/exec with a not-exist PathError.
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
			return res, fmt.Errorf("%w: %s is not installed", domain.ErrToolUnavailable, e.Bin)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, fmt.Errorf("%w: %s", domain.ErrToolFailed, res.Diagnostic())
		}
		return res, fmt.Errorf("%w: %v", domain.ErrToolFailed, err)
	}
	return res, nil
}
