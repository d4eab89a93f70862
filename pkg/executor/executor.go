package executor

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Resolve checks that an executable exists before any spawn is attempted.
// Names without a path separator are looked up in PATH.
func (e *implExecutor) Resolve(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", &ExecutableNotFoundError{Path: name, Err: errors.New("empty executable path")}
	}

	if !strings.ContainsRune(name, filepath.Separator) && !strings.ContainsRune(name, '/') {
		path, err := exec.LookPath(name)
		if err != nil {
			return "", &ExecutableNotFoundError{Path: name, Err: err}
		}
		return path, nil
	}

	info, err := os.Stat(name)
	if err != nil {
		return "", &ExecutableNotFoundError{Path: name, Err: err}
	}
	if info.IsDir() {
		return "", &ExecutableNotFoundError{Path: name, Err: fmt.Errorf("%s is a directory", name)}
	}

	abs, err := filepath.Abs(name)
	if err != nil {
		return name, nil
	}
	return abs, nil
}

// Execute runs an external command with the given arguments
func (e *implExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	path, err := e.Resolve(name)
	if err != nil {
		return "", err
	}

	cmd := exec.CommandContext(ctx, path, args...)

	var stdout bytes.Buffer
	stderr := newTailBuffer(e.tailBytes)
	cmd.Stdout = &stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		return "", &ToolError{
			Command:    filepath.Base(path),
			ExitCode:   exitCode(err),
			StderrTail: stderr.String(),
			Err:        err,
		}
	}

	return stdout.String(), nil
}

// Stream starts the command and pumps its stdout, one line at a time, into Lines.
func (e *implExecutor) Stream(ctx context.Context, c Command) (Process, error) {
	path, err := e.Resolve(c.Path)
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, path, c.Args...)
	cmd.Dir = c.Dir
	cmd.WaitDelay = waitDelay

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &ToolError{Command: filepath.Base(path), ExitCode: -1, Err: fmt.Errorf("create stdout pipe: %w", err)}
	}
	stderr := newTailBuffer(e.tailBytes)
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return nil, &ToolError{Command: filepath.Base(path), ExitCode: -1, Err: fmt.Errorf("start: %w", err)}
	}

	p := &process{
		ctx:    ctx,
		name:   filepath.Base(path),
		cmd:    cmd,
		stderr: stderr,
		lines:  make(chan string),
		done:   make(chan struct{}),
	}
	go p.pump(ctx, stdout)

	return p, nil
}

type process struct {
	ctx    context.Context
	name   string
	cmd    *exec.Cmd
	stderr *tailBuffer
	lines  chan string
	// done is closed once pump has stopped reading stdout.
	done chan struct{}
}

func (p *process) Lines() <-chan string {
	return p.lines
}

// pump forwards stdout lines until EOF or cancellation. After a scan error
// the rest of the pipe is discarded so the child never blocks on a full pipe.
func (p *process) pump(ctx context.Context, r io.Reader) {
	defer close(p.done)
	defer close(p.lines)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	scanner.Split(ScanLines)

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		select {
		case p.lines <- line:
		case <-ctx.Done():
			return
		}
	}

	if scanner.Err() != nil {
		_, _ = io.Copy(io.Discard, r)
	}
}

// Wait reaps the process once pump is done with stdout. When the context
// was cancelled, descendants of the killed child may still hold the pipe
// open, so Wait stops waiting for pump after waitDelay.
func (p *process) Wait() error {
	select {
	case <-p.done:
	case <-p.ctx.Done():
		select {
		case <-p.done:
		case <-time.After(waitDelay):
		}
	}

	err := p.cmd.Wait()
	if err == nil {
		return nil
	}
	return &ToolError{
		Command:    p.name,
		ExitCode:   exitCode(err),
		StderrTail: p.stderr.String(),
		Err:        err,
	}
}

func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
