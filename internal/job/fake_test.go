package job

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nguyentantai21042004/media-flow/internal/config"
	"github.com/nguyentantai21042004/media-flow/internal/credentials"
	"github.com/nguyentantai21042004/media-flow/internal/logger"
	"github.com/nguyentantai21042004/media-flow/internal/summarizer"
	"github.com/nguyentantai21042004/media-flow/pkg/executor"
)

// script is what one fake process prints and how it exits.
type script struct {
	lines  []string
	err    error
	block  bool
	effect func(cmd executor.Command)
}

type fakeExecutor struct {
	mu      sync.Mutex
	missing map[string]bool
	scripts []script
	calls   []executor.Command
	started chan executor.Command
}

func newFakeExecutor(scripts ...script) *fakeExecutor {
	return &fakeExecutor{
		missing: make(map[string]bool),
		scripts: scripts,
		started: make(chan executor.Command, 16),
	}
}

func (f *fakeExecutor) Resolve(name string) (string, error) {
	if f.missing[name] {
		return "", &executor.ExecutableNotFoundError{Path: name, Err: os.ErrNotExist}
	}
	return "/usr/bin/" + name, nil
}

func (f *fakeExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	return "", nil
}

func (f *fakeExecutor) Stream(ctx context.Context, cmd executor.Command) (executor.Process, error) {
	f.mu.Lock()
	if len(f.scripts) == 0 {
		f.mu.Unlock()
		return nil, errors.New("unexpected command " + cmd.Path)
	}
	s := f.scripts[0]
	f.scripts = f.scripts[1:]
	f.calls = append(f.calls, cmd)
	f.mu.Unlock()

	if s.effect != nil {
		s.effect(cmd)
	}
	f.started <- cmd

	p := &fakeProcess{lines: make(chan string), done: make(chan struct{})}
	go p.run(ctx, s)
	return p, nil
}

func (f *fakeExecutor) commands() []executor.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]executor.Command(nil), f.calls...)
}

type fakeProcess struct {
	lines chan string
	done  chan struct{}
	err   error
}

func (p *fakeProcess) run(ctx context.Context, s script) {
	defer close(p.done)

	for _, l := range s.lines {
		select {
		case p.lines <- l:
		case <-ctx.Done():
		}
	}
	if s.block {
		<-ctx.Done()
	}
	close(p.lines)

	if ctx.Err() != nil {
		p.err = &executor.ToolError{Command: "fake", ExitCode: -1, Err: ctx.Err()}
		return
	}
	p.err = s.err
}

func (p *fakeProcess) Lines() <-chan string {
	return p.lines
}

func (p *fakeProcess) Wait() error {
	<-p.done
	return p.err
}

type fakeCredentials struct {
	secretErr  error
	projectErr error
}

func (f fakeCredentials) SummarizationCredentials(ctx context.Context) (credentials.Secret, error) {
	return credentials.Secret{APIKey: "test-key"}, f.secretErr
}

func (f fakeCredentials) ProjectConfig(ctx context.Context) (credentials.Project, error) {
	return credentials.Project{ID: "test-project", Region: "us-central1"}, f.projectErr
}

type fakeSummarizer struct {
	text   string
	err    error
	prompt string
}

func (f *fakeSummarizer) Summarize(ctx context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.text, f.err
}

type fakeConnector struct {
	client *fakeSummarizer
	err    error
}

func (f fakeConnector) Connect(ctx context.Context, secret credentials.Secret, project credentials.Project) (summarizer.Summarizer, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.client, nil
}

// harness wires a manager to fakes and records scratch dir cleanup.
type harness struct {
	cfg     *config.Config
	exec    *fakeExecutor
	manager *implManager
	removed atomic.Int32

	mu   sync.Mutex
	dirs []string
}

func newHarness(t *testing.T, exec *fakeExecutor, conn summarizer.Connector, creds credentials.Provider) *harness {
	t.Helper()

	cfg, err := config.Default()
	if err != nil {
		t.Fatalf("config.Default() error = %v", err)
	}
	root := t.TempDir()
	cfg.Paths.Output = filepath.Join(root, "out")
	cfg.Paths.Temp = filepath.Join(root, "tmp")
	cfg.Summary.ExportDocx = false

	h := &harness{cfg: cfg, exec: exec}
	mkdirTemp := func(dir, pattern string) (string, error) {
		d, err := os.MkdirTemp(dir, pattern)
		if err == nil {
			h.mu.Lock()
			h.dirs = append(h.dirs, d)
			h.mu.Unlock()
		}
		return d, err
	}
	removeAll := func(path string) error {
		h.removed.Add(1)
		return os.RemoveAll(path)
	}
	h.manager = NewForTests(cfg, exec, conn, creds, logger.Nop(), mkdirTemp, removeAll, time.Now)
	return h
}

func (h *harness) scratchDirs() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.dirs...)
}

// collect drains a job's events until the channel closes.
func collect(t *testing.T, j *Job) []Event {
	t.Helper()

	var out []Event
	timeout := time.After(10 * time.Second)
	for {
		select {
		case ev, ok := <-j.Events():
			if !ok {
				return out
			}
			out = append(out, ev)
		case <-timeout:
			t.Fatalf("job %s did not finish, got %d events", j.ID(), len(out))
		}
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}
