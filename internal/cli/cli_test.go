package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/nguyentantai21042004/media-flow/internal/job"
	"github.com/nguyentantai21042004/media-flow/internal/progress"
)

func TestParseClip(t *testing.T) {
	tests := []struct {
		in      string
		want    job.ClipSpec
		wantErr bool
	}{
		{"intro=00:00-01:30", job.ClipSpec{Name: "intro", Start: "00:00", End: "01:30"}, false},
		{"00:10 - 00:20", job.ClipSpec{Start: "00:10", End: "00:20"}, false},
		{"hook=1:02:03.5-1:02:10", job.ClipSpec{Name: "hook", Start: "1:02:03.5", End: "1:02:10"}, false},
		{"00:10", job.ClipSpec{}, true},
		{"x=ab-cd", job.ClipSpec{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseClip(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseClip(%q) error = %v", tt.in, err)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("parseClip(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSourceRequest(t *testing.T) {
	req, err := sourceRequest(job.KindClip, "https://example.com/v")
	if err != nil || req.URL != "https://example.com/v" || req.File != "" {
		t.Errorf("url request = %+v, %v", req, err)
	}

	req, err = sourceRequest(job.KindSummarize, "talk.vtt")
	if err != nil || !filepath.IsAbs(req.File) || req.URL != "" {
		t.Errorf("file request = %+v, %v", req, err)
	}
}

func TestPrintEvents(t *testing.T) {
	events := make(chan job.Event, 4)
	events <- job.Event{Event: progress.Event{Phase: progress.PhaseDownloading, Progress: 10, Details: "a"}}
	events <- job.Event{Event: progress.Event{Phase: progress.PhaseDownloading, Progress: 10, Details: "a"}}
	events <- job.Event{Event: progress.Event{Phase: progress.PhaseCompleted, Progress: 100, Details: "Done"}, Result: &job.Result{OutputPath: "/out/x.mp4"}}
	close(events)

	var buf bytes.Buffer
	last := printEvents(&buf, events, false)

	if last.Phase != progress.PhaseCompleted {
		t.Errorf("last = %+v", last)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	want := []string{
		"[downloading]  10.0%  a",
		"[completed  ] 100.0%  Done",
	}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("lines = %q, want %q", lines, want)
	}
}

func TestLoadConfigFallsBackToDefaults(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := loadConfig(missing, false)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Tools.YTDLP == "" || cfg.Performance.MaxConcurrent == 0 {
		t.Errorf("defaults not applied: %+v", cfg)
	}

	if _, err := loadConfig(missing, true); err == nil {
		t.Error("explicit missing config did not fail")
	}
}

func TestArchiveKeepsEarlierFiles(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, processedDir)

	for i := 0; i < 2; i++ {
		src := filepath.Join(dir, "talk.vtt")
		if err := os.WriteFile(src, []byte("WEBVTT\n"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := archive(src, dest); err != nil {
			t.Fatalf("archive() error = %v", err)
		}
	}

	entries, err := os.ReadDir(dest)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	if !reflect.DeepEqual(names, []string{"talk.vtt", "talk_1.vtt"}) {
		t.Errorf("archived = %v", names)
	}
}
