package job

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/nguyentantai21042004/media-flow/internal/caption"
	"github.com/nguyentantai21042004/media-flow/internal/chapter"
	"github.com/nguyentantai21042004/media-flow/internal/logger"
	"github.com/nguyentantai21042004/media-flow/internal/progress"
	"github.com/nguyentantai21042004/media-flow/internal/report"
	"github.com/nguyentantai21042004/media-flow/internal/storage"
	"github.com/nguyentantai21042004/media-flow/internal/summarizer"
	"github.com/nguyentantai21042004/media-flow/pkg/executor"
)

// summarizeSpan is the share of the range the caption download owns.
const summarizeSpan = 50

func (m *implManager) summarizePlan(j *Job, tools toolset, scratch string, log logger.Logger) *plan {
	req := j.req
	captionPath := req.File

	p := &plan{span: summarizeSpan}
	if req.URL != "" {
		p.steps = []step{{
			name: "yt-dlp",
			build: func() (executor.Command, progress.Parser, error) {
				args := subtitleArgs(req.URL, scratch, m.cfg.Summary.SubLangs)
				return executor.Command{Path: tools.ytdlp, Args: args}, progress.NewYTDLP(), nil
			},
			after: func(progress.State) error {
				path, err := findCaption(scratch)
				if err != nil {
					return err
				}
				captionPath = path
				return nil
			},
		}}
	}

	p.finalize = func(ctx context.Context) (*Result, error) {
		return m.summarize(ctx, j, captionPath, log)
	}
	return p
}

func (m *implManager) summarize(ctx context.Context, j *Job, captionPath string, log logger.Logger) (*Result, error) {
	const stage = "summarize"
	req := j.req

	j.emit(ctx, progress.Event{Phase: progress.PhaseExtracting, Progress: 50, Details: "Reading captions"})
	raw, err := os.ReadFile(captionPath)
	if err != nil {
		return nil, stageError(stage, "Could not read captions", err)
	}
	doc := string(raw)

	segments := caption.Parse(doc)
	text := caption.PlainText(doc)
	if n := utf8.RuneCountInString(text); n < m.cfg.Summary.MinTranscriptChars {
		return nil, stageError(stage, "Transcript is too short to summarize",
			fmt.Errorf("%w: %d characters, need %d", ErrTranscriptTooShort, n, m.cfg.Summary.MinTranscriptChars))
	}

	title := req.Title
	if title == "" {
		title = captionTitle(captionPath)
	}
	j.emit(ctx, progress.Event{Phase: progress.PhaseExtracting, Progress: 60,
		Details: fmt.Sprintf("Parsed %d transcript segments", len(segments))})

	client, err := m.connect(ctx)
	if err != nil {
		return nil, err
	}

	j.emit(ctx, progress.Event{Phase: progress.PhaseSummarizing, Progress: 70, Details: "Generating summary"})
	prompt := summarizer.BuildPrompt(title, caption.Timecoded(segments), m.cfg.Summary.Language)
	summary, err := client.Summarize(ctx, prompt)
	if err != nil {
		if ctx.Err() != nil {
			return nil, stageError(stage, "Job cancelled", fmt.Errorf("%w: %w", ErrCancelled, err))
		}
		return nil, stageError(stage, "Summarization failed: "+err.Error(), fmt.Errorf("%w: %w", ErrSummarization, err))
	}

	chapters := chapter.Extract(summary, segments)
	res := &Result{
		Title:          title,
		Transcript:     segments,
		TranscriptText: text,
		Summary:        summary,
		Chapters:       chapters,
	}

	j.emit(ctx, progress.Event{Phase: progress.PhaseSummarizing, Progress: 90,
		Details: fmt.Sprintf("Found %d chapters", len(chapters))})
	res.Exports = m.export(ctx, report.Document{
		Title:      title,
		Source:     req.Source(),
		Summary:    summary,
		Chapters:   chapters,
		Transcript: segments,
		CreatedAt:  m.now(),
	}, log)
	if len(res.Exports) > 0 {
		res.OutputPath = res.Exports[0]
	}

	return res, nil
}

// connect resolves credentials and builds a client. Every failure here is a
// configuration problem and happens before any remote call.
func (m *implManager) connect(ctx context.Context) (summarizer.Summarizer, error) {
	const stage = "summarize"
	if m.connector == nil || m.credentials == nil {
		return nil, stageError(stage, "Summarization is not configured", ErrConfiguration)
	}

	secret, err := m.credentials.SummarizationCredentials(ctx)
	if err != nil {
		return nil, stageError(stage, "Summarization is not configured: "+err.Error(), fmt.Errorf("%w: %w", ErrConfiguration, err))
	}
	project, err := m.credentials.ProjectConfig(ctx)
	if err != nil {
		return nil, stageError(stage, "Summarization is not configured: "+err.Error(), fmt.Errorf("%w: %w", ErrConfiguration, err))
	}

	client, err := m.connector.Connect(ctx, secret, project)
	if err != nil {
		return nil, stageError(stage, "Summarization is not configured: "+err.Error(), fmt.Errorf("%w: %w", ErrConfiguration, err))
	}
	return client, nil
}

// export writes the enabled report formats. Failures are logged only.
func (m *implManager) export(ctx context.Context, d report.Document, log logger.Logger) []string {
	dir := filepath.Join(m.cfg.Paths.Output, dirSummaries)
	base := storage.SanitizeName(d.Title)

	type format struct {
		enabled bool
		ext     string
		write   func(string, report.Document) error
	}
	formats := []format{
		{m.cfg.Summary.ExportMarkdown, ".md", report.WriteMarkdown},
		{m.cfg.Summary.ExportDocx, ".docx", report.WriteDocx},
	}

	var out []string
	for _, f := range formats {
		if !f.enabled {
			continue
		}
		path, err := storage.ReservePath(dir, base, f.ext)
		if err == nil {
			if err = f.write(path, d); err != nil {
				_ = os.Remove(path)
			}
		}
		if err != nil {
			log.Warn(ctx, "Failed to export %s summary: %v", f.ext, err)
			continue
		}
		log.Info(ctx, "Summary exported: %s", path)
		out = append(out, path)
	}
	return out
}

// findCaption returns the caption file yt-dlp wrote into dir, preferring VTT.
func findCaption(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var vtt, srt []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".vtt":
			vtt = append(vtt, filepath.Join(dir, e.Name()))
		case ".srt":
			srt = append(srt, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(vtt)
	sort.Strings(srt)

	switch {
	case len(vtt) > 0:
		return vtt[0], nil
	case len(srt) > 0:
		return srt[0], nil
	default:
		return "", errors.New("no captions available for this video")
	}
}

// captionTitle derives a title from "<title>.<lang>.vtt" or "<title>.srt".
func captionTitle(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if i := strings.LastIndex(name, "."); i > 0 {
		lang := name[i+1:]
		if lang != "" && len(lang) <= 12 && !strings.ContainsAny(lang, " _") {
			name = name[:i]
		}
	}
	return name
}
