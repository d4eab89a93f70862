package job

import (
	"time"

	"github.com/nguyentantai21042004/media-flow/internal/caption"
	"github.com/nguyentantai21042004/media-flow/internal/chapter"
	"github.com/nguyentantai21042004/media-flow/internal/progress"
)

// Kind selects what a job produces.
type Kind string

const (
	KindDownload  Kind = "download"
	KindClip      Kind = "clip-extract"
	KindThumbnail Kind = "thumbnail-extract"
	KindSummarize Kind = "transcript-summarize"
)

const (
	FormatVideo        = "video"
	FormatAudio        = "audio"
	QualityBest        = "best"
	DefaultAudioFormat = "mp3"
)

// Options tune a download.
type Options struct {
	Format      string `json:"format,omitempty"`
	Quality     string `json:"quality,omitempty"`
	AudioFormat string `json:"audioFormat,omitempty"`
	Playlist    bool   `json:"playlist,omitempty"`
}

// ClipSpec names one [Start, End) range to cut from the source.
type ClipSpec struct {
	Name  string `json:"name"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// Request is the input of one job. Exactly one of URL or File is set.
type Request struct {
	Kind        Kind       `json:"kind"`
	URL         string     `json:"url,omitempty"`
	File        string     `json:"file,omitempty"`
	Title       string     `json:"title,omitempty"`
	Options     Options    `json:"options,omitempty"`
	Clips       []ClipSpec `json:"clips,omitempty"`
	ThumbnailAt string     `json:"thumbnailAt,omitempty"`
}

// Source returns the URL or file the job reads from.
func (r Request) Source() string {
	if r.URL != "" {
		return r.URL
	}
	return r.File
}

// Result is the payload of a completed job.
type Result struct {
	OutputPath     string            `json:"outputPath,omitempty"`
	Files          []string          `json:"files,omitempty"`
	Title          string            `json:"title,omitempty"`
	Transcript     []caption.Segment `json:"transcript,omitempty"`
	TranscriptText string            `json:"transcriptText,omitempty"`
	Summary        string            `json:"summary,omitempty"`
	Chapters       []chapter.Marker  `json:"chapters,omitempty"`
	Exports        []string          `json:"exports,omitempty"`
}

// Event is one message on a job's event stream.
type Event struct {
	progress.Event
	Seq       int64     `json:"seq"`
	JobID     string    `json:"jobId"`
	Timestamp time.Time `json:"timestamp"`
	Result    *Result   `json:"result,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// IsTerminal reports whether this is the last event of its job.
func (e Event) IsTerminal() bool {
	return e.Phase.IsTerminal()
}

// Snapshot is a point-in-time view of a job.
type Snapshot struct {
	ID        string         `json:"id"`
	Kind      Kind           `json:"kind"`
	Source    string         `json:"source"`
	State     State          `json:"state"`
	Progress  progress.Event `json:"progress"`
	CreatedAt time.Time      `json:"createdAt"`
}
