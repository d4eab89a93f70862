package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nguyentantai21042004/media-flow/internal/caption"
	"github.com/nguyentantai21042004/media-flow/internal/chapter"
	"github.com/nguyentantai21042004/media-flow/internal/timecode"
)

// Document is everything a summary export contains.
type Document struct {
	Title      string
	Source     string
	Summary    string
	Chapters   []chapter.Marker
	Transcript []caption.Segment
	CreatedAt  time.Time
}

// Markdown renders the document as a markdown file body.
func Markdown(d Document) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", d.Title)
	meta := d.CreatedAt.Format("2006-01-02 15:04")
	if d.Source != "" {
		meta += " · " + d.Source
	}
	fmt.Fprintf(&b, "_%s_\n\n", meta)

	b.WriteString(strings.TrimSpace(d.Summary))
	b.WriteString("\n")

	if len(d.Chapters) > 0 {
		b.WriteString("\n## Chapter index\n\n")
		for _, c := range d.Chapters {
			fmt.Fprintf(&b, "- [%s] **%s**", timecode.Format(c.Offset), c.Title)
			if c.Description != "" {
				b.WriteString(" - " + c.Description)
			}
			b.WriteString("\n")
		}
	}

	if len(d.Transcript) > 0 {
		b.WriteString("\n## Transcript\n\n")
		b.WriteString(caption.Timecoded(d.Transcript))
		b.WriteString("\n")
	}

	return b.String()
}

// WriteMarkdown writes the markdown rendering to path.
func WriteMarkdown(path string, d Document) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(Markdown(d)), 0644); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}
	return nil
}
