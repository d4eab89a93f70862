package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nguyentantai21042004/media-flow/internal/caption"
	"github.com/nguyentantai21042004/media-flow/internal/chapter"
)

func sampleDocument() Document {
	return Document{
		Title:   "Go Concurrency",
		Source:  "https://example.com/watch?v=abc",
		Summary: "# Overview\n\nA talk about **channels**.\n\n- point one\n- point two\n",
		Chapters: []chapter.Marker{
			{Title: "Intro", Offset: 0, Description: "Who we are"},
			{Title: "Channels", Offset: 330},
		},
		Transcript: []caption.Segment{
			{Offset: 1, Clock: "00:00:01", Text: "hello"},
			{Offset: 330, Clock: "00:05:30", Text: "channels"},
		},
		CreatedAt: time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC),
	}
}

func TestMarkdown(t *testing.T) {
	md := Markdown(sampleDocument())

	for _, want := range []string{
		"# Go Concurrency\n",
		"_2024-05-01 10:30 · https://example.com/watch?v=abc_",
		"A talk about **channels**.",
		"- [00:00:00] **Intro** - Who we are\n",
		"- [00:05:30] **Channels**\n",
		"[00:05:30] channels",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestMarkdownWithoutChapters(t *testing.T) {
	d := sampleDocument()
	d.Chapters = nil
	d.Transcript = nil

	md := Markdown(d)
	if strings.Contains(md, "Chapter index") || strings.Contains(md, "## Transcript") {
		t.Errorf("empty sections rendered:\n%s", md)
	}
}

func TestWriteMarkdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Summaries", "talk.md")
	if err := WriteMarkdown(path, sampleDocument()); err != nil {
		t.Fatalf("WriteMarkdown() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# Go Concurrency") {
		t.Errorf("unexpected content: %s", data)
	}
}

func TestWriteDocx(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Summaries", "talk.docx")
	if err := WriteDocx(path, sampleDocument()); err != nil {
		t.Fatalf("WriteDocx() error = %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("docx not written: %v", err)
	}
	if info.Size() == 0 {
		t.Error("docx is empty")
	}
}

func TestCleanMarkdownInline(t *testing.T) {
	if got := cleanMarkdownInline("**bold** __under__ `code`"); got != "bold under code" {
		t.Errorf("cleanMarkdownInline() = %q", got)
	}
}
