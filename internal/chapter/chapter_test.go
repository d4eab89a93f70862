package chapter

import (
	"reflect"
	"testing"

	"github.com/nguyentantai21042004/media-flow/internal/caption"
)

func timeline(lastOffset int) []caption.Segment {
	return []caption.Segment{
		{Offset: 0, Clock: "00:00:00", Text: "intro"},
		{Offset: lastOffset, Clock: "", Text: "outro"},
	}
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name      string
		generated string
		segments  []caption.Segment
		want      []Marker
	}{
		{
			name: "bulleted markers",
			generated: "## Chapters\n" +
				"- [00:00:00] **Intro** - Who we are\n" +
				"- [00:05:30] **Channels** – Buffered vs unbuffered\n" +
				"* [00:20:00] **Wrap up**: Questions\n",
			segments: timeline(1800),
			want: []Marker{
				{Title: "Intro", Offset: 0, Description: "Who we are"},
				{Title: "Channels", Offset: 330, Description: "Buffered vs unbuffered"},
				{Title: "Wrap up", Offset: 1200, Description: "Questions"},
			},
		},
		{
			name:      "marker without description",
			generated: "[00:01:00] **Only title**",
			segments:  timeline(600),
			want:      []Marker{{Title: "Only title", Offset: 60, Description: ""}},
		},
		{
			name: "malformed time is skipped",
			generated: "- [00:75:00] **Bad minutes** - x\n" +
				"- [00:01:99] **Bad seconds** - x\n" +
				"- [00:02:00] **Good** - kept\n",
			segments: timeline(600),
			want:     []Marker{{Title: "Good", Offset: 120, Description: "kept"}},
		},
		{
			name: "marker past the end is rejected",
			generated: "- [00:00:10] **Start** - a\n" +
				"- [02:00:00] **Hallucinated** - b\n",
			segments: timeline(600),
			want:     []Marker{{Title: "Start", Offset: 10, Description: "a"}},
		},
		{
			name: "out of order marker is rejected",
			generated: "- [00:05:00] **Second** - a\n" +
				"- [00:01:00] **First** - b\n" +
				"- [00:06:00] **Third** - c\n",
			segments: timeline(600),
			want: []Marker{
				{Title: "Second", Offset: 300, Description: "a"},
				{Title: "Third", Offset: 360, Description: "c"},
			},
		},
		{
			name:      "fallback when nothing matches",
			generated: "A summary without any chapter list.",
			segments:  timeline(1800),
			want: []Marker{
				{Title: "Section 1", Offset: 0, Description: fallbackSummary},
				{Title: "Section 2", Offset: 600, Description: fallbackSummary},
				{Title: "Section 3", Offset: 1200, Description: fallbackSummary},
			},
		},
		{
			name:      "fallback when every marker is rejected",
			generated: "- [05:00:00] **Too late** - x",
			segments:  timeline(1800),
			want:      Fallback(1800),
		},
		{
			name:      "no transcript and no markers",
			generated: "nothing",
			segments:  nil,
			want:      []Marker{},
		},
		{
			name:      "no transcript keeps markers unbounded",
			generated: "[01:00:00] **Late** - fine",
			segments:  nil,
			want:      []Marker{{Title: "Late", Offset: 3600, Description: "fine"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.generated, tt.segments)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Extract() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFallbackSectionCount(t *testing.T) {
	tests := []struct {
		duration  int
		wantCount int
	}{
		{0, 3},
		{100, 3},
		{1800, 3},
		{2400, 4},
		{6000, 10},
		{36000, 10},
	}

	for _, tt := range tests {
		got := Fallback(tt.duration)
		if len(got) != tt.wantCount {
			t.Errorf("Fallback(%d) = %d markers, want %d", tt.duration, len(got), tt.wantCount)
			continue
		}
		for i := 1; i < len(got); i++ {
			if got[i].Offset < got[i-1].Offset {
				t.Errorf("Fallback(%d) offsets out of order", tt.duration)
			}
		}
		if got[0].Offset != 0 {
			t.Errorf("Fallback(%d) first offset = %d", tt.duration, got[0].Offset)
		}
	}
}

func TestExtractIsOrdered(t *testing.T) {
	generated := "[00:09:00] **c** - x\n[00:03:00] **a** - x\n[00:10:00] **d** - x\n[00:04:00] **b** - x\n"
	got := Extract(generated, timeline(3600))
	for i := 1; i < len(got); i++ {
		if got[i].Offset < got[i-1].Offset {
			t.Fatalf("markers out of order: %+v", got)
		}
	}
}
