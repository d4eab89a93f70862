package chapter

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/media-flow/internal/caption"
	"github.com/nguyentantai21042004/media-flow/internal/timecode"
)

const (
	// sectionSeconds is the target length of one fallback section.
	sectionSeconds  = 600
	minSections     = 3
	maxSections     = 10
	fallbackSummary = "Automatically generated section"
)

// Marker is one chapter boundary on the transcript timeline.
type Marker struct {
	Title       string `json:"title"`
	Offset      int    `json:"offsetSeconds"`
	Description string `json:"description"`
}

// reMarker matches "[HH:MM:SS] **Title** - Description", optionally bulleted.
var reMarker = regexp.MustCompile(`(?m)^[ \t]*(?:[-*•][ \t]+)?\[(\d{1,2}):(\d{1,2}):(\d{1,2})\][ \t]*\*\*(.+?)\*\*[ \t]*(?:[-–—:][ \t]*)?(.*)$`)

// Extract reads chapter markers out of generated text and checks them against
// the transcript timeline. Markers with impossible times, times past the last
// segment, or times earlier than the previous marker are dropped. When none
// survive, evenly spaced sections covering the transcript are returned.
func Extract(generated string, segments []caption.Segment) []Marker {
	duration := caption.Duration(segments)

	var out []Marker
	for _, m := range reMarker.FindAllStringSubmatch(generated, -1) {
		h, _ := strconv.Atoi(m[1])
		mm, _ := strconv.Atoi(m[2])
		ss, _ := strconv.Atoi(m[3])

		offset, err := timecode.Seconds(h, mm, ss)
		if err != nil {
			continue
		}
		if len(segments) > 0 && offset > duration {
			continue
		}
		if len(out) > 0 && offset < out[len(out)-1].Offset {
			continue
		}

		out = append(out, Marker{
			Title:       strings.TrimSpace(m[4]),
			Offset:      offset,
			Description: strings.TrimSpace(m[5]),
		})
	}

	if len(out) > 0 {
		return out
	}
	if len(segments) == 0 {
		return []Marker{}
	}
	return Fallback(duration)
}

// Fallback splits duration seconds into between 3 and 10 equal sections,
// one per ten minutes.
func Fallback(duration int) []Marker {
	if duration < 0 {
		duration = 0
	}

	count := duration / sectionSeconds
	if count < minSections {
		count = minSections
	}
	if count > maxSections {
		count = maxSections
	}

	out := make([]Marker, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, Marker{
			Title:       "Section " + strconv.Itoa(i+1),
			Offset:      i * duration / count,
			Description: fallbackSummary,
		})
	}
	return out
}
