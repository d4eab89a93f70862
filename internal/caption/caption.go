package caption

import (
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/media-flow/internal/timecode"
)

// Segment is one time-coded line of transcript.
type Segment struct {
	Offset int    `json:"offsetSeconds"`
	Clock  string `json:"clockText"`
	Text   string `json:"text"`
}

type cueState int

const (
	awaitingCue cueState = iota
	inCue
)

func (s cueState) String() string {
	switch s {
	case awaitingCue:
		return "awaiting-cue"
	case inCue:
		return "in-cue"
	default:
		return "unknown"
	}
}

var (
	reTiming   = regexp.MustCompile(`^(?:(\d+):)?(\d{1,2}):(\d{1,2})(?:[.,]\d{1,3})?\s*-->\s*(?:\d+:)?\d{1,2}:\d{1,2}(?:[.,]\d{1,3})?`)
	reSequence = regexp.MustCompile(`^\d+$`)
	reTag      = regexp.MustCompile(`</?[A-Za-z][^<>]*>|<\d[\d:.]*>`)
	reEntity   = regexp.MustCompile(`&(?:#[0-9]+|#[xX][0-9a-fA-F]+|[a-zA-Z][a-zA-Z0-9]*);`)
)

// headerPrefixes are WebVTT block and metadata lines that never carry text.
var headerPrefixes = []string{"WEBVTT", "Kind:", "Language:", "STYLE", "REGION", "NOTE"}

// line is one classified input line.
type line struct {
	timing bool
	start  int
	text   string
}

// scanner walks a caption document through the cue states.
type scanner struct {
	state cueState
	start int
	last  int
}

// next feeds one raw line and returns the cleaned text and its cue start
// when the line is transcript text inside an open cue.
func (s *scanner) next(raw string) (string, int, bool) {
	l := classify(raw)

	switch {
	case l.timing:
		if l.start < s.last {
			s.state = awaitingCue
			return "", 0, false
		}
		s.state = inCue
		s.start = l.start
		s.last = l.start
		return "", 0, false
	case l.text == "":
		if strings.TrimSpace(raw) == "" {
			s.state = awaitingCue
		}
		return "", 0, false
	case s.state != inCue:
		return "", 0, false
	}

	return l.text, s.start, true
}

func classify(raw string) line {
	trimmed := strings.TrimSpace(strings.TrimPrefix(raw, "\ufeff"))
	if trimmed == "" {
		return line{}
	}

	if strings.Contains(trimmed, "-->") {
		m := reTiming.FindStringSubmatch(trimmed)
		if m == nil {
			return line{}
		}
		h := 0
		if m[1] != "" {
			h, _ = strconv.Atoi(m[1])
		}
		mm, _ := strconv.Atoi(m[2])
		ss, _ := strconv.Atoi(m[3])
		start, err := timecode.Seconds(h, mm, ss)
		if err != nil {
			return line{}
		}
		return line{timing: true, start: start}
	}

	if reSequence.MatchString(trimmed) {
		return line{}
	}
	for _, p := range headerPrefixes {
		if strings.HasPrefix(trimmed, p) {
			return line{}
		}
	}

	return line{text: Clean(trimmed)}
}

// Parse decodes a WebVTT or SubRip document into ordered segments.
// Adjacent lines with identical text are emitted once. A document without
// any cue yields an empty slice.
func Parse(doc string) []Segment {
	var (
		sc   scanner
		out  []Segment
		prev string
	)

	for _, raw := range splitLines(doc) {
		text, start, ok := sc.next(raw)
		if !ok || text == prev {
			continue
		}
		prev = text
		out = append(out, Segment{
			Offset: start,
			Clock:  timecode.Format(start),
			Text:   text,
		})
	}

	if out == nil {
		return []Segment{}
	}
	return out
}

// PlainText returns all cue text of doc space-joined, duplicates included.
func PlainText(doc string) string {
	var (
		sc    scanner
		parts []string
	)
	for _, raw := range splitLines(doc) {
		if text, _, ok := sc.next(raw); ok {
			parts = append(parts, text)
		}
	}
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

// Timecoded renders segments as "[HH:MM:SS] text" lines.
func Timecoded(segments []Segment) string {
	var b strings.Builder
	for i, s := range segments {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("[")
		b.WriteString(s.Clock)
		b.WriteString("] ")
		b.WriteString(s.Text)
	}
	return b.String()
}

// Duration returns the offset of the last segment, or 0.
func Duration(segments []Segment) int {
	if len(segments) == 0 {
		return 0
	}
	return segments[len(segments)-1].Offset
}

// Clean strips markup and entities from one caption line and normalises its whitespace.
// Tags are removed before entities are decoded, so encoded brackets survive as text.
func Clean(s string) string {
	for {
		t := reTag.ReplaceAllString(s, "")
		if t == s {
			break
		}
		s = t
	}
	for {
		t := reEntity.ReplaceAllString(unescape(s), "")
		if t == s {
			break
		}
		s = t
	}
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.Join(strings.Fields(s), " ")
}

// unescape decodes entities until none are left, so "&amp;lt;" becomes "<".
func unescape(s string) string {
	for {
		u := html.UnescapeString(s)
		if u == s {
			return s
		}
		s = u
	}
}

func splitLines(doc string) []string {
	doc = strings.ReplaceAll(doc, "\r\n", "\n")
	doc = strings.ReplaceAll(doc, "\r", "\n")
	return strings.Split(doc, "\n")
}
