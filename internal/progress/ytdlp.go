package progress

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// PostProcessingPercent is the watermark shown while yt-dlp merges or converts.
const PostProcessingPercent = 95

var (
	reSequence    = regexp.MustCompile(`(?i)downloading (?:item|video) (\d+) of (\d+)`)
	reDestination = regexp.MustCompile(`^\[download\]\s+Destination:\s+(.+)$`)
	reAlready     = regexp.MustCompile(`^\[download\]\s+(.+?) has already been downloaded`)
	reWriting     = regexp.MustCompile(`^\[info\]\s+Writing video (?:thumbnail|subtitles)[^:]*to:\s+(.+)$`)
	rePercent     = regexp.MustCompile(`(\d+(?:\.\d+)?)%`)
	reSize        = regexp.MustCompile(`of\s+~?\s*(\d+(?:\.\d+)?\s*[KMGT]?i?B)`)
	reRate        = regexp.MustCompile(`at\s+(\d+(?:\.\d+)?\s*[KMGT]?i?B/s)`)
	reETA         = regexp.MustCompile(`ETA\s+(\d{1,2}(?::\d{2}){1,2})`)
	rePostProcess = regexp.MustCompile(`^\[(Merger|ffmpeg|ExtractAudio|VideoConvertor|VideoRemuxer|Fixup\w*|EmbedThumbnail|EmbedSubtitle|Metadata|ThumbnailsConvertor|MoveFiles|ModifyChapters|SplitChapters)\]`)
	reMergeInto   = regexp.MustCompile(`into "(.+)"`)
	rePostDest    = regexp.MustCompile(`Destination:\s+(.+)$`)
)

type ytdlpParser struct{}

// NewYTDLP returns the parser for yt-dlp's --newline output.
func NewYTDLP() Parser {
	return ytdlpParser{}
}

// Classify applies the rules in priority order; the first one that matches wins.
func (ytdlpParser) Classify(st State, line string) (State, *Event) {
	line = strings.TrimSpace(line)
	if line == "" {
		return st, nil
	}

	if m := reSequence.FindStringSubmatch(line); m != nil {
		idx, err1 := strconv.Atoi(m[1])
		total, err2 := strconv.Atoi(m[2])
		if err1 != nil || err2 != nil || total <= 0 || idx <= 0 || idx > total {
			return st, nil
		}
		st.Index, st.Total = idx, total
		st.Stream = 0
		st.resetPending = true
		return st, st.event(PhaseDownloading, "Downloading item "+m[1]+" of "+m[2])
	}

	if item, ok := destination(line); ok {
		st.Item = item
		st.Stream++
		st.resetPending = true
		return st, st.event(PhaseDownloading, "Downloading "+filepath.Base(item))
	}

	if m := rePercent.FindStringSubmatch(line); m != nil {
		pct, err := strconv.ParseFloat(m[1], 64)
		if err != nil || pct < 0 || pct > 100 {
			return st, nil
		}
		if pct >= st.Percent || st.resetPending {
			st.Percent = pct
		}
		st.resetPending = false

		var parts []string
		if s := reSize.FindStringSubmatch(line); s != nil {
			parts = append(parts, s[1])
		}
		if r := reRate.FindStringSubmatch(line); r != nil {
			st.Rate = r[1]
			parts = append(parts, r[1])
		}
		if e := reETA.FindStringSubmatch(line); e != nil {
			parts = append(parts, "ETA "+e[1])
		}
		return st, st.event(PhaseDownloading, strings.Join(parts, " "))
	}

	if m := rePostProcess.FindStringSubmatch(line); m != nil {
		if into := reMergeInto.FindStringSubmatch(line); into != nil {
			st.Item = into[1]
		} else if dest := rePostDest.FindStringSubmatch(line); dest != nil {
			st.Item = strings.Trim(dest[1], `"`)
		}
		st.Percent = PostProcessingPercent
		st.resetPending = false
		return st, st.event(PhaseProcessing, "Post-processing ("+m[1]+")")
	}

	return st, nil
}

func destination(line string) (string, bool) {
	for _, re := range []*regexp.Regexp{reDestination, reAlready, reWriting} {
		if m := re.FindStringSubmatch(line); m != nil {
			return strings.TrimSpace(m[1]), true
		}
	}
	return "", false
}

func (st State) event(phase Phase, details string) *Event {
	ev := &Event{
		Phase:    phase,
		Progress: st.Percent,
		Details:  details,
	}
	if st.Total > 0 {
		ev.VideoIndex = st.Index
		ev.VideoTotal = st.Total
	}
	return ev
}
