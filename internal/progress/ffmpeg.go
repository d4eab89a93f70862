package progress

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/media-flow/internal/timecode"
)

const (
	outTimeUSPrefix = "out_time_us="
	speedPrefix     = "speed="
	progressPrefix  = "progress="
)

var reStatsTime = regexp.MustCompile(`(?:^|\s)time=\s*(\d+:\d{2}:\d{2}(?:\.\d+)?)`)

type ffmpegParser struct {
	duration float64
}

// NewFFmpeg returns the parser for ffmpeg "-progress pipe:1" output, also
// accepting classic "time=" stats lines. duration is the length of the
// output in seconds; without it no percentage can be derived.
func NewFFmpeg(duration float64) Parser {
	return ffmpegParser{duration: duration}
}

func (p ffmpegParser) Classify(st State, line string) (State, *Event) {
	line = strings.TrimSpace(line)

	switch {
	case strings.HasPrefix(line, outTimeUSPrefix):
		us, err := strconv.ParseInt(strings.TrimPrefix(line, outTimeUSPrefix), 10, 64)
		if err != nil || us < 0 {
			return st, nil
		}
		return p.advance(st, float64(us)/1e6)

	case strings.HasPrefix(line, speedPrefix):
		if v := strings.TrimSpace(strings.TrimPrefix(line, speedPrefix)); v != "" && v != "N/A" {
			st.Rate = v
		}
		return st, nil

	case strings.HasPrefix(line, progressPrefix):
		if strings.TrimPrefix(line, progressPrefix) != "end" {
			return st, nil
		}
		st.Percent = 100
		return st, st.event(PhaseExtracting, "Finalizing output")
	}

	if m := reStatsTime.FindStringSubmatch(line); m != nil {
		sec, err := timecode.Parse(m[1])
		if err != nil {
			return st, nil
		}
		return p.advance(st, sec)
	}

	return st, nil
}

func (p ffmpegParser) advance(st State, done float64) (State, *Event) {
	if p.duration <= 0 {
		return st, nil
	}
	pct := done / p.duration * 100
	if pct > 100 {
		pct = 100
	}
	if pct < st.Percent {
		return st, nil
	}
	st.Percent = pct

	details := fmt.Sprintf("%s of %s", timecode.Format(int(done)), timecode.Format(int(p.duration)))
	if st.Rate != "" {
		details += " at " + st.Rate
	}
	return st, st.event(PhaseExtracting, details)
}
