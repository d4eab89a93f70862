package job

import (
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/media-flow/internal/timecode"
)

var audioFormats = map[string]bool{
	"mp3": true, "m4a": true, "aac": true, "opus": true, "vorbis": true, "flac": true, "wav": true, "alac": true,
}

var captionExts = map[string]bool{".vtt": true, ".srt": true}

// IsCaptionFile reports whether path looks like a caption document.
func IsCaptionFile(path string) bool {
	return captionExts[strings.ToLower(filepath.Ext(path))]
}

// clipRange is a validated ClipSpec.
type clipRange struct {
	name       string
	start, end float64
}

// normalize validates req and fills defaults. Every error wraps ErrMalformedInput.
func normalize(req Request) (Request, error) {
	req.URL = strings.TrimSpace(req.URL)
	req.File = strings.TrimSpace(req.File)
	req.Title = strings.TrimSpace(req.Title)

	switch req.Kind {
	case KindDownload, KindClip, KindThumbnail, KindSummarize:
	case "":
		return req, malformed("kind is required")
	default:
		return req, malformed("unknown kind %q", req.Kind)
	}

	if (req.URL == "") == (req.File == "") {
		return req, malformed("exactly one of url or file is required")
	}
	if req.URL != "" {
		u, err := url.Parse(req.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return req, malformed("url must be an absolute http(s) URL")
		}
	}
	if req.File != "" {
		info, err := os.Stat(req.File)
		if err != nil || info.IsDir() {
			return req, malformed("file %s does not exist", req.File)
		}
	}

	switch req.Kind {
	case KindDownload:
		if req.URL == "" {
			return req, malformed("download needs a url")
		}
		opts, err := normalizeOptions(req.Options)
		if err != nil {
			return req, err
		}
		req.Options = opts
	case KindClip:
		if _, err := clipRanges(req.Clips); err != nil {
			return req, err
		}
	case KindThumbnail:
		if req.ThumbnailAt != "" {
			if _, err := timecode.Parse(req.ThumbnailAt); err != nil {
				return req, malformed("thumbnailAt: %v", err)
			}
		}
	case KindSummarize:
		if req.File != "" && !IsCaptionFile(req.File) {
			return req, malformed("summarize needs a .vtt or .srt caption file")
		}
	}

	return req, nil
}

func normalizeOptions(o Options) (Options, error) {
	o.Format = strings.ToLower(strings.TrimSpace(o.Format))
	if o.Format == "" {
		o.Format = FormatVideo
	}
	if o.Format != FormatVideo && o.Format != FormatAudio {
		return o, malformed("format must be %q or %q", FormatVideo, FormatAudio)
	}

	o.Quality = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(o.Quality), "p"))
	if o.Quality == "" {
		o.Quality = QualityBest
	}
	if o.Quality != QualityBest {
		if h, err := strconv.Atoi(o.Quality); err != nil || h <= 0 {
			return o, malformed("quality must be %q or a height such as 720", QualityBest)
		}
	}

	o.AudioFormat = strings.ToLower(strings.TrimSpace(o.AudioFormat))
	if o.AudioFormat == "" {
		o.AudioFormat = DefaultAudioFormat
	}
	if !audioFormats[o.AudioFormat] {
		return o, malformed("unsupported audio format %q", o.AudioFormat)
	}
	return o, nil
}

func clipRanges(specs []ClipSpec) ([]clipRange, error) {
	if len(specs) == 0 {
		return nil, malformed("at least one clip is required")
	}

	out := make([]clipRange, 0, len(specs))
	for i, c := range specs {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			name = "clip_" + strconv.Itoa(i+1)
		}
		start, err := timecode.Parse(c.Start)
		if err != nil {
			return nil, malformed("clip %q start: %v", name, err)
		}
		end, err := timecode.Parse(c.End)
		if err != nil {
			return nil, malformed("clip %q end: %v", name, err)
		}
		if end <= start {
			return nil, malformed("clip %q ends before it starts", name)
		}
		out = append(out, clipRange{name: name, start: start, end: end})
	}
	return out, nil
}
