package job

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/media-flow/internal/logger"
	"github.com/nguyentantai21042004/media-flow/internal/progress"
	"github.com/nguyentantai21042004/media-flow/internal/storage"
	"github.com/nguyentantai21042004/media-flow/internal/timecode"
	"github.com/nguyentantai21042004/media-flow/pkg/executor"
)

// Output sub-directories of paths.output.
const (
	dirVideo      = "Video"
	dirAudio      = "Audio"
	dirPlaylists  = "Playlists"
	dirClips      = "Clips"
	dirThumbnails = "Thumbnails"
	dirSummaries  = "Summaries"
)

// toolset holds resolved executable paths; empty means not needed or not found.
type toolset struct {
	ytdlp  string
	ffmpeg string
}

// prepare resolves executables, creates the scratch directory and builds the plan.
func (m *implManager) prepare(ctx context.Context, j *Job, ws *workspace, log logger.Logger) (*plan, error) {
	req := j.req
	needYTDLP := req.URL != ""
	needFFmpeg := req.Kind == KindClip || (req.Kind == KindThumbnail && req.File != "")

	var tools toolset
	if needYTDLP {
		path, err := m.executor.Resolve(m.cfg.Tools.YTDLP)
		if err != nil {
			return nil, stageError(string(StatePreparing), "yt-dlp is not available", err)
		}
		tools.ytdlp = path
	}
	if path, err := m.executor.Resolve(m.cfg.Tools.FFmpeg); err == nil {
		tools.ffmpeg = path
	} else if needFFmpeg {
		return nil, stageError(string(StatePreparing), "ffmpeg is not available", err)
	} else if req.Kind == KindDownload {
		log.Warn(ctx, "ffmpeg not found, yt-dlp will not be able to merge or convert: %v", err)
	}

	if err := os.MkdirAll(m.cfg.Paths.Temp, 0755); err != nil {
		return nil, stageError(string(StatePreparing), "Could not create temp dir", err)
	}
	dir, err := m.mkdirTemp(m.cfg.Paths.Temp, "job-*")
	if err != nil {
		return nil, stageError(string(StatePreparing), "Could not create scratch dir", err)
	}
	ws.dir = dir
	log.Debug(ctx, "Scratch dir: %s", dir)

	switch req.Kind {
	case KindDownload:
		return m.downloadPlan(req, tools, dir), nil
	case KindClip:
		return m.clipPlan(req, tools, dir)
	case KindThumbnail:
		return m.thumbnailPlan(req, tools, dir)
	case KindSummarize:
		return m.summarizePlan(j, tools, dir, log), nil
	default:
		return nil, stageError(string(StatePreparing), "Unknown job kind", malformed("kind %q", req.Kind))
	}
}

func (m *implManager) downloadPlan(req Request, tools toolset, scratch string) *plan {
	res := &Result{}
	var items []string

	return &plan{
		span: 100,
		steps: []step{{
			name:    "yt-dlp",
			streams: downloadStreams(req.Options),
			build: func() (executor.Command, progress.Parser, error) {
				args := downloadArgs(req, m.cfg.Paths.Output, scratch, tools.ffmpeg)
				return executor.Command{Path: tools.ytdlp, Args: args}, progress.NewYTDLP(), nil
			},
			track: func(st progress.State) {
				if st.Item != "" && (len(items) == 0 || items[len(items)-1] != st.Item) {
					items = append(items, st.Item)
				}
			},
			after: func(st progress.State) error {
				res.Files = existingFiles(items)
				switch {
				case req.Options.Playlist && len(res.Files) > 0:
					res.OutputPath = filepath.Dir(res.Files[0])
				case len(res.Files) > 0:
					res.OutputPath = res.Files[len(res.Files)-1]
				default:
					res.OutputPath = st.Item
				}
				return nil
			},
		}},
		finalize: func(ctx context.Context) (*Result, error) {
			return res, nil
		},
	}
}

func (m *implManager) clipPlan(req Request, tools toolset, scratch string) (*plan, error) {
	ranges, err := clipRanges(req.Clips)
	if err != nil {
		return nil, stageError(string(StatePreparing), "Invalid clips", err)
	}

	res := &Result{}
	src := req.File
	var steps []step

	if req.URL != "" {
		steps = append(steps, step{
			name:    "yt-dlp",
			label:   "Source",
			streams: 2,
			build: func() (executor.Command, progress.Parser, error) {
				args := sourceArgs(req.URL, scratch, tools.ffmpeg)
				return executor.Command{Path: tools.ytdlp, Args: args}, progress.NewYTDLP(), nil
			},
			after: func(progress.State) error {
				path, err := findDownloaded(scratch, sourceBase)
				if err != nil {
					return err
				}
				src = path
				return nil
			},
		})
	}

	clipsDir := filepath.Join(m.cfg.Paths.Output, dirClips)
	for _, r := range ranges {
		r := r
		var out string
		steps = append(steps, step{
			name:  "ffmpeg",
			label: "Clip " + r.name,
			build: func() (executor.Command, progress.Parser, error) {
				path, err := storage.ReservePath(clipsDir, r.name, ".mp4")
				if err != nil {
					return executor.Command{}, nil, err
				}
				out = path
				return executor.Command{Path: tools.ffmpeg, Args: clipArgs(src, r, out)}, progress.NewFFmpeg(r.end - r.start), nil
			},
			after: func(progress.State) error {
				res.Files = append(res.Files, out)
				return nil
			},
			abort: func() { removeReserved(out) },
		})
	}

	return &plan{
		steps: steps,
		span:  100,
		finalize: func(ctx context.Context) (*Result, error) {
			res.OutputPath = clipsDir
			if len(res.Files) == 1 {
				res.OutputPath = res.Files[0]
			}
			return res, nil
		},
	}, nil
}

func (m *implManager) thumbnailPlan(req Request, tools toolset, scratch string) (*plan, error) {
	res := &Result{}
	thumbsDir := filepath.Join(m.cfg.Paths.Output, dirThumbnails)

	if req.URL != "" {
		return &plan{
			span: 100,
			steps: []step{{
				name: "yt-dlp",
				build: func() (executor.Command, progress.Parser, error) {
					args := thumbnailArgs(req.URL, m.cfg.Paths.Output, scratch, tools.ffmpeg)
					return executor.Command{Path: tools.ytdlp, Args: args}, progress.NewYTDLP(), nil
				},
				after: func(st progress.State) error {
					if st.Item == "" {
						return errors.New("no thumbnail was written")
					}
					res.OutputPath = convertedThumbnail(st.Item)
					res.Files = []string{res.OutputPath}
					return nil
				},
			}},
			finalize: func(ctx context.Context) (*Result, error) {
				return res, nil
			},
		}, nil
	}

	at := 0.0
	if req.ThumbnailAt != "" {
		v, err := timecode.Parse(req.ThumbnailAt)
		if err != nil {
			return nil, stageError(string(StatePreparing), "Invalid thumbnail time", malformed("thumbnailAt: %v", err))
		}
		at = v
	}

	base := strings.TrimSuffix(filepath.Base(req.File), filepath.Ext(req.File)) + "_" + strconv.Itoa(int(at))
	return &plan{
		span: 100,
		steps: []step{{
			name: "ffmpeg",
			build: func() (executor.Command, progress.Parser, error) {
				out, err := storage.ReservePath(thumbsDir, base, ".jpg")
				if err != nil {
					return executor.Command{}, nil, err
				}
				res.OutputPath = out
				res.Files = []string{out}
				return executor.Command{Path: tools.ffmpeg, Args: frameArgs(req.File, at, out)}, progress.NewFFmpeg(0), nil
			},
			abort: func() { removeReserved(res.OutputPath) },
		}},
		finalize: func(ctx context.Context) (*Result, error) {
			return res, nil
		},
	}, nil
}

// removeReserved deletes a reserved output nothing was written to.
func removeReserved(path string) {
	if path == "" {
		return
	}
	if info, err := os.Stat(path); err == nil && info.Size() == 0 {
		_ = os.Remove(path)
	}
}

// existingFiles keeps the paths still on disk. yt-dlp deletes the
// intermediate streams it merged or converted.
func existingFiles(paths []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, p := range paths {
		if seen[p] {
			continue
		}
		seen[p] = true
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			out = append(out, p)
		}
	}
	return out
}

// convertedThumbnail returns the .jpg next to the original thumbnail when
// yt-dlp converted it.
func convertedThumbnail(path string) string {
	jpg := strings.TrimSuffix(path, filepath.Ext(path)) + ".jpg"
	if _, err := os.Stat(jpg); err == nil {
		return jpg
	}
	return path
}

// findDownloaded returns the finished file in dir named base.<ext>.
func findDownloaded(dir, base string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, base+".*"))
	if err != nil {
		return "", err
	}
	for _, m := range matches {
		if isPartial(m) {
			continue
		}
		if info, err := os.Stat(m); err == nil && !info.IsDir() {
			return m, nil
		}
	}
	return "", fmt.Errorf("downloaded source not found in %s", dir)
}

func isPartial(path string) bool {
	for _, suffix := range []string{".part", ".ytdl", ".temp", ".tmp"} {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return false
}
