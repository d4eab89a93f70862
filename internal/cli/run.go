package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/media-flow/internal/job"
	"github.com/nguyentantai21042004/media-flow/internal/timecode"
)

func newDownloadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download <url>",
		Short: "Download a video, its audio or a whole playlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			quality, _ := cmd.Flags().GetString("quality")
			audioFormat, _ := cmd.Flags().GetString("audio-format")
			playlist, _ := cmd.Flags().GetBool("playlist")

			return runJob(cmd, job.Request{
				Kind: job.KindDownload,
				URL:  args[0],
				Options: job.Options{
					Format:      format,
					Quality:     quality,
					AudioFormat: audioFormat,
					Playlist:    playlist,
				},
			})
		},
	}
	cmd.Flags().String("format", job.FormatVideo, "video or audio")
	cmd.Flags().String("quality", job.QualityBest, "best or a maximum height such as 720")
	cmd.Flags().String("audio-format", job.DefaultAudioFormat, "Audio codec when --format audio")
	cmd.Flags().Bool("playlist", false, "Download every item of a playlist")
	addOutputFlags(cmd)
	return cmd
}

func newClipCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clip <url|file>",
		Short: "Cut named clips out of a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			specs, _ := cmd.Flags().GetStringArray("clip")
			clips := make([]job.ClipSpec, 0, len(specs))
			for _, s := range specs {
				c, err := parseClip(s)
				if err != nil {
					return err
				}
				clips = append(clips, c)
			}

			req, err := sourceRequest(job.KindClip, args[0])
			if err != nil {
				return err
			}
			req.Clips = clips
			return runJob(cmd, req)
		},
	}
	cmd.Flags().StringArray("clip", nil, "Clip as [name=]start-end, e.g. intro=00:00-01:30 (repeatable)")
	_ = cmd.MarkFlagRequired("clip")
	addOutputFlags(cmd)
	return cmd
}

func newThumbnailCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "thumbnail <url|file>",
		Short: "Save a video's thumbnail, or a frame of a local file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := sourceRequest(job.KindThumbnail, args[0])
			if err != nil {
				return err
			}
			req.ThumbnailAt, _ = cmd.Flags().GetString("at")
			return runJob(cmd, req)
		},
	}
	cmd.Flags().String("at", "", "Frame time for local files, e.g. 00:01:30")
	addOutputFlags(cmd)
	return cmd
}

func newSummarizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summarize <url|caption-file>",
		Short: "Summarize a video from its captions and build a chapter index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := sourceRequest(job.KindSummarize, args[0])
			if err != nil {
				return err
			}
			req.Title, _ = cmd.Flags().GetString("title")
			return runJob(cmd, req)
		},
	}
	cmd.Flags().String("title", "", "Title used in the prompt and export file names")
	addOutputFlags(cmd)
	return cmd
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("json", false, "Print events as JSON lines")
}

// sourceRequest treats http(s) arguments as URLs and anything else as a local file.
func sourceRequest(kind job.Kind, src string) (job.Request, error) {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return job.Request{Kind: kind, URL: src}, nil
	}
	abs, err := filepath.Abs(src)
	if err != nil {
		return job.Request{}, err
	}
	return job.Request{Kind: kind, File: abs}, nil
}

// parseClip reads "[name=]start-end".
func parseClip(s string) (job.ClipSpec, error) {
	var c job.ClipSpec
	rng := strings.TrimSpace(s)
	if name, rest, ok := strings.Cut(rng, "="); ok {
		c.Name = strings.TrimSpace(name)
		rng = rest
	}
	start, end, ok := strings.Cut(rng, "-")
	if !ok {
		return c, fmt.Errorf("clip %q: want [name=]start-end", s)
	}
	c.Start, c.End = strings.TrimSpace(start), strings.TrimSpace(end)
	for _, v := range []string{c.Start, c.End} {
		if _, err := timecode.Parse(v); err != nil {
			return c, fmt.Errorf("clip %q: %w", s, err)
		}
	}
	return c, nil
}

// runJob runs one job in the foreground. Ctrl+C cancels it.
func runJob(cmd *cobra.Command, req job.Request) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	j, err := a.jobs.Start(ctx, req)
	if err != nil {
		return err
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	last := printEvents(cmd.OutOrStdout(), j.Events(), asJSON)

	if err := j.Err(); err != nil {
		if errors.Is(err, job.ErrCancelled) && ctx.Err() != nil {
			return context.Canceled
		}
		return errors.New(last.Details)
	}
	if !asJSON && last.Result != nil {
		printResult(cmd.OutOrStdout(), last.Result)
	}
	return nil
}

// printEvents writes one line per event and returns the terminal one.
func printEvents(w io.Writer, events <-chan job.Event, asJSON bool) job.Event {
	var (
		last job.Event
		prev string
	)
	enc := json.NewEncoder(w)
	for ev := range events {
		last = ev
		if asJSON {
			_ = enc.Encode(ev)
			continue
		}
		line := fmt.Sprintf("[%-11s] %5.1f%%  %s", ev.Phase, ev.Progress, ev.Details)
		if line == prev {
			continue
		}
		prev = line
		fmt.Fprintln(w, line)
	}
	return last
}

func printResult(w io.Writer, res *job.Result) {
	if res.Summary != "" {
		fmt.Fprintf(w, "\n%s\n", strings.TrimSpace(res.Summary))
	}
	if len(res.Chapters) > 0 {
		fmt.Fprintln(w, "\nChapters:")
		for _, c := range res.Chapters {
			fmt.Fprintf(w, "  %s  %s\n", timecode.Format(c.Offset), c.Title)
		}
	}
	for _, f := range res.Files {
		fmt.Fprintf(w, "Saved: %s\n", f)
	}
	for _, f := range res.Exports {
		fmt.Fprintf(w, "Exported: %s\n", f)
	}
	if len(res.Files) == 0 && len(res.Exports) == 0 && res.OutputPath != "" {
		fmt.Fprintf(w, "Saved: %s\n", res.OutputPath)
	}
}
