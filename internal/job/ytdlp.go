package job

import (
	"path/filepath"
	"strings"
)

const sourceBase = "source"

// ytdlpBase are the flags every yt-dlp invocation shares. Partial fragments
// go to the job scratch dir so cleanup removes them.
func ytdlpBase(scratch, ffmpeg string) []string {
	args := []string{"--newline", "--no-colors", "--no-overwrites", "--paths", "temp:" + scratch}
	if ffmpeg != "" {
		args = append(args, "--ffmpeg-location", ffmpeg)
	}
	return args
}

// formatSelector picks the best streams at or below the requested height.
func formatSelector(quality string) string {
	if quality == "" || quality == QualityBest {
		return "bv*+ba/b"
	}
	return "bv*[height<=" + quality + "]+ba/b[height<=" + quality + "]"
}

// outputTemplate lays files out as [Playlists/]<Video|Audio>/[<playlist>/]<name>.
func outputTemplate(o Options) string {
	sub := dirVideo
	if o.Format == FormatAudio {
		sub = dirAudio
	}
	if o.Playlist {
		return strings.Join([]string{dirPlaylists, sub, "%(playlist_title)s", "%(playlist_index)s - %(title)s.%(ext)s"}, "/")
	}
	return sub + "/%(title)s_%(id)s.%(ext)s"
}

// downloadStreams is how many files yt-dlp writes per item before merging.
func downloadStreams(o Options) int {
	if o.Format == FormatAudio {
		return 1
	}
	return 2
}

func downloadArgs(req Request, root, scratch, ffmpeg string) []string {
	o := req.Options
	args := ytdlpBase(scratch, ffmpeg)
	args = append(args, "-P", root, "-o", outputTemplate(o))

	if o.Playlist {
		args = append(args, "--yes-playlist")
	} else {
		args = append(args, "--no-playlist")
	}

	if o.Format == FormatAudio {
		args = append(args, "-x", "--audio-format", o.AudioFormat, "--audio-quality", "0")
	} else {
		args = append(args, "-f", formatSelector(o.Quality), "--merge-output-format", "mp4")
	}

	return append(args, req.URL)
}

// sourceArgs downloads a single video into scratch as source.<ext>.
func sourceArgs(url, scratch, ffmpeg string) []string {
	args := ytdlpBase(scratch, ffmpeg)
	return append(args,
		"--no-playlist",
		"-f", formatSelector(QualityBest),
		"--merge-output-format", "mp4",
		"-o", filepath.Join(scratch, sourceBase+".%(ext)s"),
		url,
	)
}

func thumbnailArgs(url, root, scratch, ffmpeg string) []string {
	args := ytdlpBase(scratch, ffmpeg)
	return append(args,
		"--no-playlist",
		"--skip-download",
		"--write-thumbnail",
		"--convert-thumbnails", "jpg",
		"-P", root,
		"-o", "thumbnail:"+dirThumbnails+"/%(title)s_%(id)s.%(ext)s",
		url,
	)
}

// subtitleArgs fetches manual and automatic captions into scratch.
func subtitleArgs(url, scratch, langs string) []string {
	args := ytdlpBase(scratch, "")
	return append(args,
		"--no-playlist",
		"--skip-download",
		"--write-subs",
		"--write-auto-subs",
		"--sub-langs", langs,
		"--sub-format", "vtt/srt/best",
		"-o", filepath.Join(scratch, "%(title)s.%(ext)s"),
		url,
	)
}
