package job

import "github.com/nguyentantai21042004/media-flow/internal/timecode"

// clipArgs re-encodes [start, end) of src into out. out is a reserved
// placeholder, so -y is needed to write over it.
func clipArgs(src string, r clipRange, out string) []string {
	return []string{
		"-hide_banner", "-nostdin", "-y",
		"-ss", timecode.FormatFloat(r.start),
		"-to", timecode.FormatFloat(r.end),
		"-i", src,
		"-c:v", "libx264", "-preset", "veryfast", "-crf", "18",
		"-c:a", "aac", "-b:a", "192k",
		"-movflags", "+faststart",
		"-progress", "pipe:1", "-nostats",
		out,
	}
}

// frameArgs grabs one frame at `at` seconds.
func frameArgs(src string, at float64, out string) []string {
	return []string{
		"-hide_banner", "-nostdin", "-y",
		"-ss", timecode.FormatFloat(at),
		"-i", src,
		"-frames:v", "1",
		"-q:v", "2",
		"-progress", "pipe:1", "-nostats",
		out,
	}
}
