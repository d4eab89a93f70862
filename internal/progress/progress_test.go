package progress

import (
	"strings"
	"testing"
)

func classifyAll(p Parser, lines []string) (State, []Event) {
	var st State
	var events []Event
	for _, line := range lines {
		var ev *Event
		st, ev = p.Classify(st, line)
		if ev != nil {
			events = append(events, *ev)
		}
	}
	return st, events
}

func TestYTDLPDownloadMergeSequence(t *testing.T) {
	_, events := classifyAll(NewYTDLP(), []string{
		"[download] Destination: foo.mp4",
		"[download]  45.2% of 10.00MiB at 1.20MiB/s ETA 00:08",
		"[ffmpeg] Merging formats...",
	})

	if len(events) != 3 {
		t.Fatalf("events = %d, want 3: %+v", len(events), events)
	}

	if !strings.Contains(events[0].Details, "foo.mp4") {
		t.Errorf("destination details = %q", events[0].Details)
	}
	if events[0].Progress != 0 {
		t.Errorf("destination progress = %v, want 0", events[0].Progress)
	}

	if events[1].Progress != 45.2 {
		t.Errorf("percent progress = %v, want 45.2", events[1].Progress)
	}
	for _, want := range []string{"10.00MiB", "1.20MiB/s", "00:08"} {
		if !strings.Contains(events[1].Details, want) {
			t.Errorf("percent details %q missing %q", events[1].Details, want)
		}
	}

	if events[2].Progress != 95 || events[2].Phase != PhaseProcessing {
		t.Errorf("post-processing event = %+v", events[2])
	}
}

func TestYTDLPRules(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		wantEvent bool
		wantPhase Phase
		wantPct   float64
	}{
		{"plain info line", "[youtube] abc: Downloading webpage", false, "", 0},
		{"empty", "   ", false, "", 0},
		{"percent only", "[download]  12.5%", true, PhaseDownloading, 12.5},
		{"percent out of range", "[download] 250.0% of 1MiB", false, "", 0},
		{"already downloaded", "[download] foo.mp4 has already been downloaded", true, PhaseDownloading, 0},
		{"extract audio", `[ExtractAudio] Destination: foo.mp3`, true, PhaseProcessing, 95},
		{"fixup", "[FixupM3u8] Fixing MPEG-TS in MP4 container", true, PhaseProcessing, 95},
		{"bad sequence", "[download] Downloading item 3 of 0", false, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ev := NewYTDLP().Classify(State{}, tt.line)
			if (ev != nil) != tt.wantEvent {
				t.Fatalf("event = %+v, wantEvent %v", ev, tt.wantEvent)
			}
			if ev == nil {
				return
			}
			if ev.Phase != tt.wantPhase {
				t.Errorf("phase = %q, want %q", ev.Phase, tt.wantPhase)
			}
			if ev.Progress != tt.wantPct {
				t.Errorf("progress = %v, want %v", ev.Progress, tt.wantPct)
			}
		})
	}
}

func TestYTDLPPlaylistSequence(t *testing.T) {
	st, events := classifyAll(NewYTDLP(), []string{
		"[download] Downloading playlist: Talks",
		"[download] Downloading item 1 of 2",
		"[download] Destination: Playlists/Video/Talks/1 - a.mp4",
		"[download] 100% of 5.00MiB in 00:03",
		"[download] Downloading item 2 of 2",
		"[download] Destination: Playlists/Video/Talks/2 - b.mp4",
		"[download]   3.0% of 8.00MiB at 2.00MiB/s ETA 00:04",
	})

	if st.Index != 2 || st.Total != 2 {
		t.Fatalf("sequence state = %d/%d, want 2/2", st.Index, st.Total)
	}
	if !strings.HasSuffix(st.Item, "2 - b.mp4") {
		t.Errorf("item = %q", st.Item)
	}

	seq := events[3]
	if seq.VideoIndex != 2 || seq.VideoTotal != 2 {
		t.Errorf("sequence event = %+v", seq)
	}
	if seq.Progress != 100 {
		t.Errorf("sequence event keeps last percentage, got %v", seq.Progress)
	}

	last := events[len(events)-1]
	if last.Progress != 3 {
		t.Errorf("new item restarts percentage, got %v", last.Progress)
	}
	for _, ev := range events[1:] {
		if ev.VideoTotal != 2 {
			t.Errorf("event %+v lacks sequence position", ev)
		}
	}
}

func TestYTDLPPercentNeverRegressesWithinItem(t *testing.T) {
	_, events := classifyAll(NewYTDLP(), []string{
		"[download] Destination: a.mp4",
		"[download]  10.0%",
		"[download]  40.0%",
		"[download]  20.0%",
		"[download]  garbage%",
		"[download]  60.0%",
	})

	prev := -1.0
	for _, ev := range events {
		if ev.Progress < prev {
			t.Fatalf("progress regressed from %v to %v", prev, ev.Progress)
		}
		prev = ev.Progress
	}
	if prev != 60 {
		t.Errorf("final progress = %v, want 60", prev)
	}
}

func TestYTDLPMergeTarget(t *testing.T) {
	st, _ := NewYTDLP().Classify(State{}, `[Merger] Merging formats into "Video/clip_abc.mp4"`)
	if st.Item != "Video/clip_abc.mp4" {
		t.Errorf("item = %q", st.Item)
	}
}

func TestFFmpegProgress(t *testing.T) {
	st, events := classifyAll(NewFFmpeg(20), []string{
		"frame=10",
		"out_time_us=5000000",
		"speed=2.0x",
		"out_time_us=10000000",
		"out_time_us=oops",
		"progress=continue",
		"out_time_us=40000000",
		"progress=end",
	})

	if len(events) != 4 {
		t.Fatalf("events = %d, want 4: %+v", len(events), events)
	}
	if events[0].Progress != 25 || events[1].Progress != 50 {
		t.Errorf("progress = %v, %v", events[0].Progress, events[1].Progress)
	}
	if !strings.Contains(events[1].Details, "2.0x") {
		t.Errorf("details = %q", events[1].Details)
	}
	if events[2].Progress != 100 {
		t.Errorf("progress is capped at 100, got %v", events[2].Progress)
	}
	if events[3].Phase != PhaseExtracting || st.Percent != 100 {
		t.Errorf("end event = %+v", events[3])
	}
}

func TestFFmpegStatsLineAndUnknownDuration(t *testing.T) {
	_, ev := NewFFmpeg(100).Classify(State{}, "frame=  50 fps=25 q=28.0 size=256kB time=00:00:10.00 bitrate=209.7kbits/s")
	if ev == nil || ev.Progress != 10 {
		t.Fatalf("stats event = %+v", ev)
	}

	_, ev = NewFFmpeg(0).Classify(State{}, "out_time_us=1000000")
	if ev != nil {
		t.Errorf("unknown duration should not emit, got %+v", ev)
	}
}

func TestClassifyIsPure(t *testing.T) {
	p := NewYTDLP()
	line := "[download]  50.0% of 1.00MiB"

	base := State{Percent: 10}
	a, _ := p.Classify(base, line)
	b, _ := p.Classify(base, line)
	if a != b {
		t.Errorf("same input gave different states: %+v vs %+v", a, b)
	}
	if base.Percent != 10 {
		t.Errorf("input state was mutated: %+v", base)
	}
}

func TestPhaseIsTerminal(t *testing.T) {
	if !PhaseCompleted.IsTerminal() || !PhaseError.IsTerminal() {
		t.Error("completed and error are terminal")
	}
	if PhaseDownloading.IsTerminal() {
		t.Error("downloading is not terminal")
	}
}

func TestYTDLPCountsStreamsPerItem(t *testing.T) {
	p := NewYTDLP()
	lines := []struct {
		line         string
		wantStream   int
		wantStarting bool
	}{
		{"[download] Downloading item 1 of 2", 0, true},
		{"[download] Destination: a.f137.mp4", 1, true},
		{"[download] 100% of 5.00MiB in 00:03", 1, false},
		{"[download] Destination: a.f140.m4a", 2, true},
		{"[download]  10.0% of 1.00MiB at 1.00MiB/s ETA 00:01", 2, false},
		{"[download] Downloading item 2 of 2", 0, true},
		{"[download] Destination: b.f137.mp4", 1, true},
	}

	var st State
	for _, tt := range lines {
		st, _ = p.Classify(st, tt.line)
		if st.Stream != tt.wantStream || st.Starting() != tt.wantStarting {
			t.Errorf("after %q: stream = %d starting = %v, want %d %v", tt.line, st.Stream, st.Starting(), tt.wantStream, tt.wantStarting)
		}
	}
}
