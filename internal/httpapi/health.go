package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"
)

const probeTimeout = 5 * time.Second

type toolStatus struct {
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Error   string `json:"error,omitempty"`
}

type healthResponse struct {
	Status string                `json:"status"`
	Tools  map[string]toolStatus `json:"tools"`
}

// health reports whether the external tools can be run. A missing tool makes
// the service degraded, not down: the other job kinds still work.
func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status: "ok",
		Tools: map[string]toolStatus{
			"yt-dlp": h.probe(r.Context(), h.cfg.Tools.YTDLP, "--version"),
			"ffmpeg": h.probe(r.Context(), h.cfg.Tools.FFmpeg, "-version"),
		},
	}
	for _, t := range resp.Tools {
		if t.Error != "" {
			resp.Status = "degraded"
		}
	}
	h.json(w, http.StatusOK, resp)
}

func (h *handler) probe(ctx context.Context, name, flag string) toolStatus {
	path, err := h.executor.Resolve(name)
	if err != nil {
		return toolStatus{Error: err.Error()}
	}

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	out, err := h.executor.Execute(ctx, path, flag)
	if err != nil {
		return toolStatus{Path: path, Error: err.Error()}
	}
	version, _, _ := strings.Cut(strings.TrimSpace(out), "\n")
	return toolStatus{Path: path, Version: strings.TrimSpace(version)}
}
