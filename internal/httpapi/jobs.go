package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nguyentantai21042004/media-flow/internal/job"
	"github.com/nguyentantai21042004/media-flow/internal/storage"
)

// maxRequestBytes bounds a JSON job request.
const maxRequestBytes = 1 << 20

// jobRequest is the wire form of a job. Local paths are never accepted from
// clients; uploaded content is referenced by its upload key instead.
type jobRequest struct {
	job.Request
	Upload string `json:"upload,omitempty"`
}

type cancelResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func decodeJobRequest(r io.Reader) (jobRequest, error) {
	var in jobRequest
	dec := json.NewDecoder(io.LimitReader(r, maxRequestBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		return in, fmt.Errorf("%w: invalid json: %v", job.ErrMalformedInput, err)
	}
	return in, nil
}

// resolve turns the wire request into a job request.
func (h *handler) resolve(in jobRequest) (job.Request, error) {
	req := in.Request
	if req.File != "" {
		return req, fmt.Errorf("%w: file is not accepted, upload the file and pass its reference as upload", job.ErrMalformedInput)
	}
	if in.Upload == "" {
		return req, nil
	}
	if h.uploads == nil {
		return req, fmt.Errorf("%w: uploads are disabled", job.ErrMalformedInput)
	}

	path, err := h.uploads.Path(in.Upload)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return req, fmt.Errorf("%w: unknown upload %q", job.ErrMalformedInput, in.Upload)
		}
		return req, fmt.Errorf("%w: %v", job.ErrMalformedInput, err)
	}
	req.File = path
	return req, nil
}

// createJob starts a job and streams its events as Server-Sent Events.
// With ?detach=true the job outlives the request and only its id is returned.
func (h *handler) createJob(w http.ResponseWriter, r *http.Request) {
	in, err := decodeJobRequest(r.Body)
	if err != nil {
		h.error(w, http.StatusBadRequest, err.Error())
		return
	}
	req, err := h.resolve(in)
	if err != nil {
		h.error(w, statusFor(err), err.Error())
		return
	}

	if detach, _ := strconv.ParseBool(r.URL.Query().Get("detach")); detach {
		j, err := h.jobs.Start(h.base, req)
		if err != nil {
			h.error(w, statusFor(err), err.Error())
			return
		}
		go h.drain(j)
		h.json(w, http.StatusAccepted, j.Snapshot())
		return
	}

	j, err := h.jobs.Start(r.Context(), req)
	if err != nil {
		h.error(w, statusFor(err), err.Error())
		return
	}
	h.streamEvents(w, r, j)
}

// drain consumes a detached job's events so it can make progress.
func (h *handler) drain(j *job.Job) {
	var last job.Event
	for ev := range j.Events() {
		last = ev
	}
	h.logger.Info(h.base, "Detached job %s finished: %s %s", j.ID(), last.Phase, last.Details)
}

func (h *handler) listJobs(w http.ResponseWriter, r *http.Request) {
	h.json(w, http.StatusOK, h.jobs.List())
}

func (h *handler) getJob(w http.ResponseWriter, r *http.Request) {
	j, ok := h.jobs.Get(chi.URLParam(r, "id"))
	if !ok {
		h.error(w, http.StatusNotFound, job.ErrNotFound.Error())
		return
	}
	h.json(w, http.StatusOK, j.Snapshot())
}

func (h *handler) cancelJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.jobs.Cancel(id); err != nil {
		h.error(w, statusFor(err), err.Error())
		return
	}
	h.json(w, http.StatusAccepted, cancelResponse{ID: id, Status: "cancelling"})
}
