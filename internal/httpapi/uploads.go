package httpapi

import (
	"errors"
	"io"
	"net/http"
	"time"
)

const uploadField = "file"

type uploadResponse struct {
	Upload string `json:"upload"`
	Name   string `json:"name"`
	Size   int64  `json:"size"`
}

// countingReader tracks how many bytes were streamed through it.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// upload streams the multipart "file" field into the upload store. The
// returned key is what job requests pass as upload.
func (h *handler) upload(w http.ResponseWriter, r *http.Request) {
	if h.uploads == nil {
		h.error(w, http.StatusServiceUnavailable, "uploads are disabled")
		return
	}
	_ = http.NewResponseController(w).SetReadDeadline(time.Time{})
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	mr, err := r.MultipartReader()
	if err != nil {
		h.error(w, http.StatusBadRequest, "expected multipart/form-data")
		return
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			h.error(w, http.StatusBadRequest, "missing form field \"file\"")
			return
		}
		if err != nil {
			h.uploadFailed(w, r, err)
			return
		}
		if part.FormName() != uploadField || part.FileName() == "" {
			part.Close()
			continue
		}

		cr := &countingReader{r: part}
		key, err := h.uploads.Save(r.Context(), part.FileName(), cr)
		part.Close()
		if err != nil {
			h.uploadFailed(w, r, err)
			return
		}

		h.logger.Info(r.Context(), "Upload stored: %s (%d bytes)", key, cr.n)
		h.json(w, http.StatusCreated, uploadResponse{Upload: key, Name: part.FileName(), Size: cr.n})
		return
	}
}

func (h *handler) uploadFailed(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		h.error(w, http.StatusRequestEntityTooLarge, "upload is too large")
		return
	}
	h.logger.Error(r.Context(), "Upload failed: %v", err)
	h.error(w, http.StatusInternalServerError, "upload failed")
}
