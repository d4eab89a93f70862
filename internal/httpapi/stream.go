package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nguyentantai21042004/media-flow/internal/job"
)

const (
	socketWriteWait = 10 * time.Second
	socketReadLimit = 1 << 20
	actionCancel    = "cancel"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// controlMessage is what a WebSocket client may send after the request.
type controlMessage struct {
	Action string `json:"action"`
}

// writeSSE frames one event. The event name is the phase, the id its sequence number.
func writeSSE(w io.Writer, ev job.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", ev.Seq, ev.Phase, data)
	return err
}

// streamEvents writes every event of j to the response. If the client goes
// away the job is cancelled and the rest of the stream is drained, so the
// job still reaches its terminal event and cleans up.
func (h *handler) streamEvents(w http.ResponseWriter, r *http.Request, j *job.Job) {
	rc := http.NewResponseController(w)
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.Header().Set("X-Job-ID", j.ID())
	w.WriteHeader(http.StatusOK)
	_ = rc.Flush()

	broken := false
	for ev := range j.Events() {
		if broken {
			continue
		}
		err := writeSSE(w, ev)
		if err == nil {
			err = rc.Flush()
		}
		if err != nil {
			broken = true
			j.Cancel()
			h.logger.Warn(r.Context(), "Event stream for job %s lost: %v", j.ID(), err)
		}
	}
}

// jobSocket runs one job per connection. The first message is the job
// request; afterwards the client may send {"action":"cancel"}.
func (h *handler) jobSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn(r.Context(), "WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(socketReadLimit)

	_, raw, err := conn.ReadMessage()
	if err != nil {
		return
	}
	in, err := decodeJobRequest(bytes.NewReader(raw))
	if err != nil {
		h.closeWithError(conn, err)
		return
	}
	req, err := h.resolve(in)
	if err != nil {
		h.closeWithError(conn, err)
		return
	}

	j, err := h.jobs.Start(r.Context(), req)
	if err != nil {
		h.closeWithError(conn, err)
		return
	}
	go readControl(conn, j)

	broken := false
	for ev := range j.Events() {
		if broken {
			continue
		}
		_ = conn.SetWriteDeadline(time.Now().Add(socketWriteWait))
		if err := conn.WriteJSON(ev); err != nil {
			broken = true
			j.Cancel()
			h.logger.Warn(r.Context(), "WebSocket for job %s lost: %v", j.ID(), err)
		}
	}

	if !broken {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "job finished")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(socketWriteWait))
	}
}

// readControl handles client messages until the connection closes. A client
// that disconnects cancels its job.
func readControl(conn *websocket.Conn, j *job.Job) {
	for {
		var msg controlMessage
		if err := conn.ReadJSON(&msg); err != nil {
			j.Cancel()
			return
		}
		if msg.Action == actionCancel {
			j.Cancel()
		}
	}
}

func (h *handler) closeWithError(conn *websocket.Conn, err error) {
	_ = conn.SetWriteDeadline(time.Now().Add(socketWriteWait))
	_ = conn.WriteJSON(errorResponse{Error: err.Error()})
	msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "invalid request")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(socketWriteWait))
}
