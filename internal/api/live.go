package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const heartbeatInterval = 15 * time.Second

// streamEvents fans the list's live channel out over Server-Sent Events until
// the client disconnects. Each event carries the full document; clients
// overwrite local state wholesale.
func (s *Server) streamEvents(w http.ResponseWriter, r *http.Request, listID string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.internalServerError(w, r, fmt.Errorf("streaming is not supported"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	events, cancel := s.events.Subscribe(r.Context(), listID)
	defer cancel()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case ev, ok := <-events:
			if !ok {
				return
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				s.logger.Errorw("failed to marshal live event", "list_id", listID, "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
