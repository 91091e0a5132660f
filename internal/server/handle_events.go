package server

import (
	"fmt"
	"net/http"
	"time"
)

func streamEvents(w http.ResponseWriter, r *http.Request, broker *Broker, teamID string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	flusher.Flush()

	ch := broker.Subscribe(teamID)
	defer broker.Unsubscribe(teamID, ch)

	ping := time.NewTicker(30 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case data := <-ch:
			fmt.Fprintf(w, "event: game\ndata: %s\n\n", data)
			flusher.Flush()
		case <-ping.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		}
	}
}

func handleEvents(broker *Broker, sessions *Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token == "" {
			writeError(w, http.StatusUnauthorized, "token query parameter required")
			return
		}
		sess, ok := sessions.FromToken(token)
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid session token")
			return
		}
		streamEvents(w, r, broker, sess.TeamID)
	}
}

// handleAdminEvents streams every game event; used by display screens and
// the operator dashboard. Auth is the admin cookie, checked by middleware.
func handleAdminEvents(broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		streamEvents(w, r, broker, "")
	}
}
